package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Config is the optional JSON file passed with -config. Its values are used
// for all options that are not set on the command line.
type Config struct {
	Normalization string `json:"normalization"`
	Connection    string `json:"connection"`
	CacheDir      string `json:"cachedir"`
	Concurrency   int    `json:"concurrency"`
}

const defaultConcurrency = 1
const defaultMemProfileInterval = time.Minute

type Base struct {
	ConfigFile         string
	Normalization      string
	Httpprofile        string
	MemProfile         string
	MemProfileInterval time.Duration
	Quiet              bool
}

type Import struct {
	Base        Base
	Read        string
	Connection  string
	Validate    bool
	Concurrency int
	Manifest    bool
}

type Audit struct {
	Base     Base
	Read     string
	CacheDir string
	Refs     bool
	JSON     bool
}

func addBaseFlags(opts *Base, flags *flag.FlagSet) {
	flags.StringVar(&opts.ConfigFile, "config", "", "config (json)")
	flags.StringVar(&opts.Normalization, "normalization", "", "normalization maps (yaml), built-in maps if empty")
	flags.StringVar(&opts.Httpprofile, "httpprofile", "", "bind address for profile server")
	flags.StringVar(&opts.MemProfile, "memprofile", "", "dir for periodic heap profiles")
	flags.DurationVar(&opts.MemProfileInterval, "memprofile-interval", defaultMemProfileInterval, "interval of heap profiles")
	flags.BoolVar(&opts.Quiet, "quiet", false, "quiet log output")
}

func readConfig(filename string) (*Config, error) {
	conf := &Config{}
	if filename == "" {
		return conf, nil
	}
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, conf); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return conf, nil
}

func (o *Base) updateFromConfig(conf *Config) {
	if o.Normalization == "" {
		o.Normalization = conf.Normalization
	}
}

func (o *Import) updateFromConfig() error {
	conf, err := readConfig(o.Base.ConfigFile)
	if err != nil {
		return err
	}
	o.Base.updateFromConfig(conf)
	if o.Connection == "" {
		o.Connection = conf.Connection
	}
	if o.Concurrency == defaultConcurrency && conf.Concurrency != 0 {
		o.Concurrency = conf.Concurrency
	}
	return nil
}

func (o *Import) check() []error {
	errs := []error{}
	if o.Read == "" {
		errs = append(errs, errors.New("missing -read"))
	}
	if o.Connection == "" {
		errs = append(errs, errors.New("missing -connection"))
	}
	if o.Concurrency < 1 {
		errs = append(errs, errors.New("-concurrency needs to be 1 or larger"))
	}
	return errs
}

func (o *Audit) updateFromConfig() error {
	conf, err := readConfig(o.Base.ConfigFile)
	if err != nil {
		return err
	}
	o.Base.updateFromConfig(conf)
	if o.CacheDir == "" {
		o.CacheDir = conf.CacheDir
	}
	return nil
}

func (o *Audit) check() []error {
	errs := []error{}
	if o.Read == "" {
		errs = append(errs, errors.New("missing -read"))
	}
	return errs
}

func importFlags(opts *Import) *flag.FlagSet {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	addBaseFlags(&opts.Base, flags)
	flags.StringVar(&opts.Read, "read", "", "OSM file (.osm, .osm.gz, .osm.pbf)")
	flags.StringVar(&opts.Connection, "connection", "", "output (csv:<dir>, postgis://..., sqlite:<file>, null:)")
	flags.BoolVar(&opts.Validate, "validate", false, "validate all records before writing")
	flags.IntVar(&opts.Concurrency, "concurrency", defaultConcurrency, "number of shaping workers")
	flags.BoolVar(&opts.Manifest, "manifest", true, "write manifest.json for csv output")
	return flags
}

func auditFlags(opts *Audit) *flag.FlagSet {
	flags := flag.NewFlagSet("audit", flag.ContinueOnError)
	addBaseFlags(&opts.Base, flags)
	flags.StringVar(&opts.Read, "read", "", "OSM file (.osm, .osm.gz, .osm.pbf)")
	flags.StringVar(&opts.CacheDir, "cachedir", "", "cache directory for -refs, temporary dir if empty")
	flags.BoolVar(&opts.Refs, "refs", false, "check way node references")
	flags.BoolVar(&opts.JSON, "json", false, "print report as JSON")
	return flags
}

func parseImport(args []string) (Import, *flag.FlagSet, []error) {
	opts := Import{}
	flags := importFlags(&opts)
	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}
	if err := opts.updateFromConfig(); err != nil {
		return opts, flags, []error{err}
	}
	return opts, flags, opts.check()
}

func parseAudit(args []string) (Audit, *flag.FlagSet, []error) {
	opts := Audit{}
	flags := auditFlags(&opts)
	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}
	if err := opts.updateFromConfig(); err != nil {
		return opts, flags, []error{err}
	}
	return opts, flags, opts.check()
}

func ParseImport(args []string) Import {
	opts, flags, errs := parseImport(args)
	if len(args) == 0 {
		usage(flags)
	}
	if len(errs) != 0 {
		reportErrors(errs)
		usage(flags)
	}
	return opts
}

func ParseAudit(args []string) Audit {
	opts, flags, errs := parseAudit(args)
	if len(args) == 0 {
		usage(flags)
	}
	if len(errs) != 0 {
		reportErrors(errs)
		usage(flags)
	}
	return opts
}

func usage(flags *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: %s %s [args]\n\n", os.Args[0], flags.Name())
	flags.PrintDefaults()
	os.Exit(2)
}

func reportErrors(errs []error) {
	fmt.Fprintln(os.Stderr, "errors in config/options:")
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "\t%s\n", err)
	}
}
