package main

import (
	"context"
	"fmt"
	"io/ioutil"
	golog "log"
	"os"
	"os/signal"
	"runtime"

	"github.com/omniscale/osmwrangle"
	"github.com/omniscale/osmwrangle/audit"
	"github.com/omniscale/osmwrangle/config"
	"github.com/omniscale/osmwrangle/import_"
	"github.com/omniscale/osmwrangle/logging"
	"github.com/omniscale/osmwrangle/reader"
	"github.com/omniscale/osmwrangle/stats"
)

var log = logging.NewLogger("")

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Println("Available commands:")
	fmt.Println("\timport")
	fmt.Println("\taudit")
	fmt.Println("\tversion")
}

func startProfiling(opts config.Base) {
	if opts.Httpprofile != "" {
		stats.StartHttpPProf(opts.Httpprofile)
	}
	if opts.MemProfile != "" {
		go stats.MemProfiler(opts.MemProfile, opts.MemProfileInterval)
	}
}

func runImport(args []string) error {
	opts := config.ParseImport(args)
	startProfiling(opts.Base)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return import_.Import(ctx, opts)
}

func runAudit(args []string) error {
	opts := config.ParseAudit(args)
	startProfiling(opts.Base)
	if opts.Base.Quiet {
		logging.SetQuiet(true)
	}

	maps, err := import_.LoadMaps(opts.Base.Normalization)
	if err != nil {
		return err
	}

	auditOpts := audit.Options{Maps: maps}
	if opts.Refs {
		auditOpts.CacheDir = opts.CacheDir
		if auditOpts.CacheDir == "" {
			dir, err := ioutil.TempDir("", "osmwrangle")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)
			auditOpts.CacheDir = dir
		}
	}

	report, err := audit.Run(reader.FileOpener(opts.Read), auditOpts)
	if err != nil {
		return err
	}
	if opts.JSON {
		return report.WriteJSON(os.Stdout)
	}
	return report.WriteText(os.Stdout)
}

func main() {
	golog.SetFlags(golog.LstdFlags | golog.Lshortfile)
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	if len(os.Args) <= 1 {
		PrintCmds()
		logging.Shutdown()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "import":
		err = runImport(os.Args[2:])
	case "audit":
		err = runAudit(os.Args[2:])
	case "version":
		fmt.Println(osmwrangle.Version)
		os.Exit(0)
	default:
		PrintCmds()
		log.Fatalf("invalid command: '%s'", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
	logging.Shutdown()
	os.Exit(0)
}
