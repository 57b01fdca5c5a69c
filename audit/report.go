package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/omniscale/osmwrangle/mapping"
	"github.com/omniscale/osmwrangle/reader"
)

// Report holds the results of all audits of one run. DanglingRefs is only
// set if the reference audit was requested.
type Report struct {
	EmptyValues   map[string]int      `json:"empty_values"`
	HouseNumbers  map[string][]string `json:"house_numbers"`
	ElementCounts map[string]int      `json:"element_counts"`
	StreetTypes   map[string][]string `json:"street_types"`
	PhoneLengths  map[int][]string    `json:"phone_lengths"`
	DanglingRefs  map[int64][]int64   `json:"dangling_refs,omitempty"`
}

type Options struct {
	Maps *mapping.Maps
	// CacheDir enables the reference audit.
	CacheDir string
}

// Run executes all audits, each with a separate pass over the input.
func Run(open reader.Opener, opts Options) (*Report, error) {
	var err error
	r := &Report{}

	step := log.StartStep("Auditing empty values")
	r.EmptyValues, err = EmptyValues(open)
	log.StopStep(step)
	if err != nil {
		return nil, err
	}

	step = log.StartStep("Auditing house numbers")
	r.HouseNumbers, err = HouseNumbers(open, opts.Maps)
	log.StopStep(step)
	if err != nil {
		return nil, err
	}

	step = log.StartStep("Counting elements")
	r.ElementCounts, err = ElementCounts(open)
	log.StopStep(step)
	if err != nil {
		return nil, err
	}

	step = log.StartStep("Auditing street types")
	r.StreetTypes, err = StreetTypes(open, opts.Maps)
	log.StopStep(step)
	if err != nil {
		return nil, err
	}

	step = log.StartStep("Auditing phone numbers")
	r.PhoneLengths, err = PhoneLengths(open)
	log.StopStep(step)
	if err != nil {
		return nil, err
	}

	if opts.CacheDir != "" {
		step = log.StartStep("Checking way node references")
		r.DanglingRefs, err = DanglingRefs(open, opts.CacheDir)
		log.StopStep(step)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes all sections with sorted keys.
func (r *Report) WriteText(w io.Writer) error {
	b := &strings.Builder{}

	fmt.Fprintln(b, "EMPTY VALUES/LEADING AND TRAILING SPACE")
	for _, k := range []string{Empty, LeadingTrailing, NotEmpty} {
		fmt.Fprintf(b, "  %s: %s\n", k, humanize.Comma(int64(r.EmptyValues[k])))
	}

	fmt.Fprintln(b, "HOUSE NUMBER SUFFIXES (per list entry, entries without suffix omitted)")
	writeSets(b, r.HouseNumbers)

	fmt.Fprintln(b, "ELEMENT COUNTS (without osm root)")
	for _, k := range sortedKeys(r.ElementCounts) {
		fmt.Fprintf(b, "  %s: %s\n", k, humanize.Comma(int64(r.ElementCounts[k])))
	}

	fmt.Fprintln(b, "STREET TYPES")
	writeSets(b, r.StreetTypes)

	fmt.Fprintln(b, "PHONE NUMBER LENGTHS")
	lengths := make([]int, 0, len(r.PhoneLengths))
	for n := range r.PhoneLengths {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)
	for _, n := range lengths {
		fmt.Fprintf(b, "  %d: %s\n", n, quoteAll(r.PhoneLengths[n]))
	}

	if r.DanglingRefs != nil {
		fmt.Fprintln(b, "MISSING WAY NODES")
		ids := make([]int64, 0, len(r.DanglingRefs))
		for id := range r.DanglingRefs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			fmt.Fprintf(b, "  %d: referenced by ways %v\n", id, r.DanglingRefs[id])
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSets(b *strings.Builder, sets map[string][]string) {
	keys := make([]string, 0, len(sets))
	for k := range sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %q: %s\n", k, quoteAll(sets[k]))
	}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
