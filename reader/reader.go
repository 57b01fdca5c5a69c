/*
Package reader opens OSM files of all supported formats as element sources.
*/
package reader

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/omniscale/osmwrangle/parser/osmxml"
	"github.com/omniscale/osmwrangle/parser/pbf"
)

// Source returns complete OSM elements in document order.
type Source interface {
	// Next returns the next element. Returns io.EOF after the last element.
	Next() (*etree.Element, error)
	// Release frees an element returned by Next after it was consumed.
	Release(*etree.Element)
	Close() error
}

// Opener opens a new Source for the requested element kinds.
type Opener func(kinds ...string) (Source, error)

// Open returns a Source for filename. .osm.pbf files are read with the pbf
// parser, all other files (.osm, .osm.gz) as XML.
func Open(filename string, kinds ...string) (Source, error) {
	if strings.HasSuffix(filename, ".pbf") {
		e, err := pbf.Open(filename, kinds...)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	e, err := osmxml.Open(filename, kinds...)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FileOpener returns an Opener for filename.
func FileOpener(filename string) Opener {
	return func(kinds ...string) (Source, error) {
		return Open(filename, kinds...)
	}
}
