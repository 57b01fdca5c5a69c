/*
Package osmxml extracts complete OSM elements from .osm XML documents.

The Extractor reads the document token by token. Only elements with a
requested kind (e.g. node and way) are returned, each as a self-contained tree
with all children. Everything else is traversed and dropped, so memory usage
depends on the depth and size of the current element, not on the size of the
document.

Attribute values are returned as decoded by encoding/xml. Tabs and newlines
in a value are kept and not replaced by spaces.
*/
package osmxml

import (
	"compress/gzip"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/element"
)

// DefaultKinds are the element kinds returned if no kinds are requested.
var DefaultKinds = []string{element.NodeKind, element.WayKind}

// Extractor is a stream based extractor for OSM XML files. It is not safe
// for concurrent use and can not be restarted.
type Extractor struct {
	dec   *xml.Decoder
	kinds map[string]struct{}
	// open holds all currently open elements, root first.
	open []*etree.Element
	// retained counts the open elements with a requested kind. Children are
	// only attached to their parent while retained > 0.
	retained int
	last     *etree.Element
	err      error
	onClose  func() error
}

// New returns an Extractor for all elements of the given kinds. Uses
// DefaultKinds if kinds is empty.
func New(r io.Reader, kinds ...string) *Extractor {
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	e := &Extractor{
		dec:   xml.NewDecoder(r),
		kinds: make(map[string]struct{}, len(kinds)),
	}
	for _, k := range kinds {
		e.kinds[k] = struct{}{}
	}
	return e
}

// Open returns an Extractor for a .osm or .osm.gz file.
func Open(filename string, kinds ...string) (*Extractor, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	var r io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening %s", filename)
		}
		r = gz
	}
	e := New(r, kinds...)
	e.onClose = f.Close
	return e, nil
}

// Next returns the next complete element of a requested kind in document
// order. The element returned by the previous call is released. Returns
// io.EOF at the end of the document. Any other error is fatal and returned
// by all following calls.
func (e *Extractor) Next() (*etree.Element, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.Release(e.last)
	e.last = nil

	for {
		token, err := e.dec.Token()
		if err == io.EOF {
			e.err = io.EOF
			return nil, e.err
		}
		if err != nil {
			e.err = errors.Wrapf(err, "parsing xml at offset %d", e.dec.InputOffset())
			return nil, e.err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			elem := etree.NewElement(tok.Name.Local)
			for _, attr := range tok.Attr {
				elem.CreateAttr(attr.Name.Local, attr.Value)
			}
			if e.retained > 0 {
				e.open[len(e.open)-1].AddChild(elem)
			}
			e.open = append(e.open, elem)
			if e.wanted(elem) {
				e.retained += 1
			}
		case xml.EndElement:
			elem := e.open[len(e.open)-1]
			e.open[len(e.open)-1] = nil
			e.open = e.open[:len(e.open)-1]
			if !e.wanted(elem) {
				// unwanted elements outside of a wanted element were
				// never attached and are dropped here
				continue
			}
			e.retained -= 1
			if e.retained == 0 {
				e.last = elem
			}
			return elem, nil
		}
	}
}

func (e *Extractor) wanted(elem *etree.Element) bool {
	_, ok := e.kinds[elem.Tag]
	return ok
}

// Release frees the children of a top level element returned by Next.
// Elements nested in another returned element are still part of that
// element and are left untouched.
func (e *Extractor) Release(elem *etree.Element) {
	if elem == nil || elem.Parent() != nil {
		return
	}
	elem.Child = nil
	if elem == e.last {
		e.last = nil
	}
}

// Close releases the last element and closes the underlying file, if the
// Extractor was created with Open.
func (e *Extractor) Close() error {
	e.Release(e.last)
	e.open = nil
	if e.onClose != nil {
		err := e.onClose()
		e.onClose = nil
		return err
	}
	return nil
}
