/*
Package pbf extracts OSM elements from .osm.pbf files.

Elements are decoded with github.com/omniscale/go-osm and converted into the
same element trees the osmxml package returns, so callers can handle both
formats alike. The decoder runs with a single block worker in a background
goroutine to keep the elements in file order.
*/
package pbf

import (
	"context"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"
	osm "github.com/omniscale/go-osm"
	osmpbf "github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/logging"
)

var log = logging.NewLogger("pbf")

var defaultKinds = []string{element.NodeKind, element.WayKind}

// Extractor returns nodes, ways and relations of a PBF file as element trees.
type Extractor struct {
	kinds   map[string]struct{}
	nodes   chan []osm.Node
	ways    chan []osm.Way
	rels    chan []osm.Relation
	errc    chan error
	cancel  context.CancelFunc
	pending []*etree.Element
	last    *etree.Element
	err     error
	onClose func() error
}

// Open starts parsing filename and returns an Extractor for the given kinds.
func Open(filename string, kinds ...string) (*Extractor, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	e := New(f, kinds...)
	e.onClose = f.Close
	return e, nil
}

// New starts parsing r in the background.
func New(r io.Reader, kinds ...string) *Extractor {
	if len(kinds) == 0 {
		kinds = defaultKinds
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Extractor{
		kinds:  make(map[string]struct{}, len(kinds)),
		nodes:  make(chan []osm.Node),
		ways:   make(chan []osm.Way),
		rels:   make(chan []osm.Relation),
		errc:   make(chan error, 1),
		cancel: cancel,
	}
	for _, k := range kinds {
		e.kinds[k] = struct{}{}
	}

	p := osmpbf.New(r, osmpbf.Config{
		IncludeMetadata: true,
		Nodes:           e.nodes,
		Ways:            e.ways,
		Relations:       e.rels,
		// unbuffered channels and a single worker keep the file order
		Concurrency: 1,
	})
	go func() {
		err := p.Parse(ctx)
		if err == context.Canceled {
			err = nil
		}
		e.errc <- err
		close(e.errc)
	}()
	return e
}

// Next returns the next element of a requested kind. Returns io.EOF after
// the last element.
func (e *Extractor) Next() (*etree.Element, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.Release(e.last)
	e.last = nil

	for len(e.pending) == 0 {
		select {
		case err := <-e.errc:
			// the parser sends the result after all elements were
			// received, the channels are left open on errors
			if err != nil {
				e.err = errors.Wrap(err, "parsing pbf")
			} else {
				e.err = io.EOF
			}
			return nil, e.err
		case nds, ok := <-e.nodes:
			if !ok {
				e.nodes = nil
				continue
			}
			for i := range nds {
				e.queue(nodeElement(&nds[i]))
			}
		case ways, ok := <-e.ways:
			if !ok {
				e.ways = nil
				continue
			}
			for i := range ways {
				e.queue(wayElement(&ways[i]))
			}
		case rels, ok := <-e.rels:
			if !ok {
				e.rels = nil
				continue
			}
			for i := range rels {
				e.queue(relationElement(&rels[i]))
			}
		}
	}

	elem := e.pending[0]
	e.pending[0] = nil
	e.pending = e.pending[1:]
	if elem.Parent() == nil {
		e.last = elem
	}
	return elem, nil
}

// queue adds the requested elements of the tree, children before their
// parents, the same order osmxml returns them.
func (e *Extractor) queue(elem *etree.Element) {
	if _, ok := e.kinds[elem.Tag]; !ok {
		for _, child := range elem.ChildElements() {
			if _, ok := e.kinds[child.Tag]; ok {
				elem.RemoveChild(child)
				e.pending = append(e.pending, child)
			}
		}
		return
	}
	for _, child := range elem.ChildElements() {
		if _, ok := e.kinds[child.Tag]; ok {
			e.pending = append(e.pending, child)
		}
	}
	e.pending = append(e.pending, elem)
}

func (e *Extractor) Release(elem *etree.Element) {
	if elem == nil || elem.Parent() != nil {
		return
	}
	elem.Child = nil
	if elem == e.last {
		e.last = nil
	}
}

// Close stops the background parser and closes the file.
func (e *Extractor) Close() error {
	e.cancel()
	// drain until the parser closed all channels
	if nodes := e.nodes; nodes != nil {
		go func() {
			for range nodes {
			}
		}()
	}
	if ways := e.ways; ways != nil {
		go func() {
			for range ways {
			}
		}()
	}
	if rels := e.rels; rels != nil {
		go func() {
			for range rels {
			}
		}()
	}
	e.nodes, e.ways, e.rels = nil, nil, nil
	e.pending = nil
	if e.onClose != nil {
		err := e.onClose()
		e.onClose = nil
		if err != nil {
			log.Warnf("closing pbf file: %s", err)
			return err
		}
	}
	return nil
}

func newElement(kind string, base *osm.Element) *etree.Element {
	elem := etree.NewElement(kind)
	elem.CreateAttr("id", strconv.FormatInt(base.ID, 10))
	return elem
}

func addMetadata(elem *etree.Element, md *osm.Metadata) {
	if md == nil {
		return
	}
	elem.CreateAttr("user", md.UserName)
	elem.CreateAttr("uid", strconv.FormatInt(int64(md.UserID), 10))
	elem.CreateAttr("version", strconv.FormatInt(int64(md.Version), 10))
	elem.CreateAttr("changeset", strconv.FormatInt(md.Changeset, 10))
	elem.CreateAttr("timestamp", md.Timestamp.UTC().Format(time.RFC3339))
}

// addTags appends tag children sorted by key, PBF does not keep the tag
// order of the original document.
func addTags(elem *etree.Element, tags osm.Tags) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tag := elem.CreateElement(element.TagKind)
		tag.CreateAttr("k", k)
		tag.CreateAttr("v", tags[k])
	}
}

func formatCoord(c float64) string {
	return strconv.FormatFloat(c, 'f', 7, 64)
}

func nodeElement(n *osm.Node) *etree.Element {
	elem := newElement(element.NodeKind, &n.Element)
	elem.CreateAttr("lat", formatCoord(n.Lat))
	elem.CreateAttr("lon", formatCoord(n.Long))
	addMetadata(elem, n.Metadata)
	addTags(elem, n.Tags)
	return elem
}

func wayElement(w *osm.Way) *etree.Element {
	elem := newElement(element.WayKind, &w.Element)
	addMetadata(elem, w.Metadata)
	for _, ref := range w.Refs {
		nd := elem.CreateElement(element.NdKind)
		nd.CreateAttr("ref", strconv.FormatInt(ref, 10))
	}
	addTags(elem, w.Tags)
	return elem
}

var memberTypes = map[osm.MemberType]string{
	osm.NodeMember:     element.NodeKind,
	osm.WayMember:      element.WayKind,
	osm.RelationMember: element.RelationKind,
}

func relationElement(r *osm.Relation) *etree.Element {
	elem := newElement(element.RelationKind, &r.Element)
	addMetadata(elem, r.Metadata)
	for _, m := range r.Members {
		member := elem.CreateElement(element.MemberKind)
		member.CreateAttr("type", memberTypes[m.Type])
		member.CreateAttr("ref", strconv.FormatInt(m.ID, 10))
		member.CreateAttr("role", m.Role)
	}
	addTags(elem, r.Tags)
	return elem
}
