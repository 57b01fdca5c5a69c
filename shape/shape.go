/*
Package shape converts extracted OSM node and way elements into relational
records.

For each element the Shaper copies the fixed attributes, cleans and
normalizes the tag values, classifies the tag keys and, for ways, numbers the
node references. Tags with empty values are dropped silently, tags with
invalid keys are dropped and reported.
*/
package shape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/logging"
	"github.com/omniscale/osmwrangle/mapping"
	"github.com/omniscale/osmwrangle/normalize"
)

var log = logging.NewLogger("shape")

var (
	nodeAttrs = []string{"id", "lat", "lon", "user", "uid", "version", "changeset", "timestamp"}
	wayAttrs  = []string{"id", "user", "uid", "version", "changeset", "timestamp"}
)

// MissingAttributeError is returned for node and way elements without one of
// the required attributes.
type MissingAttributeError struct {
	Kind string
	ID   string
	Attr string
}

func (e *MissingAttributeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s without id is missing attribute '%s'", e.Kind, e.Attr)
	}
	return fmt.Sprintf("%s %s is missing attribute '%s'", e.Kind, e.ID, e.Attr)
}

// Shaper is safe for concurrent use, as long as the Reporter is.
type Shaper struct {
	rules    *normalize.Rules
	reporter Reporter
}

func New(maps *mapping.Maps) *Shaper {
	return &Shaper{
		rules:    normalize.New(maps),
		reporter: LogReporter{},
	}
}

// SetReporter sets the destination for problem reports. Defaults to
// LogReporter.
func (s *Shaper) SetReporter(r Reporter) {
	s.reporter = r
}

// Shape returns the records of a node or way element. Other kinds are
// ignored and return nil.
func (s *Shaper) Shape(elem *etree.Element) (*element.Shaped, error) {
	switch elem.Tag {
	case element.NodeKind:
		return s.shapeNode(elem)
	case element.WayKind:
		return s.shapeWay(elem)
	}
	return nil, nil
}

func (s *Shaper) shapeNode(elem *etree.Element) (*element.Shaped, error) {
	attrs, err := requiredAttrs(elem, nodeAttrs)
	if err != nil {
		return nil, err
	}
	node := &element.Node{
		ID:        attrs[0],
		Lat:       attrs[1],
		Lon:       attrs[2],
		User:      attrs[3],
		UID:       attrs[4],
		Version:   attrs[5],
		Changeset: attrs[6],
		Timestamp: attrs[7],
	}
	return &element.Shaped{
		Node: node,
		Tags: s.tags(elem, node.ID),
	}, nil
}

func (s *Shaper) shapeWay(elem *etree.Element) (*element.Shaped, error) {
	attrs, err := requiredAttrs(elem, wayAttrs)
	if err != nil {
		return nil, err
	}
	way := &element.Way{
		ID:        attrs[0],
		User:      attrs[1],
		UID:       attrs[2],
		Version:   attrs[3],
		Changeset: attrs[4],
		Timestamp: attrs[5],
	}

	var wayNodes []element.WayNode
	for _, nd := range elem.SelectElements(element.NdKind) {
		ref := nd.SelectAttr("ref")
		if ref == nil {
			return nil, &MissingAttributeError{element.NdKind + " of way", way.ID, "ref"}
		}
		wayNodes = append(wayNodes, element.WayNode{
			ID:       way.ID,
			NodeID:   ref.Value,
			Position: len(wayNodes),
		})
	}

	return &element.Shaped{
		Way:      way,
		WayNodes: wayNodes,
		Tags:     s.tags(elem, way.ID),
	}, nil
}

func requiredAttrs(elem *etree.Element, names []string) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		attr := elem.SelectAttr(name)
		if attr == nil {
			return nil, &MissingAttributeError{elem.Tag, elem.SelectAttrValue("id", ""), name}
		}
		values[i] = attr.Value
	}
	return values, nil
}

func (s *Shaper) tags(elem *etree.Element, id string) []element.Tag {
	var tags []element.Tag
	for _, t := range elem.SelectElements(element.TagKind) {
		k := t.SelectAttrValue("k", "")
		v := t.SelectAttrValue("v", "")

		v, ok := cleanValue(v)
		if !ok {
			continue
		}
		v = s.rules.Value(k, v)

		if ProblemKey(k) {
			s.reporter.Report(Problem{Elem: elem, Key: k, Value: v})
			continue
		}
		typ, key := ClassifyKey(k)
		tags = append(tags, element.Tag{ID: id, Key: key, Value: v, Type: typ})
	}
	return tags
}

// Value classes of raw tag values.
const (
	CleanValue = iota
	PaddedValue
	EmptyValue
)

// ClassifyValue returns whether v is empty after trimming, has leading or
// trailing whitespace or is clean.
func ClassifyValue(v string) int {
	trimmed := strings.TrimSpace(v)
	if len(trimmed) == 0 {
		return EmptyValue
	}
	if len(trimmed) != len(v) {
		return PaddedValue
	}
	return CleanValue
}

// cleanValue returns the trimmed value and false if nothing is left.
func cleanValue(v string) (string, bool) {
	switch ClassifyValue(v) {
	case EmptyValue:
		return "", false
	case PaddedValue:
		return strings.TrimSpace(v), true
	}
	return v, true
}

var (
	problemChars = regexp.MustCompile(`[=\+/&<>;'"\?%#$@\,\. \t\r\n]`)
	lowerColon   = regexp.MustCompile(`^[a-z_]*:[a-z_]*$`)
)

// ProblemKey returns whether key contains characters that are not allowed
// in tag keys.
func ProblemKey(key string) bool {
	return problemChars.MatchString(key)
}

// ClassifyKey splits lowercase keys with a single colon into namespace
// prefix and key, e.g. "addr:street" -> ("addr", "street"). All other keys
// are returned as regular keys.
func ClassifyKey(k string) (typ, key string) {
	if lowerColon.MatchString(k) {
		parts := strings.SplitN(k, ":", 2)
		return parts[0], parts[1]
	}
	return element.RegularTagType, k
}
