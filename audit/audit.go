/*
Package audit implements read-only scans over OSM files that list the tag
values the normalization maps do not cover yet.

Each scan opens its own Source and returns a mapping from a classification
key (a street type token, a house number suffix, a phone number length) to
the raw values of that class.

House numbers are checked per entry of a list value ("5,7B" checks "5" and
"7B"). Entries without a suffix are fine and not reported, so there is no ""
class in the result.

Element counts include the bounds element and all node, way and relation
elements with their children. The osm root element is not counted, as it
would have to be kept with the whole document.
*/
package audit

import (
	"io"
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/cache"
	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/logging"
	"github.com/omniscale/osmwrangle/mapping"
	"github.com/omniscale/osmwrangle/normalize"
	"github.com/omniscale/osmwrangle/reader"
	"github.com/omniscale/osmwrangle/shape"
)

var log = logging.NewLogger("audit")

// Keys of the EmptyValues result.
const (
	Empty           = "empty"
	LeadingTrailing = "leading_trailing"
	NotEmpty        = "not_empty"
)

var nodesAndWays = []string{element.NodeKind, element.WayKind}

// scan calls fn for each element of the requested kinds.
func scan(open reader.Opener, kinds []string, fn func(*etree.Element) error) error {
	src, err := open(kinds...)
	if err != nil {
		return err
	}
	defer src.Close()
	for {
		elem, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(elem); err != nil {
			return err
		}
		src.Release(elem)
	}
}

// scanTags calls fn with the value of each tag with key that belongs to a
// node or way.
func scanTags(open reader.Opener, key string, fn func(v string)) error {
	return scan(open, nodesAndWays, func(elem *etree.Element) error {
		for _, tag := range elem.SelectElements(element.TagKind) {
			if tag.SelectAttrValue("k", "") == key {
				fn(tag.SelectAttrValue("v", ""))
			}
		}
		return nil
	})
}

// EmptyValues counts the values of all tags in the document, including tags
// of relations, by whether they are empty, padded with whitespace or clean.
func EmptyValues(open reader.Opener) (map[string]int, error) {
	counts := map[string]int{Empty: 0, LeadingTrailing: 0, NotEmpty: 0}
	err := scan(open, []string{element.TagKind}, func(elem *etree.Element) error {
		switch shape.ClassifyValue(elem.SelectAttrValue("v", "")) {
		case shape.EmptyValue:
			counts[Empty]++
		case shape.PaddedValue:
			counts[LeadingTrailing]++
		default:
			counts[NotEmpty]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// valueSets collects distinct values per key.
type valueSets map[string]map[string]struct{}

func (s valueSets) add(key, value string) {
	set, ok := s[key]
	if !ok {
		set = make(map[string]struct{})
		s[key] = set
	}
	set[value] = struct{}{}
}

func (s valueSets) sorted() map[string][]string {
	result := make(map[string][]string, len(s))
	for key, set := range s {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		result[key] = values
	}
	return result
}

// HouseNumbers returns all addr:housenumber values with a suffix that is not
// in the list of expected suffixes, grouped by that suffix. Each number of a
// list like "5,7B" is checked, numbers without suffix are fine.
func HouseNumbers(open reader.Opener, maps *mapping.Maps) (map[string][]string, error) {
	sets := make(valueSets)
	err := scanTags(open, "addr:housenumber", func(v string) {
		for _, nb := range normalize.SplitHouseNumbers(v) {
			_, suffix, ok := normalize.HouseNumberSuffix(nb)
			if !ok || suffix == "" || maps.ExpectedHouseNumberSuffix(suffix) {
				continue
			}
			sets.add(suffix, v)
		}
	})
	if err != nil {
		return nil, err
	}
	return sets.sorted(), nil
}

// StreetTypes returns all addr:street values that do not start with an
// expected street type, grouped by their first token.
func StreetTypes(open reader.Opener, maps *mapping.Maps) (map[string][]string, error) {
	sets := make(valueSets)
	err := scanTags(open, "addr:street", func(v string) {
		tok, ok := normalize.FirstToken(v)
		if !ok || maps.ExpectedStreetType(tok) {
			return
		}
		sets.add(tok, v)
	})
	if err != nil {
		return nil, err
	}
	return sets.sorted(), nil
}

var phoneSeparators = regexp.MustCompile(`[+()\-\s\v]`)

// PhoneLengths groups the raw values of all phone tags by the number of
// characters left after removing separators.
func PhoneLengths(open reader.Opener) (map[int][]string, error) {
	lengths := make(map[int][]string)
	err := scanTags(open, "phone", func(v string) {
		n := utf8.RuneCountInString(phoneSeparators.ReplaceAllString(v, ""))
		lengths[n] = append(lengths[n], v)
	})
	if err != nil {
		return nil, err
	}
	return lengths, nil
}

// ElementCounts counts the bounds, node, way and relation elements and all
// their children by element name.
func ElementCounts(open reader.Opener) (map[string]int, error) {
	counts := make(map[string]int)
	var count func(elem *etree.Element)
	count = func(elem *etree.Element) {
		counts[elem.Tag]++
		for _, child := range elem.ChildElements() {
			count(child)
		}
	}
	err := scan(open, []string{element.BoundsKind, element.NodeKind, element.WayKind, element.RelationKind}, func(elem *etree.Element) error {
		count(elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// DanglingRefs returns the ids of all nodes that are referenced by a way
// but not present in the document, together with the referencing way ids.
// The node ids and references are indexed in cacheDir, which is removed
// afterwards.
func DanglingRefs(open reader.Opener, cacheDir string) (map[int64][]int64, error) {
	c := cache.NewRefCache(cacheDir)
	if c.Exists() {
		log.Printf("removing existing reference cache %s", cacheDir)
		if err := c.Remove(); err != nil {
			return nil, errors.Wrap(err, "removing reference cache")
		}
	}
	if err := c.Open(); err != nil {
		return nil, err
	}
	defer func() {
		c.Close()
		if err := c.Remove(); err != nil {
			log.Warnf("removing reference cache: %s", err)
		}
	}()

	err := scan(open, nodesAndWays, func(elem *etree.Element) error {
		id, err := parseID(elem, "id")
		if err != nil {
			return err
		}
		if elem.Tag == element.NodeKind {
			return c.Nodes.Add(id)
		}
		for _, nd := range elem.SelectElements(element.NdKind) {
			ref, err := parseID(nd, "ref")
			if err != nil {
				return err
			}
			if err := c.Refs.Add(ref, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dangling := make(map[int64][]int64)
	err = c.Refs.Iter(func(id int64, ways []int64) error {
		found, err := c.Nodes.Has(id)
		if err != nil {
			return err
		}
		if !found {
			dangling[id] = ways
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "checking references")
	}
	return dangling, nil
}

func parseID(elem *etree.Element, attr string) (int64, error) {
	v := elem.SelectAttrValue(attr, "")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s '%s' of %s", attr, v, elem.Tag)
	}
	return id, nil
}
