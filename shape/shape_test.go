package shape

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/mapping"
	"github.com/omniscale/osmwrangle/parser/osmxml"
)

const meta = `user="bob" uid="42" version="2" changeset="100" timestamp="2017-08-16T17:26:14Z"`

func parse(t *testing.T, doc string) *etree.Element {
	t.Helper()
	e := osmxml.New(strings.NewReader("<osm>" + doc + "</osm>"))
	elem, err := e.Next()
	if err != nil {
		t.Fatal(err)
	}
	return elem
}

type collector struct {
	problems *[]Problem
}

func (c collector) Report(p Problem) { *c.problems = append(*c.problems, p) }

func shaper(problems *[]Problem) *Shaper {
	s := New(mapping.Default())
	s.SetReporter(collector{problems})
	return s
}

func TestShapeNode(t *testing.T) {
	var problems []Problem
	s := shaper(&problems)
	elem := parse(t, `<node id="1" lat="48.89" lon="2.20" `+meta+`>
		<tag k="addr:street" v="  Rue de Paris "/>
		<tag k="addr:housenumber" v="5,7B"/>
		<tag k="phone" v="01 23 45 67 89"/>
		<tag k="name" v="   "/>
		<tag k="FIXME " v="check"/>
		<tag k="amenity" v="townhall"/>
		<tag k="name:fr" v="Mairie"/>
		<tag k="addr:street:name" v="Foch"/>
		<tag k="Name:Fr" v="Mairie"/>
	</node>`)

	shaped, err := s.Shape(elem)
	if err != nil {
		t.Fatal(err)
	}
	if shaped.Way != nil || shaped.WayNodes != nil {
		t.Error("unexpected way records", shaped)
	}
	expectedNode := element.Node{ID: "1", Lat: "48.89", Lon: "2.20", User: "bob", UID: "42", Version: "2", Changeset: "100", Timestamp: "2017-08-16T17:26:14Z"}
	if *shaped.Node != expectedNode {
		t.Error("unexpected node", shaped.Node)
	}

	expectedTags := []element.Tag{
		{ID: "1", Key: "street", Value: "Rue de Paris", Type: "addr"},
		{ID: "1", Key: "housenumber", Value: "5;7 bis", Type: "addr"},
		{ID: "1", Key: "phone", Value: "+33 1 23 45 67 89", Type: "regular"},
		{ID: "1", Key: "amenity", Value: "townhall", Type: "regular"},
		{ID: "1", Key: "fr", Value: "Mairie", Type: "name"},
		{ID: "1", Key: "addr:street:name", Value: "Foch", Type: "regular"},
		{ID: "1", Key: "Name:Fr", Value: "Mairie", Type: "regular"},
	}
	if !reflect.DeepEqual(shaped.Tags, expectedTags) {
		t.Errorf("unexpected tags\n%v\n%v", shaped.Tags, expectedTags)
	}

	if len(problems) != 1 {
		t.Fatal("expected one problem", problems)
	}
	if problems[0].Key != "FIXME " || problems[0].Elem != elem {
		t.Error("unexpected problem", problems[0])
	}
	if !strings.Contains(problems[0].Attrs(), "id=1") || !strings.Contains(problems[0].Attrs(), "user=bob") {
		t.Error("expected element attributes in problem", problems[0].Attrs())
	}
}

func TestShapeWay(t *testing.T) {
	var problems []Problem
	s := shaper(&problems)
	elem := parse(t, `<way id="10" `+meta+`>
		<nd ref="5"/>
		<tag k="highway" v="residential"/>
		<nd ref="3"/>
		<nd ref="9"/>
		<nd ref="5"/>
		<tag k="contact:phone" v="0033 1 23 45 67 89"/>
	</way>`)

	shaped, err := s.Shape(elem)
	if err != nil {
		t.Fatal(err)
	}
	if shaped.Node != nil {
		t.Error("unexpected node", shaped.Node)
	}
	expectedWay := element.Way{ID: "10", User: "bob", UID: "42", Version: "2", Changeset: "100", Timestamp: "2017-08-16T17:26:14Z"}
	if *shaped.Way != expectedWay {
		t.Error("unexpected way", shaped.Way)
	}
	expectedNodes := []element.WayNode{{ID: "10", NodeID: "5", Position: 0}, {ID: "10", NodeID: "3", Position: 1}, {ID: "10", NodeID: "9", Position: 2}, {ID: "10", NodeID: "5", Position: 3}}
	if !reflect.DeepEqual(shaped.WayNodes, expectedNodes) {
		t.Error("unexpected way nodes", shaped.WayNodes)
	}
	expectedTags := []element.Tag{
		{ID: "10", Key: "highway", Value: "residential", Type: "regular"},
		{ID: "10", Key: "phone", Value: "+33 1 23 45 67 89", Type: "contact"},
	}
	if !reflect.DeepEqual(shaped.Tags, expectedTags) {
		t.Error("unexpected tags", shaped.Tags)
	}
}

func TestWayNodePositions(t *testing.T) {
	s := New(mapping.Default())
	for _, n := range []int{0, 1, 2, 17} {
		doc := `<way id="1" ` + meta + `>`
		for i := 0; i < n; i++ {
			doc += fmt.Sprintf(`<nd ref="%d"/>`, 1000-i)
		}
		doc += `</way>`
		shaped, err := s.Shape(parse(t, doc))
		if err != nil {
			t.Fatal(err)
		}
		if len(shaped.WayNodes) != n {
			t.Fatalf("expected %d way nodes, got %d", n, len(shaped.WayNodes))
		}
		for i, wn := range shaped.WayNodes {
			if wn.Position != i || wn.NodeID != fmt.Sprint(1000-i) || wn.ID != "1" {
				t.Errorf("unexpected way node %d: %v", i, wn)
			}
		}
	}
}

func TestMissingAttribute(t *testing.T) {
	s := New(mapping.Default())
	for _, test := range []struct {
		doc  string
		attr string
	}{
		{`<node id="1" lon="2.2" ` + meta + `/>`, "lat"},
		{`<node id="1" lat="1" lon="2.2" user="bob" uid="1" version="1" changeset="1"/>`, "timestamp"},
		{`<way id="1" user="bob" version="1" changeset="1" timestamp="2017-08-16T17:26:14Z"/>`, "uid"},
		{`<way id="1" ` + meta + `><nd/></way>`, "ref"},
	} {
		_, err := s.Shape(parse(t, test.doc))
		mErr, ok := err.(*MissingAttributeError)
		if !ok {
			t.Errorf("%s: expected MissingAttributeError, got %v", test.doc, err)
			continue
		}
		if mErr.Attr != test.attr || mErr.ID != "1" {
			t.Errorf("%s: unexpected error %v", test.doc, mErr)
		}
	}
}

func TestOtherKinds(t *testing.T) {
	s := New(mapping.Default())
	shaped, err := s.Shape(etree.NewElement("relation"))
	if shaped != nil || err != nil {
		t.Error("expected nil for relation", shaped, err)
	}
}

func TestEmptyValuesNeverEmitted(t *testing.T) {
	var problems []Problem
	s := shaper(&problems)
	for _, v := range []string{"", " ", "\t", "\n  ", " "} {
		doc := fmt.Sprintf(`<node id="1" lat="1" lon="2" %s><tag k="name" v="%s"/><tag k="bad key" v="%s"/></node>`, meta, v, v)
		shaped, err := s.Shape(parse(t, doc))
		if err != nil {
			t.Fatal(err)
		}
		if len(shaped.Tags) != 0 {
			t.Errorf("%q: expected no tags, got %v", v, shaped.Tags)
		}
	}
	if len(problems) != 0 {
		t.Error("empty tags with invalid keys should be dropped silently", problems)
	}
}

func TestClassifyValue(t *testing.T) {
	for _, test := range []struct {
		value    string
		expected int
	}{
		{"", EmptyValue},
		{"  ", EmptyValue},
		{" a", PaddedValue},
		{"a\t", PaddedValue},
		{"a b", CleanValue},
	} {
		if got := ClassifyValue(test.value); got != test.expected {
			t.Errorf("%q: expected %d, got %d", test.value, test.expected, got)
		}
	}
}

func TestProblemKey(t *testing.T) {
	for _, c := range []string{"=", "+", "/", "&", "<", ">", ";", "'", `"`, "?", "%", "#", "$", "@", ",", ".", " ", "\t", "\r", "\n"} {
		if !ProblemKey("addr" + c + "street") {
			t.Errorf("expected %q to be a problem char", c)
		}
	}
	for _, k := range []string{"addr:street", "name", "FIXME", "name:fr-x", "building:levels", "ÉTAGE"} {
		if ProblemKey(k) {
			t.Errorf("expected %q to be valid", k)
		}
	}
}

func TestClassifyKey(t *testing.T) {
	for _, test := range []struct {
		raw, typ, key string
	}{
		{"addr:street", "addr", "street"},
		{"building:levels", "building", "levels"},
		{"name_int:fr_x", "name_int", "fr_x"},
		{"addr:", "addr", ""},
		{"name", "regular", "name"},
		{"addr:street:name", "regular", "addr:street:name"},
		{"Addr:street", "regular", "Addr:street"},
		{"name:fr-x", "regular", "name:fr-x"},
		{"ref:FR:SIRET", "regular", "ref:FR:SIRET"},
		{"name:1", "regular", "name:1"},
	} {
		typ, key := ClassifyKey(test.raw)
		if typ != test.typ || key != test.key {
			t.Errorf("%q: expected (%q, %q), got (%q, %q)", test.raw, test.typ, test.key, typ, key)
		}
	}
}

func TestShapeFile(t *testing.T) {
	e, err := osmxml.Open("../parser/osmxml/testdata/nanterre.osm")
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	reporter := &CountingReporter{}
	s := New(mapping.Default())
	s.SetReporter(reporter)

	var tags, wayNodes int
	for {
		elem, err := e.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		shaped, err := s.Shape(elem)
		if err != nil {
			t.Fatal(err)
		}
		if shaped == nil {
			continue
		}
		tags += len(shaped.Tags)
		wayNodes += len(shaped.WayNodes)
	}
	if tags != 5 || wayNodes != 3 {
		t.Error("unexpected counts", tags, wayNodes)
	}
	if reporter.Count() != 1 {
		t.Error("expected one problem", reporter.Count())
	}
}
