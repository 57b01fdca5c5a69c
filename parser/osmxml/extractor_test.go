package osmxml

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

const testDoc = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <bounds minlat="48.88" minlon="2.19" maxlat="48.90" maxlon="2.22"/>
 <node id="1" lat="48.8900" lon="2.2000" user="bob" uid="42" version="2" changeset="100" timestamp="2017-08-16T17:26:14Z">
  <tag k="addr:street" v="avenue Foch"/>
 </node>
 <node id="2" lat="48.8901" lon="2.2001" user="bob" uid="42" version="1" changeset="100" timestamp="2017-08-16T17:26:14Z"/>
 <way id="10" user="alice" uid="7" version="1" changeset="101" timestamp="2017-08-16T17:26:14Z">
  <nd ref="1"/>
  <nd ref="2"/>
  <tag k="highway" v="residential"/>
 </way>
 <relation id="100" user="alice" uid="7" version="1" changeset="101" timestamp="2017-08-16T17:26:14Z">
  <member type="way" ref="10" role="outer"/>
  <tag k="type" v="multipolygon"/>
 </relation>
</osm>
`

func collect(t *testing.T, e *Extractor) []*etree.Element {
	t.Helper()
	var elems []*etree.Element
	for {
		elem, err := e.Next()
		if err == io.EOF {
			return elems
		}
		if err != nil {
			t.Fatal(err)
		}
		// copy, since Next releases the previous element
		elems = append(elems, elem.Copy())
	}
}

func TestDefaultKinds(t *testing.T) {
	elems := collect(t, New(strings.NewReader(testDoc)))
	if len(elems) != 3 {
		t.Fatal("expected 3 elements, got", len(elems))
	}
	for i, want := range []string{"node", "node", "way"} {
		if elems[i].Tag != want {
			t.Errorf("element %d: expected %s, got %s", i, want, elems[i].Tag)
		}
	}

	n := elems[0]
	if n.SelectAttrValue("id", "") != "1" || n.SelectAttrValue("lat", "") != "48.8900" {
		t.Error("unexpected node attributes", n.Attr)
	}
	tags := n.SelectElements("tag")
	if len(tags) != 1 || tags[0].SelectAttrValue("v", "") != "avenue Foch" {
		t.Error("unexpected node tags", tags)
	}

	w := elems[2]
	nds := w.SelectElements("nd")
	if len(nds) != 2 || nds[0].SelectAttrValue("ref", "") != "1" || nds[1].SelectAttrValue("ref", "") != "2" {
		t.Error("unexpected way refs", nds)
	}
	if len(w.ChildElements()) != 3 {
		t.Error("unexpected way children", w.ChildElements())
	}
}

func TestWithRelations(t *testing.T) {
	elems := collect(t, New(strings.NewReader(testDoc), "node", "way", "relation"))
	if len(elems) != 4 {
		t.Fatal("expected 4 elements, got", len(elems))
	}
	rel := elems[3]
	if rel.Tag != "relation" || len(rel.SelectElements("member")) != 1 {
		t.Error("unexpected relation", rel)
	}
}

func TestAttrWhitespaceKept(t *testing.T) {
	doc := "<osm><node id=\"1\"><tag k=\"name\" v=\"a\tb&#9;c\nd\"/></node></osm>"
	elems := collect(t, New(strings.NewReader(doc), "tag"))
	if len(elems) != 1 {
		t.Fatal("expected 1 tag, got", len(elems))
	}
	if v := elems[0].SelectAttrValue("v", ""); v != "a\tb\tc\nd" {
		t.Errorf("unexpected value %q", v)
	}
}

func TestNestedKinds(t *testing.T) {
	elems := collect(t, New(strings.NewReader(testDoc), "tag"))
	if len(elems) != 3 {
		t.Fatal("expected 3 tags, got", len(elems))
	}
	for i, want := range []string{"addr:street", "highway", "type"} {
		if k := elems[i].SelectAttrValue("k", ""); k != want {
			t.Errorf("tag %d: expected %s, got %s", i, want, k)
		}
	}
}

func TestNestedKindsStayAttached(t *testing.T) {
	e := New(strings.NewReader(testDoc), "way", "nd")
	var kinds []string
	for {
		elem, err := e.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, elem.Tag)
		if elem.Tag == "way" && len(elem.SelectElements("nd")) != 2 {
			t.Error("nd elements missing from way", elem.ChildElements())
		}
	}
	if strings.Join(kinds, ",") != "nd,nd,way" {
		t.Error("unexpected order", kinds)
	}
}

func TestRelease(t *testing.T) {
	e := New(strings.NewReader(testDoc))
	first, err := e.Next()
	if err != nil {
		t.Fatal(err)
	}
	if len(first.ChildElements()) != 1 {
		t.Fatal("expected tag child", first.ChildElements())
	}
	if first.Parent() != nil {
		t.Error("top level element still attached to document root")
	}
	if _, err := e.Next(); err != nil {
		t.Fatal(err)
	}
	if len(first.Child) != 0 {
		t.Error("previous element not released", first.Child)
	}
	if len(e.open) != 1 {
		t.Error("expected only the root element to be open", e.open)
	}
}

func TestMalformed(t *testing.T) {
	doc := `<osm><node id="1" lat="1" lon="1"><tag k="a" v="b"></node></osm>`
	e := New(strings.NewReader(doc))
	_, err := e.Next()
	if err == nil || err == io.EOF {
		t.Fatal("expected parse error, got", err)
	}
	if _, err2 := e.Next(); err2 != err {
		t.Error("expected error to be sticky", err2)
	}
}

func TestTruncated(t *testing.T) {
	doc := `<osm><node id="1" lat="1" lon="1"/><node id="2"`
	e := New(strings.NewReader(doc))
	if _, err := e.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Next(); err == nil || err == io.EOF {
		t.Fatal("expected parse error for truncated document, got", err)
	}
}

func TestOpenGz(t *testing.T) {
	e, err := Open(filepath.Join("testdata", "nanterre.osm.gz"))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	elems := collect(t, e)
	if len(elems) != 3 {
		t.Fatal("expected 3 elements, got", len(elems))
	}
}
