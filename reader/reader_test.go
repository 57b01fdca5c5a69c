package reader

import (
	"io"
	"path/filepath"
	"testing"
)

func TestOpenXML(t *testing.T) {
	open := FileOpener(filepath.Join("..", "parser", "osmxml", "testdata", "nanterre.osm"))
	src, err := open("node", "way", "relation")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	var kinds []string
	for {
		elem, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, elem.Tag)
		src.Release(elem)
	}
	if len(kinds) != 4 || kinds[3] != "relation" {
		t.Error("unexpected elements", kinds)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open("does-not-exist.osm"); err == nil {
		t.Error("expected error for missing file")
	}
}
