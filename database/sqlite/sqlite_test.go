package sqlite

import (
	"database/sql"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/omniscale/osmwrangle/database"
	"github.com/omniscale/osmwrangle/element"
)

func testShaped() []*element.Shaped {
	return []*element.Shaped{
		{
			Node: &element.Node{ID: "1", Lat: "48.89", Lon: "2.20", User: "bob", UID: "42", Version: "2", Changeset: "100", Timestamp: "2017-08-16T17:26:14Z"},
			Tags: []element.Tag{{ID: "1", Key: "street", Value: "Avenue Foch", Type: "addr"}},
		},
		{
			Way:      &element.Way{ID: "10", User: "alice", UID: "7", Version: "1", Changeset: "101", Timestamp: "2017-08-16T17:26:14Z"},
			WayNodes: []element.WayNode{{ID: "10", NodeID: "1", Position: 0}, {ID: "10", NodeID: "2", Position: 1}},
		},
	}
}

func count(t *testing.T, path, table string) int {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT count(*) FROM " + quote(table)).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestSQLite(t *testing.T) {
	dir, _ := ioutil.TempDir("", "osmwrangle_test")
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "osm.sqlite")

	sink, err := database.Open(database.Config{ConnectionParams: "sqlite:" + path})
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Init(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Begin(); err != nil {
		t.Fatal(err)
	}
	for _, s := range testShaped() {
		if err := sink.Write(s.Rows()); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.End(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	for table, expected := range map[string]int{
		"nodes": 1, "nodes_tags": 1, "ways": 1, "ways_nodes": 2, "ways_tags": 0,
	} {
		if n := count(t, path, table); n != expected {
			t.Errorf("expected %d rows in %s, got %d", expected, table, n)
		}
	}

	db, _ := sql.Open("sqlite3", path)
	defer db.Close()
	var position int
	if err := db.QueryRow(`SELECT position FROM ways_nodes WHERE node_id = 2`).Scan(&position); err != nil || position != 1 {
		t.Error("unexpected position", position, err)
	}
}

func TestSQLiteAbort(t *testing.T) {
	dir, _ := ioutil.TempDir("", "osmwrangle_test")
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "osm.sqlite")

	sink, err := New(database.Config{ConnectionParams: "sqlite:" + path})
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Init(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(testShaped()[0].Rows()); err != nil {
		t.Fatal(err)
	}
	if err := sink.Abort(); err != nil {
		t.Fatal(err)
	}
	sink.Close()

	if n := count(t, path, "nodes"); n != 0 {
		t.Error("expected rollback, found rows", n)
	}
}
