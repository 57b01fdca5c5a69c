package element

import (
	"reflect"
	"testing"
)

func TestNodeRows(t *testing.T) {
	s := Shaped{
		Node: &Node{"1", "48.89", "2.20", "bob", "42", "3", "100", "2017-08-16T17:26:14Z"},
		Tags: []Tag{{"1", "street", "Rue de Paris", "addr"}},
	}
	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatal("expected rows for two tables", rows)
	}
	if rows[0].Table.Name != "nodes" || rows[1].Table.Name != "nodes_tags" {
		t.Fatal("unexpected tables", rows)
	}
	if !reflect.DeepEqual(rows[0].Rows[0], []string{"1", "48.89", "2.20", "bob", "42", "3", "100", "2017-08-16T17:26:14Z"}) {
		t.Error("unexpected node row", rows[0].Rows[0])
	}
	if !reflect.DeepEqual(rows[1].Rows[0], []string{"1", "street", "Rue de Paris", "addr"}) {
		t.Error("unexpected tag row", rows[1].Rows[0])
	}
}

func TestWayRows(t *testing.T) {
	s := Shaped{
		Way:      &Way{"7", "bob", "42", "1", "100", "2017-08-16T17:26:14Z"},
		WayNodes: []WayNode{{"7", "1", 0}, {"7", "2", 1}},
	}
	rows := s.Rows()
	if len(rows) != 3 {
		t.Fatal("expected rows for three tables", rows)
	}
	if rows[0].Table.Name != "ways" || rows[1].Table.Name != "ways_nodes" || rows[2].Table.Name != "ways_tags" {
		t.Fatal("unexpected tables", rows)
	}
	if !reflect.DeepEqual(rows[1].Rows, [][]string{{"7", "1", "0"}, {"7", "2", "1"}}) {
		t.Error("unexpected way node rows", rows[1].Rows)
	}
	if len(rows[2].Rows) != 0 {
		t.Error("expected no tag rows", rows[2].Rows)
	}
}

func TestTableFieldsMatchRows(t *testing.T) {
	if n := len((&Node{}).Row()); n != len(NodesTable.Fields) {
		t.Error("node row/fields mismatch", n)
	}
	if n := len((&Way{}).Row()); n != len(WaysTable.Fields) {
		t.Error("way row/fields mismatch", n)
	}
	if n := len((&Tag{}).Row()); n != len(NodeTagsTable.Fields) || n != len(WayTagsTable.Fields) {
		t.Error("tag row/fields mismatch", n)
	}
	if n := len((&WayNode{}).Row()); n != len(WayNodesTable.Fields) {
		t.Error("way node row/fields mismatch", n)
	}
}
