package cache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func refsOf(t *testing.T, index *RefIndex, id int64) []int64 {
	t.Helper()
	var found []int64
	err := index.Iter(func(i int64, refs []int64) error {
		if i == id {
			found = refs
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return found
}

func TestRefIndex(t *testing.T) {
	cacheDir, _ := ioutil.TempDir("", "osmwrangle_test")
	defer os.RemoveAll(cacheDir)

	index, err := newRefIndex(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	defer index.Close()
	index.bunchSize = 2

	for _, r := range [][2]int64{{1000, 200}, {1001, 100}, {1000, 100}, {1002, 100}, {1000, 200}, {1000, 50}} {
		if err := index.Add(r[0], r[1]); err != nil {
			t.Fatal(err)
		}
	}

	if refs := refsOf(t, index, 1000); !reflect.DeepEqual(refs, []int64{50, 100, 200}) {
		t.Error("unexpected refs", refs)
	}
	if refs := refsOf(t, index, 999); len(refs) != 0 {
		t.Error("unexpected refs", refs)
	}

	var ids []int64
	err = index.Iter(func(id int64, refs []int64) error {
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int64{1000, 1001, 1002}) {
		t.Error("unexpected ids", ids)
	}
}

func TestNodeIndex(t *testing.T) {
	cacheDir, _ := ioutil.TempDir("", "osmwrangle_test")
	defer os.RemoveAll(cacheDir)

	index, err := newNodeIndex(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	defer index.Close()
	index.bunchSize = 3

	for _, id := range []int64{1, 2, 3, 4, -5} {
		if err := index.Add(id); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range []int64{1, 4, -5} {
		if ok, err := index.Has(id); err != nil || !ok {
			t.Error("expected", id, err)
		}
	}
	for _, id := range []int64{0, 5, 6} {
		if ok, err := index.Has(id); err != nil || ok {
			t.Error("unexpected", id, err)
		}
	}
}

func TestRefCache(t *testing.T) {
	cacheDir, _ := ioutil.TempDir("", "osmwrangle_test")
	defer os.RemoveAll(cacheDir)

	c := NewRefCache(cacheDir)
	if c.Exists() {
		t.Fatal("cache should not exist")
	}
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	if err := c.Nodes.Add(1); err != nil {
		t.Fatal(err)
	}
	if err := c.Refs.Add(2, 10); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !c.Exists() {
		t.Fatal("cache should exist")
	}

	// reopen and check persisted values
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.Nodes.Has(1); !ok {
		t.Error("node 1 not found after reopen")
	}
	if refs := refsOf(t, c.Refs, 2); !reflect.DeepEqual(refs, []int64{10}) {
		t.Error("unexpected refs after reopen", refs)
	}
	if err := c.Remove(); err != nil {
		t.Fatal(err)
	}
	if c.Exists() {
		t.Error("cache should be removed")
	}
}

func TestInsertRefs(t *testing.T) {
	var refs []int64
	for _, r := range []int64{5, 1, 3, 5, 1, 9} {
		refs = insertRefs(refs, r)
	}
	if !reflect.DeepEqual(refs, []int64{1, 3, 5, 9}) {
		t.Error(refs)
	}
}

func TestIndexFilesInPath(t *testing.T) {
	cacheDir, _ := ioutil.TempDir("", "osmwrangle_test")
	defer os.RemoveAll(cacheDir)

	path := filepath.Join(cacheDir, "nodes")
	index, err := newNodeIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Add(1); err != nil {
		t.Fatal(err)
	}
	if err := index.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(path, "MANIFEST")); err != nil {
		t.Error("expected badger files in index path", err)
	}
	if _, err := os.Stat("MANIFEST"); !os.IsNotExist(err) {
		t.Error("badger files written into working dir")
	}
}
