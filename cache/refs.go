package cache

import (
	"sort"
	"sync"

	"github.com/dgraph-io/badger"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// RefIndex maps node ids to the ids of the ways that reference them.
// References are collected in memory and merged into the stored lists once
// bunchSize nodes are pending.
type RefIndex struct {
	cache
	mu        sync.Mutex
	pending   map[int64][]int64
	bunchSize int
}

func newRefIndex(path string) (*RefIndex, error) {
	index := RefIndex{
		pending:   make(map[int64][]int64),
		bunchSize: defaultBunchSize,
	}
	if err := index.open(path); err != nil {
		return nil, err
	}
	return &index, nil
}

func (index *RefIndex) Add(id, ref int64) error {
	index.mu.Lock()
	defer index.mu.Unlock()
	index.pending[id] = insertRefs(index.pending[id], ref)
	if len(index.pending) >= index.bunchSize {
		return index.flush()
	}
	return nil
}

func (index *RefIndex) Flush() error {
	index.mu.Lock()
	defer index.mu.Unlock()
	return index.flush()
}

func (index *RefIndex) flush() error {
	if len(index.pending) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(index.pending))
	for id := range index.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	keys := make([][]byte, 0, len(ids))
	values := make([][]byte, 0, len(ids))
	err := index.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			key := idToKeyBuf(id)
			refs, err := loadRefs(txn, key)
			if err != nil {
				return err
			}
			for _, ref := range index.pending[id] {
				refs = insertRefs(refs, ref)
			}
			data, err := proto.Marshal(&Refs{Ids: refs})
			if err != nil {
				return err
			}
			keys = append(keys, key)
			values = append(values, data)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "merging refs")
	}
	index.pending = make(map[int64][]int64)
	return index.setAll(keys, values)
}

func loadRefs(txn *badger.Txn, key []byte) ([]int64, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	refs := &Refs{}
	if err := proto.Unmarshal(data, refs); err != nil {
		return nil, err
	}
	return refs.Ids, nil
}

// Iter calls fn for each id with its sorted refs, in order of the key
// encoding. Iteration stops at the first error of fn.
func (index *RefIndex) Iter(fn func(id int64, refs []int64) error) error {
	if err := index.Flush(); err != nil {
		return err
	}
	return index.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			refs := &Refs{}
			if err := proto.Unmarshal(data, refs); err != nil {
				return err
			}
			if err := fn(idFromKeyBuf(item.KeyCopy(nil)), refs.Ids); err != nil {
				return err
			}
		}
		return nil
	})
}

func (index *RefIndex) Close() error {
	if index.db == nil {
		return nil
	}
	if err := index.Flush(); err != nil {
		index.cache.Close()
		return err
	}
	return index.cache.Close()
}

// insertRefs inserts ref into the sorted refs, duplicates are ignored.
func insertRefs(refs []int64, ref int64) []int64 {
	i := sort.Search(len(refs), func(i int) bool {
		return refs[i] >= ref
	})
	if i < len(refs) && refs[i] == ref {
		return refs
	}
	refs = append(refs, 0)
	copy(refs[i+1:], refs[i:])
	refs[i] = ref
	return refs
}
