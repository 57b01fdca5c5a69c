package cache

import (
	"sync"

	"github.com/dgraph-io/badger"
)

const defaultBunchSize = 64 * 1024

// NodeIndex is a set of node ids. Ids are buffered and written in bunches.
type NodeIndex struct {
	cache
	mu        sync.Mutex
	pending   []int64
	bunchSize int
}

func newNodeIndex(path string) (*NodeIndex, error) {
	index := NodeIndex{bunchSize: defaultBunchSize}
	if err := index.open(path); err != nil {
		return nil, err
	}
	return &index, nil
}

func (index *NodeIndex) Add(id int64) error {
	index.mu.Lock()
	defer index.mu.Unlock()
	index.pending = append(index.pending, id)
	if len(index.pending) >= index.bunchSize {
		return index.flush()
	}
	return nil
}

func (index *NodeIndex) Flush() error {
	index.mu.Lock()
	defer index.mu.Unlock()
	return index.flush()
}

func (index *NodeIndex) flush() error {
	if len(index.pending) == 0 {
		return nil
	}
	keys := make([][]byte, len(index.pending))
	values := make([][]byte, len(index.pending))
	for i, id := range index.pending {
		keys[i] = idToKeyBuf(id)
		values[i] = []byte{}
	}
	index.pending = index.pending[:0]
	return index.setAll(keys, values)
}

// Has returns whether id was added. Pending ids are flushed first.
func (index *NodeIndex) Has(id int64) (bool, error) {
	if err := index.Flush(); err != nil {
		return false, err
	}
	found := false
	err := index.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(idToKeyBuf(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (index *NodeIndex) Close() error {
	if index.db == nil {
		return nil
	}
	if err := index.Flush(); err != nil {
		index.cache.Close()
		return err
	}
	return index.cache.Close()
}
