/*
Package cache provides disk backed indexes of node ids and way node
references. They keep the memory usage of the reference audit bounded for
large inputs.
*/
package cache

import (
	bin "encoding/binary"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/logging"
)

var log = logging.NewLogger("cache")

// RefCache bundles the indexes of one audit run below a single directory.
type RefCache struct {
	dir    string
	Nodes  *NodeIndex
	Refs   *RefIndex
	opened bool
}

func NewRefCache(dir string) *RefCache {
	return &RefCache{dir: dir}
}

func (c *RefCache) Open() error {
	err := os.MkdirAll(c.dir, 0755)
	if err != nil {
		return err
	}
	c.Nodes, err = newNodeIndex(filepath.Join(c.dir, "nodes"))
	if err != nil {
		return err
	}
	c.Refs, err = newRefIndex(filepath.Join(c.dir, "refs"))
	if err != nil {
		c.Close()
		return err
	}
	c.opened = true
	return nil
}

func (c *RefCache) Close() error {
	var firstErr error
	if c.Nodes != nil {
		firstErr = c.Nodes.Close()
		c.Nodes = nil
	}
	if c.Refs != nil {
		if err := c.Refs.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.Refs = nil
	}
	c.opened = false
	return firstErr
}

// Exists returns whether an index from a previous run is present.
func (c *RefCache) Exists() bool {
	if c.opened {
		return true
	}
	for _, name := range []string{"nodes", "refs"} {
		if _, err := os.Stat(filepath.Join(c.dir, name)); !os.IsNotExist(err) {
			return true
		}
	}
	return false
}

func (c *RefCache) Remove() error {
	if c.opened {
		c.Close()
	}
	for _, name := range []string{"nodes", "refs"} {
		if err := os.RemoveAll(filepath.Join(c.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

type cache struct {
	db *badger.DB
}

func (c *cache) open(path string) error {
	opts := badger.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = log
	db, err := badger.Open(opts)
	if err != nil {
		return errors.Wrapf(err, "opening cache %s", path)
	}
	c.db = db
	return nil
}

func (c *cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// setAll writes all key/values in as few transactions as possible.
func (c *cache) setAll(keys, values [][]byte) error {
	txn := c.db.NewTransaction(true)
	defer func() { txn.Discard() }()
	for i := range keys {
		err := txn.Set(keys[i], values[i])
		if err == badger.ErrTxnTooBig {
			if err := txn.Commit(); err != nil {
				return err
			}
			txn = c.db.NewTransaction(true)
			err = txn.Set(keys[i], values[i])
		}
		if err != nil {
			return err
		}
	}
	return txn.Commit()
}

func idToKeyBuf(id int64) []byte {
	b := make([]byte, 8)
	bin.BigEndian.PutUint64(b, uint64(id))
	return b[:8]
}

func idFromKeyBuf(buf []byte) int64 {
	return int64(bin.BigEndian.Uint64(buf))
}
