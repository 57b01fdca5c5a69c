// Package csv writes the output tables as CSV files with a header row, one
// file per table.
package csv

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/database"
	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/logging"
)

var log = logging.NewLogger("csv")

type tableFile struct {
	f   *os.File
	buf *bufio.Writer
	w   *csv.Writer
}

// CSV is the sink for csv:<dir> connections. Files are named after their
// table, e.g. nodes_tags.csv.
type CSV struct {
	Dir    string
	tables map[string]*tableFile
}

func New(conf database.Config) (database.Sink, error) {
	dir := database.ConnectionPath(conf.ConnectionParams)
	if dir == "" {
		return nil, errors.New("missing directory in csv connection, use csv:<dir>")
	}
	return &CSV{Dir: dir}, nil
}

// Filename returns the path of the file for table.
func (c *CSV) Filename(table element.Table) string {
	return filepath.Join(c.Dir, table.Name+".csv")
}

// Init creates the directory and all files with their header rows.
// Existing files are truncated.
func (c *CSV) Init() error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return err
	}
	c.tables = make(map[string]*tableFile)
	for _, t := range element.Tables {
		f, err := os.Create(c.Filename(t))
		if err != nil {
			c.Close()
			return err
		}
		buf := bufio.NewWriter(f)
		tf := &tableFile{f: f, buf: buf, w: csv.NewWriter(buf)}
		c.tables[t.Name] = tf
		if err := tf.w.Write(t.Fields); err != nil {
			c.Close()
			return errors.Wrapf(err, "writing header of %s", f.Name())
		}
	}
	return nil
}

func (c *CSV) Begin() error {
	if c.tables == nil {
		return errors.New("csv sink not initialized")
	}
	return nil
}

func (c *CSV) Write(rows []element.TableRows) error {
	for _, tr := range rows {
		tf, ok := c.tables[tr.Table.Name]
		if !ok {
			return errors.Errorf("unknown table %s", tr.Table.Name)
		}
		if err := tf.w.WriteAll(tr.Rows); err != nil {
			return errors.Wrapf(err, "writing %s", tf.f.Name())
		}
	}
	return nil
}

// flush writes all buffered rows to the files.
func (c *CSV) flush() error {
	var firstErr error
	for _, t := range element.Tables {
		tf, ok := c.tables[t.Name]
		if !ok {
			continue
		}
		tf.w.Flush()
		if err := tf.w.Error(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "writing %s", tf.f.Name())
		}
		if err := tf.buf.Flush(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "writing %s", tf.f.Name())
		}
	}
	return firstErr
}

func (c *CSV) End() error {
	if err := c.flush(); err != nil {
		return err
	}
	return c.closeFiles()
}

// Abort keeps the rows of all elements written so far.
func (c *CSV) Abort() error {
	err := c.flush()
	if cerr := c.closeFiles(); err == nil {
		err = cerr
	}
	log.Warnf("import aborted, output in %s is incomplete", c.Dir)
	return err
}

func (c *CSV) closeFiles() error {
	var firstErr error
	for name, tf := range c.tables {
		if err := tf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.tables, name)
	}
	return firstErr
}

func (c *CSV) Close() error {
	return c.closeFiles()
}

func init() {
	database.Register("csv", New)
}
