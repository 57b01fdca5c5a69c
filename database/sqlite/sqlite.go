// Package sqlite writes the output tables into a SQLite database file.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/database"
	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/logging"
)

var log = logging.NewLogger("SQLite")

// SQLite loads all tables in a single transaction.
type SQLite struct {
	Path  string
	Db    *sql.DB
	tx    *sql.Tx
	stmts map[string]*sql.Stmt
}

func quote(ident string) string {
	return `"` + strings.Replace(ident, `"`, `""`, -1) + `"`
}

func columnType(field string) string {
	switch database.FieldType(field) {
	case database.BigInt, database.Integer:
		return "INTEGER"
	case database.Float:
		return "REAL"
	}
	return "TEXT"
}

func createTableSQL(t element.Table) string {
	cols := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		cols = append(cols, quote(f)+" "+columnType(f))
	}
	return fmt.Sprintf(`CREATE TABLE %s (%s)`, quote(t.Name), strings.Join(cols, ", "))
}

func insertSQL(t element.Table) string {
	cols := make([]string, 0, len(t.Fields))
	vars := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		cols = append(cols, quote(f))
		vars = append(vars, "?")
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quote(t.Name), strings.Join(cols, ", "), strings.Join(vars, ", "))
}

func New(conf database.Config) (database.Sink, error) {
	path := database.ConnectionPath(conf.ConnectionParams)
	if path == "" {
		return nil, errors.New("missing file in sqlite connection, use sqlite:<file>")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	return &SQLite{Path: path, Db: db}, nil
}

// Init drops and creates all tables.
func (s *SQLite) Init() error {
	tx, err := s.Db.Begin()
	if err != nil {
		return err
	}
	for _, t := range element.Tables {
		for _, stmt := range []string{"DROP TABLE IF EXISTS " + quote(t.Name), createTableSQL(t)} {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "executing %s", stmt)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLite) Begin() error {
	tx, err := s.Db.Begin()
	if err != nil {
		return err
	}
	s.tx = tx
	s.stmts = make(map[string]*sql.Stmt)
	for _, t := range element.Tables {
		stmt, err := tx.Prepare(insertSQL(t))
		if err != nil {
			s.Abort()
			return errors.Wrapf(err, "preparing insert for %s", t.Name)
		}
		s.stmts[t.Name] = stmt
	}
	return nil
}

func (s *SQLite) Write(rows []element.TableRows) error {
	for _, tr := range rows {
		stmt, ok := s.stmts[tr.Table.Name]
		if !ok {
			return errors.Errorf("unknown table %s", tr.Table.Name)
		}
		for _, row := range tr.Rows {
			values := make([]interface{}, len(row))
			for i, v := range row {
				values[i] = v
			}
			if _, err := stmt.Exec(values...); err != nil {
				return errors.Wrapf(err, "inserting into %s %v", tr.Table.Name, row)
			}
		}
	}
	return nil
}

func (s *SQLite) closeStmts() {
	for name, stmt := range s.stmts {
		stmt.Close()
		delete(s.stmts, name)
	}
}

func (s *SQLite) End() error {
	if s.tx == nil {
		return nil
	}
	s.closeStmts()
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return err
	}
	for _, t := range element.Tables {
		stmt := fmt.Sprintf(`CREATE INDEX %s ON %s ("id")`, quote(t.Name+"_id_idx"), quote(t.Name))
		if _, err := s.Db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "executing %s", stmt)
		}
	}
	return nil
}

func (s *SQLite) Abort() error {
	if s.tx == nil {
		return nil
	}
	s.closeStmts()
	err := s.tx.Rollback()
	s.tx = nil
	if err != nil {
		log.Errorf("rollback failed: %s", err)
	}
	return err
}

func (s *SQLite) Close() error {
	s.Abort()
	return s.Db.Close()
}

func init() {
	database.Register("sqlite", New)
}
