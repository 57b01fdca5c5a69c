package postgis

import (
	"database/sql"
	"fmt"
	"strings"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/database"
	"github.com/omniscale/osmwrangle/element"
	"github.com/omniscale/osmwrangle/logging"
)

var log = logging.NewLogger("PostGIS")

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

// PostGIS writes all tables with COPY. Each table is loaded in its own
// transaction, all transactions are committed at End.
type PostGIS struct {
	Db     *sql.DB
	Params string
	Schema string
	Prefix string
	Config database.Config
	Tables map[string]*TableSpec
	txs    map[string]*tableTx
}

func (pg *PostGIS) Open() error {
	var err error

	pg.Db, err = sql.Open("postgres", pg.Params)
	if err != nil {
		return err
	}
	// check that the connection actually works
	err = pg.Db.Ping()
	if err != nil {
		return err
	}
	return nil
}

func (pg *PostGIS) createSchema(schema string) error {
	if schema == "public" {
		return nil
	}
	sql := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(schema))
	if _, err := pg.Db.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

// Init creates schema and tables, drops existing tables.
func (pg *PostGIS) Init() error {
	if err := pg.createSchema(pg.Schema); err != nil {
		return err
	}

	tx, err := pg.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)
	for _, t := range element.Tables {
		spec := pg.Tables[t.Name]
		for _, sql := range []string{spec.DropTableSQL(), spec.CreateTableSQL()} {
			if _, err := tx.Exec(sql); err != nil {
				return &SQLError{sql, err}
			}
		}
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	tx = nil
	return nil
}

func (pg *PostGIS) Begin() error {
	pg.txs = make(map[string]*tableTx)
	for name, spec := range pg.Tables {
		tt := newTableTx(pg, spec)
		pg.txs[name] = tt
		if err := tt.Begin(); err != nil {
			pg.Abort()
			return err
		}
	}
	return nil
}

func (pg *PostGIS) Write(rows []element.TableRows) error {
	for _, tr := range rows {
		tt, ok := pg.txs[tr.Table.Name]
		if !ok {
			return errors.Errorf("unknown table %s", tr.Table.Name)
		}
		for _, row := range tr.Rows {
			if err := tt.Insert(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// End completes all COPY statements before the first commit, so that a
// failed table does not leave the others committed.
func (pg *PostGIS) End() error {
	defer log.StopStep(log.StartStep("Committing tables"))
	for _, t := range element.Tables {
		if err := pg.txs[t.Name].Flush(); err != nil {
			pg.Abort()
			return err
		}
	}
	for _, t := range element.Tables {
		if err := pg.txs[t.Name].Commit(); err != nil {
			pg.Abort()
			return err
		}
	}
	for _, t := range element.Tables {
		spec := pg.Tables[t.Name]
		sql := spec.IndexSQL()
		if _, err := pg.Db.Exec(sql); err != nil {
			return &SQLError{sql, err}
		}
	}
	pg.txs = nil
	return nil
}

func (pg *PostGIS) Abort() error {
	for _, tt := range pg.txs {
		tt.Rollback()
	}
	pg.txs = nil
	return nil
}

func (pg *PostGIS) Close() error {
	pg.Abort()
	if pg.Db == nil {
		return nil
	}
	return pg.Db.Close()
}

// connectionParams converts a postgis:// or postgres:// URL into lib/pq
// key/value params. Params are returned unchanged if they are not a URL.
func connectionParams(conn string) (string, error) {
	if strings.HasPrefix(conn, "postgis://") {
		conn = strings.Replace(conn, "postgis", "postgres", 1)
	}
	if !strings.HasPrefix(conn, "postgres://") {
		return database.ConnectionPath(conn), nil
	}
	return pq.ParseURL(conn)
}

func newPostGIS(conf database.Config) (*PostGIS, error) {
	db := &PostGIS{Config: conf}

	params, err := connectionParams(conf.ConnectionParams)
	if err != nil {
		return nil, err
	}
	params = disableDefaultSsl(params)
	params, db.Schema = schemaFromConnectionParams(params)
	params, db.Prefix = prefixFromConnectionParams(params)
	db.Params = params

	db.Tables = make(map[string]*TableSpec)
	for _, t := range element.Tables {
		db.Tables[t.Name] = NewTableSpec(db, t)
	}
	return db, nil
}

func New(conf database.Config) (database.Sink, error) {
	db, err := newPostGIS(conf)
	if err != nil {
		return nil, err
	}
	if err := db.Open(); err != nil {
		return nil, errors.Wrap(err, "connecting to PostgreSQL")
	}
	return db, nil
}

func init() {
	database.Register("postgres", New)
	database.Register("postgis", New)
}
