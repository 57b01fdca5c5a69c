package postgis

import (
	"database/sql"
	"sync"
)

// tableTx copies the rows of one table in a separate transaction. Rows are
// sent to a goroutine that feeds the COPY statement.
type tableTx struct {
	Pg         *PostGIS
	Tx         *sql.Tx
	Spec       *TableSpec
	InsertStmt *sql.Stmt
	InsertSql  string
	wg         *sync.WaitGroup
	rows       chan []interface{}

	mu  sync.Mutex
	err error
}

func newTableTx(pg *PostGIS, spec *TableSpec) *tableTx {
	return &tableTx{
		Pg:   pg,
		Spec: spec,
		wg:   &sync.WaitGroup{},
		rows: make(chan []interface{}, 64),
	}
}

func (tt *tableTx) Begin() error {
	tx, err := tt.Pg.Db.Begin()
	if err != nil {
		return err
	}
	tt.Tx = tx

	tt.InsertSql = tt.Spec.CopySQL()
	stmt, err := tt.Tx.Prepare(tt.InsertSql)
	if err != nil {
		return &SQLError{tt.InsertSql, err}
	}
	tt.InsertStmt = stmt

	tt.wg.Add(1)
	go tt.loop()
	return nil
}

func (tt *tableTx) Insert(row []string) error {
	if err := tt.Err(); err != nil {
		return err
	}
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	tt.rows <- values
	return nil
}

func (tt *tableTx) loop() {
	defer tt.wg.Done()
	for row := range tt.rows {
		if tt.Err() != nil {
			// drain
			continue
		}
		if _, err := tt.InsertStmt.Exec(row...); err != nil {
			tt.setErr(&SQLInsertError{SQLError{tt.InsertSql, err}, row})
		}
	}
}

func (tt *tableTx) setErr(err error) {
	tt.mu.Lock()
	if tt.err == nil {
		tt.err = err
	}
	tt.mu.Unlock()
}

// Err returns the first error of the copy goroutine.
func (tt *tableTx) Err() error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.err
}

// end waits till all pending rows are copied.
func (tt *tableTx) end() {
	if tt.rows != nil {
		close(tt.rows)
		tt.wg.Wait()
		tt.rows = nil
	}
}

// Flush completes the COPY statement. The transaction stays open.
func (tt *tableTx) Flush() error {
	tt.end()
	if err := tt.Err(); err != nil {
		return err
	}
	if tt.InsertStmt != nil {
		if _, err := tt.InsertStmt.Exec(); err != nil {
			return &SQLError{tt.InsertSql, err}
		}
		if err := tt.InsertStmt.Close(); err != nil {
			return err
		}
		tt.InsertStmt = nil
	}
	return nil
}

func (tt *tableTx) Commit() error {
	if err := tt.Flush(); err != nil {
		return err
	}
	if err := tt.Tx.Commit(); err != nil {
		return err
	}
	tt.Tx = nil
	return nil
}

func (tt *tableTx) Rollback() {
	tt.end()
	rollbackIfTx(&tt.Tx)
}
