package dbrec

import (
	"database/sql"
	"reflect"
	"strings"

	"github.com/dbrec/dbrec/clause"
)

// Find retrieves records matching conds into dest. A struct dest means
// exactly one row is expected and ErrRecordNotFound is raised when none
// matches; a slice dest collects every match.
func (db *DB) Find(dest interface{}, conds ...interface{}) (tx *DB) {
	if db.Error != nil {
		return db
	}

	tx = db.getInstance()
	tx.Statement.Dest = dest
	if len(conds) > 0 {
		tx.Statement.conds = conds
	}
	return tx.execute(queryRecords)
}

func queryRecords(db *DB) {
	stmt := db.Statement

	for _, cond := range stmt.conds {
		exprs, err := buildConditions(stmt, cond)
		if err != nil {
			db.AddError(err)
			return
		}
		if len(exprs) > 0 {
			stmt.AddClause(clause.Where{Exprs: exprs})
		}
	}

	if stmt.ReflectValue.Kind() == reflect.Struct {
		stmt.RaiseErrorOnNotFound = true
		one := 1
		stmt.AddClause(clause.Limit{Limit: &one})
	}

	stmt.AddClauseIfNotExists(clause.Select{})
	stmt.AddClauseIfNotExists(clause.From{})
	stmt.BuildClauses = []string{"SELECT", "FROM", "WHERE", "LIMIT"}
	stmt.Build(stmt.BuildClauses...)

	if db.DryRun || db.Error != nil {
		return
	}

	rows, err := stmt.ConnPool.QueryContext(stmt.Context, stmt.SQL.String(), stmt.Vars...)
	if err != nil {
		db.AddError(wrapDatabaseError(err))
		return
	}
	defer func() {
		db.AddError(rows.Close())
	}()

	Scan(rows, db)

	if !stmt.SkipHooks && stmt.Schema != nil && stmt.Schema.AfterFind && db.RowsAffected > 0 && db.Error == nil {
		callMethod(db, func(value interface{}, tx *DB) bool {
			if h, ok := value.(AfterFindInterface); ok {
				db.AddError(h.AfterFind(tx))
				return true
			}
			return false
		})
	}
}

// Raw prepares a raw SQL statement, to be consumed with Rows
//
//	rows, err := db.Raw("SELECT * FROM users WHERE age > ?", 18).Rows()
func (db *DB) Raw(sql string, values ...interface{}) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.SQL = strings.Builder{}
	tx.Statement.SQL.WriteString(sql)
	tx.Statement.Vars = values
	return
}

// Rows runs the prepared raw statement and hands the result rows back
func (db *DB) Rows() (*sql.Rows, error) {
	tx := db.getInstance().execute(func(db *DB) {
		stmt := db.Statement
		if stmt.SQL.Len() == 0 || db.DryRun {
			return
		}

		rows, err := stmt.ConnPool.QueryContext(stmt.Context, stmt.SQL.String(), stmt.Vars...)
		if err != nil {
			db.AddError(wrapDatabaseError(err))
			return
		}

		stmt.Dest = rows
		db.RowsAffected = -1
	})

	rows, _ := tx.Statement.Dest.(*sql.Rows)
	return rows, tx.Error
}

// Exec executes raw sql
func (db *DB) Exec(sql string, values ...interface{}) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.SQL = strings.Builder{}
	tx.Statement.SQL.WriteString(sql)
	tx.Statement.Vars = values

	return tx.execute(func(db *DB) {
		stmt := db.Statement
		if stmt.SQL.Len() == 0 || db.DryRun {
			return
		}

		result, err := stmt.ConnPool.ExecContext(stmt.Context, stmt.SQL.String(), stmt.Vars...)
		if err != nil {
			db.AddError(wrapDatabaseError(err))
			return
		}

		db.RowsAffected, _ = result.RowsAffected()
	})
}
