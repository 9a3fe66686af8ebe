package dbrec

import (
	"fmt"
	"reflect"

	"github.com/dbrec/dbrec/clause"
)

// Delete removes the row identified by value's primary key. The key
// must be set, and the statement is rolled back when it does not remove
// exactly one row.
func (db *DB) Delete(value interface{}) (tx *DB) {
	if db.Error != nil {
		return db
	}

	tx = db.getInstance()
	tx.Statement.Dest = value
	return tx.execute(deleteRecord)
}

func deleteRecord(db *DB) {
	stmt := db.Statement
	if stmt.Schema == nil {
		db.AddError(ErrModelValueRequired)
		return
	}

	if stmt.ReflectValue.Kind() != reflect.Struct {
		db.AddError(ErrInvalidValue)
		return
	}

	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil {
		db.AddError(fmt.Errorf("%w: %s", ErrEmptySchema, stmt.Schema.Name))
		return
	}

	pkValue, zero := pk.ValueOf(stmt.ReflectValue)
	if zero {
		db.AddError(fmt.Errorf("%w: %s.%s", ErrPrimaryKeyEmpty, stmt.Schema.Name, pk.Name))
		return
	}

	stmt.AddClauseIfNotExists(clause.Delete{})
	stmt.AddClauseIfNotExists(clause.From{})
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{clause.Eq{Column: pk.DBName, Value: pkValue}}})
	stmt.BuildClauses = []string{"DELETE", "FROM", "WHERE"}
	stmt.Build(stmt.BuildClauses...)

	if db.DryRun || db.Error != nil {
		return
	}

	started := beginTransaction(db)
	defer commitOrRollbackTransaction(db, started)

	if !stmt.SkipHooks && stmt.Schema.BeforeDelete {
		callMethod(db, func(value interface{}, tx *DB) bool {
			if h, ok := value.(BeforeDeleteInterface); ok {
				db.AddError(h.BeforeDelete(tx))
				return true
			}
			return false
		})
		if db.Error != nil {
			return
		}
	}

	result, err := stmt.ConnPool.ExecContext(stmt.Context, stmt.SQL.String(), stmt.Vars...)
	if err != nil {
		db.AddError(wrapDatabaseError(err))
		return
	}

	db.RowsAffected, _ = result.RowsAffected()
	if db.RowsAffected != 1 {
		db.AddError(fmt.Errorf("%w: delete removed %d rows, want exactly one", ErrUnexpectedRowCount, db.RowsAffected))
		return
	}

	if !stmt.SkipHooks && stmt.Schema.AfterDelete {
		callMethod(db, func(value interface{}, tx *DB) bool {
			if h, ok := value.(AfterDeleteInterface); ok {
				db.AddError(h.AfterDelete(tx))
				return true
			}
			return false
		})
	}
}
