package dbrec

import (
	"reflect"

	"github.com/dbrec/dbrec/clause"
)

// Create inserts value as a new row, reconciling the backing table
// first so it covers every column of the model.
func (db *DB) Create(value interface{}) (tx *DB) {
	if db.Error != nil {
		return db
	}

	tx = db.getInstance()
	tx.Statement.Dest = value
	return tx.execute(createRecord)
}

func createRecord(db *DB) {
	stmt := db.Statement
	if stmt.Schema == nil {
		db.AddError(ErrModelValueRequired)
		return
	}

	if stmt.ReflectValue.Kind() != reflect.Struct {
		db.AddError(ErrInvalidValue)
		return
	}

	if !db.DryRun {
		if db.AddError(db.Migrator().reconcile(stmt.Schema)) != nil {
			return
		}
	}

	started := beginTransaction(db)
	defer commitOrRollbackTransaction(db, started)

	if !stmt.SkipHooks && stmt.Schema.BeforeCreate {
		callMethod(db, func(value interface{}, tx *DB) bool {
			if h, ok := value.(BeforeCreateInterface); ok {
				db.AddError(h.BeforeCreate(tx))
				return true
			}
			return false
		})
		if db.Error != nil {
			return
		}
	}

	now := db.NowFunc()
	for _, field := range stmt.Schema.Fields {
		if field.AutoCreateTime || field.AutoUpdateTime {
			if _, zero := field.ValueOf(stmt.ReflectValue); zero {
				db.AddError(field.Set(stmt.ReflectValue, now))
			}
		}
	}
	if db.Error != nil {
		return
	}

	values := clause.Values{}
	row := make([]interface{}, 0, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		field := stmt.Schema.FieldsByDBName[name]
		value, zero := field.ValueOf(stmt.ReflectValue)
		if zero {
			continue
		}
		values.Columns = append(values.Columns, clause.Column{Name: name})
		row = append(row, value)
	}
	if len(values.Columns) > 0 {
		values.Values = append(values.Values, row)
	}

	stmt.AddClauseIfNotExists(clause.Insert{})
	stmt.AddClause(values)
	stmt.BuildClauses = []string{"INSERT", "VALUES"}
	stmt.Build(stmt.BuildClauses...)

	if db.DryRun || db.Error != nil {
		return
	}

	result, err := stmt.ConnPool.ExecContext(stmt.Context, stmt.SQL.String(), stmt.Vars...)
	if err != nil {
		db.AddError(wrapDatabaseError(err))
		return
	}

	db.RowsAffected, _ = result.RowsAffected()

	// not every driver reports the inserted id, failures are ignored
	if pk := stmt.Schema.PrioritizedPrimaryField; pk != nil && pk.AutoIncrement {
		if insertID, err := result.LastInsertId(); err == nil && insertID > 0 {
			if _, zero := pk.ValueOf(stmt.ReflectValue); zero {
				db.AddError(pk.Set(stmt.ReflectValue, insertID))
			}
		}
	}

	if !stmt.SkipHooks && stmt.Schema.AfterCreate && db.Error == nil {
		callMethod(db, func(value interface{}, tx *DB) bool {
			if h, ok := value.(AfterCreateInterface); ok {
				db.AddError(h.AfterCreate(tx))
				return true
			}
			return false
		})
	}
}
