package dbrec

import (
	"fmt"
	"reflect"

	"github.com/dbrec/dbrec/clause"
)

// Update writes the set fields of value over the single row matching
// conds. Criteria matching zero or several rows fail with ErrNotFound
// before anything is written.
func (db *DB) Update(value interface{}, conds ...interface{}) (tx *DB) {
	if db.Error != nil {
		return db
	}

	tx = db.getInstance()
	tx.Statement.Dest = value
	tx.Statement.conds = conds
	return tx.execute(updateRecord)
}

func updateRecord(db *DB) {
	stmt := db.Statement
	if stmt.Schema == nil {
		db.AddError(ErrModelValueRequired)
		return
	}

	if stmt.ReflectValue.Kind() != reflect.Struct {
		db.AddError(ErrInvalidValue)
		return
	}

	if len(stmt.conds) == 0 {
		db.AddError(fmt.Errorf("%w: update requires criteria", ErrInvalidCriteriaFormat))
		return
	}

	for _, cond := range stmt.conds {
		if _, err := buildConditions(stmt, cond); err != nil {
			db.AddError(err)
			return
		}
	}

	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil {
		db.AddError(fmt.Errorf("%w: %s", ErrEmptySchema, stmt.Schema.Name))
		return
	}

	var pkValue interface{}
	if db.DryRun {
		pkValue, _ = pk.ValueOf(stmt.ReflectValue)
	} else {
		// locate the single row the criteria identify before writing
		matches := reflect.New(reflect.SliceOf(stmt.Schema.ModelType))
		result := db.Session(&Session{NewDB: true}).Find(matches.Interface(), stmt.conds...)
		if result.Error != nil {
			db.AddError(fmt.Errorf("%w: lookup failed: %w", ErrNotFound, result.Error))
			return
		}

		if n := matches.Elem().Len(); n != 1 {
			db.AddError(fmt.Errorf("%w: criteria matched %d records, want exactly one", ErrNotFound, n))
			return
		}

		pkValue, _ = pk.ValueOf(matches.Elem().Index(0))
	}

	started := beginTransaction(db)
	defer commitOrRollbackTransaction(db, started)

	if !stmt.SkipHooks && stmt.Schema.BeforeUpdate {
		callMethod(db, func(value interface{}, tx *DB) bool {
			if h, ok := value.(BeforeUpdateInterface); ok {
				db.AddError(h.BeforeUpdate(tx))
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
		if field.AutoUpdateTime {
			db.AddError(field.Set(stmt.ReflectValue, now))
		}
	}
	if db.Error != nil {
		return
	}

	set := clause.Set{}
	for _, name := range stmt.Schema.DBNames {
		field := stmt.Schema.FieldsByDBName[name]
		value, zero := field.ValueOf(stmt.ReflectValue)
		if zero {
			continue
		}
		set = append(set, clause.Assignment{Column: clause.Column{Name: name}, Value: value})
	}

	stmt.AddClauseIfNotExists(clause.Update{})
	stmt.AddClause(set)
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{clause.Eq{Column: pk.DBName, Value: pkValue}}})
	stmt.BuildClauses = []string{"UPDATE", "SET", "WHERE"}
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

	if !stmt.SkipHooks && stmt.Schema.AfterUpdate && db.Error == nil {
		callMethod(db, func(value interface{}, tx *DB) bool {
			if h, ok := value.(AfterUpdateInterface); ok {
				db.AddError(h.AfterUpdate(tx))
				return true
			}
			return false
		})
	}
}
