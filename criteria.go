package dbrec

import (
	"fmt"
	"sort"

	"github.com/dbrec/dbrec/clause"
)

// Pair is a single named equality condition.
type Pair struct {
	Name  string
	Value interface{}
}

// Criteria is an ordered list of equality conditions, combined with AND.
// Names may use the column form or the struct field form:
//
//	db.Find(&users, Criteria{{"name", "Ann"}, {"birthNumber", "8910"}})
type Criteria []Pair

// buildConditions translates conds into equality expressions, resolving
// every name against the statement's schema first. Unresolvable names
// fail the whole build, so no SQL is ever issued for them.
func buildConditions(stmt *Statement, conds interface{}) ([]clause.Expression, error) {
	switch values := conds.(type) {
	case Criteria:
		exprs := make([]clause.Expression, 0, len(values))
		for _, pair := range values {
			column, err := resolveColumn(stmt, pair.Name)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, clause.Eq{Column: column, Value: pair.Value})
		}
		return exprs, nil
	case map[string]interface{}:
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)

		exprs := make([]clause.Expression, 0, len(values))
		for _, name := range names {
			column, err := resolveColumn(stmt, name)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, clause.Eq{Column: column, Value: values[name]})
		}
		return exprs, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidCriteriaFormat, conds)
	}
}

// resolveColumn maps a criteria name to a column of the current schema,
// accepting the struct field name, the column name and the lower camel
// form of the column name.
func resolveColumn(stmt *Statement, name string) (string, error) {
	if stmt.Schema == nil {
		return stmt.DB.NamingStrategy.ColumnName(stmt.Table, name), nil
	}

	if field := lookUpField(stmt.DB, stmt.Schema, name); field != nil {
		return field.DBName, nil
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidCriteria, name)
}
