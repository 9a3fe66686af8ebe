package clause_test

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/clause"
	"github.com/dbrec/dbrec/schema"
	"github.com/dbrec/dbrec/tests"
)

var db, _ = dbrec.Open(tests.DummyDialector{}, nil)

func checkBuildClauses(t *testing.T, clauses []clause.Interface, result string, vars []interface{}) {
	t.Helper()

	var (
		buildNames    []string
		buildNamesMap = map[string]bool{}
		user, _       = schema.Parse(&tests.User{}, &sync.Map{}, db.NamingStrategy)
		stmt          = dbrec.Statement{DB: db, Table: user.Table, Schema: user, Clauses: map[string]clause.Clause{}}
	)

	for _, c := range clauses {
		if _, ok := buildNamesMap[c.Name()]; !ok {
			buildNames = append(buildNames, c.Name())
			buildNamesMap[c.Name()] = true
		}

		stmt.AddClause(c)
	}

	stmt.Build(buildNames...)

	if got := strings.TrimSpace(stmt.SQL.String()); got != result {
		t.Errorf("SQL expects %v got %v", result, got)
	}

	if !reflect.DeepEqual(stmt.Vars, vars) {
		t.Errorf("Vars expects %+v got %+v", vars, stmt.Vars)
	}
}
