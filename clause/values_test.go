package clause_test

import (
	"fmt"
	"testing"

	"github.com/dbrec/dbrec/clause"
)

func TestValues(t *testing.T) {
	results := []struct {
		Clauses []clause.Interface
		Result  string
		Vars    []interface{}
	}{
		{
			[]clause.Interface{
				clause.Insert{},
				clause.Values{Columns: []clause.Column{{Name: "name"}, {Name: "age"}}, Values: [][]interface{}{{"ann", 18}}},
			},
			"INSERT INTO `users` (`name`,`age`) VALUES (?,?)",
			[]interface{}{"ann", 18},
		},
		{
			[]clause.Interface{
				clause.Insert{},
				clause.Values{Columns: []clause.Column{{Name: "name"}, {Name: "age"}}, Values: [][]interface{}{{"ann", 18}, {"bob", 20}}},
			},
			"INSERT INTO `users` (`name`,`age`) VALUES (?,?),(?,?)",
			[]interface{}{"ann", 18, "bob", 20},
		},
		{
			[]clause.Interface{clause.Insert{}, clause.Values{}},
			"INSERT INTO `users` DEFAULT VALUES",
			nil,
		},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			checkBuildClauses(t, result.Clauses, result.Result, result.Vars)
		})
	}
}
