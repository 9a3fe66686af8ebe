package tests

import (
	"strings"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/clause"
	"github.com/dbrec/dbrec/logger"
	"github.com/dbrec/dbrec/schema"
)

// DummyDialector builds SQL without talking to a database. Tests that
// need statements executed inject a connection pool, usually sqlmock.
type DummyDialector struct {
	Pool dbrec.ConnPool
}

func (DummyDialector) Name() string {
	return "dummy"
}

func (dialector DummyDialector) Initialize(db *dbrec.DB) error {
	if dialector.Pool != nil {
		db.ConnPool = dialector.Pool
	}
	return nil
}

func (DummyDialector) DataTypeOf(field *schema.Field) string {
	return string(field.DataType)
}

func (DummyDialector) BindVarTo(writer clause.Writer, stmt *dbrec.Statement, v interface{}) {
	writer.WriteByte('?')
}

func (DummyDialector) QuoteTo(writer clause.Writer, str string) {
	writer.WriteByte('`')
	if strings.Contains(str, ".") {
		for idx, str := range strings.Split(str, ".") {
			if idx > 0 {
				writer.WriteString(".`")
			}
			writer.WriteString(str)
			writer.WriteByte('`')
		}
	} else {
		writer.WriteString(str)
		writer.WriteByte('`')
	}
}

func (DummyDialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, `"`, vars...)
}
