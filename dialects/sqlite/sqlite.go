package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/clause"
	"github.com/dbrec/dbrec/logger"
	"github.com/dbrec/dbrec/schema"
	_ "modernc.org/sqlite"
)

// DriverName is the default driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

type Dialector struct {
	DriverName string
	DSN        string
	Conn       dbrec.ConnPool
}

func Open(dsn string) dbrec.Dialector {
	return &Dialector{DSN: dsn}
}

func (dialector Dialector) Name() string {
	return "sqlite"
}

func (dialector Dialector) Initialize(db *dbrec.DB) (err error) {
	if dialector.DriverName == "" {
		dialector.DriverName = DriverName
	}

	if dialector.Conn != nil {
		db.ConnPool = dialector.Conn
	} else {
		source, err := dialector.source()
		if err != nil {
			return err
		}
		db.ConnPool, err = sql.Open(dialector.DriverName, source)
		if err != nil {
			return err
		}
	}
	return
}

// source translates a "sqlite:path;key=value" DSN into the
// "file:path?key=value" form the driver expects. DSNs that do not use
// the dbrec format are passed through untouched.
func (dialector Dialector) source() (string, error) {
	dsn, err := dbrec.ParseDSN(dialector.DSN)
	if err != nil || dsn.Driver != "sqlite" {
		return dialector.DSN, nil
	}

	var path string
	var params []string
	for _, param := range dsn.Params {
		if param.Value == "" && path == "" {
			path = param.Key
			continue
		}
		params = append(params, param.Key+"="+param.Value)
	}

	if path == "" {
		return "", fmt.Errorf("%w: sqlite DSN is missing a database path", dbrec.ErrInvalidDSN)
	}

	source := "file:" + path
	if len(params) > 0 {
		source += "?" + strings.Join(params, "&")
	}
	return source, nil
}

func (dialector Dialector) DataTypeOf(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "numeric"
	case schema.Int, schema.Uint:
		if field.AutoIncrement {
			// https://www.sqlite.org/autoinc.html
			return "integer PRIMARY KEY AUTOINCREMENT"
		}
		return "integer"
	case schema.Float:
		return "real"
	case schema.String:
		return "text"
	case schema.Time:
		return "datetime"
	case schema.Bytes:
		return "blob"
	}

	return string(field.DataType)
}

func (dialector Dialector) BindVarTo(writer clause.Writer, stmt *dbrec.Statement, v interface{}) {
	writer.WriteByte('?')
}

func (dialector Dialector) QuoteTo(writer clause.Writer, str string) {
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

func (dialector Dialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, `"`, vars...)
}
