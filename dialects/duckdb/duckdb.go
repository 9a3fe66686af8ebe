package duckdb

import (
	"database/sql"
	"strings"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/clause"
	"github.com/dbrec/dbrec/logger"
	"github.com/dbrec/dbrec/schema"
	_ "github.com/marcboeker/go-duckdb"
)

// DriverName is the driver name registered by go-duckdb.
const DriverName = "duckdb"

type Dialector struct {
	DriverName string
	DSN        string
	Conn       dbrec.ConnPool
}

func Open(dsn string) dbrec.Dialector {
	return &Dialector{DSN: dsn}
}

func (dialector Dialector) Name() string {
	return "duckdb"
}

func (dialector Dialector) Initialize(db *dbrec.DB) (err error) {
	if dialector.DriverName == "" {
		dialector.DriverName = DriverName
	}

	if dialector.Conn != nil {
		db.ConnPool = dialector.Conn
	} else {
		db.ConnPool, err = sql.Open(dialector.DriverName, dialector.source())
		if err != nil {
			return err
		}
	}
	return
}

// source translates a "duckdb:path;key=value" DSN into the "path?key=value"
// form go-duckdb expects. An empty path opens an in-memory database. DSNs
// that do not use the dbrec format are passed through untouched.
func (dialector Dialector) source() string {
	dsn, err := dbrec.ParseDSN(dialector.DSN)
	if err != nil || dsn.Driver != "duckdb" {
		return dialector.DSN
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

	if len(params) > 0 {
		return path + "?" + strings.Join(params, "&")
	}
	return path
}

func (dialector Dialector) DataTypeOf(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "BOOLEAN"
	case schema.Int:
		switch {
		case field.Size <= 16:
			return "SMALLINT"
		case field.Size <= 32:
			return "INTEGER"
		default:
			return "BIGINT"
		}
	case schema.Uint:
		switch {
		case field.Size <= 16:
			return "USMALLINT"
		case field.Size <= 32:
			return "UINTEGER"
		default:
			return "UBIGINT"
		}
	case schema.Float:
		return "DOUBLE"
	case schema.String:
		return "VARCHAR"
	case schema.Time:
		return "TIMESTAMP"
	case schema.Bytes:
		return "BLOB"
	}

	return string(field.DataType)
}

func (dialector Dialector) BindVarTo(writer clause.Writer, stmt *dbrec.Statement, v interface{}) {
	writer.WriteByte('?')
}

func (dialector Dialector) QuoteTo(writer clause.Writer, str string) {
	writer.WriteByte('"')
	if strings.Contains(str, ".") {
		for idx, str := range strings.Split(str, ".") {
			if idx > 0 {
				writer.WriteString(".\"")
			}
			writer.WriteString(str)
			writer.WriteByte('"')
		}
	} else {
		writer.WriteString(str)
		writer.WriteByte('"')
	}
}

func (dialector Dialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, `'`, vars...)
}
