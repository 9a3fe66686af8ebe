package postgres

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/clause"
	"github.com/dbrec/dbrec/logger"
	"github.com/dbrec/dbrec/schema"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DriverName is the driver name registered by pgx's database/sql wrapper.
const DriverName = "pgx"

type Config struct {
	DriverName string
	DSN        string
	Conn       dbrec.ConnPool
}

type Dialector struct {
	*Config
}

func Open(dsn string) dbrec.Dialector {
	return &Dialector{Config: &Config{DSN: dsn}}
}

func New(config Config) dbrec.Dialector {
	return &Dialector{Config: &config}
}

func (dialector Dialector) Name() string {
	return "postgres"
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

// source translates a "postgres:key=value;..." DSN into the keyword/value
// form libpq-compatible drivers accept, mapping the database key onto
// dbname. Other DSNs are passed through untouched.
func (dialector Dialector) source() (string, error) {
	if strings.Contains(dialector.DSN, "://") {
		return dialector.DSN, nil
	}

	dsn, err := dbrec.ParseDSN(dialector.DSN)
	if err != nil || dsn.Driver != "postgres" {
		return dialector.DSN, nil
	}

	var pairs []string
	if dsn.Username != "" {
		pairs = append(pairs, "user="+dsn.Username)
	}
	if dsn.Password != "" {
		pairs = append(pairs, "password="+dsn.Password)
	}
	for _, param := range dsn.Params {
		key := param.Key
		if key == "database" {
			key = "dbname"
		}
		if param.Value == "" {
			return "", fmt.Errorf("%w: postgres DSN parameter %q has no value", dbrec.ErrInvalidDSN, param.Key)
		}
		pairs = append(pairs, key+"="+param.Value)
	}
	return strings.Join(pairs, " "), nil
}

func (dialector Dialector) DataTypeOf(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "boolean"
	case schema.Int, schema.Uint:
		size := field.Size
		if field.DataType == schema.Uint {
			size++
		}
		if field.AutoIncrement {
			switch {
			case size <= 16:
				return "smallserial"
			case size <= 32:
				return "serial"
			default:
				return "bigserial"
			}
		}
		switch {
		case size <= 16:
			return "smallint"
		case size <= 32:
			return "integer"
		default:
			return "bigint"
		}
	case schema.Float:
		return "decimal"
	case schema.String:
		if field.Size > 0 {
			return fmt.Sprintf("varchar(%d)", field.Size)
		}
		return "text"
	case schema.Time:
		return "timestamptz"
	case schema.Bytes:
		return "bytea"
	}

	return string(field.DataType)
}

func (dialector Dialector) BindVarTo(writer clause.Writer, stmt *dbrec.Statement, v interface{}) {
	writer.WriteByte('$')
	writer.WriteString(strconv.Itoa(len(stmt.Vars)))
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

var numericPlaceholder = regexp.MustCompile(`\$(\d+)`)

func (dialector Dialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, numericPlaceholder, `'`, vars...)
}
