package dbrec

import (
	"fmt"
	"strings"

	"github.com/dbrec/dbrec/schema"
	"github.com/dbrec/dbrec/utils"
)

// Migrator reconciles model schemas with their backing tables, creating
// missing tables and appending missing columns. Existing columns are
// never altered or dropped.
type Migrator struct {
	DB *DB
}

// Migrator returns a migrator bound to db
func (db *DB) Migrator() Migrator {
	return Migrator{DB: db}
}

// AutoMigrate run auto migration for given models
func (db *DB) AutoMigrate(dst ...interface{}) error {
	return db.Migrator().AutoMigrate(dst...)
}

// AutoMigrate reconciles the tables backing values
func (m Migrator) AutoMigrate(values ...interface{}) error {
	for _, value := range values {
		sch, err := m.schemaFor(value)
		if err != nil {
			return err
		}
		if err := m.reconcile(sch); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable creates tables for values
func (m Migrator) CreateTable(values ...interface{}) error {
	for _, value := range values {
		sch, err := m.schemaFor(value)
		if err != nil {
			return err
		}
		if err := m.createTable(sch); err != nil {
			return err
		}
	}
	return nil
}

// DropTable drops tables for values, value can be a model or a table name
func (m Migrator) DropTable(values ...interface{}) error {
	for _, value := range values {
		table, err := m.tableFor(value)
		if err != nil {
			return err
		}
		if err := m.DB.Session(&Session{NewDB: true}).Exec(fmt.Sprintf("DROP TABLE IF EXISTS %v", m.quoted(table))).Error; err != nil {
			return err
		}
	}
	return nil
}

// HasTable reports whether the table backing value exists, value can be
// a model or a table name
func (m Migrator) HasTable(value interface{}) bool {
	if m.DB.DryRun {
		return false
	}

	table, err := m.tableFor(value)
	if err != nil {
		return false
	}

	rows, err := m.DB.Session(&Session{NewDB: true}).Raw(fmt.Sprintf("SELECT * FROM %v LIMIT 1", m.quoted(table))).Rows()
	if err != nil {
		return false
	}
	rows.Close()
	return true
}

// reconcile probes the table backing sch, creating it when the probe
// fails and adding any column the table does not have yet.
func (m Migrator) reconcile(sch *schema.Schema) error {
	if len(sch.DBNames) == 0 {
		return fmt.Errorf("%w: %s has no database fields", ErrEmptySchema, sch.Name)
	}

	if m.DB.DryRun {
		return nil
	}

	rows, err := m.DB.Session(&Session{NewDB: true}).Raw(fmt.Sprintf("SELECT * FROM %v LIMIT 1", m.quoted(sch.Table))).Rows()
	if err != nil {
		return m.createTable(sch)
	}

	// an empty table is assumed structurally correct, only a fetched
	// row has its columns compared against the schema
	if !rows.Next() {
		err := rows.Err()
		rows.Close()
		return wrapDatabaseError(err)
	}

	columns, colErr := rows.Columns()
	closeErr := rows.Close()
	if colErr != nil {
		return wrapDatabaseError(colErr)
	}
	if closeErr != nil {
		return wrapDatabaseError(closeErr)
	}

	for _, name := range sch.DBNames {
		if utils.Contains(columns, name) {
			continue
		}

		if err := m.addColumn(sch, sch.FieldsByDBName[name]); err != nil {
			return err
		}
	}

	return nil
}

// AddColumn adds the column backing the named field to value's table
func (m Migrator) AddColumn(value interface{}, name string) error {
	sch, err := m.schemaFor(value)
	if err != nil {
		return err
	}

	field := sch.LookUpField(name)
	if field == nil {
		return fmt.Errorf("%w: %s", ErrFieldNotDeclared, name)
	}
	return m.addColumn(sch, field)
}

func (m Migrator) addColumn(sch *schema.Schema, field *schema.Field) error {
	ddl := fmt.Sprintf("ALTER TABLE %v ADD %v %v", m.quoted(sch.Table), m.quoted(field.DBName), m.fullDataTypeOf(field))
	return m.DB.Session(&Session{NewDB: true}).Exec(ddl).Error
}

func (m Migrator) createTable(sch *schema.Schema) error {
	defs := make([]string, 0, len(sch.DBNames))
	for _, name := range sch.DBNames {
		defs = append(defs, fmt.Sprintf("%v %v", m.quoted(name), m.fullDataTypeOf(sch.FieldsByDBName[name])))
	}

	ddl := fmt.Sprintf("CREATE TABLE %v (%v)", m.quoted(sch.Table), strings.Join(defs, ","))
	return m.DB.Session(&Session{NewDB: true}).Exec(ddl).Error
}

// fullDataTypeOf prefers the column type declared on the field's tag
// over the dialector's derived type.
func (m Migrator) fullDataTypeOf(field *schema.Field) string {
	if field.ColumnType != "" {
		return field.ColumnType
	}
	return m.DB.Dialector.DataTypeOf(field)
}

func (m Migrator) schemaFor(value interface{}) (*schema.Schema, error) {
	return schema.Parse(value, m.DB.cacheStore, m.DB.NamingStrategy)
}

func (m Migrator) tableFor(value interface{}) (string, error) {
	if name, ok := value.(string); ok {
		return name, nil
	}

	sch, err := m.schemaFor(value)
	if err != nil {
		return "", err
	}
	return sch.Table, nil
}

func (m Migrator) quoted(name string) string {
	return m.DB.Statement.Quote(name)
}
