package dbrec

import (
	"database/sql"
	"database/sql/driver"
	"reflect"

	"github.com/dbrec/dbrec/schema"
)

func prepareValues(values []interface{}, db *DB, columns []string) {
	if db.Statement.Schema != nil {
		for idx, name := range columns {
			if field := db.Statement.Schema.LookUpField(name); field != nil {
				values[idx] = reflect.New(reflect.PtrTo(field.FieldType)).Interface()
				continue
			}
			values[idx] = new(interface{})
		}
	} else {
		for idx := range columns {
			values[idx] = new(interface{})
		}
	}
}

func scanIntoMap(mapValue map[string]interface{}, values []interface{}, columns []string) {
	for idx, column := range columns {
		if reflectValue := reflect.Indirect(reflect.Indirect(reflect.ValueOf(values[idx]))); reflectValue.IsValid() {
			mapValue[column] = reflectValue.Interface()
			if valuer, ok := mapValue[column].(driver.Valuer); ok {
				mapValue[column], _ = valuer.Value()
			} else if b, ok := mapValue[column].([]byte); ok {
				mapValue[column] = string(b)
			}
		} else {
			mapValue[column] = nil
		}
	}
}

func (db *DB) scanIntoStruct(rows *sql.Rows, elem reflect.Value, values []interface{}, columns []string, fields []*schema.Field) {
	for idx := range columns {
		values[idx] = new(interface{})
	}

	db.RowsAffected++
	if err := rows.Scan(values...); err != nil {
		db.AddError(err)
		return
	}

	elem = reflect.Indirect(elem)
	for idx, field := range fields {
		if field == nil {
			continue
		}

		if value := reflect.Indirect(reflect.ValueOf(values[idx])).Interface(); value != nil {
			db.AddError(field.Set(elem, value))
		}
	}
}

// Scan scans rows into db statement's destination
func Scan(rows *sql.Rows, db *DB) {
	var (
		columns, _ = rows.Columns()
		values     = make([]interface{}, len(columns))
	)

	db.RowsAffected = 0

	switch dest := db.Statement.Dest.(type) {
	case *[]map[string]interface{}:
		for rows.Next() {
			prepareValues(values, db, columns)
			db.RowsAffected++
			db.AddError(rows.Scan(values...))

			mapValue := map[string]interface{}{}
			scanIntoMap(mapValue, values, columns)
			*dest = append(*dest, mapValue)
		}
	case map[string]interface{}, *map[string]interface{}:
		if rows.Next() {
			prepareValues(values, db, columns)
			db.RowsAffected++
			db.AddError(rows.Scan(values...))

			mapValue, ok := dest.(map[string]interface{})
			if !ok {
				if v, ok := dest.(*map[string]interface{}); ok {
					if *v == nil {
						*v = map[string]interface{}{}
					}
					mapValue = *v
				}
			}
			scanIntoMap(mapValue, values, columns)
		}
	default:
		var fields = make([]*schema.Field, len(columns))
		if sch := db.Statement.Schema; sch != nil {
			for idx, column := range columns {
				fields[idx] = sch.LookUpField(column)
			}
		}

		switch db.Statement.ReflectValue.Kind() {
		case reflect.Slice, reflect.Array:
			var (
				elemType = db.Statement.ReflectValue.Type().Elem()
				isPtr    = elemType.Kind() == reflect.Ptr
			)
			if isPtr {
				elemType = elemType.Elem()
			}

			db.Statement.ReflectValue.Set(reflect.MakeSlice(db.Statement.ReflectValue.Type(), 0, 20))

			for rows.Next() {
				elem := reflect.New(elemType)
				db.scanIntoStruct(rows, elem.Elem(), values, columns, fields)
				if db.Error != nil {
					break
				}

				if isPtr {
					db.Statement.ReflectValue.Set(reflect.Append(db.Statement.ReflectValue, elem))
				} else {
					db.Statement.ReflectValue.Set(reflect.Append(db.Statement.ReflectValue, elem.Elem()))
				}
			}
		case reflect.Struct:
			if rows.Next() {
				db.scanIntoStruct(rows, db.Statement.ReflectValue, values, columns, fields)
			}
		default:
			db.AddError(ErrInvalidValue)
		}
	}

	if err := rows.Err(); err != nil && err != db.Error {
		db.AddError(err)
	}

	if db.RowsAffected == 0 && db.Statement.RaiseErrorOnNotFound && db.Error == nil {
		db.AddError(ErrRecordNotFound)
	}
}
