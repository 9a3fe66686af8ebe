package dbrec

import (
	"fmt"
	"reflect"

	"github.com/dbrec/dbrec/schema"
)

// GetField reads the database property called name from record. The
// name is accepted in column, struct field or lower camel form. Fields
// the record declares but keeps out of its schema, such as `dbrec:"-"`
// ones, fail with ErrFieldNotDBProperty.
func (db *DB) GetField(record interface{}, name string) (interface{}, error) {
	value := reflect.Indirect(reflect.ValueOf(record))
	if !value.IsValid() || value.Kind() != reflect.Struct {
		return nil, ErrInvalidValue
	}

	sch, err := schema.Parse(record, db.cacheStore, db.NamingStrategy)
	if err != nil {
		return nil, err
	}

	if field := lookUpField(db, sch, name); field != nil {
		fieldValue, _ := field.ValueOf(value)
		return fieldValue, nil
	}

	if _, ok := findStructField(db, value.Type(), name); !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrFieldNotDeclared, sch.Name, name)
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrFieldNotDBProperty, sch.Name, name)
}

// SetField writes the database property called name on record,
// dispatching to a Set<Field> method when the record declares one so
// model types can validate or coerce incoming values.
func (db *DB) SetField(record interface{}, name string, fieldValue interface{}) error {
	value := reflect.ValueOf(record)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return ErrInvalidValue
	}

	elem := reflect.Indirect(value)
	if elem.Kind() != reflect.Struct {
		return ErrInvalidValue
	}

	sch, err := schema.Parse(record, db.cacheStore, db.NamingStrategy)
	if err != nil {
		return err
	}

	var fieldName string
	field := lookUpField(db, sch, name)
	if field != nil {
		fieldName = field.Name
	} else {
		structField, ok := findStructField(db, elem.Type(), name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrFieldNotDeclared, sch.Name, name)
		}
		if len(sch.DBNames) > 0 {
			return fmt.Errorf("%w: %s.%s", ErrFieldNotDBProperty, sch.Name, name)
		}
		fieldName = structField.Name
	}

	if method := value.MethodByName("Set" + fieldName); method.IsValid() {
		return callSetter(method, fieldValue)
	}

	if field != nil {
		return field.Set(elem, fieldValue)
	}

	target := elem.FieldByName(fieldName)
	rv := reflect.ValueOf(fieldValue)
	switch {
	case !rv.IsValid():
		target.Set(reflect.Zero(target.Type()))
	case rv.Type().ConvertibleTo(target.Type()):
		target.Set(rv.Convert(target.Type()))
	default:
		return fmt.Errorf("%w: cannot assign %T to %s", ErrInvalidValue, fieldValue, fieldName)
	}
	return nil
}

func callSetter(method reflect.Value, value interface{}) error {
	methodType := method.Type()
	if methodType.NumIn() != 1 {
		return fmt.Errorf("%w: setter must take exactly one argument", ErrInvalidValue)
	}

	in := reflect.ValueOf(value)
	switch {
	case !in.IsValid():
		in = reflect.Zero(methodType.In(0))
	case in.Type() != methodType.In(0) && in.Type().ConvertibleTo(methodType.In(0)):
		in = in.Convert(methodType.In(0))
	case in.Type() != methodType.In(0):
		return fmt.Errorf("%w: cannot pass %T to setter", ErrInvalidValue, value)
	}

	for _, out := range method.Call([]reflect.Value{in}) {
		if err, ok := out.Interface().(error); ok && err != nil {
			return err
		}
	}
	return nil
}

// lookUpField resolves name against sch, first as given and then in its
// column name form.
func lookUpField(db *DB, sch *schema.Schema, name string) *schema.Field {
	if field := sch.LookUpField(name); field != nil {
		return field
	}
	if normalized := db.NamingStrategy.ColumnName(sch.Table, name); normalized != name {
		if field := sch.LookUpField(normalized); field != nil {
			return field
		}
	}
	return nil
}

// findStructField locates the struct field matching name in any of the
// accepted spellings, embedded fields included.
func findStructField(db *DB, modelType reflect.Type, name string) (reflect.StructField, bool) {
	column := db.NamingStrategy.ColumnName("", name)
	return modelType.FieldByNameFunc(func(fieldName string) bool {
		return fieldName == name || db.NamingStrategy.ColumnName("", fieldName) == column
	})
}
