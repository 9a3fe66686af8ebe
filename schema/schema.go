package schema

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"go/ast"
	"reflect"
	"sync"

	"github.com/dbrec/dbrec/logger"
	"github.com/dbrec/dbrec/utils"
)

// ErrUnsupportedDataType unsupported data type
var ErrUnsupportedDataType = errors.New("unsupported data type")

// Tabler interface for models customizing their table name
type Tabler interface {
	TableName() string
}

type Schema struct {
	Name                      string
	ModelType                 reflect.Type
	Table                     string
	PrioritizedPrimaryField   *Field
	PrimaryFields             []*Field
	Fields                    []*Field
	DBNames                   []string
	FieldsByName              map[string]*Field
	FieldsByDBName            map[string]*Field
	BeforeCreate, AfterCreate bool
	BeforeUpdate, AfterUpdate bool
	BeforeDelete, AfterDelete bool
	AfterFind                 bool
	err                       error
	namer                     Namer
	cacheStore                *sync.Map
}

func (schema Schema) String() string {
	if schema.ModelType.Name() == "" {
		return fmt.Sprintf("%v(%v)", schema.Name, schema.Table)
	}
	return fmt.Sprintf("%v.%v", schema.ModelType.PkgPath(), schema.ModelType.Name())
}

// LookUpField looks up a field by its struct name or column name
func (schema Schema) LookUpField(name string) *Field {
	if field, ok := schema.FieldsByDBName[name]; ok {
		return field
	}
	if field, ok := schema.FieldsByName[name]; ok {
		return field
	}
	return nil
}

type callbackType string

const (
	callbackTypeBeforeCreate callbackType = "BeforeCreate"
	callbackTypeAfterCreate  callbackType = "AfterCreate"
	callbackTypeBeforeUpdate callbackType = "BeforeUpdate"
	callbackTypeAfterUpdate  callbackType = "AfterUpdate"
	callbackTypeBeforeDelete callbackType = "BeforeDelete"
	callbackTypeAfterDelete  callbackType = "AfterDelete"
	callbackTypeAfterFind    callbackType = "AfterFind"
)

var driverValuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// Parse get data type from dialector
func Parse(dest interface{}, cacheStore *sync.Map, namer Namer) (*Schema, error) {
	if dest == nil {
		return nil, fmt.Errorf("%w: %+v", ErrUnsupportedDataType, dest)
	}

	value := reflect.ValueOf(dest)
	if value.Kind() == reflect.Ptr && value.IsNil() {
		value = reflect.New(value.Type().Elem())
	}
	modelType := reflect.Indirect(value).Type()

	for modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array || modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		if modelType.PkgPath() == "" {
			return nil, fmt.Errorf("%w: %+v", ErrUnsupportedDataType, dest)
		}
		return nil, fmt.Errorf("%w: %v.%v", ErrUnsupportedDataType, modelType.PkgPath(), modelType.Name())
	}

	if v, ok := cacheStore.Load(modelType); ok {
		s := v.(*Schema)
		return s, s.err
	}

	modelValue := reflect.New(modelType)
	tableName := namer.TableName(modelType.Name())
	if tabler, ok := modelValue.Interface().(Tabler); ok {
		tableName = tabler.TableName()
	}

	schema := &Schema{
		Name:           modelType.Name(),
		ModelType:      modelType,
		Table:          tableName,
		FieldsByName:   map[string]*Field{},
		FieldsByDBName: map[string]*Field{},
		cacheStore:     cacheStore,
		namer:          namer,
	}

	defer func() {
		if schema.err != nil {
			logger.Default.Error(context.Background(), schema.err.Error())
			cacheStore.Delete(modelType)
		}
	}()

	var addFields func(modelType reflect.Type, baseIndex []int, baseNames []string)
	addFields = func(modelType reflect.Type, baseIndex []int, baseNames []string) {
		for i := 0; i < modelType.NumField(); i++ {
			fieldStruct := modelType.Field(i)
			if !ast.IsExported(fieldStruct.Name) {
				continue
			}

			tagSettings := ParseTagSetting(fieldStruct.Tag.Get("dbrec"), ";")
			if _, ok := tagSettings["-"]; ok {
				continue
			}

			if fieldStruct.Anonymous && fieldStruct.Type.Kind() == reflect.Struct &&
				!fieldStruct.Type.ConvertibleTo(TimeReflectType) &&
				!fieldStruct.Type.Implements(driverValuerType) &&
				!reflect.PtrTo(fieldStruct.Type).Implements(driverValuerType) {
				addFields(fieldStruct.Type,
					append(append([]int{}, baseIndex...), i),
					append(append([]string{}, baseNames...), fieldStruct.Name))
				continue
			}

			field := schema.ParseField(fieldStruct)
			if len(baseIndex) > 0 {
				field.StructField.Index = append(append([]int{}, baseIndex...), fieldStruct.Index...)
				field.BindNames = append(append([]string{}, baseNames...), field.BindNames...)
			}
			schema.Fields = append(schema.Fields, field)
		}
	}
	addFields(modelType, nil, nil)

	for _, field := range schema.Fields {
		if field.DBName == "" {
			field.DBName = namer.ColumnName(schema.Table, field.Name)
		}

		if v, ok := schema.FieldsByDBName[field.DBName]; !ok {
			schema.DBNames = append(schema.DBNames, field.DBName)
			schema.FieldsByDBName[field.DBName] = field
		} else if len(field.BindNames) < len(v.BindNames) {
			// the shallowest field wins when an embedded column is shadowed
			schema.FieldsByDBName[field.DBName] = field
		}

		if _, ok := schema.FieldsByName[field.Name]; !ok {
			schema.FieldsByName[field.Name] = field
		}

		field.setupValuerAndSetter()
	}

	for _, dbName := range schema.DBNames {
		if field := schema.FieldsByDBName[dbName]; field.PrimaryKey {
			if schema.PrioritizedPrimaryField == nil {
				schema.PrioritizedPrimaryField = field
			}
			schema.PrimaryFields = append(schema.PrimaryFields, field)
		}
	}

	// without a declared primary key the first column serves as one
	if schema.PrioritizedPrimaryField == nil && len(schema.DBNames) > 0 {
		field := schema.FieldsByDBName[schema.DBNames[0]]
		field.PrimaryKey = true
		schema.PrioritizedPrimaryField = field
		schema.PrimaryFields = append(schema.PrimaryFields, field)
	}

	if field := schema.PrioritizedPrimaryField; field != nil && !field.HasDefaultValue &&
		(field.DataType == Int || field.DataType == Uint) {
		if v, ok := field.TagSettings["AUTOINCREMENT"]; !ok || utils.CheckTruth(v) {
			field.AutoIncrement = true
			field.HasDefaultValue = true
		}
	}

	callbackTypes := []callbackType{
		callbackTypeBeforeCreate, callbackTypeAfterCreate,
		callbackTypeBeforeUpdate, callbackTypeAfterUpdate,
		callbackTypeBeforeDelete, callbackTypeAfterDelete,
		callbackTypeAfterFind,
	}
	for _, cbName := range callbackTypes {
		if methodValue := modelValue.MethodByName(string(cbName)); methodValue.IsValid() {
			switch methodValue.Type().String() {
			case "func(*dbrec.DB) error":
				reflect.Indirect(reflect.ValueOf(schema)).FieldByName(string(cbName)).SetBool(true)
			default:
				logger.Default.Warn(context.Background(), "model %v don't match %vInterface, should be `%v(*dbrec.DB) error`", schema, cbName, cbName)
			}
		}
	}

	cacheStore.Store(modelType, schema)

	return schema, schema.err
}
