package schema_test

import (
	"database/sql"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dbrec/dbrec/schema"
)

type Base struct {
	ID        uint `dbrec:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	Base
	Name     string `dbrec:"size:255"`
	Age      uint
	Birthday *time.Time
	Active   bool
	Ignored  string `dbrec:"-"`
}

func TestParseSchema(t *testing.T) {
	userSchema, err := schema.Parse(&User{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse user, got error %v", err)
	}

	if userSchema.Table != "users" {
		t.Errorf("invalid table name, got %v", userSchema.Table)
	}

	wantDBNames := []string{"id", "created_at", "updated_at", "name", "age", "birthday", "active"}
	if !reflect.DeepEqual(userSchema.DBNames, wantDBNames) {
		t.Errorf("unexpected columns, got %v, want %v", userSchema.DBNames, wantDBNames)
	}

	if _, ok := userSchema.FieldsByName["Ignored"]; ok {
		t.Error("ignored field should not be parsed")
	}

	if userSchema.PrioritizedPrimaryField == nil || userSchema.PrioritizedPrimaryField.DBName != "id" {
		t.Errorf("invalid primary field, got %v", userSchema.PrioritizedPrimaryField)
	}

	if !userSchema.PrioritizedPrimaryField.AutoIncrement {
		t.Error("integer primary key should default to auto increment")
	}

	if field := userSchema.LookUpField("created_at"); field == nil || !field.AutoCreateTime {
		t.Error("CreatedAt should be tracked as auto create time")
	}

	if field := userSchema.LookUpField("UpdatedAt"); field == nil || !field.AutoUpdateTime {
		t.Error("UpdatedAt should be tracked as auto update time")
	}
}

func TestParseSchemaWithTypeTag(t *testing.T) {
	type Article struct {
		Title string `dbrec:"type:VARCHAR(50)"`
		Num   int    `dbrec:"type:INTEGER PRIMARY KEY"`
	}

	articleSchema, err := schema.Parse(&Article{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse article, got error %v", err)
	}

	if articleSchema.PrioritizedPrimaryField == nil || articleSchema.PrioritizedPrimaryField.Name != "Num" {
		t.Errorf("column type containing primary key should win, got %v", articleSchema.PrioritizedPrimaryField)
	}

	if field := articleSchema.LookUpField("title"); field == nil || field.ColumnType != "VARCHAR(50)" {
		t.Errorf("column type should be kept verbatim, got %+v", field)
	}
}

func TestFirstColumnFallsBackToPrimaryKey(t *testing.T) {
	type Tag struct {
		Label string
		Notes string
	}

	tagSchema, err := schema.Parse(&Tag{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse tag, got error %v", err)
	}

	if tagSchema.PrioritizedPrimaryField == nil || tagSchema.PrioritizedPrimaryField.DBName != "label" {
		t.Errorf("first column should become the primary key, got %v", tagSchema.PrioritizedPrimaryField)
	}
}

type Blog struct {
	ID    uint
	Title string
}

func (Blog) TableName() string {
	return "blog_posts"
}

func TestCustomTableName(t *testing.T) {
	blogSchema, err := schema.Parse(&Blog{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse blog, got error %v", err)
	}

	if blogSchema.Table != "blog_posts" {
		t.Errorf("invalid table name, got %v", blogSchema.Table)
	}
}

func TestParseUnsupportedData(t *testing.T) {
	if _, err := schema.Parse(map[string]interface{}{}, &sync.Map{}, schema.NamingStrategy{}); err == nil {
		t.Error("map should not be parseable as a model")
	} else if !strings.Contains(err.Error(), "unsupported data type") {
		t.Errorf("unexpected error %v", err)
	}

	if _, err := schema.Parse(nil, &sync.Map{}, schema.NamingStrategy{}); err == nil {
		t.Error("nil should not be parseable as a model")
	}
}

func TestSchemaCache(t *testing.T) {
	cacheStore := &sync.Map{}

	s1, err := schema.Parse(&User{}, cacheStore, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse user, got error %v", err)
	}

	s2, err := schema.Parse(User{}, cacheStore, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse user, got error %v", err)
	}

	if s1 != s2 {
		t.Error("parsing the same model twice should reuse the cached schema")
	}
}

func TestFieldValuerAndSetter(t *testing.T) {
	var (
		userSchema, _ = schema.Parse(&User{}, &sync.Map{}, schema.NamingStrategy{})
		birthday      = time.Now()
		user          = User{
			Base: Base{
				ID:        10,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			Name:     "valuer_and_setter",
			Age:      18,
			Birthday: &birthday,
			Active:   true,
		}
		reflectValue = reflect.ValueOf(&user)
	)

	// test valuer
	values := map[string]interface{}{
		"name":       user.Name,
		"id":         user.ID,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
		"age":        user.Age,
		"birthday":   user.Birthday,
		"active":     true,
	}
	checkField(t, userSchema, reflectValue, values)

	// test setter
	newValues := map[string]interface{}{
		"name":       "valuer_and_setter_2",
		"id":         2,
		"created_at": time.Now(),
		"age":        20,
		"birthday":   time.Now(),
		"active":     false,
	}

	for k, v := range newValues {
		if err := userSchema.FieldsByDBName[k].Set(reflectValue, v); err != nil {
			t.Errorf("no error should happen when assign value to field %v, but got %v", k, err)
		}
	}

	if user.Name != "valuer_and_setter_2" || user.ID != 2 || user.Age != 20 || user.Active {
		t.Errorf("setter did not apply values, got %+v", user)
	}
	if user.Birthday == nil || !user.Birthday.Equal(newValues["birthday"].(time.Time)) {
		t.Errorf("pointer time field should be set from a plain time, got %v", user.Birthday)
	}

	// test valuer from sql null types
	if err := userSchema.FieldsByDBName["name"].Set(reflectValue, sql.NullString{String: "valuer_and_setter_3", Valid: true}); err != nil {
		t.Errorf("no error should happen when assign valuer to field, but got %v", err)
	}
	if user.Name != "valuer_and_setter_3" {
		t.Errorf("valuer value should be applied, got %v", user.Name)
	}
}

func TestFieldZeroDetection(t *testing.T) {
	userSchema, _ := schema.Parse(&User{}, &sync.Map{}, schema.NamingStrategy{})

	user := User{Name: "zero_check"}
	reflectValue := reflect.ValueOf(&user)

	if _, zero := userSchema.FieldsByDBName["name"].ValueOf(reflectValue); zero {
		t.Error("assigned field should not be zero")
	}
	if _, zero := userSchema.FieldsByDBName["age"].ValueOf(reflectValue); !zero {
		t.Error("unassigned field should be zero")
	}
	if _, zero := userSchema.FieldsByDBName["birthday"].ValueOf(reflectValue); !zero {
		t.Error("nil pointer field should be zero")
	}

	birthday := time.Time{}
	user.Birthday = &birthday
	if _, zero := userSchema.FieldsByDBName["birthday"].ValueOf(reflectValue); zero {
		t.Error("non-nil pointer to zero value should not be zero")
	}
}

func checkField(t *testing.T, s *schema.Schema, value reflect.Value, values map[string]interface{}) {
	t.Helper()

	for k, v := range values {
		field := s.FieldsByDBName[k]
		if field == nil {
			t.Errorf("field %v not found", k)
			continue
		}

		fv, _ := field.ValueOf(value)
		if !reflect.DeepEqual(fv, v) {
			t.Errorf("field %v value should equal %v, but got %v", k, v, fv)
		}
	}
}
