package sqlite

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/schema"
)

type metric struct {
	ID        uint `dbrec:"primaryKey"`
	Enabled   bool
	Count     int
	Ratio     float64
	Label     string
	Payload   []byte
	Collected time.Time
}

func TestDataTypeOf(t *testing.T) {
	sch, err := schema.Parse(&metric{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse schema, got %v", err)
	}

	tests := []struct {
		field string
		want  string
	}{
		{"ID", "integer PRIMARY KEY AUTOINCREMENT"},
		{"Enabled", "numeric"},
		{"Count", "integer"},
		{"Ratio", "real"},
		{"Label", "text"},
		{"Payload", "blob"},
		{"Collected", "datetime"},
	}

	var dialector Dialector
	for _, tt := range tests {
		if got := dialector.DataTypeOf(sch.FieldsByName[tt.field]); got != tt.want {
			t.Errorf("DataTypeOf(%v) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{dsn: "sqlite:app.db", want: "file:app.db"},
		{dsn: "sqlite:app.db;cache=shared;mode=rwc", want: "file:app.db?cache=shared&mode=rwc"},
		{dsn: "sqlite::memory:;cache=shared", want: "file::memory:?cache=shared"},
		{dsn: "file:direct.db?cache=shared", want: "file:direct.db?cache=shared"},
		{dsn: "sqlite:", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Dialector{DSN: tt.dsn}.source()
		if tt.wantErr {
			if !errors.Is(err, dbrec.ErrInvalidDSN) {
				t.Errorf("source(%q) error = %v, want ErrInvalidDSN", tt.dsn, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("source(%q) returned error %v", tt.dsn, err)
			continue
		}
		if got != tt.want {
			t.Errorf("source(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestQuoteTo(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"users", "`users`"},
		{"users.name", "`users`.`name`"},
	}

	var dialector Dialector
	for _, tt := range tests {
		var sb strings.Builder
		dialector.QuoteTo(&sb, tt.name)
		if sb.String() != tt.want {
			t.Errorf("QuoteTo(%q) = %q, want %q", tt.name, sb.String(), tt.want)
		}
	}
}

func TestExplain(t *testing.T) {
	var dialector Dialector
	got := dialector.Explain("SELECT * FROM `users` WHERE `name` = ? AND `age` = ?", "Ann", 30)
	want := "SELECT * FROM `users` WHERE `name` = \"Ann\" AND `age` = 30"
	if got != want {
		t.Errorf("Explain() = %q, want %q", got, want)
	}
}
