package tests

import "time"

// User is the shared fixture model. ID is the tagged primary key, the
// remaining column types are derived by the dialector.
type User struct {
	ID        uint `dbrec:"primaryKey"`
	Name      string
	Age       uint
	Birthday  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Note uses explicit column types and leaves the primary key to the
// first-declared-column fallback.
type Note struct {
	Body   string `dbrec:"type:TEXT"`
	Pinned bool   `dbrec:"type:NUMERIC"`
	Draft  string `dbrec:"-"`
}

func Now() *time.Time {
	now := time.Now()
	return &now
}
