package dbrec

import (
	"errors"
	"fmt"

	"github.com/dbrec/dbrec/logger"
)

var (
	// ErrRecordNotFound record not found error
	ErrRecordNotFound = logger.ErrRecordNotFound
	// ErrNotFound criteria did not match exactly one record
	ErrNotFound = errors.New("no matching record")
	// ErrInvalidTransaction invalid transaction when you are trying to `Commit` or `Rollback`
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidDB invalid db
	ErrInvalidDB = errors.New("invalid db")
	// ErrInvalidValue invalid value, should be pointer to struct or slice
	ErrInvalidValue = errors.New("invalid value, should be pointer to struct or slice")
	// ErrInvalidData unsupported data when quoting identifiers
	ErrInvalidData = errors.New("unsupported data")
	// ErrModelValueRequired model value required
	ErrModelValueRequired = errors.New("model value required")
	// ErrEmptySchema model has no usable database fields
	ErrEmptySchema = errors.New("empty schema")
	// ErrPrimaryKeyEmpty primary key of the record is not set
	ErrPrimaryKeyEmpty = errors.New("primary key is empty")
	// ErrUnexpectedRowCount statement touched an unexpected number of rows
	ErrUnexpectedRowCount = errors.New("unexpected affected row count")
	// ErrFieldNotDeclared field does not exist on the model struct
	ErrFieldNotDeclared = errors.New("field not declared")
	// ErrFieldNotDBProperty field is declared but not mapped to a column
	ErrFieldNotDBProperty = errors.New("field is not a database column")
	// ErrInvalidCriteria criteria name does not resolve to a column
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrInvalidCriteriaFormat criteria value has an unsupported type
	ErrInvalidCriteriaFormat = errors.New("unsupported criteria format")
	// ErrInvalidDSN malformed data source name
	ErrInvalidDSN = errors.New("invalid DSN")
)

// DatabaseError carries a failed statement's driver error together with
// the SQLSTATE code reported by the server, when the driver exposes one.
type DatabaseError struct {
	Message string
	Code    string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("database error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("database error: %s", e.Message)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// wrapDatabaseError normalizes driver failures into *DatabaseError.
func wrapDatabaseError(err error) error {
	if err == nil {
		return nil
	}

	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}

	wrapped := &DatabaseError{Message: err.Error(), Err: err}

	var coder interface{ SQLState() string }
	if errors.As(err, &coder) {
		wrapped.Code = coder.SQLState()
	}
	return wrapped
}
