package dbrec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/logger"
	"github.com/dbrec/dbrec/tests"
)

func newMockDB(t *testing.T) (*dbrec.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := dbrec.Open(tests.DummyDialector{Pool: conn}, &dbrec.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return db, mock
}

func newDryRunDB(t *testing.T) *dbrec.DB {
	t.Helper()

	db, err := dbrec.Open(tests.DummyDialector{}, &dbrec.Config{DryRun: true, Logger: logger.Discard})
	require.NoError(t, err)
	return db
}

func TestOpenDefaults(t *testing.T) {
	db, err := dbrec.Open(tests.DummyDialector{}, nil)
	require.NoError(t, err)
	require.NotNil(t, db.NamingStrategy)
	require.NotNil(t, db.Logger)
	require.NotNil(t, db.NowFunc)
	require.NotNil(t, db.Statement)
}

func TestOpenConfig(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 15, 26, 0, 0, time.UTC)
	db, err := dbrec.Open(tests.DummyDialector{}, &dbrec.Config{
		Logger:  logger.Discard,
		NowFunc: func() time.Time { return fixed },
		DryRun:  true,
	})
	require.NoError(t, err)
	require.True(t, db.DryRun)
	require.Equal(t, fixed, db.NowFunc())
}

func TestSession(t *testing.T) {
	db := newDryRunDB(t)

	tx := db.Session(&dbrec.Session{SkipHooks: true})
	require.NotSame(t, db, tx)
	require.NotSame(t, db.Statement, tx.Statement)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	tx = db.WithContext(ctx)
	require.Equal(t, ctx, tx.Statement.Context)
	require.Equal(t, context.Background(), db.Statement.Context)
}

func TestTransactionCommit(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET age = age + 1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := db.Transaction(func(tx *dbrec.DB) error {
		return tx.Exec("UPDATE users SET age = age + 1").Error
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollback(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.Transaction(func(tx *dbrec.DB) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionNested(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET age = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET age = 2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.Transaction(func(tx *dbrec.DB) error {
		if err := tx.Exec("UPDATE users SET age = 1").Error; err != nil {
			return err
		}
		return tx.Transaction(func(tx2 *dbrec.DB) error {
			return tx2.Exec("UPDATE users SET age = 2").Error
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginCommit(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM audits").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	tx := db.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, tx.Exec("DELETE FROM audits").Error)
	require.NoError(t, tx.Commit().Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitWithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	require.ErrorIs(t, db.Session(&dbrec.Session{NewDB: true}).Commit().Error, dbrec.ErrInvalidTransaction)
}

func TestDB(t *testing.T) {
	db, mock := newMockDB(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NotNil(t, sqlDB)

	mock.ExpectBegin()
	tx := db.Begin()
	require.NoError(t, tx.Error)
	_, err = tx.DB()
	require.ErrorIs(t, err, dbrec.ErrInvalidDB)
}

func TestAddError(t *testing.T) {
	db := newDryRunDB(t).Session(&dbrec.Session{NewDB: true})

	first := errors.New("first")
	second := errors.New("second")
	db.AddError(first)
	db.AddError(second)

	require.ErrorIs(t, db.Error, second)
	require.Contains(t, db.Error.Error(), "first")
}
