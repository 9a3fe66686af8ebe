package dbrec_test

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/tests"
)

type scratchpad struct {
	Draft string `dbrec:"-"`
}

func TestAutoMigrateCreatesTable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT * FROM `notes` LIMIT 1").WillReturnError(errors.New("no such table: notes"))
	mock.ExpectExec("CREATE TABLE `notes` (`body` TEXT,`pinned` NUMERIC)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.AutoMigrate(&tests.Note{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateExistingEmptyTable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT * FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRows(userColumns))

	require.NoError(t, db.AutoMigrate(&tests.User{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateAddsMissingColumns(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT * FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Ann"))
	mock.ExpectExec("ALTER TABLE `users` ADD `age` uint").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE `users` ADD `birthday` time").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE `users` ADD `created_at` time").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE `users` ADD `updated_at` time").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.AutoMigrate(&tests.User{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateUpToDate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT * FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Ann", 18, nil, nil, nil))

	require.NoError(t, db.AutoMigrate(&tests.User{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateEmptySchema(t *testing.T) {
	db, mock := newMockDB(t)

	err := db.AutoMigrate(&scratchpad{})
	require.ErrorIs(t, err, dbrec.ErrEmptySchema)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A dry run session never probes the table, so reconciling is a no-op.
func TestAutoMigrateDryRun(t *testing.T) {
	db, mock := newMockDB(t)
	session := db.Session(&dbrec.Session{DryRun: true})

	require.NotPanics(t, func() {
		require.NoError(t, session.AutoMigrate(&tests.User{}))
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE `users` (`id` uint,`name` string,`age` uint,`birthday` time,`created_at` time,`updated_at` time)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Migrator().CreateTable(&tests.User{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropTable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("DROP TABLE IF EXISTS `users`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS `sessions`").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Migrator().DropTable(&tests.User{}, "sessions"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasTable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT * FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRows(userColumns))
	require.True(t, db.Migrator().HasTable(&tests.User{}))

	mock.ExpectQuery("SELECT * FROM `ghosts` LIMIT 1").
		WillReturnError(errors.New("no such table: ghosts"))
	require.False(t, db.Migrator().HasTable("ghosts"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasTableDryRun(t *testing.T) {
	db, mock := newMockDB(t)
	session := db.Session(&dbrec.Session{DryRun: true})

	require.NotPanics(t, func() {
		require.False(t, session.Migrator().HasTable("users"))
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddColumn(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("ALTER TABLE `users` ADD `birthday` time").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, db.Migrator().AddColumn(&tests.User{}, "birthday"))

	mock.ExpectExec("ALTER TABLE `users` ADD `age` uint").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, db.Migrator().AddColumn(&tests.User{}, "Age"))

	err := db.Migrator().AddColumn(&tests.User{}, "Nickname")
	require.ErrorIs(t, err, dbrec.ErrFieldNotDeclared)

	require.NoError(t, mock.ExpectationsWereMet())
}
