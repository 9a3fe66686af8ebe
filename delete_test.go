package dbrec_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/tests"
)

func TestDeleteOne(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `users` WHERE `id` = ?").
		WithArgs(uint(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := tests.User{ID: 5}
	result := db.Delete(&user)
	require.NoError(t, result.Error)
	require.EqualValues(t, 1, result.RowsAffected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnsetPrimaryKey(t *testing.T) {
	db, mock := newMockDB(t)

	user := tests.User{Name: "Ann"}
	result := db.Delete(&user)
	require.ErrorIs(t, result.Error, dbrec.ErrPrimaryKeyEmpty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRowRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `users` WHERE `id` = ?").
		WithArgs(uint(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	user := tests.User{ID: 8}
	result := db.Delete(&user)
	require.ErrorIs(t, result.Error, dbrec.ErrUnexpectedRowCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDryRun(t *testing.T) {
	db := newDryRunDB(t)

	user := tests.User{ID: 2}
	result := db.Delete(&user)
	require.NoError(t, result.Error)
	require.Equal(t, "DELETE FROM `users` WHERE `id` = ?", result.Statement.SQL.String())
	require.Equal(t, []interface{}{uint(2)}, result.Statement.Vars)
}

type archivedNote struct {
	ID    uint `dbrec:"primaryKey"`
	Body  string
	trace []string
}

func (n *archivedNote) BeforeDelete(tx *dbrec.DB) error {
	n.trace = append(n.trace, "before_delete")
	return nil
}

func (n *archivedNote) AfterDelete(tx *dbrec.DB) error {
	n.trace = append(n.trace, "after_delete")
	return nil
}

func TestDeleteHooks(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `archived_notes` WHERE `id` = ?").
		WithArgs(uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	note := archivedNote{ID: 3}
	require.NoError(t, db.Delete(&note).Error)
	require.Equal(t, []string{"before_delete", "after_delete"}, note.trace)
	require.NoError(t, mock.ExpectationsWereMet())
}
