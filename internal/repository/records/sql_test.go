package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"accreditations/internal/common"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewSQLStore(db, "records"), mock
}

func TestSQLStoreCreateReturnsID(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT INTO records \(given_names, surnames, .*renewal4_decision_number\)\s+VALUES \(\$1, .*\$35\)\s+RETURNING id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	rec := sampleRecord("V-1")
	require.NoError(t, store.Create(context.Background(), rec))
	assert.EqualValues(t, 7, rec.ID)
}

func TestSQLStoreCreateUniqueViolation(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`INSERT INTO records`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "records_national_id_key"})

	err := store.Create(context.Background(), sampleRecord("V-1"))
	require.ErrorIs(t, err, common.ErrDuplicateKey)
}

func TestSQLStoreGetNotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT id, given_names, .* FROM records WHERE id = \$1$`).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), 3)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLStoreUpdateBindsIDLast(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`(?s)^UPDATE records SET given_names = \$1, .* renewal4_decision_number = \$35 WHERE id = \$36$`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := sampleRecord("V-1")
	rec.ID = 12
	err := store.Update(context.Background(), rec)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLStoreDelete(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`^DELETE FROM records WHERE id = \$1$`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), 5))
}

func TestSQLStoreCustomTable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLStore(db, "acreditados")
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM acreditados$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreCountByCity(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`(?s)SELECT COALESCE\(city, ''\), COUNT\(id\)\s+FROM records\s+GROUP BY`).
		WillReturnRows(sqlmock.NewRows([]string{"city", "count"}).
			AddRow("", 2).
			AddRow("Mérida", 1))

	got, err := store.CountByCity(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Mérida", got[1].City)
	assert.EqualValues(t, 2, got[0].Count)
}

func TestSQLStoreAgesSkipsNull(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`^SELECT age FROM records WHERE age IS NOT NULL ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows([]string{"age"}).AddRow(23).AddRow(41))

	got, err := store.Ages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{23, 41}, got)
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(sql.ErrNoRows), common.ErrNotFound)
	assert.ErrorIs(t, translate(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}), common.ErrDuplicateKey)
	assert.NotErrorIs(t, translate(&pgconn.PgError{Code: "23503"}), common.ErrDuplicateKey)

	other := errors.New("connection reset")
	assert.Same(t, other, translate(other))
}
