package profiles

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/poiesic/expertfind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileColumns = []string{
	"user_id", "first_name", "last_name", "expertise", "years_of_experience",
	"organization_detail", "field_of_interest", "requirements",
}

const selectPrefix = "SELECT user_id, first_name, last_name, expertise, years_of_experience"

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(sqlx.NewDb(db, "sqlmock"), "", time.Second)
	require.NoError(t, err)
	return store, mock
}

func TestFetchAll(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows(profileColumns).
		AddRow(1, "Ada", "Lovelace", "Cloud Computing", "12", "AppGenius Inc.", "AI", "Remote").
		AddRow(2, "Alan", nil, nil, "7", nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(selectPrefix)).WillReturnRows(rows)

	records, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, core.ProfileRecord{
		ID:                1,
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Expertise:         "Cloud Computing",
		YearsOfExperience: "12",
		Organization:      "AppGenius Inc.",
		FieldOfInterest:   "AI",
		Requirements:      "Remote",
	}, records[0])

	// NULL columns read as empty strings
	assert.Equal(t, int64(2), records[1].ID)
	assert.Equal(t, "Alan", records[1].FirstName)
	assert.Empty(t, records[1].LastName)
	assert.Empty(t, records[1].Organization)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAll_NoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectPrefix)).WillReturnRows(sqlmock.NewRows(profileColumns))

	records, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchAll_QueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectPrefix)).
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'grandu_db.grandu_user' doesn't exist"})

	records, err := store.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreQuery)
	assert.NotNil(t, records, "query errors return an empty slice")
	assert.Empty(t, records)
}

func TestFetchAll_BadShape(t *testing.T) {
	store, mock := newMockStore(t)
	// user_id cannot be scanned into an integer
	rows := sqlmock.NewRows(profileColumns).
		AddRow("not-a-number", "Ada", "Lovelace", "", "", "", "", "")
	mock.ExpectQuery(regexp.QuoteMeta(selectPrefix)).WillReturnRows(rows)

	records, err := store.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreQuery)
	assert.Empty(t, records)
}

func TestFetchAll_ConnectionLost(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectPrefix)).WillReturnError(mysql.ErrInvalidConn)

	records, err := store.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	assert.Nil(t, records)
}

func TestFetchAll_CanceledContext(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectPrefix)).WillReturnError(errors.New("canceling query due to user request"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FetchAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestNewStore_TableName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	t.Run("default table", func(t *testing.T) {
		store, err := NewStore(sqlxDB, "", 0)
		require.NoError(t, err)
		assert.Equal(t, "grandu_user", store.table)
		assert.Equal(t, defaultTimeout, store.timeout)
	})

	t.Run("custom table", func(t *testing.T) {
		store, err := NewStore(sqlxDB, "experts_v2", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "experts_v2", store.table)
	})

	t.Run("rejects injection", func(t *testing.T) {
		_, err := NewStore(sqlxDB, "users; DROP TABLE users", time.Second)
		assert.Error(t, err)
	})
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     3306,
		Database: "grandu_db",
		User:     "root",
		Password: "secret",
		Timeout:  5 * time.Second,
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "root:secret@tcp(localhost:3306)/grandu_db")
	assert.Contains(t, dsn, "timeout=5s")
}

func TestOpen_Unreachable(t *testing.T) {
	cfg := Config{
		Host:     "127.0.0.1",
		Port:     1,
		Database: "grandu_db",
		User:     "root",
		Timeout:  500 * time.Millisecond,
	}

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}
