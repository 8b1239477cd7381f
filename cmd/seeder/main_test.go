package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/expertfind/profiles"
)

func TestProfilesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.jsonl")
	content := `{"user_id": 10, "first_name": "Ada", "last_name": "Lovelace", "expertise": "Mathematics", "years_of_experience": "20"}

{"user_id": 11, "first_name": "Alan", "organization_detail": "Bletchley Park"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var readErr error
	source, err := profilesFromFile(path, &readErr)
	require.NoError(t, err)

	records := slices.Collect(source)
	require.NoError(t, readErr)
	require.Len(t, records, 2)
	assert.Equal(t, int64(10), records[0].ID)
	assert.Equal(t, "Lovelace", records[0].LastName)
	assert.Equal(t, "20", records[0].YearsOfExperience)
	assert.Equal(t, "Bletchley Park", records[1].Organization)
}

func TestProfilesFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"user_id\": 1}\nnot json\n{\"user_id\": 3}\n"), 0o600))

	var readErr error
	source, err := profilesFromFile(path, &readErr)
	require.NoError(t, err)

	records := slices.Collect(source)
	assert.Len(t, records, 1)
	require.Error(t, readErr)
	assert.Contains(t, readErr.Error(), "seed.jsonl:2")
}

func TestProfilesFromFile_Missing(t *testing.T) {
	var readErr error
	_, err := profilesFromFile(filepath.Join(t.TempDir(), "absent.jsonl"), &readErr)
	assert.Error(t, err)
}

func TestInsertBatched(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := profiles.NewStore(sqlx.NewDb(db, "sqlmock"), "", time.Second)
	require.NoError(t, err)

	// 8 samples in batches of 3: 3 + 3 + 2
	for _, n := range []int64{3, 3, 2} {
		mock.ExpectExec("INSERT INTO grandu_user").WillReturnResult(sqlmock.NewResult(0, n))
	}

	total, err := insertBatched(context.Background(), store, profilesFromSlice(samples), 3)
	require.NoError(t, err)
	assert.Equal(t, len(samples), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
