package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hengadev/obfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	firstID, err := j.Record(ctx, Entry{
		Source:  "customers.csv",
		Target:  "customers.obfuscated.csv",
		Format:  "csv",
		Fields:  []string{"email", "phone"},
		Records: 1204,
		Outcome: OutcomeOK,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, firstID)

	secondID, err := j.Record(ctx, Entry{
		Source:  "s3://raw/export.csv",
		Format:  "csv",
		Fields:  []string{"email"},
		Outcome: OutcomeError,
		Message: "obfuscation key not found",
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, secondID, entries[0].ID)
	assert.Equal(t, OutcomeError, entries[0].Outcome)
	assert.Equal(t, "obfuscation key not found", entries[0].Message)
	assert.Empty(t, entries[0].Target)
	assert.Equal(t, []string{"email"}, entries[0].Fields)

	assert.Equal(t, firstID, entries[1].ID)
	assert.Equal(t, "customers.csv", entries[1].Source)
	assert.Equal(t, "customers.obfuscated.csv", entries[1].Target)
	assert.Equal(t, []string{"email", "phone"}, entries[1].Fields)
	assert.Equal(t, 1204, entries[1].Records)
	assert.False(t, entries[1].CreatedAt.IsZero())
}

func TestRecord_KeepsCallerID(t *testing.T) {
	j := openTestJournal(t)

	id, err := j.Record(context.Background(), Entry{
		ID:      "run-42",
		Source:  "data.csv",
		Format:  "csv",
		Outcome: OutcomeOK,
	})
	require.NoError(t, err)
	assert.Equal(t, "run-42", id)
}

func TestRecord_DuplicateIDFails(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	entry := Entry{ID: "run-42", Source: "data.csv", Format: "csv", Outcome: OutcomeOK}
	_, err := j.Record(ctx, entry)
	require.NoError(t, err)

	_, err = j.Record(ctx, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, obfx.ErrDatabaseUnavailable)
}

func TestRecent_LimitAndEmptyJournal(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	entries, err := j.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	for i := 0; i < 4; i++ {
		_, err := j.Record(ctx, Entry{Source: "data.csv", Format: "csv", Outcome: OutcomeOK})
		require.NoError(t, err)
	}

	entries, err = j.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Non-positive limit falls back to the default.
	entries, err = j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRecent_NoFields(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	_, err := j.Record(ctx, Entry{Source: "data.csv", Format: "csv", Outcome: OutcomeOK})
	require.NoError(t, err)

	entries, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Fields)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "nested", "audit.db"))

	require.Error(t, err)
	assert.ErrorIs(t, err, obfx.ErrDatabaseUnavailable)
}

func TestOpen_ReopensExistingJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Record(ctx, Entry{Source: "data.csv", Format: "csv", Outcome: OutcomeOK})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
