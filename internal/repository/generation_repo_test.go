package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheetgen/server/internal/generation"
	"github.com/sheetgen/server/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations())
	return db
}

func testRecord(id, createdAt string) *generation.Record {
	return &generation.Record{
		ID:          id,
		Description: "desc for " + id,
		Provider:    "auto",
		Filename:    "spreadsheet_20250615_103045.xlsx",
		SizeBytes:   24567,
		CreatedAt:   createdAt,
	}
}

func TestGenerationRepository_AppendAndListRecent(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenerationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, testRecord("a", "2025-06-15T10:30:01Z")))
	require.NoError(t, repo.Append(ctx, testRecord("b", "2025-06-15T10:30:02Z")))
	require.NoError(t, repo.Append(ctx, testRecord("c", "2025-06-15T10:30:03Z")))

	records, err := repo.ListRecent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "a", records[2].ID)

	got := records[0]
	assert.Equal(t, "desc for c", got.Description)
	assert.Equal(t, "auto", got.Provider)
	assert.Equal(t, "spreadsheet_20250615_103045.xlsx", got.Filename)
	assert.Equal(t, int64(24567), got.SizeBytes)
	assert.Equal(t, "2025-06-15T10:30:03Z", got.CreatedAt)
}

func TestGenerationRepository_ListRecentLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenerationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		ts := fmt.Sprintf("2025-06-15T10:30:%02dZ", i)
		require.NoError(t, repo.Append(ctx, testRecord(fmt.Sprintf("rec-%d", i), ts)))
	}

	records, err := repo.ListRecent(ctx, 4)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "rec-9", records[0].ID)
	assert.Equal(t, "rec-6", records[3].ID)
}

func TestGenerationRepository_TiedTimestampsUseInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenerationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	// Second-granularity timestamps collide under load; most recent insert
	// must still list first.
	ts := "2025-06-15T10:30:00Z"
	require.NoError(t, repo.Append(ctx, testRecord("first", ts)))
	require.NoError(t, repo.Append(ctx, testRecord("second", ts)))
	require.NoError(t, repo.Append(ctx, testRecord("third", ts)))

	records, err := repo.ListRecent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].ID)
	assert.Equal(t, "second", records[1].ID)
	assert.Equal(t, "first", records[2].ID)
}

func TestGenerationRepository_ListRecentEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenerationRepository(db.DB, zap.NewNop())

	records, err := repo.ListRecent(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerationRepository_ClosedStoreFails(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenerationRepository(db.DB, zap.NewNop())
	require.NoError(t, db.Close())

	err := repo.Append(context.Background(), testRecord("x", "2025-06-15T10:30:00Z"))
	assert.Error(t, err)

	_, err = repo.ListRecent(context.Background(), 100)
	assert.Error(t, err)
}
