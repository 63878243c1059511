package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheetgen/server/internal/auth"
)

func TestUserRepository_CreateAndGetByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	user := &auth.User{
		ID:           "user-1",
		Email:        "alex@example.com",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    "2025-06-15T10:30:00Z",
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, "alex@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user, got)
}

func TestUserRepository_GetByEmailMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_DuplicateEmailRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	first := &auth.User{ID: "u1", Email: "dup@example.com", PasswordHash: "h1", CreatedAt: "2025-06-15T10:30:00Z"}
	second := &auth.User{ID: "u2", Email: "dup@example.com", PasswordHash: "h2", CreatedAt: "2025-06-15T10:30:01Z"}

	require.NoError(t, repo.Create(ctx, first))
	assert.Error(t, repo.Create(ctx, second))
}

func TestStatusRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatusRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	checks := []*StatusCheck{
		{ID: "s1", ClientName: "probe-a", Timestamp: "2025-06-15T10:30:00Z"},
		{ID: "s2", ClientName: "probe-b", Timestamp: "2025-06-15T10:30:01Z"},
	}
	for _, check := range checks {
		require.NoError(t, repo.Create(ctx, check))
	}

	got, err := repo.List(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, checks, got)
}
