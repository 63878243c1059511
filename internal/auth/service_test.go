package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUserStore struct {
	createFunc     func(ctx context.Context, user *User) error
	getByEmailFunc func(ctx context.Context, email string) (*User, error)

	users map[string]*User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return m.users[email], nil
}

func newTestService(store UserStore) *Service {
	svc := NewService(store, "test-secret", zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alex@example.com", "hunter22"))

	stored := store.users["alex@example.com"]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.ID)
	assert.NotEqual(t, "hunter22", stored.PasswordHash, "password must not be stored in the clear")
	assert.Equal(t, "2025-06-15T10:30:00Z", stored.CreatedAt)

	token, err := svc.Login(ctx, "alex@example.com", "hunter22")
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, stored.ID, claims["sub"])
	assert.Equal(t, "alex@example.com", claims["email"])
}

func TestRegisterAndLogin_LongPassword(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	// Well past bcrypt's 72-byte input limit. Registration must still
	// succeed, and login with the same password must verify.
	long := strings.Repeat("p", 100)
	require.NoError(t, svc.Register(ctx, "alex@example.com", long))

	token, err := svc.Login(ctx, "alex@example.com", long)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Only the first 72 bytes are significant, so a password agreeing on
	// that prefix also verifies.
	token, err = svc.Login(ctx, "alex@example.com", strings.Repeat("p", 80))
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(ctx, "alex@example.com", strings.Repeat("q", 100))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alex@example.com", "hunter22"))
	err := svc.Register(ctx, "alex@example.com", "other-password")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_StoreUnavailable(t *testing.T) {
	store := newMockUserStore()
	store.getByEmailFunc = func(ctx context.Context, email string) (*User, error) {
		return nil, errors.New("database is locked")
	}
	svc := newTestService(store)

	err := svc.Register(context.Background(), "alex@example.com", "hunter22")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alex@example.com", "hunter22"))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "hunter22"},
		{name: "wrong password", email: "alex@example.com", password: "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestOAuthLoginURLs(t *testing.T) {
	oauth := NewOAuth(OAuthConfig{
		GoogleClientID:    "google-client",
		MicrosoftClientID: "ms-client",
	})

	google, err := oauth.GoogleLoginURL("http://localhost:8080/api/auth/google/callback")
	require.NoError(t, err)
	assert.Contains(t, google, "https://accounts.google.com/o/oauth2/v2/auth?")
	assert.Contains(t, google, "client_id=google-client")
	assert.Contains(t, google, "response_type=code")
	assert.Contains(t, google, "prompt=consent")

	microsoft, err := oauth.MicrosoftLoginURL("http://localhost:8080/api/auth/microsoft/callback")
	require.NoError(t, err)
	assert.Contains(t, microsoft, "https://login.microsoftonline.com/common/oauth2/v2.0/authorize?")
	assert.Contains(t, microsoft, "client_id=ms-client")
	assert.Contains(t, microsoft, "response_mode=query")
}

func TestOAuthLoginURLs_NotConfigured(t *testing.T) {
	oauth := NewOAuth(OAuthConfig{})

	_, err := oauth.GoogleLoginURL("http://localhost/cb")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)

	_, err = oauth.MicrosoftLoginURL("http://localhost/cb")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)
}
