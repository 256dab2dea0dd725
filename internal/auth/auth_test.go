package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devconnect/backend/internal/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*db.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*db.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *db.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return db.ErrEmailExists
	}
	u := *user
	s.users[user.Email] = &u
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			u := *user
			return &u, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (s *fakeUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func TestRegisterIssuesResolvableToken(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	token, user, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	stored, err := store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash, "password must be stored hashed")
	assert.True(t, CheckPassword("secret1", stored.PasswordHash))
	assert.NotEmpty(t, stored.Avatar)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	_, _, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "B", "a@x.com", "another1")
	assert.ErrorIs(t, err, db.ErrEmailExists)
	assert.Equal(t, 1, store.count(), "duplicate registration must not create a second record")
}

func TestRegisterMaxLengthPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	password := strings.Repeat("a", 72)
	token, _, err := svc.Register(context.Background(), "A", "a@x.com", password)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	stored, err := store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, CheckPassword(password, stored.PasswordHash))
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	_, user, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	userID, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLoginFailureSymmetry(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	_, _, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)

	_, unknownEmailErr := svc.Login(context.Background(), "nobody@x.com", "secret1")
	_, wrongPasswordErr := svc.Login(context.Background(), "a@x.com", "wrong")

	assert.ErrorIs(t, unknownEmailErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPasswordErr, ErrInvalidCredentials)
	assert.Equal(t, unknownEmailErr, wrongPasswordErr,
		"unknown email and wrong password must be indistinguishable")
}

func TestVerifyIssueRoundtrip(t *testing.T) {
	svc := NewService(newFakeUserStore(), "test-secret")

	id := uuid.New()
	token, err := svc.IssueToken(id)
	require.NoError(t, err)

	got, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewService(newFakeUserStore(), "test-secret")
	svc.tokenTTL = -time.Minute

	token, err := svc.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := NewService(newFakeUserStore(), "test-secret")
	other := NewService(newFakeUserStore(), "other-secret")

	token, err := svc.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash1, err := HashPassword("testpassword123")
	require.NoError(t, err)
	hash2, err := HashPassword("testpassword123")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "hashes must be salted")
	assert.True(t, CheckPassword("testpassword123", hash1))
	assert.True(t, CheckPassword("testpassword123", hash2))
	assert.False(t, CheckPassword("wrongpassword", hash1))
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("malformed stored hash must fail verification, not succeed")
	}
}

func TestValidateRegisterRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			req:     RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"},
			wantErr: false,
		},
		{
			name:    "empty name",
			req:     RegisterRequest{Email: "a@x.com", Password: "secret1"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			req:     RegisterRequest{Name: "A", Email: "notanemail", Password: "secret1"},
			wantErr: true,
		},
		{
			name:    "password too short",
			req:     RegisterRequest{Name: "A", Email: "a@x.com", Password: "short"},
			wantErr: true,
		},
		{
			name:    "password at bcrypt limit",
			req:     RegisterRequest{Name: "A", Email: "a@x.com", Password: strings.Repeat("a", 72)},
			wantErr: false,
		},
		{
			name:    "password over bcrypt limit",
			req:     RegisterRequest{Name: "A", Email: "a@x.com", Password: strings.Repeat("a", 73)},
			wantErr: true,
		},
		{
			name:    "multibyte password over limit in bytes",
			req:     RegisterRequest{Name: "A", Email: "a@x.com", Password: strings.Repeat("ü", 40)},
			wantErr: true,
		},
		{
			name:    "everything missing",
			req:     RegisterRequest{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLoginRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			req:     LoginRequest{Email: "a@x.com", Password: "secret1"},
			wantErr: false,
		},
		{
			name:    "missing email",
			req:     LoginRequest{Password: "secret1"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			req:     LoginRequest{Email: "nope", Password: "secret1"},
			wantErr: true,
		},
		{
			name:    "missing password",
			req:     LoginRequest{Email: "a@x.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
