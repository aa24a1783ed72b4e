package service

import (
	"context"
	"testing"
	"time"

	"authz/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok || !user.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetActiveByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email && user.IsActive {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeSessionRepo struct {
	sessions []*model.Session
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeSessionRepo) GetActiveByToken(ctx context.Context, token string) (*model.Session, error) {
	for _, session := range f.sessions {
		if session.Token == token && session.IsActive {
			return session, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) Revoke(ctx context.Context, session *model.Session) error {
	session.IsActive = false
	return nil
}

func (f *fakeSessionRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, session := range f.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

type authFixture struct {
	svc      *authService
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	audit    *fakeAuditRepo
	user     *model.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	sessions := &fakeSessionRepo{}
	audit := &fakeAuditRepo{}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Email:        "user@example.com",
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	require.NoError(t, users.Create(context.Background(), user))

	svc := NewAuthService(users, sessions, audit, nil, AuthConfig{
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
	}).(*authService)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	return &authFixture{svc: svc, users: users, sessions: sessions, audit: audit, user: user}
}

func (fx *authFixture) advance(d time.Duration) {
	current := fx.svc.now()
	fx.svc.now = func() time.Time { return current.Add(d) }
}

func TestLoginAndResolve(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, token, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, fx.user.ID, user.ID)
	require.Len(t, fx.sessions.sessions, 1)

	resolved, err := fx.svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, fx.user.ID, resolved.ID)

	require.NotEmpty(t, fx.audit.entries)
	require.Equal(t, model.ActionLogin, fx.audit.entries[0].Action)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := fx.svc.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = fx.svc.Login(ctx, "user@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	fx.user.IsActive = false
	_, _, err = fx.svc.Login(ctx, "user@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveRejectsGarbageTokens(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, token, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)

	for _, bad := range []string{"", "not-a-jwt", token + "x"} {
		user, err := fx.svc.ResolveUser(ctx, bad)
		require.NoError(t, err)
		require.Nil(t, user)
	}
}

func TestLogoutRevokesTheSession(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, token, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)

	revoked, err := fx.svc.Logout(ctx, token)
	require.NoError(t, err)
	require.True(t, revoked)

	user, err := fx.svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, user)

	revoked, err = fx.svc.Logout(ctx, token)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, token, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)

	fx.advance(2 * time.Hour)

	user, err := fx.svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestResolveRejectsExpiredSessionRow(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, token, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)

	// The signed token is still within its embedded lifetime, but the
	// session row expired on its own clock.
	fx.sessions.sessions[0].ExpiresAt = fx.svc.now().Add(-time.Minute)

	user, err := fx.svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestRevokeAllSessionsKillsEveryToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, first, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)

	fx.advance(time.Minute)
	_, second, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, fx.svc.RevokeAllSessions(ctx, fx.user.ID))

	for _, token := range []string{first, second} {
		user, err := fx.svc.ResolveUser(ctx, token)
		require.NoError(t, err)
		require.Nil(t, user)
	}
}

func TestResolveRejectsDeactivatedUser(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, token, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)

	fx.user.IsActive = false

	user, err := fx.svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, user)
}
