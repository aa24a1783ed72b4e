package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubTx runs the closure without a real transaction.
type stubTx struct{}

func (stubTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	users := newFakeUserRepo()
	rbac := newFakeRBACRepo()
	audit := &fakeAuditRepo{}
	defaultRole := rbac.addRole(DefaultRoleName)

	svc := NewUserService(users, rbac, audit, nil, stubTx{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", resp.Email)
	require.True(t, resp.IsActive)

	stored, err := users.GetActiveByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))

	require.Len(t, rbac.assignments, 1)
	require.Equal(t, stored.ID, rbac.assignments[0].UserID)
	require.Equal(t, defaultRole.ID, rbac.assignments[0].RoleID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	rbac := newFakeRBACRepo()
	rbac.addRole(DefaultRoleName)

	svc := NewUserService(users, rbac, nil, nil, stubTx{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email: "dup@example.com", Password: "secret123", FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{
		Email: "dup@example.com", Password: "other456", FirstName: "C", LastName: "D",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegisterSurvivesMissingDefaultRole(t *testing.T) {
	users := newFakeUserRepo()
	rbac := newFakeRBACRepo()

	svc := NewUserService(users, rbac, nil, nil, stubTx{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email: "roleless@example.com", Password: "secret123", FirstName: "No", LastName: "Role",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Empty(t, rbac.assignments)
}

func TestUpdateProfilePartialAndPassword(t *testing.T) {
	fx := newAuthFixture(t)
	svc := NewUserService(fx.users, newFakeRBACRepo(), nil, fx.svc, stubTx{})
	ctx := context.Background()

	resp, err := svc.UpdateProfile(ctx, fx.user, UpdateProfileRequest{
		FirstName: "Renamed",
		Password:  "newsecret1",
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", resp.FirstName)
	require.Equal(t, "User", resp.LastName)

	_, _, err = fx.svc.Login(ctx, "user@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = fx.svc.Login(ctx, "user@example.com", "newsecret1")
	require.NoError(t, err)
}

func TestDeactivateRevokesAllSessions(t *testing.T) {
	fx := newAuthFixture(t)
	svc := NewUserService(fx.users, newFakeRBACRepo(), fx.audit, fx.svc, stubTx{})
	ctx := context.Background()

	_, token, err := fx.svc.Login(ctx, "user@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, fx.user))
	require.False(t, fx.user.IsActive)

	resolved, err := fx.svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, resolved)

	_, _, err = fx.svc.Login(ctx, "user@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
