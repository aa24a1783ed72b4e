package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"authz/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	users map[string]*model.User
	err   error
}

func (s *stubResolver) ResolveUser(ctx context.Context, token string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[token], nil
}

type stubRoles struct {
	admins map[uuid.UUID]bool
	err    error
}

func (s *stubRoles) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return roleName == model.AdminRoleName && s.admins[userID], nil
}

func newTestRouter(resolver *stubResolver, roles *stubRoles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identify(resolver))

	router.GET("/open", func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Email)
	})
	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})
	router.GET("/admin", RequireAdmin(roles), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]string{
		"":                "",
		"Bearer abc":      "abc",
		"bearer abc":      "",
		"Basic dXNlcg==":  "",
		"Bearer":          "",
		"Bearer a b":      "a b",
		"Bearer  leading": " leading",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		require.Equal(t, want, BearerToken(c), "header %q", header)
	}
}

func TestIdentifyAttachesUser(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "user@example.com", IsActive: true}
	resolver := &stubResolver{users: map[string]*model.User{"good-token": user}}
	router := newTestRouter(resolver, &stubRoles{})

	w := doRequest(router, "/open", "good-token")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user@example.com", w.Body.String())

	w = doRequest(router, "/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "anonymous", w.Body.String())

	w = doRequest(router, "/open", "worthless-token")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "anonymous", w.Body.String())
}

func TestIdentifyAbortsOnStoreFault(t *testing.T) {
	resolver := &stubResolver{err: errors.New("db down")}
	router := newTestRouter(resolver, &stubRoles{})

	w := doRequest(router, "/open", "any-token")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAuth(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "user@example.com", IsActive: true}
	resolver := &stubResolver{users: map[string]*model.User{"good-token": user}}
	router := newTestRouter(resolver, &stubRoles{})

	w := doRequest(router, "/private", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "/private", "worthless-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "/private", "good-token")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Email: "admin@example.com", IsActive: true}
	member := &model.User{ID: uuid.New(), Email: "member@example.com", IsActive: true}
	resolver := &stubResolver{users: map[string]*model.User{
		"admin-token":  admin,
		"member-token": member,
	}}
	roles := &stubRoles{admins: map[uuid.UUID]bool{admin.ID: true}}
	router := newTestRouter(resolver, roles)

	w := doRequest(router, "/admin", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "/admin", "member-token")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, "/admin", "admin-token")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminStoreFault(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Email: "admin@example.com", IsActive: true}
	resolver := &stubResolver{users: map[string]*model.User{"admin-token": admin}}
	roles := &stubRoles{err: errors.New("db down")}
	router := newTestRouter(resolver, roles)

	w := doRequest(router, "/admin", "admin-token")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
