package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

type stubUsers map[uint]*models.User

func (s stubUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func signToken(t *testing.T, secret string, userID uint, role models.Role, exp time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func runAuth(t *testing.T, users stubUsers, header string, next echo.HandlerFunc) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := JWTAuthMiddleware(testSecret, users)(next)(c)
	return c, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestJWTAuth_ValidTokenStoresClaims(t *testing.T) {
	users := stubUsers{7: {ID: 7, Username: "ada", Role: models.RoleAdmin}}
	// Token says student, the directory says admin.
	tok := signToken(t, testSecret, 7, models.RoleStudent, time.Now().Add(time.Hour))

	called := false
	c, err := runAuth(t, users, "Bearer "+tok, func(c echo.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("next handler was not called")
	}
	claims, ok := c.Get(ClaimsKey).(*models.JwtCustomClaims)
	if !ok || claims.UserID != 7 {
		t.Fatalf("claims not stored: %#v", c.Get(ClaimsKey))
	}
	if claims.Role != models.RoleAdmin {
		t.Fatalf("role = %q, want admin from directory", claims.Role)
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	users := stubUsers{
		1: {ID: 1, Role: models.RoleStudent},
		2: {ID: 2, Role: models.RoleStudent, IsBanned: true},
	}
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad scheme", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", 1, models.RoleStudent, future), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, 1, models.RoleStudent, time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"unknown user", "Bearer " + signToken(t, testSecret, 99, models.RoleStudent, future), http.StatusUnauthorized},
		{"banned user", "Bearer " + signToken(t, testSecret, 2, models.RoleStudent, future), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runAuth(t, users, tc.header, func(echo.Context) error {
				t.Fatal("next should not run")
				return nil
			})
			if got := statusOf(t, err); got != tc.want {
				t.Fatalf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	e := echo.New()
	mw := RequireRoles(models.RoleAdmin)
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := statusOf(t, mw(ok)(c)); got != http.StatusUnauthorized {
		t.Fatalf("no claims: status = %d", got)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ClaimsKey, &models.JwtCustomClaims{UserID: 1, Role: models.RoleFaculty})
	if got := statusOf(t, mw(ok)(c)); got != http.StatusForbidden {
		t.Fatalf("faculty: status = %d", got)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(ClaimsKey, &models.JwtCustomClaims{UserID: 1, Role: models.RoleAdmin})
	if err := mw(ok)(c); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin: code = %d", rec.Code)
	}
}
