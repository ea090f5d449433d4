package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWT(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAcceptsValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u1",
		"role":    "client",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	rec, c := runJWT(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", c.Get("user_id"))
	require.Equal(t, "client", c.Get("role"))
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Token abc", "Bearer "} {
		rec, _ := runJWT(t, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	rec, _ := runJWT(t, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	rec, _ := runJWT(t, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	e := echo.New()
	handler := RequireRoles("admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}
		require.NoError(t, handler(c))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, run("admin"))
	require.Equal(t, http.StatusForbidden, run("client"))
	require.Equal(t, http.StatusForbidden, run(""))
}
