package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/laundry-pass-booking/internal/utils"
)

const testSecret = "test-secret"

func authRequest(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/passes/active", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, "anna42", "RESIDENT", 15)
	require.NoError(t, err)

	c, rec := authRequest(t, at.Token)
	called := false
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		called = true
		assert.Equal(t, "anna42", Username(c))
		assert.Equal(t, "RESIDENT", c.Get(ContextRole))
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejects(t *testing.T) {
	wrongSecret, err := utils.NewAccessToken("other-secret", "anna42", "RESIDENT", 15)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken(testSecret, "anna42", "RESIDENT", -5)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing header": "",
		"garbage":        "nonsense",
		"wrong secret":   wrongSecret.Token,
		"expired":        expired.Token,
	} {
		c, rec := authRequest(t, token)
		h := JWTAuth(testSecret)(func(c echo.Context) error {
			t.Fatalf("%s: handler must not run", name)
			return nil
		})
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}
