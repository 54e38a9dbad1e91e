package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roleContext(role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(ContextRole, role)
	}
	return c, rec
}

func TestRequireRoleAllows(t *testing.T) {
	c, rec := roleContext("ADMINISTRATOR")
	h := RequireRole("ADMINISTRATOR")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbids(t *testing.T) {
	for name, role := range map[string]string{
		"wrong role":   "RESIDENT",
		"unknown role": "JANITOR",
		"missing role": "",
	} {
		c, rec := roleContext(role)
		h := RequireRole("ADMINISTRATOR")(func(c echo.Context) error {
			t.Fatalf("%s: handler must not run", name)
			return nil
		})
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusForbidden, rec.Code, name)
	}
}

func TestRequireRoleMultiple(t *testing.T) {
	c, rec := roleContext("RESIDENT")
	h := RequireRole("RESIDENT", "ADMINISTRATOR")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
