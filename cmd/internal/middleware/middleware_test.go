package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healtogether/cmd/internal/utils"
)

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuth(t *testing.T) {
	issuer := utils.NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(&utils.TokenData{Sub: "sub-1", UserID: "user-1", Email: "a@b.co", Role: "patient"})
	require.NoError(t, err)

	other, err := utils.NewTokenIssuer("other-secret", time.Hour).Issue(&utils.TokenData{UserID: "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lower case scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"missing token", "Bearer ", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"foreign signature", "Bearer " + other, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c, rec := newContext(req)

			var seen *utils.TokenData
			h := Auth(issuer)(func(c echo.Context) error {
				seen, _ = utils.ParseTokenDataCtx(c)
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, h(c))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "user-1", seen.UserID)
				assert.Equal(t, "patient", seen.Role)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, rec.Body.String(), `"code":401`)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "my-custom-id")
	c, rec := newContext(req)

	h := RequestID()(func(c echo.Context) error {
		assert.Equal(t, "my-custom-id", c.Get(RequestIDKey))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, "my-custom-id", rec.Header().Get(echo.HeaderXRequestID))

	c, rec = newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	h = RequestID()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	c, _ := newContext(req)
	c.Set(RequestIDKey, "rid-1")

	h := Logger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})
	require.NoError(t, h(c))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/api/appointments", line["path"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))

	h := Recovery(zerolog.New(&buf))(func(c echo.Context) error {
		panic("boom")
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}
