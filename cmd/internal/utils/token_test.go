package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	raw, err := issuer.Issue(&TokenData{Sub: "sub-1", UserID: "user-1", Email: "ana@example.com", Role: "patient"})
	require.NoError(t, err)

	data, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", data.Sub)
	assert.Equal(t, "user-1", data.UserID)
	assert.Equal(t, "ana@example.com", data.Email)
	assert.Equal(t, "patient", data.Role)
}

func TestTokenIssuer_RejectsForeignSecret(t *testing.T) {
	raw, err := NewTokenIssuer("one", time.Hour).Issue(&TokenData{UserID: "user-1"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).Parse(raw)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := issuer.Issue(&TokenData{UserID: "user-1"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(raw)
	assert.Error(t, err)
}

func TestParseTokenDataCtx(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())

	_, err := ParseTokenDataCtx(c)
	assert.ErrorIs(t, err, ErrMissingTokenData)

	c.Set(TokenDataKey, &TokenData{UserID: "user-1"})
	data, err := ParseTokenDataCtx(c)
	require.NoError(t, err)
	assert.Equal(t, "user-1", data.UserID)
}
