package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	tok, exp, err := Sign("s3cret", "runner", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	sub, err := Verify("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "runner", sub)

	_, err = Verify("other", tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSign_DefaultTTLAndMalformed(t *testing.T) {
	tok, _, err := Sign("s3cret", "runner", -time.Hour)
	require.NoError(t, err)
	// non-positive ttl falls back to the default, so the token is still valid
	_, err = Verify("s3cret", tok)
	require.NoError(t, err)

	_, err = Verify("s3cret", "not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequire(t *testing.T) {
	var seen string
	h := Require("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Subject(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _, err := Sign("s3cret", "runner", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "runner", seen)
}

func TestRequire_DisabledWithoutSecret(t *testing.T) {
	h := Require("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
