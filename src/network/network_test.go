package network

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"market-cache/src/helpers"
	"market-cache/src/logger"
	"market-cache/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *NetworkManager {
	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5, UserAgent: "market-cache-test"}}
	return NewNetworkManager(cfg, logger.NewLogger("NetworkTest"))
}

func TestGetSendsParamsAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5y", r.URL.Query().Get("range"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "market-cache-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := newTestManager().Get(t.Context(), srv.URL, map[string]string{"range": "5y"}, map[string]string{"Authorization": "Bearer abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGetNonSuccessIsUpstreamError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	_, err := newTestManager().Get(t.Context(), srv.URL, nil, nil)
	require.Error(t, err)

	var upstream *helpers.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Equal(t, "slow down", upstream.Body)
	assert.Equal(t, 1, calls, "no automatic retry")
}

func TestPostFormReturnsRawStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	status, body, err := newTestManager().PostForm(t.Context(), srv.URL, url.Values{"code": {"the-code"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"invalid_grant"}`, string(body))
}
