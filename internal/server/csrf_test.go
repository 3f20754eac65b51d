package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRF(t *testing.T) {
	cfg := testConfig(t)
	cfg.CSRFEnabled = true
	s, db := newTestServer(t, cfg)
	alice := testutil.CreateUser(t, db, "alice")
	auth := bearer(t, s, alice.ID)

	t.Run("post without token is refused", func(t *testing.T) {
		status, resp := do(t, s, formRequest(http.MethodPost, "/stories/create",
			url.Values{"title": {"Hello"}, "text": {"World"}}), auth)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", resp["code"])
	})

	t.Run("form token round trip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stories/create", nil)
		req.Header.Set("Authorization", auth)
		resp, err := s.App().Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var token string
		for _, c := range resp.Cookies() {
			if c.Name == csrfCookieName {
				token = c.Value
			}
		}
		require.NotEmpty(t, token)

		post := httptest.NewRequest(http.MethodPost, "/stories/create",
			strings.NewReader(url.Values{"title": {"Hello"}, "text": {"World"}, csrfFormField: {token}}.Encode()))
		post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		post.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})

		status, body := do(t, s, post, auth)
		assert.Equal(t, http.StatusCreated, status, body)
	})
}
