package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	mgr := session.NewManager("test-secret-key-12345678901234567890", time.Hour)
	valid, err := mgr.Issue(123)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(Session(mgr))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": CurrentUserID(c)})
	})
	app.Get("/private", SessionRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name           string
		path           string
		authHeader     string
		cookie         string
		expectedStatus int
		expectedUserID uint
	}{
		{"bearer token", "/whoami", "Bearer " + valid, "", http.StatusOK, 123},
		{"cookie token", "/whoami", "", valid, http.StatusOK, 123},
		{"anonymous", "/whoami", "", "", http.StatusOK, 0},
		{"invalid format is anonymous", "/whoami", "Basic dXNlcjpwYXNz", "", http.StatusOK, 0},
		{"invalid token is anonymous", "/whoami", "Bearer nope", "", http.StatusOK, 0},
		{"private with session", "/private", "Bearer " + valid, "", http.StatusOK, 0},
		{"private anonymous", "/private", "", "", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.path == "/whoami" {
				var body map[string]uint
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "UNAUTHENTICATED", body["code"])
				assert.Equal(t, "/login", body["redirect_to"])
			}
		})
	}
}
