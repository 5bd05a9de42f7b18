package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret-key-12345678901234567890", time.Hour)
	users := map[string]*models.User{
		"u-1": {ID: "u-1", Name: "Ada", Email: "ada@example.com"},
	}
	lookup := func(_ context.Context, id string) (*models.User, error) {
		if id == "broken" {
			return nil, models.NewInternalError(errors.New("db down"))
		}
		if u, ok := users[id]; ok {
			return u, nil
		}
		return nil, models.NewNotFoundError("User", id)
	}

	app := fiber.New()
	app.Get("/test", Authenticate(tokens, lookup), func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)
		return c.JSON(fiber.Map{"userID": c.Locals("userID"), "name": user.Name})
	})
	app.Get("/ws", Authenticate(tokens, lookup, AuthOptions{AllowQueryToken: true}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	issue := func(id string) string {
		tok, err := tokens.Issue(id)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name           string
		path           string
		authHeader     string
		expectedStatus int
		expectedUserID string
	}{
		{"Happy Path", "/test", "Bearer " + issue("u-1"), http.StatusOK, "u-1"},
		{"Lower-case scheme", "/test", "bearer " + issue("u-1"), http.StatusOK, "u-1"},
		{"Missing Header", "/test", "", http.StatusUnauthorized, ""},
		{"Invalid Format", "/test", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"Malformed Token", "/test", "Bearer malformed.token.here", http.StatusUnauthorized, ""},
		{"Unknown User", "/test", "Bearer " + issue("ghost"), http.StatusUnauthorized, ""},
		{"Lookup Failure", "/test", "Bearer " + issue("broken"), http.StatusInternalServerError, ""},
		{"Query token rejected by default", "/test?token=" + issue("u-1"), "", http.StatusUnauthorized, ""},
		{"Query token allowed when enabled", "/ws?token=" + issue("u-1"), "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedUserID != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
				assert.Equal(t, "Ada", body["name"])
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.False(t, body.Success)
				assert.Equal(t, models.CodeUnauthorized, body.Code)
			}
		})
	}
}
