package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/service"
	"inkwell/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

func testConfig() *config.Config {
	return &config.Config{
		Port:        "0",
		Env:         "test",
		JWTSecret:   testSecret,
		JWTTTLHours: 1,
		DBDriver:    "sqlite",
	}
}

// newTestApp wires a full server against in-memory sqlite and miniredis.
func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewSQLiteDB(t)
	_, rdb := testutil.NewRedis(t)

	s, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	s.authService = service.NewAuthService(s.userRepo, s.tokens).WithBcryptCost(bcrypt.MinCost)
	return s, s.NewApp()
}

type apiResponse struct {
	Status int
	Body   map[string]any
	Raw    []byte
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := apiResponse{Status: resp.StatusCode, Raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

// registerUser creates an account and returns its token and id.
func registerUser(t *testing.T, app *fiber.App, name, email string) (string, string) {
	t.Helper()

	res := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))

	token, _ := res.Body["token"].(string)
	user, _ := res.Body["user"].(map[string]any)
	id, _ := user["id"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, id)
	return token, id
}

func createPost(t *testing.T, app *fiber.App, token, title string) map[string]any {
	t.Helper()

	res := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
		"title":   title,
		"content": "Body of " + title,
		"tags":    []string{"go", " go ", "blog"},
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	data, _ := res.Body["data"].(map[string]any)
	require.NotNil(t, data)
	return data
}
