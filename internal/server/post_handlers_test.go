package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Like(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Unlike(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Likes(ctx context.Context, postID string) ([]string, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

const mockUserID = "0b0d5bd6-8f2c-4c38-9e5e-6d1c3a7e2a11"

func TestCreatePost(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := &Server{postRepo: mockRepo}

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", mockUserID)
		return c.Next()
	})
	app.Post("/posts", s.CreatePost)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"title":   "New Post",
				"content": "Hello world",
			},
			mockSetup: func() {
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
					return p.AuthorID == mockUserID && p.Title == "New Post"
				})).Return(nil).Once()
				mockRepo.On("GetByID", mock.Anything, mock.Anything).
					Return(&models.Post{ID: "p1", Title: "New Post", AuthorID: mockUserID}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"title": "",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Repository Failure",
			body: map[string]string{
				"title":   "Boom",
				"content": "Hello world",
			},
			mockSetup: func() {
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
	mockRepo.AssertExpectations(t)
}

func TestLikePostHandler(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := &Server{postRepo: mockRepo}

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", mockUserID)
		return c.Next()
	})
	app.Put("/posts/like/:id", s.LikePost)

	mockRepo.On("GetByID", mock.Anything, "p1").Return(&models.Post{ID: "p1"}, nil)
	mockRepo.On("Like", mock.Anything, "p1", mockUserID).Return(true, nil).Once()
	mockRepo.On("Likes", mock.Anything, "p1").Return([]string{mockUserID}, nil).Once()
	mockRepo.On("Like", mock.Anything, "p1", mockUserID).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/posts/like/p1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	assert.True(t, body.Success)
	assert.Equal(t, []string{mockUserID}, body.Data)

	req = httptest.NewRequest(http.MethodPut, "/posts/like/p1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	mockRepo.AssertExpectations(t)
}

func TestPostLifecycle(t *testing.T) {
	_, app := newTestApp(t)
	aliceToken, aliceID := registerUser(t, app, "Alice", "alice@example.com")
	bobToken, bobID := registerUser(t, app, "Bob", "bob@example.com")

	post := createPost(t, app, aliceToken, "First")
	postID := post["id"].(string)
	assert.Equal(t, []any{"go", "blog"}, post["tags"])
	assert.Equal(t, []any{}, post["likes"])
	author := post["author"].(map[string]any)
	assert.Equal(t, aliceID, author["id"])
	assert.Equal(t, "Alice", author["name"])

	t.Run("public list and get", func(t *testing.T) {
		createPost(t, app, bobToken, "Second")

		res := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, true, res.Body["success"])
		assert.EqualValues(t, 2, res.Body["count"])
		data := res.Body["data"].([]any)
		assert.Equal(t, "Second", data[0].(map[string]any)["title"])

		res = doJSON(t, app, http.MethodGet, "/api/posts/"+postID, "", nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "First", res.Body["data"].(map[string]any)["title"])
	})

	t.Run("unknown and malformed ids are not found", func(t *testing.T) {
		for _, id := range []string{"not-a-uuid", "6f1c2a30-0000-4000-8000-000000000000"} {
			res := doJSON(t, app, http.MethodGet, "/api/posts/"+id, "", nil)
			assert.Equal(t, http.StatusNotFound, res.Status, id)
			assert.Equal(t, "NOT_FOUND", res.Body["code"])
		}
	})

	t.Run("create requires auth", func(t *testing.T) {
		res := doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]string{
			"title": "x", "content": "y",
		})
		assert.Equal(t, http.StatusUnauthorized, res.Status)
	})

	t.Run("only the author may update", func(t *testing.T) {
		res := doJSON(t, app, http.MethodPut, "/api/posts/"+postID, bobToken, map[string]string{
			"title": "Hijacked",
		})
		assert.Equal(t, http.StatusForbidden, res.Status)
		assert.Equal(t, "User not authorized", res.Body["message"])

		res = doJSON(t, app, http.MethodPut, "/api/posts/"+postID, aliceToken, map[string]string{
			"title": "First, edited",
		})
		require.Equal(t, http.StatusOK, res.Status)
		data := res.Body["data"].(map[string]any)
		assert.Equal(t, "First, edited", data["title"])
		assert.Equal(t, "Body of First", data["content"])
		assert.Equal(t, aliceID, data["author"].(map[string]any)["id"])
	})

	t.Run("update validates merged fields", func(t *testing.T) {
		res := doJSON(t, app, http.MethodPut, "/api/posts/"+postID, aliceToken, map[string]string{
			"content": "",
		})
		assert.Equal(t, http.StatusBadRequest, res.Status)
	})

	t.Run("like and unlike", func(t *testing.T) {
		res := doJSON(t, app, http.MethodPut, "/api/posts/like/"+postID, bobToken, nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, []any{bobID}, res.Body["data"])

		res = doJSON(t, app, http.MethodPut, "/api/posts/like/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Equal(t, "Post already liked", res.Body["message"])

		res = doJSON(t, app, http.MethodPut, "/api/posts/like/"+postID, aliceToken, nil)
		require.Equal(t, http.StatusOK, res.Status)
		likes := res.Body["data"].([]any)
		require.Len(t, likes, 2)
		assert.ElementsMatch(t, []any{aliceID, bobID}, likes)

		res = doJSON(t, app, http.MethodPut, "/api/posts/unlike/"+postID, bobToken, nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, []any{aliceID}, res.Body["data"])

		res = doJSON(t, app, http.MethodPut, "/api/posts/unlike/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Equal(t, "Post has not yet been liked", res.Body["message"])
	})

	t.Run("delete", func(t *testing.T) {
		res := doJSON(t, app, http.MethodDelete, "/api/posts/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, res.Status)

		res = doJSON(t, app, http.MethodDelete, "/api/posts/"+postID, aliceToken, nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "Post removed", res.Body["message"])

		res = doJSON(t, app, http.MethodGet, "/api/posts/"+postID, "", nil)
		assert.Equal(t, http.StatusNotFound, res.Status)

		res = doJSON(t, app, http.MethodDelete, "/api/posts/"+postID, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, res.Status)
	})
}
