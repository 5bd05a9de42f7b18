package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, s *session.Session) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore(s)
	c, err := New(srv.URL+"/", store)
	require.NoError(t, err)
	return c, store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestLoginStoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{
				Message: "Invalid credentials", Code: models.CodeInvalidCredentials,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-1",
			"user":  map[string]string{"id": "u1", "name": "Ada", "email": in.Email},
		})
	})
	c, store := newTestClient(t, mux, nil)

	_, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "nope"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, models.CodeInvalidCredentials, apiErr.Code)

	s, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, s, "failed login leaves no session")

	sess, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)

	s, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, "Ada", s.User.Name)

	require.NoError(t, c.Logout())
	s, _ = store.Load()
	assert.Nil(t, s)
}

func TestAuthenticatedCallsSendBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Message: "Not authorized, no token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"id": "u1", "name": "Ada"}})
	})
	mux.HandleFunc("PUT /api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]string{"bio": "hi"}, in, "empty fields are omitted")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]string{"id": "u1", "name": "Ada", "bio": "hi"},
		})
	})

	t.Run("without session", func(t *testing.T) {
		c, _ := newTestClient(t, mux, nil)
		_, err := c.Me(context.Background())
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("with session", func(t *testing.T) {
		c, store := newTestClient(t, mux, &session.Session{Token: "tok-1", User: &models.User{ID: "u1"}})
		me, err := c.Me(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Ada", me.Name)

		user, err := c.UpdateProfile(context.Background(), ProfileUpdate{Bio: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "hi", user.Bio)

		s, _ := store.Load()
		assert.Equal(t, "hi", s.User.Bio, "stored user refreshed")
	})
}

func TestPostCalls(t *testing.T) {
	post := map[string]any{
		"id": "p1", "title": "Hello", "content": "World", "author_id": "u1",
		"author": map[string]string{"id": "u1", "name": "Ada"},
		"likes":  []string{}, "tags": []string{"go"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": 1, "data": []any{post}})
	})
	mux.HandleFunc("GET /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Message: "Post not found", Code: models.CodeNotFound})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": post})
	})
	mux.HandleFunc("PUT /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]any{"title": "Edited"}, in)
		edited := map[string]any{}
		for k, v := range post {
			edited[k] = v
		}
		edited["title"] = "Edited"
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": edited})
	})
	mux.HandleFunc("DELETE /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Post removed"})
	})
	mux.HandleFunc("PUT /api/posts/like/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []string{"u2", "u1"}})
	})
	mux.HandleFunc("PUT /api/posts/unlike/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "Post has not yet been liked", Code: models.CodeNotLiked})
	})

	c, _ := newTestClient(t, mux, &session.Session{Token: "tok"})
	ctx := context.Background()

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Ada", posts[0].Author.Name)
	assert.Equal(t, models.Tags{"go"}, posts[0].Tags)

	got, err := c.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)

	_, err = c.GetPost(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	title := "Edited"
	edited, err := c.UpdatePost(ctx, "p1", PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Edited", edited.Title)

	likes, err := c.LikePost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, likes)

	_, err = c.UnlikePost(ctx, "p1")
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Contains(t, err.Error(), "Post has not yet been liked")

	assert.NoError(t, c.DeletePost(ctx, "p1"))
}

func TestNonJSONErrorBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	c, _ := newTestClient(t, h, nil)

	_, err := c.ListPosts(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c, _ := newTestClient(t, h, nil)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ListPosts(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestWatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ws/feed" || r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Message: "Not authorized, no token"})
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"post_deleted","payload":{"id":"p1"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"post_likes_updated","payload":{"id":"p2","likes":["u1"]}}`))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	})

	t.Run("delivers events until close", func(t *testing.T) {
		c, _ := newTestClient(t, h, &session.Session{Token: "tok"})
		var events []models.FeedEvent
		err := c.Watch(context.Background(), func(e models.FeedEvent) { events = append(events, e) })
		require.NoError(t, err)
		require.Len(t, events, 2)

		var ref models.PostRef
		require.NoError(t, DecodePayload(events[0], &ref))
		assert.Equal(t, "p1", ref.ID)

		var change models.LikesChange
		require.NoError(t, DecodePayload(events[1], &change))
		assert.Equal(t, []string{"u1"}, change.Likes)
	})

	t.Run("rejected handshake", func(t *testing.T) {
		c, _ := newTestClient(t, h, &session.Session{Token: "wrong"})
		err := c.Watch(context.Background(), func(models.FeedEvent) {})
		assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
		assert.True(t, strings.Contains(err.Error(), "Not authorized"))
	})
}
