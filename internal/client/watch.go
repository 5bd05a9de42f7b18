package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"inkwell/internal/models"

	"github.com/gorilla/websocket"
)

// Watch streams live feed events to onEvent until ctx is cancelled or the
// server closes the connection. Cancellation returns nil.
func (c *Client) Watch(ctx context.Context, onEvent func(models.FeedEvent)) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/api/ws/feed"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil {
			return decodeError(resp)
		}
		return fmt.Errorf("dial feed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read feed: %w", err)
		}

		var event models.FeedEvent
		if err := json.Unmarshal(msg, &event); err != nil || event.Type == "" {
			continue
		}
		onEvent(event)
	}
}

// DecodePayload unmarshals an event payload into dest.
func DecodePayload(event models.FeedEvent, dest any) error {
	if len(event.Payload) == 0 {
		return errors.New("empty event payload")
	}
	return json.Unmarshal(event.Payload, dest)
}
