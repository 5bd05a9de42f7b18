package server

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/notifications"
	"inkwell/internal/observability"
)

// publishFeedEvent fans an event out to live feed subscribers. With Redis the
// event goes through pub/sub so every instance (this one included) delivers
// it once; without Redis the local hub delivers it directly.
func (s *Server) publishFeedEvent(eventType string, payload any) {
	msg, err := notifications.EncodeEvent(eventType, payload)
	if err != nil {
		middleware.Logger.Error("failed to encode feed event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()

	if s.notifier.Enabled() {
		err := s.notifier.PublishFeed(context.Background(), string(msg))
		if err == nil {
			return
		}
		middleware.Logger.Warn("feed publish failed, delivering locally",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}
	if s.hub != nil {
		s.hub.BroadcastAll(string(msg))
	}
}
