package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishFeed(context.Background(), "payload"))
	assert.NoError(t, n.StartFeedSubscriber(context.Background(), func(string) {
		t.Fatal("must not be called")
	}))
}

func TestEncodeEvent(t *testing.T) {
	t.Parallel()
	raw, err := EncodeEvent(models.EventPostLikesUpdated, map[string]any{"id": "p1", "likes": []string{"u1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"post_likes_updated","payload":{"id":"p1","likes":["u1"]}}`, string(raw))
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 2)
	require.NoError(t, n.StartFeedSubscriber(ctx, func(payload string) {
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishFeed(context.Background(), "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-payloads:
	default:
	}

	require.NoError(t, n.PublishFeed(context.Background(), "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_SubscriberSurvivesPanics(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	require.NoError(t, n.StartFeedSubscriber(ctx, func(payload string) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("bad handler")
		}
	}))

	require.NoError(t, n.PublishFeed(context.Background(), "one"))
	require.NoError(t, n.PublishFeed(context.Background(), "two"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 2
	}, time.Second, 10*time.Millisecond)
}
