package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/udinder/internal/config"
	"github.com/oggyb/udinder/internal/events"
)

func TestPublishDeliversJSONEvent(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	pub, closeFn, err := events.New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	rp, ok := pub.(*events.RedisPublisher)
	require.True(t, ok)

	sub := rp.Client.Subscribe(ctx, events.Channel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, events.Event{Type: events.TypeMatchCreated, UserID: 1, PeerID: 2}))

	select {
	case msg := <-sub.Channel():
		var got events.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, events.TypeMatchCreated, got.Type)
		assert.Equal(t, uint64(1), got.UserID)
		assert.Equal(t, uint64(2), got.PeerID)
		assert.False(t, got.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}
}

func TestNewWithoutRedisIsNop(t *testing.T) {
	pub, closeFn, err := events.New(context.Background(), &config.Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, events.Nop{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), events.Event{Type: events.TypeMessageSent}))
	assert.NoError(t, closeFn())
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{}
	cfg.Redis.Addr = addr

	_, _, err = events.New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestPublishFailureIsReturnedNotLogged(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	var buf bytes.Buffer
	pub := events.NewRedisPublisher(client, slog.New(slog.NewTextHandler(&buf, nil)))

	err = pub.Publish(context.Background(), events.Event{Type: events.TypeMessageSent, UserID: 1})
	assert.Error(t, err)
	// the caller owns the warning
	assert.Empty(t, buf.String())
}
