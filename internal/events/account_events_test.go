package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisAccountPublisherDeliversMessage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := client.Subscribe(ctx, "workout.account.updated")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	patronymic := "Ivanovich"
	pub := NewRedisAccountPublisher(client, "workout.account.updated")
	require.NoError(t, pub.PublishAccountUpdated(ctx, UpdateUserMessage{
		UpdationID:  "a7a3a1de-4b7f-4b8e-9f0e-1c0d7c5b9e11",
		FirstName:   "Alice",
		LastName:    "Smith",
		Patronymic:  &patronymic,
		NameChanged: true,
	}))

	select {
	case msg := <-sub.Channel():
		var got UpdateUserMessage
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		require.Equal(t, "Alice", got.FirstName)
		require.Equal(t, "Smith", got.LastName)
		require.NotNil(t, got.Patronymic)
		require.True(t, got.NameChanged)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for account event")
	}
}

func TestRedisAccountPublisherReportsBrokerFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisAccountPublisher(client, "c").PublishAccountUpdated(context.Background(), UpdateUserMessage{UpdationID: "x"})
	require.Error(t, err)
}

func TestLogAccountPublisherNeverFails(t *testing.T) {
	pub := NewLogAccountPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, pub.PublishAccountUpdated(context.Background(), UpdateUserMessage{UpdationID: "x"}))
}
