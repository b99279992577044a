package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/sandeepkv93/workout-auth-service/internal/observability"
)

// UpdateUserMessage announces a changed account so downstream services can
// refresh their copy of the user's display name.
type UpdateUserMessage struct {
	UpdationID  string  `json:"updationId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Patronymic  *string `json:"patronymic,omitempty"`
	NameChanged bool    `json:"nameChanged"`
}

type AccountPublisher interface {
	PublishAccountUpdated(ctx context.Context, msg UpdateUserMessage) error
}

type RedisAccountPublisher struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisAccountPublisher(client redis.UniversalClient, channel string) *RedisAccountPublisher {
	return &RedisAccountPublisher{client: client, channel: channel}
}

func (p *RedisAccountPublisher) PublishAccountUpdated(ctx context.Context, msg UpdateUserMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return oops.Code("EVENT_ENCODE").With("account_id", msg.UpdationID).Wrap(err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		observability.RecordAccountEventPublished(ctx, "redis", "error")
		return oops.Code("EVENT_PUBLISH").With("channel", p.channel).With("account_id", msg.UpdationID).Wrap(err)
	}
	observability.RecordAccountEventPublished(ctx, "redis", "success")
	return nil
}

// LogAccountPublisher stands in for the broker when redis is disabled.
type LogAccountPublisher struct {
	logger *slog.Logger
}

func NewLogAccountPublisher(logger *slog.Logger) *LogAccountPublisher {
	return &LogAccountPublisher{logger: logger}
}

func (p *LogAccountPublisher) PublishAccountUpdated(ctx context.Context, msg UpdateUserMessage) error {
	p.logger.InfoContext(ctx, "account updated",
		"account_id", msg.UpdationID,
		"name_changed", msg.NameChanged,
	)
	observability.RecordAccountEventPublished(ctx, "log", "success")
	return nil
}
