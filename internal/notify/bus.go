package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// Bus routes an event to the process holding the user's sessions.
type Bus interface {
	Publish(ctx context.Context, userID string, ev Event) error
	Close() error
}

// LocalBus delivers straight into this process's registry.
type LocalBus struct{ reg *Registry }

func NewLocalBus(reg *Registry) *LocalBus { return &LocalBus{reg: reg} }

func (b *LocalBus) Publish(_ context.Context, userID string, ev Event) error {
	b.reg.Deliver(userID, ev)
	return nil
}

func (b *LocalBus) Close() error { return nil }

func deliverRaw(reg *Registry, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("drop malformed notification", zap.Error(err))
		return
	}
	reg.Deliver(env.UserID, env.Event)
}

// RedisBus publishes on a redis channel that every process subscribes to.
type RedisBus struct {
	client  *redis.Client
	channel string
	sub     *redis.PubSub
}

// NewRedisBus subscribes to channel and starts forwarding messages into reg.
// It returns once the subscription is confirmed.
func NewRedisBus(ctx context.Context, client *redis.Client, channel string, reg *Registry) (*RedisBus, error) {
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	go func() {
		for msg := range sub.Channel() {
			deliverRaw(reg, []byte(msg.Payload))
		}
	}()
	return &RedisBus{client: client, channel: channel, sub: sub}, nil
}

func (b *RedisBus) Publish(ctx context.Context, userID string, ev Event) error {
	payload, err := json.Marshal(envelope{UserID: userID, Event: ev})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Close() error { return b.sub.Close() }

// NATSBus publishes on a NATS subject that every process subscribes to.
type NATSBus struct {
	conn    *nats.Conn
	subject string
	sub     *nats.Subscription
}

func NewNATSBus(conn *nats.Conn, subject string, reg *Registry) (*NATSBus, error) {
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		deliverRaw(reg, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return &NATSBus{conn: conn, subject: subject, sub: sub}, nil
}

func (b *NATSBus) Publish(_ context.Context, userID string, ev Event) error {
	payload, err := json.Marshal(envelope{UserID: userID, Event: ev})
	if err != nil {
		return err
	}
	return b.conn.Publish(b.subject, payload)
}

func (b *NATSBus) Close() error {
	if err := b.sub.Unsubscribe(); err != nil {
		return err
	}
	return b.conn.Drain()
}
