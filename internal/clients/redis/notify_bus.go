package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

// NotifyMessage is the fan-out payload published when a notification row is
// written. Consumers (websocket gateways, badge counters) subscribe to the
// configured channel; the database row remains the source of truth.
type NotifyMessage struct {
	NotificationID string `json:"notification_id"`
	ForUserID      string `json:"for_user_id"`
	Kind           string `json:"kind"`
	Subject        string `json:"subject"`
	DocumentType   string `json:"document_type,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
}

type NotifyBus interface {
	Publish(ctx context.Context, msg NotifyMessage) error
	StartForwarder(ctx context.Context, onMsg func(m NotifyMessage)) error
	Close() error
}

type notifyBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewNotifyBus(log *logger.Logger) (NotifyBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_NOTIFY_CHANNEL"))
	if ch == "" {
		ch = "notifications"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &notifyBus{
		log:     log.With("service", "RedisNotifyBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *notifyBus) Publish(ctx context.Context, msg NotifyMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis notify bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *notifyBus) StartForwarder(ctx context.Context, onMsg func(m NotifyMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis notify bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var msg NotifyMessage
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					b.log.Warn("dropping malformed notify message", "err", err.Error())
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *notifyBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
