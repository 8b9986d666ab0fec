package websocket

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const notifyPattern = "notify:*"

// Bridge relays notification events published on redis into the local hub,
// so a user connected to this instance receives events dispatched by any
// other instance sharing the redis.
type Bridge struct {
	rdb    *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewBridge(rdb *redis.Client, hub *Hub, logger *zap.Logger) *Bridge {
	return &Bridge{rdb: rdb, hub: hub, logger: logger}
}

// Run consumes the subscription until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.rdb.PSubscribe(ctx, notifyPattern)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.relay(msg)
		}
	}
}

func (b *Bridge) relay(msg *redis.Message) {
	raw := strings.TrimPrefix(msg.Channel, "notify:")
	userID, err := uuid.Parse(raw)
	if err != nil {
		b.logger.Warn("unparseable notification channel",
			zap.String("channel", msg.Channel))
		return
	}
	b.hub.SendToUser(userID, []byte(msg.Payload))
}
