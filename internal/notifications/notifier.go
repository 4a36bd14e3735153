package notifications

import (
	"context"
	"encoding/json"
	"runtime/debug"

	"relay/internal/middleware"
	"relay/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	broadcastChannel  = "notifications:broadcast"
)

// Notifier publishes notifications into Redis channels. A nil Redis client
// makes every publish a no-op, so the API keeps working without a live stream.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish serializes a stored notification and pushes it to the owner's
// channel. It satisfies service.NotificationPublisher.
func (n *Notifier) Publish(ctx context.Context, notification *models.Notification) error {
	if n.rdb == nil {
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, UserChannel(notification.UserID), string(payload)).Err(); err != nil {
		return err
	}

	middleware.NotificationsPublished.Inc()
	return nil
}

// PublishBroadcast sends a payload to every connected user.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// StartSubscriber subscribes to the notification channels and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uuid.UUID) string {
	return userChannelPrefix + userID.String()
}
