// Package notifications delivers live post notifications to followers over Redis and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"microblog/internal/middleware"
	"microblog/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix  = "notifications:user:"
	userChannelPattern = userChannelPrefix + "*"
)

// EventNewPost is the event type sent when someone a user follows posts.
const EventNewPost = "new_post"

// Event is the JSON envelope written to websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// UserChannel returns the Redis channel carrying notifications for userID.
func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userChannelPrefix, userID)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishPost sends post to each follower's channel as a new_post event.
func (n *Notifier) PublishPost(ctx context.Context, post *models.Post, followerIDs []uint) error {
	if n.rdb == nil || len(followerIDs) == 0 {
		return nil
	}
	payload, err := json.Marshal(Event{Type: EventNewPost, Payload: post})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	pipe := n.rdb.Pipeline()
	for _, id := range followerIDs {
		pipe.Publish(ctx, UserChannel(id), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish post %d: %w", post.ID, err)
	}
	return nil
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage for each
// incoming message until ctx is cancelled. It returns once the subscription is active.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
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
