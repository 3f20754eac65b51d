// Package notifications publishes story activity events over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Event types published on a story channel.
const (
	EventStoryLiked     = "story_liked"
	EventStoryUnliked   = "story_unliked"
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

// Event is the JSON payload published for story activity.
type Event struct {
	Type      string    `json:"type"`
	StoryID   uint      `json:"story_id"`
	UserID    uint      `json:"user_id"`
	CommentID uint      `json:"comment_id,omitempty"`
	Likes     *int64    `json:"likes,omitempty"`
	At        time.Time `json:"at"`
}

// StoryChannel is the pub/sub channel for a story's events.
func StoryChannel(storyID uint) string {
	return fmt.Sprintf("events:story:%d", storyID)
}

const storyChannelPattern = "events:story:*"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishStoryEvent sends ev to the story's channel.
func (n *Notifier) PublishStoryEvent(ctx context.Context, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, StoryChannel(ev.StoryID), payload).Err()
}

// StartStorySubscriber subscribes to every story channel and calls onEvent for
// each decodable message until ctx is cancelled.
func (n *Notifier) StartStorySubscriber(ctx context.Context, onEvent func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, storyChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", storyChannelPattern, err)
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
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed story event", "channel", msg.Channel, "error", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in story subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
