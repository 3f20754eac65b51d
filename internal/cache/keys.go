package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	StoryKeyPrefix = "story:%d"
)

const (
	StoryTTL = 5 * time.Minute
)

func StoryKey(storyID uint) string {
	return fmt.Sprintf(StoryKeyPrefix, storyID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateStory drops the cached detail view of a story.
func InvalidateStory(ctx context.Context, storyID uint) {
	Invalidate(ctx, StoryKey(storyID))
}
