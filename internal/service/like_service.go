package service

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

type LikeService struct {
	likeRepo  repository.LikeRepository
	storyRepo repository.StoryRepository
}

// ToggleResult is the like state after a toggle.
type ToggleResult struct {
	StoryID uint  `json:"story_id"`
	Liked   bool  `json:"liked"`
	Likes   int64 `json:"likes"`
}

func NewLikeService(likeRepo repository.LikeRepository, storyRepo repository.StoryRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, storyRepo: storyRepo}
}

// ToggleLike likes the story if the user has not, otherwise unlikes it.
// Likes is the persisted count after the toggle.
func (s *LikeService) ToggleLike(ctx context.Context, storyID, userID uint) (*ToggleResult, error) {
	if err := Authorize(userID, 0, AnyAuthenticated); err != nil {
		return nil, err
	}
	if _, err := s.storyRepo.GetByID(ctx, storyID); err != nil {
		return nil, err
	}

	liked, count, err := s.likeRepo.Toggle(ctx, storyID, userID)
	if err != nil {
		// the story was deleted after the existence check
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, models.NewNotFoundError("Story", storyID)
		}
		return nil, models.NewInternalError(err)
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	observability.LikeToggles.WithLabelValues(action).Inc()
	cache.InvalidateStory(ctx, storyID)

	return &ToggleResult{StoryID: storyID, Liked: liked, Likes: count}, nil
}

// CountLikes returns the number of likes on a story.
func (s *LikeService) CountLikes(ctx context.Context, storyID uint) (int64, error) {
	count, err := s.likeRepo.Count(ctx, storyID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
