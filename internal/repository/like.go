package repository

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for story likes.
type LikeRepository interface {
	// Toggle flips the (story, user) like and returns the new state and story like count.
	Toggle(ctx context.Context, storyID, userID uint) (liked bool, count int64, err error)
	Count(ctx context.Context, storyID uint) (int64, error)
	IsLiked(ctx context.Context, storyID, userID uint) (bool, error)
	ListByStory(ctx context.Context, storyID uint) ([]models.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle runs delete-or-insert and the count in one transaction. The unique
// index on (user_id, story_id) keeps concurrent toggles to at most one row.
func (r *likeRepository) Toggle(ctx context.Context, storyID, userID uint) (liked bool, count int64, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Toggle", "likes")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("toggle", "likes")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("story_id = ? AND user_id = ?", storyID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}

		liked = false
		if res.RowsAffected == 0 {
			like := &models.Like{StoryID: storyID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
				return translateWriteError(err)
			}
			liked = true
		}

		return tx.Model(&models.Like{}).Where("story_id = ?", storyID).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (r *likeRepository) Count(ctx context.Context, storyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("story_id = ?", storyID).Count(&count).Error
	return count, err
}

func (r *likeRepository) IsLiked(ctx context.Context, storyID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("story_id = ? AND user_id = ?", storyID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) ListByStory(ctx context.Context, storyID uint) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).Where("story_id = ?", storyID).Order("id asc").Find(&likes).Error
	return likes, err
}
