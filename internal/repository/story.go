package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryRepository defines persistence operations for stories.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uint) (*models.Story, error)
	GetDetail(ctx context.Context, id uint) (*models.Story, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Story, error)
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id uint) error
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new StoryRepository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(story).Error
	return translateWriteError(err)
}

// GetByID loads the bare story row.
func (r *storyRepository) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", id)
		}
		return nil, err
	}
	return &story, nil
}

// GetDetail loads the story with its author and category.
func (r *storyRepository) GetDetail(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		First(&story, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", id)
		}
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Story, error) {
	var stories []*models.Story
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&stories).Error
	return stories, err
}

// Update writes every column, so a nil CategoryID clears the category.
func (r *storyRepository) Update(ctx context.Context, story *models.Story) error {
	res := r.db.WithContext(ctx).
		Model(&models.Story{ID: story.ID}).
		Select("title", "text", "category_id", "image_url", "updated_at").
		Updates(story)
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Story", story.ID)
	}
	return nil
}

// Delete removes the story with its comments and likes in one transaction.
func (r *storyRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Delete", "stories")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("delete", "stories")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Story{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Story", id)
		}
		return nil
	})
}
