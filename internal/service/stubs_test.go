package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/storage"

	"github.com/stretchr/testify/require"
)

// storyRepoStub is a stub for repository.StoryRepository.
type storyRepoStub struct {
	createFn     func(context.Context, *models.Story) error
	getByIDFn    func(context.Context, uint) (*models.Story, error)
	getDetailFn  func(context.Context, uint) (*models.Story, error)
	listByUserFn func(context.Context, uint) ([]*models.Story, error)
	updateFn     func(context.Context, *models.Story) error
	deleteFn     func(context.Context, uint) error
}

func (s *storyRepoStub) Create(ctx context.Context, story *models.Story) error {
	return s.createFn(ctx, story)
}
func (s *storyRepoStub) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	return s.getByIDFn(ctx, id)
}
func (s *storyRepoStub) GetDetail(ctx context.Context, id uint) (*models.Story, error) {
	return s.getDetailFn(ctx, id)
}
func (s *storyRepoStub) ListByUser(ctx context.Context, userID uint) ([]*models.Story, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *storyRepoStub) Update(ctx context.Context, story *models.Story) error {
	return s.updateFn(ctx, story)
}
func (s *storyRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopStoryRepo() *storyRepoStub {
	return &storyRepoStub{
		createFn:     func(_ context.Context, s *models.Story) error { s.ID = 1; return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Story, error) { return &models.Story{ID: id, UserID: 1}, nil },
		getDetailFn:  func(_ context.Context, id uint) (*models.Story, error) { return &models.Story{ID: id, UserID: 1}, nil },
		listByUserFn: func(_ context.Context, _ uint) ([]*models.Story, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Story) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByStoryFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn      func(context.Context, *models.Comment) error
	deleteFn      func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByStory(ctx context.Context, storyID uint) ([]*models.Comment, error) {
	return s.listByStoryFn(ctx, storyID)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error { c.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, StoryID: 1, UserID: 1, Text: "original"}, nil
		},
		listByStoryFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn      func(context.Context, uint, uint) (bool, int64, error)
	countFn       func(context.Context, uint) (int64, error)
	isLikedFn     func(context.Context, uint, uint) (bool, error)
	listByStoryFn func(context.Context, uint) ([]models.Like, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, storyID, userID uint) (bool, int64, error) {
	return s.toggleFn(ctx, storyID, userID)
}
func (s *likeRepoStub) Count(ctx context.Context, storyID uint) (int64, error) {
	return s.countFn(ctx, storyID)
}
func (s *likeRepoStub) IsLiked(ctx context.Context, storyID, userID uint) (bool, error) {
	return s.isLikedFn(ctx, storyID, userID)
}
func (s *likeRepoStub) ListByStory(ctx context.Context, storyID uint) ([]models.Like, error) {
	return s.listByStoryFn(ctx, storyID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		toggleFn:      func(_ context.Context, _, _ uint) (bool, int64, error) { return true, 1, nil },
		countFn:       func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		isLikedFn:     func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		listByStoryFn: func(_ context.Context, _ uint) ([]models.Like, error) { return nil, nil },
	}
}

// imageStoreStub records saves and removals.
type imageStoreStub struct {
	saved   []storage.ImageUpload
	removed []string
	err     error
}

func (s *imageStoreStub) Save(_ context.Context, upload storage.ImageUpload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, upload)
	return "/images/" + upload.Filename, nil
}

var errDB = errors.New("db down")

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
}

func (s *imageStoreStub) Remove(_ context.Context, url string) error {
	s.removed = append(s.removed, url)
	return nil
}
