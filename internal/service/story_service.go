package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
	"inkwell/internal/validation"
)

// MsgUnknownCategory is returned when categoryId names no category.
const MsgUnknownCategory = "Please choose an existing category."

type StoryService struct {
	storyRepo   repository.StoryRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	images      storage.ImageStore
}

// StoryDetail is the story page: the story, its comments and like state.
type StoryDetail struct {
	Story     *models.Story     `json:"story"`
	Comments  []*models.Comment `json:"comments"`
	LikeCount int64             `json:"likes"`
	Liked     bool              `json:"liked"`
}

type CreateStoryInput struct {
	UserID     uint
	Title      string
	Text       string
	CategoryID string
	Image      *storage.ImageUpload
}

type UpdateStoryInput struct {
	StoryID    uint
	UserID     uint
	Title      string
	Text       string
	CategoryID string
	Image      *storage.ImageUpload
}

type DeleteStoryInput struct {
	StoryID uint
	UserID  uint
}

func NewStoryService(
	storyRepo repository.StoryRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	images storage.ImageStore,
) *StoryService {
	return &StoryService{
		storyRepo:   storyRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		images:      images,
	}
}

// parseCategoryID returns nil unless raw is a positive integer.
func parseCategoryID(raw string) *uint {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return nil
	}
	v := uint(id)
	return &v
}

// CreateStory persists a new story. On validation failure it returns the
// unsaved draft together with the error so the form can be shown again.
func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	draft := &models.Story{
		UserID:     in.UserID,
		Title:      in.Title,
		Text:       in.Text,
		CategoryID: parseCategoryID(in.CategoryID),
	}

	if err := Authorize(in.UserID, 0, AnyAuthenticated); err != nil {
		return nil, err
	}

	if msgs := validation.Story(in.Title, in.Text); len(msgs) > 0 {
		observability.ValidationFailures.WithLabelValues("story").Inc()
		return draft, models.NewValidationErrors(msgs)
	}

	if err := s.attachImage(ctx, draft, in.Image); err != nil {
		return draft, err
	}

	if err := s.storyRepo.Create(ctx, draft); err != nil {
		s.discardImage(ctx, draft, in.Image, nil)
		return draft, mapStoryWriteError(err)
	}
	return draft, nil
}

// GetStoryDetail returns the story page. The viewer-independent part is
// cached; Liked is computed per viewer.
func (s *StoryService) GetStoryDetail(ctx context.Context, storyID, viewerID uint) (*StoryDetail, error) {
	var detail StoryDetail
	err := cache.Aside(ctx, cache.StoryKey(storyID), &detail, cache.StoryTTL, func() error {
		return s.loadDetail(ctx, storyID, &detail)
	})
	if err != nil {
		return nil, err
	}

	if viewerID != 0 {
		liked, err := s.likeRepo.IsLiked(ctx, storyID, viewerID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		detail.Liked = liked
	}
	return &detail, nil
}

func (s *StoryService) loadDetail(ctx context.Context, storyID uint, out *StoryDetail) error {
	story, err := s.storyRepo.GetDetail(ctx, storyID)
	if err != nil {
		return err
	}
	comments, err := s.commentRepo.ListByStory(ctx, storyID)
	if err != nil {
		return models.NewInternalError(err)
	}
	likes, err := s.likeRepo.ListByStory(ctx, storyID)
	if err != nil {
		return models.NewInternalError(err)
	}

	byUser := make(map[uint][]models.Like, len(likes))
	for _, l := range likes {
		byUser[l.UserID] = append(byUser[l.UserID], l)
	}
	for _, c := range comments {
		c.Likes = byUser[c.UserID]
		if c.Likes == nil {
			c.Likes = []models.Like{}
		}
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	*out = StoryDetail{
		Story:     story,
		Comments:  comments,
		LikeCount: int64(len(likes)),
	}
	return nil
}

// GetStoryForEdit loads the story for its owner's edit form.
func (s *StoryService) GetStoryForEdit(ctx context.Context, storyID, userID uint) (*models.Story, error) {
	if err := Authorize(userID, 0, AnyAuthenticated); err != nil {
		return nil, err
	}
	story, err := s.storyRepo.GetDetail(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(userID, story.UserID, OwnerOnly); err != nil {
		return nil, err
	}
	return story, nil
}

// UpdateStory fully replaces title, text and category. The image is replaced
// only when a new one is uploaded.
func (s *StoryService) UpdateStory(ctx context.Context, in UpdateStoryInput) (*models.Story, error) {
	if err := Authorize(in.UserID, 0, AnyAuthenticated); err != nil {
		return nil, err
	}
	existing, err := s.storyRepo.GetByID(ctx, in.StoryID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(in.UserID, existing.UserID, OwnerOnly); err != nil {
		return nil, err
	}

	draft := &models.Story{
		ID:         existing.ID,
		UserID:     in.UserID,
		Title:      in.Title,
		Text:       in.Text,
		CategoryID: parseCategoryID(in.CategoryID),
		ImageURL:   existing.ImageURL,
		CreatedAt:  existing.CreatedAt,
	}

	if msgs := validation.Story(in.Title, in.Text); len(msgs) > 0 {
		observability.ValidationFailures.WithLabelValues("story").Inc()
		return draft, models.NewValidationErrors(msgs)
	}

	if err := s.attachImage(ctx, draft, in.Image); err != nil {
		return draft, err
	}

	if err := s.storyRepo.Update(ctx, draft); err != nil {
		s.discardImage(ctx, draft, in.Image, existing.ImageURL)
		return draft, mapStoryWriteError(err)
	}
	cache.InvalidateStory(ctx, draft.ID)
	return draft, nil
}

// DeleteStory removes the story with its comments and likes and returns the owner id.
func (s *StoryService) DeleteStory(ctx context.Context, in DeleteStoryInput) (uint, error) {
	if err := Authorize(in.UserID, 0, AnyAuthenticated); err != nil {
		return 0, err
	}
	existing, err := s.storyRepo.GetByID(ctx, in.StoryID)
	if err != nil {
		return 0, err
	}
	if err := Authorize(in.UserID, existing.UserID, OwnerOnly); err != nil {
		return 0, err
	}

	if err := s.storyRepo.Delete(ctx, in.StoryID); err != nil {
		if models.ErrorCode(err) != "" {
			return 0, err
		}
		return 0, models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, in.StoryID)
	return existing.UserID, nil
}

// ListUserStories returns a user's stories, newest first.
func (s *StoryService) ListUserStories(ctx context.Context, userID uint) ([]*models.Story, error) {
	stories, err := s.storyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if stories == nil {
		stories = []*models.Story{}
	}
	return stories, nil
}

func (s *StoryService) attachImage(ctx context.Context, story *models.Story, upload *storage.ImageUpload) error {
	if upload == nil {
		return nil
	}
	if s.images == nil {
		return models.NewInternalError(errors.New("image storage not configured"))
	}
	url, err := s.images.Save(ctx, *upload)
	if err != nil {
		if models.ErrorCode(err) == models.CodeValidation {
			observability.ValidationFailures.WithLabelValues("story_image").Inc()
			return err
		}
		return models.NewInternalError(err)
	}
	story.ImageURL = &url
	return nil
}

// discardImage removes an image stored for a write that then failed and puts
// the previous URL back on the draft. A file at the previous URL belongs to the
// story and is kept.
func (s *StoryService) discardImage(ctx context.Context, story *models.Story, upload *storage.ImageUpload, previous *string) {
	if upload == nil || story.ImageURL == nil {
		return
	}
	url := *story.ImageURL
	story.ImageURL = previous
	if previous != nil && *previous == url {
		return
	}
	if err := s.images.Remove(ctx, url); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove orphaned image",
			slog.String("url", url), slog.String("error", err.Error()))
	}
}

func mapStoryWriteError(err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return models.NewValidationError(MsgUnknownCategory)
	}
	if models.ErrorCode(err) != "" {
		return err
	}
	return models.NewInternalError(err)
}
