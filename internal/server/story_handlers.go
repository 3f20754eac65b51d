package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// storyFormResponse is the payload of the story create and edit forms,
// including redisplay after a validation failure.
type storyFormResponse struct {
	Error      string            `json:"error,omitempty"`
	Code       string            `json:"code,omitempty"`
	Story      *models.Story     `json:"story"`
	Categories []models.Category `json:"categories"`
	Errors     []string          `json:"errors,omitempty"`
	CSRFToken  string            `json:"csrf_token,omitempty"`
}

type storyDetailResponse struct {
	*service.StoryDetail
	// Comment is the rejected comment draft on redisplay.
	Comment   *models.Comment `json:"comment,omitempty"`
	Error     string          `json:"error,omitempty"`
	Code      string          `json:"code,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	CSRFToken string          `json:"csrf_token,omitempty"`
}

type redirectResponse struct {
	RedirectTo string `json:"redirect_to"`
}

func (s *Server) renderStoryForm(c *fiber.Ctx, status int, story *models.Story, formErr error) error {
	categories, err := s.categoryService.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	resp := storyFormResponse{
		Story:      story,
		Categories: categories,
		CSRFToken:  csrfToken(c),
	}
	if formErr != nil {
		resp.Error = "Validation failed"
		resp.Code = models.CodeValidation
		resp.Errors = models.ValidationMessages(formErr)
	}
	return c.Status(status).JSON(resp)
}

// NewStoryForm handles GET /stories/create
func (s *Server) NewStoryForm(c *fiber.Ctx) error {
	return s.renderStoryForm(c, fiber.StatusOK, &models.Story{}, nil)
}

// CreateStory handles POST /stories/create
func (s *Server) CreateStory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var form storyForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	image, closeImage, err := imageUpload(c)
	if err != nil {
		return err
	}
	defer closeImage()

	story, err := s.storyService.CreateStory(ctx, service.CreateStoryInput{
		UserID:     middleware.CurrentUserID(c),
		Title:      form.Title,
		Text:       form.Text,
		CategoryID: string(form.CategoryID),
		Image:      image,
	})
	if err != nil {
		if models.ErrorCode(err) == models.CodeValidation {
			return s.renderStoryForm(c, fiber.StatusUnprocessableEntity, story, err)
		}
		return appError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"story":       story,
		"redirect_to": storyPath(story.ID),
	})
}

// GetStory handles GET /stories/:id
func (s *Server) GetStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.storyService.GetStoryDetail(c.UserContext(), storyID, middleware.CurrentUserID(c))
	if err != nil {
		return appError(c, err)
	}

	return c.JSON(storyDetailResponse{StoryDetail: detail, CSRFToken: csrfToken(c)})
}

// EditStoryForm handles GET /stories/edit/:id
func (s *Server) EditStoryForm(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	story, err := s.storyService.GetStoryForEdit(c.UserContext(), storyID, middleware.CurrentUserID(c))
	if err != nil {
		return appError(c, err)
	}
	return s.renderStoryForm(c, fiber.StatusOK, story, nil)
}

// UpdateStory handles POST /stories/edit/:id
func (s *Server) UpdateStory(c *fiber.Ctx) error {
	ctx := c.UserContext()
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var form storyForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	image, closeImage, err := imageUpload(c)
	if err != nil {
		return err
	}
	defer closeImage()

	story, err := s.storyService.UpdateStory(ctx, service.UpdateStoryInput{
		StoryID:    storyID,
		UserID:     middleware.CurrentUserID(c),
		Title:      form.Title,
		Text:       form.Text,
		CategoryID: string(form.CategoryID),
		Image:      image,
	})
	if err != nil {
		if models.ErrorCode(err) == models.CodeValidation {
			return s.renderStoryForm(c, fiber.StatusUnprocessableEntity, story, err)
		}
		return appError(c, err)
	}

	return c.JSON(fiber.Map{
		"story":       story,
		"redirect_to": storyPath(story.ID),
	})
}

// DeleteStory handles POST /stories/delete/:id
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ownerID, err := s.storyService.DeleteStory(c.UserContext(), service.DeleteStoryInput{
		StoryID: storyID,
		UserID:  middleware.CurrentUserID(c),
	})
	if err != nil {
		return appError(c, err)
	}

	return c.JSON(redirectResponse{RedirectTo: userPath(ownerID)})
}

// ToggleLike handles PATCH /stories/:id
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := middleware.CurrentUserID(c)

	res, err := s.likeService.ToggleLike(c.UserContext(), storyID, userID)
	if err != nil {
		return appError(c, err)
	}

	evType := notifications.EventStoryUnliked
	if res.Liked {
		evType = notifications.EventStoryLiked
	}
	likes := res.Likes
	s.publishStoryEvent(c, notifications.Event{
		Type:    evType,
		StoryID: storyID,
		UserID:  userID,
		Likes:   &likes,
	})

	return c.JSON(fiber.Map{
		"likes": res.Likes,
		"liked": res.Liked,
	})
}
