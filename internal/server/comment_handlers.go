package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// renderCommentFailure answers 422 with the story page, the rejected draft
// and the validation messages.
func (s *Server) renderCommentFailure(c *fiber.Ctx, storyID uint, draft *models.Comment, formErr error) error {
	detail, err := s.storyService.GetStoryDetail(c.UserContext(), storyID, middleware.CurrentUserID(c))
	if err != nil {
		return appError(c, err)
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(storyDetailResponse{
		StoryDetail: detail,
		Comment:     draft,
		Error:       "Validation failed",
		Code:        models.CodeValidation,
		Errors:      models.ValidationMessages(formErr),
		CSRFToken:   csrfToken(c),
	})
}

// CreateComment handles POST /comments/create/:id where id is the story.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var form commentForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := middleware.CurrentUserID(c)
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		StoryID: storyID,
		UserID:  userID,
		Text:    form.Text,
	})
	if err != nil {
		if models.ErrorCode(err) == models.CodeValidation {
			return s.renderCommentFailure(c, storyID, comment, err)
		}
		return appError(c, err)
	}

	s.publishStoryEvent(c, notifications.Event{
		Type:      notifications.EventCommentCreated,
		StoryID:   storyID,
		UserID:    userID,
		CommentID: comment.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"comment":     comment,
		"redirect_to": storyPath(storyID),
	})
}

// UpdateComment handles POST /comments/edit/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var form commentForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := middleware.CurrentUserID(c)
	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		CommentID: commentID,
		UserID:    userID,
		Text:      form.Text,
	})
	if err != nil {
		if models.ErrorCode(err) == models.CodeValidation && comment != nil {
			return s.renderCommentFailure(c, comment.StoryID, comment, err)
		}
		return appError(c, err)
	}

	s.publishStoryEvent(c, notifications.Event{
		Type:      notifications.EventCommentUpdated,
		StoryID:   comment.StoryID,
		UserID:    userID,
		CommentID: comment.ID,
	})

	return c.JSON(fiber.Map{
		"comment":     comment,
		"redirect_to": storyPath(comment.StoryID),
	})
}

// DeleteComment handles POST /comments/delete/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := middleware.CurrentUserID(c)
	storyID, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		CommentID: commentID,
		UserID:    userID,
	})
	if err != nil {
		return appError(c, err)
	}

	s.publishStoryEvent(c, notifications.Event{
		Type:      notifications.EventCommentDeleted,
		StoryID:   storyID,
		UserID:    userID,
		CommentID: commentID,
	})

	return c.JSON(redirectResponse{RedirectTo: storyPath(storyID)})
}
