package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetUserStories handles GET /users/:id/stories
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return appError(c, err)
	}

	stories, err := s.storyService.ListUserStories(ctx, userID)
	if err != nil {
		return appError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"stories": stories,
	})
}

// GetCategories handles GET /categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.ListCategories(c.UserContext())
	if err != nil {
		return appError(c, err)
	}
	return c.JSON(categories)
}
