package server

import (
	"relay/internal/middleware"
	"relay/internal/models"
	"relay/internal/service"

	"github.com/gofiber/fiber/v2"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterUser handles POST /api/auth/register
func (s *Server) RegisterUser(c *fiber.Ctx) error {
	var req struct {
		Email      string          `json:"email"`
		Password   string          `json:"password"`
		College    models.College  `json:"college"`
		Department string          `json:"department"`
		Role       models.UserRole `json:"role"`
		Interests  []string        `json:"interests"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		College:    req.College,
		Department: req.Department,
		Role:       req.Role,
		Interests:  req.Interests,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, err := middleware.GenerateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Login(c.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, err := middleware.GenerateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(authResponse{Token: token, User: user})
}
