package server

import (
	"relay/internal/models"
	"relay/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommunity handles POST /api/communities
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Name        string               `json:"name"`
		Description string               `json:"description"`
		Type        models.CommunityType `json:"type"`
		ImageURL    string               `json:"image_url"`
		College     string               `json:"college"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.CreateCommunity(c.Context(), service.CreateCommunityInput{
		CreatorID:   userID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		ImageURL:    req.ImageURL,
		College:     req.College,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetCommunities handles GET /api/communities?q=...
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	communities, err := s.communityService.SearchCommunities(
		c.Context(), c.Query("q"), viewerID(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"communities": communities})
}

// GetCommunity handles GET /api/communities/:id
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	community, err := s.communityService.GetCommunity(c.Context(), id, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(community)
}

// GetCommunityMembers handles GET /api/communities/:id/members
func (s *Server) GetCommunityMembers(c *fiber.Ctx) error {
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 50)
	members, err := s.communityService.Members(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"members": members})
}

// JoinCommunity handles POST /api/communities/:id/join
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.communityService.Join(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !result.Changed {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}

	return c.JSON(result)
}

// LeaveCommunity handles POST /api/communities/:id/leave
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.communityService.Leave(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !result.Changed {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}

	return c.JSON(result)
}

// UpdateCommunity handles PUT /api/communities/:id
func (s *Server) UpdateCommunity(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.UpdateCommunity(c.Context(), service.UpdateCommunityInput{
		UserID:      userID,
		CommunityID: id,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(community)
}

// DeleteCommunity handles DELETE /api/communities/:id
func (s *Server) DeleteCommunity(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.DeleteCommunity(c.Context(), id, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Community deleted"})
}

// GetMyCommunities handles GET /api/users/me/communities
func (s *Server) GetMyCommunities(c *fiber.Ctx) error {
	userID := currentUserID(c)

	communities, err := s.communityService.GetUserCommunities(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"communities": communities})
}
