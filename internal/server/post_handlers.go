package server

import (
	"time"

	"relay/internal/models"
	"relay/internal/repository"
	"relay/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Type              models.PostType `json:"type"`
		Title             string          `json:"title"`
		Content           string          `json:"content"`
		ImageURL          string          `json:"image_url"`
		Tags              []string        `json:"tags"`
		TargetColleges    []string        `json:"target_colleges"`
		TargetDepartments []string        `json:"target_departments"`
		EventDate         *time.Time      `json:"event_date"`
		EventTime         string          `json:"event_time"`
		Location          string          `json:"location"`
		Price             string          `json:"price"`
		Condition         string          `json:"condition"`
		ContactInfo       string          `json:"contact_info"`
		LinkURL           string          `json:"link_url"`
		Deadline          *time.Time      `json:"deadline"`
		CommunityID       *uuid.UUID      `json:"community_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:          userID,
		Type:              req.Type,
		Title:             req.Title,
		Content:           req.Content,
		ImageURL:          req.ImageURL,
		Tags:              req.Tags,
		TargetColleges:    req.TargetColleges,
		TargetDepartments: req.TargetDepartments,
		EventDate:         req.EventDate,
		EventTime:         req.EventTime,
		Location:          req.Location,
		Price:             req.Price,
		Condition:         req.Condition,
		ContactInfo:       req.ContactInfo,
		LinkURL:           req.LinkURL,
		Deadline:          req.Deadline,
		CommunityID:       req.CommunityID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// postFiltersFromQuery maps request query parameters onto repository filters.
func postFiltersFromQuery(c *fiber.Ctx) (repository.PostFilters, error) {
	filters := repository.PostFilters{
		Type:       models.PostType(c.Query("type")),
		Status:     models.PostStatus(c.Query("status")),
		College:    c.Query("college"),
		Department: c.Query("department"),
		PinnedOnly: c.QueryBool("pinned", false),
		Query:      c.Query("q"),
	}

	if raw := c.Query("author_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, models.NewValidationError("Invalid author_id")
		}
		filters.AuthorID = id
	}
	if raw := c.Query("community_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, models.NewValidationError("Invalid community_id")
		}
		filters.CommunityID = id
	}

	return filters, nil
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	filters, err := postFiltersFromQuery(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	result, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		ViewerID: viewerID(c),
		Filters:  filters,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}

// GetTrendingPosts handles GET /api/posts/trending
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.TrendingPosts(c.Context(), viewerID(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title    string            `json:"title"`
		Content  string            `json:"content"`
		ImageURL string            `json:"image_url"`
		Price    string            `json:"price"`
		Status   models.PostStatus `json:"status"`
		IsPinned *bool             `json:"is_pinned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:   userID,
		PostID:   postID,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Price:    req.Price,
		Status:   req.Status,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), userID, postID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ToggleUpvote handles POST /api/posts/:id/upvote
func (s *Server) ToggleUpvote(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleUpvote(c.Context(), userID, postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"upvoted": result.Active, "upvotes_count": result.Count})
}

// ToggleSave handles POST /api/posts/:id/save
func (s *Server) ToggleSave(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleSave(c.Context(), userID, postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"saved": result.Active, "saves_count": result.Count})
}

// GetMySavedPosts handles GET /api/users/me/saved-posts
func (s *Server) GetMySavedPosts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	result, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		ViewerID: userID,
		Filters:  repository.PostFilters{SavedBy: userID},
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}

// RefinePost handles POST /api/posts/refine
func (s *Server) RefinePost(c *fiber.Ctx) error {
	if !s.flags.EnabledOrDefault("post_refiner", currentUserID(c), true) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(
			models.ErrorResponse{Error: "Post refiner is currently disabled"})
	}

	var req struct {
		Content string          `json:"content"`
		Type    models.PostType `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.refinerService.Refine(c.Context(), req.Content, req.Type)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}
