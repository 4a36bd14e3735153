package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"relay/internal/models"
	"relay/internal/repository"
	"relay/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostService struct {
	postRepo      repository.PostRepository
	communityRepo repository.CommunityRepository
	isAdmin       func(ctx context.Context, userID uuid.UUID) (bool, error)
}

type CreatePostInput struct {
	AuthorID          uuid.UUID
	Type              models.PostType
	Title             string
	Content           string
	ImageURL          string
	Tags              []string
	TargetColleges    []string
	TargetDepartments []string
	EventDate         *time.Time
	EventTime         string
	Location          string
	Price             string
	Condition         string
	ContactInfo       string
	LinkURL           string
	Deadline          *time.Time
	CommunityID       *uuid.UUID
}

type ListPostsInput struct {
	ViewerID uuid.UUID
	Filters  repository.PostFilters
	Limit    int
	Offset   int
}

// ListPostsResult pairs a page of posts with the true filtered total.
type ListPostsResult struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
}

type UpdatePostInput struct {
	UserID   uuid.UUID
	PostID   uuid.UUID
	Title    string
	Content  string
	ImageURL string
	Price    string
	Status   models.PostStatus
	IsPinned *bool
}

// ToggleResult reports the post-toggle state of an upvote or save.
type ToggleResult struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

func NewPostService(
	postRepo repository.PostRepository,
	communityRepo repository.CommunityRepository,
	isAdmin func(ctx context.Context, userID uuid.UUID) (bool, error),
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		communityRepo: communityRepo,
		isAdmin:       isAdmin,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if !models.ValidPostType(in.Type) {
		return nil, models.NewValidationError("Invalid post type")
	}
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	switch in.Type {
	case models.PostTypeEvent:
		if in.EventDate == nil {
			return nil, models.NewValidationError("event_date is required for event posts")
		}
	case models.PostTypeMarketplace:
		if strings.TrimSpace(in.Price) == "" {
			return nil, models.NewValidationError("price is required for marketplace posts")
		}
		if err := validation.ValidatePriceFormat(in.Price); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	case models.PostTypeLink:
		if in.LinkURL == "" {
			return nil, models.NewValidationError("link_url is required for link posts")
		}
		if _, err := url.ParseRequestURI(in.LinkURL); err != nil {
			return nil, models.NewValidationError("link_url must be a valid URL")
		}
	}

	if in.CommunityID != nil {
		if _, err := s.communityRepo.GetByID(ctx, *in.CommunityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Community", *in.CommunityID)
			}
			return nil, err
		}
	}

	post := &models.Post{
		Type:              in.Type,
		Title:             strings.TrimSpace(in.Title),
		Content:           in.Content,
		ImageURL:          in.ImageURL,
		AuthorID:          in.AuthorID,
		Tags:              in.Tags,
		TargetColleges:    in.TargetColleges,
		TargetDepartments: in.TargetDepartments,
		EventDate:         in.EventDate,
		EventTime:         in.EventTime,
		Location:          in.Location,
		Price:             in.Price,
		Condition:         in.Condition,
		ContactInfo:       in.ContactInfo,
		LinkURL:           in.LinkURL,
		Deadline:          in.Deadline,
		CommunityID:       in.CommunityID,
		Status:            models.PostStatusActive,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns a filtered page with the true total for that filter set.
// An empty search query is treated the same as no query at all.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*ListPostsResult, error) {
	in.Filters.Query = strings.TrimSpace(in.Filters.Query)

	posts, err := s.postRepo.List(ctx, in.Filters, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.Count(ctx, in.Filters)
	if err != nil {
		return nil, err
	}

	if err := s.applyViewerFlags(ctx, in.ViewerID, posts); err != nil {
		return nil, err
	}
	return &ListPostsResult{Posts: posts, Total: total}, nil
}

// GetPost fetches one post, counts the view, and resolves viewer flags.
func (s *PostService) GetPost(ctx context.Context, id, viewerID uuid.UUID) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}

	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	post.Views++

	if err := s.applyViewerFlags(ctx, viewerID, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) TrendingPosts(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.Trending(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.applyViewerFlags(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// applyViewerFlags resolves IsUpvoted/IsSaved for a batch of posts with two
// queries instead of two per post. Anonymous viewers keep the zero flags.
func (s *PostService) applyViewerFlags(ctx context.Context, viewerID uuid.UUID, posts []*models.Post) error {
	if viewerID == uuid.Nil || len(posts) == 0 {
		return nil
	}

	postIDs := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	upvoted, err := s.postRepo.GetUpvotedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return err
	}
	saved, err := s.postRepo.GetSavedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return err
	}

	upvotedSet := make(map[uuid.UUID]bool, len(upvoted))
	for _, id := range upvoted {
		upvotedSet[id] = true
	}
	savedSet := make(map[uuid.UUID]bool, len(saved))
	for _, id := range saved {
		savedSet[id] = true
	}

	for _, p := range posts {
		p.IsUpvoted = upvotedSet[p.ID]
		p.IsSaved = savedSet[p.ID]
	}
	return nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	if post.AuthorID != in.UserID {
		if s.isAdmin == nil {
			return nil, models.NewForbiddenError("You can only update your own posts")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("You can only update your own posts")
		}
	}

	if in.Title != "" {
		if err := validation.ValidatePostTitle(in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = strings.TrimSpace(in.Title)
	}
	if in.Content != "" {
		if err := validation.ValidatePostContent(in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Content = in.Content
	}
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}
	if in.Price != "" {
		if err := validation.ValidatePriceFormat(in.Price); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Price = in.Price
	}
	if in.Status != "" {
		switch in.Status {
		case models.PostStatusActive, models.PostStatusPending, models.PostStatusSold:
			post.Status = in.Status
		default:
			return nil, models.NewValidationError("Invalid post status")
		}
	}
	if in.IsPinned != nil {
		post.IsPinned = *in.IsPinned
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return err
	}

	if post.AuthorID != userID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own posts")
		}
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own posts")
		}
	}

	return s.postRepo.Delete(ctx, postID)
}

// ToggleUpvote flips the viewer's upvote and reports the resulting state.
func (s *PostService) ToggleUpvote(ctx context.Context, userID, postID uuid.UUID) (*ToggleResult, error) {
	active, count, err := s.postRepo.ToggleUpvote(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return &ToggleResult{Active: active, Count: count}, nil
}

// ToggleSave flips the viewer's bookmark and reports the resulting state.
func (s *PostService) ToggleSave(ctx context.Context, userID, postID uuid.UUID) (*ToggleResult, error) {
	active, count, err := s.postRepo.ToggleSave(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return &ToggleResult{Active: active, Count: count}, nil
}
