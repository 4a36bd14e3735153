package service

import (
	"context"
	"errors"
	"fmt"

	"relay/internal/middleware"
	"relay/internal/models"
	"relay/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	notification *NotificationService
	isAdmin      func(ctx context.Context, userID uuid.UUID) (bool, error)
}

type CreateCommentInput struct {
	UserID   uuid.UUID
	PostID   uuid.UUID
	ParentID *uuid.UUID
	Content  string
}

type UpdateCommentInput struct {
	UserID    uuid.UUID
	CommentID uuid.UUID
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notification *NotificationService,
	isAdmin func(ctx context.Context, userID uuid.UUID) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		notification: notification,
		isAdmin:      isAdmin,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Comment", *in.ParentID)
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.UserID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifyPostAuthor(ctx, post, comment)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// notifyPostAuthor sends the post author a reply notification. Commenting on
// your own post stays silent, and a notification failure never fails the
// comment itself.
func (s *CommentService) notifyPostAuthor(ctx context.Context, post *models.Post, comment *models.Comment) {
	if s.notification == nil || post.AuthorID == comment.AuthorID {
		return
	}

	notification := &models.Notification{
		UserID:    post.AuthorID,
		Type:      models.NotificationTypeReply,
		Message:   "Someone commented on your post",
		PostID:    &post.ID,
		CommentID: &comment.ID,
		Meta:      models.Meta{"commenter_id": comment.AuthorID.String()},
	}
	if err := s.notification.Notify(ctx, notification); err != nil {
		middleware.Logger.WarnContext(ctx, "reply notification failed",
			"post_id", post.ID.String(), "error", err)
	}
}

func (s *CommentService) ListComments(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, err
	}

	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return err
	}

	if comment.AuthorID != userID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own comments")
		}
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}

	return s.commentRepo.Delete(ctx, commentID)
}
