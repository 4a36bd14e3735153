package repository

import (
	"context"

	"relay/internal/cache"
	"relay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps the post's denormalized counter in the
// same transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, comment.PostID)
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns top-level comments ordered oldest first, with their
// replies attached. Replies are fetched in one batch rather than per parent.
func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	var parents []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&parents).Error
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return parents, nil
	}

	parentIDs := make([]uuid.UUID, 0, len(parents))
	byID := make(map[uuid.UUID]*models.Comment, len(parents))
	for _, p := range parents {
		parentIDs = append(parentIDs, p.ID)
		byID[p.ID] = p
	}

	var replies []*models.Comment
	err = r.db.WithContext(ctx).
		Preload("Author").
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}

	for _, reply := range replies {
		if parent, ok := byID[*reply.ParentID]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}
	return parents, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// Delete removes the comment (replies cascade at the database level) and
// recounts the post's comments so the counter stays faithful.
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var postID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id", "post_id").First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		postID = comment.PostID

		if err := tx.Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
			return err
		}

		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("comments_count", gorm.Expr(
				"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)",
			)).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}
