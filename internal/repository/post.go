package repository

import (
	"context"
	"encoding/json"
	"time"

	"relay/internal/cache"
	"relay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// trendingWindow is the rolling window posts are ranked within.
const trendingWindow = 7 * 24 * time.Hour

// trendingCacheSize is how many top posts the cached trending page holds;
// requests within the first page are sliced from it.
const trendingCacheSize = 50

// PostFilters narrows post listings. Zero values mean "no filter".
type PostFilters struct {
	Type        models.PostType
	Status      models.PostStatus
	AuthorID    uuid.UUID
	CommunityID uuid.UUID
	College     string
	Department  string
	PinnedOnly  bool
	SavedBy     uuid.UUID
	Query       string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, filters PostFilters, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, filters PostFilters) (int64, error)
	Trending(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	ToggleUpvote(ctx context.Context, postID, userID uuid.UUID) (bool, int, error)
	ToggleSave(ctx context.Context, postID, userID uuid.UUID) (bool, int, error)
	GetUpvotedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error)
	GetSavedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.Invalidate(ctx, cache.TrendingKey)
	}
	return err
}

// GetByID serves the viewer-neutral post entity cache-aside; per-viewer
// flags are overlaid by the service layer and never stored.
func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := cache.CacheAside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Author").
			Preload("Community").
			First(&post, "posts.id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// jsonbArray renders a single value as a JSONB array literal for @> containment.
func jsonbArray(value string) string {
	b, _ := json.Marshal([]string{value})
	return string(b)
}

func (r *postRepository) applyFilters(db *gorm.DB, f PostFilters) *gorm.DB {
	if f.Type != "" {
		db = db.Where("posts.type = ?", f.Type)
	}
	if f.Status != "" {
		db = db.Where("posts.status = ?", f.Status)
	}
	if f.AuthorID != uuid.Nil {
		db = db.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.CommunityID != uuid.Nil {
		db = db.Where("posts.community_id = ?", f.CommunityID)
	}
	if f.College != "" {
		db = db.Where("posts.target_colleges @> ?::jsonb", jsonbArray(f.College))
	}
	if f.Department != "" {
		db = db.Where("posts.target_departments @> ?::jsonb", jsonbArray(f.Department))
	}
	if f.PinnedOnly {
		db = db.Where("posts.is_pinned = true")
	}
	if f.SavedBy != uuid.Nil {
		db = db.Where("posts.id IN (SELECT post_id FROM post_saves WHERE user_id = ?)", f.SavedBy)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		db = db.Where("(posts.title ILIKE ? OR posts.content ILIKE ? OR posts.tags @> ?::jsonb)",
			like, like, jsonbArray(f.Query))
	}
	return db
}

func (r *postRepository) List(ctx context.Context, filters PostFilters, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyFilters(r.db.WithContext(ctx), filters).
		Preload("Author").
		Preload("Community").
		Order("posts.is_pinned DESC, posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filters PostFilters) (int64, error) {
	var count int64
	err := r.applyFilters(r.db.WithContext(ctx).Model(&models.Post{}), filters).
		Count(&count).Error
	return count, err
}

// trendingQuery scopes posts to the ACTIVE status and the rolling window and
// orders by score. Integer division floors the views term; id breaks ties so
// pagination stays stable.
func (r *postRepository) trendingQuery(ctx context.Context) *gorm.DB {
	since := time.Now().Add(-trendingWindow)
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Community").
		Where("posts.status = ? AND posts.created_at > ?", models.PostStatusActive, since).
		Order("(posts.upvotes_count + posts.comments_count * 3 + posts.views / 100) DESC, posts.id ASC")
}

func (r *postRepository) Trending(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if offset == 0 && limit <= trendingCacheSize {
		var top []*models.Post
		err := cache.CacheAside(ctx, cache.TrendingKey, &top, cache.TrendingTTL, func() error {
			return r.trendingQuery(ctx).Limit(trendingCacheSize).Find(&top).Error
		})
		if err != nil {
			return nil, err
		}
		if len(top) > limit {
			top = top[:limit]
		}
		return top, nil
	}

	var posts []*models.Post
	err := r.trendingQuery(ctx).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// IncrementViews bumps the denormalized view counter by one.
func (r *postRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(id))
	}
	return err
}

// ToggleUpvote flips the viewer's upvote on a post inside a single transaction
// and keeps the denormalized counter in step with the association table.
// Returns whether the upvote is now present and the fresh counter value.
func (r *postRepository) ToggleUpvote(ctx context.Context, postID, userID uuid.UUID) (bool, int, error) {
	return r.toggle(ctx, postID, userID, toggleSpec{
		table:   "post_upvotes",
		counter: "upvotes_count",
		model:   &models.PostUpvote{},
	})
}

// ToggleSave flips the viewer's bookmark on a post. Same contract as ToggleUpvote.
func (r *postRepository) ToggleSave(ctx context.Context, postID, userID uuid.UUID) (bool, int, error) {
	return r.toggle(ctx, postID, userID, toggleSpec{
		table:   "post_saves",
		counter: "saves_count",
		model:   &models.PostSave{},
	})
}

type toggleSpec struct {
	table   string
	counter string
	model   interface{}
}

func (r *postRepository) toggle(ctx context.Context, postID, userID uuid.UUID, spec toggleSpec) (bool, int, error) {
	var active bool
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Existence check; missing post surfaces as ErrRecordNotFound.
		var post models.Post
		if err := tx.Select("id").First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(spec.model)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			// Row removed; never let the counter go negative.
			if err := tx.Model(&models.Post{}).
				Where("id = ?", postID).
				UpdateColumn(spec.counter, gorm.Expr("GREATEST("+spec.counter+" - 1, 0)")).Error; err != nil {
				return err
			}
			active = false
		} else {
			// ON CONFLICT DO NOTHING backstops a concurrent insert of the
			// same pair; the counter only moves when the row actually lands.
			ins := tx.Exec(
				"INSERT INTO "+spec.table+" (id, post_id, user_id, created_at) VALUES (?, ?, ?, NOW()) ON CONFLICT (post_id, user_id) DO NOTHING",
				uuid.New(), postID, userID,
			)
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected > 0 {
				if err := tx.Model(&models.Post{}).
					Where("id = ?", postID).
					UpdateColumn(spec.counter, gorm.Expr(spec.counter+" + 1")).Error; err != nil {
					return err
				}
			}
			active = true
		}

		return tx.Model(&models.Post{}).
			Select(spec.counter).
			Where("id = ?", postID).
			Scan(&count).Error
	})
	if err != nil {
		return false, 0, err
	}

	cache.InvalidatePost(ctx, postID)
	return active, count, nil
}

func (r *postRepository) GetUpvotedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PostUpvote{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *postRepository) GetSavedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PostSave{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}
