package repository

import (
	"context"
	"errors"

	"relay/internal/cache"
	"relay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAdminCannotLeave is returned when a community admin attempts to leave
// their own community.
var ErrAdminCannotLeave = errors.New("community admin cannot leave the community")

// MemberFlags carries a viewer's batched membership status for one community.
type MemberFlags struct {
	IsMember bool
	IsAdmin  bool
}

// CommunityRepository defines the interface for community data operations
type CommunityRepository interface {
	CreateWithCreator(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error)
	NameExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uuid.UUID) error
	Join(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error)
	Leave(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error)
	Members(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.CommunityMember, error)
	GetUserCommunities(ctx context.Context, userID uuid.UUID) ([]*models.Community, error)
	GetMemberFlags(ctx context.Context, userID uuid.UUID, communityIDs []uuid.UUID) (map[uuid.UUID]MemberFlags, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// CreateWithCreator inserts the community seeded with member_count=1 and the
// creator's admin membership row in one transaction.
func (r *communityRepository) CreateWithCreator(ctx context.Context, community *models.Community) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community.MemberCount = 1
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		member := &models.CommunityMember{
			CommunityID: community.ID,
			UserID:      community.CreatorID,
			IsAdmin:     true,
		}
		return tx.Create(member).Error
	})
	if err == nil {
		cache.Invalidate(ctx, cache.CommunityListKey)
	}
	return err
}

func (r *communityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	var community models.Community
	err := cache.CacheAside(ctx, cache.CommunityKey(id), &community, cache.CommunityTTL, func() error {
		return r.db.WithContext(ctx).Preload("Creator").First(&community, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	return count > 0, err
}

// communityListCacheSize is how many communities the cached default listing
// holds; unfiltered first-page requests are sliced from it.
const communityListCacheSize = 50

// Search matches name and description, ordered by popularity. An empty query
// lists all communities.
func (r *communityRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Community, error) {
	// The unfiltered first page is the hot path; serve it cache-aside.
	if query == "" && offset == 0 && limit <= communityListCacheSize {
		var top []*models.Community
		err := cache.CacheAside(ctx, cache.CommunityListKey, &top, cache.CommunityTTL, func() error {
			return r.db.WithContext(ctx).
				Preload("Creator").
				Order("member_count DESC, created_at DESC").
				Limit(communityListCacheSize).
				Find(&top).Error
		})
		if err != nil {
			return nil, err
		}
		if len(top) > limit {
			top = top[:limit]
		}
		return top, nil
	}

	db := r.db.WithContext(ctx).Preload("Creator")
	if query != "" {
		like := "%" + query + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var communities []*models.Community
	err := db.Order("member_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	if err != nil {
		return nil, err
	}
	return communities, nil
}

func (r *communityRepository) Update(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Save(community).Error; err != nil {
		return err
	}
	cache.InvalidateCommunity(ctx, community.ID)
	return nil
}

func (r *communityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Community{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.InvalidateCommunity(ctx, id)
	return nil
}

// Join inserts the membership and bumps the counter. Returns (false, count)
// without error when the user is already a member.
func (r *communityRepository) Join(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error) {
	var joined bool
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.Select("id").First(&community, "id = ?", communityID).Error; err != nil {
			return err
		}

		ins := tx.Exec(
			`INSERT INTO community_members (id, community_id, user_id, is_admin, joined_at)
			 VALUES (?, ?, ?, false, NOW())
			 ON CONFLICT (community_id, user_id) DO NOTHING`,
			uuid.New(), communityID, userID,
		)
		if ins.Error != nil {
			return ins.Error
		}

		if ins.RowsAffected > 0 {
			joined = true
			if err := tx.Model(&models.Community{}).
				Where("id = ?", communityID).
				UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Community{}).
			Select("member_count").
			Where("id = ?", communityID).
			Scan(&count).Error
	})
	if err != nil {
		return false, 0, err
	}

	cache.InvalidateCommunity(ctx, communityID)
	return joined, count, nil
}

// Leave removes the membership and lowers the counter, flooring at zero.
// Returns (false, count) without error when the user was not a member, and
// ErrAdminCannotLeave when the member administers the community.
func (r *communityRepository) Leave(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error) {
	var left bool
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.Select("id").First(&community, "id = ?", communityID).Error; err != nil {
			return err
		}

		var member models.CommunityMember
		err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).First(&member).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Not a member; fall through to report the current count.
		case err != nil:
			return err
		case member.IsAdmin:
			return ErrAdminCannotLeave
		default:
			if err := tx.Delete(&models.CommunityMember{}, "id = ?", member.ID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Community{}).
				Where("id = ?", communityID).
				UpdateColumn("member_count", gorm.Expr("GREATEST(member_count - 1, 0)")).Error; err != nil {
				return err
			}
			left = true
		}

		return tx.Model(&models.Community{}).
			Select("member_count").
			Where("id = ?", communityID).
			Scan(&count).Error
	})
	if err != nil {
		return false, 0, err
	}

	cache.InvalidateCommunity(ctx, communityID)
	return left, count, nil
}

func (r *communityRepository) Members(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.CommunityMember, error) {
	var members []*models.CommunityMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("community_id = ?", communityID).
		Order("joined_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *communityRepository) GetUserCommunities(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Joins("JOIN community_members ON community_members.community_id = communities.id").
		Where("community_members.user_id = ?", userID).
		Order("communities.member_count DESC").
		Find(&communities).Error
	if err != nil {
		return nil, err
	}
	return communities, nil
}

// GetMemberFlags resolves the viewer's membership for a batch of communities
// in a single query.
func (r *communityRepository) GetMemberFlags(ctx context.Context, userID uuid.UUID, communityIDs []uuid.UUID) (map[uuid.UUID]MemberFlags, error) {
	flags := make(map[uuid.UUID]MemberFlags, len(communityIDs))
	if len(communityIDs) == 0 || userID == uuid.Nil {
		return flags, nil
	}

	var members []models.CommunityMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND community_id IN ?", userID, communityIDs).
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		flags[m.CommunityID] = MemberFlags{IsMember: true, IsAdmin: m.IsAdmin}
	}
	return flags, nil
}
