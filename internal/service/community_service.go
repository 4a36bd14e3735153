package service

import (
	"context"
	"errors"
	"strings"

	"relay/internal/models"
	"relay/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minCommunityNameLen = 3
	maxCommunityNameLen = 100
)

type CommunityService struct {
	communityRepo repository.CommunityRepository
	isAdmin       func(ctx context.Context, userID uuid.UUID) (bool, error)
}

type CreateCommunityInput struct {
	CreatorID   uuid.UUID
	Name        string
	Description string
	Type        models.CommunityType
	ImageURL    string
	College     string
}

type UpdateCommunityInput struct {
	UserID      uuid.UUID
	CommunityID uuid.UUID
	Description string
	ImageURL    string
}

// MembershipResult is the soft outcome of a join or leave. Changed is false
// when the call was a no-op (already joined, not a member).
type MembershipResult struct {
	Changed     bool   `json:"changed"`
	MemberCount int    `json:"member_count"`
	Message     string `json:"message"`
}

func NewCommunityService(
	communityRepo repository.CommunityRepository,
	isAdmin func(ctx context.Context, userID uuid.UUID) (bool, error),
) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		isAdmin:       isAdmin,
	}
}

func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*models.Community, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < minCommunityNameLen || len(name) > maxCommunityNameLen {
		return nil, models.NewValidationError("Community name must be between 3 and 100 characters")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if !models.ValidCommunityType(in.Type) {
		return nil, models.NewValidationError("Invalid community type")
	}

	exists, err := s.communityRepo.NameExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("A community with this name already exists")
	}

	community := &models.Community{
		Name:        name,
		Description: in.Description,
		Type:        in.Type,
		ImageURL:    in.ImageURL,
		College:     in.College,
		CreatorID:   in.CreatorID,
	}
	if err := s.communityRepo.CreateWithCreator(ctx, community); err != nil {
		// A concurrent create can slip past the NameExists pre-check; the
		// unique index on the name is the backstop.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A community with this name already exists")
		}
		return nil, err
	}

	community.IsMember = true
	community.IsAdmin = true
	return community, nil
}

func (s *CommunityService) GetCommunity(ctx context.Context, id, viewerID uuid.UUID) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", id)
		}
		return nil, err
	}

	if err := s.applyMemberFlags(ctx, viewerID, []*models.Community{community}); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) SearchCommunities(ctx context.Context, query string, viewerID uuid.UUID, limit, offset int) ([]*models.Community, error) {
	communities, err := s.communityRepo.Search(ctx, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.applyMemberFlags(ctx, viewerID, communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// applyMemberFlags resolves IsMember/IsAdmin for a batch of communities with
// one query. Anonymous viewers keep the zero flags.
func (s *CommunityService) applyMemberFlags(ctx context.Context, viewerID uuid.UUID, communities []*models.Community) error {
	if viewerID == uuid.Nil || len(communities) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(communities))
	for i, c := range communities {
		ids[i] = c.ID
	}

	flags, err := s.communityRepo.GetMemberFlags(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	for _, c := range communities {
		f := flags[c.ID]
		c.IsMember = f.IsMember
		c.IsAdmin = f.IsAdmin
	}
	return nil
}

// Join fails softly: a missing community or an existing membership reports a
// structured Changed=false result instead of an error. "Already a member" is
// an expected outcome for callers to branch on, not a failure.
func (s *CommunityService) Join(ctx context.Context, communityID, userID uuid.UUID) (*MembershipResult, error) {
	joined, count, err := s.communityRepo.Join(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &MembershipResult{Changed: false, Message: "Community not found"}, nil
		}
		return nil, err
	}

	message := "Joined community"
	if !joined {
		message = "Already a member"
	}
	return &MembershipResult{Changed: joined, MemberCount: count, Message: message}, nil
}

// Leave mirrors Join's soft semantics. Community admins can never leave via
// this path; they get a Changed=false result and must delete the community
// instead.
func (s *CommunityService) Leave(ctx context.Context, communityID, userID uuid.UUID) (*MembershipResult, error) {
	left, count, err := s.communityRepo.Leave(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &MembershipResult{Changed: false, Message: "Community not found"}, nil
		}
		if errors.Is(err, repository.ErrAdminCannotLeave) {
			return &MembershipResult{Changed: false, Message: "Community admins cannot leave their community"}, nil
		}
		return nil, err
	}

	message := "Left community"
	if !left {
		message = "Not a member"
	}
	return &MembershipResult{Changed: left, MemberCount: count, Message: message}, nil
}

func (s *CommunityService) Members(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.CommunityMember, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", communityID)
		}
		return nil, err
	}
	return s.communityRepo.Members(ctx, communityID, limit, offset)
}

func (s *CommunityService) GetUserCommunities(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	return s.communityRepo.GetUserCommunities(ctx, userID)
}

// requireCommunityAdmin allows the community's admin member or a platform admin.
func (s *CommunityService) requireCommunityAdmin(ctx context.Context, communityID, userID uuid.UUID) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", communityID)
		}
		return nil, err
	}

	flags, err := s.communityRepo.GetMemberFlags(ctx, userID, []uuid.UUID{communityID})
	if err != nil {
		return nil, err
	}
	if flags[communityID].IsAdmin {
		return community, nil
	}

	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return nil, err
		}
		if admin {
			return community, nil
		}
	}
	return nil, models.NewForbiddenError("Only community admins can do this")
}

func (s *CommunityService) UpdateCommunity(ctx context.Context, in UpdateCommunityInput) (*models.Community, error) {
	community, err := s.requireCommunityAdmin(ctx, in.CommunityID, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Description != "" {
		community.Description = in.Description
	}
	if in.ImageURL != "" {
		community.ImageURL = in.ImageURL
	}

	if err := s.communityRepo.Update(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) DeleteCommunity(ctx context.Context, communityID, userID uuid.UUID) error {
	if _, err := s.requireCommunityAdmin(ctx, communityID, userID); err != nil {
		return err
	}
	return s.communityRepo.Delete(ctx, communityID)
}
