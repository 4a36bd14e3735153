package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityType classifies a community.
type CommunityType string

const (
	// CommunityTypeAcademic groups communities tied to coursework or colleges.
	CommunityTypeAcademic CommunityType = "ACADEMIC"
	// CommunityTypeInterest groups hobby and interest communities.
	CommunityTypeInterest CommunityType = "INTEREST"
	// CommunityTypeOfficial marks institution-run communities.
	CommunityTypeOfficial CommunityType = "OFFICIAL"
)

// ValidCommunityType reports whether t is a known community type.
func ValidCommunityType(t CommunityType) bool {
	switch t {
	case CommunityTypeAcademic, CommunityTypeInterest, CommunityTypeOfficial:
		return true
	}
	return false
}

// Community represents a named member group.
//
// MemberCount is denormalized: seeded to 1 when the community is created
// (the creator's own membership) and adjusted only by join/leave.
type Community struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string        `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string        `gorm:"size:500;not null" json:"description"`
	MemberCount int           `gorm:"default:0" json:"member_count"`
	Type        CommunityType `gorm:"type:varchar(10);not null" json:"type"`
	ImageURL    string        `gorm:"size:500" json:"image_url,omitempty"`
	College     string        `gorm:"size:50" json:"college,omitempty"`

	CreatorID uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
	Creator   *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`

	// IsMember indicates whether the requesting user belongs to this community (computed)
	IsMember bool `gorm:"-" json:"is_member"`
	// IsAdmin indicates whether the requesting user administers this community (computed)
	IsAdmin bool `gorm:"-" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (c *Community) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CommunityMember maps users to communities and tracks the admin flag.
// The combination of CommunityID and UserID must be unique. The community
// creator's row carries IsAdmin=true and is the only admin row.
type CommunityMember struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_community_member" json:"community_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_community_member" json:"user_id"`
	IsAdmin     bool      `gorm:"default:false" json:"is_admin"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Community *Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"-"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (m *CommunityMember) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
