package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostType is the 10-way category a post is published under.
type PostType string

const (
	PostTypeOpportunity  PostType = "OPPORTUNITY"
	PostTypeIdea         PostType = "IDEA"
	PostTypeLink         PostType = "LINK"
	PostTypeEvent        PostType = "EVENT"
	PostTypeCasual       PostType = "CASUAL"
	PostTypeMarketplace  PostType = "MARKETPLACE"
	PostTypeLostAndFound PostType = "LOST_AND_FOUND"
	PostTypeNews         PostType = "NEWS"
	PostTypeClub         PostType = "CLUB"
	PostTypeBounty       PostType = "BOUNTY"
)

// ValidPostType reports whether t is a known post type.
func ValidPostType(t PostType) bool {
	switch t {
	case PostTypeOpportunity, PostTypeIdea, PostTypeLink, PostTypeEvent,
		PostTypeCasual, PostTypeMarketplace, PostTypeLostAndFound,
		PostTypeNews, PostTypeClub, PostTypeBounty:
		return true
	}
	return false
}

// PostStatus defines the lifecycle state of a post.
type PostStatus string

const (
	// PostStatusActive indicates a post is visible and rankable.
	PostStatusActive PostStatus = "ACTIVE"
	// PostStatusPending indicates a post is awaiting review.
	PostStatusPending PostStatus = "PENDING"
	// PostStatusSold indicates a marketplace item is no longer available.
	PostStatusSold PostStatus = "SOLD"
)

// Post represents a typed campus post.
//
// The denormalized counters (Views, UpvotesCount, SavesCount, CommentsCount)
// mirror their association tables and are mutated only by the toggle and
// view-increment operations, never assigned directly elsewhere.
type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type     PostType  `gorm:"type:varchar(20);not null;index" json:"type"`
	Title    string    `gorm:"size:200;not null" json:"title"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	ImageURL string    `gorm:"size:500" json:"image_url,omitempty"`

	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// Targeting
	Tags              StringList `gorm:"type:jsonb" json:"tags"`
	TargetColleges    StringList `gorm:"type:jsonb" json:"target_colleges"`
	TargetDepartments StringList `gorm:"type:jsonb" json:"target_departments"`

	// Event fields
	EventDate *time.Time `json:"event_date,omitempty"`
	EventTime string     `gorm:"size:50" json:"event_time,omitempty"`
	Location  string     `gorm:"size:200" json:"location,omitempty"`

	// Marketplace fields
	Price       string `gorm:"size:50" json:"price,omitempty"`
	Condition   string `gorm:"size:100" json:"condition,omitempty"`
	ContactInfo string `gorm:"size:200" json:"contact_info,omitempty"`

	// Link fields
	LinkURL  string     `gorm:"size:500" json:"link_url,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`

	// Denormalized stats
	Views         int `gorm:"default:0" json:"views"`
	UpvotesCount  int `gorm:"default:0" json:"upvotes_count"`
	SavesCount    int `gorm:"default:0" json:"saves_count"`
	CommentsCount int `gorm:"default:0" json:"comments_count"`

	CommunityID *uuid.UUID `gorm:"type:uuid;index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`

	Status   PostStatus `gorm:"type:varchar(10);default:'ACTIVE';index" json:"status"`
	IsPinned bool       `gorm:"default:false" json:"is_pinned"`

	// IsUpvoted indicates whether the requesting user upvoted this post (computed)
	IsUpvoted bool `gorm:"-" json:"is_upvoted"`
	// IsSaved indicates whether the requesting user saved this post (computed)
	IsSaved bool `gorm:"-" json:"is_saved"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PostUpvote records a single user's upvote on a post.
// The combination of PostID and UserID must be unique.
type PostUpvote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_upvote" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_upvote" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (u *PostUpvote) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PostSave records a single user's bookmark of a post.
// The combination of PostID and UserID must be unique.
type PostSave struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_save" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_save" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (s *PostSave) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
