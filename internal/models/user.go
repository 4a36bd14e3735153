// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole defines the account type of a user.
type UserRole string

const (
	// UserRoleStudent is the default role for registered accounts.
	UserRoleStudent UserRole = "Student"
	// UserRoleCreator marks content-creator accounts.
	UserRoleCreator UserRole = "Creator"
	// UserRoleBusiness marks business accounts.
	UserRoleBusiness UserRole = "Business"
	// UserRoleClub marks student-club accounts.
	UserRoleClub UserRole = "Club"
	// UserRoleFaculty marks faculty accounts.
	UserRoleFaculty UserRole = "Faculty"
	// UserRoleAdmin grants platform-wide moderation privileges.
	UserRoleAdmin UserRole = "Admin"
)

// ValidUserRole reports whether r is a known user role.
func ValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleStudent, UserRoleCreator, UserRoleBusiness,
		UserRoleClub, UserRoleFaculty, UserRoleAdmin:
		return true
	}
	return false
}

// College identifies one of the campus colleges, or GLOBAL for campus-wide.
type College string

const (
	CollegeCOE    College = "COE"
	CollegeCST    College = "CST"
	CollegeCMSS   College = "CMSS"
	CollegeCLDS   College = "CLDS"
	CollegeGlobal College = "GLOBAL"
)

// ValidCollege reports whether c is a known college value.
func ValidCollege(c College) bool {
	switch c {
	case CollegeCOE, CollegeCST, CollegeCMSS, CollegeCLDS, CollegeGlobal:
		return true
	}
	return false
}

// User represents a registered account on the Relay platform.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName string     `gorm:"size:100;not null" json:"display_name"`
	Role        UserRole   `gorm:"type:varchar(20);default:'Student'" json:"role"`
	AvatarURL   string     `gorm:"size:500" json:"avatar_url"`
	College     College    `gorm:"type:varchar(10);not null" json:"college"`
	Department  string     `gorm:"size:100;not null" json:"department"`
	Bio         string     `gorm:"size:500" json:"bio"`
	IsVerified  bool       `gorm:"default:false" json:"is_verified"`
	Interests   StringList `gorm:"type:jsonb" json:"interests"`
	// HashedPassword holds the bcrypt digest; never serialized.
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
}

// UserStats aggregates a user's activity counters for profile pages.
type UserStats struct {
	PostsCount       int64 `json:"posts_count"`
	CommentsCount    int64 `json:"comments_count"`
	CommunitiesCount int64 `json:"communities_count"`
	UpvotesReceived  int64 `json:"upvotes_received"`
}

// IsAdmin reports whether the user holds platform admin privileges.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
