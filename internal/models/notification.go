package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationTypeReply           NotificationType = "REPLY"
	NotificationTypeSystem          NotificationType = "SYSTEM"
	NotificationTypeReminder        NotificationType = "REMINDER"
	NotificationTypeUpvote          NotificationType = "UPVOTE"
	NotificationTypeNewPost         NotificationType = "NEW_POST"
	NotificationTypeCommunityInvite NotificationType = "COMMUNITY_INVITE"
)

// Meta is a free-form metadata map stored as a JSON column.
type Meta map[string]string

// Value implements driver.Valuer.
func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Meta) Scan(src interface{}) error {
	if src == nil {
		*m = Meta{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Meta", src)
	}
	if len(data) == 0 {
		*m = Meta{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// GormDataType tells GORM to create a jsonb column for Meta fields.
func (Meta) GormDataType() string {
	return "jsonb"
}

// Notification is a targeted message created by the interaction layer as a
// side effect (e.g. a reply to a user's post), never by the notified user.
type Notification struct {
	ID      uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Type    NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message string           `gorm:"size:500;not null" json:"message"`
	Read    bool             `gorm:"default:false;index" json:"read"`

	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PostID      *uuid.UUID `gorm:"type:uuid" json:"post_id,omitempty"`
	CommentID   *uuid.UUID `gorm:"type:uuid" json:"comment_id,omitempty"`
	CommunityID *uuid.UUID `gorm:"type:uuid" json:"community_id,omitempty"`

	Meta Meta `gorm:"type:jsonb" json:"meta,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
