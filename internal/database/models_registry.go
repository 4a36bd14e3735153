package database

import "relay/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Community{},
		&models.CommunityMember{},
		&models.Post{},
		&models.PostUpvote{},
		&models.PostSave{},
		&models.Comment{},
		&models.Notification{},
	}
}
