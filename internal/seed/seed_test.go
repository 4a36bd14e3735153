package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"relay/internal/database"
	"relay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// one shared in-memory database per test, named so tests stay isolated
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSeederRun(t *testing.T) {
	db := setupDB(t)
	seeder := NewSeeder(db, Options{
		Users:           8,
		Posts:           20,
		CommentsPerPost: 2,
		SkipBcrypt:      true,
		RandomSeed:      42,
	})
	require.NoError(t, seeder.Run(context.Background()))

	var userCount, communityCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Community{}).Count(&communityCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.EqualValues(t, 8, userCount)
	assert.EqualValues(t, 5, communityCount)
	assert.Positive(t, postCount)
}

func TestSeederCountersMatchRows(t *testing.T) {
	db := setupDB(t)
	seeder := NewSeeder(db, Options{
		Users:           6,
		Posts:           10,
		CommentsPerPost: 3,
		SkipBcrypt:      true,
		RandomSeed:      7,
	})
	require.NoError(t, seeder.Run(context.Background()))

	var posts []*models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.NotEmpty(t, posts)

	for _, post := range posts {
		var upvotes, saves, comments int64
		require.NoError(t, db.Model(&models.PostUpvote{}).Where("post_id = ?", post.ID).Count(&upvotes).Error)
		require.NoError(t, db.Model(&models.PostSave{}).Where("post_id = ?", post.ID).Count(&saves).Error)
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
		assert.EqualValues(t, upvotes, post.UpvotesCount)
		assert.EqualValues(t, saves, post.SavesCount)
		assert.EqualValues(t, comments, post.CommentsCount)
	}

	var communities []*models.Community
	require.NoError(t, db.Find(&communities).Error)
	for _, community := range communities {
		var members int64
		require.NoError(t, db.Model(&models.CommunityMember{}).
			Where("community_id = ?", community.ID).Count(&members).Error)
		assert.EqualValues(t, members, community.MemberCount)

		var admins int64
		require.NoError(t, db.Model(&models.CommunityMember{}).
			Where("community_id = ? AND is_admin", community.ID).Count(&admins).Error)
		assert.EqualValues(t, 1, admins)
	}
}

func TestSeederCleanRemovesPreviousRun(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	first := NewSeeder(db, Options{Users: 5, Posts: 10, SkipBcrypt: true, RandomSeed: 1})
	require.NoError(t, first.Run(ctx))

	second := NewSeeder(db, Options{Users: 4, Posts: 10, SkipBcrypt: true, RandomSeed: 2, Clean: true})
	require.NoError(t, second.Run(ctx))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 4, userCount)
}

func TestLoadPreset(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: demo
users: 12
comments_per_post: 1
communities:
  - name: Chess Club
    type: INTEREST
  - name: Physics Forum
    type: ACADEMIC
    college: CST
post_mix:
  CASUAL: 6
  EVENT: 2
`), 0o600))

	preset, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", preset.Name)
	assert.Equal(t, 12, preset.Users)
	require.Len(t, preset.Communities, 2)
	assert.Equal(t, "CST", preset.Communities[1].College)
	assert.Equal(t, 6, preset.PostMix[models.PostTypeCasual])
}

func TestLoadPresetRejectsBadType(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: bad
users: 3
communities:
  - name: Ghosts
    type: SECRET
`), 0o600))

	_, err := LoadPreset(path)
	assert.Error(t, err)
}
