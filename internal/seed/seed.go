package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"relay/internal/middleware"
	"relay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options controls how much data a run produces.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	Clean           bool
	SkipBcrypt      bool
	RandomSeed      int64
	BatchSize       int
}

func (o Options) withDefaults() Options {
	if o.Users <= 0 {
		o.Users = 50
	}
	if o.Posts <= 0 {
		o.Posts = 200
	}
	if o.CommentsPerPost < 0 {
		o.CommentsPerPost = 0
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	return o
}

// Seeder populates the database with a coherent mesh of users, communities,
// posts and engagement. Counters on posts and communities are written to
// match the association rows exactly.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
	opts    Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	opts = opts.withDefaults()
	return &Seeder{
		db:      db,
		factory: NewFactory(opts.RandomSeed, opts.SkipBcrypt),
		rng:     rand.New(rand.NewSource(opts.RandomSeed)),
		opts:    opts,
	}
}

// ClearAll removes every seeded table in dependency order.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []interface{}{
		&models.Notification{},
		&models.Comment{},
		&models.PostUpvote{},
		&models.PostSave{},
		&models.Post{},
		&models.CommunityMember{},
		&models.Community{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.WithContext(ctx).Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	return nil
}

// Run seeds everything from the built-in defaults.
func (s *Seeder) Run(ctx context.Context) error {
	return s.Apply(ctx, DefaultPreset(s.opts))
}

// Apply seeds the database according to a preset.
func (s *Seeder) Apply(ctx context.Context, preset *Preset) error {
	if err := preset.Validate(); err != nil {
		return err
	}
	if s.opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return err
		}
	}

	users, err := s.seedUsers(ctx, preset.Users)
	if err != nil {
		return err
	}
	communities, err := s.seedCommunities(ctx, users, preset.Communities)
	if err != nil {
		return err
	}
	posts, err := s.seedPosts(ctx, users, communities, preset.PostMix)
	if err != nil {
		return err
	}
	if err := s.seedEngagement(ctx, users, posts, preset.CommentsPerPost); err != nil {
		return err
	}

	middleware.Logger.Info("seeding complete",
		"users", len(users), "communities", len(communities), "posts", len(posts))
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, s.factory.User())
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, s.opts.BatchSize).Error; err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return users, nil
}

func (s *Seeder) seedCommunities(ctx context.Context, users []*models.User, specs []PresetCommunity) ([]*models.Community, error) {
	communities := make([]*models.Community, 0, len(specs))
	members := make([]*models.CommunityMember, 0)

	for _, spec := range specs {
		creator := users[s.rng.Intn(len(users))]
		community := s.factory.Community(creator, spec.Name, models.CommunityType(spec.Type))
		community.College = spec.College
		community.ID = uuid.New()

		joined := map[uuid.UUID]bool{creator.ID: true}
		members = append(members, &models.CommunityMember{
			CommunityID: community.ID,
			UserID:      creator.ID,
			IsAdmin:     true,
		})
		// a random slice of the user base joins each community
		for _, user := range users {
			if joined[user.ID] || s.rng.Intn(3) != 0 {
				continue
			}
			joined[user.ID] = true
			members = append(members, &models.CommunityMember{
				CommunityID: community.ID,
				UserID:      user.ID,
			})
		}
		community.MemberCount = len(joined)
		communities = append(communities, community)
	}

	if len(communities) == 0 {
		return communities, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(communities, s.opts.BatchSize).Error; err != nil {
		return nil, fmt.Errorf("seed communities: %w", err)
	}
	if err := s.db.WithContext(ctx).CreateInBatches(members, s.opts.BatchSize).Error; err != nil {
		return nil, fmt.Errorf("seed memberships: %w", err)
	}
	return communities, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, communities []*models.Community, mix map[models.PostType]int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	for postType, count := range mix {
		for i := 0; i < count; i++ {
			author := users[s.rng.Intn(len(users))]
			post := s.factory.Post(author, postType)
			post.Views = s.rng.Intn(500)
			// roughly a third of posts live inside a community
			if len(communities) > 0 && s.rng.Intn(3) == 0 {
				id := communities[s.rng.Intn(len(communities))].ID
				post.CommunityID = &id
			}
			posts = append(posts, post)
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(posts, s.opts.BatchSize).Error; err != nil {
		return nil, fmt.Errorf("seed posts: %w", err)
	}
	return posts, nil
}

// seedEngagement adds upvotes, saves, comments and the notifications those
// would have produced, keeping the denormalized counters in sync.
func (s *Seeder) seedEngagement(ctx context.Context, users []*models.User, posts []*models.Post, commentsPerPost int) error {
	upvotes := make([]*models.PostUpvote, 0)
	saves := make([]*models.PostSave, 0)
	comments := make([]*models.Comment, 0)
	notifications := make([]*models.Notification, 0)

	for _, post := range posts {
		for _, user := range users {
			if s.rng.Intn(4) == 0 {
				upvotes = append(upvotes, &models.PostUpvote{PostID: post.ID, UserID: user.ID})
				post.UpvotesCount++
			}
			if s.rng.Intn(10) == 0 {
				saves = append(saves, &models.PostSave{PostID: post.ID, UserID: user.ID})
				post.SavesCount++
			}
		}

		for i := 0; i < commentsPerPost; i++ {
			author := users[s.rng.Intn(len(users))]
			comment := s.factory.Comment(author, post)
			comment.ID = uuid.New()
			comments = append(comments, comment)
			post.CommentsCount++

			if author.ID != post.AuthorID {
				notifications = append(notifications, &models.Notification{
					UserID:    post.AuthorID,
					Type:      models.NotificationTypeReply,
					Message:   "Someone commented on your post",
					PostID:    &post.ID,
					CommentID: &comment.ID,
					Read:      s.rng.Intn(2) == 0,
					Meta:      models.Meta{"commenter_id": author.ID.String()},
				})
			}
		}

		err := s.db.WithContext(ctx).Model(&models.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"upvotes_count":  post.UpvotesCount,
				"saves_count":    post.SavesCount,
				"comments_count": post.CommentsCount,
				"views":          post.Views,
			}).Error
		if err != nil {
			return fmt.Errorf("sync counters: %w", err)
		}
	}

	batches := []struct {
		name string
		rows interface{}
		size int
	}{
		{"upvotes", upvotes, len(upvotes)},
		{"saves", saves, len(saves)},
		{"comments", comments, len(comments)},
		{"notifications", notifications, len(notifications)},
	}
	for _, b := range batches {
		if b.size == 0 {
			continue
		}
		if err := s.db.WithContext(ctx).CreateInBatches(b.rows, s.opts.BatchSize).Error; err != nil {
			return fmt.Errorf("seed %s: %w", b.name, err)
		}
	}
	return nil
}
