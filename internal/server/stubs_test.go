package server

import (
	"context"

	"relay/internal/config"
	"relay/internal/models"
	"relay/internal/repository"
	"relay/internal/service"

	"github.com/google/uuid"
)

// The stubs below embed the repository interfaces so each test overrides only
// the methods its handler path touches. Calling anything else panics, which
// surfaces an unexpected repository hit immediately.

type stubUserRepo struct {
	repository.UserRepository
	createFn         func(ctx context.Context, user *models.User) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	getByEmailFn     func(ctx context.Context, email string) (*models.User, error)
	emailExistsFn    func(ctx context.Context, email string) (bool, error)
	usernameExistsFn func(ctx context.Context, username string) (bool, error)
	updateFn         func(ctx context.Context, user *models.User) error
	statsFn          func(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *stubUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.emailExistsFn(ctx, email)
}

func (s *stubUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.usernameExistsFn(ctx, username)
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func (s *stubUserRepo) Stats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	return s.statsFn(ctx, userID)
}

type stubPostRepo struct {
	repository.PostRepository
	createFn          func(ctx context.Context, post *models.Post) error
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*models.Post, error)
	listFn            func(ctx context.Context, filters repository.PostFilters, limit, offset int) ([]*models.Post, error)
	countFn           func(ctx context.Context, filters repository.PostFilters) (int64, error)
	deleteFn          func(ctx context.Context, id uuid.UUID) error
	incrementViewsFn  func(ctx context.Context, id uuid.UUID) error
	toggleUpvoteFn    func(ctx context.Context, postID, userID uuid.UUID) (bool, int, error)
	toggleSaveFn      func(ctx context.Context, postID, userID uuid.UUID) (bool, int, error)
	getUpvotedIDsFn   func(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error)
	getSavedIDsFn     func(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error)
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubPostRepo) List(ctx context.Context, filters repository.PostFilters, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, filters, limit, offset)
}

func (s *stubPostRepo) Count(ctx context.Context, filters repository.PostFilters) (int64, error) {
	return s.countFn(ctx, filters)
}

func (s *stubPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubPostRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return s.incrementViewsFn(ctx, id)
}

func (s *stubPostRepo) ToggleUpvote(ctx context.Context, postID, userID uuid.UUID) (bool, int, error) {
	return s.toggleUpvoteFn(ctx, postID, userID)
}

func (s *stubPostRepo) ToggleSave(ctx context.Context, postID, userID uuid.UUID) (bool, int, error) {
	return s.toggleSaveFn(ctx, postID, userID)
}

func (s *stubPostRepo) GetUpvotedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	return s.getUpvotedIDsFn(ctx, userID, postIDs)
}

func (s *stubPostRepo) GetSavedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	return s.getSavedIDsFn(ctx, userID, postIDs)
}

type stubCommentRepo struct {
	repository.CommentRepository
	createFn     func(ctx context.Context, comment *models.Comment) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	listByPostFn func(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*models.Comment, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubCommentRepo) ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}

func (s *stubCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type stubCommunityRepo struct {
	repository.CommunityRepository
	createWithCreatorFn func(ctx context.Context, community *models.Community) error
	getByIDFn           func(ctx context.Context, id uuid.UUID) (*models.Community, error)
	nameExistsFn        func(ctx context.Context, name string) (bool, error)
	searchFn            func(ctx context.Context, query string, limit, offset int) ([]*models.Community, error)
	joinFn              func(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error)
	leaveFn             func(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error)
	getMemberFlagsFn    func(ctx context.Context, userID uuid.UUID, communityIDs []uuid.UUID) (map[uuid.UUID]repository.MemberFlags, error)
}

func (s *stubCommunityRepo) CreateWithCreator(ctx context.Context, community *models.Community) error {
	return s.createWithCreatorFn(ctx, community)
}

func (s *stubCommunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubCommunityRepo) NameExists(ctx context.Context, name string) (bool, error) {
	return s.nameExistsFn(ctx, name)
}

func (s *stubCommunityRepo) Search(ctx context.Context, query string, limit, offset int) ([]*models.Community, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func (s *stubCommunityRepo) Join(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error) {
	return s.joinFn(ctx, communityID, userID)
}

func (s *stubCommunityRepo) Leave(ctx context.Context, communityID, userID uuid.UUID) (bool, int, error) {
	return s.leaveFn(ctx, communityID, userID)
}

func (s *stubCommunityRepo) GetMemberFlags(ctx context.Context, userID uuid.UUID, communityIDs []uuid.UUID) (map[uuid.UUID]repository.MemberFlags, error) {
	return s.getMemberFlagsFn(ctx, userID, communityIDs)
}

type stubNotificationRepo struct {
	repository.NotificationRepository
	createFn        func(ctx context.Context, notification *models.Notification) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	listByUserFn    func(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	countUnreadFn   func(ctx context.Context, userID uuid.UUID) (int64, error)
	markAsReadFn    func(ctx context.Context, id uuid.UUID) error
	markAllAsReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return s.createFn(ctx, notification)
}

func (s *stubNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	return s.listByUserFn(ctx, userID, unreadOnly, limit, offset)
}

func (s *stubNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.countUnreadFn(ctx, userID)
}

func (s *stubNotificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.markAsReadFn(ctx, id)
}

func (s *stubNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.markAllAsReadFn(ctx, userID)
}

// handlerRepos bundles the repositories a handler test wants to substitute.
// Unset fields stay nil; a handler path reaching a nil repository panics.
type handlerRepos struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	comments      repository.CommentRepository
	communities   repository.CommunityRepository
	notifications repository.NotificationRepository
}

// newHandlerServer wires a Server around stub repositories, mirroring
// NewServerWithDeps without a database or Redis behind it.
func newHandlerServer(repos handlerRepos) *Server {
	srv := &Server{config: &config.Config{}}
	srv.userService = service.NewUserService(repos.users)
	isAdmin := srv.userService.IsAdmin
	srv.postService = service.NewPostService(repos.posts, repos.communities, isAdmin)
	srv.notificationService = service.NewNotificationService(repos.notifications, nil)
	srv.commentService = service.NewCommentService(
		repos.comments, repos.posts, srv.notificationService, isAdmin)
	srv.communityService = service.NewCommunityService(repos.communities, isAdmin)
	srv.refinerService = service.NewRefinerService("", "")
	return srv
}
