package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"relay/internal/models"
	"relay/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetPostsHandler(t *testing.T) {
	var seenFilters repository.PostFilters
	posts := []*models.Post{
		{ID: uuid.New(), Type: models.PostTypeEvent, Title: "Robotics demo day"},
		{ID: uuid.New(), Type: models.PostTypeEvent, Title: "Hack night"},
	}
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		listFn: func(_ context.Context, filters repository.PostFilters, limit, offset int) ([]*models.Post, error) {
			seenFilters = filters
			assert.Equal(t, 20, limit)
			assert.Equal(t, 0, offset)
			return posts, nil
		},
		countFn: func(_ context.Context, _ repository.PostFilters) (int64, error) {
			return 2, nil
		},
	}})

	app := fiber.New()
	app.Get("/api/posts", srv.GetPosts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts?type=EVENT&q=robot", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Posts []*models.Post `json:"posts"`
		Total int64          `json:"total"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Posts, 2)
	assert.EqualValues(t, 2, body.Total)

	assert.Equal(t, models.PostTypeEvent, seenFilters.Type)
	assert.Equal(t, "robot", seenFilters.Query)
}

func TestGetPostsHandlerRejectsBadAuthorID(t *testing.T) {
	srv := newHandlerServer(handlerRepos{})

	app := fiber.New()
	app.Get("/api/posts", srv.GetPosts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts?author_id=not-a-uuid", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
}

func TestGetPostHandler(t *testing.T) {
	postID := uuid.New()
	viewer := uuid.New()
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Post, error) {
			require.Equal(t, postID, id)
			return &models.Post{ID: postID, Title: "Lost calculator", Views: 3}, nil
		},
		incrementViewsFn: func(_ context.Context, _ uuid.UUID) error { return nil },
		getUpvotedIDsFn: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{postID}, nil
		},
		getSavedIDsFn: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]uuid.UUID, error) {
			return nil, nil
		},
	}})

	app := fiber.New()
	app.Get("/api/posts/:id", as(viewer), srv.GetPost)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/"+postID.String(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.Post
	decodeBody(t, resp, &body)
	assert.Equal(t, postID, body.ID)
	assert.Equal(t, 4, body.Views)
	assert.True(t, body.IsUpvoted)
	assert.False(t, body.IsSaved)
}

func TestGetPostHandlerInvalidID(t *testing.T) {
	srv := newHandlerServer(handlerRepos{})

	app := fiber.New()
	app.Get("/api/posts/:id", srv.GetPost)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPostHandlerNotFound(t *testing.T) {
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}})

	app := fiber.New()
	app.Get("/api/posts/:id", srv.GetPost)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestCreatePostHandler(t *testing.T) {
	author := uuid.New()
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = uuid.New()
			return nil
		},
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Post, error) {
			return &models.Post{
				ID:       id,
				Type:     models.PostTypeIdea,
				Title:    "Campus bike share",
				AuthorID: author,
				Status:   models.PostStatusActive,
			}, nil
		},
	}})

	app := fiber.New()
	app.Post("/api/posts", as(author), srv.CreatePost)

	req := jsonRequest(t, http.MethodPost, "/api/posts", fiber.Map{
		"type":    "IDEA",
		"title":   "Campus bike share",
		"content": "A shared bike pool between the hostels and the colleges would cut walking time.",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body models.Post
	decodeBody(t, resp, &body)
	assert.Equal(t, author, body.AuthorID)
	assert.Equal(t, models.PostStatusActive, body.Status)
}

func TestCreatePostHandlerValidation(t *testing.T) {
	srv := newHandlerServer(handlerRepos{})

	app := fiber.New()
	app.Post("/api/posts", as(uuid.New()), srv.CreatePost)

	req := jsonRequest(t, http.MethodPost, "/api/posts", fiber.Map{
		"type":    "SHOUT",
		"title":   "Bad type",
		"content": "This post uses a category that does not exist anywhere.",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
}

func TestToggleUpvoteHandler(t *testing.T) {
	postID := uuid.New()
	userID := uuid.New()
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		toggleUpvoteFn: func(_ context.Context, gotPost, gotUser uuid.UUID) (bool, int, error) {
			assert.Equal(t, postID, gotPost)
			assert.Equal(t, userID, gotUser)
			return true, 4, nil
		},
	}})

	app := fiber.New()
	app.Post("/api/posts/:id/upvote", as(userID), srv.ToggleUpvote)

	resp, err := app.Test(httptest.NewRequest(
		http.MethodPost, "/api/posts/"+postID.String()+"/upvote", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Upvoted      bool `json:"upvoted"`
		UpvotesCount int  `json:"upvotes_count"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Upvoted)
	assert.Equal(t, 4, body.UpvotesCount)
}

func TestToggleSaveHandler(t *testing.T) {
	postID := uuid.New()
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		toggleSaveFn: func(_ context.Context, _, _ uuid.UUID) (bool, int, error) {
			return false, 0, nil
		},
	}})

	app := fiber.New()
	app.Post("/api/posts/:id/save", as(uuid.New()), srv.ToggleSave)

	resp, err := app.Test(httptest.NewRequest(
		http.MethodPost, "/api/posts/"+postID.String()+"/save", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Saved      bool `json:"saved"`
		SavesCount int  `json:"saves_count"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Saved)
	assert.Zero(t, body.SavesCount)
}

func TestDeletePostHandlerForbidden(t *testing.T) {
	owner := uuid.New()
	intruder := uuid.New()
	srv := newHandlerServer(handlerRepos{
		posts: &stubPostRepo{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Post, error) {
				return &models.Post{ID: id, AuthorID: owner}, nil
			},
		},
		users: &stubUserRepo{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
				return &models.User{ID: id, Role: models.UserRoleStudent}, nil
			},
		},
	})

	app := fiber.New()
	app.Delete("/api/posts/:id", as(intruder), srv.DeletePost)

	resp, err := app.Test(httptest.NewRequest(
		http.MethodDelete, "/api/posts/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestDeletePostHandlerOwner(t *testing.T) {
	owner := uuid.New()
	deleted := false
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: owner}, nil
		},
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			deleted = true
			return nil
		},
	}})

	app := fiber.New()
	app.Delete("/api/posts/:id", as(owner), srv.DeletePost)

	resp, err := app.Test(httptest.NewRequest(
		http.MethodDelete, "/api/posts/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, deleted)
}

func TestGetMySavedPostsHandler(t *testing.T) {
	userID := uuid.New()
	srv := newHandlerServer(handlerRepos{posts: &stubPostRepo{
		listFn: func(_ context.Context, filters repository.PostFilters, _, _ int) ([]*models.Post, error) {
			assert.Equal(t, userID, filters.SavedBy)
			return []*models.Post{{ID: uuid.New(), Title: "Saved one"}}, nil
		},
		countFn: func(_ context.Context, _ repository.PostFilters) (int64, error) {
			return 1, nil
		},
		getUpvotedIDsFn: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]uuid.UUID, error) {
			return nil, nil
		},
		getSavedIDsFn: func(_ context.Context, _ uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
			return postIDs, nil
		},
	}})

	app := fiber.New()
	app.Get("/api/users/me/saved-posts", as(userID), srv.GetMySavedPosts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/me/saved-posts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Posts []*models.Post `json:"posts"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Posts, 1)
	assert.True(t, body.Posts[0].IsSaved)
}
