package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"relay/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetMyProfileHandler(t *testing.T) {
	userID := uuid.New()
	srv := newHandlerServer(handlerRepos{users: &stubUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
			require.Equal(t, userID, id)
			return &models.User{ID: id, Username: "ada.obi", College: models.CollegeCST}, nil
		},
	}})

	app := fiber.New()
	app.Get("/api/users/me", as(userID), srv.GetMyProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.User
	decodeBody(t, resp, &body)
	assert.Equal(t, userID, body.ID)
	assert.Equal(t, "ada.obi", body.Username)
}

func TestUpdateMyProfileHandler(t *testing.T) {
	userID := uuid.New()
	srv := newHandlerServer(handlerRepos{users: &stubUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, Username: "ada.obi", Bio: "old bio"}, nil
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}})

	app := fiber.New()
	app.Put("/api/users/me", as(userID), srv.UpdateMyProfile)

	req := jsonRequest(t, http.MethodPut, "/api/users/me", fiber.Map{
		"display_name": "Ada O.",
		"bio":          "Robotics and embedded systems.",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.User
	decodeBody(t, resp, &body)
	assert.Equal(t, "Ada O.", body.DisplayName)
	assert.Equal(t, "Robotics and embedded systems.", body.Bio)
	assert.Equal(t, "ada.obi", body.Username)
}

func TestGetUserStatsHandler(t *testing.T) {
	userID := uuid.New()
	srv := newHandlerServer(handlerRepos{users: &stubUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, Username: "ada.obi"}, nil
		},
		statsFn: func(_ context.Context, id uuid.UUID) (*models.UserStats, error) {
			require.Equal(t, userID, id)
			return &models.UserStats{
				PostsCount:       12,
				CommentsCount:    40,
				CommunitiesCount: 3,
				UpvotesReceived:  87,
			}, nil
		},
	}})

	app := fiber.New()
	app.Get("/api/users/:id/stats", srv.GetUserStats)

	resp, err := app.Test(httptest.NewRequest(
		http.MethodGet, "/api/users/"+userID.String()+"/stats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.UserStats
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(12), body.PostsCount)
	assert.Equal(t, int64(40), body.CommentsCount)
	assert.Equal(t, int64(3), body.CommunitiesCount)
	assert.Equal(t, int64(87), body.UpvotesReceived)
}

func TestGetUserProfileHandlerNotFound(t *testing.T) {
	srv := newHandlerServer(handlerRepos{users: &stubUserRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}})

	app := fiber.New()
	app.Get("/api/users/:id", srv.GetUserProfile)

	resp, err := app.Test(httptest.NewRequest(
		http.MethodGet, "/api/users/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
