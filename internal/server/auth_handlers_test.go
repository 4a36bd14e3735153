package server

import (
	"context"
	"net/http"
	"testing"

	"relay/internal/config"
	"relay/internal/middleware"
	"relay/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	middleware.InitMiddleware(&config.Config{JWTSecret: "handler-test-secret"})
}

func TestRegisterHandler(t *testing.T) {
	initTestJWT(t)

	srv := newHandlerServer(handlerRepos{users: &stubUserRepo{
		emailExistsFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
		usernameExistsFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
		createFn: func(_ context.Context, user *models.User) error {
			user.ID = uuid.New()
			return nil
		},
	}})

	app := fiber.New()
	app.Post("/api/auth/register", srv.RegisterUser)

	req := jsonRequest(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"email":      "ada.obi@stu.cu.edu.ng",
		"password":   "correct-horse",
		"college":    "CST",
		"department": "Computer Science",
		"role":       "Student",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body authResponse
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	require.NotNil(t, body.User)
	assert.Equal(t, "ada.obi", body.User.Username)
	assert.Equal(t, "ada.obi@stu.cu.edu.ng", body.User.Email)
}

func TestRegisterHandlerRejectsOutsideDomain(t *testing.T) {
	initTestJWT(t)
	srv := newHandlerServer(handlerRepos{})

	app := fiber.New()
	app.Post("/api/auth/register", srv.RegisterUser)

	req := jsonRequest(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"email":      "ada.obi@gmail.com",
		"password":   "correct-horse",
		"college":    "CST",
		"department": "Computer Science",
		"role":       "Student",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
}

func TestLoginHandler(t *testing.T) {
	initTestJWT(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &models.User{
		ID:             uuid.New(),
		Username:       "ada.obi",
		Email:          "ada.obi@stu.cu.edu.ng",
		HashedPassword: string(hash),
	}

	srv := newHandlerServer(handlerRepos{users: &stubUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			require.Equal(t, account.Email, email)
			return account, nil
		},
	}})

	app := fiber.New()
	app.Post("/api/auth/login", srv.Login)

	req := jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ada.obi@stu.cu.edu.ng",
		"password": "correct-horse",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body authResponse
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	require.NotNil(t, body.User)
	assert.Equal(t, account.ID, body.User.ID)
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	initTestJWT(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	srv := newHandlerServer(handlerRepos{users: &stubUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: uuid.New(), HashedPassword: string(hash)}, nil
		},
	}})

	app := fiber.New()
	app.Post("/api/auth/login", srv.Login)

	req := jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ada.obi@stu.cu.edu.ng",
		"password": "wrong-horse",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}
