// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"relay/internal/models"
	"relay/internal/repository"
	"relay/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
}

type RegisterInput struct {
	Email      string
	Password   string
	College    models.College
	Department string
	Role       models.UserRole
	Interests  []string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateProfileInput struct {
	UserID      uuid.UUID
	DisplayName string
	AvatarURL   string
	Bio         string
	Department  string
	Interests   []string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates an account for a campus email address. The username is
// derived from the email local part; collisions get a random numeric suffix.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if err := validation.ValidateEmailDomain(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !models.ValidCollege(in.College) {
		return nil, models.NewValidationError("Invalid college")
	}
	if len(in.Interests) > 0 && len(in.Interests) < 3 {
		return nil, models.NewValidationError("Select at least 3 interests")
	}

	role := in.Role
	if role == "" {
		role = models.UserRoleStudent
	}
	if !models.ValidUserRole(role) {
		return nil, models.NewValidationError("Invalid role")
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("An account with this email already exists")
	}

	username, err := s.deriveUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		DisplayName:    username,
		HashedPassword: string(hashed),
		Role:           role,
		College:        in.College,
		Department:     in.Department,
		Interests:      in.Interests,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the EmailExists pre-check;
		// the store's unique constraint is the backstop.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("An account with this email or username already exists")
		}
		return nil, err
	}
	return user, nil
}

// deriveUsername takes the email local part and appends a random 100-999
// suffix while the name is taken.
func (s *UserService) deriveUsername(ctx context.Context, email string) (string, error) {
	base := email[:strings.Index(email, "@")]
	if err := validation.ValidateUsername(base); err != nil {
		return "", models.NewValidationError(err.Error())
	}

	candidate := base
	for attempt := 0; attempt < 10; attempt++ {
		taken, err := s.userRepo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, 100+rand.Intn(900))
	}
	return "", models.NewConflictError("Could not allocate a unique username")
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != "" {
		user.DisplayName = in.DisplayName
	}
	if in.AvatarURL != "" {
		user.AvatarURL = in.AvatarURL
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Department != "" {
		user.Department = in.Department
	}
	if in.Interests != nil {
		user.Interests = in.Interests
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Stats returns the activity counters shown on a user's profile page.
func (s *UserService) Stats(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return s.userRepo.Stats(ctx, id)
}

// IsAdmin reports whether the user holds the platform Admin role. Services
// that need an admin override receive this as an injected func.
func (s *UserService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}
