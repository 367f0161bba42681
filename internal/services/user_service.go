package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/pkg/crypto"
	apperrors "github.com/plateup-dev/plateup/pkg/errors"
)

// CreateUserInput describes the fields accepted when creating an account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     models.Role
}

// UserService manages account lifecycle: creation, lookup, credential checks
// and onboarding status changes.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Create provisions a new account with a hashed password. New accounts start
// as EMAIL_UNVERIFIED; a duplicate email surfaces as the named EMAIL_TAKEN
// conflict so callers can show a specific message.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	role := input.Role
	switch role {
	case models.RoleCustomer, models.RoleRestaurant, models.RoleDriver:
	case "":
		role = models.RoleCustomer
	default:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown role %q", input.Role))
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hashed,
		Role:         role,
		Status:       models.StatusEmailUnverified,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies an email/password pair. Unknown emails and wrong
// passwords are reported identically.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}

	if !crypto.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Suspended {
		return nil, apperrors.ErrForbidden
	}

	return &user, nil
}

// ByID fetches a single user.
func (s *UserService) ByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// UpdateStatus moves an account to a new onboarding status.
func (s *UserService) UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("user service: update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetSuspended flips the suspension flag on an account.
func (s *UserService) SetSuspended(ctx context.Context, id string, suspended bool) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("suspended", suspended)
	if result.Error != nil {
		return fmt.Errorf("user service: set suspended: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
