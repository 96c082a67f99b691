package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/brunodmn/pokehub/internal/models"
	"github.com/brunodmn/pokehub/pkg/crypto"
	apperrors "github.com/brunodmn/pokehub/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrSelfDeletion prevents administrators from deleting their own account.
	ErrSelfDeletion = apperrors.New("USER_SELF_DELETE", "You cannot delete your own account", http.StatusBadRequest)
)

// RegisterInput describes the fields accepted when registering a user.
type RegisterInput struct {
	Name     string
	Login    string
	Email    string
	Password string
}

// UserService manages registration, credential checks and account lifecycle.
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

// Register provisions a new user with a hashed password. The very first user
// registered in the system's lifetime is granted admin rights; the count and
// the insert share one transaction so two concurrent registrations cannot
// both come out admin.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	login := strings.TrimSpace(input.Login)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if login == "" {
		return nil, apperrors.NewBadRequest("login is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Login:    login,
		Email:    email,
		Password: hashed,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return fmt.Errorf("user service: count users: %w", err)
		}
		user.IsAdmin = count == 0

		return tx.Create(user).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("login or email already exists")
		}
		return nil, fmt.Errorf("user service: register: %w", err)
	}

	return user, nil
}

// Authenticate verifies the supplied credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "login = ?", login).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// ResetPassword changes the password of the user matching the supplied login
// or email address.
func (s *UserService) ResetPassword(ctx context.Context, loginOrEmail, newPassword string) error {
	ctx = ensureContext(ctx)

	loginOrEmail = strings.TrimSpace(loginOrEmail)
	if loginOrEmail == "" {
		return apperrors.NewBadRequest("login or email is required")
	}
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewBadRequest("new password is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("login = ? OR email = ?", loginOrEmail, strings.ToLower(loginOrEmail)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("user service: find user: %w", err)
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("user service: update password: %w", err)
	}
	return nil
}

// List retrieves all users, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// Delete removes a user and, through the cascade, their collection. Callers
// pass the acting user's id so self-deletion can be refused.
func (s *UserService) Delete(ctx context.Context, actorID, targetID string) error {
	ctx = ensureContext(ctx)

	if actorID == targetID {
		return ErrSelfDeletion
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.First(&user, "id = ?", targetID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("user service: find user: %w", err)
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CollectionMember{}).Error; err != nil {
			return fmt.Errorf("user service: delete collection: %w", err)
		}

		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("user service: delete user: %w", err)
		}
		return nil
	})
}
