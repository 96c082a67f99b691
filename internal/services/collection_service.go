package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/brunodmn/pokehub/internal/models"
	apperrors "github.com/brunodmn/pokehub/pkg/errors"
)

// TeamCapacity is the maximum number of battle team members per user.
const TeamCapacity = 6

var (
	// ErrTeamFull signals the six-member battle team cap was reached.
	ErrTeamFull = apperrors.New("TEAM_FULL", "Battle team already has 6 members", http.StatusBadRequest)
	// ErrMemberNotFound covers both missing and not-owned rows so existence
	// of other users' members never leaks.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "Collection member not found", http.StatusNotFound)
)

// MemberInput describes a Pokémon being added to a user's collection.
type MemberInput struct {
	Code         string
	Name         string
	TypeID       *string
	ImageURL     *string
	IsTeamMember bool
	IsFavorite   bool
}

// CollectionService manages per-user favorites and the battle team.
type CollectionService struct {
	db *gorm.DB

	// ownerLocks serializes the team capacity check-then-insert per owner so
	// two adds racing at count=5 cannot both commit a seventh member.
	ownerLocks sync.Map // userID -> *sync.Mutex
}

// NewCollectionService constructs a CollectionService instance.
func NewCollectionService(db *gorm.DB) (*CollectionService, error) {
	if db == nil {
		return nil, errors.New("collection service: db is required")
	}
	return &CollectionService{db: db}, nil
}

func (s *CollectionService) lockOwner(userID string) func() {
	value, _ := s.ownerLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func validateMemberInput(input MemberInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return apperrors.NewBadRequest("code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewBadRequest("name is required")
	}
	return nil
}

// AddTeamMember inserts a battle team row for the owner, enforcing the
// six-member cap. The favorite flag may be set on the same row.
func (s *CollectionService) AddTeamMember(ctx context.Context, ownerID string, input MemberInput) (*models.CollectionMember, error) {
	ctx = ensureContext(ctx)

	if err := validateMemberInput(input); err != nil {
		return nil, err
	}

	unlock := s.lockOwner(ownerID)
	defer unlock()

	member := &models.CollectionMember{
		UserID:       ownerID,
		TypeID:       input.TypeID,
		Code:         strings.TrimSpace(input.Code),
		Name:         strings.TrimSpace(input.Name),
		ImageURL:     input.ImageURL,
		IsTeamMember: true,
		IsFavorite:   input.IsFavorite,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.CollectionMember{}).
			Where("user_id = ? AND is_team_member = ?", ownerID, true).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("collection service: count team: %w", err)
		}
		if count >= TeamCapacity {
			return ErrTeamFull
		}

		return tx.Create(member).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("collection service: add team member: %w", err)
	}

	return member, nil
}

// AddFavorite inserts a favorite row for the owner. Favorites have no cap;
// the team flag may be set on the same row, subject to the cap.
func (s *CollectionService) AddFavorite(ctx context.Context, ownerID string, input MemberInput) (*models.CollectionMember, error) {
	ctx = ensureContext(ctx)

	if err := validateMemberInput(input); err != nil {
		return nil, err
	}

	if input.IsTeamMember {
		// Adding a favorite that is also a team member still consumes a
		// team slot, so it goes through the capacity-checked path.
		input.IsFavorite = true
		return s.AddTeamMember(ctx, ownerID, input)
	}

	member := &models.CollectionMember{
		UserID:     ownerID,
		TypeID:     input.TypeID,
		Code:       strings.TrimSpace(input.Code),
		Name:       strings.TrimSpace(input.Name),
		ImageURL:   input.ImageURL,
		IsFavorite: true,
	}

	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, fmt.Errorf("collection service: add favorite: %w", err)
	}
	return member, nil
}

// RemoveTeamMember deletes the owner's team row. Rows that do not exist, that
// belong to someone else, or that are not team members all report not-found.
func (s *CollectionService) RemoveTeamMember(ctx context.Context, ownerID, memberID string) error {
	return s.removeFlagged(ctx, ownerID, memberID, "is_team_member")
}

// RemoveFavorite deletes the owner's favorite row, gated on the favorite flag.
func (s *CollectionService) RemoveFavorite(ctx context.Context, ownerID, memberID string) error {
	return s.removeFlagged(ctx, ownerID, memberID, "is_favorite")
}

func (s *CollectionService) removeFlagged(ctx context.Context, ownerID, memberID, flagColumn string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND "+flagColumn+" = ?", memberID, ownerID, true).
		Delete(&models.CollectionMember{})
	if result.Error != nil {
		return fmt.Errorf("collection service: remove member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ListTeam returns the owner's battle team members.
func (s *CollectionService) ListTeam(ctx context.Context, ownerID string) ([]models.CollectionMember, error) {
	return s.listFlagged(ctx, ownerID, "is_team_member")
}

// ListFavorites returns the owner's favorites.
func (s *CollectionService) ListFavorites(ctx context.Context, ownerID string) ([]models.CollectionMember, error) {
	return s.listFlagged(ctx, ownerID, "is_favorite")
}

func (s *CollectionService) listFlagged(ctx context.Context, ownerID, flagColumn string) ([]models.CollectionMember, error) {
	ctx = ensureContext(ctx)

	members := []models.CollectionMember{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND "+flagColumn+" = ?", ownerID, true).
		Order("created_at").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("collection service: list members: %w", err)
	}
	return members, nil
}
