package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brunodmn/pokehub/internal/database/testutil"
	"github.com/brunodmn/pokehub/internal/models"
	apperrors "github.com/brunodmn/pokehub/pkg/errors"
)

func newCollectionService(t *testing.T) (*CollectionService, *UserService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	collections, err := NewCollectionService(db)
	require.NoError(t, err)
	users, err := NewUserService(db)
	require.NoError(t, err)
	return collections, users
}

func makeOwner(t *testing.T, users *UserService, login string) string {
	t.Helper()

	user, err := users.Register(context.Background(), registerInput(login))
	require.NoError(t, err)
	return user.ID
}

func memberInput(code string) MemberInput {
	return MemberInput{Code: code, Name: "mon-" + code}
}

func TestAddTeamMemberEnforcesCapacity(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	owner := makeOwner(t, users, "ash")

	for i := 0; i < TeamCapacity; i++ {
		_, err := collections.AddTeamMember(ctx, owner, memberInput(fmt.Sprintf("%d", i+1)))
		require.NoError(t, err)
	}

	_, err := collections.AddTeamMember(ctx, owner, memberInput("7"))
	require.ErrorIs(t, err, ErrTeamFull)

	team, err := collections.ListTeam(ctx, owner)
	require.NoError(t, err)
	require.Len(t, team, TeamCapacity)
}

func TestTeamCapacityIsPerOwner(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	ash := makeOwner(t, users, "ash")
	misty := makeOwner(t, users, "misty")

	for i := 0; i < TeamCapacity; i++ {
		_, err := collections.AddTeamMember(ctx, ash, memberInput(fmt.Sprintf("%d", i+1)))
		require.NoError(t, err)
	}

	_, err := collections.AddTeamMember(ctx, misty, memberInput("120"))
	require.NoError(t, err)
}

func TestConcurrentAddsNeverExceedCapacity(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	owner := makeOwner(t, users, "ash")

	for i := 0; i < TeamCapacity-1; i++ {
		_, err := collections.AddTeamMember(ctx, owner, memberInput(fmt.Sprintf("%d", i+1)))
		require.NoError(t, err)
	}

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = collections.AddTeamMember(ctx, owner, memberInput(fmt.Sprintf("r%d", i)))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrTeamFull)
		}
	}
	require.Equal(t, 1, succeeded)

	team, err := collections.ListTeam(ctx, owner)
	require.NoError(t, err)
	require.Len(t, team, TeamCapacity)
}

func TestAddFavoriteHasNoCap(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	owner := makeOwner(t, users, "ash")

	for i := 0; i < TeamCapacity+3; i++ {
		_, err := collections.AddFavorite(ctx, owner, memberInput(fmt.Sprintf("%d", i+1)))
		require.NoError(t, err)
	}

	favorites, err := collections.ListFavorites(ctx, owner)
	require.NoError(t, err)
	require.Len(t, favorites, TeamCapacity+3)
}

func TestAddFavoriteWithTeamFlagConsumesSlot(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	owner := makeOwner(t, users, "ash")

	for i := 0; i < TeamCapacity; i++ {
		_, err := collections.AddTeamMember(ctx, owner, memberInput(fmt.Sprintf("%d", i+1)))
		require.NoError(t, err)
	}

	input := memberInput("120")
	input.IsTeamMember = true
	_, err := collections.AddFavorite(ctx, owner, input)
	require.ErrorIs(t, err, ErrTeamFull)
}

func TestAddFavoriteWithTeamFlagFlagsBoth(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	owner := makeOwner(t, users, "ash")

	input := memberInput("120")
	input.IsTeamMember = true
	member, err := collections.AddFavorite(ctx, owner, input)
	require.NoError(t, err)
	require.True(t, member.IsTeamMember)
	require.True(t, member.IsFavorite)

	team, err := collections.ListTeam(ctx, owner)
	require.NoError(t, err)
	require.Len(t, team, 1)

	favorites, err := collections.ListFavorites(ctx, owner)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
}

func TestAddValidatesInput(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	owner := makeOwner(t, users, "ash")

	_, err := collections.AddTeamMember(ctx, owner, MemberInput{Name: "staryu"})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrBadRequest.Code, apperrors.FromError(err).Code)

	_, err = collections.AddFavorite(ctx, owner, MemberInput{Code: "120"})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrBadRequest.Code, apperrors.FromError(err).Code)
}

func TestRemoveChecksOwnershipAndFlag(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	ash := makeOwner(t, users, "ash")
	misty := makeOwner(t, users, "misty")

	member, err := collections.AddTeamMember(ctx, ash, memberInput("25"))
	require.NoError(t, err)

	// Another owner cannot remove it.
	require.ErrorIs(t, collections.RemoveTeamMember(ctx, misty, member.ID), ErrMemberNotFound)

	// The row is not flagged as favorite, so the favorite path misses it.
	require.ErrorIs(t, collections.RemoveFavorite(ctx, ash, member.ID), ErrMemberNotFound)

	require.NoError(t, collections.RemoveTeamMember(ctx, ash, member.ID))
	require.ErrorIs(t, collections.RemoveTeamMember(ctx, ash, member.ID), ErrMemberNotFound)
}

func TestListsAreScopedAndOrdered(t *testing.T) {
	collections, users := newCollectionService(t)
	ctx := context.Background()
	ash := makeOwner(t, users, "ash")
	misty := makeOwner(t, users, "misty")

	first, err := collections.AddTeamMember(ctx, ash, memberInput("1"))
	require.NoError(t, err)
	second, err := collections.AddTeamMember(ctx, ash, memberInput("2"))
	require.NoError(t, err)
	_, err = collections.AddTeamMember(ctx, misty, memberInput("3"))
	require.NoError(t, err)

	team, err := collections.ListTeam(ctx, ash)
	require.NoError(t, err)
	require.Len(t, team, 2)
	require.Equal(t, first.ID, team[0].ID)
	require.Equal(t, second.ID, team[1].ID)

	favorites, err := collections.ListFavorites(ctx, ash)
	require.NoError(t, err)
	require.Empty(t, favorites)
}

func TestMemberKeepsTypeReference(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedData())
	collections, err := NewCollectionService(db)
	require.NoError(t, err)
	users, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()
	owner := makeOwner(t, users, "ash")

	var waterType models.PokemonType
	require.NoError(t, db.Where("slug = ?", "water").First(&waterType).Error)

	input := memberInput("120")
	input.TypeID = &waterType.ID
	member, err := collections.AddFavorite(ctx, owner, input)
	require.NoError(t, err)
	require.NotNil(t, member.TypeID)
	require.Equal(t, waterType.ID, *member.TypeID)
}
