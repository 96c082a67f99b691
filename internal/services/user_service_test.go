package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brunodmn/pokehub/internal/database/testutil"
	"github.com/brunodmn/pokehub/internal/models"
	apperrors "github.com/brunodmn/pokehub/pkg/errors"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)
	return svc
}

func registerInput(login string) RegisterInput {
	return RegisterInput{
		Name:     "Trainer " + login,
		Login:    login,
		Email:    login + "@example.com",
		Password: "secret-pw",
	}
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, registerInput("ash"))
	require.NoError(t, err)
	require.True(t, first.IsAdmin)

	second, err := svc.Register(ctx, registerInput("misty"))
	require.NoError(t, err)
	require.False(t, second.IsAdmin)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.Register(context.Background(), registerInput("brock"))
	require.NoError(t, err)
	require.NotEqual(t, "secret-pw", user.Password)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("ash"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput("ash"))
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterRequiresFields(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Login: "a", Email: "a@b.c", Password: "p"},
		{Name: "n", Email: "a@b.c", Password: "p"},
		{Name: "n", Login: "a", Password: "p"},
		{Name: "n", Login: "a", Email: "a@b.c"},
	}
	for _, input := range cases {
		_, err := svc.Register(ctx, input)
		require.Error(t, err)
		require.Equal(t, apperrors.ErrBadRequest.Code, apperrors.FromError(err).Code)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerInput("ash"))
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "ash", "secret-pw")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "ash", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret-pw")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestResetPasswordByLoginOrEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("ash"))
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "ash", "new-pw"))
	_, err = svc.Authenticate(ctx, "ash", "new-pw")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "ash@example.com", "newer-pw"))
	_, err = svc.Authenticate(ctx, "ash", "newer-pw")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, "ghost@example.com", "pw")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("ash"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerInput("misty"))
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.False(t, users[0].CreatedAt.Before(users[1].CreatedAt))
}

func TestDeleteUserCascadesAndGuardsSelf(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	admin, err := svc.Register(ctx, registerInput("ash"))
	require.NoError(t, err)
	victim, err := svc.Register(ctx, registerInput("misty"))
	require.NoError(t, err)

	member := models.CollectionMember{UserID: victim.ID, Code: "120", Name: "staryu", IsFavorite: true}
	require.NoError(t, db.Create(&member).Error)

	require.ErrorIs(t, svc.Delete(ctx, admin.ID, admin.ID), ErrSelfDeletion)

	require.NoError(t, svc.Delete(ctx, admin.ID, victim.ID))

	_, err = svc.GetByID(ctx, victim.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	require.NoError(t, db.Model(&models.CollectionMember{}).Where("user_id = ?", victim.ID).Count(&count).Error)
	require.Zero(t, count)

	require.ErrorIs(t, svc.Delete(ctx, admin.ID, victim.ID), ErrUserNotFound)
}
