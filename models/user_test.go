package models_test

import (
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateRequiresRotationOfDefaultPassword(t *testing.T) {
	ctx := openTestDB(t)

	user, err := models.Authenticate(ctx, "admin", "admin123")
	require.ErrorIs(t, err, models.ErrPasswordChangeRequired)
	require.NotNil(t, user)
	assert.True(t, user.IsAdmin())

	_, err = models.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = models.Authenticate(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = models.ChangePassword(ctx, "admin", "admin123", "n3w-secret")
	require.NoError(t, err)

	user, err = models.Authenticate(ctx, "admin", "n3w-secret")
	require.NoError(t, err)
	assert.False(t, user.NeedsPasswordChange())

	_, err = models.Authenticate(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestCreateUser(t *testing.T) {
	ctx := openTestDB(t)

	user, err := models.CreateUser(ctx, &models.NewUser{Username: " clerk ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "clerk", user.Username)
	assert.Equal(t, models.UserRoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = models.CreateUser(ctx, &models.NewUser{Username: "clerk", Password: "secret2"})
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)

	_, err = models.CreateUser(ctx, &models.NewUser{Username: "short", Password: "123"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = models.CreateUser(ctx, &models.NewUser{Username: "boss", Password: "secret1", Role: "owner"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	logged, err := models.Authenticate(ctx, "clerk", "secret1")
	require.NoError(t, err)
	assert.False(t, logged.IsAdmin())
}
