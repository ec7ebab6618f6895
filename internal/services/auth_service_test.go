package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, userID uuid.UUID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestResolveIdentity_DefaultsToUserRole(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	svc := NewAuthService(testSecret, nil, fixtures.Roles())

	userID := uuid.New()
	identity, err := svc.ResolveIdentity(signToken(t, testSecret, userID, "anna@example.com"))
	require.NoError(t, err)

	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "anna@example.com", identity.Email)
	assert.Equal(t, models.RoleUser, identity.Role)
}

func TestResolveIdentity_StoredRole(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	svc := NewAuthService(testSecret, nil, fixtures.Roles())

	userID := uuid.New()
	_, err := fixtures.Roles().SetRole(userID, "mod@example.com", models.RoleAdmin)
	require.NoError(t, err)

	identity, err := svc.ResolveIdentity(signToken(t, testSecret, userID, "mod@example.com"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, identity.Role)
}

func TestResolveIdentity_AllowListBeatsStoredRole(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	svc := NewAuthService(testSecret, []string{"Owner@Example.com"}, fixtures.Roles())

	userID := uuid.New()
	_, err := fixtures.Roles().SetRole(userID, "owner@example.com", models.RoleUser)
	require.NoError(t, err)

	// Case-insensitive match, and the stored user role is overridden.
	identity, err := svc.ResolveIdentity(signToken(t, testSecret, userID, "owner@example.com"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, identity.Role)
}

func TestResolveIdentity_WrongSecret(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	svc := NewAuthService(testSecret, nil, fixtures.Roles())

	_, err := svc.ResolveIdentity(signToken(t, "other-secret", uuid.New(), "anna@example.com"))

	var auth *apperr.AuthError
	require.ErrorAs(t, err, &auth)
	assert.False(t, auth.Forbidden)
}

func TestResolveIdentity_MissingToken(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	svc := NewAuthService(testSecret, nil, fixtures.Roles())

	_, err := svc.ResolveIdentity("")

	var auth *apperr.AuthError
	require.ErrorAs(t, err, &auth)
}

func TestResolveIdentity_NoSecretConfigured(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	svc := NewAuthService("", nil, fixtures.Roles())

	_, err := svc.ResolveIdentity(signToken(t, testSecret, uuid.New(), "anna@example.com"))

	var conf *apperr.ConfigurationError
	require.ErrorAs(t, err, &conf)
}

func TestResolveIdentity_NonUUIDSubject(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	svc := NewAuthService(testSecret, nil, fixtures.Roles())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:            "anna@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ResolveIdentity(signed)
	var auth *apperr.AuthError
	require.ErrorAs(t, err, &auth)
}

func TestRequireRole(t *testing.T) {
	admin := &models.Identity{Role: models.RoleAdmin}
	user := &models.Identity{Role: models.RoleUser}

	assert.NoError(t, RequireRole(admin, models.RoleAdmin, models.RoleSuperAdmin))

	err := RequireRole(user, models.RoleAdmin, models.RoleSuperAdmin)
	var auth *apperr.AuthError
	require.ErrorAs(t, err, &auth)
	assert.True(t, auth.Forbidden)
}
