package services

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// AuthService resolves a bearer token into an identity with an effective
// role. Resolution happens per request; there is no session-level caching.
type AuthService struct {
	jwtSecret        []byte
	superAdminEmails map[string]struct{}
	roles            repository.RoleRepository
}

// NewAuthService creates a new auth service
func NewAuthService(jwtSecret string, superAdminEmails []string, roles repository.RoleRepository) *AuthService {
	allow := make(map[string]struct{}, len(superAdminEmails))
	for _, email := range superAdminEmails {
		allow[strings.ToLower(email)] = struct{}{}
	}
	return &AuthService{
		jwtSecret:        []byte(jwtSecret),
		superAdminEmails: allow,
		roles:            roles,
	}
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ResolveIdentity validates the token and resolves the caller's effective
// role: allow-listed emails short-circuit to super_admin regardless of the
// stored role, anything else falls back to the stored role lookup with
// unknown values normalized to user.
func (s *AuthService) ResolveIdentity(tokenString string) (*models.Identity, error) {
	if len(s.jwtSecret) == 0 {
		return nil, apperr.Configuration("JWT_SECRET is not set")
	}
	if tokenString == "" {
		return nil, apperr.Unauthorized("missing bearer token")
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("token subject is not a user id")
	}

	identity := &models.Identity{
		UserID: userID,
		Email:  claims.Email,
	}

	// Allow-list override: a known operator account is always
	// super_admin, even if its stored role says otherwise.
	if _, ok := s.superAdminEmails[strings.ToLower(claims.Email)]; ok {
		identity.Role = models.RoleSuperAdmin
		return identity, nil
	}

	role, err := s.roles.GetRole(userID)
	if err != nil {
		return nil, apperr.Upstream("role lookup", err)
	}
	identity.Role = role
	return identity, nil
}

// RequireRole checks that the identity holds one of the given roles.
func RequireRole(identity *models.Identity, roles ...models.Role) error {
	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	return apperr.Forbidden("insufficient role")
}
