package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

const identityKey = "identity"

// SetupCORS configures CORS middleware
func SetupCORS() gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000", // storefront
			"http://localhost:4200", // admin back-office
			"https://shop.maison-cacao.example",
			"https://admin.maison-cacao.example",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "Content-Disposition", "X-Total-Count",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	return cors.New(config)
}

// RequestLogger logs HTTP requests
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	})
}

// Recovery recovers from panics
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Message: "Internal server error",
		})
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// SecurityHeaders sets the usual response hardening headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// Auth resolves the bearer token into an identity and stores it on the
// context. Resolution runs on every request; roles are never cached across
// requests.
func Auth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			token = ""
		}

		identity, err := auth.ResolveIdentity(token)
		if err != nil {
			c.AbortWithStatusJSON(apperr.HTTPStatus(err), models.APIResponse{
				Success: false,
				Message: apperr.PublicMessage(err),
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Message: "missing identity",
			})
			return
		}
		if err := services.RequireRole(identity, roles...); err != nil {
			c.AbortWithStatusJSON(apperr.HTTPStatus(err), models.APIResponse{
				Success: false,
				Message: apperr.PublicMessage(err),
			})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the resolved identity, or nil outside Auth routes.
func IdentityFrom(c *gin.Context) *models.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}
