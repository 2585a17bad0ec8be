package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/internal/service"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
	"github.com/noah-isme/practicum-journal-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token from the identity service.
func JWT(sessions tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := sessions.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		attach(c, claims)
		c.Next()
	}
}

// UserID returns the authenticated subject for request logging.
func UserID(c *gin.Context) string {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return ""
	}
	claims, _ := value.(*models.JWTClaims)
	return claims.UserID()
}

func attach(c *gin.Context, claims *models.JWTClaims) {
	c.Set(ContextUserKey, claims)
	c.Request = c.Request.WithContext(service.WithClaims(c.Request.Context(), claims))
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
