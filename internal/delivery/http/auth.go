package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

const userContextKey = "user"

// Claims are the token claims issued by the identity provider
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the HS256 bearer token and loads the caller's
// profile fresh for every request. Flagged profiles are refused.
func AuthMiddleware(secret []byte, users domain.UserStore, logger zerolog.Logger) gin.HandlerFunc {
	logger = logger.With().Str("component", "auth").Logger()

	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			logger.Debug().Err(err).Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}
		if claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			logger.Error().Err(err).Str("user_id", claims.UserID).Msg("failed to load profile")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if user.IsFlagged {
			reason := user.FlaggedReason
			if reason == "" {
				reason = "Terms of service violation"
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account suspended", "reason": reason})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the profile loaded by AuthMiddleware, or nil
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
