package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/utils"
)

const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
	ContextToken  = "token"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Authenticate identifies the user when a valid bearer token is present and lets
// anonymous requests through. Guards decide what anonymous users may do.
func Authenticate(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			claims, err := tokens.ParseToken(token)
			if err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextClaims, claims)
				c.Set(ContextToken, token)
			} else {
				utils.InfoLogger.Debugf("Ignoring bearer token: %v", err)
			}
		}
		c.Next()
	}
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClaims, claims)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// UserID returns the authenticated user of the request.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func Claims(c *gin.Context) (*utils.CustomClaims, string, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, "", false
	}
	claims, ok := v.(*utils.CustomClaims)
	return claims, c.GetString(ContextToken), ok
}
