package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"
)

// LanguageLookup returns the preferred language of a user or "".
type LanguageLookup func(ctx context.Context, userID uint) string

// Locale announces the authenticated user's preferred language in Content-Language.
func Locale(lookup LanguageLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := UserID(c); ok {
			if lang := lookup(c.Request.Context(), id); lang != "" {
				c.Header("Content-Language", lang)
			}
		}
		c.Next()
	}
}
