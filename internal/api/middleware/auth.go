package middleware

import (
	"net/http"

	"heartline/backend/internal/apperr"
	"heartline/backend/internal/auth"
	"heartline/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userId"

// Auth rejects requests without a valid session token and stores the user
// id under UserIDKey.
func Auth(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := v.Authenticate(c.Request.Context(), auth.TokenFromRequest(c.Request))
		if err != nil {
			status := auth.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				logger.Error().Err(err).Msg("session lookup failed")
			}
			_ = c.Error(apperr.New(status, http.StatusText(status)))
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the id stored by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
