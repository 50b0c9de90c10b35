package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// ProfileHeader carries the optional quota profile of a request.
const ProfileHeader = "X-Profile-ID"

const profileKey = "profileId"

var profileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ProfileMiddleware stores the X-Profile-ID header for handlers. Requests
// without one are anonymous.
func ProfileMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := c.GetHeader(ProfileHeader)
		if profileID != "" && !profileIDPattern.MatchString(profileID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + ProfileHeader + " header"})
			c.Abort()
			return
		}
		c.Set(profileKey, profileID)
		c.Next()
	}
}

// GetProfileID returns the request's profile id, or "" when anonymous.
func GetProfileID(c *gin.Context) string {
	return c.GetString(profileKey)
}
