package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID in the
// request context.
const userIDKey = contextKey("userID")

// capabilitiesKey is the key used to store the token's capability list.
const capabilitiesKey = contextKey("capabilities")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		// This should not happen if the auth middleware sets it correctly
		return "", false
	}

	return userID, true
}

func getCapabilitiesFromContext(c *gin.Context) []string {
	capsVal := c.Request.Context().Value(capabilitiesKey)
	if capsVal == nil {
		return nil
	}
	caps, ok := capsVal.([]string)
	if !ok {
		return nil
	}
	return caps
}
