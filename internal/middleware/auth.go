package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Capability names accepted in token claims.
const (
	CapabilityPost   = "post"
	CapabilityReport = "report"
)

// LedgerClaims are the JWT claims issued to ledger clients. Capabilities
// gate write (post) and read (report) access separately so a booking system
// can post entries without being able to pull financial statements.
type LedgerClaims struct {
	jwt.RegisteredClaims
	Capabilities []string `json:"caps"`
}

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve logger from the standard context
		logger := GetLoggerFromCtx(c.Request.Context())
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]

		// Parse and validate the token
		token, err := jwt.ParseWithClaims(tokenString, &LedgerClaims{}, func(token *jwt.Token) (interface{}, error) {
			// Check the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		}, jwt.WithIssuer(issuer))

		if err != nil {
			logger.Warn("Invalid token", "error", err)
			status := http.StatusUnauthorized
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		claims, ok := token.Claims.(*LedgerClaims)
		if !ok || !token.Valid {
			logger.Warn("Invalid token claims or token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		userID := claims.Subject
		if userID == "" {
			logger.Error("User ID (subject) missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		// Store the user ID and capabilities in the request context
		ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, userID)
		ctxWithCaps := context.WithValue(ctxWithUser, capabilitiesKey, claims.Capabilities)

		// Add user ID to the logger
		enrichedLogger := logger.With(slog.String("user_id", userID))

		// Store the *enriched* logger back into the standard context
		ctxWithLoggerAndUser := context.WithValue(ctxWithCaps, loggerCtxKey, enrichedLogger)

		// Update the request context
		c.Request = c.Request.WithContext(ctxWithLoggerAndUser)

		c.Next()
	}
}

// RequireCapability creates a Gin middleware that rejects requests whose
// token does not carry the named capability. It must run after
// AuthMiddleware.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps := getCapabilitiesFromContext(c)
		for _, cap := range caps {
			if cap == capability {
				c.Next()
				return
			}
		}

		GetLoggerFromCtx(c.Request.Context()).Warn("Capability missing",
			slog.String("required", capability))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
