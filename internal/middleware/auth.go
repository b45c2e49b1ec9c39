package middleware

import (
	"net/http"
	"strings"

	"github.com/GodwinAdu/campus-forum/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys for storing claims in gin.Context.
//
// Constants instead of inline strings: a typo in c.Get("usr_id")
// compiles fine but silently returns nil. With constants, the compiler
// catches it, and handlers and middleware agree on the same keys.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyTenantID = "tenant_id"
	ContextKeyEmail    = "email"
)

// AuthMiddleware returns a Gin middleware that validates JWT tokens.
//
// It runs BEFORE the actual handler. If the token is missing or
// invalid, c.Abort() stops the chain and the client gets a 401; the
// handler never runs. If valid, the claims land in the request context
// and the chain continues.
//
// The secret comes in as a parameter so the middleware doesn't import
// the config package — main.go passes cfg.JWTSecret when wiring up,
// and tests pass whatever they like.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Expected format: "Bearer eyJhbGciOi..."
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}
		tokenString := parts[1]

		// Checks signature, expiry, and signing method in one go.
		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyTenantID, claims.TenantID)
		c.Set(ContextKeyEmail, claims.Email)

		c.Next()
	}
}

// ---------------------------------------------------------------
// Helper functions for handlers to extract claims from context.
//
// c.Get() returns (any, bool); these do the type assertion once, in one
// place. If the key is missing they return uuid.Nil — a safe zero value
// that fails any membership lookup gracefully.
// ---------------------------------------------------------------

func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetTenantID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyTenantID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetEmail(c *gin.Context) string {
	val, exists := c.Get(ContextKeyEmail)
	if !exists {
		return ""
	}
	email, ok := val.(string)
	if !ok {
		return ""
	}
	return email
}
