package middleware

import (
	"net/http"
	"strings"

	"linklytics-be/internal/jwt"
	"linklytics-be/internal/plan"

	"github.com/gin-gonic/gin"
)

// Context keys populated by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextPlan   = "plan"
)

// AuthMiddleware verifies the bearer token and stores the caller's identity
// and plan tier in the gin context. Missing identity blocks owner-scoped
// routes but never the public redirect path, which is mounted without it.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Unauthorized. Please log in again.",
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid session or token",
			})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextPlan, string(plan.Normalize(claims.Plan)))
		c.Next()
	}
}

// RequirePremium rejects callers whose plan tier is FREE. Must run after
// AuthMiddleware.
func RequirePremium() gin.HandlerFunc {
	return func(c *gin.Context) {
		tier := plan.Normalize(c.GetString(ContextPlan))
		if !plan.IsPremium(tier) {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Premium plan required to access this resource.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
