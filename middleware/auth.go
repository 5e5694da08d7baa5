package middleware

import (
	"net/http"
	"strings"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

const (
	ClaimsKey   = "claims"
	CustomerKey = "customer"
)

// JWTAuthMiddleware verifies the bearer token and stores its claims and the
// derived CustomerContext on the request.
func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(CustomerKey, models.CustomerContext{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Email,
		})
		c.Next()
	}
}

// ClaimsFrom returns the verified claims set by JWTAuthMiddleware.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// CustomerFrom returns the authenticated customer.
func CustomerFrom(c *gin.Context) (models.CustomerContext, bool) {
	v, ok := c.Get(CustomerKey)
	if !ok {
		return models.CustomerContext{}, false
	}
	customer, ok := v.(models.CustomerContext)
	return customer, ok
}
