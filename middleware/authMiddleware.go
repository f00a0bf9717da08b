package middleware

import (
	"net/http"

	"go-restaurant-ordering/helpers"

	"github.com/gin-gonic/gin"
)

// Authentication accepts a staff token from the "token" header, or from the
// "token" query parameter for websocket upgrades.
func Authentication(issuer *helpers.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := c.Request.Header.Get("token")
		if clientToken == "" {
			clientToken = c.Query("token")
		}
		if clientToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no authorization token provided"})
			return
		}
		claims, err := issuer.ValidateToken(clientToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set("email", claims.Email)
		c.Set("name", claims.Name)
		c.Set("uid", claims.Uid)
		c.Set("user_role", claims.User_role)
		c.Next()
	}
}

// RequireRole lets only the given roles through. It must run after Authentication.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized to access this resource"})
	}
}
