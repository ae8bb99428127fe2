package middlewares

import (
	"log"
	"net/http"

	"github.com/GameNest/models"
	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
)

// PrincipalKey is the gin context key holding the resolved models.Principal.
const PrincipalKey = "principal"

// CheckAuth rejects requests without a valid bearer token.
func CheckAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := tokens.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present. An invalid
// token is logged and the request continues as anonymous.
func OptionalAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := tokens.Resolve(c.GetHeader("Authorization"))
		if err != nil && err != services.ErrNoCredential {
			log.Printf("Ignoring credential on %s %s: %v", c.Request.Method, c.FullPath(), err)
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal returns the caller attached by CheckAuth or OptionalAuth,
// or an anonymous principal.
func CurrentPrincipal(c *gin.Context) models.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Anonymous()
}
