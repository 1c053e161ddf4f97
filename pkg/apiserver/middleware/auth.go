package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/empresasintegra/leykarin/pkg/auth"
)

// TokenCookie is where the browser client keeps the admin session token.
const TokenCookie = "leykarin_token"

// ClaimsKey is the gin context key holding the validated *auth.Claims.
const ClaimsKey = "admin_claims"

// AdminAuth validates the admin token from the Authorization header or the
// session cookie and stores its claims in the request context.
func AdminAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "no autenticado",
			})
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "sesión inválida o expirada",
			})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authorization := c.GetHeader("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
