// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"leadscope-service/internal/pkg/response"
	"leadscope-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.AuthService
}

func NewAuthMiddleware(authService *auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the bearer token and stores the agent identity on the
// request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("agent_id", claims.AgentID)
		c.Set("agent_name", claims.DisplayName)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// extractToken pulls the Bearer token from the Authorization header, falling
// back to the token query param for websocket upgrades.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}

// GetAgentID reads the authenticated agent's id from the request context.
func GetAgentID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("agent_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetAgentID reads the agent id or panics; only valid behind Auth().
func MustGetAgentID(c *gin.Context) int64 {
	id, ok := GetAgentID(c)
	if !ok {
		panic("agent_id not found in context")
	}
	return id
}
