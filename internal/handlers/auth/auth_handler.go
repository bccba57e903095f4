// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"leadscope-service/internal/domain/agent"
	"leadscope-service/internal/middleware"
	"leadscope-service/internal/pkg/response"
	service "leadscope-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new agent account
func (h *AuthHandler) Register(c *gin.Context) {
	var req agent.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	a, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to register agent", err)
		return
	}

	response.Success(c, http.StatusCreated, "agent registered successfully", a)
}

// Login verifies credentials and issues a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req agent.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", result)
}

// Me returns the authenticated agent's profile
func (h *AuthHandler) Me(c *gin.Context) {
	agentID := middleware.MustGetAgentID(c)

	a, err := h.authService.GetAgent(c.Request.Context(), agentID)
	if err != nil {
		response.FromError(c, "failed to load agent", err)
		return
	}

	response.Success(c, http.StatusOK, "agent retrieved", a)
}
