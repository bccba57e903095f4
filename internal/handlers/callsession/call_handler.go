// internal/handlers/callsession/call_handler.go
package callsession

import (
	"net/http"

	"leadscope-service/internal/domain/interaction"
	"leadscope-service/internal/middleware"
	"leadscope-service/internal/pkg/response"
	"leadscope-service/internal/service/calls"

	"github.com/gin-gonic/gin"
)

type StartRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required"`
}

type CallHandler struct {
	callService *calls.Service
}

func NewCallHandler(callService *calls.Service) *CallHandler {
	return &CallHandler{
		callService: callService,
	}
}

// StartCall opens a call session for the authenticated agent
func (h *CallHandler) StartCall(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	agentID := middleware.MustGetAgentID(c)
	sess, err := h.callService.Start(c.Request.Context(), agentID, req.CustomerID)
	if err != nil {
		response.FromError(c, "failed to start call session", err)
		return
	}

	response.Success(c, http.StatusCreated, "call session started", sess)
}

// Heartbeat keeps an in-flight call session alive
func (h *CallHandler) Heartbeat(c *gin.Context) {
	sess, err := h.callService.Heartbeat(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, "call session not found", err)
		return
	}

	response.Success(c, http.StatusOK, "heartbeat recorded", sess)
}

// GetSession retrieves an in-flight call session
func (h *CallHandler) GetSession(c *gin.Context) {
	sess, err := h.callService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, "call session not found", err)
		return
	}

	response.Success(c, http.StatusOK, "call session retrieved", sess)
}

// CompleteCall closes the session and ingests the post-call summary
func (h *CallHandler) CompleteCall(c *gin.Context) {
	var sum interaction.CallSummary
	if err := c.ShouldBindJSON(&sum); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	cust, rec, err := h.callService.Complete(c.Request.Context(), c.Param("id"), &sum)
	if err != nil {
		response.FromError(c, "failed to complete call session", err)
		return
	}

	response.Success(c, http.StatusOK, "call completed", gin.H{
		"customer":    cust,
		"interaction": rec,
	})
}
