// internal/handlers/interaction/interaction_handler.go
package interaction

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"leadscope-service/internal/domain/interaction"
	"leadscope-service/internal/middleware"
	"leadscope-service/internal/pkg/response"
	"leadscope-service/internal/service/pipeline"

	"github.com/gin-gonic/gin"
)

// Store is the read/annotate surface for stored interactions. Writes of new
// records go through the pipeline, never directly here.
type Store interface {
	FindByID(ctx context.Context, id int64) (*interaction.Interaction, error)
	ListRecentByCustomer(ctx context.Context, customerID int64, limit int) ([]*interaction.Interaction, error)
	SetFollowUpCompleted(ctx context.Context, id int64, completed bool) error
	AppendNote(ctx context.Context, id int64, note interaction.Note) error
}

type InteractionHandler struct {
	pipeline *pipeline.Service
	store    Store
}

func NewInteractionHandler(p *pipeline.Service, store Store) *InteractionHandler {
	return &InteractionHandler{
		pipeline: p,
		store:    store,
	}
}

// RecordInteraction ingests one exchange and returns the refreshed insight
func (h *InteractionHandler) RecordInteraction(c *gin.Context) {
	var req interaction.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	agentID := middleware.MustGetAgentID(c)
	cust, rec, err := h.pipeline.RecordInteraction(c.Request.Context(), &req, agentID)
	if err != nil {
		response.FromError(c, "failed to record interaction", err)
		return
	}

	response.Success(c, http.StatusCreated, "interaction recorded", gin.H{
		"interaction": rec,
		"customer":    cust,
	})
}

// GetInteraction retrieves one interaction by ID
func (h *InteractionHandler) GetInteraction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid interaction ID", err)
		return
	}

	rec, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "interaction not found", err)
		return
	}

	response.Success(c, http.StatusOK, "interaction retrieved", rec)
}

// ListCustomerInteractions returns a customer's history, newest first
func (h *InteractionHandler) ListCustomerInteractions(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	records, err := h.store.ListRecentByCustomer(c.Request.Context(), customerID, limit)
	if err != nil {
		response.FromError(c, "failed to list interactions", err)
		return
	}

	response.Success(c, http.StatusOK, "interactions retrieved", records)
}

// AddNote appends an agent note to an interaction
func (h *InteractionHandler) AddNote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid interaction ID", err)
		return
	}

	var req interaction.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	note := interaction.Note{
		Text:    req.Text,
		AgentID: middleware.MustGetAgentID(c),
		AddedAt: time.Now(),
	}
	if err := h.store.AppendNote(c.Request.Context(), id, note); err != nil {
		response.FromError(c, "failed to add note", err)
		return
	}

	response.Success(c, http.StatusOK, "note added", note)
}

// CompleteFollowUp marks an interaction's follow-up as done
func (h *InteractionHandler) CompleteFollowUp(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid interaction ID", err)
		return
	}

	var req interaction.CompleteFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.store.SetFollowUpCompleted(c.Request.Context(), id, req.Completed); err != nil {
		response.FromError(c, "failed to update follow-up", err)
		return
	}

	response.Success(c, http.StatusOK, "follow-up updated", gin.H{
		"interaction_id": id,
		"completed":      req.Completed,
	})
}
