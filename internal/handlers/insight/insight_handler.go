// internal/handlers/insight/insight_handler.go
package insight

import (
	"net/http"
	"strconv"

	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/pkg/response"
	"leadscope-service/internal/service/pipeline"

	"github.com/gin-gonic/gin"
)

type InsightHandler struct {
	pipeline *pipeline.Service
}

func NewInsightHandler(p *pipeline.Service) *InsightHandler {
	return &InsightHandler{
		pipeline: p,
	}
}

// GetAssist builds channel-specific suggestions for talking to a customer
func (h *InsightHandler) GetAssist(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	channel := insight.Channel(c.DefaultQuery("channel", string(insight.ChannelEmail)))

	bundle, err := h.pipeline.Assist(c.Request.Context(), customerID, channel)
	if err != nil {
		response.FromError(c, "failed to build assist", err)
		return
	}

	response.Success(c, http.StatusOK, "assist generated", bundle)
}

// GetRecommendations returns the prioritized next actions for a customer
func (h *InsightHandler) GetRecommendations(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	recs, err := h.pipeline.Recommendations(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, "failed to build recommendations", err)
		return
	}

	response.Success(c, http.StatusOK, "recommendations generated", recs)
}

// RefreshInsight forces a recompute of intent and score
func (h *InsightHandler) RefreshInsight(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	cust, err := h.pipeline.Refresh(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, "failed to refresh insight", err)
		return
	}

	response.Success(c, http.StatusOK, "insight refreshed", cust)
}
