// internal/handlers/customer/customer_handler.go
package customer

import (
	"net/http"
	"strconv"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/middleware"
	"leadscope-service/internal/pkg/response"
	"leadscope-service/internal/service/crm"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	crmService *crm.Service
}

func NewCustomerHandler(crmService *crm.Service) *CustomerHandler {
	return &CustomerHandler{
		crmService: crmService,
	}
}

// Signup registers a customer ahead of any interaction
func (h *CustomerHandler) Signup(c *gin.Context) {
	var req customer.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.crmService.Signup(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to register customer", err)
		return
	}

	response.Success(c, http.StatusCreated, "customer registered", result)
}

// GetCustomer retrieves a customer by ID
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	result, err := h.crmService.GetByID(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// GetCustomerByReference retrieves a customer by public reference
func (h *CustomerHandler) GetCustomerByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		response.Error(c, http.StatusBadRequest, "customer reference is required", nil)
		return
	}

	result, err := h.crmService.GetByReference(c.Request.Context(), reference)
	if err != nil {
		response.FromError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// ListCustomers returns a filtered, paginated customer list
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var filters customer.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.crmService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}

// UpdatePreferences applies customer-stated preferences and re-scores
func (h *CustomerHandler) UpdatePreferences(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	var req customer.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.crmService.UpdatePreferences(c.Request.Context(), customerID, &req)
	if err != nil {
		response.FromError(c, "failed to update preferences", err)
		return
	}

	response.Success(c, http.StatusOK, "preferences updated", result)
}

// AddKeyword tags a keyword onto the customer
func (h *CustomerHandler) AddKeyword(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	var req customer.AddKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	agentID := middleware.MustGetAgentID(c)
	result, err := h.crmService.AddKeyword(c.Request.Context(), customerID, agentID, &req)
	if err != nil {
		response.FromError(c, "failed to add keyword", err)
		return
	}

	response.Success(c, http.StatusOK, "keyword added", result)
}

// ConfirmKeyword settles whether a tagged keyword is relevant
func (h *CustomerHandler) ConfirmKeyword(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	var req customer.ConfirmKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	agentID := middleware.MustGetAgentID(c)
	result, err := h.crmService.ConfirmKeyword(c.Request.Context(), customerID, agentID, &req)
	if err != nil {
		response.FromError(c, "failed to confirm keyword", err)
		return
	}

	response.Success(c, http.StatusOK, "keyword confirmed", result)
}

// SubmitFeedback records an agent correction
func (h *CustomerHandler) SubmitFeedback(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	var req customer.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	agentID := middleware.MustGetAgentID(c)
	result, err := h.crmService.ApplyFeedback(c.Request.Context(), customerID, agentID, &req)
	if err != nil {
		response.FromError(c, "failed to apply feedback", err)
		return
	}

	response.Success(c, http.StatusOK, "feedback applied", result)
}

// MergeCustomers folds a duplicate profile into a primary
func (h *CustomerHandler) MergeCustomers(c *gin.Context) {
	var req customer.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.crmService.Merge(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to merge customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers merged", result)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
