// internal/domain/customer/dto.go
package customer

type SignupRequest struct {
	Name    string `json:"name" binding:"max=255"`
	Phone   string `json:"phone" binding:"max=20"`
	Email   string `json:"email" binding:"omitempty,email,max=255"`
	Company string `json:"company" binding:"max=255"`
}

type UpdatePreferencesRequest struct {
	BudgetTier       *string  `json:"budget_tier" binding:"omitempty,oneof=premium high medium low unspecified"`
	ProductInterests []string `json:"product_interests"`
	Urgency          *string  `json:"urgency" binding:"omitempty,oneof=high normal low"`
	PreferredChannel *string  `json:"preferred_channel" binding:"omitempty,oneof=email phone chat"`
}

type AddKeywordRequest struct {
	Keyword string `json:"keyword" binding:"required,max=100"`
}

type ConfirmKeywordRequest struct {
	Keyword  string `json:"keyword" binding:"required,max=100"`
	Relevant bool   `json:"relevant"`
}

type FeedbackRequest struct {
	Field    string `json:"field" binding:"required,oneof=intent potential_level keyword_relevance budget_tier"`
	NewValue string `json:"new_value" binding:"required,max=255"`
	Reason   string `json:"reason" binding:"max=500"`
}

type MergeRequest struct {
	PrimaryID   int64 `json:"primary_id" binding:"required"`
	DuplicateID int64 `json:"duplicate_id" binding:"required"`
}

type ListFilters struct {
	Status    string `form:"status" binding:"omitempty,oneof=active converted closed dormant"`
	Level     string `form:"level" binding:"omitempty,oneof=high medium low spam"`
	Search    string `form:"search"`
	Page      int    `form:"page" binding:"min=0"`
	PageSize  int    `form:"page_size" binding:"min=0,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=potential_score last_interaction created_at name"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type ListResponse struct {
	Customers  []Customer `json:"customers"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
