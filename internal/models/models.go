package models

import "time"

type UserRole string

const (
	RoleSales   UserRole = "sales"
	RoleProduct UserRole = "product"
	RoleAdmin   UserRole = "admin"
)

type RequestStatus string

const (
	StatusSubmitted     RequestStatus = "submitted"
	StatusUnderReview   RequestStatus = "under-review"
	StatusAccepted      RequestStatus = "accepted"
	StatusDeclined      RequestStatus = "declined"
	StatusPlanned       RequestStatus = "planned"
	StatusInDevelopment RequestStatus = "in-development"
	StatusReleased      RequestStatus = "released"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusAccepted, StatusDeclined,
		StatusPlanned, StatusInDevelopment, StatusReleased:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == StatusDeclined || s == StatusReleased
}

type RequestCategory string

const (
	CategoryAPIIntegration RequestCategory = "api-integration"
	CategoryUserInterface  RequestCategory = "user-interface"
	CategoryReporting      RequestCategory = "reporting"
	CategorySecurity       RequestCategory = "security"
	CategoryPerformance    RequestCategory = "performance"
	CategoryCompliance     RequestCategory = "compliance"
	CategoryOther          RequestCategory = "other"
)

// NormalizeCategory maps unknown or empty values onto the "other" bucket so
// downstream table lookups never miss.
func NormalizeCategory(c RequestCategory) RequestCategory {
	switch c {
	case CategoryAPIIntegration, CategoryUserInterface, CategoryReporting,
		CategorySecurity, CategoryPerformance, CategoryCompliance, CategoryOther:
		return c
	}
	return CategoryOther
}

type NoteType string

const (
	NoteTypePlain      NoteType = "note"
	NoteTypeTranscript NoteType = "transcript"
)

type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	TeamID string   `json:"team_id"`
}

type CRMOpportunity struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Value           float64   `json:"value"`
	Stage           string    `json:"stage"`
	CloseDate       time.Time `json:"close_date"`
	LastUpdatedDate time.Time `json:"last_updated_date"`
}

type Request struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	BusinessImpact    string             `json:"business_impact"`
	CustomerName      string             `json:"customer_name"`
	Category          RequestCategory    `json:"category"`
	CurrentStatus     RequestStatus      `json:"current_status"`
	RequestedTimeline string             `json:"requested_timeline,omitempty"`
	UseCase           string             `json:"use_case,omitempty"`
	RequestedByID     string             `json:"requested_by_id"`
	CreationDate      time.Time          `json:"creation_date"`
	LastUpdatedDate   time.Time          `json:"last_updated_date"`
	Opportunity       *CRMOpportunity    `json:"opportunity,omitempty"`
	Prediction        *RevenuePrediction `json:"prediction,omitempty"`
}

type StatusUpdate struct {
	ID          string        `json:"id"`
	RequestID   string        `json:"request_id"`
	NewStatus   RequestStatus `json:"new_status"`
	UpdatedByID string        `json:"updated_by_id"`
	UpdateDate  time.Time     `json:"update_date"`
	Comment     string        `json:"comment"`
}

type Note struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Content      string    `json:"content"`
	Type         NoteType  `json:"type"`
	CreatedByID  string    `json:"created_by_id"`
	CreationDate time.Time `json:"creation_date"`
	// Scores are set only for transcript notes.
	SentimentScore   *int `json:"sentiment_score,omitempty"`
	DealQualityScore *int `json:"deal_quality_score,omitempty"`
}

type PredictionFactors struct {
	CategoryBaseline  float64 `json:"category_baseline"`
	CustomerSizeLabel string  `json:"customer_size_impact"`
	UrgencyLabel      string  `json:"urgency_impact"`
	ComplexityLabel   string  `json:"complexity_impact"`
}

type RevenuePrediction struct {
	PredictedRevenue     int64             `json:"predicted_revenue"`
	ProbabilityOfSuccess float64           `json:"probability_of_success"`
	ConfidenceScore      int               `json:"confidence_score"`
	Factors              PredictionFactors `json:"factors"`
}

type Metrics struct {
	TotalRequests         int                     `json:"total_requests"`
	ActiveRequests        int                     `json:"active_requests"`
	AcceptedRequests      int                     `json:"accepted_requests"`
	DeclinedRequests      int                     `json:"declined_requests"`
	AverageResolutionDays float64                 `json:"average_resolution_days"`
	ByStatus              map[RequestStatus]int   `json:"by_status"`
	ByCategory            map[RequestCategory]int `json:"by_category"`
}
