package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/featuredesk/backend/internal/http/middleware"
	"github.com/featuredesk/backend/internal/models"
	"github.com/featuredesk/backend/internal/service"
)

type Handler struct {
	Store     service.Store
	Lifecycle *service.Lifecycle
	Predictor *service.Predictor
	Catalog   *service.Catalog
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) UsersList(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list users", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

func (h *Handler) Me(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		writeError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "No authenticated user", nil)
		return
	}
	c.JSON(http.StatusOK, actor)
}

type CreateRequestPayload struct {
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description" validate:"required"`
	BusinessImpact    string `json:"business_impact" validate:"required"`
	CustomerName      string `json:"customer_name" validate:"required"`
	Category          string `json:"category"`
	RequestedTimeline string `json:"requested_timeline"`
	UseCase           string `json:"use_case"`
}

// @Summary Create feature request
// @Tags requests
// @Accept json
// @Produce json
// @Param request body CreateRequestPayload true "request draft"
// @Success 201 {object} models.Request
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/requests [post]
func (h *Handler) RequestCreate(c *gin.Context) {
	var payload CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	draft := service.RequestDraft{
		Title:             payload.Title,
		Description:       payload.Description,
		BusinessImpact:    payload.BusinessImpact,
		CustomerName:      payload.CustomerName,
		Category:          models.RequestCategory(payload.Category),
		RequestedTimeline: payload.RequestedTimeline,
		UseCase:           payload.UseCase,
	}
	req, _, err := h.Lifecycle.CreateRequest(c.Request.Context(), draft, middleware.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func requestFilterFromQuery(c *gin.Context) service.RequestFilter {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return service.RequestFilter{
		Status:   models.RequestStatus(c.Query("status")),
		Category: models.RequestCategory(c.Query("category")),
		Query:    c.Query("q"),
		Limit:    limit,
		Offset:   offset,
	}
}

func (h *Handler) RequestsList(c *gin.Context) {
	filter := requestFilterFromQuery(c)
	items, err := h.Store.ListRequests(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list requests", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": filter.Limit, "offset": filter.Offset})
}

// @Summary Export requests as CSV
// @Tags requests
// @Produce text/csv
// @Router /api/requests/export [get]
func (h *Handler) RequestsExport(c *gin.Context) {
	items, err := h.Store.ListRequests(c.Request.Context(), requestFilterFromQuery(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list requests", err.Error())
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="requests.csv"`)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "title", "customer_name", "category", "current_status", "creation_date", "last_updated_date"})
	for _, r := range items {
		_ = w.Write([]string{
			r.ID, r.Title, r.CustomerName, string(r.Category), string(r.CurrentStatus),
			r.CreationDate.Format(time.RFC3339), r.LastUpdatedDate.Format(time.RFC3339),
		})
	}
	w.Flush()
}

func (h *Handler) RequestDetails(c *gin.Context) {
	id := c.Param("id")
	req, err := h.Store.GetRequest(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	updates, err := h.Store.ListStatusUpdates(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load status history", err.Error())
		return
	}
	notes, err := h.Store.ListNotes(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load notes", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "status_updates": updates, "notes": notes})
}

// @Summary Transitions available to the current actor
// @Tags requests
// @Produce json
// @Router /api/requests/{id}/transitions [get]
func (h *Handler) RequestTransitions(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		writeError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "No authenticated user", nil)
		return
	}
	req, err := h.Store.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	options := service.ProposeTransitions(req.CurrentStatus, actor.Role)
	if options == nil {
		options = []service.TransitionOption{}
	}
	c.JSON(http.StatusOK, gin.H{"current_status": req.CurrentStatus, "transitions": options})
}

type StatusUpdatePayload struct {
	NewStatus string `json:"new_status" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
}

// @Summary Apply a status transition
// @Tags requests
// @Accept json
// @Produce json
// @Param request body StatusUpdatePayload true "transition"
// @Success 200 {object} models.StatusUpdate
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/requests/{id}/status [post]
func (h *Handler) RequestStatusUpdate(c *gin.Context) {
	var payload StatusUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	req, update, err := h.Lifecycle.ApplyTransition(
		c.Request.Context(), c.Param("id"),
		models.RequestStatus(payload.NewStatus), payload.Comment, middleware.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "status_update": update})
}

type NotePayload struct {
	Content string `json:"content" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=note transcript"`
}

func (h *Handler) NoteCreate(c *gin.Context) {
	var payload NotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	note, err := h.Lifecycle.AddNote(
		c.Request.Context(), c.Param("id"),
		payload.Content, models.NoteType(payload.Type), middleware.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

type OpportunityPayload struct {
	Value     float64 `json:"value" validate:"required,gt=0"`
	Stage     string  `json:"stage" validate:"required"`
	CloseDate string  `json:"close_date" validate:"required"`
}

func (h *Handler) OpportunityUpdate(c *gin.Context) {
	var payload OpportunityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	closeDate, err := time.Parse("2006-01-02", payload.CloseDate)
	if err != nil {
		if closeDate, err = time.Parse(time.RFC3339, payload.CloseDate); err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "close_date must be YYYY-MM-DD or RFC3339", err.Error())
			return
		}
	}

	req, err := h.Lifecycle.UpdateOpportunity(
		c.Request.Context(), c.Param("id"),
		payload.Value, payload.Stage, closeDate, middleware.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary Revenue prediction for a request
// @Tags intelligence
// @Produce json
// @Success 200 {object} models.RevenuePrediction
// @Router /api/requests/{id}/prediction [get]
func (h *Handler) RequestPrediction(c *gin.Context) {
	req, err := h.Store.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	prediction := h.Predictor.Predict(service.PredictionInput{
		Category:          req.Category,
		BusinessImpact:    req.BusinessImpact,
		RequestedTimeline: req.RequestedTimeline,
		CustomerName:      req.CustomerName,
	})
	c.JSON(http.StatusOK, prediction)
}

func (h *Handler) RequestSuggestions(c *gin.Context) {
	req, err := h.Store.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Catalog.Suggest(req.Category, req.Title))
}

func (h *Handler) MetricsGet(c *gin.Context) {
	metrics, err := service.ComputeMetrics(c.Request.Context(), h.Store)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute metrics", err.Error())
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Transition not permitted", err.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Request not found", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Operation failed", err.Error())
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
