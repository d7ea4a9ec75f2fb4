package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/featuredesk/backend/internal/db"
	"github.com/featuredesk/backend/internal/http/middleware"
	"github.com/featuredesk/backend/internal/models"
	"github.com/featuredesk/backend/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *db.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemStore()
	if err := store.SeedUsers(context.Background(), db.DefaultUsers()); err != nil {
		t.Fatalf("seed users: %v", err)
	}

	h := &Handler{
		Store:     store,
		Lifecycle: service.NewLifecycle(store, zerolog.Nop()),
		Predictor: service.NewPredictor(1),
		Catalog:   service.DefaultCatalog(),
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}

	r := gin.New()
	r.Use(middleware.Actor(store))
	r.GET("/healthz", h.Healthz)
	api := r.Group("/api")
	{
		api.GET("/users", h.UsersList)
		api.GET("/me", h.Me)
		api.GET("/metrics", h.MetricsGet)
		api.POST("/requests", h.RequestCreate)
		api.GET("/requests", h.RequestsList)
		api.GET("/requests/export", h.RequestsExport)
		api.GET("/requests/:id", h.RequestDetails)
		api.GET("/requests/:id/transitions", h.RequestTransitions)
		api.POST("/requests/:id/status", h.RequestStatusUpdate)
		api.POST("/requests/:id/notes", h.NoteCreate)
		api.PUT("/requests/:id/opportunity", h.OpportunityUpdate)
		api.GET("/requests/:id/prediction", h.RequestPrediction)
		api.GET("/requests/:id/suggestions", h.RequestSuggestions)
	}
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestRequest(t *testing.T, r *gin.Engine, userID string) models.Request {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/requests", userID, gin.H{
		"title":              "Webhook retries",
		"description":        "Retry failed webhook deliveries",
		"business_impact":    "enterprise accounts are blocked",
		"customer_name":      "Globex",
		"category":           "api-integration",
		"requested_timeline": "ASAP",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create request: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var req models.Request
	if err := json.Unmarshal(w.Body.Bytes(), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	return req
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateRequestRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/requests", "", gin.H{
		"title":           "x",
		"description":     "y",
		"business_impact": "z",
		"customer_name":   "c",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor, got %d", w.Code)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/requests", "u1", gin.H{
		"description": "missing title",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateAndFetchRequest(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")

	if req.CurrentStatus != models.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", req.CurrentStatus)
	}

	w := doJSON(t, r, http.MethodGet, "/api/requests/"+req.ID, "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var detail struct {
		Request       models.Request        `json:"request"`
		StatusUpdates []models.StatusUpdate `json:"status_updates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if len(detail.StatusUpdates) != 1 {
		t.Fatalf("expected initial audit record, got %d", len(detail.StatusUpdates))
	}
	if !strings.Contains(detail.StatusUpdates[0].Comment, "Webhook retries") {
		t.Fatalf("expected title in initial comment, got %q", detail.StatusUpdates[0].Comment)
	}
}

func TestStatusTransitionRoles(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")

	// sales cannot drive the workflow
	w := doJSON(t, r, http.MethodPost, "/api/requests/"+req.ID+"/status", "u1", gin.H{
		"new_status": "under-review",
		"comment":    "please review",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sales actor, got %d", w.Code)
	}

	// product can
	w = doJSON(t, r, http.MethodPost, "/api/requests/"+req.ID+"/status", "u3", gin.H{
		"new_status": "under-review",
		"comment":    "picking this up",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for product actor, got %d: %s", w.Code, w.Body.String())
	}

	// skipping ahead is rejected even for admins
	w = doJSON(t, r, http.MethodPost, "/api/requests/"+req.ID+"/status", "u4", gin.H{
		"new_status": "released",
		"comment":    "ship it",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unreachable status, got %d", w.Code)
	}
}

func TestStatusTransitionMissingComment(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")
	w := doJSON(t, r, http.MethodPost, "/api/requests/"+req.ID+"/status", "u3", gin.H{
		"new_status": "under-review",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without comment, got %d", w.Code)
	}
}

func TestTransitionsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")

	w := doJSON(t, r, http.MethodGet, "/api/requests/"+req.ID+"/transitions", "u3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Transitions []service.TransitionOption `json:"transitions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transitions) != 1 || resp.Transitions[0].Label != "Move to Review" {
		t.Fatalf("unexpected transitions: %+v", resp.Transitions)
	}

	w = doJSON(t, r, http.MethodGet, "/api/requests/"+req.ID+"/transitions", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transitions) != 0 {
		t.Fatalf("expected empty set for sales, got %+v", resp.Transitions)
	}
}

func TestNoteEndpointScoresTranscripts(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")

	w := doJSON(t, r, http.MethodPost, "/api/requests/"+req.ID+"/notes", "u1", gin.H{
		"content": strings.Repeat("a", 400),
		"type":    "transcript",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var note models.Note
	if err := json.Unmarshal(w.Body.Bytes(), &note); err != nil {
		t.Fatalf("decode note: %v", err)
	}
	if note.SentimentScore == nil || *note.SentimentScore != 20 {
		t.Fatalf("expected sentiment 20, got %v", note.SentimentScore)
	}

	w = doJSON(t, r, http.MethodPost, "/api/requests/"+req.ID+"/notes", "u1", gin.H{
		"content": "quick note",
		"type":    "memo",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad type, got %d", w.Code)
	}
}

func TestPredictionEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")

	w := doJSON(t, r, http.MethodGet, "/api/requests/"+req.ID+"/prediction", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var prediction models.RevenuePrediction
	if err := json.Unmarshal(w.Body.Bytes(), &prediction); err != nil {
		t.Fatalf("decode prediction: %v", err)
	}
	if prediction.PredictedRevenue < 10000 {
		t.Fatalf("revenue below floor: %d", prediction.PredictedRevenue)
	}
	if prediction.Factors.CustomerSizeLabel != "enterprise" || prediction.Factors.UrgencyLabel != "high" {
		t.Fatalf("unexpected factors: %+v", prediction.Factors)
	}

	w = doJSON(t, r, http.MethodGet, "/api/requests/ghost/prediction", "u1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown request, got %d", w.Code)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")

	w := doJSON(t, r, http.MethodGet, "/api/requests/"+req.ID+"/suggestions", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var bundle service.SuggestionBundle
	if err := json.Unmarshal(w.Body.Bytes(), &bundle); err != nil {
		t.Fatalf("decode suggestions: %v", err)
	}
	if len(bundle.RelatedFeatures) != 3 || len(bundle.Bundles) != 2 || len(bundle.ReleaseTimings) != 3 {
		t.Fatalf("unexpected suggestion shape: %d/%d/%d",
			len(bundle.RelatedFeatures), len(bundle.Bundles), len(bundle.ReleaseTimings))
	}
}

func TestOpportunityEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	req := createTestRequest(t, r, "u1")

	w := doJSON(t, r, http.MethodPut, "/api/requests/"+req.ID+"/opportunity", "u1", gin.H{
		"value":      250000,
		"stage":      "Negotiation",
		"close_date": "2025-12-01",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Request
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if updated.Opportunity == nil || updated.Opportunity.Value != 250000 {
		t.Fatalf("unexpected opportunity: %+v", updated.Opportunity)
	}

	w = doJSON(t, r, http.MethodPut, "/api/requests/"+req.ID+"/opportunity", "u1", gin.H{
		"value":      -5,
		"stage":      "Negotiation",
		"close_date": "2025-12-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative value, got %d", w.Code)
	}
}

func TestRequestsExportCSV(t *testing.T) {
	r, _ := newTestRouter(t)
	createTestRequest(t, r, "u1")

	w := doJSON(t, r, http.MethodGet, "/api/requests/export", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,title,customer_name") {
		t.Fatalf("unexpected CSV header: %q", lines[0])
	}
}

func TestMeEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/me", "u4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var user models.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("expected admin, got %s", user.Role)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	createTestRequest(t, r, "u1")

	w := doJSON(t, r, http.MethodGet, "/api/metrics", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var m models.Metrics
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if m.TotalRequests != 1 || m.ActiveRequests != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}
