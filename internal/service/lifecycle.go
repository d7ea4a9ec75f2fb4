package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/featuredesk/backend/internal/models"
)

// TransitionOption is one status a given actor may move a request into.
type TransitionOption struct {
	Status models.RequestStatus `json:"status"`
	Label  string               `json:"label"`
}

// transitionTable holds the fixed lifecycle graph. Only product and admin
// roles drive the workflow; declined and released are terminal.
var transitionTable = map[models.RequestStatus][]TransitionOption{
	models.StatusSubmitted:     {{Status: models.StatusUnderReview, Label: "Move to Review"}},
	models.StatusUnderReview:   {{Status: models.StatusAccepted, Label: "Accept"}, {Status: models.StatusDeclined, Label: "Decline"}},
	models.StatusAccepted:      {{Status: models.StatusPlanned, Label: "Add to Roadmap"}},
	models.StatusPlanned:       {{Status: models.StatusInDevelopment, Label: "Start Development"}},
	models.StatusInDevelopment: {{Status: models.StatusReleased, Label: "Mark Released"}},
}

func roleCanTransition(role models.UserRole) bool {
	return role == models.RoleProduct || role == models.RoleAdmin
}

// ProposeTransitions returns the statuses the given role may move a request
// into from the given status. Sales actors always get an empty set.
func ProposeTransitions(current models.RequestStatus, role models.UserRole) []TransitionOption {
	if !roleCanTransition(role) {
		return nil
	}
	options := transitionTable[current]
	out := make([]TransitionOption, len(options))
	copy(out, options)
	return out
}

// RequestDraft carries the caller-supplied fields of a new request.
type RequestDraft struct {
	Title             string
	Description       string
	BusinessImpact    string
	CustomerName      string
	Category          models.RequestCategory
	RequestedTimeline string
	UseCase           string
}

// Lifecycle owns all mutating operations on requests. Writes for a given
// request id are serialized through a keyed mutex so two racing transitions
// cannot both read the same current status and overwrite each other.
type Lifecycle struct {
	store  Store
	logger zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLifecycle(store Store, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (l *Lifecycle) lockRequest(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// CreateRequest registers a new request in the submitted state and writes
// the initial audit record echoing the title.
func (l *Lifecycle) CreateRequest(ctx context.Context, draft RequestDraft, actor *models.User) (models.Request, models.StatusUpdate, error) {
	if actor == nil {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf("create request: %w", ErrUnauthenticated)
	}

	now := time.Now().UTC()
	req := models.Request{
		ID:                uuid.NewString(),
		Title:             strings.TrimSpace(draft.Title),
		Description:       draft.Description,
		BusinessImpact:    draft.BusinessImpact,
		CustomerName:      draft.CustomerName,
		Category:          models.NormalizeCategory(draft.Category),
		CurrentStatus:     models.StatusSubmitted,
		RequestedTimeline: draft.RequestedTimeline,
		UseCase:           draft.UseCase,
		RequestedByID:     actor.ID,
		CreationDate:      now,
		LastUpdatedDate:   now,
	}
	if req.Title == "" {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf("title is required: %w", ErrValidation)
	}

	initial := models.StatusUpdate{
		ID:          uuid.NewString(),
		RequestID:   req.ID,
		NewStatus:   models.StatusSubmitted,
		UpdatedByID: actor.ID,
		UpdateDate:  now,
		Comment:     fmt.Sprintf("Initial submission: %s", req.Title),
	}

	if err := l.store.CreateRequest(ctx, req, initial); err != nil {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf("persist request: %w", err)
	}

	l.logger.Info().
		Str("request_id", req.ID).
		Str("category", string(req.Category)).
		Str("actor", actor.ID).
		Msg("request created")
	return req, initial, nil
}

// ApplyTransition validates and records a status change. The new status must
// be reachable from the request's current status for the actor's role; the
// request is only mutated after every check passes.
func (l *Lifecycle) ApplyTransition(ctx context.Context, requestID string, newStatus models.RequestStatus, comment string, actor *models.User) (models.Request, models.StatusUpdate, error) {
	if actor == nil {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf("apply transition: %w", ErrUnauthenticated)
	}
	if strings.TrimSpace(comment) == "" {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf("comment is required: %w", ErrValidation)
	}
	if !newStatus.Valid() {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf("unknown status %q: %w", newStatus, ErrValidation)
	}

	unlock := l.lockRequest(requestID)
	defer unlock()

	req, err := l.store.GetRequest(ctx, requestID)
	if err != nil {
		return models.Request{}, models.StatusUpdate{}, err
	}

	if !transitionAllowed(req.CurrentStatus, newStatus, actor.Role) {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf(
			"role %s may not move request from %s to %s: %w",
			actor.Role, req.CurrentStatus, newStatus, ErrForbidden)
	}

	now := time.Now().UTC()
	req.CurrentStatus = newStatus
	req.LastUpdatedDate = now

	update := models.StatusUpdate{
		ID:          uuid.NewString(),
		RequestID:   req.ID,
		NewStatus:   newStatus,
		UpdatedByID: actor.ID,
		UpdateDate:  now,
		Comment:     comment,
	}

	if err := l.store.ApplyStatusChange(ctx, req, update); err != nil {
		return models.Request{}, models.StatusUpdate{}, fmt.Errorf("persist transition: %w", err)
	}

	l.logger.Info().
		Str("request_id", req.ID).
		Str("new_status", string(newStatus)).
		Str("actor", actor.ID).
		Msg("status updated")
	return req, update, nil
}

func transitionAllowed(current, next models.RequestStatus, role models.UserRole) bool {
	for _, opt := range ProposeTransitions(current, role) {
		if opt.Status == next {
			return true
		}
	}
	return false
}

// AddNote appends a note to a request. Transcript notes are scored on the
// way in; plain notes never carry scores.
func (l *Lifecycle) AddNote(ctx context.Context, requestID, content string, noteType models.NoteType, actor *models.User) (models.Note, error) {
	if actor == nil {
		return models.Note{}, fmt.Errorf("add note: %w", ErrUnauthenticated)
	}
	if strings.TrimSpace(content) == "" {
		return models.Note{}, fmt.Errorf("note content is required: %w", ErrValidation)
	}
	if noteType != models.NoteTypePlain && noteType != models.NoteTypeTranscript {
		return models.Note{}, fmt.Errorf("unknown note type %q: %w", noteType, ErrValidation)
	}

	if _, err := l.store.GetRequest(ctx, requestID); err != nil {
		return models.Note{}, err
	}

	note := models.Note{
		ID:           uuid.NewString(),
		RequestID:    requestID,
		Content:      content,
		Type:         noteType,
		CreatedByID:  actor.ID,
		CreationDate: time.Now().UTC(),
	}
	if noteType == models.NoteTypeTranscript {
		sentiment, quality := ScoreTranscript(content)
		note.SentimentScore = &sentiment
		note.DealQualityScore = &quality
	}

	if err := l.store.AppendNote(ctx, note); err != nil {
		return models.Note{}, fmt.Errorf("persist note: %w", err)
	}
	return note, nil
}

// UpdateOpportunity replaces a request's CRM opportunity details wholesale.
func (l *Lifecycle) UpdateOpportunity(ctx context.Context, requestID string, value float64, stage string, closeDate time.Time, actor *models.User) (models.Request, error) {
	if actor == nil {
		return models.Request{}, fmt.Errorf("update opportunity: %w", ErrUnauthenticated)
	}
	if value <= 0 {
		return models.Request{}, fmt.Errorf("opportunity value must be positive: %w", ErrValidation)
	}
	if strings.TrimSpace(stage) == "" {
		return models.Request{}, fmt.Errorf("opportunity stage is required: %w", ErrValidation)
	}

	unlock := l.lockRequest(requestID)
	defer unlock()

	req, err := l.store.GetRequest(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}

	now := time.Now().UTC()
	if req.Opportunity == nil {
		req.Opportunity = &models.CRMOpportunity{
			ID:   uuid.NewString(),
			Name: fmt.Sprintf("%s - %s", req.CustomerName, req.Title),
		}
	}
	req.Opportunity.Value = value
	req.Opportunity.Stage = stage
	req.Opportunity.CloseDate = closeDate
	req.Opportunity.LastUpdatedDate = now
	req.LastUpdatedDate = now

	if err := l.store.UpdateRequest(ctx, req); err != nil {
		return models.Request{}, fmt.Errorf("persist opportunity: %w", err)
	}
	return req, nil
}
