package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/featuredesk/backend/internal/models"
	"github.com/featuredesk/backend/internal/service"
)

// MemStore is a mutex-guarded in-memory store. It backs tests and local
// runs without a database; semantics mirror the Postgres store.
type MemStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	requests map[string]models.Request
	updates  []models.StatusUpdate
	notes    []models.Note
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[string]models.User),
		requests: make(map[string]models.Request),
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) SeedUsers(ctx context.Context, users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
	}
	return nil
}

func (s *MemStore) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, service.ErrNotFound)
	}
	return u, nil
}

func (s *MemStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) CreateRequest(ctx context.Context, req models.Request, initial models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; exists {
		return fmt.Errorf("request %s already exists", req.ID)
	}
	s.requests[req.ID] = cloneRequest(req)
	s.updates = append(s.updates, initial)
	return nil
}

func (s *MemStore) GetRequest(ctx context.Context, id string) (models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return models.Request{}, fmt.Errorf("request %s: %w", id, service.ErrNotFound)
	}
	return cloneRequest(r), nil
}

func (s *MemStore) ListRequests(ctx context.Context, filter service.RequestFilter) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Request
	q := strings.ToLower(filter.Query)
	for _, r := range s.requests {
		if filter.Status != "" && r.CurrentStatus != filter.Status {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) &&
			!strings.Contains(strings.ToLower(r.CustomerName), q) {
			continue
		}
		out = append(out, cloneRequest(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreationDate.Equal(out[j].CreationDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreationDate.After(out[j].CreationDate)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) ApplyStatusChange(ctx context.Context, req models.Request, update models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[req.ID]
	if !ok {
		return fmt.Errorf("request %s: %w", req.ID, service.ErrNotFound)
	}
	stored.CurrentStatus = req.CurrentStatus
	stored.LastUpdatedDate = req.LastUpdatedDate
	s.requests[req.ID] = stored
	s.updates = append(s.updates, update)
	return nil
}

func (s *MemStore) UpdateRequest(ctx context.Context, req models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return fmt.Errorf("request %s: %w", req.ID, service.ErrNotFound)
	}
	s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (s *MemStore) ListStatusUpdates(ctx context.Context, requestID string) ([]models.StatusUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.StatusUpdate
	for _, u := range s.updates {
		if u.RequestID == requestID {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdateDate.Before(out[j].UpdateDate) })
	return out, nil
}

func (s *MemStore) AppendNote(ctx context.Context, note models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note)
	return nil
}

func (s *MemStore) ListNotes(ctx context.Context, requestID string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Note
	for _, n := range s.notes {
		if n.RequestID == requestID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreationDate.Before(out[j].CreationDate) })
	return out, nil
}

func cloneRequest(r models.Request) models.Request {
	out := r
	if r.Opportunity != nil {
		opp := *r.Opportunity
		out.Opportunity = &opp
	}
	if r.Prediction != nil {
		p := *r.Prediction
		out.Prediction = &p
	}
	return out
}
