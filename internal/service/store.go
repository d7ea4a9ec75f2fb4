package service

import (
	"context"

	"github.com/featuredesk/backend/internal/models"
)

// RequestFilter narrows ListRequests. Zero values mean "no filter".
type RequestFilter struct {
	Status   models.RequestStatus
	Category models.RequestCategory
	Query    string
	Limit    int
	Offset   int
}

// Store is the persistence facade the engines are written against. Each
// method is atomic at its own granularity; cross-record consistency on the
// transition path is handled by the Lifecycle service's per-request locks
// plus the store's transactional write methods.
type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// CreateRequest persists the request together with its initial status
	// update as one unit.
	CreateRequest(ctx context.Context, req models.Request, initial models.StatusUpdate) error
	GetRequest(ctx context.Context, id string) (models.Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]models.Request, error)
	// ApplyStatusChange persists the mutated request and appends the audit
	// record as one unit; either both land or neither does.
	ApplyStatusChange(ctx context.Context, req models.Request, update models.StatusUpdate) error
	UpdateRequest(ctx context.Context, req models.Request) error

	ListStatusUpdates(ctx context.Context, requestID string) ([]models.StatusUpdate, error)

	AppendNote(ctx context.Context, note models.Note) error
	ListNotes(ctx context.Context, requestID string) ([]models.Note, error)
}
