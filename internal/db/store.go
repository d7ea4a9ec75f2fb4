package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/featuredesk/backend/internal/models"
	"github.com/featuredesk/backend/internal/service"
)

// Store is the Postgres-backed request store.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	team_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS requests (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	business_impact TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	category TEXT NOT NULL,
	current_status TEXT NOT NULL,
	requested_timeline TEXT NOT NULL DEFAULT '',
	use_case TEXT NOT NULL DEFAULT '',
	requested_by TEXT NOT NULL REFERENCES users(id),
	creation_date TIMESTAMPTZ NOT NULL,
	last_updated_date TIMESTAMPTZ NOT NULL,
	opportunity JSONB
);
CREATE TABLE IF NOT EXISTS status_updates (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL REFERENCES requests(id),
	new_status TEXT NOT NULL,
	updated_by TEXT NOT NULL REFERENCES users(id),
	update_date TIMESTAMPTZ NOT NULL,
	comment TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL REFERENCES requests(id),
	content TEXT NOT NULL,
	type TEXT NOT NULL,
	created_by TEXT NOT NULL REFERENCES users(id),
	creation_date TIMESTAMPTZ NOT NULL,
	sentiment_score INT,
	deal_quality_score INT
);
CREATE INDEX IF NOT EXISTS idx_status_updates_request ON status_updates (request_id, update_date);
CREATE INDEX IF NOT EXISTS idx_notes_request ON notes (request_id, creation_date);
`

// EnsureSchema creates the tables on startup; no migration tooling needed
// at this size.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

// SeedUsers inserts the fixed user directory, keeping existing rows.
func (s *Store) SeedUsers(ctx context.Context, users []models.User) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, u := range users {
			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, role, team_id)
				VALUES ($1,$2,$3,$4,$5)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					email = EXCLUDED.email,
					role = EXCLUDED.role,
					team_id = EXCLUDED.team_id
			`, u.ID, u.Name, u.Email, u.Role, u.TeamID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, email, role, team_id FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.TeamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %s: %w", id, service.ErrNotFound)
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, email, role, team_id FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.TeamID); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

const requestColumns = `id, title, description, business_impact, customer_name, category, current_status,
	requested_timeline, use_case, requested_by, creation_date, last_updated_date, opportunity`

func scanRequest(row pgx.Row) (models.Request, error) {
	var r models.Request
	var opportunity []byte
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.BusinessImpact, &r.CustomerName,
		&r.Category, &r.CurrentStatus, &r.RequestedTimeline, &r.UseCase, &r.RequestedByID,
		&r.CreationDate, &r.LastUpdatedDate, &opportunity)
	if err != nil {
		return models.Request{}, err
	}
	if len(opportunity) > 0 {
		var opp models.CRMOpportunity
		if err := json.Unmarshal(opportunity, &opp); err == nil {
			r.Opportunity = &opp
		}
	}
	return r, nil
}

func (s *Store) CreateRequest(ctx context.Context, req models.Request, initial models.StatusUpdate) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO requests (id, title, description, business_impact, customer_name, category,
				current_status, requested_timeline, use_case, requested_by, creation_date, last_updated_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`, req.ID, req.Title, req.Description, req.BusinessImpact, req.CustomerName, req.Category,
			req.CurrentStatus, req.RequestedTimeline, req.UseCase, req.RequestedByID,
			req.CreationDate, req.LastUpdatedDate)
		if err != nil {
			return err
		}
		return insertStatusUpdate(ctx, tx, initial)
	})
}

func (s *Store) GetRequest(ctx context.Context, id string) (models.Request, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Request{}, fmt.Errorf("request %s: %w", id, service.ErrNotFound)
	}
	return r, err
}

func (s *Store) ListRequests(ctx context.Context, filter service.RequestFilter) ([]models.Request, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + requestColumns + ` FROM requests`
	var args []any
	var wheres []string
	if filter.Status != "" {
		args = append(args, filter.Status)
		wheres = append(wheres, fmt.Sprintf("current_status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		wheres = append(wheres, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		wheres = append(wheres, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args), len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY creation_date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ApplyStatusChange(ctx context.Context, req models.Request, update models.StatusUpdate) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx,
			`SELECT current_status FROM requests WHERE id = $1 FOR UPDATE`, req.ID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("request %s: %w", req.ID, service.ErrNotFound)
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE requests SET current_status = $1, last_updated_date = $2 WHERE id = $3
		`, req.CurrentStatus, req.LastUpdatedDate, req.ID)
		if err != nil {
			return err
		}
		return insertStatusUpdate(ctx, tx, update)
	})
}

func insertStatusUpdate(ctx context.Context, tx pgx.Tx, u models.StatusUpdate) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO status_updates (id, request_id, new_status, updated_by, update_date, comment)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, u.ID, u.RequestID, u.NewStatus, u.UpdatedByID, u.UpdateDate, u.Comment)
	return err
}

func (s *Store) UpdateRequest(ctx context.Context, req models.Request) error {
	var opportunity []byte
	if req.Opportunity != nil {
		b, err := json.Marshal(req.Opportunity)
		if err != nil {
			return err
		}
		opportunity = b
	}
	tag, err := s.Pool.Exec(ctx, `
		UPDATE requests SET title = $1, description = $2, business_impact = $3, customer_name = $4,
			category = $5, current_status = $6, requested_timeline = $7, use_case = $8,
			last_updated_date = $9, opportunity = $10
		WHERE id = $11
	`, req.Title, req.Description, req.BusinessImpact, req.CustomerName, req.Category,
		req.CurrentStatus, req.RequestedTimeline, req.UseCase, req.LastUpdatedDate,
		opportunity, req.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("request %s: %w", req.ID, service.ErrNotFound)
	}
	return nil
}

func (s *Store) ListStatusUpdates(ctx context.Context, requestID string) ([]models.StatusUpdate, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, request_id, new_status, updated_by, update_date, comment
		FROM status_updates WHERE request_id = $1 ORDER BY update_date ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusUpdate
	for rows.Next() {
		var u models.StatusUpdate
		if err := rows.Scan(&u.ID, &u.RequestID, &u.NewStatus, &u.UpdatedByID, &u.UpdateDate, &u.Comment); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) AppendNote(ctx context.Context, note models.Note) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO notes (id, request_id, content, type, created_by, creation_date, sentiment_score, deal_quality_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, note.ID, note.RequestID, note.Content, note.Type, note.CreatedByID, note.CreationDate,
		note.SentimentScore, note.DealQualityScore)
	return err
}

func (s *Store) ListNotes(ctx context.Context, requestID string) ([]models.Note, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, request_id, content, type, created_by, creation_date, sentiment_score, deal_quality_score
		FROM notes WHERE request_id = $1 ORDER BY creation_date ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.RequestID, &n.Content, &n.Type, &n.CreatedByID, &n.CreationDate,
			&n.SentimentScore, &n.DealQualityScore); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
