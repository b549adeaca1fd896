// Package storage persists claim records in Postgres. The engine itself
// never touches storage; the repository exists so the HTTP surface and the
// deadline sweep have claims to evaluate.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
)

const schema = `
CREATE TABLE IF NOT EXISTS claims (
	id         TEXT PRIMARY KEY,
	reference  TEXT NOT NULL DEFAULT '',
	claimant   JSONB NOT NULL,
	defendant  JSONB NOT NULL,
	invoice    JSONB NOT NULL,
	events     JSONB NOT NULL DEFAULT '[]',
	paid       BOOLEAN NOT NULL DEFAULT FALSE,
	abandoned  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// claimRow is the flat database representation of a claim.
type claimRow struct {
	ID        string    `db:"id"`
	Reference string    `db:"reference"`
	Claimant  []byte    `db:"claimant"`
	Defendant []byte    `db:"defendant"`
	Invoice   []byte    `db:"invoice"`
	Events    []byte    `db:"events"`
	Paid      bool      `db:"paid"`
	Abandoned bool      `db:"abandoned"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ClaimRepository handles claim record persistence.
type ClaimRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Connect opens the Postgres connection pool.
func Connect(dsn string, poolSize int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(poolSize)
	return db, nil
}

// NewClaimRepository creates a repository and ensures the claims table
// exists.
func NewClaimRepository(db *sqlx.DB, logger *zap.Logger) (*ClaimRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure claims schema: %w", err)
	}
	return &ClaimRepository{db: db, logger: logger}, nil
}

// Create stores a new claim, assigning an ID when absent.
func (r *ClaimRepository) Create(ctx context.Context, cl *claims.Claim) error {
	if cl.ID == "" {
		cl.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	cl.CreatedAt = now
	cl.UpdatedAt = now

	row, err := toRow(*cl)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO claims (
			id, reference, claimant, defendant, invoice, events,
			paid, abandoned, created_at, updated_at
		) VALUES (
			:id, :reference, :claimant, :defendant, :invoice, :events,
			:paid, :abandoned, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.logger.Error("Failed to create claim", zap.String("claim_id", cl.ID), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	r.logger.Info("Claim created", zap.String("claim_id", cl.ID), zap.String("reference", cl.Reference))
	return nil
}

// GetByID retrieves a claim by ID. Returns nil when no claim matches.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*claims.Claim, error) {
	var row claimRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM claims WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim %s: %w", id, err)
	}
	cl, err := fromRow(row)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// List returns all claims ordered by creation time.
func (r *ClaimRepository) List(ctx context.Context) ([]claims.Claim, error) {
	var rows []claimRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM claims ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	result := make([]claims.Claim, 0, len(rows))
	for _, row := range rows {
		cl, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		result = append(result, cl)
	}
	return result, nil
}

// AppendEvent adds a timeline event to a stored claim. Events are immutable
// once recorded: the repository only ever appends to the collection.
func (r *ClaimRepository) AppendEvent(ctx context.Context, id string, event claims.TimelineEvent) error {
	cl, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cl == nil {
		return fmt.Errorf("claim %s not found", id)
	}

	cl.Events = append(cl.Events, event)
	events, err := json.Marshal(cl.Events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE claims SET events = $1, updated_at = $2 WHERE id = $3`,
		events, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to append event", zap.String("claim_id", id), zap.Error(err))
		return fmt.Errorf("failed to append event to claim %s: %w", id, err)
	}

	r.logger.Info("Event recorded",
		zap.String("claim_id", id),
		zap.String("event_type", string(event.Type)))
	return nil
}

// SetStatus updates the paid and abandoned flags.
func (r *ClaimRepository) SetStatus(ctx context.Context, id string, paid, abandoned bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE claims SET paid = $1, abandoned = $2, updated_at = $3 WHERE id = $4`,
		paid, abandoned, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update claim %s status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("claim %s not found", id)
	}
	return nil
}

// Delete removes a claim record.
func (r *ClaimRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete claim %s: %w", id, err)
	}
	return nil
}

func toRow(cl claims.Claim) (claimRow, error) {
	claimant, err := json.Marshal(cl.Claimant)
	if err != nil {
		return claimRow{}, fmt.Errorf("failed to encode claimant: %w", err)
	}
	defendant, err := json.Marshal(cl.Defendant)
	if err != nil {
		return claimRow{}, fmt.Errorf("failed to encode defendant: %w", err)
	}
	invoice, err := json.Marshal(cl.Invoice)
	if err != nil {
		return claimRow{}, fmt.Errorf("failed to encode invoice: %w", err)
	}
	events := cl.Events
	if events == nil {
		events = []claims.TimelineEvent{}
	}
	encoded, err := json.Marshal(events)
	if err != nil {
		return claimRow{}, fmt.Errorf("failed to encode events: %w", err)
	}

	return claimRow{
		ID:        cl.ID,
		Reference: cl.Reference,
		Claimant:  claimant,
		Defendant: defendant,
		Invoice:   invoice,
		Events:    encoded,
		Paid:      cl.Paid,
		Abandoned: cl.Abandoned,
		CreatedAt: cl.CreatedAt,
		UpdatedAt: cl.UpdatedAt,
	}, nil
}

func fromRow(row claimRow) (claims.Claim, error) {
	cl := claims.Claim{
		ID:        row.ID,
		Reference: row.Reference,
		Paid:      row.Paid,
		Abandoned: row.Abandoned,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Claimant, &cl.Claimant); err != nil {
		return cl, fmt.Errorf("failed to decode claimant: %w", err)
	}
	if err := json.Unmarshal(row.Defendant, &cl.Defendant); err != nil {
		return cl, fmt.Errorf("failed to decode defendant: %w", err)
	}
	if err := json.Unmarshal(row.Invoice, &cl.Invoice); err != nil {
		return cl, fmt.Errorf("failed to decode invoice: %w", err)
	}
	if err := json.Unmarshal(row.Events, &cl.Events); err != nil {
		return cl, fmt.Errorf("failed to decode events: %w", err)
	}
	return cl, nil
}
