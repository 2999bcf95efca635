package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlastrips/proposal-engine/internal/model"
)

// ActivityRepository handles the append-only audit trail.
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append writes one audit record. There is no update or delete path.
func (r *ActivityRepository) Append(ctx context.Context, e *model.ActivityEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO proposal_activity (id, proposal_id, action, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.ProposalID, e.Action, e.Detail, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}
