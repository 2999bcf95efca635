package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
)

// InclusionRepository handles persistence for proposal line items.
type InclusionRepository struct {
	db *pgxpool.Pool
}

// NewInclusionRepository constructs an InclusionRepository.
func NewInclusionRepository(db *pgxpool.Pool) *InclusionRepository {
	return &InclusionRepository{db: db}
}

func collectInclusions(rows pgx.Rows) ([]model.Inclusion, error) {
	defer rows.Close()
	var inclusions []model.Inclusion
	for rows.Next() {
		var inc model.Inclusion
		if err := rows.Scan(&inc.ID, &inc.ProposalID, &inc.Name, &inc.PricingType,
			&inc.UnitPrice, &inc.Quantity, &inc.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan inclusion: %w", err)
		}
		inclusions = append(inclusions, inc)
	}
	return inclusions, rows.Err()
}

// Insert adds a new line item.
func (r *InclusionRepository) Insert(ctx context.Context, inc *model.Inclusion) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO inclusions (id, proposal_id, name, pricing_type, unit_price, quantity, total_price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		inc.ID, inc.ProposalID, inc.Name, inc.PricingType, inc.UnitPrice, inc.Quantity, inc.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("insert inclusion: %w", err)
	}
	return nil
}

// Update rewrites a line item, scoped by proposal and inclusion id together.
// Zero rows affected means the inclusion is absent or belongs to another
// proposal; the two cases are deliberately indistinguishable.
func (r *InclusionRepository) Update(ctx context.Context, inc *model.Inclusion) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE inclusions SET name = $1, pricing_type = $2, unit_price = $3, quantity = $4
		 WHERE id = $5 AND proposal_id = $6`,
		inc.Name, inc.PricingType, inc.UnitPrice, inc.Quantity, inc.ID, inc.ProposalID,
	)
	if err != nil {
		return fmt.Errorf("update inclusion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("inclusion not found")
	}
	return nil
}

// Delete removes a line item, scoped by both ids.
func (r *InclusionRepository) Delete(ctx context.Context, proposalID, inclusionID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM inclusions WHERE id = $1 AND proposal_id = $2`,
		inclusionID, proposalID,
	)
	if err != nil {
		return fmt.Errorf("delete inclusion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("inclusion not found")
	}
	return nil
}

// ListByProposal returns all line items for a proposal in insertion order.
func (r *InclusionRepository) ListByProposal(ctx context.Context, proposalID string) ([]model.Inclusion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, proposal_id, name, pricing_type, unit_price, quantity, total_price
		 FROM inclusions WHERE proposal_id = $1 ORDER BY created_at ASC`,
		proposalID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inclusions: %w", err)
	}
	return collectInclusions(rows)
}
