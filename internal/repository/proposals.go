// Package repository implements all database access for the proposal engine.
// It uses pgx directly (no ORM) with parameterized SQL; empty result sets and
// zero-rows-affected writes translate to NotFoundError.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
	"github.com/atlastrips/proposal-engine/internal/pricing"
)

const proposalColumns = `id, title, status, party_size, min_guests, max_guests,
	discount_percentage, tax_rate, gratuity_percentage, deposit_percentage,
	subtotal, discount_amount, taxes, gratuity_amount, total, deposit_amount, balance_due,
	deposit_paid, view_count, sent_at, viewed_at, accepted_at, declined_at, converted_at,
	created_at, updated_at`

// ProposalRepository handles persistence for proposals.
type ProposalRepository struct {
	db *pgxpool.Pool
}

// NewProposalRepository constructs a ProposalRepository.
func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func scanProposal(row pgx.Row) (*model.Proposal, error) {
	var p model.Proposal
	err := row.Scan(
		&p.ID, &p.Title, &p.Status, &p.PartySize, &p.MinGuests, &p.MaxGuests,
		&p.DiscountPercentage, &p.TaxRate, &p.GratuityPercentage, &p.DepositPercentage,
		&p.Subtotal, &p.DiscountAmount, &p.Taxes, &p.GratuityAmount, &p.Total, &p.DepositAmount, &p.BalanceDue,
		&p.DepositPaid, &p.ViewCount, &p.SentAt, &p.ViewedAt, &p.AcceptedAt, &p.DeclinedAt, &p.ConvertedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new proposal.
func (r *ProposalRepository) Create(ctx context.Context, p *model.Proposal) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO proposals (`+proposalColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		         $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`,
		p.ID, p.Title, p.Status, p.PartySize, p.MinGuests, p.MaxGuests,
		p.DiscountPercentage, p.TaxRate, p.GratuityPercentage, p.DepositPercentage,
		p.Subtotal, p.DiscountAmount, p.Taxes, p.GratuityAmount, p.Total, p.DepositAmount, p.BalanceDue,
		p.DepositPaid, p.ViewCount, p.SentAt, p.ViewedAt, p.AcceptedAt, p.DeclinedAt, p.ConvertedAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// GetByID returns a single proposal or NotFoundError.
func (r *ProposalRepository) GetByID(ctx context.Context, id string) (*model.Proposal, error) {
	p, err := scanProposal(r.db.QueryRow(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("proposal not found")
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return p, nil
}

// List returns all proposals ordered by creation time descending.
func (r *ProposalRepository) List(ctx context.Context) ([]model.Proposal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+proposalColumns+` FROM proposals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []model.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

// FinalizePricing recomputes and persists the full cost breakdown for a
// proposal inside one transaction.
//
// The proposal row is locked with SELECT … FOR UPDATE before the inclusion
// list is read, so a concurrent inclusion mutation (which also touches the
// proposal row) cannot interleave between the read and the totals write and
// leave a torn snapshot persisted.
func (r *ProposalRepository) FinalizePricing(ctx context.Context, id string) (*model.Proposal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	p, err := scanProposal(tx.QueryRow(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("proposal not found")
		}
		return nil, fmt.Errorf("lock proposal row: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT id, proposal_id, name, pricing_type, unit_price, quantity, total_price
		 FROM inclusions WHERE proposal_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list inclusions: %w", err)
	}
	inclusions, err := collectInclusions(rows)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Compute(p, inclusions)

	for i := range inclusions {
		lineTotal := pricing.LineTotal(inclusions[i], p.PartySize)
		if _, err = tx.Exec(ctx,
			`UPDATE inclusions SET total_price = $1 WHERE id = $2`,
			lineTotal, inclusions[i].ID,
		); err != nil {
			return nil, fmt.Errorf("update inclusion total: %w", err)
		}
		inclusions[i].TotalPrice = lineTotal
	}

	pricing.Apply(p, breakdown)
	p.UpdatedAt = time.Now().UTC()
	if _, err = tx.Exec(ctx,
		`UPDATE proposals
		 SET subtotal = $1, discount_amount = $2, taxes = $3, gratuity_amount = $4,
		     total = $5, deposit_amount = $6, balance_due = $7, updated_at = $8
		 WHERE id = $9`,
		p.Subtotal, p.DiscountAmount, p.Taxes, p.GratuityAmount,
		p.Total, p.DepositAmount, p.BalanceDue, p.UpdatedAt, id,
	); err != nil {
		return nil, fmt.Errorf("update proposal totals: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return p, nil
}

// ApplyTransition moves a proposal from one status to another, applying the
// edge's side effects (lifecycle timestamps, view counter) in the same
// statement. The update is conditioned on the current status so two racing
// transitions cannot both apply; it reports whether the write landed.
func (r *ProposalRepository) ApplyTransition(ctx context.Context, id string, from, to model.ProposalStatus) (bool, error) {
	var set string
	switch to {
	case model.StatusSent:
		set = `sent_at = now()`
	case model.StatusViewed:
		// Atomic increment: the counter bump happens inside the database so
		// concurrent viewers cannot lose updates.
		set = `viewed_at = now(), view_count = view_count + 1`
	case model.StatusAccepted:
		set = `accepted_at = now()`
	case model.StatusDeclined:
		set = `declined_at = now()`
	case model.StatusConverted:
		set = `converted_at = now()`
	case model.StatusDraft:
		// Reopening a declined proposal clears the decline marker.
		set = `declined_at = NULL`
	default:
		return false, fmt.Errorf("unknown target status %q", to)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE proposals SET status = $1, `+set+`, updated_at = now()
		 WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("apply transition: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
