package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
)

// GuestRepository handles persistence for proposal guests.
type GuestRepository struct {
	db *pgxpool.Pool
}

// NewGuestRepository constructs a GuestRepository.
func NewGuestRepository(db *pgxpool.Pool) *GuestRepository {
	return &GuestRepository{db: db}
}

// Insert adds a guest to a proposal's roster. When maxGuests is positive the
// insert is a single conditional statement whose WHERE clause counts the
// live roster against the cap, so the check and the insert are evaluated
// atomically at the database, so two concurrent calls cannot both observe
// spare capacity and both land. It reports whether the row was inserted;
// false means the roster is full.
//
// A read-count-then-insert pair at the application level would reintroduce
// the time-of-check-to-time-of-use gap this statement exists to close.
func (r *GuestRepository) Insert(ctx context.Context, g *model.Guest, maxGuests int) (bool, error) {
	if maxGuests <= 0 {
		_, err := r.db.Exec(ctx,
			`INSERT INTO guests (id, proposal_id, first_name, last_name, email, phone,
			                     registered, rsvp, amount_paid, paid_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			g.ID, g.ProposalID, g.FirstName, g.LastName, g.Email, g.Phone,
			g.Registered, g.RSVP, g.AmountPaid, g.PaidAt, g.CreatedAt,
		)
		if err != nil {
			return false, fmt.Errorf("insert guest: %w", err)
		}
		return true, nil
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO guests (id, proposal_id, first_name, last_name, email, phone,
		                     registered, rsvp, amount_paid, paid_at, created_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		 WHERE (SELECT COUNT(*) FROM guests WHERE proposal_id = $2) < $12`,
		g.ID, g.ProposalID, g.FirstName, g.LastName, g.Email, g.Phone,
		g.Registered, g.RSVP, g.AmountPaid, g.PaidAt, g.CreatedAt,
		maxGuests,
	)
	if err != nil {
		return false, fmt.Errorf("insert guest: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountByProposal returns the live guest count for a proposal.
func (r *GuestRepository) CountByProposal(ctx context.Context, proposalID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM guests WHERE proposal_id = $1`, proposalID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	return count, nil
}

// EmailExists performs a case-insensitive existence check scoped to one
// proposal. Used to block duplicate self-registration.
func (r *GuestRepository) EmailExists(ctx context.Context, proposalID, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM guests WHERE proposal_id = $1 AND LOWER(email) = LOWER($2)
		 )`,
		proposalID, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check guest email: %w", err)
	}
	return exists, nil
}

// Delete removes a guest, scoped by proposal and guest id together. Zero
// rows affected raises NotFoundError whether the guest never existed or
// belongs to a different proposal; the caller cannot tell the two apart,
// which keeps cross-proposal existence unenumerable.
func (r *GuestRepository) Delete(ctx context.Context, proposalID, guestID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM guests WHERE id = $1 AND proposal_id = $2`,
		guestID, proposalID,
	)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("guest not found")
	}
	return nil
}

// ListByProposal returns a proposal's roster in insertion order.
func (r *GuestRepository) ListByProposal(ctx context.Context, proposalID string) ([]model.Guest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, proposal_id, first_name, last_name, email, phone,
		        registered, rsvp, amount_paid, paid_at, created_at
		 FROM guests WHERE proposal_id = $1 ORDER BY created_at ASC`,
		proposalID,
	)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	var guests []model.Guest
	for rows.Next() {
		var g model.Guest
		if err := rows.Scan(&g.ID, &g.ProposalID, &g.FirstName, &g.LastName, &g.Email, &g.Phone,
			&g.Registered, &g.RSVP, &g.AmountPaid, &g.PaidAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}
