package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
)

// AddGuest adds a guest to a proposal's roster. When the proposal carries a
// max_guests cap the store performs the capacity check and the insert as
// one atomic conditional write, so concurrent callers can never overrun the
// cap; a full roster surfaces as ValidationError. Without a cap the insert
// is unconditional.
func (s *ProposalService) AddGuest(ctx context.Context, proposalID string, req model.GuestRequest) (*model.Guest, error) {
	p, err := s.loadMutable(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	fields := map[string]string{}
	if req.FirstName == "" {
		fields["first_name"] = "first name is required"
	}
	if req.Email == "" {
		fields["email"] = "email is required"
	} else if !isValidEmail(req.Email) {
		fields["email"] = "email is not a valid address"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid guest", fields)
	}

	g := &model.Guest{
		ID:         uuid.New().String(),
		ProposalID: p.ID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      strings.TrimSpace(req.Phone),
		Registered: req.Registered,
		RSVP:       model.RSVPPending,
		CreatedAt:  time.Now().UTC(),
	}

	inserted, err := s.guests.Insert(ctx, g, p.MaxGuests)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, apperr.ValidationFields("guest capacity exceeded", map[string]string{
			"capacity": fmt.Sprintf("roster is limited to %d guests", p.MaxGuests),
		})
	}
	return g, nil
}

// IsEmailRegistered reports whether an email already appears on a
// proposal's roster, case-insensitively. The self-registration flow uses
// this to block duplicate sign-ups.
func (s *ProposalService) IsEmailRegistered(ctx context.Context, proposalID, email string) (bool, error) {
	if _, err := s.GetProposal(ctx, proposalID); err != nil {
		return false, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	return s.guests.EmailExists(ctx, proposalID, email)
}

// DeleteGuest removes a guest scoped by proposal and guest id together.
// "Guest never existed" and "guest belongs to another proposal" both come
// back as the same NotFoundError.
func (s *ProposalService) DeleteGuest(ctx context.Context, proposalID, guestID string) error {
	if _, err := s.loadMutable(ctx, proposalID); err != nil {
		return err
	}
	return s.guests.Delete(ctx, proposalID, guestID)
}

// GuestCount returns the live roster size for a proposal.
func (s *ProposalService) GuestCount(ctx context.Context, proposalID string) (int, error) {
	if _, err := s.GetProposal(ctx, proposalID); err != nil {
		return 0, err
	}
	return s.guests.CountByProposal(ctx, proposalID)
}

// ListGuests returns a proposal's roster.
func (s *ProposalService) ListGuests(ctx context.Context, proposalID string) ([]model.Guest, error) {
	if _, err := s.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	return s.guests.ListByProposal(ctx, proposalID)
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
