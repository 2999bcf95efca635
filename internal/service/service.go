// Package service implements the proposal engine's business logic:
// validation, pricing orchestration, roster capacity rules, and the
// lifecycle state machine. It sits between the HTTP handlers and the
// repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
)

// ProposalStore is the persistence contract for proposals.
type ProposalStore interface {
	Create(ctx context.Context, p *model.Proposal) error
	GetByID(ctx context.Context, id string) (*model.Proposal, error)
	List(ctx context.Context) ([]model.Proposal, error)
	FinalizePricing(ctx context.Context, id string) (*model.Proposal, error)
	ApplyTransition(ctx context.Context, id string, from, to model.ProposalStatus) (bool, error)
}

// InclusionStore is the persistence contract for line items.
type InclusionStore interface {
	Insert(ctx context.Context, inc *model.Inclusion) error
	Update(ctx context.Context, inc *model.Inclusion) error
	Delete(ctx context.Context, proposalID, inclusionID string) error
	ListByProposal(ctx context.Context, proposalID string) ([]model.Inclusion, error)
}

// GuestStore is the persistence contract for the guest roster. Insert must
// evaluate the capacity check and the row insert atomically when maxGuests
// is positive.
type GuestStore interface {
	Insert(ctx context.Context, g *model.Guest, maxGuests int) (bool, error)
	CountByProposal(ctx context.Context, proposalID string) (int, error)
	EmailExists(ctx context.Context, proposalID, email string) (bool, error)
	Delete(ctx context.Context, proposalID, guestID string) error
	ListByProposal(ctx context.Context, proposalID string) ([]model.Guest, error)
}

// ActivityStore is the append-only audit contract.
type ActivityStore interface {
	Append(ctx context.Context, e *model.ActivityEntry) error
}

// ProposalService orchestrates all proposal business operations.
type ProposalService struct {
	proposals  ProposalStore
	inclusions InclusionStore
	guests     GuestStore
	activity   ActivityStore
	log        zerolog.Logger
}

// NewProposalService constructs a ProposalService with its dependencies.
func NewProposalService(
	proposals ProposalStore,
	inclusions InclusionStore,
	guests GuestStore,
	activity ActivityStore,
	log zerolog.Logger,
) *ProposalService {
	return &ProposalService{
		proposals:  proposals,
		inclusions: inclusions,
		guests:     guests,
		activity:   activity,
		log:        log,
	}
}

// CreateProposal validates the request and persists a new draft proposal.
// Percentage and capacity fields default explicitly to zero values here
// rather than relying on any downstream defaulting.
func (s *ProposalService) CreateProposal(ctx context.Context, req model.CreateProposalRequest) (*model.Proposal, error) {
	req.Title = strings.TrimSpace(req.Title)
	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "title is required"
	}
	if req.PartySize < 1 {
		fields["party_size"] = "party size must be at least 1"
	}
	if req.MinGuests < 0 || req.MaxGuests < 0 {
		fields["min_guests"] = "capacity bounds cannot be negative"
	}
	if req.MinGuests > 0 && req.MaxGuests > 0 && req.MinGuests > req.MaxGuests {
		fields["min_guests"] = "min_guests cannot exceed max_guests"
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		fields["discount_percentage"] = "discount must be between 0 and 100"
	}
	if req.TaxRate < 0 || req.TaxRate > 1 {
		fields["tax_rate"] = "tax rate is a decimal fraction between 0 and 1"
	}
	if req.GratuityPercentage < 0 || req.GratuityPercentage > 100 {
		fields["gratuity_percentage"] = "gratuity must be between 0 and 100"
	}
	if req.DepositPercentage < 0 || req.DepositPercentage > 100 {
		fields["deposit_percentage"] = "deposit must be between 0 and 100"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid proposal", fields)
	}

	now := time.Now().UTC()
	p := &model.Proposal{
		ID:                 uuid.New().String(),
		Title:              req.Title,
		Status:             model.StatusDraft,
		PartySize:          req.PartySize,
		MinGuests:          req.MinGuests,
		MaxGuests:          req.MaxGuests,
		DiscountPercentage: req.DiscountPercentage,
		TaxRate:            req.TaxRate,
		GratuityPercentage: req.GratuityPercentage,
		DepositPercentage:  req.DepositPercentage,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProposal returns a single proposal by id.
func (s *ProposalService) GetProposal(ctx context.Context, id string) (*model.Proposal, error) {
	if id == "" {
		return nil, apperr.NotFound("proposal not found")
	}
	return s.proposals.GetByID(ctx, id)
}

// ListProposals returns all proposals, newest first.
func (s *ProposalService) ListProposals(ctx context.Context) ([]model.Proposal, error) {
	return s.proposals.List(ctx)
}

// loadMutable loads a proposal and rejects mutation once it has converted.
// Converted is terminal; its inclusions and roster are frozen history.
func (s *ProposalService) loadMutable(ctx context.Context, proposalID string) (*model.Proposal, error) {
	p, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status == model.StatusConverted {
		return nil, apperr.Validation("proposal has been converted and can no longer be edited")
	}
	return p, nil
}
