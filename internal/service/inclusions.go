package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
	"github.com/atlastrips/proposal-engine/internal/pricing"
)

func (s *ProposalService) buildInclusion(p *model.Proposal, req model.InclusionRequest) (*model.Inclusion, error) {
	req.Name = strings.TrimSpace(req.Name)
	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "name is required"
	}
	if req.UnitPrice < 0 {
		fields["unit_price"] = "unit price cannot be negative"
	}
	if req.Quantity < 1 {
		fields["quantity"] = "quantity must be at least 1"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid inclusion", fields)
	}

	inc := &model.Inclusion{
		ProposalID:  p.ID,
		Name:        req.Name,
		PricingType: model.PricingType(req.PricingType).Normalize(),
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
	}
	inc.TotalPrice = pricing.LineTotal(*inc, p.PartySize)
	return inc, nil
}

// AddInclusion appends a line item to a proposal. Adding does not recompute
// the proposal's totals; callers finalize pricing explicitly.
func (s *ProposalService) AddInclusion(ctx context.Context, proposalID string, req model.InclusionRequest) (*model.Inclusion, error) {
	p, err := s.loadMutable(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	inc, err := s.buildInclusion(p, req)
	if err != nil {
		return nil, err
	}
	inc.ID = uuid.New().String()
	if err := s.inclusions.Insert(ctx, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// UpdateInclusion rewrites a line item scoped to its proposal.
func (s *ProposalService) UpdateInclusion(ctx context.Context, proposalID, inclusionID string, req model.InclusionRequest) (*model.Inclusion, error) {
	p, err := s.loadMutable(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	inc, err := s.buildInclusion(p, req)
	if err != nil {
		return nil, err
	}
	inc.ID = inclusionID
	if err := s.inclusions.Update(ctx, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// DeleteInclusion removes a line item scoped to its proposal.
func (s *ProposalService) DeleteInclusion(ctx context.Context, proposalID, inclusionID string) error {
	if _, err := s.loadMutable(ctx, proposalID); err != nil {
		return err
	}
	return s.inclusions.Delete(ctx, proposalID, inclusionID)
}

// ListInclusions returns a proposal's line items.
func (s *ProposalService) ListInclusions(ctx context.Context, proposalID string) ([]model.Inclusion, error) {
	if _, err := s.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	return s.inclusions.ListByProposal(ctx, proposalID)
}
