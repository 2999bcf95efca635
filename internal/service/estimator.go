package service

import (
	"context"

	"github.com/atlastrips/proposal-engine/internal/model"
	"github.com/atlastrips/proposal-engine/internal/pricing"
)

// PerPersonEstimate derives the floor/ceiling price-per-guest envelope from
// the proposal's already-computed total, its capacity bounds, and the live
// guest count.
func (s *ProposalService) PerPersonEstimate(ctx context.Context, proposalID string) (*model.PerPersonEstimate, error) {
	p, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	count, err := s.guests.CountByProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	est := pricing.PerPerson(p.Total, count, p.MinGuests, p.MaxGuests)
	return &est, nil
}
