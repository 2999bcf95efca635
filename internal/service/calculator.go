package service

import (
	"context"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
)

// FinalizePricing recomputes the proposal's full cost breakdown from its
// current inclusion list and percentage parameters and persists it. The
// derivation itself lives in the pricing package; the repository runs it
// inside a proposal-locked transaction so concurrent inclusion edits cannot
// produce a torn totals write.
func (s *ProposalService) FinalizePricing(ctx context.Context, proposalID string) (*model.Proposal, error) {
	if proposalID == "" {
		return nil, apperr.NotFound("proposal not found")
	}
	return s.proposals.FinalizePricing(ctx, proposalID)
}
