package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
)

func transitionError(from model.ProposalStatus, target string) error {
	return apperr.ValidationFields(
		fmt.Sprintf("Cannot transition from %s to %s", from, target),
		map[string]string{"target": "transition not allowed"},
	)
}

// Transition moves a proposal to the requested status if the edge is on the
// allow-list, applying the edge's side effects (lifecycle timestamps, view
// counter). A rejected transition leaves the proposal untouched and raises
// ValidationError; a missing proposal raises NotFoundError before any
// transition logic runs.
//
// Every landed transition appends an audit record. That write is
// observational only: if it fails, the failure is logged here and never
// propagated, so it can never abort a transition that already succeeded.
func (s *ProposalService) Transition(ctx context.Context, proposalID, targetRaw string) (*model.Proposal, error) {
	p, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	target, ok := model.ParseStatus(targetRaw)
	if !ok {
		return nil, transitionError(p.Status, targetRaw)
	}
	if !p.Status.CanTransitionTo(target) {
		return nil, transitionError(p.Status, string(target))
	}

	applied, err := s.proposals.ApplyTransition(ctx, proposalID, p.Status, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent transition won; report against the fresh status.
		fresh, ferr := s.GetProposal(ctx, proposalID)
		if ferr != nil {
			return nil, ferr
		}
		return nil, transitionError(fresh.Status, string(target))
	}

	from := p.Status
	if p, err = s.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}

	entry := &model.ActivityEntry{
		ID:         uuid.New().String(),
		ProposalID: proposalID,
		Action:     "status_changed",
		Detail:     fmt.Sprintf("%s to %s", from, target),
		CreatedAt:  time.Now().UTC(),
	}
	if auditErr := s.activity.Append(ctx, entry); auditErr != nil {
		s.log.Error().Err(auditErr).
			Str("proposal_id", proposalID).
			Str("from", string(from)).
			Str("to", string(target)).
			Msg("audit write failed after status transition")
	}

	return p, nil
}
