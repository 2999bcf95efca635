package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
	"github.com/atlastrips/proposal-engine/internal/pricing"
)

// fakeStore is an in-memory implementation of all four store contracts with
// the same observable semantics as the pgx repositories: scoped deletes
// collapse to NotFoundError, the guest insert evaluates the capacity check
// atomically under its lock, and ApplyTransition is conditional on the
// caller's view of the current status.
type fakeStore struct {
	mu         sync.Mutex
	proposals  map[string]*model.Proposal
	inclusions map[string][]model.Inclusion
	guests     map[string][]model.Guest
	activity   []model.ActivityEntry
	auditErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		proposals:  make(map[string]*model.Proposal),
		inclusions: make(map[string][]model.Inclusion),
		guests:     make(map[string][]model.Guest),
	}
}

func (f *fakeStore) Create(_ context.Context, p *model.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.proposals[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.proposals[id]
	if !ok {
		return nil, apperr.NotFound("proposal not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context) ([]model.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Proposal, 0, len(f.proposals))
	for _, p := range f.proposals {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) FinalizePricing(_ context.Context, id string) (*model.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.proposals[id]
	if !ok {
		return nil, apperr.NotFound("proposal not found")
	}
	incs := f.inclusions[id]
	breakdown := pricing.Compute(p, incs)
	for i := range incs {
		incs[i].TotalPrice = pricing.LineTotal(incs[i], p.PartySize)
	}
	pricing.Apply(p, breakdown)
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ApplyTransition(_ context.Context, id string, from, to model.ProposalStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.proposals[id]
	if !ok || p.Status != from {
		return false, nil
	}
	now := time.Now().UTC()
	switch to {
	case model.StatusSent:
		p.SentAt = &now
	case model.StatusViewed:
		p.ViewedAt = &now
		p.ViewCount++
	case model.StatusAccepted:
		p.AcceptedAt = &now
	case model.StatusDeclined:
		p.DeclinedAt = &now
	case model.StatusConverted:
		p.ConvertedAt = &now
	case model.StatusDraft:
		p.DeclinedAt = nil
	}
	p.Status = to
	p.UpdatedAt = now
	return true, nil
}

func (f *fakeStore) Insert(_ context.Context, g *model.Guest, maxGuests int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if maxGuests > 0 && len(f.guests[g.ProposalID]) >= maxGuests {
		return false, nil
	}
	f.guests[g.ProposalID] = append(f.guests[g.ProposalID], *g)
	return true, nil
}

func (f *fakeStore) CountByProposal(_ context.Context, proposalID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.guests[proposalID]), nil
}

func (f *fakeStore) EmailExists(_ context.Context, proposalID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.guests[proposalID] {
		if strings.EqualFold(g.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Delete(_ context.Context, proposalID, guestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	roster := f.guests[proposalID]
	for i, g := range roster {
		if g.ID == guestID {
			f.guests[proposalID] = append(roster[:i], roster[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("guest not found")
}

func (f *fakeStore) ListByProposal(_ context.Context, proposalID string) ([]model.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Guest, len(f.guests[proposalID]))
	copy(out, f.guests[proposalID])
	return out, nil
}

func (f *fakeStore) Append(_ context.Context, e *model.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.auditErr != nil {
		return f.auditErr
	}
	f.activity = append(f.activity, *e)
	return nil
}

// fakeInclusionStore adapts fakeStore to the InclusionStore contract; the
// method set overlaps GuestStore's, so it gets its own receiver.
type fakeInclusionStore struct {
	s *fakeStore
}

func (f fakeInclusionStore) Insert(_ context.Context, inc *model.Inclusion) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.inclusions[inc.ProposalID] = append(f.s.inclusions[inc.ProposalID], *inc)
	return nil
}

func (f fakeInclusionStore) Update(_ context.Context, inc *model.Inclusion) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.inclusions[inc.ProposalID]
	for i := range items {
		if items[i].ID == inc.ID {
			items[i] = *inc
			return nil
		}
	}
	return apperr.NotFound("inclusion not found")
}

func (f fakeInclusionStore) Delete(_ context.Context, proposalID, inclusionID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.inclusions[proposalID]
	for i := range items {
		if items[i].ID == inclusionID {
			f.s.inclusions[proposalID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("inclusion not found")
}

func (f fakeInclusionStore) ListByProposal(_ context.Context, proposalID string) ([]model.Inclusion, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]model.Inclusion, len(f.s.inclusions[proposalID]))
	copy(out, f.s.inclusions[proposalID])
	return out, nil
}

var errAuditDown = errors.New("audit store unavailable")

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestService() (*ProposalService, *fakeStore) {
	store := newFakeStore()
	svc := NewProposalService(store, fakeInclusionStore{store}, store, store, testLogger())
	return svc, store
}
