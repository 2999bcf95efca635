package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
)

func createProposal(t *testing.T, svc *ProposalService, req model.CreateProposalRequest) *model.Proposal {
	t.Helper()
	if req.Title == "" {
		req.Title = "Coastal wine tour"
	}
	if req.PartySize == 0 {
		req.PartySize = 8
	}
	p, err := svc.CreateProposal(context.Background(), req)
	require.NoError(t, err)
	return p
}

func guestReq(first, email string) model.GuestRequest {
	return model.GuestRequest{FirstName: first, LastName: "Tester", Email: email}
}

func TestAddGuestRespectsCapacity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createProposal(t, svc, model.CreateProposalRequest{MaxGuests: 5})

	for i := 0; i < 5; i++ {
		_, err := svc.AddGuest(ctx, p.ID, guestReq("Guest", email(i)))
		require.NoError(t, err)
	}

	_, err := svc.AddGuest(ctx, p.ID, guestReq("Overflow", "overflow@example.com"))
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "capacity")

	count, err := svc.GuestCount(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestAddGuestConcurrentNeverOverruns(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	const limit, attempts = 10, 25
	p := createProposal(t, svc, model.CreateProposalRequest{MaxGuests: limit})

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddGuest(ctx, p.ID, guestReq("Guest", email(i)))
		}(i)
	}
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.IsValidation(err):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, limit, ok)
	assert.Equal(t, attempts-limit, full)

	count, err := svc.GuestCount(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, count)
}

func TestAddGuestUnboundedWithoutCap(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createProposal(t, svc, model.CreateProposalRequest{})

	for i := 0; i < 30; i++ {
		_, err := svc.AddGuest(ctx, p.ID, guestReq("Guest", email(i)))
		require.NoError(t, err)
	}
	count, err := svc.GuestCount(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, count)
}

func TestAddGuestValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createProposal(t, svc, model.CreateProposalRequest{})

	_, err := svc.AddGuest(ctx, p.ID, model.GuestRequest{FirstName: "A", Email: "not-an-address"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")

	_, err = svc.AddGuest(ctx, "missing", guestReq("A", "a@example.com"))
	assert.True(t, apperr.IsNotFound(err))
}

func TestIsEmailRegisteredIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createProposal(t, svc, model.CreateProposalRequest{})
	other := createProposal(t, svc, model.CreateProposalRequest{Title: "Desert stargazing"})

	_, err := svc.AddGuest(ctx, p.ID, guestReq("Ana", "Ana.Lima@Example.com"))
	require.NoError(t, err)

	registered, err := svc.IsEmailRegistered(ctx, p.ID, "ANA.LIMA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.True(t, registered)

	// The check is scoped to one proposal.
	registered, err = svc.IsEmailRegistered(ctx, other.ID, "ana.lima@example.com")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestDeleteGuestScopedNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createProposal(t, svc, model.CreateProposalRequest{})
	other := createProposal(t, svc, model.CreateProposalRequest{Title: "Glacier hike"})

	g, err := svc.AddGuest(ctx, p.ID, guestReq("Ana", "ana@example.com"))
	require.NoError(t, err)

	// A guest that belongs to a different proposal and a guest that never
	// existed produce the same NotFoundError.
	err = svc.DeleteGuest(ctx, other.ID, g.ID)
	assert.True(t, apperr.IsNotFound(err))
	err = svc.DeleteGuest(ctx, p.ID, "no-such-guest")
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, svc.DeleteGuest(ctx, p.ID, g.ID))
	count, err := svc.GuestCount(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRosterFrozenAfterConversion(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	p := createProposal(t, svc, model.CreateProposalRequest{})
	store.proposals[p.ID].Status = model.StatusConverted

	_, err := svc.AddGuest(ctx, p.ID, guestReq("Late", "late@example.com"))
	assert.True(t, apperr.IsValidation(err))
	err = svc.DeleteGuest(ctx, p.ID, "any")
	assert.True(t, apperr.IsValidation(err))
}

func email(i int) string {
	return fmt.Sprintf("guest%d@example.com", i)
}
