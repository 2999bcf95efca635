package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []ProposalStatus{
	StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusDeclined, StatusConverted,
}

func TestConvertedIsTerminal(t *testing.T) {
	for _, target := range allStatuses {
		assert.False(t, StatusConverted.CanTransitionTo(target), "converted -> %s must be rejected", target)
	}
	assert.Empty(t, StatusConverted.AllowedTransitions())
}

func TestConfirmedEdges(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusSent))
	assert.True(t, StatusSent.CanTransitionTo(StatusViewed))
	assert.True(t, StatusDeclined.CanTransitionTo(StatusDraft))
}

func TestConfirmedRejections(t *testing.T) {
	assert.False(t, StatusDraft.CanTransitionTo(StatusAccepted))
	assert.False(t, StatusDraft.CanTransitionTo(StatusViewed))
	assert.False(t, StatusDraft.CanTransitionTo(StatusConverted))
}

func TestUnknownStatusHasNoEdges(t *testing.T) {
	// A status that never made it into the allow-list starts locked down.
	unknown := ProposalStatus("archived")
	for _, target := range allStatuses {
		assert.False(t, unknown.CanTransitionTo(target))
	}
}

func TestNoSelfTransitions(t *testing.T) {
	for _, s := range allStatuses {
		assert.False(t, s.CanTransitionTo(s), "%s -> %s should not be allowed", s, s)
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("accepted")
	assert.True(t, ok)
	assert.Equal(t, StatusAccepted, st)

	_, ok = ParseStatus("cancelled")
	assert.False(t, ok)
}
