package model

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	StatusDraft     ProposalStatus = "draft"
	StatusSent      ProposalStatus = "sent"
	StatusViewed    ProposalStatus = "viewed"
	StatusAccepted  ProposalStatus = "accepted"
	StatusDeclined  ProposalStatus = "declined"
	StatusConverted ProposalStatus = "converted"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (ProposalStatus, bool) {
	switch st := ProposalStatus(s); st {
	case StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusDeclined, StatusConverted:
		return st, true
	default:
		return "", false
	}
}

// transitions is the single authoritative allow-list of status edges.
// A status missing from the map has no outbound edges, so converted stays
// terminal and any future status starts locked down until added here.
var transitions = map[ProposalStatus][]ProposalStatus{
	StatusDraft:    {StatusSent},
	StatusSent:     {StatusViewed, StatusAccepted, StatusDeclined},
	StatusViewed:   {StatusAccepted, StatusDeclined},
	StatusAccepted: {StatusConverted, StatusDeclined},
	StatusDeclined: {StatusDraft}, // reopen
}

// CanTransitionTo reports whether the edge from s to target is allowed.
func (s ProposalStatus) CanTransitionTo(target ProposalStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the outbound edges from s.
func (s ProposalStatus) AllowedTransitions() []ProposalStatus {
	out := make([]ProposalStatus, len(transitions[s]))
	copy(out, transitions[s])
	return out
}
