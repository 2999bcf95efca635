// Package model defines the core domain types for the trip-proposal engine.
package model

import "time"

// PricingType determines how an inclusion's line total is derived.
type PricingType string

const (
	PricingFlat      PricingType = "flat"
	PricingPerPerson PricingType = "per_person"
	PricingPerDay    PricingType = "per_day"
)

// Normalize maps unknown or empty pricing types to flat, which is the
// documented default for inclusions that never had a type set.
func (p PricingType) Normalize() PricingType {
	switch p {
	case PricingFlat, PricingPerPerson, PricingPerDay:
		return p
	default:
		return PricingFlat
	}
}

// Proposal is a quotable trip plan with inclusions, a guest roster, and a
// lifecycle status. Computed totals are written only by the pricing
// calculator; everything else treats them as read-only.
type Proposal struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Status ProposalStatus `json:"status"`

	PartySize int `json:"party_size"`
	// Capacity bounds. Zero means unset.
	MinGuests int `json:"min_guests"`
	MaxGuests int `json:"max_guests"`

	// Percentage parameters. Discount, gratuity, and deposit are percentages
	// (10 means 10%); TaxRate is a decimal fraction (0.091 means 9.1%).
	DiscountPercentage float64 `json:"discount_percentage"`
	TaxRate            float64 `json:"tax_rate"`
	GratuityPercentage float64 `json:"gratuity_percentage"`
	DepositPercentage  float64 `json:"deposit_percentage"`

	// Computed totals.
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Taxes          float64 `json:"taxes"`
	GratuityAmount float64 `json:"gratuity_amount"`
	Total          float64 `json:"total"`
	DepositAmount  float64 `json:"deposit_amount"`
	BalanceDue     float64 `json:"balance_due"`

	DepositPaid bool `json:"deposit_paid"`
	ViewCount   int  `json:"view_count"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt  *time.Time `json:"declined_at,omitempty"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Inclusion is a priced line item on a proposal.
type Inclusion struct {
	ID          string      `json:"id"`
	ProposalID  string      `json:"proposal_id"`
	Name        string      `json:"name"`
	PricingType PricingType `json:"pricing_type"`
	UnitPrice   float64     `json:"unit_price"`
	// Quantity is a unit count for flat pricing and a day count for per-day
	// pricing. Per-person lines multiply by party size instead.
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// Guest is a roster entry on a proposal. Guests reference their proposal by
// id only; they carry no upward ownership.
type Guest struct {
	ID         string     `json:"id"`
	ProposalID string     `json:"proposal_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Registered bool       `json:"registered"`
	RSVP       string     `json:"rsvp"`
	AmountPaid float64    `json:"amount_paid"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RSVP values carried on a guest.
const (
	RSVPPending  = "pending"
	RSVPAccepted = "yes"
	RSVPDeclined = "no"
)

// ActivityEntry is one append-only audit record for a proposal.
type ActivityEntry struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposal_id"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

// PerPersonEstimate is the floor/ceiling price-per-guest envelope derived
// from a proposal's total and its capacity bounds.
type PerPersonEstimate struct {
	Total            float64 `json:"total"`
	GuestCount       int     `json:"guest_count"`
	CurrentPerPerson float64 `json:"current_per_person"`
	CeilingPrice     float64 `json:"ceiling_price"`
	FloorPrice       float64 `json:"floor_price"`
}

// CreateProposalRequest is the payload for creating a new proposal.
type CreateProposalRequest struct {
	Title              string  `json:"title"`
	PartySize          int     `json:"party_size"`
	MinGuests          int     `json:"min_guests"`
	MaxGuests          int     `json:"max_guests"`
	DiscountPercentage float64 `json:"discount_percentage"`
	TaxRate            float64 `json:"tax_rate"`
	GratuityPercentage float64 `json:"gratuity_percentage"`
	DepositPercentage  float64 `json:"deposit_percentage"`
}

// InclusionRequest is the payload for adding or updating a line item.
type InclusionRequest struct {
	Name        string  `json:"name"`
	PricingType string  `json:"pricing_type"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// GuestRequest is the payload for adding a guest to the roster.
type GuestRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Registered bool   `json:"registered"`
}

// TransitionRequest is the payload for a status transition.
type TransitionRequest struct {
	Target string `json:"target"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
