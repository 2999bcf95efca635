// Package pricing holds the pure numeric engine behind proposal quotes.
// It has no storage or I/O dependencies so every rule is directly testable.
package pricing

import "github.com/atlastrips/proposal-engine/internal/model"

// Breakdown is the full derived cost structure for a proposal.
type Breakdown struct {
	InclusionsSubtotal    float64
	ServicesSubtotal      float64
	StopsSubtotal         float64
	Subtotal              float64
	DiscountAmount        float64
	SubtotalAfterDiscount float64
	Taxes                 float64
	GratuityAmount        float64
	Total                 float64
	DepositAmount         float64
	BalanceDue            float64
}

// LineTotal computes one inclusion's line total. Per-person lines multiply
// by party size and ignore quantity; flat and per-day lines multiply by
// quantity (a unit count or a day count respectively). Unknown pricing
// types fall back to flat.
func LineTotal(inc model.Inclusion, partySize int) float64 {
	switch inc.PricingType.Normalize() {
	case model.PricingPerPerson:
		return inc.UnitPrice * float64(partySize)
	case model.PricingPerDay:
		return inc.UnitPrice * float64(inc.Quantity)
	default:
		return inc.UnitPrice * float64(inc.Quantity)
	}
}

// Compute derives the full breakdown for a proposal from its inclusion list
// and percentage parameters.
//
// Stop-level costing is unmodeled, so StopsSubtotal stays zero and
// ServicesSubtotal always equals InclusionsSubtotal.
//
// The deposit branch is load-bearing: once a deposit has been collected,
// editing the proposal must never retroactively change the amount already
// charged. A paid deposit is therefore carried through unchanged and
// subtracted from the balance; an unpaid deposit is a running quote,
// recomputed live, with nothing subtracted yet.
func Compute(p *model.Proposal, inclusions []model.Inclusion) Breakdown {
	var b Breakdown
	for _, inc := range inclusions {
		b.InclusionsSubtotal += LineTotal(inc, p.PartySize)
	}
	b.ServicesSubtotal = b.InclusionsSubtotal
	b.StopsSubtotal = 0
	b.Subtotal = b.InclusionsSubtotal + b.StopsSubtotal

	b.DiscountAmount = b.Subtotal * p.DiscountPercentage / 100
	b.SubtotalAfterDiscount = b.Subtotal - b.DiscountAmount
	b.Taxes = b.SubtotalAfterDiscount * p.TaxRate
	b.GratuityAmount = b.SubtotalAfterDiscount * p.GratuityPercentage / 100
	b.Total = b.SubtotalAfterDiscount + b.Taxes + b.GratuityAmount

	if p.DepositPaid {
		b.DepositAmount = p.DepositAmount
		b.BalanceDue = b.Total - b.DepositAmount
	} else {
		b.DepositAmount = b.Total * p.DepositPercentage / 100
		b.BalanceDue = b.Total
	}
	return b
}

// Apply writes a breakdown onto the proposal's computed-total fields.
func Apply(p *model.Proposal, b Breakdown) {
	p.Subtotal = b.Subtotal
	p.DiscountAmount = b.DiscountAmount
	p.Taxes = b.Taxes
	p.GratuityAmount = b.GratuityAmount
	p.Total = b.Total
	p.DepositAmount = b.DepositAmount
	p.BalanceDue = b.BalanceDue
}

// PerPerson derives the floor/ceiling price-per-guest envelope. With zero
// guests the current estimate degenerates to the full total instead of
// dividing by zero, and every capacity divisor is floored at one so the
// outputs stay finite when bounds are unset.
func PerPerson(total float64, guestCount, minGuests, maxGuests int) model.PerPersonEstimate {
	est := model.PerPersonEstimate{
		Total:      total,
		GuestCount: guestCount,
	}
	if guestCount > 0 {
		est.CurrentPerPerson = total / float64(guestCount)
	} else {
		est.CurrentPerPerson = total
	}
	// Fewer guests means a higher per-head cost, so the lower bound on the
	// roster yields the ceiling and the upper bound yields the floor.
	est.CeilingPrice = total / float64(atLeastOne(minGuests))
	est.FloorPrice = total / float64(atLeastOne(maxGuests))
	return est
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
