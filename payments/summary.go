package payments

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTHLY AGGREGATES
// =============================================================================
// Aggregates are computed over the payments of a single selected month,
// already filtered by property at the query layer. All sums use the
// effective amount so manual adjustments are honored.

type MonthSummary struct {
	Month string

	Expected  decimal.Decimal // total expected rent
	Collected decimal.Decimal // effective amounts with status paid
	Partial   decimal.Decimal // effective amounts with status partial
	Late      decimal.Decimal // expected amounts still open on late rows
	Unpaid    decimal.Decimal // expected amounts still open on unpaid rows

	// CollectionRate is (collected + partial) / expected as a whole percent,
	// half-up rounded, 0 when nothing is expected.
	CollectionRate int

	Count int
}

// Summarize aggregates the payments whose Month equals month. Payments from
// other months are ignored so callers can pass an unfiltered slice.
func Summarize(all []Payment, month string) MonthSummary {
	s := MonthSummary{
		Month:     month,
		Expected:  decimal.Zero,
		Collected: decimal.Zero,
		Partial:   decimal.Zero,
		Late:      decimal.Zero,
		Unpaid:    decimal.Zero,
	}

	for _, p := range all {
		if p.Month != month {
			continue
		}
		s.Count++
		s.Expected = s.Expected.Add(p.Expected)

		switch p.Status {
		case StatusPaid:
			s.Collected = s.Collected.Add(p.EffectiveAmount())
		case StatusPartial:
			s.Partial = s.Partial.Add(p.EffectiveAmount())
		case StatusLate:
			s.Late = s.Late.Add(p.Expected.Sub(p.EffectiveAmount()))
		case StatusUnpaid:
			s.Unpaid = s.Unpaid.Add(p.Expected.Sub(p.EffectiveAmount()))
		}
	}

	if s.Expected.IsPositive() {
		rate := s.Collected.Add(s.Partial).
			Div(s.Expected).
			Mul(decimal.NewFromInt(100)).
			Round(0)
		s.CollectionRate = int(rate.IntPart())
	}

	return s
}

// Outstanding is the expected total minus everything effectively counted.
func (s MonthSummary) Outstanding() decimal.Decimal {
	return s.Expected.Sub(s.Collected).Sub(s.Partial)
}
