/*
Package revision implements the annual statutory rent-index (IRL) revision
calculator.

PURPOSE:
  French leases allow one rent revision per year, indexed on the IRL, the
  quarterly reference rental index. The projection compares the latest
  published quarter with the same quarter one year earlier:

    factor  = latest.value / previous.value
    newRent = round2(currentRent * factor)
    pct     = round2((factor - 1) * 100)

NON-DECREASE GUARD:
  The system never proposes a decrease. When newRent <= currentRent the
  projection is absent. This is an explicit guard clause, not a clamp, so a
  future decision to support downward revisions is a one-line change.

DATA INSUFFICIENCY:
  Fewer than two comparable quarters yields no projection. Not an error.

ROUNDING:
  The factor is kept at full precision; only newRent and pct are rounded,
  half-up to 2 decimal places (the cent a tenant is actually billed).

SEE ALSO:
  - engine: scheduler used for the lease-anniversary trigger
  - reminders: surfaces actionable projections within the 61-day window
*/
package revision

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
)

// =============================================================================
// INDEX SERIES
// =============================================================================

// IndexEntry is one quarterly published IRL value, unique per (year, quarter).
type IndexEntry struct {
	Year         int
	Quarter      int // 1-4
	Value        decimal.Decimal
	VariationPct decimal.Decimal
}

// Latest returns the most recent entry of the series, ordered by
// (year, quarter). False when the series is empty.
func Latest(series []IndexEntry) (IndexEntry, bool) {
	if len(series) == 0 {
		return IndexEntry{}, false
	}
	sorted := make([]IndexEntry, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Quarter < sorted[j].Quarter
	})
	return sorted[len(sorted)-1], true
}

func find(series []IndexEntry, year, quarter int) (IndexEntry, bool) {
	for _, e := range series {
		if e.Year == year && e.Quarter == quarter {
			return e, true
		}
	}
	return IndexEntry{}, false
}

// =============================================================================
// PROJECTION
// =============================================================================

// Projection is a proposed revised rent. Applying it is a separate, explicit
// operator action.
type Projection struct {
	Factor  decimal.Decimal // full precision, latest / previous
	NewRent decimal.Decimal // rounded to the cent
	Pct     decimal.Decimal // display percentage, 2 decimals
	Latest  IndexEntry
	Prior   IndexEntry
}

// Project computes the revised rent for the latest available quarter against
// the same quarter one year earlier. It returns false when fewer than two
// comparable entries exist, or when the projection would not increase the
// rent (downward revisions are suppressed).
func Project(currentRent decimal.Decimal, series []IndexEntry) (Projection, bool) {
	latest, ok := Latest(series)
	if !ok {
		return Projection{}, false
	}
	prior, ok := find(series, latest.Year-1, latest.Quarter)
	if !ok || !prior.Value.IsPositive() {
		return Projection{}, false
	}

	factor := latest.Value.Div(prior.Value)
	newRent := currentRent.Mul(factor).Round(2)

	if newRent.LessThanOrEqual(currentRent) {
		return Projection{}, false
	}

	return Projection{
		Factor:  factor,
		NewRent: newRent,
		Pct:     factor.Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Round(2),
		Latest:  latest,
		Prior:   prior,
	}, true
}

// =============================================================================
// APPLY
// =============================================================================

// Apply overwrites the tenant's current rent with the revised amount. Past
// payments are never touched; the new rent only feeds future months.
func Apply(t *engine.Tenant, newRent decimal.Decimal) {
	t.CurrentRent = newRent
}

// ReminderWindowDays is the lookahead for surfacing a projection as an
// actionable anniversary reminder.
const ReminderWindowDays = 61

// DueSoon reports whether the tenant's lease anniversary falls within the
// revision reminder window as of today.
func DueSoon(t engine.Tenant, today engine.Date) (engine.Occurrence, bool) {
	occ := t.LeaseAnniversary(today)
	return occ, occ.DaysUntil <= ReminderWindowDays
}
