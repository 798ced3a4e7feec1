/*
Package reminders builds the dashboard reminder feed.

PURPOSE:
  Three kinds of reminders surface on the operations dashboard:
  - birthdays of active tenants within 30 days (skipped when no date of
    birth is recorded),
  - lease anniversaries within 61 days for which an IRL revision projection
    exists (the actionable rent-revision prompt),
  - overdue deposit returns (move-out more than 30 days ago, still pending).

  Tenants missing the relevant data simply produce no reminder; nothing
  here is an error. "Today" is injected for deterministic output.

SEE ALSO:
  - engine: recurring-date scheduler
  - revision: projection and the 61-day window
  - deposits: overdue evaluation
*/
package reminders

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/deposits"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/revision"
)

// =============================================================================
// REMINDER FEED
// =============================================================================

type Kind string

const (
	KindBirthday       Kind = "birthday"
	KindRevision       Kind = "revision"
	KindDepositOverdue Kind = "deposit_overdue"
)

// BirthdayWindowDays is the lookahead for birthday reminders; the revision
// window lives in the revision package.
const BirthdayWindowDays = 30

type Reminder struct {
	Kind       Kind
	TenantID   engine.TenantID
	TenantName string
	Date       engine.Date
	DaysUntil  int

	// Revision reminders carry the projection so the dashboard can show the
	// proposed rent next to the prompt.
	NewRent *decimal.Decimal
	Pct     *decimal.Decimal
}

// Upcoming assembles the reminder feed for a set of tenants, sorted by
// ascending urgency (DaysUntil, overdue deposits first at -days).
func Upcoming(tenants []engine.Tenant, series []revision.IndexEntry, today engine.Date) []Reminder {
	var out []Reminder

	for _, t := range tenants {
		if t.IsActive {
			if r, ok := birthday(t, today); ok {
				out = append(out, r)
			}
			if r, ok := revisionDue(t, series, today); ok {
				out = append(out, r)
			}
		}
		if r, ok := depositOverdue(t, today); ok {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysUntil < out[j].DaysUntil })
	return out
}

func birthday(t engine.Tenant, today engine.Date) (Reminder, bool) {
	if t.DateOfBirth == nil {
		return Reminder{}, false
	}
	occ := engine.NextOccurrence(t.DateOfBirth.MonthDay(), today)
	if occ.DaysUntil > BirthdayWindowDays {
		return Reminder{}, false
	}
	return Reminder{
		Kind:       KindBirthday,
		TenantID:   t.ID,
		TenantName: t.Name,
		Date:       occ.Date,
		DaysUntil:  occ.DaysUntil,
	}, true
}

func revisionDue(t engine.Tenant, series []revision.IndexEntry, today engine.Date) (Reminder, bool) {
	occ, due := revision.DueSoon(t, today)
	if !due {
		return Reminder{}, false
	}
	p, ok := revision.Project(t.CurrentRent, series)
	if !ok {
		return Reminder{}, false
	}
	return Reminder{
		Kind:       KindRevision,
		TenantID:   t.ID,
		TenantName: t.Name,
		Date:       occ.Date,
		DaysUntil:  occ.DaysUntil,
		NewRent:    &p.NewRent,
		Pct:        &p.Pct,
	}, true
}

func depositOverdue(t engine.Tenant, today engine.Date) (Reminder, bool) {
	ev, ok := deposits.Evaluate(t, today)
	if !ok || !ev.Overdue {
		return Reminder{}, false
	}
	return Reminder{
		Kind:       KindDepositOverdue,
		TenantID:   t.ID,
		TenantName: t.Name,
		Date:       *t.MoveOutDate,
		DaysUntil:  -ev.DaysSinceMoveOut,
	}, true
}
