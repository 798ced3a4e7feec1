package lease_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/lease"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func chargeSet(entry engine.Date) lease.ChargeSet {
	return lease.ChargeSet{
		LoyerCHF:           dec("1380"),
		ChargesEnergy:      dec("120"),
		ChargesMaintenance: dec("80"),
		ChargesServices:    dec("60"),
		ExchangeRate:       dec("1.04"),
		EntryDate:          entry,
	}
}

// =============================================================================
// COMPOSITION TESTS
// =============================================================================

func TestCompose_ChargeTotalsAndConversion(t *testing.T) {
	// GIVEN: rent 1380, charges 120+80+60, rate 1.04 CHF/EUR
	// WHEN: Composing
	// THEN: every EUR field is CHF / 1.04 rounded to the cent

	c, err := lease.Compose(chargeSet(engine.NewDate(2025, time.March, 1)))
	require.NoError(t, err)

	assert.Equal(t, "1380.00", c.LoyerCHF.StringFixed(2))
	assert.Equal(t, "1326.92", c.LoyerEUR.StringFixed(2))
	assert.Equal(t, "260.00", c.ChargesTotalCHF.StringFixed(2))
	assert.Equal(t, "250.00", c.ChargesTotalEUR.StringFixed(2))
	assert.Equal(t, "1640.00", c.TotalMonthlyCHF.StringFixed(2))
	assert.Equal(t, "1576.92", c.TotalMonthlyEUR.StringFixed(2))
}

func TestCompose_EndDate_FixedOneYearTerm(t *testing.T) {
	c, err := lease.Compose(chargeSet(engine.NewDate(2025, time.March, 20)))
	require.NoError(t, err)
	assert.Equal(t, engine.NewDate(2026, time.March, 20), c.EndDate)
}

func TestCompose_InvalidRate(t *testing.T) {
	cs := chargeSet(engine.NewDate(2025, time.March, 1))
	cs.ExchangeRate = decimal.Zero

	_, err := lease.Compose(cs)
	assert.ErrorIs(t, err, engine.ErrInvalidRate)
}

// =============================================================================
// PRORATION TESTS
// =============================================================================

func TestCompose_MidMonthEntry_Prorated(t *testing.T) {
	// GIVEN: rent 1380, entry 2025-03-20 (March has 31 days)
	// WHEN: Composing
	// THEN: days_occupied = 12, prorated = 1380 * 12/31 = 534.19

	c, err := lease.Compose(chargeSet(engine.NewDate(2025, time.March, 20)))
	require.NoError(t, err)

	require.NotNil(t, c.Prorata)
	assert.Equal(t, 12, c.Prorata.DaysOccupied)
	assert.Equal(t, 31, c.Prorata.DaysInMonth)
	assert.Equal(t, "534.19", c.Prorata.AmountCHF.StringFixed(2))
	assert.Equal(t, "513.65", c.Prorata.AmountEUR.StringFixed(2))
	assert.Equal(t, engine.NewDate(2025, time.March, 31), c.Prorata.PeriodEnd)
}

func TestCompose_FirstOfMonth_NoProration(t *testing.T) {
	// The explicit branch: full first month, Prorata absent entirely.
	c, err := lease.Compose(chargeSet(engine.NewDate(2025, time.March, 1)))
	require.NoError(t, err)
	assert.Nil(t, c.Prorata)
}

func TestCompose_LastDayOfMonth_OneDayOccupied(t *testing.T) {
	c, err := lease.Compose(chargeSet(engine.NewDate(2025, time.March, 31)))
	require.NoError(t, err)

	require.NotNil(t, c.Prorata)
	assert.Equal(t, 1, c.Prorata.DaysOccupied)
	assert.Equal(t, "44.52", c.Prorata.AmountCHF.StringFixed(2)) // 1380/31
}

func TestCompose_FebruaryLeapYear(t *testing.T) {
	c, err := lease.Compose(chargeSet(engine.NewDate(2024, time.February, 15)))
	require.NoError(t, err)

	require.NotNil(t, c.Prorata)
	assert.Equal(t, 15, c.Prorata.DaysOccupied)
	assert.Equal(t, 29, c.Prorata.DaysInMonth)
}

func TestCompose_ProrationStable_AcrossReads(t *testing.T) {
	// Rounding at computation time: two composes yield identical cents.
	cs := chargeSet(engine.NewDate(2025, time.March, 20))

	a, err := lease.Compose(cs)
	require.NoError(t, err)
	b, err := lease.Compose(cs)
	require.NoError(t, err)

	assert.True(t, a.Prorata.AmountCHF.Equal(b.Prorata.AmountCHF))
	assert.True(t, a.Prorata.AmountEUR.Equal(b.Prorata.AmountEUR))
}

// =============================================================================
// RECEIPT NUMBER TESTS
// =============================================================================

func TestReceiptNumber_Deterministic(t *testing.T) {
	a := lease.ReceiptNumber("t-1", "2025-03")
	b := lease.ReceiptNumber("t-1", "2025-03")
	assert.Equal(t, a, b)
	assert.Contains(t, a, "LVC-202503-")
}

func TestReceiptNumber_DistinctPerTenantAndMonth(t *testing.T) {
	assert.NotEqual(t, lease.ReceiptNumber("t-1", "2025-03"), lease.ReceiptNumber("t-2", "2025-03"))
	assert.NotEqual(t, lease.ReceiptNumber("t-1", "2025-03"), lease.ReceiptNumber("t-1", "2025-04"))
}
