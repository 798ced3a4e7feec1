package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/payments"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/revision"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testTenant(id, property string) engine.Tenant {
	return engine.Tenant{
		ID:          engine.TenantID(id),
		PropertyID:  engine.PropertyID(property),
		Name:        "Tenant " + id,
		Email:       id + "@example.com",
		RoomNumber:  "R-" + id,
		CurrentRent: dec("1380"),
		DueDay:      1,
		IsActive:    true,
		MoveInDate:  engine.NewDate(2024, time.March, 1),
	}
}

// =============================================================================
// TENANT STORE TESTS
// =============================================================================

func TestSaveTenant_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tenant := testTenant("t-1", "villa-1")
	dob := engine.NewDate(1995, time.September, 10)
	deposit := dec("2760")
	received := engine.NewDate(2024, time.February, 20)
	tenant.DateOfBirth = &dob
	tenant.DepositAmount = &deposit
	tenant.DepositReceivedDate = &received

	require.NoError(t, store.SaveTenant(ctx, tenant))

	got, err := store.GetTenant(ctx, "t-1")
	require.NoError(t, err)

	assert.Equal(t, tenant.Name, got.Name)
	assert.Equal(t, tenant.Email, got.Email)
	assert.True(t, got.CurrentRent.Equal(dec("1380")))
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, dob, *got.DateOfBirth)
	require.NotNil(t, got.DepositAmount)
	assert.True(t, got.DepositAmount.Equal(deposit))
	assert.Nil(t, got.DepositRefundedAmount)
	assert.Nil(t, got.MoveOutDate)
}

func TestSaveTenant_UpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tenant := testTenant("t-1", "villa-1")
	require.NoError(t, store.SaveTenant(ctx, tenant))

	tenant.CurrentRent = dec("1419.15")
	tenant.IsActive = false
	require.NoError(t, store.SaveTenant(ctx, tenant))

	got, err := store.GetTenant(ctx, "t-1")
	require.NoError(t, err)
	assert.True(t, got.CurrentRent.Equal(dec("1419.15")))
	assert.False(t, got.IsActive)
}

func TestGetTenant_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTenant(context.Background(), "nope")
	assert.ErrorIs(t, err, engine.ErrTenantNotFound)
}

func TestListTenants_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := testTenant("t-1", "villa-1")
	inactive := testTenant("t-2", "villa-1")
	inactive.IsActive = false
	other := testTenant("t-3", "villa-2")
	require.NoError(t, store.SaveTenant(ctx, active))
	require.NoError(t, store.SaveTenant(ctx, inactive))
	require.NoError(t, store.SaveTenant(ctx, other))

	all, err := store.ListTenants(ctx, sqlite.TenantFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	villa1, err := store.ListTenants(ctx, sqlite.TenantFilter{PropertyID: "villa-1"})
	require.NoError(t, err)
	assert.Len(t, villa1, 2)

	activeOnly, err := store.ListTenants(ctx, sqlite.TenantFilter{PropertyID: "villa-1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, engine.TenantID("t-1"), activeOnly[0].ID)
}

func TestUpdateRent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTenant(ctx, testTenant("t-1", "villa-1")))
	require.NoError(t, store.UpdateRent(ctx, "t-1", dec("1419.15")))

	got, err := store.GetTenant(ctx, "t-1")
	require.NoError(t, err)
	assert.True(t, got.CurrentRent.Equal(dec("1419.15")))

	assert.ErrorIs(t, store.UpdateRent(ctx, "ghost", dec("1")), engine.ErrTenantNotFound)
}

func TestRecordDepositReturn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tenant := testTenant("t-1", "villa-1")
	deposit := dec("2760")
	tenant.DepositAmount = &deposit
	require.NoError(t, store.SaveTenant(ctx, tenant))

	refundDate := engine.NewDate(2025, time.February, 5)
	require.NoError(t, store.RecordDepositReturn(ctx, "t-1", dec("2760"), refundDate))

	got, err := store.GetTenant(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, got.DepositRefundedAmount)
	assert.True(t, got.DepositRefundedAmount.Equal(dec("2760")))
	require.NotNil(t, got.DepositRefundedDate)
	assert.Equal(t, refundDate, *got.DepositRefundedDate)
}

// =============================================================================
// NOTE LOG TESTS
// =============================================================================

func TestAppendNote_NeverOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTenant(ctx, testTenant("t-1", "villa-1")))
	require.NoError(t, store.AppendNote(ctx, "t-1", "paid late in March"))
	require.NoError(t, store.AppendNote(ctx, "t-1", "deposit wired"))
	require.NoError(t, store.AppendNote(ctx, "t-1", "   ")) // blank is a no-op

	notes, err := store.ListNotes(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "paid late in March", notes[0].Note)
	assert.Equal(t, "deposit wired", notes[1].Note)
}

// =============================================================================
// PAYMENT STORE TESTS
// =============================================================================

func testPayment(tenantID, month string) payments.Payment {
	return payments.Payment{
		TenantID: engine.TenantID(tenantID),
		Month:    month,
		Expected: dec("1380"),
		Received: decimal.Zero,
		Status:   payments.StatusPending,
	}
}

func TestSavePayment_UpsertPerTenantMonth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTenant(ctx, testTenant("t-1", "villa-1")))
	require.NoError(t, store.SavePayment(ctx, testPayment("t-1", "2025-03")))

	// Second save for the same (tenant, month) updates in place.
	p := testPayment("t-1", "2025-03")
	p.Received = dec("1380")
	p.Status = payments.StatusPaid
	payDate := engine.NewDate(2025, time.March, 3)
	p.PaymentDate = &payDate
	require.NoError(t, store.SavePayment(ctx, p))

	list, err := store.ListPayments(ctx, "villa-1", "2025-03")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, payments.StatusPaid, list[0].Status)
	assert.True(t, list[0].Received.Equal(dec("1380")))
	require.NotNil(t, list[0].PaymentDate)
}

func TestSavePayment_InvalidMonth(t *testing.T) {
	store := newTestStore(t)
	err := store.SavePayment(context.Background(), testPayment("t-1", "2025-13"))
	assert.ErrorIs(t, err, engine.ErrInvalidMonth)
}

func TestGetPayment_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetPayment(context.Background(), "nope")
	assert.ErrorIs(t, err, engine.ErrPaymentNotFound)
}

func TestCyclePaymentStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTenant(ctx, testTenant("t-1", "villa-1")))
	require.NoError(t, store.SavePayment(ctx, testPayment("t-1", "2025-03")))

	list, err := store.ListPayments(ctx, "villa-1", "2025-03")
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	next, err := store.CyclePaymentStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payments.StatusPaid, next)

	got, err := store.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payments.StatusPaid, got.Status)

	_, err = store.CyclePaymentStatus(ctx, "ghost")
	assert.ErrorIs(t, err, engine.ErrPaymentNotFound)
}

func TestEnsureMonth_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTenant(ctx, testTenant("t-1", "villa-1")))
	require.NoError(t, store.SaveTenant(ctx, testTenant("t-2", "villa-1")))
	inactive := testTenant("t-3", "villa-1")
	inactive.IsActive = false
	require.NoError(t, store.SaveTenant(ctx, inactive))

	created, err := store.EnsureMonth(ctx, "villa-1", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Running again creates nothing.
	created, err = store.EnsureMonth(ctx, "villa-1", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	list, err := store.ListPayments(ctx, "villa-1", "2025-03")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		assert.Equal(t, payments.StatusPending, p.Status)
		assert.True(t, p.Expected.Equal(dec("1380")))
	}
}

func TestEnsureMonth_PreservesEditedRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTenant(ctx, testTenant("t-1", "villa-1")))

	p := testPayment("t-1", "2025-03")
	p.Received = dec("1380")
	p.Status = payments.StatusPaid
	require.NoError(t, store.SavePayment(ctx, p))

	created, err := store.EnsureMonth(ctx, "villa-1", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	list, err := store.ListPayments(ctx, "villa-1", "2025-03")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, payments.StatusPaid, list[0].Status)
}

// =============================================================================
// IRL INDEX STORE TESTS
// =============================================================================

func TestIndexEntries_UpsertAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveIndexEntry(ctx, revision.IndexEntry{Year: 2025, Quarter: 3, Value: dec("144.50")}))
	require.NoError(t, store.SaveIndexEntry(ctx, revision.IndexEntry{Year: 2024, Quarter: 3, Value: dec("141.00")}))

	// Re-publishing a quarter overwrites the value.
	require.NoError(t, store.SaveIndexEntry(ctx, revision.IndexEntry{Year: 2025, Quarter: 3, Value: dec("145.00"), VariationPct: dec("2.84")}))

	series, err := store.ListIndexEntries(ctx)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 2024, series[0].Year)
	assert.Equal(t, 2025, series[1].Year)
	assert.True(t, series[1].Value.Equal(dec("145.00")))
	assert.True(t, series[1].VariationPct.Equal(dec("2.84")))
}
