/*
Package sqlite provides the SQLite-backed persistence layer for the lease
financial engine.

PURPOSE:
  Stores the raw records the calculators derive view-state from: tenants
  (with the four nullable deposit columns), one payment row per
  (tenant, month), the quarterly IRL index series, and the append-only
  tenant note log.

KEY TABLES:
  tenants:       Lease records, deposit fields as nullable columns
  payments:      UNIQUE(tenant_id, month) - one expected charge per month
  irl_index:     UNIQUE(year, quarter) - published index values
  tenant_notes:  Append-only note log (notes are never overwritten)

WRITE SEMANTICS:
  Every write is a single-row upsert or update-by-id. Concurrent operator
  edits are last-write-wins; there is no multi-step transaction requirement
  in this core.

DECIMAL STORAGE:
  Monetary values are stored as TEXT and parsed back into decimal.Decimal,
  so no precision is lost round-tripping through the database.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./data/villa.db")   // ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - engine: Tenant record shape
  - payments: Payment record shape and status cycle
  - revision: IndexEntry shape
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/payments"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/revision"
)

// Store implements persistence for tenants, payments, the IRL index and the
// tenant note log.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		room_number TEXT,
		current_rent TEXT NOT NULL,
		due_day INTEGER NOT NULL DEFAULT 1 CHECK (due_day BETWEEN 1 AND 28),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		move_in_date TEXT NOT NULL,
		move_out_date TEXT,
		date_of_birth TEXT,
		deposit_amount TEXT,
		deposit_received_date TEXT,
		deposit_refunded_amount TEXT,
		deposit_refunded_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tenants_property
		ON tenants(property_id);
	CREATE INDEX IF NOT EXISTS idx_tenants_active
		ON tenants(is_active);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id),
		month TEXT NOT NULL,
		expected TEXT NOT NULL,
		received TEXT NOT NULL DEFAULT '0',
		adjusted TEXT,
		payment_date TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(tenant_id, month)
	);

	CREATE INDEX IF NOT EXISTS idx_payments_month
		ON payments(month);
	CREATE INDEX IF NOT EXISTS idx_payments_tenant_month
		ON payments(tenant_id, month);

	CREATE TABLE IF NOT EXISTS irl_index (
		year INTEGER NOT NULL,
		quarter INTEGER NOT NULL CHECK (quarter BETWEEN 1 AND 4),
		value TEXT NOT NULL,
		variation_pct TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		UNIQUE(year, quarter)
	);

	-- Append-only: notes are added, never updated or deleted.
	CREATE TABLE IF NOT EXISTS tenant_notes (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id),
		note TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tenant_notes_tenant
		ON tenant_notes(tenant_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TENANT STORE
// =============================================================================

// SaveTenant upserts a tenant record.
func (s *Store) SaveTenant(ctx context.Context, t engine.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO tenants
		(id, property_id, name, email, phone, room_number, current_rent, due_day,
		 is_active, move_in_date, move_out_date, date_of_birth,
		 deposit_amount, deposit_received_date, deposit_refunded_amount, deposit_refunded_date,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			property_id = excluded.property_id,
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			room_number = excluded.room_number,
			current_rent = excluded.current_rent,
			due_day = excluded.due_day,
			is_active = excluded.is_active,
			move_in_date = excluded.move_in_date,
			move_out_date = excluded.move_out_date,
			date_of_birth = excluded.date_of_birth,
			deposit_amount = excluded.deposit_amount,
			deposit_received_date = excluded.deposit_received_date,
			deposit_refunded_amount = excluded.deposit_refunded_amount,
			deposit_refunded_date = excluded.deposit_refunded_date,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.PropertyID, t.Name, t.Email, t.Phone, t.RoomNumber,
		t.CurrentRent.String(), t.DueDay, t.IsActive,
		t.MoveInDate.String(),
		nullDate(t.MoveOutDate),
		nullDate(t.DateOfBirth),
		nullDecimal(t.DepositAmount),
		nullDate(t.DepositReceivedDate),
		nullDecimal(t.DepositRefundedAmount),
		nullDate(t.DepositRefundedDate),
		now, now,
	)
	return err
}

const tenantColumns = `id, property_id, name, email, phone, room_number, current_rent, due_day,
	is_active, move_in_date, move_out_date, date_of_birth,
	deposit_amount, deposit_received_date, deposit_refunded_amount, deposit_refunded_date`

// GetTenant retrieves a tenant by ID. Returns ErrTenantNotFound when absent.
func (s *Store) GetTenant(ctx context.Context, id engine.TenantID) (engine.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id = ?", id)

	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return engine.Tenant{}, engine.ErrTenantNotFound
	}
	return t, err
}

// TenantFilter narrows ListTenants. Zero values mean "no filter".
type TenantFilter struct {
	PropertyID engine.PropertyID
	ActiveOnly bool
}

// ListTenants returns tenants matching the filter, ordered by room number.
func (s *Store) ListTenants(ctx context.Context, f TenantFilter) ([]engine.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + tenantColumns + " FROM tenants"
	var clauses []string
	var args []any

	if f.PropertyID != "" {
		clauses = append(clauses, "property_id = ?")
		args = append(args, f.PropertyID)
	}
	if f.ActiveOnly {
		clauses = append(clauses, "is_active = TRUE")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY room_number, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []engine.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// UpdateRent overwrites the tenant's current rent (revision apply). Past
// payment rows are untouched.
func (s *Store) UpdateRent(ctx context.Context, id engine.TenantID, newRent decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE tenants SET current_rent = ?, updated_at = ? WHERE id = ?",
		newRent.String(), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireRow(res, engine.ErrTenantNotFound)
}

// RecordDepositReturn writes the refund fields on the tenant row.
func (s *Store) RecordDepositReturn(ctx context.Context, id engine.TenantID, amount decimal.Decimal, date engine.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET deposit_refunded_amount = ?, deposit_refunded_date = ?, updated_at = ?
		 WHERE id = ?`,
		amount.String(), date.String(), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireRow(res, engine.ErrTenantNotFound)
}

// =============================================================================
// NOTE LOG (append-only)
// =============================================================================

// AppendNote adds a note to the tenant's log. Prior notes are never touched.
func (s *Store) AppendNote(ctx context.Context, id engine.TenantID, note string) error {
	if strings.TrimSpace(note) == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tenant_notes (id, tenant_id, note, created_at) VALUES (?, ?, ?, ?)",
		uuid.NewString(), id, note, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Note is one entry of a tenant's note log.
type Note struct {
	ID        string
	TenantID  engine.TenantID
	Note      string
	CreatedAt time.Time
}

// ListNotes returns a tenant's notes, oldest first.
func (s *Store) ListNotes(ctx context.Context, id engine.TenantID) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, tenant_id, note, created_at FROM tenant_notes WHERE tenant_id = ? ORDER BY created_at ASC, id ASC",
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Note, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

// SavePayment upserts the payment row for (tenant, month). The row keeps its
// original ID when it already exists.
func (s *Store) SavePayment(ctx context.Context, p payments.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !payments.ValidMonth(p.Month) {
		return engine.ErrInvalidMonth
	}
	if p.ID == "" {
		p.ID = engine.PaymentID(uuid.NewString())
	}

	query := `
		INSERT INTO payments
		(id, tenant_id, month, expected, received, adjusted, payment_date, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, month) DO UPDATE SET
			expected = excluded.expected,
			received = excluded.received,
			adjusted = excluded.adjusted,
			payment_date = excluded.payment_date,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.TenantID, p.Month,
		p.Expected.String(), p.Received.String(),
		nullDecimal(p.Adjusted),
		nullDate(p.PaymentDate),
		string(p.Status), p.Notes,
		now, now,
	)
	return err
}

const paymentColumns = `id, tenant_id, month, expected, received, adjusted, payment_date, status, notes`

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, id engine.PaymentID) (payments.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = ?", id)

	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return payments.Payment{}, engine.ErrPaymentNotFound
	}
	return p, err
}

// ListPayments returns the payments for a month, optionally narrowed to one
// property via a join on tenants.
func (s *Store) ListPayments(ctx context.Context, propertyID engine.PropertyID, month string) ([]payments.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !payments.ValidMonth(month) {
		return nil, engine.ErrInvalidMonth
	}

	query := `
		SELECT p.id, p.tenant_id, p.month, p.expected, p.received, p.adjusted,
		       p.payment_date, p.status, p.notes
		FROM payments p
		JOIN tenants t ON t.id = p.tenant_id
		WHERE p.month = ?
	`
	args := []any{month}
	if propertyID != "" {
		query += " AND t.property_id = ?"
		args = append(args, propertyID)
	}
	query += " ORDER BY t.room_number, t.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payments.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CyclePaymentStatus advances the payment one step in the fixed manual cycle
// and returns the new status. Read-modify-write on a single row.
func (s *Store) CyclePaymentStatus(ctx context.Context, id engine.PaymentID) (payments.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT status FROM payments WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", engine.ErrPaymentNotFound
	}
	if err != nil {
		return "", err
	}

	next := payments.Status(raw).Next()
	_, err = s.db.ExecContext(ctx,
		"UPDATE payments SET status = ?, updated_at = ? WHERE id = ?",
		string(next), time.Now().UTC().Format(time.RFC3339), id)
	return next, err
}

// EnsureMonth creates missing pending payment rows for every active tenant of
// a property (all properties when propertyID is empty), with the tenant's
// current rent as the expected amount. Idempotent: existing rows are left
// alone. Returns the number of rows created.
func (s *Store) EnsureMonth(ctx context.Context, propertyID engine.PropertyID, month string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !payments.ValidMonth(month) {
		return 0, engine.ErrInvalidMonth
	}

	query := `
		SELECT id, current_rent FROM tenants
		WHERE is_active = TRUE
		  AND id NOT IN (SELECT tenant_id FROM payments WHERE month = ?)
	`
	args := []any{month}
	if propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, propertyID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	type due struct {
		id   string
		rent string
	}
	var missing []due
	for rows.Next() {
		var d due
		if err := rows.Scan(&d.id, &d.rent); err != nil {
			rows.Close()
			return 0, err
		}
		missing = append(missing, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created := 0
	for _, d := range missing {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO payments
			 (id, tenant_id, month, expected, received, status, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, '0', 'pending', '', ?, ?)`,
			uuid.NewString(), d.id, month, d.rent, now, now)
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// =============================================================================
// IRL INDEX STORE
// =============================================================================

// SaveIndexEntry upserts a quarterly index value.
func (s *Store) SaveIndexEntry(ctx context.Context, e revision.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO irl_index (year, quarter, value, variation_pct, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(year, quarter) DO UPDATE SET
			value = excluded.value,
			variation_pct = excluded.variation_pct
	`

	_, err := s.db.ExecContext(ctx, query,
		e.Year, e.Quarter, e.Value.String(), e.VariationPct.String(),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// ListIndexEntries returns the full series, oldest first.
func (s *Store) ListIndexEntries(ctx context.Context) ([]revision.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT year, quarter, value, variation_pct FROM irl_index ORDER BY year ASC, quarter ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []revision.IndexEntry
	for rows.Next() {
		var e revision.IndexEntry
		var value, variation string
		if err := rows.Scan(&e.Year, &e.Quarter, &value, &variation); err != nil {
			return nil, err
		}
		e.Value = engine.MustParseDecimal(value)
		e.VariationPct = engine.MustParseDecimal(variation)
		series = append(series, e)
	}
	return series, rows.Err()
}

// =============================================================================
// SCANNING HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (engine.Tenant, error) {
	var (
		t                     engine.Tenant
		email, phone, room    sql.NullString
		currentRent           string
		moveIn                string
		moveOut, dob          sql.NullString
		depAmount, depRecv    sql.NullString
		depRefAmt, depRefDate sql.NullString
	)

	err := row.Scan(
		&t.ID, &t.PropertyID, &t.Name, &email, &phone, &room,
		&currentRent, &t.DueDay, &t.IsActive, &moveIn, &moveOut, &dob,
		&depAmount, &depRecv, &depRefAmt, &depRefDate,
	)
	if err != nil {
		return t, err
	}

	t.Email = email.String
	t.Phone = phone.String
	t.RoomNumber = room.String
	t.CurrentRent = engine.MustParseDecimal(currentRent)
	t.MoveInDate, _ = engine.ParseDate(moveIn)
	t.MoveOutDate = parseNullDate(moveOut)
	t.DateOfBirth = parseNullDate(dob)
	t.DepositAmount = parseNullDecimal(depAmount)
	t.DepositReceivedDate = parseNullDate(depRecv)
	t.DepositRefundedAmount = parseNullDecimal(depRefAmt)
	t.DepositRefundedDate = parseNullDate(depRefDate)

	return t, nil
}

func scanPayment(row rowScanner) (payments.Payment, error) {
	var (
		p                 payments.Payment
		expected          string
		received          string
		adjusted, payDate sql.NullString
		status            string
		notes             sql.NullString
	)

	err := row.Scan(&p.ID, &p.TenantID, &p.Month, &expected, &received,
		&adjusted, &payDate, &status, &notes)
	if err != nil {
		return p, err
	}

	p.Expected = engine.MustParseDecimal(expected)
	p.Received = engine.MustParseDecimal(received)
	p.Adjusted = parseNullDecimal(adjusted)
	p.PaymentDate = parseNullDate(payDate)
	p.Status = payments.Status(status)
	p.Notes = notes.String

	return p, nil
}

// =============================================================================
// NULLABLE HELPERS
// =============================================================================

func nullDate(d *engine.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) *engine.Date {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := engine.ParseDate(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func parseNullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := engine.MustParseDecimal(ns.String)
	return &d
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
