/*
handlers.go - HTTP API handlers for the lease financial engine

PURPOSE:
  Exposes the lease lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Tenants:
    GET    /api/tenants                       List (filter: active, property_id)
    POST   /api/tenants                       Create/replace tenant
    GET    /api/tenants/{id}                  Tenant details
    GET    /api/tenants/{id}/deposit          Derived deposit state
    POST   /api/tenants/{id}/deposit/return   Record a refund
    GET    /api/tenants/{id}/revision         IRL projection (204 when none)
    POST   /api/tenants/{id}/revision/apply   Overwrite rent
    GET    /api/tenants/{id}/lease            Lease composition for documents

  Payments:
    GET    /api/payments                      Month view + summary + anomalies
    POST   /api/payments                      Operator upsert
    POST   /api/payments/{id}/cycle           Advance status one step
    GET    /api/payments/summary              Aggregate only

  Reporting:
    GET    /api/deposits                      Deposit buckets
    GET    /api/reminders                     Birthday/revision/overdue feed
    GET    /api/index, POST /api/index        IRL series

  Admin:
    POST   /api/admin/months/ensure           Generate pending payment rows

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (engine client errors)
  - 404: Tenant/payment not found
  - 500: Internal errors (logged with fields)

CLOCK:
  "Today" is injected through Handler.Now so every derived view is
  deterministic under test.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Monthly cron job
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/deposits"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/lease"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/payments"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/reminders"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/revision"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Log          *logrus.Logger
	RefundPolicy deposits.OverRefundPolicy

	// Now supplies "today" for every derived view; overridable in tests.
	Now func() engine.Date

	validate *validator.Validate
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log *logrus.Logger, policy deposits.OverRefundPolicy) *Handler {
	return &Handler{
		Store:        store,
		Log:          log,
		RefundPolicy: policy,
		Now:          engine.Today,
		validate:     validator.New(),
	}
}

// =============================================================================
// TENANT HANDLERS
// =============================================================================

// ListTenants returns tenants, optionally filtered by property and activity.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	filter := sqlite.TenantFilter{
		PropertyID: engine.PropertyID(r.URL.Query().Get("property_id")),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	tenants, err := h.Store.ListTenants(r.Context(), filter)
	if err != nil {
		h.fail(w, err, "failed to list tenants")
		return
	}

	dtos := make([]TenantDTO, len(tenants))
	for i, t := range tenants {
		dtos[i] = toTenantDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTenant returns a single tenant.
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.Store.GetTenant(r.Context(), engine.TenantID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, err, "failed to get tenant")
		return
	}
	writeJSON(w, http.StatusOK, toTenantDTO(tenant))
}

// CreateTenant creates or replaces a tenant record.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	rent, err := decimal.NewFromString(req.CurrentRent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid current_rent", err)
		return
	}
	moveIn, err := engine.ParseDate(req.MoveInDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid move_in_date (use YYYY-MM-DD)", err)
		return
	}

	tenant := engine.Tenant{
		ID:          engine.TenantID(req.ID),
		PropertyID:  engine.PropertyID(req.PropertyID),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		RoomNumber:  req.RoomNumber,
		CurrentRent: rent,
		DueDay:      req.DueDay,
		IsActive:    true,
		MoveInDate:  moveIn,
	}
	if tenant.ID == "" {
		tenant.ID = engine.TenantID(uuid.NewString())
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}

	if tenant.MoveOutDate, err = parseOptDate(req.MoveOutDate, "move_out_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if tenant.DateOfBirth, err = parseOptDate(req.DateOfBirth, "date_of_birth"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if tenant.DepositAmount, err = parseOptDecimal(req.DepositAmount, "deposit_amount"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if tenant.DepositReceivedDate, err = parseOptDate(req.DepositReceivedDate, "deposit_received_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.Store.SaveTenant(r.Context(), tenant); err != nil {
		h.fail(w, err, "failed to save tenant")
		return
	}
	writeJSON(w, http.StatusCreated, toTenantDTO(tenant))
}

// =============================================================================
// DEPOSIT HANDLERS
// =============================================================================

// GetDeposit returns the derived deposit state for one tenant.
func (h *Handler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.Store.GetTenant(r.Context(), engine.TenantID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, err, "failed to get tenant")
		return
	}

	ev, ok := deposits.Evaluate(tenant, h.Now())
	if !ok {
		writeError(w, http.StatusNotFound, "tenant has no deposit on record", nil)
		return
	}
	writeJSON(w, http.StatusOK, toDepositDTO(tenant, ev))
}

// ListDeposits returns the dashboard deposit report, bucketed by state.
func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Store.ListTenants(r.Context(), sqlite.TenantFilter{
		PropertyID: engine.PropertyID(r.URL.Query().Get("property_id")),
	})
	if err != nil {
		h.fail(w, err, "failed to list tenants")
		return
	}

	today := h.Now()
	buckets := DepositBucketsDTO{
		Held:          []DepositDTO{},
		ToBeReturned:  []DepositDTO{},
		Returned:      []DepositDTO{},
		PartialReturn: []DepositDTO{},
	}
	for _, t := range tenants {
		ev, ok := deposits.Evaluate(t, today)
		if !ok {
			continue
		}
		dto := toDepositDTO(t, ev)
		switch ev.State {
		case deposits.StateHeld:
			buckets.Held = append(buckets.Held, dto)
		case deposits.StateToBeReturned:
			buckets.ToBeReturned = append(buckets.ToBeReturned, dto)
		case deposits.StateReturned:
			buckets.Returned = append(buckets.Returned, dto)
		case deposits.StatePartialReturn:
			buckets.PartialReturn = append(buckets.PartialReturn, dto)
		}
	}
	writeJSON(w, http.StatusOK, buckets)
}

// ReturnDeposit records a deposit refund and appends the operator note.
func (h *Handler) ReturnDeposit(w http.ResponseWriter, r *http.Request) {
	id := engine.TenantID(chi.URLParam(r, "id"))

	var req DepositReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	tenant, err := h.Store.GetTenant(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to get tenant")
		return
	}

	if err := deposits.Return(&tenant, amount, date, h.RefundPolicy); err != nil {
		h.fail(w, err, "refund rejected")
		return
	}

	if err := h.Store.RecordDepositReturn(ctx, id, *tenant.DepositRefundedAmount, date); err != nil {
		h.fail(w, err, "failed to record deposit return")
		return
	}
	if err := h.Store.AppendNote(ctx, id, req.Notes); err != nil {
		h.fail(w, err, "failed to append note")
		return
	}

	ev, _ := deposits.Evaluate(tenant, h.Now())
	writeJSON(w, http.StatusOK, toDepositDTO(tenant, ev))
}

// =============================================================================
// REVISION HANDLERS
// =============================================================================

// GetRevision returns the IRL projection for a tenant, or 204 when the index
// series is insufficient or the projection would not increase the rent.
func (h *Handler) GetRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, err := h.Store.GetTenant(ctx, engine.TenantID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, err, "failed to get tenant")
		return
	}
	series, err := h.Store.ListIndexEntries(ctx)
	if err != nil {
		h.fail(w, err, "failed to list index entries")
		return
	}

	p, ok := revision.Project(tenant.CurrentRent, series)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	occ := tenant.LeaseAnniversary(h.Now())
	writeJSON(w, http.StatusOK, RevisionDTO{
		TenantID:    string(tenant.ID),
		CurrentRent: money(tenant.CurrentRent),
		NewRent:     money(p.NewRent),
		IncreasePct: p.Pct.StringFixed(2),
		Latest:      toIndexEntryDTO(p.Latest),
		Prior:       toIndexEntryDTO(p.Prior),
		Anniversary: occ.Date.String(),
		DaysUntil:   occ.DaysUntil,
	})
}

// ApplyRevision overwrites the tenant's rent. Past payment rows keep their
// original expected amounts.
func (h *Handler) ApplyRevision(w http.ResponseWriter, r *http.Request) {
	id := engine.TenantID(chi.URLParam(r, "id"))

	var req ApplyRevisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	newRent, err := decimal.NewFromString(req.NewRent)
	if err != nil || !newRent.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid new_rent", err)
		return
	}

	ctx := r.Context()
	tenant, err := h.Store.GetTenant(ctx, id)
	if err != nil {
		h.fail(w, err, "failed to get tenant")
		return
	}

	revision.Apply(&tenant, newRent)
	if err := h.Store.UpdateRent(ctx, id, tenant.CurrentRent); err != nil {
		h.fail(w, err, "failed to update rent")
		return
	}

	writeJSON(w, http.StatusOK, toTenantDTO(tenant))
}

// ListIndex returns the IRL series, oldest first.
func (h *Handler) ListIndex(w http.ResponseWriter, r *http.Request) {
	series, err := h.Store.ListIndexEntries(r.Context())
	if err != nil {
		h.fail(w, err, "failed to list index entries")
		return
	}

	dtos := make([]IndexEntryDTO, len(series))
	for i, e := range series {
		dtos[i] = toIndexEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertIndex publishes a quarterly index value; re-publishing a quarter
// overwrites it.
func (h *Handler) UpsertIndex(w http.ResponseWriter, r *http.Request) {
	var req UpsertIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil || !value.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid value", err)
		return
	}
	variation := decimal.Zero
	if req.VariationPct != "" {
		if variation, err = decimal.NewFromString(req.VariationPct); err != nil {
			writeError(w, http.StatusBadRequest, "invalid variation_pct", err)
			return
		}
	}

	entry := revision.IndexEntry{
		Year:         req.Year,
		Quarter:      req.Quarter,
		Value:        value,
		VariationPct: variation,
	}
	if err := h.Store.SaveIndexEntry(r.Context(), entry); err != nil {
		h.fail(w, err, "failed to save index entry")
		return
	}
	writeJSON(w, http.StatusCreated, toIndexEntryDTO(entry))
}

// =============================================================================
// LEASE HANDLERS
// =============================================================================

// GetLease composes the lease amounts for document generation. The exchange
// rate and charge breakdown arrive as query parameters because they are
// point-in-time document inputs, not stored tenant state.
func (h *Handler) GetLease(w http.ResponseWriter, r *http.Request) {
	id := engine.TenantID(chi.URLParam(r, "id"))

	tenant, err := h.Store.GetTenant(r.Context(), id)
	if err != nil {
		h.fail(w, err, "failed to get tenant")
		return
	}

	q := r.URL.Query()
	rate, err := decimal.NewFromString(q.Get("rate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rate query parameter is required (CHF per 1 EUR)", err)
		return
	}

	cs := lease.ChargeSet{
		LoyerCHF:     tenant.CurrentRent,
		ExchangeRate: rate,
		EntryDate:    tenant.MoveInDate,
	}
	if cs.ChargesEnergy, err = queryDecimal(q.Get("energy")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid energy", err)
		return
	}
	if cs.ChargesMaintenance, err = queryDecimal(q.Get("maintenance")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid maintenance", err)
		return
	}
	if cs.ChargesServices, err = queryDecimal(q.Get("services")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid services", err)
		return
	}

	c, err := lease.Compose(cs)
	if err != nil {
		h.fail(w, err, "failed to compose lease")
		return
	}

	dto := toLeaseDTO(id, rate, c)
	if m := q.Get("month"); payments.ValidMonth(m) {
		dto.ReceiptNumber = lease.ReceiptNumber(id, m)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns the month view: rows, aggregate, anomalies.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	propertyID := engine.PropertyID(r.URL.Query().Get("property_id"))

	rows, err := h.Store.ListPayments(r.Context(), propertyID, month)
	if err != nil {
		h.fail(w, err, "failed to list payments")
		return
	}

	resp := PaymentsResponse{
		Payments: make([]PaymentDTO, len(rows)),
		Summary:  toSummaryDTO(payments.Summarize(rows, month)),
	}
	for i, p := range rows {
		resp.Payments[i] = toPaymentDTO(p)
		for _, a := range payments.Reconcile(p) {
			resp.Anomalies = append(resp.Anomalies, AnomalyDTO{
				PaymentID: string(a.PaymentID),
				Code:      a.Code,
				Message:   a.Message,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSummary returns the monthly aggregate only.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	propertyID := engine.PropertyID(r.URL.Query().Get("property_id"))

	rows, err := h.Store.ListPayments(r.Context(), propertyID, month)
	if err != nil {
		h.fail(w, err, "failed to list payments")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(payments.Summarize(rows, month)))
}

// UpsertPayment records an operator entry for a (tenant, month) row.
func (h *Handler) UpsertPayment(w http.ResponseWriter, r *http.Request) {
	var req UpsertPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	p := payments.Payment{
		TenantID: engine.TenantID(req.TenantID),
		Month:    req.Month,
		Status:   payments.StatusPending,
		Notes:    req.Notes,
	}

	var err error
	if p.Expected, err = decimal.NewFromString(req.Expected); err != nil {
		writeError(w, http.StatusBadRequest, "invalid expected", err)
		return
	}
	if p.Received, err = queryDecimal(req.Received); err != nil {
		writeError(w, http.StatusBadRequest, "invalid received", err)
		return
	}
	if p.Adjusted, err = parseOptDecimal(req.Adjusted, "adjusted"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if p.PaymentDate, err = parseOptDate(req.PaymentDate, "payment_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.Status != "" {
		p.Status = payments.Status(req.Status)
		if !p.Status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status", nil)
			return
		}
	}

	ctx := r.Context()
	if _, err := h.Store.GetTenant(ctx, p.TenantID); err != nil {
		h.fail(w, err, "failed to get tenant")
		return
	}
	if err := h.Store.SavePayment(ctx, p); err != nil {
		h.fail(w, err, "failed to save payment")
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// CyclePayment advances the payment one step in the fixed manual cycle.
func (h *Handler) CyclePayment(w http.ResponseWriter, r *http.Request) {
	id := engine.PaymentID(chi.URLParam(r, "id"))

	next, err := h.Store.CyclePaymentStatus(r.Context(), id)
	if err != nil {
		h.fail(w, err, "failed to cycle payment status")
		return
	}
	writeJSON(w, http.StatusOK, CycleResponse{ID: string(id), Status: string(next)})
}

// =============================================================================
// REMINDER / ADMIN HANDLERS
// =============================================================================

// GetReminders returns the dashboard reminder feed.
func (h *Handler) GetReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenants, err := h.Store.ListTenants(ctx, sqlite.TenantFilter{
		PropertyID: engine.PropertyID(r.URL.Query().Get("property_id")),
	})
	if err != nil {
		h.fail(w, err, "failed to list tenants")
		return
	}
	series, err := h.Store.ListIndexEntries(ctx)
	if err != nil {
		h.fail(w, err, "failed to list index entries")
		return
	}

	feed := reminders.Upcoming(tenants, series, h.Now())
	dtos := make([]ReminderDTO, len(feed))
	for i, rem := range feed {
		dtos[i] = toReminderDTO(rem)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// EnsureMonth generates missing pending payment rows for a month.
func (h *Handler) EnsureMonth(w http.ResponseWriter, r *http.Request) {
	var req EnsureMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	created, err := h.Store.EnsureMonth(r.Context(), engine.PropertyID(req.PropertyID), req.Month)
	if err != nil {
		h.fail(w, err, "failed to generate payment rows")
		return
	}

	h.Log.WithFields(logrus.Fields{
		"month":   req.Month,
		"created": created,
	}).Info("generated pending payment rows")

	writeJSON(w, http.StatusOK, EnsureMonthResponse{Month: req.Month, Created: created})
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// fail maps domain errors to HTTP status codes and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// PARSE HELPERS
// =============================================================================

func queryDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseOptDecimal(s *string, field string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &d, nil
}

func parseOptDate(s *string, field string) (*engine.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := engine.ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s (use YYYY-MM-DD): %w", field, err)
	}
	return &d, nil
}
