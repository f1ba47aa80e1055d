// Package handler implements the REST surface of the service.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/logger"
	"github.com/aperia-group/vendor-onboarding/internal/middleware"
	"github.com/aperia-group/vendor-onboarding/internal/repository"
	"github.com/aperia-group/vendor-onboarding/internal/service"
	"github.com/aperia-group/vendor-onboarding/internal/validation"
)

// maxUploadBytes bounds supplier-form attachments.
const maxUploadBytes = 10 << 20

// envelope is the standard response body: {success, message, data}.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// HTTPHandler handles HTTP requests.
type HTTPHandler struct {
	vendors   *service.VendorService
	approvals *service.ApprovalService
	matrix    *service.MatrixService
	bookings  *service.BookingService
	reference *repository.ReferenceRepository
	log       *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(
	vendors *service.VendorService,
	approvals *service.ApprovalService,
	matrix *service.MatrixService,
	bookings *service.BookingService,
	reference *repository.ReferenceRepository,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		vendors:   vendors,
		approvals: approvals,
		matrix:    matrix,
		bookings:  bookings,
		reference: reference,
		log:       log,
	}
}

// ── Response helpers ──────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), envelope{Success: false, Message: err.Error()})
}

func writeFieldErrors(w http.ResponseWriter, fieldErrs validation.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "validation failed",
		Errors:  fieldErrs,
	})
}

func actorFrom(r *http.Request) (service.Actor, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{Email: id.Email, Name: id.Name}, true
}

// ── Vendors ───────────────────────────────────────────────────────────────────

// CreateVendor handles vendor creation requests.
func (h *HTTPHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, errors.Unauthorized("no session"))
		return
	}

	var req service.CreateVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}
	req.CreatedBy = actor.Email

	vendor, fieldErrs, err := h.vendors.CreateVendor(r.Context(), &req)
	if fieldErrs.Any() {
		writeFieldErrors(w, fieldErrs)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, vendor)
}

// GetVendor handles vendor fetches by ID.
func (h *HTTPHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errors.InvalidInput("id", "vendor id is required"))
		return
	}

	vendor, err := h.vendors.GetVendor(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, vendor)
}

// ListVendors returns the filtered vendor list and per-status counts.
func (h *HTTPHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	status := repository.Status(r.URL.Query().Get("status"))
	search := r.URL.Query().Get("search")

	result, err := h.vendors.ListVendors(r.Context(), status, search)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// VendorHistory returns a vendor's approval history.
func (h *HTTPHandler) VendorHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errors.InvalidInput("id", "vendor id is required"))
		return
	}

	history, err := h.vendors.GetHistory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, history)
}

// ── Workflow actions ──────────────────────────────────────────────────────────

type transitionBody struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Reason  string `json:"reason,omitempty"`
}

func (h *HTTPHandler) decodeTransition(w http.ResponseWriter, r *http.Request) (service.TransitionRequest, string, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, errors.Unauthorized("no session"))
		return service.TransitionRequest{}, "", false
	}

	var body transitionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.InvalidInput("body", "invalid request body"))
		return service.TransitionRequest{}, "", false
	}
	if body.ID == "" {
		writeError(w, errors.InvalidInput("id", "vendor id is required"))
		return service.TransitionRequest{}, "", false
	}

	return service.TransitionRequest{
		VendorID: body.ID,
		Version:  body.Version,
		Actor:    actor,
	}, body.Reason, true
}

// ApproveVendor advances a vendor one workflow step.
func (h *HTTPHandler) ApproveVendor(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.decodeTransition(w, r)
	if !ok {
		return
	}

	vendor, err := h.approvals.Approve(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, vendor)
}

// DeclineVendor declines a vendor with a reason.
func (h *HTTPHandler) DeclineVendor(w http.ResponseWriter, r *http.Request) {
	req, reason, ok := h.decodeTransition(w, r)
	if !ok {
		return
	}

	vendor, err := h.approvals.Decline(r.Context(), req, reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, vendor)
}

// ResubmitVendor restores a declined vendor into the workflow.
func (h *HTTPHandler) ResubmitVendor(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.decodeTransition(w, r)
	if !ok {
		return
	}

	vendor, err := h.approvals.Resubmit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, vendor)
}

// DeleteVendor removes a vendor still at "Invitation sent".
func (h *HTTPHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, errors.Unauthorized("no session"))
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errors.InvalidInput("id", "vendor id is required"))
		return
	}

	if err := h.approvals.Delete(r.Context(), service.TransitionRequest{VendorID: id, Actor: actor}); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

// ── Supplier forms ────────────────────────────────────────────────────────────

// SubmitSupplierForm accepts a multipart supplier-form submission with an
// optional file attachment. Attachment metadata is recorded; the file content
// itself is not persisted to the warehouse.
func (h *HTTPHandler) SubmitSupplierForm(w http.ResponseWriter, r *http.Request) {
	// MaxBytesReader enforces the cap; the ParseMultipartForm argument alone
	// only sets the in-memory threshold before parts spill to disk.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.InvalidInput("body", "invalid or oversized multipart form"))
		return
	}

	req := &service.SubmitSupplierFormRequest{
		Form: validation.SupplierInput{
			BusinessName:  r.FormValue("businessName"),
			ContactName:   r.FormValue("contactName"),
			ContactEmail:  r.FormValue("contactEmail"),
			ContactPhone:  r.FormValue("contactPhone"),
			TradingEntity: r.FormValue("tradingEntity"),
			ABN:           optional(r.FormValue("abn")),
			GSTNumber:     optional(r.FormValue("gstNumber")),
			BillerCode:    optional(r.FormValue("billerCode")),
			ReferenceCode: optional(r.FormValue("referenceCode")),
			Bank:          bankFromForm(r),
		},
		VendorID: optional(r.FormValue("vendorId")),
	}

	if file, header, err := r.FormFile("attachment"); err == nil {
		file.Close()
		req.AttachmentName = header.Filename
		req.AttachmentSize = header.Size
		req.AttachmentType = header.Header.Get("Content-Type")
	}

	form, fieldErrs, err := h.vendors.SubmitSupplierForm(r.Context(), req)
	if fieldErrs.Any() {
		writeFieldErrors(w, fieldErrs)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, form)
}

// LookupSupplierForm returns the supplier form submitted for an email.
func (h *HTTPHandler) LookupSupplierForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.vendors.LookupSupplierForm(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, form)
}

func bankFromForm(r *http.Request) *repository.BankDetails {
	if r.FormValue("bankCountry") == "" && r.FormValue("accountName") == "" {
		return nil
	}
	return &repository.BankDetails{
		BankCountry:   r.FormValue("bankCountry"),
		AccountName:   r.FormValue("accountName"),
		BSB:           optional(r.FormValue("bsb")),
		AccountNumber: optional(r.FormValue("accountNumber")),
		IBAN:          optional(r.FormValue("iban")),
		SwiftCode:     optional(r.FormValue("swiftCode")),
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// ── Approver matrix ───────────────────────────────────────────────────────────

// ListMatrix returns all approver-matrix entries with resolved display names.
func (h *HTTPHandler) ListMatrix(w http.ResponseWriter, r *http.Request) {
	entries, err := h.matrix.ListMatrix(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

// UpsertMatrix creates or updates the matrix entry for a business unit.
func (h *HTTPHandler) UpsertMatrix(w http.ResponseWriter, r *http.Request) {
	var req service.UpsertMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	entry, err := h.matrix.UpsertMatrix(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entry)
}

// DeleteMatrix removes a matrix entry.
func (h *HTTPHandler) DeleteMatrix(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errors.InvalidInput("id", "matrix id is required"))
		return
	}

	if err := h.matrix.DeleteMatrix(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

// ListContacts returns the approver candidates for matrix dropdowns.
func (h *HTTPHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.matrix.ListContacts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, contacts)
}

// ── Bookings ──────────────────────────────────────────────────────────────────

// CreateBooking creates a booking with line items.
func (h *HTTPHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, errors.Unauthorized("no session"))
		return
	}

	var req service.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}
	req.Requester = actor.Email

	booking, err := h.bookings.CreateBooking(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, booking)
}

// GetBooking retrieves a booking by ID.
func (h *HTTPHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errors.InvalidInput("id", "booking id is required"))
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, booking)
}

// ListBookings lists the caller's bookings.
func (h *HTTPHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, errors.Unauthorized("no session"))
		return
	}

	bookings, err := h.bookings.ListBookings(r.Context(), actor.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, bookings)
}

// ── Reference data ────────────────────────────────────────────────────────────

// Reference serves one cached reference lookup table.
func (h *HTTPHandler) Reference(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.reference.Get(r.Context(), table)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, items)
	}
}
