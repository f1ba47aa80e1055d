package service

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/logger"
	"github.com/aperia-group/vendor-onboarding/internal/repository"
	"github.com/aperia-group/vendor-onboarding/internal/validation"
)

// ── Store interfaces ──────────────────────────────────────────────────────────

// VendorCatalog is the vendor persistence surface for CRUD and listing.
type VendorCatalog interface {
	Create(ctx context.Context, vendor *repository.VendorRecord) error
	GetByID(ctx context.Context, id string) (*repository.VendorRecord, error)
	List(ctx context.Context) ([]*repository.VendorRecord, error)
}

// SupplierFormStore persists submitted supplier forms.
type SupplierFormStore interface {
	Create(ctx context.Context, form *repository.SupplierForm) error
	GetByEmail(ctx context.Context, email string) (*repository.SupplierForm, error)
}

// HistoryReader reads a vendor's approval history.
type HistoryReader interface {
	GetByVendorID(ctx context.Context, vendorID string) ([]*repository.ApprovalHistoryEntry, error)
}

// ── Service ───────────────────────────────────────────────────────────────────

// VendorService handles vendor and supplier-form business logic outside the
// approval workflow.
type VendorService struct {
	vendors   VendorCatalog
	forms     SupplierFormStore
	history   HistoryReader
	publisher EventPublisher
	log       *logger.Logger
}

// NewVendorService creates a new VendorService.
func NewVendorService(
	vendors VendorCatalog,
	forms SupplierFormStore,
	history HistoryReader,
	publisher EventPublisher,
	log *logger.Logger,
) *VendorService {
	return &VendorService{
		vendors:   vendors,
		forms:     forms,
		history:   history,
		publisher: publisher,
		log:       log,
	}
}

// CreateVendorRequest represents a create vendor request.
type CreateVendorRequest struct {
	BusinessName               string                  `json:"businessName"`
	TradingName                string                  `json:"tradingName"`
	ContactName                string                  `json:"contactName"`
	ContactEmail               string                  `json:"contactEmail"`
	ContactPhone               string                  `json:"contactPhone"`
	ABN                        *string                 `json:"abn,omitempty"`
	GSTNumber                  *string                 `json:"gstNumber,omitempty"`
	TradingEntity              string                  `json:"tradingEntity"`
	Bank                       *repository.BankDetails `json:"bank,omitempty"`
	PaymentTerms               string                  `json:"paymentTerms"`
	PrimaryTradingBusinessUnit string                  `json:"primaryTradingBusinessUnit"`
	ParentVendorID             *string                 `json:"parentVendor,omitempty"`
	CreatedBy                  string                  `json:"-"`
}

// CreateVendor validates and creates a vendor record with the entry status
// "Invitation sent". Child records linked to a parent vendor inherit the
// parent's banking and contact details when their own are absent.
func (s *VendorService) CreateVendor(ctx context.Context, req *CreateVendorRequest) (*repository.VendorRecord, validation.FieldErrors, error) {
	vendor := &repository.VendorRecord{
		BusinessName:               req.BusinessName,
		TradingName:                req.TradingName,
		ContactName:                req.ContactName,
		ContactEmail:               req.ContactEmail,
		ContactPhone:               req.ContactPhone,
		ABN:                        req.ABN,
		GSTNumber:                  req.GSTNumber,
		TradingEntity:              req.TradingEntity,
		Bank:                       req.Bank,
		PaymentTerms:               req.PaymentTerms,
		StatusCode:                 repository.StatusInvitationSent,
		PrimaryTradingBusinessUnit: req.PrimaryTradingBusinessUnit,
		ParentVendorID:             req.ParentVendorID,
		CreatedBy:                  req.CreatedBy,
	}

	if req.ParentVendorID != nil && *req.ParentVendorID != "" {
		parent, err := s.vendors.GetByID(ctx, *req.ParentVendorID)
		if err != nil {
			return nil, nil, err
		}
		if vendor.Bank == nil {
			vendor.Bank = parent.Bank
		}
		if vendor.ContactEmail == "" {
			vendor.ContactEmail = parent.ContactEmail
			vendor.ContactName = parent.ContactName
			vendor.ContactPhone = parent.ContactPhone
		}
	}

	fieldErrs := validation.ValidateVendor(validation.VendorInput{
		BusinessName:               vendor.BusinessName,
		TradingName:                vendor.TradingName,
		ContactName:                vendor.ContactName,
		ContactEmail:               vendor.ContactEmail,
		ContactPhone:               vendor.ContactPhone,
		PaymentTerms:               vendor.PaymentTerms,
		PrimaryTradingBusinessUnit: vendor.PrimaryTradingBusinessUnit,
		TradingEntity:              vendor.TradingEntity,
		ABN:                        vendor.ABN,
		Bank:                       vendor.Bank,
	})
	if fieldErrs.Any() {
		return nil, fieldErrs, errors.New(errors.ErrCodeInvalidInput, "vendor validation failed")
	}

	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("vendor_id", vendor.ID).
		Str("business_name", vendor.BusinessName).
		Str("business_unit", vendor.PrimaryTradingBusinessUnit).
		Str("created_by", vendor.CreatedBy).
		Msg("Vendor created")

	return vendor, nil, nil
}

// GetVendor retrieves a vendor record by ID.
func (s *VendorService) GetVendor(ctx context.Context, id string) (*repository.VendorRecord, error) {
	return s.vendors.GetByID(ctx, id)
}

// GetHistory returns a vendor's approval history, oldest first.
func (s *VendorService) GetHistory(ctx context.Context, vendorID string) ([]*repository.ApprovalHistoryEntry, error) {
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.history.GetByVendorID(ctx, vendorID)
}

// ── List / filter / counts ────────────────────────────────────────────────────

// StatusCounts holds per-status record counts over the enumerated status set.
// All counts every fetched record, including ones with unrecognized statuses;
// ByStatus buckets only the known statuses.
type StatusCounts struct {
	All      int                       `json:"all"`
	ByStatus map[repository.Status]int `json:"byStatus"`
}

// ListResult is the outcome of one list/filter/search pass.
type ListResult struct {
	Vendors []*repository.VendorRecord `json:"vendors"`
	Counts  StatusCounts               `json:"counts"`
}

var fold = cases.Fold()

// ListVendors fetches all vendor records, computes the per-status counts and
// returns the subset matching the selected status and a case-insensitive
// substring match on business name. Empty status and search mean no filter.
func (s *VendorService) ListVendors(ctx context.Context, status repository.Status, search string) (*ListResult, error) {
	records, err := s.vendors.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := CountByStatus(records)
	filtered := FilterVendors(records, status, search)

	return &ListResult{Vendors: filtered, Counts: counts}, nil
}

// CountByStatus aggregates record counts per known status.
func CountByStatus(records []*repository.VendorRecord) StatusCounts {
	counts := StatusCounts{
		All:      len(records),
		ByStatus: make(map[repository.Status]int, len(repository.KnownStatuses)),
	}
	for _, status := range repository.KnownStatuses {
		counts.ByStatus[status] = 0
	}
	for _, rec := range records {
		if rec.StatusCode.Known() {
			counts.ByStatus[rec.StatusCode]++
		}
	}
	return counts
}

// FilterVendors returns the records matching the selected status and a
// case-folded substring match on business name.
func FilterVendors(records []*repository.VendorRecord, status repository.Status, search string) []*repository.VendorRecord {
	term := fold.String(strings.TrimSpace(search))

	filtered := make([]*repository.VendorRecord, 0, len(records))
	for _, rec := range records {
		if status != "" && rec.StatusCode != status {
			continue
		}
		if term != "" && !strings.Contains(fold.String(rec.BusinessName), term) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// ── Supplier forms ────────────────────────────────────────────────────────────

// SubmitSupplierFormRequest represents a multipart supplier-form submission.
// Attachment metadata is recorded; file content is not stored in the warehouse.
type SubmitSupplierFormRequest struct {
	Form           validation.SupplierInput
	VendorID       *string
	AttachmentName string
	AttachmentSize int64
	AttachmentType string
}

// SubmitSupplierForm validates and stores a supplier form.
func (s *VendorService) SubmitSupplierForm(ctx context.Context, req *SubmitSupplierFormRequest) (*repository.SupplierForm, validation.FieldErrors, error) {
	fieldErrs := validation.ValidateSupplier(req.Form)
	if fieldErrs.Any() {
		return nil, fieldErrs, errors.New(errors.ErrCodeInvalidInput, "supplier form validation failed")
	}

	form := &repository.SupplierForm{
		VendorID:       req.VendorID,
		BusinessName:   req.Form.BusinessName,
		ContactName:    req.Form.ContactName,
		ContactEmail:   req.Form.ContactEmail,
		ContactPhone:   req.Form.ContactPhone,
		TradingEntity:  req.Form.TradingEntity,
		ABN:            req.Form.ABN,
		GSTNumber:      req.Form.GSTNumber,
		Bank:           req.Form.Bank,
		BillerCode:     req.Form.BillerCode,
		ReferenceCode:  req.Form.ReferenceCode,
		AttachmentName: req.AttachmentName,
		AttachmentSize: req.AttachmentSize,
		AttachmentType: req.AttachmentType,
	}

	if err := s.forms.Create(ctx, form); err != nil {
		return nil, nil, err
	}

	s.publisher.PublishVendorEvent(ctx, "vendor_submitted", form.ID, form.ContactEmail, nil, map[string]interface{}{
		"business_name": form.BusinessName,
	})

	s.log.Info().
		Str("form_id", form.ID).
		Str("contact_email", form.ContactEmail).
		Str("attachment", form.AttachmentName).
		Msg("Supplier form submitted")

	return form, nil, nil
}

// LookupSupplierForm returns the supplier form submitted for a contact email.
func (s *VendorService) LookupSupplierForm(ctx context.Context, email string) (*repository.SupplierForm, error) {
	if email == "" {
		return nil, errors.InvalidInput("email", "email is required")
	}
	form, err := s.forms.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errors.NotFound("supplier_form", email)
	}
	return form, nil
}
