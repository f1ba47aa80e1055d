package repository

import "time"

// ── Workflow status ───────────────────────────────────────────────────────────

// Status is a vendor record's workflow state. Values are the exact labels
// stored in the warehouse.
type Status string

const (
	StatusInvitationSent             Status = "Invitation sent"
	StatusRequesterReview            Status = "Requester review"
	StatusPendingProcurementApproval Status = "Pending Procurement Manager Approval"
	StatusPendingManagerApproval     Status = "Pending Manager Approval"
	StatusPendingExcoApproval        Status = "Pending Exco Approval"
	StatusPendingCFOApproval         Status = "Pending CFO Approval"
	StatusCreationApproved           Status = "Creation approved"
	StatusDeclined                   Status = "Declined"
)

// KnownStatuses lists every workflow status in display order.
var KnownStatuses = []Status{
	StatusInvitationSent,
	StatusRequesterReview,
	StatusPendingProcurementApproval,
	StatusPendingManagerApproval,
	StatusPendingExcoApproval,
	StatusPendingCFOApproval,
	StatusCreationApproved,
	StatusDeclined,
}

// Known reports whether s is a member of the enumerated status set.
func (s Status) Known() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Terminal reports whether no further approval action can be taken from s.
// Declined is terminal for the approve path but resumable via resubmission.
func (s Status) Terminal() bool {
	return s == StatusCreationApproved || s == StatusDeclined
}

// ── Approval step ─────────────────────────────────────────────────────────────

// Step identifies one stage of the approval workflow and selects the matrix
// slot that authorizes it.
type Step int

const (
	StepManager Step = iota + 1
	StepCFO
	StepExco
)

func (s Step) String() string {
	switch s {
	case StepManager:
		return "manager"
	case StepCFO:
		return "cfo"
	case StepExco:
		return "exco"
	default:
		return "unknown"
	}
}

// StepForStatus maps a pending status to its approval step. The mapping is
// total over the pending statuses; both manager-labelled statuses resolve to
// the manager step. ok is false for non-pending statuses.
func StepForStatus(status Status) (step Step, ok bool) {
	switch status {
	case StatusPendingProcurementApproval, StatusPendingManagerApproval:
		return StepManager, true
	case StatusPendingCFOApproval:
		return StepCFO, true
	case StatusPendingExcoApproval:
		return StepExco, true
	default:
		return 0, false
	}
}

// ── Vendor ────────────────────────────────────────────────────────────────────

// BankDetails is one regional banking block. Which fields are populated
// depends on the bank country: AU uses BSB+account, NZ account only, overseas
// IBAN/SWIFT.
type BankDetails struct {
	BankCountry   string  `json:"bankCountry"`
	AccountName   string  `json:"accountName"`
	BSB           *string `json:"bsb,omitempty"`
	AccountNumber *string `json:"accountNumber,omitempty"`
	IBAN          *string `json:"iban,omitempty"`
	SwiftCode     *string `json:"swiftCode,omitempty"`
}

// VendorRecord is a business entity under onboarding/approval.
type VendorRecord struct {
	ID                         string       `json:"id"`
	BusinessName               string       `json:"businessName"`
	TradingName                string       `json:"tradingName"`
	ContactName                string       `json:"contactName"`
	ContactEmail               string       `json:"contactEmail"`
	ContactPhone               string       `json:"contactPhone"`
	ABN                        *string      `json:"abn,omitempty"`
	GSTNumber                  *string      `json:"gstNumber,omitempty"`
	TradingEntity              string       `json:"tradingEntity"` // AU | NZ | overseas
	Bank                       *BankDetails `json:"bank,omitempty"`
	PaymentTerms               string       `json:"paymentTerms"`
	StatusCode                 Status       `json:"statusCode"`
	StatusCodeRecord           Status       `json:"statusCodeRecord,omitempty"` // pre-decline status, for resubmission
	CurrentApprover            string       `json:"currentApprover,omitempty"`
	CurrentApproverName        string       `json:"currentApproverName,omitempty"`
	NextApprover               string       `json:"nextApprover,omitempty"`
	NextApproverName           string       `json:"nextApproverName,omitempty"`
	ApprovalComment            string       `json:"approvalComment,omitempty"`
	PrimaryTradingBusinessUnit string       `json:"primaryTradingBusinessUnit"`
	ParentVendorID             *string      `json:"parentVendor,omitempty"` // child records inherit parent banking/contact fields
	Version                    int          `json:"version"`
	CreatedBy                  string       `json:"createdBy,omitempty"`
	CreatedAt                  time.Time    `json:"createdAt"`
	UpdatedAt                  time.Time    `json:"updatedAt"`
}

// ── Approver matrix ───────────────────────────────────────────────────────────

// ApproverSlot is one step's assignment within a matrix entry: a primary
// approver and a backup, each with a resolved display name.
type ApproverSlot struct {
	Approver       string `json:"approver"`
	ApproverName   string `json:"approverName,omitempty"`
	Backup         string `json:"backup,omitempty"`
	BackupName     string `json:"backupName,omitempty"`
}

// ApproverMatrixEntry assigns approver identities per workflow step for one
// business unit. Exactly one entry exists per business unit.
type ApproverMatrixEntry struct {
	ID           string       `json:"id"`
	BusinessUnit string       `json:"businessUnit"`
	Manager      ApproverSlot `json:"manager"`
	CFO          ApproverSlot `json:"cfo"`
	Exco         ApproverSlot `json:"exco"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Slot returns the approver slot for a workflow step.
func (e *ApproverMatrixEntry) Slot(step Step) ApproverSlot {
	switch step {
	case StepManager:
		return e.Manager
	case StepCFO:
		return e.CFO
	default:
		return e.Exco
	}
}

// Contact is a person from the contact directory, the source of truth for
// approver-matrix dropdowns.
type Contact struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	JobTitle  string `json:"jobTitle,omitempty"`
}

// DisplayName returns "First Last" trimmed of missing parts.
func (c Contact) DisplayName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// ── Booking ───────────────────────────────────────────────────────────────────

// BookingRecord is an invoice-style booking header owning ordered line items.
// Bookings carry no approval semantics.
type BookingRecord struct {
	ID           string             `json:"id"`
	Entity       string             `json:"entity"`
	Company      string             `json:"company"`
	Currency     string             `json:"currency"`
	Requester    string             `json:"requester"`
	Status       string             `json:"status"`
	Subtotal     int64              `json:"subtotal"` // cents, ex GST
	GSTAmount    int64              `json:"gstAmount"`
	Total        int64              `json:"total"`
	Lines        []*BookingLineItem `json:"lines"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// BookingLineItem is one line of a booking.
type BookingLineItem struct {
	ID              string  `json:"id"`
	BookingID       string  `json:"bookingId"`
	LineNumber      int     `json:"lineNumber"`
	Category        string  `json:"category"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       int64   `json:"unitPrice"` // cents
	DiscountPercent float64 `json:"discountPercent"`
	GSTRate         float64 `json:"gstRate"` // percent
}

// ── Approval history ──────────────────────────────────────────────────────────

// ApprovalHistoryEntry is one immutable record of a workflow transition.
type ApprovalHistoryEntry struct {
	ID           string    `json:"id"`
	VendorID     string    `json:"vendorId"`
	Action       string    `json:"action"` // approved | declined | resubmitted | deleted
	PerformedBy  string    `json:"performedBy"`
	PerformedAt  time.Time `json:"performedAt"`
	StatusBefore Status    `json:"statusBefore"`
	StatusAfter  Status    `json:"statusAfter"`
	Comment      string    `json:"comment,omitempty"`
}

// ── Reference data ────────────────────────────────────────────────────────────

// ReferenceItem is one row of a reference lookup table (store, GL account,
// category).
type ReferenceItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupplierForm is a submitted multi-region supplier form, looked up by
// contact email.
type SupplierForm struct {
	ID             string       `json:"id"`
	VendorID       *string      `json:"vendorId,omitempty"`
	BusinessName   string       `json:"businessName"`
	ContactName    string       `json:"contactName"`
	ContactEmail   string       `json:"contactEmail"`
	ContactPhone   string       `json:"contactPhone"`
	TradingEntity  string       `json:"tradingEntity"`
	ABN            *string      `json:"abn,omitempty"`
	GSTNumber      *string      `json:"gstNumber,omitempty"`
	Bank           *BankDetails `json:"bank,omitempty"`
	BillerCode     *string      `json:"billerCode,omitempty"`
	ReferenceCode  *string      `json:"referenceCode,omitempty"`
	AttachmentName string       `json:"attachmentName,omitempty"`
	AttachmentSize int64        `json:"attachmentSize,omitempty"`
	AttachmentType string       `json:"attachmentType,omitempty"`
	SubmittedAt    time.Time    `json:"submittedAt"`
}
