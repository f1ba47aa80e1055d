package service

import (
	"context"
	"fmt"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/logger"
	"github.com/aperia-group/vendor-onboarding/internal/repository"
)

// cfoCriticalTerms are the payment-terms labels that mandate the extra CFO
// approval step between Manager and Exco.
var cfoCriticalTerms = map[string]struct{}{
	"20 EOM":  {},
	"14 DAYS": {},
	"7 DAYS":  {},
	"PREPAID": {},
	"COD":     {},
}

// RequiresCFOApproval reports whether a payment-terms value routes the vendor
// through the CFO step. Pure function of the vendor record; recomputable at
// any time.
func RequiresCFOApproval(paymentTerms string) bool {
	_, ok := cfoCriticalTerms[paymentTerms]
	return ok
}

// ── Store interfaces ──────────────────────────────────────────────────────────

// VendorStore is the vendor persistence surface the approval workflow needs.
type VendorStore interface {
	GetByID(ctx context.Context, id string) (*repository.VendorRecord, error)
	ApplyTransition(ctx context.Context, id string, expectedVersion int, update repository.TransitionUpdate) error
	Delete(ctx context.Context, id string) error
}

// MatrixStore resolves the approver matrix for a business unit.
type MatrixStore interface {
	GetByBusinessUnit(ctx context.Context, businessUnit string) (*repository.ApproverMatrixEntry, error)
}

// HistoryStore appends approval-history entries.
type HistoryStore interface {
	Append(ctx context.Context, entry *repository.ApprovalHistoryEntry) error
}

// EventPublisher publishes workflow events. Implementations must be non-fatal:
// a publish failure never interrupts the transition.
type EventPublisher interface {
	PublishVendorEvent(ctx context.Context, eventType, vendorID, actorEmail string, recipients []string, payload map[string]interface{})
}

// ── Service ───────────────────────────────────────────────────────────────────

// ApprovalService decides legal workflow transitions, the next approver, and
// per-step authorization for vendor records.
type ApprovalService struct {
	vendors   VendorStore
	matrix    MatrixStore
	history   HistoryStore
	publisher EventPublisher
	log       *logger.Logger
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(
	vendors VendorStore,
	matrix MatrixStore,
	history HistoryStore,
	publisher EventPublisher,
	log *logger.Logger,
) *ApprovalService {
	return &ApprovalService{
		vendors:   vendors,
		matrix:    matrix,
		history:   history,
		publisher: publisher,
		log:       log,
	}
}

// Actor identifies the user performing a workflow action.
type Actor struct {
	Email string
	Name  string
}

// TransitionRequest carries the common fields of every workflow action.
// Version is the record version the caller last saw; a stale version is
// rejected as a conflict instead of silently overwriting.
type TransitionRequest struct {
	VendorID string
	Version  int
	Actor    Actor
}

// ── Pure transition rules ─────────────────────────────────────────────────────

// NextStatusOnApprove returns the status an approve action moves a vendor to.
func NextStatusOnApprove(current repository.Status, paymentTerms string) (repository.Status, error) {
	switch current {
	case repository.StatusPendingManagerApproval, repository.StatusPendingProcurementApproval:
		if RequiresCFOApproval(paymentTerms) {
			return repository.StatusPendingCFOApproval, nil
		}
		return repository.StatusPendingExcoApproval, nil
	case repository.StatusPendingCFOApproval:
		return repository.StatusPendingExcoApproval, nil
	case repository.StatusPendingExcoApproval:
		return repository.StatusCreationApproved, nil
	default:
		return "", errors.InvalidTransition("invalid approval flow state")
	}
}

// CanApprove reports whether the actor is authorized to act on the current
// status for this matrix entry. Both the primary and the backup approver for
// the step are authorized.
func CanApprove(actorEmail string, status repository.Status, entry *repository.ApproverMatrixEntry) bool {
	if entry == nil {
		return false
	}
	step, ok := repository.StepForStatus(status)
	if !ok {
		return false
	}
	slot := entry.Slot(step)
	if actorEmail == "" {
		return false
	}
	return actorEmail == slot.Approver || actorEmail == slot.Backup
}

// ── Approve ───────────────────────────────────────────────────────────────────

// Approve advances a vendor to the next workflow state and returns the
// server-confirmed record.
func (s *ApprovalService) Approve(ctx context.Context, req TransitionRequest) (*repository.VendorRecord, error) {
	vendor, err := s.vendors.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(vendor, req.Version); err != nil {
		return nil, err
	}

	next, err := NextStatusOnApprove(vendor.StatusCode, vendor.PaymentTerms)
	if err != nil {
		return nil, err
	}

	entry, err := s.matrixFor(ctx, vendor)
	if err != nil {
		return nil, err
	}
	if !CanApprove(req.Actor.Email, vendor.StatusCode, entry) {
		return nil, errors.Unauthorized("user is not an assigned approver for this step")
	}

	update := repository.TransitionUpdate{
		StatusCode:          next,
		StatusCodeRecord:    vendor.StatusCodeRecord,
		CurrentApprover:     req.Actor.Email,
		CurrentApproverName: req.Actor.Name,
	}

	var recipients []string
	if nextStep, pending := repository.StepForStatus(next); pending {
		slot := entry.Slot(nextStep)
		update.NextApprover = slot.Approver
		update.NextApproverName = slot.ApproverName
		recipients = append(recipients, slot.Approver)
		if slot.Backup != "" {
			recipients = append(recipients, slot.Backup)
		}
	} else if vendor.CreatedBy != "" {
		recipients = append(recipients, vendor.CreatedBy)
	}

	if err := s.vendors.ApplyTransition(ctx, vendor.ID, vendor.Version, update); err != nil {
		return nil, err
	}

	s.appendHistory(ctx, &repository.ApprovalHistoryEntry{
		VendorID:     vendor.ID,
		Action:       "approved",
		PerformedBy:  req.Actor.Email,
		StatusBefore: vendor.StatusCode,
		StatusAfter:  next,
	})

	eventType := "vendor_approval_required"
	if next == repository.StatusCreationApproved {
		eventType = "vendor_approved"
	}
	s.publisher.PublishVendorEvent(ctx, eventType, vendor.ID, req.Actor.Email, recipients, map[string]interface{}{
		"business_name": vendor.BusinessName,
		"status":        string(next),
	})

	s.log.Info().
		Str("vendor_id", vendor.ID).
		Str("from", string(vendor.StatusCode)).
		Str("to", string(next)).
		Str("approved_by", req.Actor.Email).
		Msg("Vendor approval step completed")

	return s.vendors.GetByID(ctx, vendor.ID)
}

// ── Decline ───────────────────────────────────────────────────────────────────

// Decline moves a vendor from any non-terminal state to Declined, recording
// the reason and preserving the prior state for resubmission.
func (s *ApprovalService) Decline(ctx context.Context, req TransitionRequest, reason string) (*repository.VendorRecord, error) {
	if reason == "" {
		return nil, errors.InvalidInput("reason", "decline reason is required")
	}

	vendor, err := s.vendors.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(vendor, req.Version); err != nil {
		return nil, err
	}
	if vendor.StatusCode.Terminal() {
		return nil, errors.InvalidTransition(
			fmt.Sprintf("cannot decline vendor with status %q", vendor.StatusCode))
	}

	// Pending statuses require an assigned approver; pre-workflow statuses can
	// be declined by the requester.
	if _, pending := repository.StepForStatus(vendor.StatusCode); pending {
		entry, err := s.matrixFor(ctx, vendor)
		if err != nil {
			return nil, err
		}
		if !CanApprove(req.Actor.Email, vendor.StatusCode, entry) {
			return nil, errors.Unauthorized("user is not an assigned approver for this step")
		}
	}

	update := repository.TransitionUpdate{
		StatusCode:          repository.StatusDeclined,
		StatusCodeRecord:    vendor.StatusCode,
		CurrentApprover:     req.Actor.Email,
		CurrentApproverName: req.Actor.Name,
		ApprovalComment:     reason,
	}
	if err := s.vendors.ApplyTransition(ctx, vendor.ID, vendor.Version, update); err != nil {
		return nil, err
	}

	s.appendHistory(ctx, &repository.ApprovalHistoryEntry{
		VendorID:     vendor.ID,
		Action:       "declined",
		PerformedBy:  req.Actor.Email,
		StatusBefore: vendor.StatusCode,
		StatusAfter:  repository.StatusDeclined,
		Comment:      reason,
	})

	var recipients []string
	if vendor.CreatedBy != "" {
		recipients = append(recipients, vendor.CreatedBy)
	}
	s.publisher.PublishVendorEvent(ctx, "vendor_declined", vendor.ID, req.Actor.Email, recipients, map[string]interface{}{
		"business_name": vendor.BusinessName,
		"reason":        reason,
	})

	s.log.Info().
		Str("vendor_id", vendor.ID).
		Str("from", string(vendor.StatusCode)).
		Str("declined_by", req.Actor.Email).
		Msg("Vendor declined")

	return s.vendors.GetByID(ctx, vendor.ID)
}

// ── Resubmit ──────────────────────────────────────────────────────────────────

// Resubmit restores a declined vendor to the state it was declined from and
// clears the decline comment.
func (s *ApprovalService) Resubmit(ctx context.Context, req TransitionRequest) (*repository.VendorRecord, error) {
	vendor, err := s.vendors.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(vendor, req.Version); err != nil {
		return nil, err
	}
	if vendor.StatusCode != repository.StatusDeclined {
		return nil, errors.InvalidTransition(
			fmt.Sprintf("cannot resubmit vendor with status %q", vendor.StatusCode))
	}

	restored := vendor.StatusCodeRecord
	if restored == "" || !restored.Known() {
		restored = repository.StatusPendingManagerApproval
	}

	update := repository.TransitionUpdate{
		StatusCode:          restored,
		CurrentApprover:     req.Actor.Email,
		CurrentApproverName: req.Actor.Name,
	}

	var recipients []string
	if step, pending := repository.StepForStatus(restored); pending {
		entry, err := s.matrixFor(ctx, vendor)
		if err != nil {
			return nil, err
		}
		slot := entry.Slot(step)
		update.NextApprover = slot.Approver
		update.NextApproverName = slot.ApproverName
		recipients = append(recipients, slot.Approver)
	}

	if err := s.vendors.ApplyTransition(ctx, vendor.ID, vendor.Version, update); err != nil {
		return nil, err
	}

	s.appendHistory(ctx, &repository.ApprovalHistoryEntry{
		VendorID:     vendor.ID,
		Action:       "resubmitted",
		PerformedBy:  req.Actor.Email,
		StatusBefore: repository.StatusDeclined,
		StatusAfter:  restored,
	})

	s.publisher.PublishVendorEvent(ctx, "vendor_resubmitted", vendor.ID, req.Actor.Email, recipients, map[string]interface{}{
		"business_name": vendor.BusinessName,
		"status":        string(restored),
	})

	s.log.Info().
		Str("vendor_id", vendor.ID).
		Str("restored_to", string(restored)).
		Msg("Vendor resubmitted")

	return s.vendors.GetByID(ctx, vendor.ID)
}

// ── Delete ────────────────────────────────────────────────────────────────────

// Delete removes a vendor record entirely. Permitted only while the record is
// still at "Invitation sent"; irreversible.
func (s *ApprovalService) Delete(ctx context.Context, req TransitionRequest) error {
	vendor, err := s.vendors.GetByID(ctx, req.VendorID)
	if err != nil {
		return err
	}
	if vendor.StatusCode != repository.StatusInvitationSent {
		return errors.InvalidTransition(
			fmt.Sprintf("cannot delete vendor with status %q", vendor.StatusCode))
	}

	if err := s.vendors.Delete(ctx, vendor.ID); err != nil {
		return err
	}

	s.appendHistory(ctx, &repository.ApprovalHistoryEntry{
		VendorID:     vendor.ID,
		Action:       "deleted",
		PerformedBy:  req.Actor.Email,
		StatusBefore: vendor.StatusCode,
		StatusAfter:  vendor.StatusCode,
	})

	s.log.Info().
		Str("vendor_id", vendor.ID).
		Str("deleted_by", req.Actor.Email).
		Msg("Vendor deleted")

	return nil
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// checkVersion rejects stale transition requests. Version 0 means the caller
// did not supply one and the stored version is used as-is.
func checkVersion(vendor *repository.VendorRecord, version int) error {
	if version != 0 && version != vendor.Version {
		return errors.New(errors.ErrCodeConflict,
			"vendor record was modified by another user; reload and retry")
	}
	return nil
}

func (s *ApprovalService) matrixFor(ctx context.Context, vendor *repository.VendorRecord) (*repository.ApproverMatrixEntry, error) {
	entry, err := s.matrix.GetByBusinessUnit(ctx, vendor.PrimaryTradingBusinessUnit)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.NotFound("approver_matrix", vendor.PrimaryTradingBusinessUnit)
	}
	return entry, nil
}

// appendHistory writes a history entry and logs a warning on failure (never
// returns an error).
func (s *ApprovalService) appendHistory(ctx context.Context, entry *repository.ApprovalHistoryEntry) {
	if err := s.history.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("vendor_id", entry.VendorID).
			Str("action", entry.Action).
			Msg("Failed to write approval history entry")
	}
}
