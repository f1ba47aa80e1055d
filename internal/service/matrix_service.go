package service

import (
	"context"
	"strings"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/logger"
	"github.com/aperia-group/vendor-onboarding/internal/repository"
)

// ── Store interfaces ──────────────────────────────────────────────────────────

// MatrixEditor is the full approver-matrix persistence surface.
type MatrixEditor interface {
	MatrixStore
	List(ctx context.Context) ([]*repository.ApproverMatrixEntry, error)
	Create(ctx context.Context, entry *repository.ApproverMatrixEntry) error
	Update(ctx context.Context, entry *repository.ApproverMatrixEntry) error
	Delete(ctx context.Context, id string) error
}

// ContactDirectory lists approver candidates.
type ContactDirectory interface {
	List(ctx context.Context) ([]*repository.Contact, error)
}

// ── Service ───────────────────────────────────────────────────────────────────

// MatrixService maintains the per-business-unit approver matrix and joins it
// with the contact directory for display names.
type MatrixService struct {
	matrix   MatrixEditor
	contacts ContactDirectory
	log      *logger.Logger
}

// NewMatrixService creates a new MatrixService.
func NewMatrixService(matrix MatrixEditor, contacts ContactDirectory, log *logger.Logger) *MatrixService {
	return &MatrixService{matrix: matrix, contacts: contacts, log: log}
}

// ListContacts returns the approver candidates for the matrix editor.
func (s *MatrixService) ListContacts(ctx context.Context) ([]*repository.Contact, error) {
	return s.contacts.List(ctx)
}

// ListMatrix returns all matrix entries with approver display names resolved
// from the contact directory.
func (s *MatrixService) ListMatrix(ctx context.Context) ([]*repository.ApproverMatrixEntry, error) {
	entries, err := s.matrix.List(ctx)
	if err != nil {
		return nil, err
	}

	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	names := nameIndex(contacts)

	for _, entry := range entries {
		resolveSlotNames(&entry.Manager, names)
		resolveSlotNames(&entry.CFO, names)
		resolveSlotNames(&entry.Exco, names)
	}
	return entries, nil
}

// UpsertMatrixRequest represents a matrix create-or-update submission.
type UpsertMatrixRequest struct {
	BusinessUnit string                  `json:"businessUnit"`
	Manager      repository.ApproverSlot `json:"manager"`
	CFO          repository.ApproverSlot `json:"cfo"`
	Exco         repository.ApproverSlot `json:"exco"`
}

// UpsertMatrix creates the matrix entry for a business unit, or updates it
// when one already exists. Lookup-before-write keeps one entry per business
// unit; a concurrent edit race is resolved by last write wins on the same ID.
func (s *MatrixService) UpsertMatrix(ctx context.Context, req *UpsertMatrixRequest) (*repository.ApproverMatrixEntry, error) {
	if strings.TrimSpace(req.BusinessUnit) == "" {
		return nil, errors.InvalidInput("businessUnit", "a business unit must be chosen")
	}
	if !anySlotFilled(req.Manager, req.CFO, req.Exco) {
		return nil, errors.InvalidInput("approvers", "at least one approver must be assigned")
	}

	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	names := nameIndex(contacts)

	entry := &repository.ApproverMatrixEntry{
		BusinessUnit: req.BusinessUnit,
		Manager:      req.Manager,
		CFO:          req.CFO,
		Exco:         req.Exco,
	}
	resolveSlotNames(&entry.Manager, names)
	resolveSlotNames(&entry.CFO, names)
	resolveSlotNames(&entry.Exco, names)

	existing, err := s.matrix.GetByBusinessUnit(ctx, req.BusinessUnit)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		entry.ID = existing.ID
		if err := s.matrix.Update(ctx, entry); err != nil {
			return nil, err
		}
		s.log.Info().
			Str("business_unit", entry.BusinessUnit).
			Str("matrix_id", entry.ID).
			Msg("Approver matrix updated")
		return entry, nil
	}

	if err := s.matrix.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("business_unit", entry.BusinessUnit).
		Str("matrix_id", entry.ID).
		Msg("Approver matrix created")
	return entry, nil
}

// DeleteMatrix removes a matrix entry. Peripheral capability.
func (s *MatrixService) DeleteMatrix(ctx context.Context, id string) error {
	if err := s.matrix.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("matrix_id", id).Msg("Approver matrix deleted")
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func nameIndex(contacts []*repository.Contact) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[strings.ToLower(c.Email)] = c.DisplayName()
	}
	return names
}

func resolveSlotNames(slot *repository.ApproverSlot, names map[string]string) {
	if name, ok := names[strings.ToLower(slot.Approver)]; ok && slot.Approver != "" {
		slot.ApproverName = name
	}
	if name, ok := names[strings.ToLower(slot.Backup)]; ok && slot.Backup != "" {
		slot.BackupName = name
	}
}

func anySlotFilled(slots ...repository.ApproverSlot) bool {
	for _, slot := range slots {
		if slot.Approver != "" || slot.Backup != "" {
			return true
		}
	}
	return false
}
