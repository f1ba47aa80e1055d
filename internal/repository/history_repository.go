package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

// HistoryRepository appends and reads immutable approval-history entries.
// Append is the only mutation exposed.
type HistoryRepository struct {
	wh *warehouse.Client
}

// NewHistoryRepository creates a new approval-history repository.
func NewHistoryRepository(wh *warehouse.Client) *HistoryRepository {
	return &HistoryRepository{wh: wh}
}

// Append records one workflow transition.
func (r *HistoryRepository) Append(ctx context.Context, entry *ApprovalHistoryEntry) error {
	entry.ID = uuid.NewString()
	entry.PerformedAt = time.Now().UTC()

	query := `
		mutation AppendApprovalHistory($input: ApprovalHistoryInput!) {
			appendApprovalHistory(input: $input) { id }
		}
	`

	var resp struct {
		AppendApprovalHistory struct {
			ID string `json:"id"`
		} `json:"appendApprovalHistory"`
	}

	return r.wh.Run(ctx, query, map[string]interface{}{"input": entry}, &resp)
}

// GetByVendorID returns a vendor's full transition history, oldest first.
func (r *HistoryRepository) GetByVendorID(ctx context.Context, vendorID string) ([]*ApprovalHistoryEntry, error) {
	query := `
		query ListApprovalHistory($vendorId: ID!) {
			listApprovalHistory(vendorId: $vendorId) {
				items {
					id vendorId action performedBy performedAt
					statusBefore statusAfter comment
				}
			}
		}
	`

	var resp struct {
		ListApprovalHistory struct {
			Items []*ApprovalHistoryEntry `json:"items"`
		} `json:"listApprovalHistory"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"vendorId": vendorID}, &resp); err != nil {
		return nil, err
	}
	return resp.ListApprovalHistory.Items, nil
}
