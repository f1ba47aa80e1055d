package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

const matrixFields = `
	id businessUnit
	manager { approver approverName backup backupName }
	cfo { approver approverName backup backupName }
	exco { approver approverName backup backupName }
	updatedAt
`

// MatrixRepository handles approver-matrix operations against the warehouse.
type MatrixRepository struct {
	wh *warehouse.Client
}

// NewMatrixRepository creates a new approver-matrix repository.
func NewMatrixRepository(wh *warehouse.Client) *MatrixRepository {
	return &MatrixRepository{wh: wh}
}

// GetByBusinessUnit returns the matrix entry for a business unit, or nil when
// none exists yet.
func (r *MatrixRepository) GetByBusinessUnit(ctx context.Context, businessUnit string) (*ApproverMatrixEntry, error) {
	query := `
		query GetApproverMatrix($businessUnit: String!) {
			getApproverMatrix(businessUnit: $businessUnit) {` + matrixFields + `}
		}
	`

	var resp struct {
		GetApproverMatrix *ApproverMatrixEntry `json:"getApproverMatrix"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"businessUnit": businessUnit}, &resp); err != nil {
		return nil, err
	}
	return resp.GetApproverMatrix, nil
}

// List returns all matrix entries.
func (r *MatrixRepository) List(ctx context.Context) ([]*ApproverMatrixEntry, error) {
	query := `
		query ListApproverMatrix {
			listApproverMatrix {
				items {` + matrixFields + `}
			}
		}
	`

	var resp struct {
		ListApproverMatrix struct {
			Items []*ApproverMatrixEntry `json:"items"`
		} `json:"listApproverMatrix"`
	}

	if err := r.wh.Run(ctx, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ListApproverMatrix.Items, nil
}

// Create inserts a new matrix entry.
func (r *MatrixRepository) Create(ctx context.Context, entry *ApproverMatrixEntry) error {
	entry.ID = uuid.NewString()

	query := `
		mutation CreateApproverMatrix($input: ApproverMatrixInput!) {
			createApproverMatrix(input: $input) { id updatedAt }
		}
	`

	var resp struct {
		CreateApproverMatrix struct {
			ID string `json:"id"`
		} `json:"createApproverMatrix"`
	}

	return r.wh.Run(ctx, query, map[string]interface{}{"input": entry}, &resp)
}

// Update replaces an existing matrix entry's approver slots.
func (r *MatrixRepository) Update(ctx context.Context, entry *ApproverMatrixEntry) error {
	query := `
		mutation UpdateApproverMatrix($id: ID!, $input: ApproverMatrixInput!) {
			updateApproverMatrix(id: $id, input: $input) { id updatedAt }
		}
	`

	var resp struct {
		UpdateApproverMatrix *struct {
			ID string `json:"id"`
		} `json:"updateApproverMatrix"`
	}

	vars := map[string]interface{}{"id": entry.ID, "input": entry}
	if err := r.wh.Run(ctx, query, vars, &resp); err != nil {
		return err
	}
	if resp.UpdateApproverMatrix == nil {
		return errors.NotFound("approver_matrix", entry.ID)
	}
	return nil
}

// Delete removes a matrix entry. Peripheral; not part of the normal flow.
func (r *MatrixRepository) Delete(ctx context.Context, id string) error {
	query := `
		mutation DeleteApproverMatrix($id: ID!) {
			deleteApproverMatrix(id: $id) { id }
		}
	`

	var resp struct {
		DeleteApproverMatrix *struct {
			ID string `json:"id"`
		} `json:"deleteApproverMatrix"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"id": id}, &resp); err != nil {
		return err
	}
	if resp.DeleteApproverMatrix == nil {
		return errors.NotFound("approver_matrix", id)
	}
	return nil
}
