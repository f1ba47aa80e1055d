package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

// vendorFields is the selection set shared by every vendor operation.
const vendorFields = `
	id businessName tradingName contactName contactEmail contactPhone
	abn gstNumber tradingEntity
	bank { bankCountry accountName bsb accountNumber iban swiftCode }
	paymentTerms statusCode statusCodeRecord
	currentApprover currentApproverName nextApprover nextApproverName
	approvalComment primaryTradingBusinessUnit parentVendor
	version createdBy createdAt updatedAt
`

// VendorRepository handles vendor record operations against the warehouse.
type VendorRepository struct {
	wh *warehouse.Client
}

// NewVendorRepository creates a new vendor repository.
func NewVendorRepository(wh *warehouse.Client) *VendorRepository {
	return &VendorRepository{wh: wh}
}

// Create inserts a new vendor record. The ID and version are assigned here,
// not by the warehouse.
func (r *VendorRepository) Create(ctx context.Context, vendor *VendorRecord) error {
	vendor.ID = uuid.NewString()
	vendor.Version = 1
	now := time.Now().UTC()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	query := `
		mutation CreateVendor($input: VendorInput!) {
			createVendor(input: $input) {
				id version createdAt updatedAt
			}
		}
	`

	var resp struct {
		CreateVendor struct {
			ID        string    `json:"id"`
			Version   int       `json:"version"`
			CreatedAt time.Time `json:"createdAt"`
			UpdatedAt time.Time `json:"updatedAt"`
		} `json:"createVendor"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"input": vendor}, &resp); err != nil {
		return err
	}
	return nil
}

// GetByID retrieves a vendor record by ID.
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*VendorRecord, error) {
	query := `
		query GetVendor($id: ID!) {
			getVendor(id: $id) {` + vendorFields + `}
		}
	`

	var resp struct {
		GetVendor *VendorRecord `json:"getVendor"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"id": id}, &resp); err != nil {
		return nil, err
	}
	if resp.GetVendor == nil {
		return nil, errors.NotFound("vendor", id)
	}
	return resp.GetVendor, nil
}

// List retrieves all vendor records. Filtering and counting happen in the
// service layer; anticipated data volumes make a full fetch acceptable.
func (r *VendorRepository) List(ctx context.Context) ([]*VendorRecord, error) {
	query := `
		query ListVendors {
			listVendors {
				items {` + vendorFields + `}
			}
		}
	`

	var resp struct {
		ListVendors struct {
			Items []*VendorRecord `json:"items"`
		} `json:"listVendors"`
	}

	if err := r.wh.Run(ctx, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ListVendors.Items, nil
}

// TransitionUpdate carries the fields mutated by a workflow transition.
type TransitionUpdate struct {
	StatusCode          Status `json:"statusCode"`
	StatusCodeRecord    Status `json:"statusCodeRecord"`
	CurrentApprover     string `json:"currentApprover"`
	CurrentApproverName string `json:"currentApproverName"`
	NextApprover        string `json:"nextApprover"`
	NextApproverName    string `json:"nextApproverName"`
	ApprovalComment     string `json:"approvalComment"`
}

// ApplyTransition persists a workflow transition with an optimistic version
// check: the mutation only succeeds when the stored version still equals
// expectedVersion. A null result means another actor updated the record first.
func (r *VendorRepository) ApplyTransition(ctx context.Context, id string, expectedVersion int, update TransitionUpdate) error {
	query := `
		mutation TransitionVendor($id: ID!, $expectedVersion: Int!, $input: VendorTransitionInput!) {
			transitionVendor(id: $id, expectedVersion: $expectedVersion, input: $input) {
				id version
			}
		}
	`

	var resp struct {
		TransitionVendor *struct {
			ID      string `json:"id"`
			Version int    `json:"version"`
		} `json:"transitionVendor"`
	}

	vars := map[string]interface{}{
		"id":              id,
		"expectedVersion": expectedVersion,
		"input":           update,
	}
	if err := r.wh.Run(ctx, query, vars, &resp); err != nil {
		return err
	}
	if resp.TransitionVendor == nil {
		return errors.New(errors.ErrCodeConflict,
			"vendor record was modified by another user; reload and retry")
	}
	return nil
}

// Delete removes a vendor record entirely. The service layer restricts this
// to records still at "Invitation sent".
func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	query := `
		mutation DeleteVendor($id: ID!) {
			deleteVendor(id: $id) { id }
		}
	`

	var resp struct {
		DeleteVendor *struct {
			ID string `json:"id"`
		} `json:"deleteVendor"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"id": id}, &resp); err != nil {
		return err
	}
	if resp.DeleteVendor == nil {
		return errors.NotFound("vendor", id)
	}
	return nil
}
