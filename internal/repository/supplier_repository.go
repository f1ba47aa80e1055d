package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

const supplierFormFields = `
	id vendorId businessName contactName contactEmail contactPhone
	tradingEntity abn gstNumber
	bank { bankCountry accountName bsb accountNumber iban swiftCode }
	billerCode referenceCode
	attachmentName attachmentSize attachmentType
	submittedAt
`

// SupplierFormRepository stores submitted supplier forms and serves the
// lookup-by-email endpoint.
type SupplierFormRepository struct {
	wh *warehouse.Client
}

// NewSupplierFormRepository creates a new supplier form repository.
func NewSupplierFormRepository(wh *warehouse.Client) *SupplierFormRepository {
	return &SupplierFormRepository{wh: wh}
}

// Create stores a submitted supplier form.
func (r *SupplierFormRepository) Create(ctx context.Context, form *SupplierForm) error {
	form.ID = uuid.NewString()
	form.SubmittedAt = time.Now().UTC()

	query := `
		mutation CreateSupplierForm($input: SupplierFormInput!) {
			createSupplierForm(input: $input) { id submittedAt }
		}
	`

	var resp struct {
		CreateSupplierForm struct {
			ID string `json:"id"`
		} `json:"createSupplierForm"`
	}

	return r.wh.Run(ctx, query, map[string]interface{}{"input": form}, &resp)
}

// GetByEmail returns the most recent supplier form submitted for a contact
// email, or nil when none exists.
func (r *SupplierFormRepository) GetByEmail(ctx context.Context, email string) (*SupplierForm, error) {
	query := `
		query GetSupplierFormByEmail($email: String!) {
			getSupplierFormByEmail(email: $email) {` + supplierFormFields + `}
		}
	`

	var resp struct {
		GetSupplierFormByEmail *SupplierForm `json:"getSupplierFormByEmail"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"email": email}, &resp); err != nil {
		return nil, err
	}
	return resp.GetSupplierFormByEmail, nil
}
