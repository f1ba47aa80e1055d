package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aperia-group/vendor-onboarding/internal/repository"
)

func strPtr(s string) *string { return &s }

func validAUBank() *repository.BankDetails {
	return &repository.BankDetails{
		BankCountry:   "AU",
		AccountName:   "Acme Supplies Pty Ltd",
		BSB:           strPtr("062000"),
		AccountNumber: strPtr("12345678"),
	}
}

func validVendorInput() VendorInput {
	return VendorInput{
		BusinessName:               "Acme Supplies",
		ContactName:                "Jordan Smith",
		ContactEmail:               "jordan@acme.example.com",
		PaymentTerms:               "30 DAYS",
		PrimaryTradingBusinessUnit: "Finance",
		TradingEntity:              EntityAU,
		ABN:                        strPtr("51824753556"),
		Bank:                       validAUBank(),
	}
}

func TestValidateVendorAccepted(t *testing.T) {
	errs := ValidateVendor(validVendorInput())
	assert.Empty(t, errs)
}

func TestValidateVendorRequiredFields(t *testing.T) {
	errs := ValidateVendor(VendorInput{})

	for _, field := range []string{
		"businessName", "contactName", "contactEmail",
		"paymentTerms", "primaryTradingBusinessUnit", "tradingEntity", "bank",
	} {
		assert.Contains(t, errs, field)
	}
}

func TestValidateVendorFieldRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*VendorInput)
		wantField string
	}{
		{
			name:      "malformed email",
			mutate:    func(in *VendorInput) { in.ContactEmail = "not-an-email" },
			wantField: "contactEmail",
		},
		{
			name:      "unknown trading entity",
			mutate:    func(in *VendorInput) { in.TradingEntity = "US" },
			wantField: "tradingEntity",
		},
		{
			name:      "ABN required for AU",
			mutate:    func(in *VendorInput) { in.ABN = nil },
			wantField: "abn",
		},
		{
			name:      "ABN must be 11 digits",
			mutate:    func(in *VendorInput) { in.ABN = strPtr("123") },
			wantField: "abn",
		},
		{
			name:      "whitespace-only name is empty",
			mutate:    func(in *VendorInput) { in.BusinessName = "   " },
			wantField: "businessName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validVendorInput()
			tt.mutate(&in)

			errs := ValidateVendor(in)
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestValidateVendorABNOptionalOutsideAU(t *testing.T) {
	in := validVendorInput()
	in.TradingEntity = EntityNZ
	in.ABN = nil
	in.Bank = &repository.BankDetails{
		BankCountry:   "NZ",
		AccountName:   "Acme NZ Ltd",
		AccountNumber: strPtr("123456789012345"),
	}

	errs := ValidateVendor(in)
	assert.Empty(t, errs)
}

func TestValidateBank(t *testing.T) {
	tests := []struct {
		name          string
		bank          *repository.BankDetails
		tradingEntity string
		wantFields    []string
	}{
		{
			name:       "nil bank",
			bank:       nil,
			wantFields: []string{"bank"},
		},
		{
			name: "AU bank requires BSB and account",
			bank: &repository.BankDetails{
				BankCountry: "AU",
				AccountName: "Acme",
			},
			wantFields: []string{"bank.bsb", "bank.accountNumber"},
		},
		{
			name: "AU BSB must be 6 digits",
			bank: &repository.BankDetails{
				BankCountry:   "AU",
				AccountName:   "Acme",
				BSB:           strPtr("62-000"),
				AccountNumber: strPtr("12345678"),
			},
			wantFields: []string{"bank.bsb"},
		},
		{
			name: "NZ account must be 15-16 digits",
			bank: &repository.BankDetails{
				BankCountry:   "NZ",
				AccountName:   "Acme NZ",
				AccountNumber: strPtr("1234"),
			},
			wantFields: []string{"bank.accountNumber"},
		},
		{
			name: "overseas bank requires IBAN and SWIFT",
			bank: &repository.BankDetails{
				BankCountry: "DE",
				AccountName: "Acme GmbH",
			},
			wantFields: []string{"bank.iban", "bank.swiftCode"},
		},
		{
			name: "overseas entity cannot use AU bank",
			bank: &repository.BankDetails{
				BankCountry:   "AU",
				AccountName:   "Acme",
				BSB:           strPtr("062000"),
				AccountNumber: strPtr("12345678"),
			},
			tradingEntity: EntityOverseas,
			wantFields:    []string{"bank.bankCountry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateBank(tt.bank, tt.tradingEntity)
			for _, field := range tt.wantFields {
				assert.Contains(t, errs, field)
			}
		})
	}
}

func TestValidateBankAcceptsOverseasAccount(t *testing.T) {
	errs := ValidateBank(&repository.BankDetails{
		BankCountry: "DE",
		AccountName: "Acme GmbH",
		IBAN:        strPtr("DE89370400440532013000"),
		SwiftCode:   strPtr("DEUTDEFF"),
	}, EntityOverseas)
	assert.Empty(t, errs)
}

func TestValidateSupplier(t *testing.T) {
	valid := SupplierInput{
		BusinessName:  "Acme Supplies",
		ContactName:   "Jordan Smith",
		ContactEmail:  "jordan@acme.example.com",
		TradingEntity: EntityAU,
		ABN:           strPtr("51824753556"),
		Bank:          validAUBank(),
	}

	t.Run("valid AU form", func(t *testing.T) {
		errs := ValidateSupplier(valid)
		assert.Empty(t, errs)
	})

	t.Run("payment terms not collected on the supplier form", func(t *testing.T) {
		errs := ValidateSupplier(valid)
		assert.NotContains(t, errs, "paymentTerms")
		assert.NotContains(t, errs, "primaryTradingBusinessUnit")
	})

	t.Run("GST number required for NZ", func(t *testing.T) {
		in := valid
		in.TradingEntity = EntityNZ
		in.ABN = nil
		in.Bank = &repository.BankDetails{
			BankCountry:   "NZ",
			AccountName:   "Acme NZ Ltd",
			AccountNumber: strPtr("123456789012345"),
		}

		errs := ValidateSupplier(in)
		require.Contains(t, errs, "gstNumber")

		in.GSTNumber = strPtr("123-456-789")
		assert.Empty(t, ValidateSupplier(in))
	})

	t.Run("biller and reference codes must be numeric", func(t *testing.T) {
		in := valid
		in.BillerCode = strPtr("12x4")
		in.ReferenceCode = strPtr("ref-1")

		errs := ValidateSupplier(in)
		assert.Contains(t, errs, "billerCode")
		assert.Contains(t, errs, "referenceCode")

		in.BillerCode = strPtr("96203")
		in.ReferenceCode = strPtr("100045")
		assert.Empty(t, ValidateSupplier(in))
	})
}
