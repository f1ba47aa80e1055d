// Package validation implements the shared form-validation schema for vendor
// and supplier submissions. Every inbound path validates through this package
// so the rules exist exactly once.
package validation

import (
	"regexp"
	"strings"

	"github.com/aperia-group/vendor-onboarding/internal/repository"
)

// FieldErrors maps field names to validation messages. Empty means valid.
type FieldErrors map[string]string

// Any reports whether at least one field failed validation.
func (f FieldErrors) Any() bool { return len(f) > 0 }

func (f FieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f FieldErrors) merge(other FieldErrors) {
	for field, message := range other {
		f.add(field, message)
	}
}

var (
	emailPattern     = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	bsbPattern       = regexp.MustCompile(`^\d{6}$`)
	auAccountPattern = regexp.MustCompile(`^\d{6,10}$`)
	nzAccountPattern = regexp.MustCompile(`^\d{15,16}$`)
	abnPattern       = regexp.MustCompile(`^\d{11}$`)
	numericPattern   = regexp.MustCompile(`^\d+$`)
	swiftPattern     = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	ibanPattern      = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{4,30}$`)
)

// Trading entity values accepted on vendor and supplier forms.
const (
	EntityAU       = "AU"
	EntityNZ       = "NZ"
	EntityOverseas = "overseas"
)

// VendorInput is the validatable surface of a vendor creation request.
type VendorInput struct {
	BusinessName               string
	TradingName                string
	ContactName                string
	ContactEmail               string
	ContactPhone               string
	PaymentTerms               string
	PrimaryTradingBusinessUnit string
	TradingEntity              string
	ABN                        *string
	Bank                       *repository.BankDetails
}

// ValidateVendor checks required fields, formats and the conditional banking
// rules for a vendor creation request.
func ValidateVendor(in VendorInput) FieldErrors {
	errs := FieldErrors{}

	requireNonEmpty(errs, "businessName", in.BusinessName)
	requireNonEmpty(errs, "contactName", in.ContactName)
	requireNonEmpty(errs, "paymentTerms", in.PaymentTerms)
	requireNonEmpty(errs, "primaryTradingBusinessUnit", in.PrimaryTradingBusinessUnit)

	requireNonEmpty(errs, "contactEmail", in.ContactEmail)
	if in.ContactEmail != "" && !emailPattern.MatchString(in.ContactEmail) {
		errs.add("contactEmail", "must be a valid email address")
	}

	errs.merge(validateTradingEntity(in.TradingEntity))

	// ABN is required for AU trading entities only.
	if in.TradingEntity == EntityAU {
		if in.ABN == nil || *in.ABN == "" {
			errs.add("abn", "is required for AU trading entities")
		} else if !abnPattern.MatchString(*in.ABN) {
			errs.add("abn", "must be 11 digits")
		}
	}

	errs.merge(ValidateBank(in.Bank, in.TradingEntity))

	return errs
}

// SupplierInput is the validatable surface of a supplier form submission.
type SupplierInput struct {
	BusinessName  string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	TradingEntity string
	ABN           *string
	GSTNumber     *string
	Bank          *repository.BankDetails
	BillerCode    *string
	ReferenceCode *string
}

// ValidateSupplier checks a submitted supplier form.
func ValidateSupplier(in SupplierInput) FieldErrors {
	errs := ValidateVendor(VendorInput{
		BusinessName:               in.BusinessName,
		ContactName:                in.ContactName,
		ContactEmail:               in.ContactEmail,
		ContactPhone:               in.ContactPhone,
		PaymentTerms:               "-", // not collected on the supplier form
		PrimaryTradingBusinessUnit: "-",
		TradingEntity:              in.TradingEntity,
		ABN:                        in.ABN,
		Bank:                       in.Bank,
	})
	delete(errs, "paymentTerms")
	delete(errs, "primaryTradingBusinessUnit")

	// GST number is required for NZ trading entities.
	if in.TradingEntity == EntityNZ && (in.GSTNumber == nil || *in.GSTNumber == "") {
		errs.add("gstNumber", "is required for NZ trading entities")
	}

	if in.BillerCode != nil && *in.BillerCode != "" && !numericPattern.MatchString(*in.BillerCode) {
		errs.add("billerCode", "must be numeric")
	}
	if in.ReferenceCode != nil && *in.ReferenceCode != "" && !numericPattern.MatchString(*in.ReferenceCode) {
		errs.add("referenceCode", "must be numeric")
	}

	return errs
}

// ValidateBank applies the conditional banking rules: the trading entity
// selects which regional block is required, and the bank country selects
// between domestic (BSB/account) and IBAN/SWIFT fields.
func ValidateBank(bank *repository.BankDetails, tradingEntity string) FieldErrors {
	errs := FieldErrors{}

	if bank == nil {
		errs.add("bank", "banking details are required")
		return errs
	}

	requireNonEmpty(errs, "bank.accountName", bank.AccountName)
	requireNonEmpty(errs, "bank.bankCountry", bank.BankCountry)

	switch strings.ToUpper(bank.BankCountry) {
	case "AU":
		if bank.BSB == nil || !bsbPattern.MatchString(*bank.BSB) {
			errs.add("bank.bsb", "must be a 6-digit BSB")
		}
		if bank.AccountNumber == nil || !auAccountPattern.MatchString(*bank.AccountNumber) {
			errs.add("bank.accountNumber", "must be 6-10 digits")
		}
	case "NZ":
		if bank.AccountNumber == nil || !nzAccountPattern.MatchString(*bank.AccountNumber) {
			errs.add("bank.accountNumber", "must be a 15-16 digit NZ account number")
		}
	case "":
		// bankCountry error already recorded above
	default:
		// Overseas accounts require IBAN and SWIFT instead of domestic fields.
		if bank.IBAN == nil || !ibanPattern.MatchString(strings.ToUpper(*bank.IBAN)) {
			errs.add("bank.iban", "must be a valid IBAN")
		}
		if bank.SwiftCode == nil || !swiftPattern.MatchString(strings.ToUpper(*bank.SwiftCode)) {
			errs.add("bank.swiftCode", "must be a valid SWIFT/BIC code")
		}
	}

	// An overseas trading entity cannot supply a domestic-only block.
	if tradingEntity == EntityOverseas && strings.EqualFold(bank.BankCountry, "AU") {
		errs.add("bank.bankCountry", "overseas trading entities must use an overseas bank account")
	}

	return errs
}

func validateTradingEntity(entity string) FieldErrors {
	errs := FieldErrors{}
	switch entity {
	case EntityAU, EntityNZ, EntityOverseas:
	case "":
		errs.add("tradingEntity", "is required")
	default:
		errs.add("tradingEntity", "must be one of AU, NZ, overseas")
	}
	return errs
}

func requireNonEmpty(errs FieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
	}
}
