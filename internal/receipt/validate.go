package receipt

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldErrors maps offending field names to human-readable messages.
// It is the error type for every validation failure so callers can
// enumerate all bad fields in one response.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	return "invalid fields: " + strings.Join(fields, ", ")
}

// CreateParams is the full-write field set accepted when creating a receipt.
type CreateParams struct {
	AccountHead   string
	AccountNumber string
	ReceiptNumber string
	Type          Type

	Name     string
	Address1 string
	Address2 *string
	Taluka   string
	District string
	PinCode  string
	State    string
	Mobile   string
	Gotra    string

	GrossWeight decimal.Decimal
	NetWeight   decimal.Decimal
	Goods       string

	// Media paths, filled in by the caller once the uploads are stored.
	Image1 string
	Image2 string
}

// UpdateParams is the restricted field set accepted when updating a
// receipt. Every other field is immutable through the update path.
// Nil means "leave unchanged".
type UpdateParams struct {
	Name        *string
	GrossWeight *decimal.Decimal
	NetWeight   *decimal.Decimal
	Type        *Type
	Image1      *string
	Image2      *string
}

const (
	maxPinCodeLen = 10
	maxMobileLen  = 15

	weightMaxDigits        = 10
	weightDecimalPlaces    = 2
	msgRequired            = "this field is required"
	msgInvalidWeight       = "a valid decimal number is required"
	msgTooManyPlaces       = "no more than 2 decimal places allowed"
	msgTooManyDigits       = "no more than 10 digits allowed"
	msgInvalidReceiptType  = `receipt_type must be "gold" or "silver"`
	msgPinCodeTooLong      = "no more than 10 characters allowed"
	msgMobileTooLong       = "no more than 15 characters allowed"
)

// ParseCreate validates form values against the full-write allow-list and
// returns the typed field set. Fields outside the list are ignored; missing
// or malformed values are reported per field, all at once.
func ParseCreate(form url.Values) (CreateParams, error) {
	errs := FieldErrors{}

	var p CreateParams

	p.AccountHead = requiredString(form, "account_head", errs)
	p.AccountNumber = requiredString(form, "account_number", errs)
	p.ReceiptNumber = requiredString(form, "receipt_number", errs)
	p.Name = requiredString(form, "name", errs)
	p.Address1 = requiredString(form, "address1", errs)
	p.Address2 = optionalString(form, "address2")
	p.Taluka = requiredString(form, "taluka", errs)
	p.District = requiredString(form, "district", errs)
	p.PinCode = requiredString(form, "pin_code", errs)
	p.State = requiredString(form, "state", errs)
	p.Mobile = requiredString(form, "mobile", errs)
	p.Gotra = requiredString(form, "gotra", errs)
	p.Goods = requiredString(form, "goods", errs)

	if len(p.PinCode) > maxPinCodeLen {
		errs["pin_code"] = msgPinCodeTooLong
	}

	if len(p.Mobile) > maxMobileLen {
		errs["mobile"] = msgMobileTooLong
	}

	p.GrossWeight = parseWeight(form.Get("gross_weight"), "gross_weight", errs)
	p.NetWeight = parseWeight(form.Get("net_weight"), "net_weight", errs)

	p.Type = TypeGold
	if raw := strings.TrimSpace(form.Get("receipt_type")); raw != "" {
		t, ok := parseType(raw)
		if !ok {
			errs["receipt_type"] = msgInvalidReceiptType
		}

		p.Type = t
	}

	if len(errs) > 0 {
		return CreateParams{}, errs
	}

	return p, nil
}

// ParseUpdate validates form values against the restricted-update
// allow-list. Only fields present in the form are set; anything outside
// {name, gross_weight, net_weight, receipt_type} is ignored here (the two
// image fields arrive as file uploads, never as form values).
func ParseUpdate(form url.Values) (UpdateParams, error) {
	errs := FieldErrors{}

	var p UpdateParams

	if form.Has("name") {
		name := strings.TrimSpace(form.Get("name"))
		if name == "" {
			errs["name"] = msgRequired
		}

		p.Name = &name
	}

	if form.Has("gross_weight") {
		w := parseWeight(form.Get("gross_weight"), "gross_weight", errs)
		p.GrossWeight = &w
	}

	if form.Has("net_weight") {
		w := parseWeight(form.Get("net_weight"), "net_weight", errs)
		p.NetWeight = &w
	}

	if form.Has("receipt_type") {
		t, ok := parseType(strings.TrimSpace(form.Get("receipt_type")))
		if !ok {
			errs["receipt_type"] = msgInvalidReceiptType
		}

		p.Type = &t
	}

	if len(errs) > 0 {
		return UpdateParams{}, errs
	}

	return p, nil
}

func requiredString(form url.Values, key string, errs FieldErrors) string {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		errs[key] = msgRequired
	}

	return v
}

func optionalString(form url.Values, key string) *string {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return nil
	}

	return &v
}

// parseWeight parses a decimal field with at most 10 digits and 2 decimal
// places, mirroring the column definition.
func parseWeight(raw, key string, errs FieldErrors) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs[key] = msgRequired
		return decimal.Zero
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs[key] = msgInvalidWeight
		return decimal.Zero
	}

	if d.Exponent() < -weightDecimalPlaces {
		errs[key] = msgTooManyPlaces
		return decimal.Zero
	}

	if d.NumDigits() > weightMaxDigits {
		errs[key] = msgTooManyDigits
		return decimal.Zero
	}

	return d
}

func parseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(raw)) {
	case TypeGold:
		return TypeGold, true
	case TypeSilver:
		return TypeSilver, true
	default:
		return "", false
	}
}

// FieldError builds a single-field FieldErrors value. Handlers use it for
// failures detected outside the form parsers (e.g. a missing file part).
func FieldError(field, format string, args ...any) FieldErrors {
	return FieldErrors{field: fmt.Sprintf(format, args...)}
}
