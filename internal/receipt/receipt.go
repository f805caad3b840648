package receipt

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a receipt by the metal it covers.
type Type string

const (
	TypeGold   Type = "gold"
	TypeSilver Type = "silver"
)

// ErrNotFound is returned when no receipt exists for the requested id.
var ErrNotFound = errors.New("receipt not found")

// Receipt is a single donor submission recorded by the trust.
type Receipt struct {
	ID int64

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

	// Relative media paths; empty when no image was attached.
	Image1 string
	Image2 string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Weak references to the users who created and last modified the
	// record. Cleared, not cascaded, when the user is deleted.
	FilledBy          *int64
	UpdatedBy         *int64
	FilledByUsername  string // Loaded via JOIN
	UpdatedByUsername string // Loaded via JOIN
}
