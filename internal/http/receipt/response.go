package receipt

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nileshdj/pavti/internal/receipt"
)

type receiptResponse struct {
	ID int64 `json:"id"`

	AccountHead   string       `json:"account_head"`
	AccountNumber string       `json:"account_number"`
	ReceiptNumber string       `json:"receipt_number"`
	ReceiptType   receipt.Type `json:"receipt_type"`

	Name     string  `json:"name"`
	Address1 string  `json:"address1"`
	Address2 *string `json:"address2"`
	Taluka   string  `json:"taluka"`
	District string  `json:"district"`
	PinCode  string  `json:"pin_code"`
	State    string  `json:"state"`
	Mobile   string  `json:"mobile"`
	Gotra    string  `json:"gotra"`

	GrossWeight decimal.Decimal `json:"gross_weight"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	Goods       string          `json:"goods"`

	// Absolute URLs, empty when the image is unset.
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`

	FilledBy          *int64 `json:"filled_by"`
	FilledByUsername  string `json:"filled_by_username,omitempty"`
	UpdatedBy         *int64 `json:"updated_by"`
	UpdatedByUsername string `json:"updated_by_username,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(rec *receipt.Receipt, r *http.Request) receiptResponse {
	return receiptResponse{
		ID:                rec.ID,
		AccountHead:       rec.AccountHead,
		AccountNumber:     rec.AccountNumber,
		ReceiptNumber:     rec.ReceiptNumber,
		ReceiptType:       rec.Type,
		Name:              rec.Name,
		Address1:          rec.Address1,
		Address2:          rec.Address2,
		Taluka:            rec.Taluka,
		District:          rec.District,
		PinCode:           rec.PinCode,
		State:             rec.State,
		Mobile:            rec.Mobile,
		Gotra:             rec.Gotra,
		GrossWeight:       rec.GrossWeight,
		NetWeight:         rec.NetWeight,
		Goods:             rec.Goods,
		Image1:            mediaURL(r, rec.Image1),
		Image2:            mediaURL(r, rec.Image2),
		FilledBy:          rec.FilledBy,
		FilledByUsername:  rec.FilledByUsername,
		UpdatedBy:         rec.UpdatedBy,
		UpdatedByUsername: rec.UpdatedByUsername,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func toResponseList(rs []*receipt.Receipt, r *http.Request) []receiptResponse {
	resp := make([]receiptResponse, len(rs))
	for i, rec := range rs {
		resp[i] = toResponse(rec, r)
	}

	return resp
}

// mediaURL builds an absolute URL for a stored image from the request
// host, so clients can fetch it directly.
func mediaURL(r *http.Request, rel string) string {
	if rel == "" || r == nil {
		return rel
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return scheme + "://" + r.Host + "/media/" + rel
}
