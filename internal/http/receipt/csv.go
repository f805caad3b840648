package receipt

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/nileshdj/pavti/internal/receipt"
)

var csvHeader = []string{
	"id", "account_head", "account_number", "receipt_number", "receipt_type",
	"name", "address1", "address2", "taluka", "district", "pin_code", "state",
	"mobile", "gotra", "gross_weight", "net_weight", "goods",
	"filled_by", "created_at", "updated_at",
}

// exportCSV streams every receipt as a CSV attachment, newest first, for
// the trust's offline reporting.
func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	rs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)
	writer.Write(csvHeader)

	for _, rec := range rs {
		writer.Write(csvRow(rec))
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="receipts.csv"`)
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func csvRow(rec *receipt.Receipt) []string {
	address2 := ""
	if rec.Address2 != nil {
		address2 = *rec.Address2
	}

	filledBy := rec.FilledByUsername

	return []string{
		strconv.FormatInt(rec.ID, 10),
		rec.AccountHead,
		rec.AccountNumber,
		rec.ReceiptNumber,
		string(rec.Type),
		rec.Name,
		rec.Address1,
		address2,
		rec.Taluka,
		rec.District,
		rec.PinCode,
		rec.State,
		rec.Mobile,
		rec.Gotra,
		rec.GrossWeight.String(),
		rec.NetWeight.String(),
		rec.Goods,
		filledBy,
		rec.CreatedAt.Format("2006-01-02 15:04:05"),
		rec.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
