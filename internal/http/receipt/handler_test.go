package receipt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nileshdj/pavti/internal/http/middleware"
	receiptHandler "github.com/nileshdj/pavti/internal/http/receipt"
	"github.com/nileshdj/pavti/internal/media"
	"github.com/nileshdj/pavti/internal/receipt"
	"github.com/nileshdj/pavti/internal/user"
)

func newServer(t *testing.T, openRead bool) (*chi.Mux, *receipt.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := receipt.NewMockRepository(ctrl)

	mediaStore, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	h := receiptHandler.NewHandler(receipt.NewService(repo), mediaStore)

	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		h.Routes(r, openRead)
	})

	return r, repo
}

// asUser attaches an authenticated operator to the request, standing in
// for the token middleware.
func asUser(req *http.Request, id int64) *http.Request {
	u := &user.User{ID: id, Username: "clerk"}
	return req.WithContext(middleware.WithUser(req.Context(), u))
}

func sampleReceipt(id int64) *receipt.Receipt {
	return &receipt.Receipt{
		ID:               id,
		AccountHead:      "donations",
		AccountNumber:    "AC-9",
		ReceiptNumber:    "R-101",
		Type:             receipt.TypeGold,
		Name:             "Suresh Patil",
		Address1:         "12 Temple Road",
		Taluka:           "Haveli",
		District:         "Pune",
		PinCode:          "411001",
		State:            "Maharashtra",
		Mobile:           "9876543210",
		Gotra:            "Kashyap",
		GrossWeight:      decimal.RequireFromString("12.50"),
		NetWeight:        decimal.RequireFromString("11.25"),
		Goods:            "bangles",
		Image1:           "user_images/a.png",
		Image2:           "user_images/b.png",
		FilledByUsername: "clerk",
	}
}

// multipartBody builds a multipart form with the given fields plus one
// small PNG-ish file per name in files.
func multipartBody(t *testing.T, fields url.Values, files []string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, vals := range fields {
		for _, v := range vals {
			require.NoError(t, w.WriteField(key, v))
		}
	}

	for _, name := range files {
		part, err := w.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader("\x89PNG fake image bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func createFields() url.Values {
	return url.Values{
		"account_head":   {"donations"},
		"account_number": {"AC-9"},
		"receipt_number": {"R-101"},
		"name":           {"Suresh Patil"},
		"address1":       {"12 Temple Road"},
		"taluka":         {"Haveli"},
		"district":       {"Pune"},
		"pin_code":       {"411001"},
		"state":          {"Maharashtra"},
		"mobile":         {"9876543210"},
		"gotra":          {"Kashyap"},
		"goods":          {"bangles"},
		"gross_weight":   {"12.50"},
		"net_weight":     {"11.25"},
	}
}

func TestCreate(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().
		CreateReceipt(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *receipt.Receipt) error {
			require.NotNil(t, rec.FilledBy)
			assert.Equal(t, int64(7), *rec.FilledBy)
			assert.True(t, strings.HasPrefix(rec.Image1, "user_images/"))
			assert.True(t, strings.HasPrefix(rec.Image2, "user_images/"))
			rec.ID = 42
			return nil
		})
	repo.EXPECT().
		GetReceipt(gomock.Any(), int64(42)).
		Return(sampleReceipt(42), nil)

	body, contentType := multipartBody(t, createFields(), []string{"image1", "image2"})

	req := httptest.NewRequest(http.MethodPost, "/api/users/", body)
	req.Header.Set("Content-Type", contentType)
	req = asUser(req, 7)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(42), resp["id"])
	assert.Equal(t, "clerk", resp["filled_by_username"])
	assert.Equal(t, "http://example.com/media/user_images/a.png", resp["image1"])
}

func TestCreate_MissingImagesAndFields(t *testing.T) {
	r, _ := newServer(t, false)

	fields := createFields()
	fields.Del("name")
	fields.Set("gross_weight", "1.234")

	body, contentType := multipartBody(t, fields, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/", body)
	req.Header.Set("Content-Type", contentType)
	req = asUser(req, 7)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "gross_weight")
	assert.Contains(t, resp.Errors, "image1")
	assert.Contains(t, resp.Errors, "image2")
}

func TestCreate_RequiresAuth(t *testing.T) {
	r, _ := newServer(t, true)

	body, contentType := multipartBody(t, createFields(), []string{"image1", "image2"})

	req := httptest.NewRequest(http.MethodPost, "/api/users/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdate_RestrictedFields(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().GetReceipt(gomock.Any(), int64(42)).Return(sampleReceipt(42), nil)
	repo.EXPECT().
		UpdateReceipt(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *receipt.Receipt) error {
			assert.Equal(t, "Ramesh Patil", rec.Name)
			assert.True(t, decimal.RequireFromString("15.75").Equal(rec.GrossWeight))
			// The second operator is stamped, not substituted for the filler.
			require.NotNil(t, rec.UpdatedBy)
			assert.Equal(t, int64(9), *rec.UpdatedBy)
			// Identity fields sent in the form are ignored.
			assert.Equal(t, "R-101", rec.ReceiptNumber)
			return nil
		})
	repo.EXPECT().GetReceipt(gomock.Any(), int64(42)).Return(sampleReceipt(42), nil)

	form := url.Values{
		"name":           {"Ramesh Patil"},
		"gross_weight":   {"15.75"},
		"receipt_number": {"R-999"},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/users/42", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asUser(req, 9)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdate_NotFound(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().GetReceipt(gomock.Any(), int64(99)).Return(nil, receipt.ErrNotFound)

	form := url.Values{"name": {"Ramesh Patil"}}

	req := httptest.NewRequest(http.MethodPut, "/api/users/99", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asUser(req, 9)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().
		ListReceipts(gomock.Any()).
		Return([]*receipt.Receipt{sampleReceipt(2), sampleReceipt(1)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/", nil)
	req = asUser(req, 7)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	// The repository's newest-first order is preserved.
	assert.Equal(t, float64(2), resp[0]["id"])
	assert.Equal(t, float64(1), resp[1]["id"])
}

func TestList_OpenRead(t *testing.T) {
	r, repo := newServer(t, true)

	repo.EXPECT().ListReceipts(gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/", nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestList_ClosedRead(t *testing.T) {
	r, _ := newServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/users/", nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDelete(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().DeleteReceipt(gomock.Any(), int64(42)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/42", nil)
	req = asUser(req, 7)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDelete_NotFound(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().DeleteReceipt(gomock.Any(), int64(99)).Return(receipt.ErrNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/99", nil)
	req = asUser(req, 7)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSV(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().
		ListReceipts(gomock.Any()).
		Return([]*receipt.Receipt{sampleReceipt(1)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/export", nil)
	req = asUser(req, 7)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipts.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Suresh Patil")
	assert.Contains(t, lines[1], "R-101")
}

func TestImportCSV(t *testing.T) {
	r, repo := newServer(t, false)

	repo.EXPECT().
		CreateReceipts(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rs []*receipt.Receipt) error {
			require.Len(t, rs, 1)
			assert.Equal(t, "Suresh Patil", rs[0].Name)
			rs[0].ID = 1
			return nil
		})

	csv := "account_head,account_number,receipt_number,name,address1,taluka,district,pin_code,state,mobile,gotra,goods,gross_weight,net_weight,receipt_type\n" +
		"donations,AC-9,R-101,Suresh Patil,12 Temple Road,Haveli,Pune,411001,Maharashtra,9876543210,Kashyap,bangles,12.50,11.25,gold\n"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "receipts.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req = asUser(req, 7)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Imported)
}
