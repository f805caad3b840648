package receipt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nileshdj/pavti/internal/http/middleware"
	"github.com/nileshdj/pavti/internal/importer"
	"github.com/nileshdj/pavti/internal/media"
	"github.com/nileshdj/pavti/internal/receipt"
)

// maxUploadSize caps a multipart request; two images plus fields.
const maxUploadSize = 32 << 20

type Handler struct {
	svc    *receipt.Service
	media  *media.Store
	parser *importer.Parser
}

func NewHandler(svc *receipt.Service, mediaStore *media.Store) *Handler {
	return &Handler{
		svc:    svc,
		media:  mediaStore,
		parser: importer.New(),
	}
}

// Routes mounts the receipts resource. Reads are gated only when the
// deployment runs with the authenticated-only policy; writes always are.
func (h *Handler) Routes(r chi.Router, openRead bool) {
	r.Group(func(r chi.Router) {
		if !openRead {
			r.Use(middleware.RequireAuth)
		}

		r.Get("/", h.list)
		r.Get("/export", h.exportCSV)
		r.Get("/{id}", h.get)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", h.create)
		r.Post("/import", h.importCSV)
		r.Put("/{id}", h.update)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(rs, r))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Receipt not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec, r))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	errs := receipt.FieldErrors{}

	params, err := receipt.ParseCreate(url.Values(r.MultipartForm.Value))
	if err != nil {
		var fe receipt.FieldErrors
		if !errors.As(err, &fe) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		errs = fe
	}

	// Both images are mandatory on create, like every other required field.
	for _, field := range []string{"image1", "image2"} {
		if len(r.MultipartForm.File[field]) == 0 {
			errs[field] = "this field is required"
		}
	}

	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	params.Image1, err = h.saveUpload(r.MultipartForm.File["image1"][0])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image1")
		return
	}

	params.Image2, err = h.saveUpload(r.MultipartForm.File["image2"][0])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image2")
		return
	}

	rec, err := h.svc.Create(r.Context(), params, actorID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(rec, r))
}

// update handles both PUT and PATCH. Only the restricted field set is
// writable through here; anything else in the form is ignored.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	form, files, err := parseWriteForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	params, err := receipt.ParseUpdate(form)
	if err != nil {
		var fe receipt.FieldErrors
		if errors.As(err, &fe) {
			writeFieldErrors(w, fe)
			return
		}

		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	if len(files["image1"]) > 0 {
		rel, err := h.saveUpload(files["image1"][0])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to store image1")
			return
		}

		params.Image1 = &rel
	}

	if len(files["image2"]) > 0 {
		rel, err := h.saveUpload(files["image2"][0])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to store image2")
			return
		}

		params.Image2 = &rel
	}

	u := middleware.UserFrom(r.Context())

	rec, err := h.svc.Update(r.Context(), id, params, u.ID)
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Receipt not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec, r))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Receipt not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	params, err := h.parser.Parse(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rs, err := h.svc.CreateBatch(r.Context(), params, actorID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, importResponse{
		Imported: len(rs),
		Receipts: toResponseList(rs, r),
	})
}

type importResponse struct {
	Imported int               `json:"imported"`
	Receipts []receiptResponse `json:"receipts"`
}

func (h *Handler) saveUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return h.media.Save(fh.Filename, f)
}

// parseWriteForm accepts either a multipart form (the browser client) or
// a urlencoded body, returning the field values and any file parts.
func parseWriteForm(r *http.Request) (url.Values, map[string][]*multipart.FileHeader, error) {
	ct := r.Header.Get("Content-Type")
	if mediatype, _, err := mime.ParseMediaType(ct); err == nil && strings.HasPrefix(mediatype, "multipart/") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return nil, nil, err
		}

		return url.Values(r.MultipartForm.Value), r.MultipartForm.File, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, nil, err
	}

	return r.PostForm, nil, nil
}

func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}

	return id, true
}

// actorID returns the authenticated user's id, or nil when the request is
// anonymous.
func actorID(r *http.Request) *int64 {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		return nil
	}

	return &u.ID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeFieldErrors(w http.ResponseWriter, errs receipt.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]receipt.FieldErrors{"errors": errs})
}
