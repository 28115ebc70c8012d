// internal/app/features/gallery/handler.go
package gallery

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/gallery"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartMemory is how much of a form is held in memory before spilling to disk.
const multipartMemory = 8 << 20

type Handler struct {
	Gallery *gallery.Service
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(svc *gallery.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gallery: svc,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// ServeApproved handles GET /api/gallery. Only approved photos are listed.
func (h *Handler) ServeApproved(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ServePending handles GET /api/gallery/pending (admin).
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ServePhoto handles GET /api/gallery/{id}. Only approved photos are visible.
func (h *Handler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	p, err := h.Gallery.GetApproved(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, approved bool) {
	photos, err := h.Gallery.List(r.Context(), approved)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, photos)
}

type submitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleSubmit handles POST /api/gallery with multipart fields "photo" and
// "caption". The photo is stored pending until an admin approves it.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	// Leave room for the caption and multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.Gallery.MaxBytes()+(1<<20))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ErrLog.Respond(w, r, apperr.Validation("The photo is too large."))
			return
		}
		h.ErrLog.Respond(w, r, apperr.Validation("Expected a multipart form with a photo and caption."))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var up *gallery.Upload
	file, hdr, err := r.FormFile("photo")
	switch {
	case err == nil:
		defer file.Close()
		up = &gallery.Upload{
			Filename:    hdr.Filename,
			ContentType: contentType(file, hdr),
			Size:        hdr.Size,
			Body:        file,
		}
	case !errors.Is(err, http.ErrMissingFile):
		h.ErrLog.Respond(w, r, apperr.Validation("The photo could not be read."))
		return
	}

	p, err := h.Gallery.Submit(r.Context(), r.FormValue("caption"), up)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, submitResponse{
		Message: "Photo submitted for approval.",
		ID:      p.ID.Hex(),
	})
}

// contentType trusts the part header unless it is missing or generic, in
// which case the first bytes are sniffed.
func contentType(f multipart.File, hdr *multipart.FileHeader) string {
	ct := strings.TrimSpace(hdr.Header.Get("Content-Type"))
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	buf := make([]byte, 512)
	n, _ := io.ReadFull(f, buf)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ct
	}
	return http.DetectContentType(buf[:n])
}
