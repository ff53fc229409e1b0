package intake

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gameskins-co/intake/internal/catalog"
	"github.com/gameskins-co/intake/internal/media"
	"github.com/gameskins-co/intake/pkg/logging"
)

// maxMultipartMemory bounds how much of a multipart body stays in memory
// before spilling to temp files.
const maxMultipartMemory = 32 << 20

// Handler exposes the submission endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the submission handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// SubmitResponse is the success payload of POST /submit.
type SubmitResponse struct {
	OK bool `json:"ok"`
	Result
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Submit handles POST /submit, a multipart form with the order fields,
// zero or more "images" files and their "details" notes.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	sub := Submission{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Whatsapp:        r.FormValue("whatsapp"),
		Console:         r.FormValue("console"),
		ComboID:         r.FormValue("combo"),
		ExtraControl:    Truthy(r.FormValue("extra_control")),
		DesignChoice:    r.FormValue("design_choice"),
		HasDesign:       r.FormValue("has_design"),
		WhatsappPrefill: r.FormValue("whatsapp_prefill"),
		ReceiverName:    r.FormValue("receiver_name"),
		City:            r.FormValue("city"),
		Neighborhood:    r.FormValue("neighborhood"),
		Address:         r.FormValue("address"),
	}

	sub.Details = r.Form["details"]
	if len(sub.Details) == 0 {
		sub.Details = r.Form["image_details"]
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			up, err := readUpload(fh)
			if err != nil {
				h.writeError(w, http.StatusBadRequest, "could not read uploaded file")
				return
			}
			sub.Images = append(sub.Images, up)
		}
	}

	result, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, SubmitResponse{OK: true, Result: *result})
}

func readUpload(fh *multipart.FileHeader) (media.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return media.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return media.Upload{}, err
	}
	return media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrMismatchedDetails),
		errors.Is(err, catalog.ErrUnknownCombo),
		errors.Is(err, catalog.ErrIneligibleCombo),
		errors.Is(err, media.ErrEmptyUpload):
		status = http.StatusBadRequest
	case errors.Is(err, media.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrUnsupportedType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrUploadFailed):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("submission failed", "error", err)
		h.writeError(w, status, "internal server error")
		return
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, errorResponse{Detail: detail})
}
