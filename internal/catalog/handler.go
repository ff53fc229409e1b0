package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gameskins-co/intake/pkg/logging"
)

// Handler serves the read-only catalog endpoints.
type Handler struct {
	catalog *Catalog
	gallery GalleryRepository
	logger  *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(catalog *Catalog, gallery GalleryRepository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{catalog: catalog, gallery: gallery, logger: logger}
}

// ListGallery handles GET /api/gallery/{console}
func (h *Handler) ListGallery(w http.ResponseWriter, r *http.Request) {
	console := chi.URLParam(r, "console")
	if console == "" {
		http.Error(w, "missing console", http.StatusBadRequest)
		return
	}

	designs, err := h.gallery.ListByConsole(r.Context(), console)
	if err != nil {
		h.logger.Error("failed to list gallery", "error", err, "console", console)
		http.Error(w, "failed to list gallery", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(designs)
}

// ListCombos handles GET /api/combos?console=X
func (h *Handler) ListCombos(w http.ResponseWriter, r *http.Request) {
	console := r.URL.Query().Get("console")
	combos := h.catalog.ForConsole(console)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"combos":              combos,
		"extra_control_price": ExtraControlPrice,
	})
}
