package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gameskins-co/intake/internal/catalog"
	"github.com/gameskins-co/intake/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// HomeHandler serves the storefront landing page with the order form.
type HomeHandler struct {
	tmpl   *template.Template
	data   homeData
	logger *logging.Logger
}

type homeData struct {
	WhatsAppNumber    string
	WhatsAppLink      string
	MaxImageMB        int
	Combos            []catalog.Combo
	ExtraControlPrice int
}

// NewHomeHandler parses the landing template. The template ships in the
// binary, so a parse failure is a build defect and panics at startup.
func NewHomeHandler(cat *catalog.Catalog, whatsAppNumber string, maxImageMB int, logger *logging.Logger) *HomeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	tmpl := template.Must(template.ParseFS(templateFS, "templates/home.html"))

	data := homeData{
		WhatsAppNumber:    whatsAppNumber,
		MaxImageMB:        maxImageMB,
		Combos:            cat.All(),
		ExtraControlPrice: catalog.ExtraControlPrice,
	}
	if whatsAppNumber != "" {
		data.WhatsAppLink = fmt.Sprintf("https://wa.me/%s?text=%s", whatsAppNumber,
			template.URLQueryEscaper("Hola, quiero cotizar un skin personalizado"))
	}

	return &HomeHandler{tmpl: tmpl, data: data, logger: logger}
}

// Home handles GET /.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, h.data); err != nil {
		h.logger.Error("render landing page", "error", err)
	}
}
