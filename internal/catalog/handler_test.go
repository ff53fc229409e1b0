package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/gameskins-co/intake/pkg/logging"
)

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/gallery/{console}", h.ListGallery)
	r.Get("/api/combos", h.ListCombos)
	return r
}

func TestListGallery(t *testing.T) {
	inner := &fakeGallery{designs: map[string][]GalleryDesign{
		"Switch": {{ID: 3, Console: "Switch", Title: "Zelda", ImageURL: "https://cdn.example/switch/zelda.webp"}},
	}}
	h := NewHandler(Default(), inner, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/gallery/Switch", nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var designs []GalleryDesign
	if err := json.NewDecoder(w.Body).Decode(&designs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(designs) != 1 || designs[0].Title != "Zelda" {
		t.Fatalf("unexpected designs: %+v", designs)
	}
}

func TestListGalleryEmptyConsole(t *testing.T) {
	inner := &fakeGallery{designs: map[string][]GalleryDesign{}}
	h := NewHandler(Default(), inner, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/gallery/Atari", nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestListCombosFiltersByConsole(t *testing.T) {
	h := NewHandler(Default(), &fakeGallery{}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/combos?console=Xbox+One", nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Combos            []Combo `json:"combos"`
		ExtraControlPrice int     `json:"extra_control_price"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ExtraControlPrice != ExtraControlPrice {
		t.Fatalf("expected add-on %d, got %d", ExtraControlPrice, resp.ExtraControlPrice)
	}
	for _, combo := range resp.Combos {
		if combo.ID == "c6" {
			t.Fatal("restricted combo must be filtered out for Xbox One")
		}
	}
}
