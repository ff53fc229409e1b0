package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
)

// ExtraControlPrice is the fixed add-on charged when the customer wants a
// skin for an additional control, in whole COP.
const ExtraControlPrice = 16000

var (
	// ErrUnknownCombo is returned when the combo id is not in the catalog
	ErrUnknownCombo = errors.New("unknown combo")

	// ErrIneligibleCombo is returned when the combo exists but is not
	// offered for the selected console model
	ErrIneligibleCombo = errors.New("combo not available for this console")
)

// Combo is one fixed-price bundle of skin coverage areas.
type Combo struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    int      `json:"price"`
	Includes string   `json:"includes"`
	// Consoles restricts the combo to specific console models. Empty means
	// the combo is offered for every console.
	Consoles []string `json:"consoles,omitempty"`
}

// EligibleFor reports whether the combo can be sold for the console model.
func (c Combo) EligibleFor(console string) bool {
	if len(c.Consoles) == 0 {
		return true
	}
	return slices.Contains(c.Consoles, console)
}

// Catalog is the read-only combo catalog, built once at process start.
type Catalog struct {
	combos     []Combo
	extraPrice int
}

// NewCatalog builds a catalog from explicit entries.
func NewCatalog(combos []Combo, extraControlPrice int) *Catalog {
	return &Catalog{combos: combos, extraPrice: extraControlPrice}
}

// Default returns the built-in combo catalog.
func Default() *Catalog {
	return NewCatalog([]Combo{
		{ID: "c1", Title: "Consola completa + 2 controles", Price: 80000,
			Includes: "Skin completo de consola y dos controles"},
		{ID: "c2", Title: "Consola completa", Price: 60000,
			Includes: "Skin completo de consola, sin controles"},
		{ID: "c3", Title: "2 controles", Price: 35000,
			Includes: "Skin para dos controles"},
		{ID: "c4", Title: "Consola + 1 control", Price: 70000,
			Includes: "Skin completo de consola y un control"},
		{ID: "c5", Title: "Base / estación de carga", Price: 25000,
			Includes: "Skin para base o estación de carga"},
		{ID: "c6", Title: "Placa frontal + 2 controles", Price: 40000,
			Includes: "Placas frontales y dos controles",
			Consoles: []string{"PS5 Fat", "PS5 Slim"}},
	}, ExtraControlPrice)
}

// LoadFile reads a catalog override from a JSON file. The file holds a
// plain array of combos; the add-on price stays fixed.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var combos []Combo
	if err := json.Unmarshal(data, &combos); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if len(combos) == 0 {
		return nil, fmt.Errorf("catalog: %s contains no combos", path)
	}
	for _, c := range combos {
		if c.ID == "" {
			return nil, fmt.Errorf("catalog: combo without id in %s", path)
		}
		if c.Price < 0 {
			return nil, fmt.Errorf("catalog: combo %s has negative price %d", c.ID, c.Price)
		}
	}
	return NewCatalog(combos, ExtraControlPrice), nil
}

// All returns every combo in catalog order.
func (c *Catalog) All() []Combo {
	return slices.Clone(c.combos)
}

// ForConsole filters the catalog to combos eligible for the console model,
// preserving catalog order.
func (c *Catalog) ForConsole(console string) []Combo {
	out := make([]Combo, 0, len(c.combos))
	for _, combo := range c.combos {
		if combo.EligibleFor(console) {
			out = append(out, combo)
		}
	}
	return out
}

// Find returns the combo by id regardless of eligibility.
func (c *Catalog) Find(id string) (Combo, bool) {
	for _, combo := range c.combos {
		if combo.ID == id {
			return combo, true
		}
	}
	return Combo{}, false
}

// Quote resolves the order total for a combo selection: the combo price
// plus the extra-control add-on when requested. Amounts are whole currency
// units; there is no rounding and no payment capture here.
func (c *Catalog) Quote(console, comboID string, extraControl bool) (int, error) {
	combo, ok := c.Find(comboID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCombo, comboID)
	}
	if !combo.EligibleFor(console) {
		return 0, fmt.Errorf("%w: %s for %s", ErrIneligibleCombo, comboID, console)
	}
	total := combo.Price
	if extraControl {
		total += c.extraPrice
	}
	return total, nil
}
