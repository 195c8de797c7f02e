package schema

import (
	"fmt"

	"github.com/google/uuid"
)

// Material is the fixed material category of a stock item.
type Material string

const (
	MaterialCeramic   Material = "Ceramic"
	MaterialPorcelain Material = "Porcelain"
	MaterialMarble    Material = "Marble"
	MaterialGranite   Material = "Granite"
	MaterialMosaic    Material = "Mosaic"
	MaterialWoodLook  Material = "Wood Look"
)

// Materials returns all valid material categories in display order.
func Materials() []Material {
	return []Material{
		MaterialCeramic,
		MaterialPorcelain,
		MaterialMarble,
		MaterialGranite,
		MaterialMosaic,
		MaterialWoodLook,
	}
}

// Valid reports whether m is one of the fixed material categories.
func (m Material) Valid() bool {
	switch m {
	case MaterialCeramic, MaterialPorcelain, MaterialMarble,
		MaterialGranite, MaterialMosaic, MaterialWoodLook:
		return true
	}
	return false
}

// StockItem is a single inventory record (a tile product).
type StockItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          Material `json:"type"`
	Size          string   `json:"size"` // e.g. "60x60cm"
	Price         float64  `json:"price"`
	StockQuantity int      `json:"stockQuantity"`
	Description   string   `json:"description,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// Validate checks that the StockItem has valid field values.
func (s *StockItem) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !s.Type.Valid() {
		return fmt.Errorf("unknown material %q", s.Type)
	}
	if s.Price < 0 {
		return fmt.Errorf("price must be non-negative (got %v)", s.Price)
	}
	if s.StockQuantity < 0 {
		return fmt.Errorf("stock quantity must be non-negative (got %d)", s.StockQuantity)
	}
	return nil
}

// RetailValue returns price times quantity on hand.
func (s *StockItem) RetailValue() float64 {
	return s.Price * float64(s.StockQuantity)
}

// NewID generates a fresh record identifier. Identifiers are opaque
// strings, unique within a collection.
func NewID() string {
	return uuid.NewString()
}
