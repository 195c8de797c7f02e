package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedCatalog is caller-supplied default data, used only when the
// backing store is empty or unusable. A catalog can be loaded from a
// YAML file so a shop can ship its own starter inventory.
type SeedCatalog struct {
	Stock     []StockItem      `yaml:"stock"`
	Customers []CustomerRecord `yaml:"customers"`
	Staff     []StaffRecord    `yaml:"staff"`
}

// DefaultSeed returns the built-in demo catalog: a handful of tiles
// and a single admin account so a fresh install is usable.
func DefaultSeed() *SeedCatalog {
	return &SeedCatalog{
		Stock: []StockItem{
			{
				ID:            NewID(),
				Name:          "Carrara White",
				Type:          MaterialMarble,
				Size:          "60x60cm",
				Price:         48.50,
				StockQuantity: 120,
				Description:   "Classic Italian marble look with soft grey veining.",
			},
			{
				ID:            NewID(),
				Name:          "Terra Cotta Rustic",
				Type:          MaterialCeramic,
				Size:          "30x30cm",
				Price:         12.90,
				StockQuantity: 340,
				Description:   "Warm rustic ceramic for patios and kitchens.",
			},
			{
				ID:            NewID(),
				Name:          "Nordic Oak Plank",
				Type:          MaterialWoodLook,
				Size:          "20x120cm",
				Price:         29.00,
				StockQuantity: 85,
				Description:   "Wood-look porcelain plank with matte finish.",
			},
		},
		Staff: []StaffRecord{
			{
				ID:        NewID(),
				Name:      "Admin",
				Role:      "Administrator",
				Privilege: PrivilegeAdmin,
				Status:    StatusActive,
				Username:  "admin",
				Password:  "admin",
			},
		},
	}
}

// LoadSeedFile reads a YAML seed catalog from path. Records get
// generated ids and defaults where the file omits them, and every
// record is validated before the catalog is returned.
func LoadSeedFile(path string) (*SeedCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var catalog SeedCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i := range catalog.Stock {
		if catalog.Stock[i].ID == "" {
			catalog.Stock[i].ID = NewID()
		}
		if err := catalog.Stock[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid stock seed %d: %w", i, err)
		}
	}
	for i := range catalog.Customers {
		if catalog.Customers[i].ID == "" {
			catalog.Customers[i].ID = NewID()
		}
		if err := catalog.Customers[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid customer seed %d: %w", i, err)
		}
	}
	for i := range catalog.Staff {
		if catalog.Staff[i].ID == "" {
			catalog.Staff[i].ID = NewID()
		}
		catalog.Staff[i].SetDefaults()
		if err := catalog.Staff[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid staff seed %d: %w", i, err)
		}
	}

	return &catalog, nil
}
