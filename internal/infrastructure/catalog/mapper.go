package catalog

import (
	"strings"

	"github.com/quevendi/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk catalog snapshot
type catalogFile struct {
	Stores []storeRecord `yaml:"stores"`
}

type storeRecord struct {
	ID       string          `yaml:"id"`
	Products []productRecord `yaml:"products"`
}

// productRecord mirrors a product row as exported by the catalog service
type productRecord struct {
	ID        int64     `yaml:"id"`
	Name      string    `yaml:"name"`
	Aliases   aliasList `yaml:"aliases"`
	Category  string    `yaml:"category"`
	Unit      string    `yaml:"unit"`
	SalePrice float64   `yaml:"sale_price"`
	Stock     int       `yaml:"stock"`
	IsActive  *bool     `yaml:"is_active"`
}

// aliasList accepts both a YAML/JSON list and a comma-joined string
type aliasList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (a *aliasList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*a = nil
			return nil
		}
		*a = strings.Split(value.Value, ",")
		return nil
	default:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*a = list
		return nil
	}
}

// mapToProduct converts a catalog record to the domain Product.
// Aliases are trimmed and de-duplicated case-insensitively; empties dropped.
// A record without is_active is active.
func mapToProduct(storeID string, rec productRecord) domain.Product {
	active := true
	if rec.IsActive != nil {
		active = *rec.IsActive
	}

	unit := rec.Unit
	if unit == "" {
		unit = "unidad"
	}

	return domain.Product{
		ID:        rec.ID,
		StoreID:   storeID,
		Name:      strings.TrimSpace(rec.Name),
		Aliases:   CanonicalAliases(rec.Aliases),
		Category:  rec.Category,
		Unit:      unit,
		SalePrice: rec.SalePrice,
		Stock:     rec.Stock,
		IsActive:  active,
	}
}

// CanonicalAliases normalizes an alias list to its canonical form
func CanonicalAliases(aliases []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		key := strings.ToLower(alias)
		if alias == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, alias)
	}
	return out
}
