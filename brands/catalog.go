// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package brands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/danielhkuo/voucher-manager/models"
)

// Catalog is an immutable, title-sorted list of known brands.
type Catalog struct {
	brands []models.Brand
	folded []string
}

// NewCatalog copies brands and sorts them by title.
func NewCatalog(brands []models.Brand) *Catalog {
	sorted := make([]models.Brand, len(brands))
	copy(sorted, brands)
	sortByTitle(sorted)

	folded := make([]string, len(sorted))
	for i, b := range sorted {
		folded[i] = Fold(b.Title)
	}
	return &Catalog{brands: sorted, folded: folded}
}

func sortByTitle(brands []models.Brand) {
	sort.SliceStable(brands, func(i, j int) bool {
		return strings.ToLower(brands[i].Title) < strings.ToLower(brands[j].Title)
	})
}

// Parse decodes a catalog file. Comments and trailing commas are allowed.
func Parse(data []byte) ([]models.Brand, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid brand catalog: %w", err)
	}

	var brands []models.Brand
	if err := json.Unmarshal(std, &brands); err != nil {
		return nil, fmt.Errorf("invalid brand catalog: %w", err)
	}
	return brands, nil
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read brand catalog: %w", err)
	}
	brands, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NewCatalog(brands), nil
}

func (c *Catalog) Len() int {
	return len(c.brands)
}

// All returns a copy of every brand in title order.
func (c *Catalog) All() []models.Brand {
	out := make([]models.Brand, len(c.brands))
	copy(out, c.brands)
	return out
}

// Search returns brands whose title contains query, ignoring case and
// diacritics. An empty query lists the catalog. limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []models.Brand {
	q := Fold(strings.TrimSpace(query))
	out := []models.Brand{}
	for i, b := range c.brands {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q == "" || strings.Contains(c.folded[i], q) {
			out = append(out, b)
		}
	}
	return out
}

// Lookup finds the brand for a voucher's brand name: an exact
// case-insensitive title match wins, otherwise the first title containing
// the name.
func (c *Catalog) Lookup(name string) (models.Brand, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return models.Brand{}, false
	}

	for _, b := range c.brands {
		if strings.ToLower(b.Title) == n {
			return b, true
		}
	}
	for _, b := range c.brands {
		if strings.Contains(strings.ToLower(b.Title), n) {
			return b, true
		}
	}
	return models.Brand{}, false
}
