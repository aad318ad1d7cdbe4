// Package catalog loads the two pricing documents (models.json and
// providers.json) and exposes them as an immutable, in-memory Catalog.
package catalog

import (
	"slices"
	"time"

	"github.com/mark3labs/llmprices/internal/pricing"
)

// Catalog is the loaded pricing data. It is built once and never mutated;
// callers must not modify the returned slices.
type Catalog struct {
	UpdatedAt time.Time
	Models    []pricing.Model
	Providers []pricing.Provider

	providers map[string]int
}

// New builds a catalog and indexes providers by id. When an id appears
// twice the first entry wins.
func New(updatedAt time.Time, models []pricing.Model, providers []pricing.Provider) *Catalog {
	c := &Catalog{
		UpdatedAt: updatedAt,
		Models:    models,
		Providers: providers,
		providers: make(map[string]int, len(providers)),
	}
	for i, p := range providers {
		if _, exists := c.providers[p.ID]; !exists {
			c.providers[p.ID] = i
		}
	}
	return c
}

// Empty returns a catalog without models or providers. It is what the
// application holds after a failed load.
func Empty() *Catalog {
	return New(time.Time{}, nil, nil)
}

// Provider returns the provider metadata for id.
func (c *Catalog) Provider(id string) (pricing.Provider, bool) {
	i, ok := c.providers[id]
	if !ok {
		return pricing.Provider{}, false
	}
	return c.Providers[i], true
}

// ProviderName returns the display name for a provider id, falling back to
// the id itself for providers missing from providers.json.
func (c *Catalog) ProviderName(id string) string {
	if p, ok := c.Provider(id); ok && p.Name != "" {
		return p.Name
	}
	return id
}

// ProviderIDs returns the distinct provider ids referenced by models,
// sorted lexicographically.
func (c *Catalog) ProviderIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, m := range c.Models {
		if _, ok := seen[m.Provider]; ok {
			continue
		}
		seen[m.Provider] = struct{}{}
		ids = append(ids, m.Provider)
	}
	slices.Sort(ids)
	return ids
}

// ModelsForProvider returns the models of one provider in document order.
func (c *Catalog) ModelsForProvider(id string) []pricing.Model {
	var out []pricing.Model
	for _, m := range c.Models {
		if m.Provider == id {
			out = append(out, m)
		}
	}
	return out
}
