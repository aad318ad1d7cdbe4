// Package view turns a catalog into the rows shown on screen. Every step is
// a pure function of its inputs: filter, sort, group and flatten.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mark3labs/llmprices/internal/pricing"
)

// AllProviders disables the provider filter.
const AllProviders = "all"

// Query is the user's current search text and provider selection.
type Query struct {
	Search   string
	Provider string
}

// Match reports whether m passes the search text and provider filter. The
// search text is trimmed and compared case-insensitively against the model
// name and the provider id.
func (q Query) Match(m pricing.Model) bool {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	matchesSearch := search == "" ||
		strings.Contains(strings.ToLower(m.Name), search) ||
		strings.Contains(strings.ToLower(m.Provider), search)

	matchesProvider := q.Provider == "" || q.Provider == AllProviders || q.Provider == m.Provider

	return matchesSearch && matchesProvider
}

// Filter returns the models matching q, in their input order.
func Filter(models []pricing.Model, q Query) []pricing.Model {
	out := make([]pricing.Model, 0, len(models))
	for _, m := range models {
		if q.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// SortKey names an ordering of the table.
type SortKey string

const (
	SortName       SortKey = "name"
	SortInputAsc   SortKey = "input-asc"
	SortInputDesc  SortKey = "input-desc"
	SortOutputAsc  SortKey = "output-asc"
	SortOutputDesc SortKey = "output-desc"
)

// DefaultSort is used for empty or unknown sort keys.
const DefaultSort = SortInputAsc

// SortKeys lists every key in the order the UI cycles through them.
var SortKeys = []SortKey{SortName, SortInputAsc, SortInputDesc, SortOutputAsc, SortOutputDesc}

// ParseSortKey returns the matching key, or DefaultSort.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortKeys {
		if k == known {
			return k
		}
	}
	return DefaultSort
}

// field and descending describe a price ordering. ok is false for SortName.
func (k SortKey) field() (f pricing.Field, descending bool, ok bool) {
	switch k {
	case SortName:
		return 0, false, false
	case SortInputDesc:
		return pricing.FieldInput, true, true
	case SortOutputAsc:
		return pricing.FieldOutput, false, true
	case SortOutputDesc:
		return pricing.FieldOutput, true, true
	default:
		return pricing.FieldInput, false, true
	}
}

// Sort returns a sorted copy of models. Price orderings compare the
// cheapest tier of each model after converting it to display; SortName
// orders by provider id and then model name using collation rules for tag.
// The sort is stable, so ties keep their input order.
func Sort(models []pricing.Model, key SortKey, conv *pricing.Converter, display pricing.Currency, tag language.Tag) []pricing.Model {
	out := make([]pricing.Model, len(models))
	copy(out, models)

	f, descending, byPrice := key.field()
	if !byPrice {
		col := collate.New(tag)
		sort.SliceStable(out, func(i, j int) bool {
			if c := col.CompareString(out[i].Provider, out[j].Provider); c != 0 {
				return c < 0
			}
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
		return out
	}

	type keyed struct {
		model pricing.Model
		price float64
	}
	ks := make([]keyed, len(out))
	for i, m := range out {
		ks[i] = keyed{model: m, price: conv.Convert(pricing.TierMin(m, f), m.BillingCurrency, display)}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if descending {
			return ks[j].price < ks[i].price
		}
		return ks[i].price < ks[j].price
	})

	for i := range ks {
		out[i] = ks[i].model
	}
	return out
}

// Bucket is one provider's share of a sorted model list.
type Bucket struct {
	Provider string
	Models   []pricing.Model
}

// Group partitions models by provider. Buckets appear in the order their
// provider first occurs and models keep their relative order, so grouping
// never reorders across or within a bucket.
func Group(models []pricing.Model) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, m := range models {
		i, ok := index[m.Provider]
		if !ok {
			i = len(buckets)
			index[m.Provider] = i
			buckets = append(buckets, Bucket{Provider: m.Provider})
		}
		buckets[i].Models = append(buckets[i].Models, m)
	}
	return buckets
}
