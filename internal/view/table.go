package view

import (
	"time"

	"golang.org/x/text/language"

	"github.com/mark3labs/llmprices/internal/catalog"
	"github.com/mark3labs/llmprices/internal/pricing"
)

// Options is the complete user-controlled state of the table.
type Options struct {
	Query           Query
	Sort            SortKey
	GroupByProvider bool
	Display         pricing.Currency
	Converter       *pricing.Converter
	Normalizer      pricing.Normalizer
	// Language drives the collation of the name ordering.
	Language language.Tag
}

// Row is one tier of one model, with prices already converted to the
// display currency. First marks the model's first tier; renderers print the
// model, provider and billing currency only on that row.
type Row struct {
	ModelID         string           `json:"modelId" yaml:"modelId"`
	Model           string           `json:"model" yaml:"model"`
	ProviderID      string           `json:"providerId" yaml:"providerId"`
	Provider        string           `json:"provider" yaml:"provider"`
	BillingCurrency pricing.Currency `json:"billingCurrency" yaml:"billingCurrency"`
	Tier            string           `json:"tier" yaml:"tier"`
	Input           float64          `json:"input" yaml:"input"`
	Output          float64          `json:"output" yaml:"output"`
	CachedInput     *float64         `json:"cachedInput,omitempty" yaml:"cachedInput,omitempty"`
	CachedOutput    *float64         `json:"cachedOutput,omitempty" yaml:"cachedOutput,omitempty"`
	First           bool             `json:"-" yaml:"-"`
}

// Section is a run of rows. When grouping is on there is one section per
// provider, titled with the provider's display name; otherwise a single
// untitled section holds every row.
type Section struct {
	ProviderID string `json:"providerId,omitempty" yaml:"providerId,omitempty"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Rows       []Row  `json:"rows" yaml:"rows"`
}

// Table is the presentation model handed to renderers.
type Table struct {
	Display      pricing.Currency `json:"displayCurrency" yaml:"displayCurrency"`
	ExchangeRate float64          `json:"exchangeRate" yaml:"exchangeRate"`
	UpdatedAt    time.Time        `json:"updatedAt" yaml:"updatedAt"`
	Sort         SortKey          `json:"sort" yaml:"sort"`
	Grouped      bool             `json:"grouped" yaml:"grouped"`
	ModelCount   int              `json:"modelCount" yaml:"modelCount"`
	Sections     []Section        `json:"sections" yaml:"sections"`
}

// Empty reports whether no model survived filtering.
func (t Table) Empty() bool {
	return t.ModelCount == 0
}

// Rows returns every row across sections.
func (t Table) Rows() []Row {
	var rows []Row
	for _, s := range t.Sections {
		rows = append(rows, s.Rows...)
	}
	return rows
}

// Build runs filter, sort and optional grouping over the catalog and
// flattens the result into rows.
func Build(cat *catalog.Catalog, opts Options) Table {
	conv := opts.Converter
	if conv == nil {
		conv, _ = pricing.NewConverter(pricing.DefaultExchangeRate)
	}
	display := opts.Display
	if display == "" {
		display = pricing.CNY
	}
	key := ParseSortKey(string(opts.Sort))

	models := Sort(Filter(cat.Models, opts.Query), key, conv, display, opts.Language)

	t := Table{
		Display:      display,
		ExchangeRate: conv.Rate(),
		UpdatedAt:    cat.UpdatedAt,
		Sort:         key,
		Grouped:      opts.GroupByProvider,
		ModelCount:   len(models),
	}
	if len(models) == 0 {
		return t
	}

	rowsOf := func(ms []pricing.Model) []Row {
		var rows []Row
		for _, m := range ms {
			rows = append(rows, modelRows(cat, m, conv, display, opts.Normalizer)...)
		}
		return rows
	}

	if !opts.GroupByProvider {
		t.Sections = []Section{{Rows: rowsOf(models)}}
		return t
	}

	for _, b := range Group(models) {
		t.Sections = append(t.Sections, Section{
			ProviderID: b.Provider,
			Title:      cat.ProviderName(b.Provider),
			Rows:       rowsOf(b.Models),
		})
	}
	return t
}

func modelRows(cat *catalog.Catalog, m pricing.Model, conv *pricing.Converter, display pricing.Currency, n pricing.Normalizer) []Row {
	tiers := n.Resolve(m)
	rows := make([]Row, 0, len(tiers))
	for i, tier := range tiers {
		rows = append(rows, Row{
			ModelID:         m.ID,
			Model:           m.Name,
			ProviderID:      m.Provider,
			Provider:        cat.ProviderName(m.Provider),
			BillingCurrency: m.BillingCurrency,
			Tier:            tier.Label,
			Input:           conv.Convert(tier.InputPrice, m.BillingCurrency, display),
			Output:          conv.Convert(tier.OutputPrice, m.BillingCurrency, display),
			CachedInput:     conv.ConvertOptional(tier.CachedInputPrice, m.BillingCurrency, display),
			CachedOutput:    conv.ConvertOptional(tier.CachedOutputPrice, m.BillingCurrency, display),
			First:           i == 0,
		})
	}
	return rows
}

// ProviderOptions returns the provider filter choices: AllProviders
// followed by the sorted provider ids found in the catalog.
func ProviderOptions(cat *catalog.Catalog) []string {
	return append([]string{AllProviders}, cat.ProviderIDs()...)
}
