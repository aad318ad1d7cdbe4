// Package pricing holds the price records loaded from the catalog documents
// and the arithmetic applied to them: tier resolution, currency conversion
// and price formatting.
package pricing

// PriceTier is one named price bracket of a model, for example a context
// length band. Prices are per million tokens in the model's billing currency.
type PriceTier struct {
	Label             string   `json:"label" yaml:"label"`
	InputPrice        float64  `json:"inputPrice" yaml:"inputPrice"`
	OutputPrice       float64  `json:"outputPrice" yaml:"outputPrice"`
	CachedInputPrice  *float64 `json:"cachedInputPrice,omitempty" yaml:"cachedInputPrice,omitempty"`
	CachedOutputPrice *float64 `json:"cachedOutputPrice,omitempty" yaml:"cachedOutputPrice,omitempty"`
}

// Price returns the tier's input or output price.
func (t PriceTier) Price(f Field) float64 {
	if f == FieldOutput {
		return t.OutputPrice
	}
	return t.InputPrice
}

// Model is a single entry of models.json. A model either carries flat prices
// or an ordered list of tiers; ResolveTiers hides the difference.
type Model struct {
	ID                string      `json:"id" yaml:"id"`
	Name              string      `json:"name" yaml:"name"`
	Provider          string      `json:"provider" yaml:"provider"`
	BillingCurrency   Currency    `json:"billingCurrency" yaml:"billingCurrency"`
	InputPrice        *float64    `json:"inputPrice,omitempty" yaml:"inputPrice,omitempty"`
	OutputPrice       *float64    `json:"outputPrice,omitempty" yaml:"outputPrice,omitempty"`
	CachedInputPrice  *float64    `json:"cachedInputPrice,omitempty" yaml:"cachedInputPrice,omitempty"`
	CachedOutputPrice *float64    `json:"cachedOutputPrice,omitempty" yaml:"cachedOutputPrice,omitempty"`
	PricingTiers      []PriceTier `json:"pricingTiers,omitempty" yaml:"pricingTiers,omitempty"`
}

// Provider is descriptive metadata from providers.json.
type Provider struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	PricingURL  string `json:"pricingUrl" yaml:"pricingUrl"`
	Region      string `json:"region" yaml:"region"`
	Description string `json:"description" yaml:"description"`
}

// Field selects which price of a tier is read.
type Field int

const (
	FieldInput Field = iota
	FieldOutput
)

func (f Field) String() string {
	switch f {
	case FieldInput:
		return "input"
	case FieldOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Float returns a pointer to v. Handy for building models in code.
func Float(v float64) *float64 {
	return &v
}
