package pricing

// DefaultUnifiedLabel labels the tier synthesized for flat-priced models.
const DefaultUnifiedLabel = "unified pricing"

// Normalizer turns a model into its effective list of tiers. The zero value
// uses DefaultUnifiedLabel.
type Normalizer struct {
	// UnifiedLabel overrides the label of the synthesized single tier.
	UnifiedLabel string
}

// Resolve returns the model's explicit tiers when it has any, in their
// given order. Otherwise it synthesizes one tier from the flat prices,
// treating a missing input or output price as 0 and passing cached prices
// through untouched. The result always holds at least one tier.
func (n Normalizer) Resolve(m Model) []PriceTier {
	if len(m.PricingTiers) > 0 {
		return m.PricingTiers
	}

	label := n.UnifiedLabel
	if label == "" {
		label = DefaultUnifiedLabel
	}

	return []PriceTier{{
		Label:             label,
		InputPrice:        valueOrZero(m.InputPrice),
		OutputPrice:       valueOrZero(m.OutputPrice),
		CachedInputPrice:  m.CachedInputPrice,
		CachedOutputPrice: m.CachedOutputPrice,
	}}
}

// ResolveTiers resolves a model's tiers with the default label.
func ResolveTiers(m Model) []PriceTier {
	return Normalizer{}.Resolve(m)
}

// TierMin returns the cheapest input or output price across the model's
// resolved tiers, in the model's billing currency.
func TierMin(m Model, f Field) float64 {
	tiers := ResolveTiers(m)
	lowest := tiers[0].Price(f)
	for _, tier := range tiers[1:] {
		lowest = min(lowest, tier.Price(f))
	}
	return lowest
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
