// Package unitcost resolves a prefecture name to a construction cost rate
// per square meter of floor area.
package unitcost

import (
	"github.com/chiri-lab/atlas-cli/internal/normalize"
)

// Rate is one (prefecture, cost-per-area) reference pair.
type Rate struct {
	Prefecture  string  `yaml:"prefecture" mapstructure:"prefecture"`
	CostPerArea float64 `yaml:"cost_per_area" mapstructure:"cost_per_area"`
}

// Resolver looks up the cost rate for a prefecture. It is built once from
// reference data, before any join runs, and is read-only afterwards.
type Resolver struct {
	rates map[string]float64
}

// NewResolver builds a Resolver from reference rates. Prefecture names are
// stored under their normalized form so lookups tolerate whitespace variants.
func NewResolver(rates []Rate) *Resolver {
	m := make(map[string]float64, len(rates))
	for _, r := range rates {
		key := normalize.Normalize(r.Prefecture)
		if key == "" {
			continue
		}
		m[key] = r.CostPerArea
	}
	return &Resolver{rates: m}
}

// Lookup returns the cost rate for a prefecture, or 0 when the prefecture is
// not in the table. The zero default silently zeroes estimated amounts for
// unknown prefectures instead of failing the join; callers that need to
// distinguish should check Known first.
func (r *Resolver) Lookup(prefecture string) float64 {
	return r.rates[normalize.Normalize(prefecture)]
}

// Known reports whether the prefecture has an entry in the table.
func (r *Resolver) Known(prefecture string) bool {
	_, ok := r.rates[normalize.Normalize(prefecture)]
	return ok
}

// Len returns the number of loaded rates.
func (r *Resolver) Len() int {
	return len(r.rates)
}
