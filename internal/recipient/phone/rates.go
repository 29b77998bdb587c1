package phone

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/billing_rates.yaml
var billingRatesYAML []byte

// Rate describes sending terms for one international dialling prefix.
type Rate struct {
	Names         []string `yaml:"names"`
	BillableUnits int      `yaml:"billable_units"`
	Alpha         bool     `yaml:"alpha"`
}

var billingRates = sync.OnceValue(func() map[string]Rate {
	rates, err := parseRates(billingRatesYAML)
	if err != nil {
		panic(err)
	}
	return rates
})

func parseRates(b []byte) (map[string]Rate, error) {
	var rates map[string]Rate
	if err := yaml.Unmarshal(b, &rates); err != nil {
		return nil, fmt.Errorf("parse billing rates: %w", err)
	}
	for prefix, r := range rates {
		if r.BillableUnits < 1 {
			return nil, fmt.Errorf("billing rate %q: billable_units must be at least 1", prefix)
		}
		if len(r.Names) == 0 {
			return nil, fmt.Errorf("billing rate %q: no names", prefix)
		}
	}
	return rates, nil
}

// RateFor returns the rate for an international prefix such as "44" or
// "1664".
func RateFor(prefix string) (Rate, bool) {
	r, ok := billingRates()[prefix]
	return r, ok
}

// SupportedPrefixes returns every prefix we can deliver to, sorted.
func SupportedPrefixes() []string {
	rates := billingRates()
	out := make([]string, 0, len(rates))
	for p := range rates {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func supportedCountryCode(cc int32) bool {
	_, ok := billingRates()[fmt.Sprint(cc)]
	return ok
}
