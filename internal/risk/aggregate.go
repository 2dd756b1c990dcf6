package risk

import (
	"math"

	"github.com/sells-group/riskbench/internal/model"
)

// sanitize replaces non-finite values with 0 and clamps to [0,100].
// The oracle should never emit out-of-range components, but the engine
// does not assume that.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// SanitizeComponents returns a copy of c with every sub-score finite and
// clamped to [0,100].
func SanitizeComponents(c model.RiskComponents) model.RiskComponents {
	return model.RiskComponents{
		Sales:    sanitize(c.Sales),
		Customer: sanitize(c.Customer),
		Market:   sanitize(c.Market),
	}
}

// OverallFromOracle returns the oracle-provided overall score unchanged
// after sanitizing it. The three components are presented independently
// downstream; they do not feed back into the overall score here.
func OverallFromOracle(overall float64, _ model.RiskComponents) float64 {
	return sanitize(overall)
}

// OverallFromComponents derives an overall score as the unweighted
// arithmetic mean of the three sanitized components. Used where no
// oracle score is available.
func OverallFromComponents(c model.RiskComponents) float64 {
	s := SanitizeComponents(c)
	return (s.Sales + s.Customer + s.Market) / 3
}
