// Package risk implements the pure scoring side of the diagnosis engine:
// alert classification, component aggregation, and trend analysis.
//
// Polarity: a higher overall score means higher risk. The same polarity
// applies everywhere in this package; the trend analyzer reads a falling
// score as improvement.
package risk

import (
	"math"

	"github.com/sells-group/riskbench/internal/model"
)

// Classification thresholds, ascending, half-open: a score classifies
// into the highest band whose lower bound it reaches.
const (
	cautionFloor = 25.0
	warningFloor = 50.0
	dangerFloor  = 75.0
)

// Classify maps an overall score to an alert level. Total over all real
// inputs: negative and NaN scores classify as SAFE, +Inf as DANGER.
func Classify(score float64) model.AlertLevel {
	switch {
	case math.IsNaN(score):
		return model.AlertSafe
	case score >= dangerFloor:
		return model.AlertDanger
	case score >= warningFloor:
		return model.AlertWarning
	case score >= cautionFloor:
		return model.AlertCaution
	default:
		return model.AlertSafe
	}
}
