package risk

import (
	"github.com/sells-group/riskbench/internal/model"
)

// TrendLabel classifies the direction and magnitude of score change over
// a history window.
type TrendLabel string

const (
	TrendImprovingStrong TrendLabel = "IMPROVING_STRONG"
	TrendImproving       TrendLabel = "IMPROVING"
	TrendStable          TrendLabel = "STABLE"
	TrendWorsening       TrendLabel = "WORSENING"
	TrendWorseningStrong TrendLabel = "WORSENING_STRONG"
)

// trendStep is the score change that separates a mild move from a
// strong one.
const trendStep = 5.0

// Trend is the outcome of analyzing a diagnosis history window.
// Delta is newest minus oldest overall score; under the package's
// higher-score-means-riskier polarity a negative delta is improvement.
type Trend struct {
	Label TrendLabel `json:"label"`
	Delta float64    `json:"delta"`
}

// AnalyzeTrend classifies the change across a history window. The
// window must be ordered most-recent-first; callers choose its span.
// Fewer than two records is insufficient data and reports ok=false.
func AnalyzeTrend(history model.DiagnosisHistory) (Trend, bool) {
	if len(history) < 2 {
		return Trend{}, false
	}
	delta := history[0].OverallScore - history[len(history)-1].OverallScore
	return Trend{Label: labelForDelta(delta), Delta: delta}, true
}

func labelForDelta(delta float64) TrendLabel {
	switch {
	case delta < -trendStep:
		return TrendImprovingStrong
	case delta < 0:
		return TrendImproving
	case delta == 0:
		return TrendStable
	case delta <= trendStep:
		return TrendWorsening
	default:
		return TrendWorseningStrong
	}
}
