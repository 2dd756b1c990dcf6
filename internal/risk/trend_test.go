package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/riskbench/internal/model"
)

func historyOf(scores ...float64) model.DiagnosisHistory {
	h := make(model.DiagnosisHistory, len(scores))
	for i, s := range scores {
		h[i] = model.DiagnosisResult{OverallScore: s}
	}
	return h
}

func TestAnalyzeTrendInsufficientData(t *testing.T) {
	_, ok := AnalyzeTrend(nil)
	assert.False(t, ok)

	_, ok = AnalyzeTrend(historyOf(42))
	assert.False(t, ok)
}

func TestAnalyzeTrend(t *testing.T) {
	// Histories are most-recent-first. A rising risk score worsens,
	// a falling one improves.
	tests := []struct {
		name      string
		history   model.DiagnosisHistory
		wantDelta float64
		wantLabel TrendLabel
	}{
		{"strong improvement", historyOf(60, 65, 70), -10, TrendImprovingStrong},
		{"mild improvement", historyOf(58, 60), -2, TrendImproving},
		{"boundary improvement", historyOf(55, 60), -5, TrendImproving},
		{"stable", historyOf(50, 45, 50), 0, TrendStable},
		{"mild worsening", historyOf(63, 60), 3, TrendWorsening},
		{"boundary worsening", historyOf(65, 60), 5, TrendWorsening},
		{"strong worsening", historyOf(70, 60), 10, TrendWorseningStrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, ok := AnalyzeTrend(tt.history)
			require.True(t, ok)
			assert.InDelta(t, tt.wantDelta, trend.Delta, 1e-9)
			assert.Equal(t, tt.wantLabel, trend.Label)
		})
	}
}

// The trend analyzer and the classifier must agree on polarity: a window
// whose newest score classifies more severely than its oldest can never
// report improvement.
func TestTrendPolarityMatchesClassifier(t *testing.T) {
	h := historyOf(80, 40) // newest DANGER, oldest CAUTION
	require.Greater(t, int(Classify(h[0].OverallScore)), int(Classify(h[1].OverallScore)))

	trend, ok := AnalyzeTrend(h)
	require.True(t, ok)
	assert.Equal(t, TrendWorseningStrong, trend.Label)
	assert.Positive(t, trend.Delta)
}
