package service

import (
	"encoding/json"
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/riskbench/internal/model"
	"github.com/sells-group/riskbench/internal/risk"
)

// oraclePayload is the wire shape emitted by the upstream diagnosis
// oracle.
type oraclePayload struct {
	OverallScore float64          `json:"overallScore"`
	RiskLevel    string           `json:"riskLevel"`
	Components   oracleComponents `json:"components"`
}

type oracleComponents struct {
	Sales    oracleComponent `json:"sales"`
	Customer oracleComponent `json:"customer"`
	Market   oracleComponent `json:"market"`
}

type oracleComponent struct {
	Score float64 `json:"score"`
}

// ParseOracle decodes an upstream diagnosis payload into a
// DiagnosisResult. The overall score is sanitized but otherwise passed
// through; the alert level is re-derived from the score rather than
// trusted, so classification stays consistent with this engine's
// thresholds.
func ParseOracle(businessID string, data []byte) (*model.DiagnosisResult, error) {
	var p oraclePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "oracle: decode payload")
	}

	components := risk.SanitizeComponents(model.RiskComponents{
		Sales:    p.Components.Sales.Score,
		Customer: p.Components.Customer.Score,
		Market:   p.Components.Market.Score,
	})
	overall := risk.OverallFromOracle(p.OverallScore, components)

	return &model.DiagnosisResult{
		BusinessID:   businessID,
		OverallScore: overall,
		Alert:        risk.Classify(overall),
		Components:   components,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ScoreFromFraction converts an oracle risk fraction in [0,1] to a
// 0-100 risk score. Values already on the 0-100 scale pass through
// unchanged; the two ranges are disambiguated by magnitude, matching
// the mixed conventions of upstream exports.
func ScoreFromFraction(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v <= 1 {
		v *= 100
	}
	return math.Max(0, math.Min(100, v))
}
