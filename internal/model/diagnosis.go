package model

import (
	"time"
)

// AlertLevel is the ordinal risk category assigned to an overall score.
// Levels order from least to most severe; a higher overall score means
// higher risk.
type AlertLevel int

const (
	AlertSafe AlertLevel = iota
	AlertCaution
	AlertWarning
	AlertDanger
)

// alertWire maps internal levels to the four-letter vocabulary used by
// upstream collaborators.
var alertWire = map[AlertLevel]string{
	AlertSafe:    "GREEN",
	AlertCaution: "YELLOW",
	AlertWarning: "ORANGE",
	AlertDanger:  "RED",
}

// String returns the wire form (GREEN/YELLOW/ORANGE/RED).
func (a AlertLevel) String() string {
	if s, ok := alertWire[a]; ok {
		return s
	}
	return "GREEN"
}

// ParseAlertLevel converts the wire vocabulary to an AlertLevel.
// Unknown input parses as the safest level rather than failing.
func ParseAlertLevel(s string) (AlertLevel, bool) {
	for level, wire := range alertWire {
		if wire == s {
			return level, true
		}
	}
	return AlertSafe, false
}

// MarshalJSON emits the wire form.
func (a AlertLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts the wire form; unknown values degrade to GREEN.
func (a *AlertLevel) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	level, _ := ParseAlertLevel(s)
	*a = level
	return nil
}

// RiskComponents holds the three named sub-scores produced by the
// upstream diagnosis oracle, conventionally in [0,100].
type RiskComponents struct {
	Sales    float64 `json:"sales"`
	Customer float64 `json:"customer"`
	Market   float64 `json:"market"`
}

// DiagnosisResult is one diagnosis run for one business. Read-only after
// creation; ordered sequences per business form a history.
type DiagnosisResult struct {
	ID           string         `json:"id"`
	BusinessID   string         `json:"business_id"`
	OverallScore float64        `json:"overall_score"`
	Alert        AlertLevel     `json:"risk_level"`
	Components   RiskComponents `json:"components"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DiagnosisHistory is an append-only sequence of results for one
// business, ordered most-recent-first.
type DiagnosisHistory []DiagnosisResult
