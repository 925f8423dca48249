package entity

// Severity is the canonical alert severity. Always one of the three values
// below, regardless of how the raw payload phrased it.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ClinicalAlert is a normalized safety alert extracted from a generated note.
// Produced only by the alert normalizer and immutable afterwards.
type ClinicalAlert struct {
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Details        string   `json:"details"`
	Recommendation string   `json:"recommendation"`
}
