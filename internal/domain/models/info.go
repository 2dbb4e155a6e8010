package models

import "time"

// Severity ranks weather alerts.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities, higher is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// WeatherAlert is a regional warning shown above the calculator.
type WeatherAlert struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	Severity    Severity   `bson:"severity" json:"severity"`
	Region      string     `bson:"region,omitempty" json:"region,omitempty"`
	Active      bool       `bson:"active" json:"active"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	ExpiresAt   *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// ChecklistItem is one preparation step before taking a harvest to market.
type ChecklistItem struct {
	ID       int    `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// RiskNote explains one source of uncertainty in the calculation.
type RiskNote struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
