// Package model defines the governance registry's record types: system
// metadata, tiering results, and lifecycle risk entries. Records are built
// through constructors that validate enum membership and value ranges and
// compute derived fields; callers never assign derived fields directly.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps are stored as UTC RFC 3339 strings with fixed-width fractional
// seconds, so serialized artifacts are byte-stable and lexicographic order on
// the strings matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NowUTC returns the current time formatted for record timestamps.
func NowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}

// SystemMetadata describes one registered AI system.
type SystemMetadata struct {
	SystemID             uuid.UUID           `json:"system_id"`
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Domain               string              `json:"domain"`
	AIType               AIType              `json:"ai_type"`
	OwnerRole            string              `json:"owner_role"`
	DeploymentMode       DeploymentMode      `json:"deployment_mode"`
	DecisionCriticality  DecisionCriticality `json:"decision_criticality"`
	AutomationLevel      AutomationLevel     `json:"automation_level"`
	DataSensitivity      DataSensitivity     `json:"data_sensitivity"`
	ExternalDependencies []string            `json:"external_dependencies"`
	UpdatedAt            string              `json:"updated_at"`
}

// TieringResult is the tiering engine's output for one system, keyed one-to-one
// by system id. Justification and required controls are operator-editable after
// the fact; everything else is recomputed on every engine run.
type TieringResult struct {
	SystemID         uuid.UUID      `json:"system_id"`
	RiskTier         RiskTier       `json:"risk_tier"`
	TotalScore       int            `json:"total_score"`
	ScoreBreakdown   map[string]int `json:"score_breakdown"`
	Justification    string         `json:"justification"`
	RequiredControls []string       `json:"required_controls"`
	ComputedAt       string         `json:"computed_at"`
	ScoringVersion   string         `json:"scoring_version"`
}

// LifecycleRiskEntry is one identified risk against a system, positioned in the
// lifecycle phase x risk vector grid. Severity is always impact x likelihood,
// recomputed on every construction and update.
type LifecycleRiskEntry struct {
	RiskID         uuid.UUID      `json:"risk_id"`
	SystemID       uuid.UUID      `json:"system_id"`
	LifecyclePhase LifecyclePhase `json:"lifecycle_phase"`
	RiskVector     RiskVector     `json:"risk_vector"`
	RiskStatement  string         `json:"risk_statement"`
	Impact         int            `json:"impact"`
	Likelihood     int            `json:"likelihood"`
	Severity       int            `json:"severity"`
	Mitigation     string         `json:"mitigation"`
	OwnerRole      string         `json:"owner_role"`
	EvidenceLinks  []string       `json:"evidence_links"`
	CreatedAt      string         `json:"created_at"`
}
