package evidence

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/google/uuid"

	"aigov/internal/encoding"
	"aigov/internal/model"
	"aigov/internal/scoring"
)

// inventoryColumns is the fixed CSV column order for model_inventory.csv.
var inventoryColumns = []string{
	"system_id", "name", "domain", "ai_type", "owner_role",
	"decision_criticality", "automation_level", "data_sensitivity",
	"deployment_mode", "external_dependencies", "updated_at",
}

// renderInventoryCSV serializes all systems, one row each, dependencies
// pipe-joined.
func renderInventoryCSV(systems []model.SystemMetadata) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(inventoryColumns); err != nil {
		return nil, err
	}
	for _, s := range systems {
		row := []string{
			s.SystemID.String(),
			s.Name,
			s.Domain,
			string(s.AIType),
			s.OwnerRole,
			string(s.DecisionCriticality),
			string(s.AutomationLevel),
			string(s.DataSensitivity),
			string(s.DeploymentMode),
			strings.Join(s.ExternalDependencies, "|"),
			s.UpdatedAt,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tieringExport is the risk_tiering.json document.
type tieringExport struct {
	ScoringVersion string                `json:"scoring_version"`
	Systems        []model.TieringResult `json:"systems"`
}

func renderTieringJSON(cfg scoring.Config, results []model.TieringResult) ([]byte, error) {
	if results == nil {
		results = []model.TieringResult{}
	}
	return encoding.Marshal(tieringExport{
		ScoringVersion: cfg.ScoringVersion,
		Systems:        results,
	})
}

// riskMapExport is the lifecycle_risk_map.json document. Only systems with at
// least one risk appear.
type riskMapExport struct {
	Systems []riskMapSystem `json:"systems"`
}

type riskMapSystem struct {
	SystemID uuid.UUID                  `json:"system_id"`
	Risks    []model.LifecycleRiskEntry `json:"risks"`
}

func renderRiskMapJSON(systems []model.SystemMetadata, risksBySystem map[uuid.UUID][]model.LifecycleRiskEntry) ([]byte, error) {
	doc := riskMapExport{Systems: []riskMapSystem{}}
	for _, s := range systems {
		risks := risksBySystem[s.SystemID]
		if len(risks) == 0 {
			continue
		}
		doc.Systems = append(doc.Systems, riskMapSystem{SystemID: s.SystemID, Risks: risks})
	}
	return encoding.Marshal(doc)
}

// renderConfigSnapshot serializes the scoring configuration verbatim.
func renderConfigSnapshot(cfg scoring.Config) ([]byte, error) {
	return encoding.Marshal(cfg)
}
