// Package scoring holds the versioned tiering configuration and the
// deterministic tiering engine. The configuration is a value: it is validated
// once at load time, snapshotted verbatim into every evidence run, and never
// mutated afterward.
package scoring

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"aigov/internal/errors"
	"aigov/internal/model"
)

// Dimension names used as score_breakdown keys and point-mapping keys.
const (
	DimDecisionCriticality = "decision_criticality"
	DimDataSensitivity     = "data_sensitivity"
	DimAutomationLevel     = "automation_level"
	DimAIType              = "ai_type"
	DimDeploymentMode      = "deployment_mode"

	// DimExternalDependencies is the breakdown key for the dependency score.
	// It is bracket-based, not point-mapped.
	DimExternalDependencies = "external_dependencies"
)

// MappedDimensions lists the point-mapped dimensions in breakdown order.
var MappedDimensions = []string{
	DimDecisionCriticality,
	DimDataSensitivity,
	DimAutomationLevel,
	DimAIType,
	DimDeploymentMode,
}

// Thresholds are inclusive lower bounds on total_score, checked descending.
type Thresholds struct {
	Tier1Min int `json:"TIER_1_MIN" toml:"TIER_1_MIN"`
	Tier2Min int `json:"TIER_2_MIN" toml:"TIER_2_MIN"`
}

// DependencyScoring brackets the external dependency count and defines the
// opaque-vendor bonus, applied at most once per system.
type DependencyScoring struct {
	ZeroDeps          int      `json:"0_deps" toml:"0_deps"`
	OneToTwoDeps      int      `json:"1_2_deps" toml:"1_2_deps"`
	ThreePlusDeps     int      `json:"3_plus_deps" toml:"3_plus_deps"`
	OpaqueVendorBonus int      `json:"opaque_vendor_bonus" toml:"opaque_vendor_bonus"`
	OpaqueKeywords    []string `json:"opaque_keywords" toml:"opaque_keywords"`
}

// Config is the complete scoring configuration.
type Config struct {
	AppVersion        string                    `json:"app_version" toml:"app_version"`
	ScoringVersion    string                    `json:"scoring_version" toml:"scoring_version"`
	TierThresholds    Thresholds                `json:"tier_thresholds" toml:"tier_thresholds"`
	PointMappings     map[string]map[string]int `json:"point_mappings" toml:"point_mappings"`
	DependencyScoring DependencyScoring         `json:"external_dependencies_scoring" toml:"external_dependencies_scoring"`
	DefaultControls   map[string][]string       `json:"default_required_controls" toml:"default_required_controls"`
}

// DefaultConfig returns the built-in scoring configuration, version 1.0.
func DefaultConfig() Config {
	return Config{
		AppVersion:     "1.0",
		ScoringVersion: "1.0",
		TierThresholds: Thresholds{Tier1Min: 22, Tier2Min: 15},
		PointMappings: map[string]map[string]int{
			DimDecisionCriticality: {"LOW": 1, "MEDIUM": 3, "HIGH": 5},
			DimDataSensitivity:     {"PUBLIC": 1, "INTERNAL": 2, "CONFIDENTIAL": 4, "REGULATED_PII": 5},
			DimAutomationLevel:     {"ADVISORY": 1, "HUMAN_APPROVAL": 3, "FULLY_AUTOMATED": 5},
			DimAIType:              {"ML": 3, "LLM": 4, "AGENT": 5},
			DimDeploymentMode:      {"INTERNAL_ONLY": 1, "BATCH": 2, "HUMAN_IN_LOOP": 2, "REAL_TIME": 4},
		},
		DependencyScoring: DependencyScoring{
			ZeroDeps:          0,
			OneToTwoDeps:      2,
			ThreePlusDeps:     4,
			OpaqueVendorBonus: 2,
			OpaqueKeywords:    []string{"openai", "anthropic", "vendor", "3rd-party", "external"},
		},
		DefaultControls: map[string][]string{
			string(model.Tier1): {
				"Independent validation required",
				"Full documentation pack (purpose, data, training, limitations)",
				"Pre-deploy stress/robustness testing",
				"Security testing suite (adversarial + abuse cases)",
				"Bias & interpretability assessment (if applicable)",
				"Monitoring dashboard + alert thresholds",
				"Formal change control with rollback plan",
				"Incident response runbook",
			},
			string(model.Tier2): {
				"Peer validation (independent reviewer)",
				"Standard documentation pack",
				"Basic robustness tests",
				"Basic security tests",
				"Monitoring + periodic review",
				"Controlled releases",
			},
			string(model.Tier3): {
				"Basic documentation",
				"Basic testing",
				"Periodic spot checks / lightweight monitoring",
			},
		},
	}
}

// Load reads a scoring configuration from a TOML file and validates it.
// An empty path returns the validated built-in defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ConfigIntegrity, "read scoring config", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ConfigIntegrity, "parse scoring config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// enumMembers maps each dimension to the enum values its mapping must cover.
func enumMembers() map[string][]string {
	members := map[string][]string{
		DimDecisionCriticality: {},
		DimDataSensitivity:     {},
		DimAutomationLevel:     {},
		DimAIType:              {},
		DimDeploymentMode:      {},
	}
	for _, v := range model.AllCriticalities {
		members[DimDecisionCriticality] = append(members[DimDecisionCriticality], string(v))
	}
	for _, v := range model.AllSensitivities {
		members[DimDataSensitivity] = append(members[DimDataSensitivity], string(v))
	}
	for _, v := range model.AllAutomationLevels {
		members[DimAutomationLevel] = append(members[DimAutomationLevel], string(v))
	}
	for _, v := range model.AllAITypes {
		members[DimAIType] = append(members[DimAIType], string(v))
	}
	for _, v := range model.AllDeploymentModes {
		members[DimDeploymentMode] = append(members[DimDeploymentMode], string(v))
	}
	return members
}

// Validate checks the configuration's internal invariants once at load time:
// monotonic thresholds, a point mapping for every dimension covering every
// enum member, and a default control list for every tier.
func (c Config) Validate() error {
	if c.ScoringVersion == "" {
		return errors.New(errors.ConfigIntegrity, "scoring_version is required")
	}
	if c.TierThresholds.Tier1Min <= 0 || c.TierThresholds.Tier2Min <= 0 {
		return errors.New(errors.ConfigIntegrity, "tier thresholds must be positive")
	}
	if c.TierThresholds.Tier2Min > c.TierThresholds.Tier1Min {
		return errors.Newf(errors.ConfigIntegrity,
			"tier thresholds not monotonic: TIER_2_MIN %d > TIER_1_MIN %d",
			c.TierThresholds.Tier2Min, c.TierThresholds.Tier1Min)
	}

	for dim, members := range enumMembers() {
		mapping, ok := c.PointMappings[dim]
		if !ok {
			return errors.Newf(errors.ConfigIntegrity, "point mapping missing for dimension %q", dim)
		}
		for _, member := range members {
			if _, ok := mapping[member]; !ok {
				return errors.Newf(errors.ConfigIntegrity, "dimension %q has no mapping for %q", dim, member)
			}
		}
	}

	for _, tier := range model.AllRiskTiers {
		if len(c.DefaultControls[string(tier)]) == 0 {
			return errors.Newf(errors.ConfigIntegrity, "default controls missing for %s", tier)
		}
	}

	return nil
}

// ControlsFor returns a copy of the default control list for a tier, so that
// operator edits on a TieringResult never alias the configuration.
func (c Config) ControlsFor(tier model.RiskTier) []string {
	src := c.DefaultControls[string(tier)]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
