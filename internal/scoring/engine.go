package scoring

import (
	"fmt"
	"strings"

	"aigov/internal/errors"
	"aigov/internal/model"
)

// ComputeTier scores a system against the configuration and assigns its risk
// tier. It is a pure function of its inputs: identical (system, config) pairs
// yield identical total_score, risk_tier, and score_breakdown.
//
// A dimension value absent from its mapping contributes 0 points; a dimension
// mapping that is absent entirely is a configuration-integrity error, which
// Load/Validate prevents in normal operation.
func ComputeTier(sys model.SystemMetadata, cfg Config) (model.TieringResult, error) {
	total := 0
	breakdown := make(map[string]int, len(MappedDimensions)+1)

	for _, dim := range MappedDimensions {
		mapping, ok := cfg.PointMappings[dim]
		if !ok {
			return model.TieringResult{}, errors.Newf(errors.ConfigIntegrity,
				"point mapping missing for dimension %q", dim)
		}
		points := mapping[dimensionValue(sys, dim)]
		total += points
		breakdown[dim] = points
	}

	depScore := dependencyScore(sys.ExternalDependencies, cfg.DependencyScoring)
	total += depScore
	breakdown[DimExternalDependencies] = depScore

	tier := assignTier(total, cfg.TierThresholds)

	return model.TieringResult{
		SystemID:         sys.SystemID,
		RiskTier:         tier,
		TotalScore:       total,
		ScoreBreakdown:   breakdown,
		Justification:    fmt.Sprintf("Automated tiering based on scoring version %s.", cfg.ScoringVersion),
		RequiredControls: cfg.ControlsFor(tier),
		ComputedAt:       model.NowUTC(),
		ScoringVersion:   cfg.ScoringVersion,
	}, nil
}

func dimensionValue(sys model.SystemMetadata, dim string) string {
	switch dim {
	case DimDecisionCriticality:
		return string(sys.DecisionCriticality)
	case DimDataSensitivity:
		return string(sys.DataSensitivity)
	case DimAutomationLevel:
		return string(sys.AutomationLevel)
	case DimAIType:
		return string(sys.AIType)
	case DimDeploymentMode:
		return string(sys.DeploymentMode)
	}
	return ""
}

// dependencyScore brackets the dependency count (0, 1-2, 3+) and adds the
// opaque-vendor bonus at most once, no matter how many dependencies match.
func dependencyScore(deps []string, ds DependencyScoring) int {
	var score int
	switch n := len(deps); {
	case n == 0:
		score = ds.ZeroDeps
	case n <= 2:
		score = ds.OneToTwoDeps
	default:
		score = ds.ThreePlusDeps
	}

	for _, dep := range deps {
		if matchesOpaqueKeyword(dep, ds.OpaqueKeywords) {
			score += ds.OpaqueVendorBonus
			break
		}
	}
	return score
}

func matchesOpaqueKeyword(dep string, keywords []string) bool {
	lower := strings.ToLower(dep)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// assignTier checks the inclusive lower bounds in descending order.
func assignTier(total int, t Thresholds) model.RiskTier {
	switch {
	case total >= t.Tier1Min:
		return model.Tier1
	case total >= t.Tier2Min:
		return model.Tier2
	default:
		return model.Tier3
	}
}
