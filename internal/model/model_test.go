package model

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"aigov/internal/errors"
)

func validSystemInput() SystemInput {
	return SystemInput{
		Name:                "Fraud Scorer",
		Domain:              "payments",
		AIType:              AITypeML,
		OwnerRole:           "Risk Engineering",
		DeploymentMode:      DeploymentRealTime,
		DecisionCriticality: CriticalityHigh,
		AutomationLevel:     AutomationFullyAutomated,
		DataSensitivity:     SensitivityRegulatedPII,
	}
}

func TestNewSystemAssignsIDAndTimestamp(t *testing.T) {
	sys, err := NewSystem(validSystemInput())
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	if sys.SystemID == uuid.Nil {
		t.Error("SystemID should be assigned")
	}
	if sys.UpdatedAt == "" {
		t.Error("UpdatedAt should be stamped")
	}
	if sys.ExternalDependencies == nil {
		t.Error("ExternalDependencies should be an empty slice, not nil")
	}
}

func TestTimestampOrderIsChronological(t *testing.T) {
	// a variable-width layout would render 500ms as ".5" and sort it after
	// ".51"; the fixed-width layout keeps string order chronological
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := base.Add(500 * time.Millisecond).Format(timeLayout)
	later := base.Add(510 * time.Millisecond).Format(timeLayout)

	if earlier >= later {
		t.Errorf("timestamps misordered: %q should sort before %q", earlier, later)
	}
	if _, err := time.Parse(time.RFC3339Nano, earlier); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", earlier, err)
	}
	if _, err := time.Parse(time.RFC3339Nano, NowUTC()); err != nil {
		t.Errorf("NowUTC() = %q is not RFC 3339: %v", NowUTC(), err)
	}
}

func TestNewSystemKeepsProvidedID(t *testing.T) {
	id := uuid.New()
	in := validSystemInput()
	in.SystemID = id

	sys, err := NewSystem(in)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	if sys.SystemID != id {
		t.Errorf("SystemID = %s, want %s", sys.SystemID, id)
	}
}

func TestNewSystemValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SystemInput)
	}{
		{"empty name", func(in *SystemInput) { in.Name = "  " }},
		{"bad ai_type", func(in *SystemInput) { in.AIType = "ROBOT" }},
		{"bad deployment_mode", func(in *SystemInput) { in.DeploymentMode = "CLOUD" }},
		{"bad decision_criticality", func(in *SystemInput) { in.DecisionCriticality = "SEVERE" }},
		{"bad automation_level", func(in *SystemInput) { in.AutomationLevel = "AUTO" }},
		{"bad data_sensitivity", func(in *SystemInput) { in.DataSensitivity = "SECRET" }},
		{"lowercase enum rejected", func(in *SystemInput) { in.AIType = "ml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSystemInput()
			tt.mutate(&in)
			_, err := NewSystem(in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsValidation(err) {
				t.Errorf("error code = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestSystemMergePartialUpdate(t *testing.T) {
	sys, err := NewSystem(validSystemInput())
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	newDomain := "lending"
	newType := AITypeLLM
	merged, err := sys.Merge(SystemPatch{Domain: &newDomain, AIType: &newType})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if merged.Domain != "lending" {
		t.Errorf("Domain = %q, want %q", merged.Domain, "lending")
	}
	if merged.AIType != AITypeLLM {
		t.Errorf("AIType = %q, want %q", merged.AIType, AITypeLLM)
	}
	if merged.Name != sys.Name {
		t.Errorf("Name changed unexpectedly: %q", merged.Name)
	}
	if merged.SystemID != sys.SystemID {
		t.Error("Merge must not reassign the system id")
	}
}

func TestSystemMergeRejectsInvalidResult(t *testing.T) {
	sys, err := NewSystem(validSystemInput())
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	empty := ""
	if _, err := sys.Merge(SystemPatch{Name: &empty}); err == nil {
		t.Error("merge emptying the name should fail validation")
	}
	bad := AIType("QUANTUM")
	if _, err := sys.Merge(SystemPatch{AIType: &bad}); err == nil {
		t.Error("merge with invalid ai_type should fail validation")
	}
}

func validRiskInput() RiskInput {
	return RiskInput{
		SystemID:       uuid.New(),
		LifecyclePhase: PhaseOperations,
		RiskVector:     VectorRobustness,
		RiskStatement:  "Feature distribution shift degrades precision",
		Impact:         4,
		Likelihood:     3,
		OwnerRole:      "ML Platform",
	}
}

func TestNewLifecycleRiskDerivesSeverity(t *testing.T) {
	risk, err := NewLifecycleRisk(validRiskInput())
	if err != nil {
		t.Fatalf("NewLifecycleRisk: %v", err)
	}
	if risk.Severity != 12 {
		t.Errorf("Severity = %d, want 12", risk.Severity)
	}
	if risk.CreatedAt == "" {
		t.Error("CreatedAt should be stamped")
	}
	if risk.EvidenceLinks == nil {
		t.Error("EvidenceLinks should be an empty slice, not nil")
	}
}

func TestNewLifecycleRiskValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RiskInput)
	}{
		{"missing system_id", func(in *RiskInput) { in.SystemID = uuid.Nil }},
		{"empty statement", func(in *RiskInput) { in.RiskStatement = " " }},
		{"bad phase", func(in *RiskInput) { in.LifecyclePhase = "STAGING" }},
		{"bad vector", func(in *RiskInput) { in.RiskVector = "LATENCY" }},
		{"impact too low", func(in *RiskInput) { in.Impact = 0 }},
		{"impact too high", func(in *RiskInput) { in.Impact = 6 }},
		{"likelihood too low", func(in *RiskInput) { in.Likelihood = 0 }},
		{"likelihood too high", func(in *RiskInput) { in.Likelihood = 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRiskInput()
			tt.mutate(&in)
			if _, err := NewLifecycleRisk(in); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRiskMergeRederivesSeverity(t *testing.T) {
	risk, err := NewLifecycleRisk(validRiskInput())
	if err != nil {
		t.Fatalf("NewLifecycleRisk: %v", err)
	}

	impact := 5
	likelihood := 5
	merged, err := risk.Merge(RiskPatch{Impact: &impact, Likelihood: &likelihood})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Severity != 25 {
		t.Errorf("Severity = %d, want 25", merged.Severity)
	}
	if merged.SystemID != risk.SystemID {
		t.Error("Merge must not change the owning system")
	}
}

func TestRiskMergeRejectsOutOfRange(t *testing.T) {
	risk, err := NewLifecycleRisk(validRiskInput())
	if err != nil {
		t.Fatalf("NewLifecycleRisk: %v", err)
	}

	impact := 0
	if _, err := risk.Merge(RiskPatch{Impact: &impact}); err == nil {
		t.Error("merge with impact 0 should fail validation")
	}
}

func TestEnumDomains(t *testing.T) {
	if len(AllLifecyclePhases) != 7 {
		t.Errorf("lifecycle phases = %d, want 7", len(AllLifecyclePhases))
	}
	if len(AllRiskVectors) != 8 {
		t.Errorf("risk vectors = %d, want 8", len(AllRiskVectors))
	}
	if len(AllRiskTiers) != 3 {
		t.Errorf("risk tiers = %d, want 3", len(AllRiskTiers))
	}
	for _, phase := range AllLifecyclePhases {
		if !phase.Valid() {
			t.Errorf("phase %q should be valid", phase)
		}
	}
	for _, vector := range AllRiskVectors {
		if !vector.Valid() {
			t.Errorf("vector %q should be valid", vector)
		}
	}
}
