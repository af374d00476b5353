package store

import (
	"testing"

	"github.com/google/uuid"

	"aigov/internal/errors"
	"aigov/internal/logging"
	"aigov/internal/model"
	"aigov/internal/scoring"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	logger := logging.New(logging.Config{Level: logging.ErrorLevel})

	sqlite, err := Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func storeTestSystem(t *testing.T, name string) model.SystemMetadata {
	t.Helper()
	sys, err := model.NewSystem(model.SystemInput{
		Name:                 name,
		Domain:               "payments",
		AIType:               model.AITypeML,
		OwnerRole:            "Risk Engineering",
		DeploymentMode:       model.DeploymentRealTime,
		DecisionCriticality:  model.CriticalityHigh,
		AutomationLevel:      model.AutomationFullyAutomated,
		DataSensitivity:      model.SensitivityRegulatedPII,
		ExternalDependencies: []string{"openai-api"},
	})
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	return sys
}

func storeTestRisk(t *testing.T, systemID uuid.UUID) model.LifecycleRiskEntry {
	t.Helper()
	risk, err := model.NewLifecycleRisk(model.RiskInput{
		SystemID:       systemID,
		LifecyclePhase: model.PhaseOperations,
		RiskVector:     model.VectorSecurity,
		RiskStatement:  "Prompt injection through user-supplied context",
		Impact:         4,
		Likelihood:     3,
		OwnerRole:      "Security",
	})
	if err != nil {
		t.Fatalf("NewLifecycleRisk: %v", err)
	}
	return risk
}

func TestSystemRoundTrip(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sys := storeTestSystem(t, "Fraud Scorer")
			if err := st.PutSystem(sys); err != nil {
				t.Fatalf("PutSystem: %v", err)
			}

			got, err := st.GetSystem(sys.SystemID)
			if err != nil {
				t.Fatalf("GetSystem: %v", err)
			}
			if got.Name != sys.Name || got.AIType != sys.AIType {
				t.Errorf("GetSystem = %+v, want %+v", got, sys)
			}
			if len(got.ExternalDependencies) != 1 || got.ExternalDependencies[0] != "openai-api" {
				t.Errorf("ExternalDependencies = %v", got.ExternalDependencies)
			}
		})
	}
}

func TestGetSystemNotFound(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.GetSystem(uuid.New())
			if !errors.IsNotFound(err) {
				t.Errorf("error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestListSystemsOrderedByName(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"zeta", "alpha", "mid"} {
				if err := st.PutSystem(storeTestSystem(t, n)); err != nil {
					t.Fatalf("PutSystem: %v", err)
				}
			}

			systems, err := st.ListSystems()
			if err != nil {
				t.Fatalf("ListSystems: %v", err)
			}
			if len(systems) != 3 {
				t.Fatalf("len = %d, want 3", len(systems))
			}
			wantOrder := []string{"alpha", "mid", "zeta"}
			for i, want := range wantOrder {
				if systems[i].Name != want {
					t.Errorf("systems[%d].Name = %q, want %q", i, systems[i].Name, want)
				}
			}
		})
	}
}

func TestUpdateSystemPartialMerge(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sys := storeTestSystem(t, "Fraud Scorer")
			if err := st.PutSystem(sys); err != nil {
				t.Fatalf("PutSystem: %v", err)
			}

			domain := "lending"
			updated, err := st.UpdateSystem(sys.SystemID, model.SystemPatch{Domain: &domain})
			if err != nil {
				t.Fatalf("UpdateSystem: %v", err)
			}
			if updated.Domain != "lending" {
				t.Errorf("Domain = %q, want lending", updated.Domain)
			}
			if updated.Name != sys.Name {
				t.Errorf("Name = %q, should be unchanged", updated.Name)
			}

			stored, err := st.GetSystem(sys.SystemID)
			if err != nil {
				t.Fatalf("GetSystem: %v", err)
			}
			if stored.Domain != "lending" {
				t.Errorf("stored Domain = %q, update not persisted", stored.Domain)
			}
		})
	}
}

func TestUpdateSystemInvalidPatchLeavesRecord(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sys := storeTestSystem(t, "Fraud Scorer")
			if err := st.PutSystem(sys); err != nil {
				t.Fatalf("PutSystem: %v", err)
			}

			empty := ""
			if _, err := st.UpdateSystem(sys.SystemID, model.SystemPatch{Name: &empty}); err == nil {
				t.Fatal("invalid patch should fail")
			}

			stored, err := st.GetSystem(sys.SystemID)
			if err != nil {
				t.Fatalf("GetSystem: %v", err)
			}
			if stored.Name != "Fraud Scorer" {
				t.Errorf("record changed after failed update: %q", stored.Name)
			}
		})
	}
}

func TestTieringRoundTripAndUpsert(t *testing.T) {
	cfg := scoring.DefaultConfig()
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sys := storeTestSystem(t, "Fraud Scorer")
			if err := st.PutSystem(sys); err != nil {
				t.Fatalf("PutSystem: %v", err)
			}

			result, err := scoring.ComputeTier(sys, cfg)
			if err != nil {
				t.Fatalf("ComputeTier: %v", err)
			}
			if err := st.PutTiering(result); err != nil {
				t.Fatalf("PutTiering: %v", err)
			}

			got, err := st.GetTiering(sys.SystemID)
			if err != nil {
				t.Fatalf("GetTiering: %v", err)
			}
			if got.TotalScore != result.TotalScore || got.RiskTier != result.RiskTier {
				t.Errorf("GetTiering = %+v, want %+v", got, result)
			}
			if got.ScoreBreakdown["ai_type"] != result.ScoreBreakdown["ai_type"] {
				t.Errorf("breakdown lost in round trip")
			}

			// second Put replaces, not duplicates
			result.Justification = "replaced"
			if err := st.PutTiering(result); err != nil {
				t.Fatalf("PutTiering upsert: %v", err)
			}
			got, err = st.GetTiering(sys.SystemID)
			if err != nil {
				t.Fatalf("GetTiering: %v", err)
			}
			if got.Justification != "replaced" {
				t.Errorf("Justification = %q, upsert not applied", got.Justification)
			}
		})
	}
}

func TestAnnotateTiering(t *testing.T) {
	cfg := scoring.DefaultConfig()
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sys := storeTestSystem(t, "Fraud Scorer")
			if err := st.PutSystem(sys); err != nil {
				t.Fatalf("PutSystem: %v", err)
			}
			result, err := scoring.ComputeTier(sys, cfg)
			if err != nil {
				t.Fatalf("ComputeTier: %v", err)
			}
			if err := st.PutTiering(result); err != nil {
				t.Fatalf("PutTiering: %v", err)
			}

			justification := "Reviewed by model risk office"
			annotated, err := st.AnnotateTiering(sys.SystemID, &justification, nil)
			if err != nil {
				t.Fatalf("AnnotateTiering: %v", err)
			}
			if annotated.Justification != justification {
				t.Errorf("Justification = %q, want %q", annotated.Justification, justification)
			}
			if annotated.TotalScore != result.TotalScore {
				t.Errorf("TotalScore changed on annotate")
			}

			controls := []string{"Quarterly review"}
			annotated, err = st.AnnotateTiering(sys.SystemID, nil, &controls)
			if err != nil {
				t.Fatalf("AnnotateTiering: %v", err)
			}
			if len(annotated.RequiredControls) != 1 || annotated.RequiredControls[0] != "Quarterly review" {
				t.Errorf("RequiredControls = %v", annotated.RequiredControls)
			}
			if annotated.Justification != justification {
				t.Errorf("earlier annotation lost: %q", annotated.Justification)
			}
		})
	}
}

func TestRiskRoundTripAndUpdate(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sys := storeTestSystem(t, "Fraud Scorer")
			if err := st.PutSystem(sys); err != nil {
				t.Fatalf("PutSystem: %v", err)
			}
			risk := storeTestRisk(t, sys.SystemID)
			if err := st.PutRisk(risk); err != nil {
				t.Fatalf("PutRisk: %v", err)
			}

			got, err := st.GetRisk(risk.RiskID)
			if err != nil {
				t.Fatalf("GetRisk: %v", err)
			}
			if got.Severity != 12 {
				t.Errorf("Severity = %d, want 12", got.Severity)
			}

			impact := 5
			updated, err := st.UpdateRisk(risk.RiskID, model.RiskPatch{Impact: &impact})
			if err != nil {
				t.Fatalf("UpdateRisk: %v", err)
			}
			if updated.Severity != 15 {
				t.Errorf("Severity = %d after update, want 15", updated.Severity)
			}

			risks, err := st.ListRisksForSystem(sys.SystemID)
			if err != nil {
				t.Fatalf("ListRisksForSystem: %v", err)
			}
			if len(risks) != 1 {
				t.Errorf("len = %d, want 1", len(risks))
			}
		})
	}
}

func TestDeleteRisk(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sys := storeTestSystem(t, "Fraud Scorer")
			if err := st.PutSystem(sys); err != nil {
				t.Fatalf("PutSystem: %v", err)
			}
			risk := storeTestRisk(t, sys.SystemID)
			if err := st.PutRisk(risk); err != nil {
				t.Fatalf("PutRisk: %v", err)
			}

			if err := st.DeleteRisk(risk.RiskID); err != nil {
				t.Fatalf("DeleteRisk: %v", err)
			}
			if _, err := st.GetRisk(risk.RiskID); !errors.IsNotFound(err) {
				t.Errorf("error = %v, want NOT_FOUND", err)
			}
			if err := st.DeleteRisk(risk.RiskID); !errors.IsNotFound(err) {
				t.Errorf("double delete error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestDeleteSystemCascades(t *testing.T) {
	cfg := scoring.DefaultConfig()
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			doomed := storeTestSystem(t, "Doomed")
			survivor := storeTestSystem(t, "Survivor")
			for _, sys := range []model.SystemMetadata{doomed, survivor} {
				if err := st.PutSystem(sys); err != nil {
					t.Fatalf("PutSystem: %v", err)
				}
				result, err := scoring.ComputeTier(sys, cfg)
				if err != nil {
					t.Fatalf("ComputeTier: %v", err)
				}
				if err := st.PutTiering(result); err != nil {
					t.Fatalf("PutTiering: %v", err)
				}
				if err := st.PutRisk(storeTestRisk(t, sys.SystemID)); err != nil {
					t.Fatalf("PutRisk: %v", err)
				}
			}

			if err := st.DeleteSystem(doomed.SystemID); err != nil {
				t.Fatalf("DeleteSystem: %v", err)
			}

			if _, err := st.GetSystem(doomed.SystemID); !errors.IsNotFound(err) {
				t.Errorf("system error = %v, want NOT_FOUND", err)
			}
			if _, err := st.GetTiering(doomed.SystemID); !errors.IsNotFound(err) {
				t.Errorf("tiering error = %v, want NOT_FOUND", err)
			}
			risks, err := st.ListRisksForSystem(doomed.SystemID)
			if err != nil {
				t.Fatalf("ListRisksForSystem: %v", err)
			}
			if len(risks) != 0 {
				t.Errorf("deleted system still has %d risks", len(risks))
			}

			// the other system is untouched
			if _, err := st.GetSystem(survivor.SystemID); err != nil {
				t.Errorf("survivor system gone: %v", err)
			}
			if _, err := st.GetTiering(survivor.SystemID); err != nil {
				t.Errorf("survivor tiering gone: %v", err)
			}
			risks, err = st.ListRisksForSystem(survivor.SystemID)
			if err != nil {
				t.Fatalf("ListRisksForSystem: %v", err)
			}
			if len(risks) != 1 {
				t.Errorf("survivor has %d risks, want 1", len(risks))
			}
		})
	}
}

func TestDeleteSystemNotFound(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.DeleteSystem(uuid.New()); !errors.IsNotFound(err) {
				t.Errorf("error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	logger := logging.New(logging.Config{Level: logging.ErrorLevel})
	dir := t.TempDir()

	st, err := Open(dir, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sys := storeTestSystem(t, "Durable")
	if err := st.PutSystem(sys); err != nil {
		t.Fatalf("PutSystem: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetSystem(sys.SystemID)
	if err != nil {
		t.Fatalf("GetSystem after reopen: %v", err)
	}
	if got.Name != "Durable" {
		t.Errorf("Name = %q, want Durable", got.Name)
	}
}
