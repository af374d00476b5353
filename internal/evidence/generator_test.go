package evidence

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aigov/internal/logging"
	"aigov/internal/model"
	"aigov/internal/scoring"
	"aigov/internal/signing"
	"aigov/internal/store"
)

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.ErrorLevel})
}

func seedStore(t *testing.T) *store.Memory {
	t.Helper()
	st := store.NewMemory()
	cfg := scoring.DefaultConfig()

	seeds := []struct {
		name string
		deps []string
	}{
		{"Fraud Scorer", []string{"openai-api"}},
		{"Churn Predictor", nil},
	}
	for _, seed := range seeds {
		sys, err := model.NewSystem(model.SystemInput{
			Name:                 seed.name,
			Domain:               "payments",
			AIType:               model.AITypeML,
			OwnerRole:            "Risk Engineering",
			DeploymentMode:       model.DeploymentRealTime,
			DecisionCriticality:  model.CriticalityHigh,
			AutomationLevel:      model.AutomationFullyAutomated,
			DataSensitivity:      model.SensitivityRegulatedPII,
			ExternalDependencies: seed.deps,
		})
		if err != nil {
			t.Fatalf("NewSystem: %v", err)
		}
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
		risk, err := model.NewLifecycleRisk(model.RiskInput{
			SystemID:       sys.SystemID,
			LifecyclePhase: model.PhaseOperations,
			RiskVector:     model.VectorSecurity,
			RiskStatement:  "Prompt injection through user context",
			Impact:         4,
			Likelihood:     3,
			OwnerRole:      "Security",
		})
		if err != nil {
			t.Fatalf("NewLifecycleRisk: %v", err)
		}
		if err := st.PutRisk(risk); err != nil {
			t.Fatalf("PutRisk: %v", err)
		}
	}
	return st
}

func newTestGenerator(t *testing.T, st store.Reader) (*Generator, string) {
	t.Helper()
	reports := t.TempDir()
	return NewGenerator(st, scoring.DefaultConfig(), testLogger(), reports), reports
}

func TestRunProducesCompletePackage(t *testing.T) {
	st := seedStore(t)
	gen, reports := newTestGenerator(t, st)

	result, err := gen.Run(RunOptions{RunID: "testrun", Attribution: "governance-team"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	runDir := filepath.Join(reports, "case1", "testrun")
	for _, name := range []string{
		ArtifactInventory, ArtifactTiering, ArtifactRiskMap,
		ArtifactSummary, ArtifactConfigSnapshot, ArtifactManifest,
	} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	wantZip := filepath.Join(reports, "case1", "Case_01_testrun.zip")
	if result.ArchivePath != wantZip {
		t.Errorf("ArchivePath = %q, want %q", result.ArchivePath, wantZip)
	}
	if _, err := os.Stat(wantZip); err != nil {
		t.Errorf("archive not written: %v", err)
	}
	if _, err := os.Stat(wantZip + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp archive left behind")
	}

	zr, err := zip.OpenReader(wantZip)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 6 {
		t.Errorf("archive has %d entries, want 6", len(zr.File))
	}

	m := result.Manifest
	if m.RunID != "testrun" || m.TeamOrUser != "governance-team" {
		t.Errorf("manifest attribution fields wrong: %+v", m)
	}
	if len(m.Artifacts) != 5 {
		t.Fatalf("manifest lists %d artifacts, want 5", len(m.Artifacts))
	}
	for i := 1; i < len(m.Artifacts); i++ {
		if m.Artifacts[i-1].Name > m.Artifacts[i].Name {
			t.Errorf("manifest artifacts not sorted: %s before %s", m.Artifacts[i-1].Name, m.Artifacts[i].Name)
		}
	}
	for _, a := range m.Artifacts {
		if a.Name == ArtifactManifest {
			t.Error("manifest must not list itself")
		}
	}
}

func TestRunOutputsHashStableAcrossReruns(t *testing.T) {
	st := seedStore(t)
	gen, _ := newTestGenerator(t, st)
	opts := RunOptions{RunID: "stable", Attribution: "governance-team"}

	first, err := gen.Run(opts)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := gen.Run(opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if first.Manifest.OutputsHash != second.Manifest.OutputsHash {
		t.Errorf("outputs_hash differs across reruns over unchanged state:\n%s\n%s",
			first.Manifest.OutputsHash, second.Manifest.OutputsHash)
	}
	if first.Manifest.InputsHash != second.Manifest.InputsHash {
		t.Errorf("inputs_hash differs across reruns over unchanged state")
	}
}

func TestRunRejectsUnsafeRunID(t *testing.T) {
	st := seedStore(t)
	gen, reports := newTestGenerator(t, st)

	for _, bad := range []string{"../escape", "a b", "run/1", "run\x00id", ".", "..", "---"} {
		if _, err := gen.Run(RunOptions{RunID: bad}); err == nil {
			t.Errorf("run id %q should be rejected", bad)
		}
	}

	// a rejected run must leave the reports tree untouched; "." and ".."
	// would otherwise resolve to the case directory or the reports root
	entries, err := os.ReadDir(reports)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "case1" {
			t.Errorf("rejected run wrote %s into the reports root", e.Name())
		}
	}
	caseEntries, err := os.ReadDir(filepath.Join(reports, "case1"))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("ReadDir case1: %v", err)
	}
	if len(caseEntries) != 0 {
		t.Errorf("rejected run wrote into the case directory: %v", caseEntries)
	}
}

func TestOutputsHashIgnoresManifestMetadata(t *testing.T) {
	artifacts := []Artifact{
		{Name: "b.json", SHA256: Digest([]byte("bbb"))},
		{Name: "a.csv", SHA256: Digest([]byte("aaa"))},
	}
	first := computeOutputsHash(artifacts)

	// order of the input slice must not matter
	swapped := []Artifact{artifacts[1], artifacts[0]}
	if computeOutputsHash(swapped) != first {
		t.Error("outputs_hash depends on artifact slice order")
	}

	// paths and other metadata must not matter, only names and digests
	withPaths := []Artifact{
		{Name: "b.json", Path: "elsewhere/b.json", SHA256: artifacts[0].SHA256},
		{Name: "a.csv", Path: "elsewhere/a.csv", SHA256: artifacts[1].SHA256},
	}
	if computeOutputsHash(withPaths) != first {
		t.Error("outputs_hash should depend only on names and digests")
	}
}

func TestDeletedSystemLeavesNoTrace(t *testing.T) {
	st := seedStore(t)
	systems, err := st.ListSystems()
	if err != nil {
		t.Fatalf("ListSystems: %v", err)
	}
	var doomed model.SystemMetadata
	for _, sys := range systems {
		if sys.Name == "Fraud Scorer" {
			doomed = sys
		}
	}
	if err := st.DeleteSystem(doomed.SystemID); err != nil {
		t.Fatalf("DeleteSystem: %v", err)
	}

	gen, reports := newTestGenerator(t, st)
	if _, err := gen.Run(RunOptions{RunID: "afterdelete", Attribution: "governance-team"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	runDir := filepath.Join(reports, "case1", "afterdelete")
	for _, name := range []string{ArtifactInventory, ArtifactTiering, ArtifactRiskMap, ArtifactSummary} {
		data, err := os.ReadFile(filepath.Join(runDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if strings.Contains(string(data), "Fraud Scorer") {
			t.Errorf("%s still mentions the deleted system", name)
		}
		if strings.Contains(string(data), doomed.SystemID.String()) {
			t.Errorf("%s still carries the deleted system id", name)
		}
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	st := seedStore(t)
	gen, _ := newTestGenerator(t, st)

	result, err := gen.Run(RunOptions{RunID: "tamper", Attribution: "governance-team"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	clean, err := Verify(result.RunDir, "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !clean.OK() {
		t.Fatalf("fresh package should verify: %+v", clean)
	}

	inventory := filepath.Join(result.RunDir, ArtifactInventory)
	if err := os.WriteFile(inventory, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	dirty, err := Verify(result.RunDir, "")
	if err != nil {
		t.Fatalf("Verify after tamper: %v", err)
	}
	if dirty.OK() {
		t.Error("tampered package should fail verification")
	}
	found := false
	for _, name := range dirty.Mismatched {
		if name == ArtifactInventory {
			found = true
		}
	}
	if !found {
		t.Errorf("Mismatched = %v, want %s listed", dirty.Mismatched, ArtifactInventory)
	}
}

func TestSignedRunVerifies(t *testing.T) {
	st := seedStore(t)
	gen, _ := newTestGenerator(t, st)

	signer, err := signing.NewSigner("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	result, err := gen.Run(RunOptions{RunID: "signed", Attribution: "governance-team", Signer: signer})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SignaturePath == "" {
		t.Fatal("signed run should report a signature path")
	}

	verified, err := Verify(result.RunDir, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !verified.OK() || !verified.SignatureChecked {
		t.Errorf("signed package should verify with the right passphrase: %+v", verified)
	}

	if _, err := Verify(result.RunDir, "wrong passphrase"); err == nil {
		t.Error("wrong passphrase should fail signature verification")
	}
}

func TestSigningOutsideHashChain(t *testing.T) {
	st := seedStore(t)
	gen, _ := newTestGenerator(t, st)

	signer, err := signing.NewSigner("pass")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	// a signed and an unsigned run over identical state must agree on
	// outputs_hash
	unsigned, err := gen.Run(RunOptions{RunID: "r1", Attribution: "team"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	signed, err := gen.Run(RunOptions{RunID: "r1", Attribution: "team", Signer: signer})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if unsigned.Manifest.OutputsHash != signed.Manifest.OutputsHash {
		t.Error("signature must sit outside the hash chain")
	}
}

func TestManifestWireFormat(t *testing.T) {
	st := seedStore(t)
	gen, _ := newTestGenerator(t, st)

	result, err := gen.Run(RunOptions{RunID: "wire", Attribution: "team"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(result.RunDir, ArtifactManifest))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	for _, key := range []string{"run_id", "generated_at", "team_or_user", "app_version", "inputs_hash", "outputs_hash", "artifacts"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("manifest missing key %q", key)
		}
	}
}

func TestWriteArchiveAbortLeavesNoCanonicalFile(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "run")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	zipPath := filepath.Join(dir, "out.zip")

	err := writeArchive(zipPath, runDir, []string{"missing.json"})
	if err == nil {
		t.Fatal("archiving a missing artifact should fail")
	}
	if _, statErr := os.Stat(zipPath); !os.IsNotExist(statErr) {
		t.Error("failed archive run must not leave a canonical archive")
	}
	if _, statErr := os.Stat(zipPath + ".tmp"); !os.IsNotExist(statErr) {
		t.Error("failed archive run must clean up its temp file")
	}
}

func TestInventoryCSVColumnOrder(t *testing.T) {
	st := seedStore(t)
	gen, _ := newTestGenerator(t, st)

	result, err := gen.Run(RunOptions{RunID: "csv", Attribution: "team"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(result.RunDir, ArtifactInventory))
	if err != nil {
		t.Fatalf("read inventory: %v", err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	want := strings.Join(inventoryColumns, ",")
	if strings.TrimRight(header, "\r") != want {
		t.Errorf("header = %q, want %q", header, want)
	}
	lines := strings.Count(strings.TrimSpace(string(data)), "\n")
	if lines != 2 {
		t.Errorf("inventory has %d data rows, want 2", lines)
	}
}
