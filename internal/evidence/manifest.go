package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"aigov/internal/encoding"
)

// Artifact names. The set, the names, and the formats are a compatibility
// contract with external audit tooling.
const (
	ArtifactInventory      = "model_inventory.csv"
	ArtifactTiering        = "risk_tiering.json"
	ArtifactRiskMap        = "lifecycle_risk_map.json"
	ArtifactSummary        = "case1_executive_summary.md"
	ArtifactConfigSnapshot = "config_snapshot.json"
	ArtifactManifest       = "evidence_manifest.json"
)

// Artifact is one manifest entry: a named file and the digest of its bytes.
type Artifact struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// Manifest is the evidence package's integrity record. Its JSON shape is a
// wire format external tooling depends on; field names and nesting must not
// change.
type Manifest struct {
	RunID       string     `json:"run_id"`
	GeneratedAt string     `json:"generated_at"`
	TeamOrUser  string     `json:"team_or_user"`
	AppVersion  string     `json:"app_version"`
	InputsHash  string     `json:"inputs_hash"`
	OutputsHash string     `json:"outputs_hash"`
	Artifacts   []Artifact `json:"artifacts"`
}

// Digest computes the hex-encoded SHA-256 of raw bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// inputsAttestation is the hashed statement of what state a run was based on.
type inputsAttestation struct {
	Case               string `json:"case"`
	SystemsCount       int    `json:"systems_count"`
	ConfigSnapshotHash string `json:"config_snapshot_hash"`
}

// computeInputsHash digests a small deterministic structure describing the
// run's input state.
func computeInputsHash(caseName string, systemsCount int, configSnapshotHash string) (string, error) {
	data, err := encoding.Marshal(inputsAttestation{
		Case:               caseName,
		SystemsCount:       systemsCount,
		ConfigSnapshotHash: configSnapshotHash,
	})
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}

// computeOutputsHash digests the concatenation of the artifact digests,
// artifacts sorted by name. The manifest is written after this value is
// known, so its own digest is never part of the input set.
func computeOutputsHash(artifacts []Artifact) string {
	names := make([]string, 0, len(artifacts))
	byName := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		names = append(names, a.Name)
		byName[a.Name] = a.SHA256
	}
	sort.Strings(names)

	var concat []byte
	for _, name := range names {
		concat = append(concat, byName[name]...)
	}
	return Digest(concat)
}

// sortedByName returns a copy of artifacts ordered by name, the order the
// manifest records them in.
func sortedByName(artifacts []Artifact) []Artifact {
	out := make([]Artifact, len(artifacts))
	copy(out, artifacts)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
