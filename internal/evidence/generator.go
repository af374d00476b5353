package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"aigov/internal/encoding"
	"aigov/internal/errors"
	"aigov/internal/logging"
	"aigov/internal/model"
	"aigov/internal/scoring"
	"aigov/internal/signing"
	"aigov/internal/store"
)

const (
	caseName = "case1"

	// ArtifactSignature is written only when a run is signed. It sits outside
	// the hash chain so signed and unsigned runs over identical state produce
	// identical outputs_hash values.
	ArtifactSignature = "evidence_manifest.sig"
)

// runIDPattern requires at least one alphanumeric so that ids made purely of
// punctuation, "." and ".." in particular, cannot resolve outside the run
// directory.
var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]*[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Generator assembles evidence packages from registry state.
type Generator struct {
	reader     store.Reader
	cfg        scoring.Config
	logger     *logging.Logger
	reportsDir string
}

// NewGenerator creates a Generator writing under reportsDir.
func NewGenerator(reader store.Reader, cfg scoring.Config, logger *logging.Logger, reportsDir string) *Generator {
	return &Generator{
		reader:     reader,
		cfg:        cfg,
		logger:     logger.Named("evidence"),
		reportsDir: reportsDir,
	}
}

// RunOptions parameterizes a single evidence run.
type RunOptions struct {
	// RunID names the run directory and archive. Empty means a UTC timestamp
	// id is generated.
	RunID string

	// Attribution is recorded as team_or_user in the manifest.
	Attribution string

	// Signer, when set, produces a detached signature over the manifest.
	Signer *signing.Signer
}

// Result describes a completed run.
type Result struct {
	Manifest      Manifest
	RunDir        string
	ArchivePath   string
	SignaturePath string
}

// snapshot is the registry state a run operates on. All reads happen up front
// so every artifact reflects the same state even if the registry changes
// mid-run.
type snapshot struct {
	systems []model.SystemMetadata
	results []model.TieringResult
	risks   map[uuid.UUID][]model.LifecycleRiskEntry

	names    map[uuid.UUID]string
	resultBy map[uuid.UUID]model.TieringResult
}

func (s snapshot) resultFor(id uuid.UUID) (model.TieringResult, bool) {
	r, ok := s.resultBy[id]
	return r, ok
}

func (s snapshot) systemName(id uuid.UUID) string {
	if name, ok := s.names[id]; ok {
		return name
	}
	return id.String()
}

// allRisks flattens per-system risks in system order. Within a system the
// store's ordering is preserved.
func (s snapshot) allRisks() []model.LifecycleRiskEntry {
	var out []model.LifecycleRiskEntry
	for _, sys := range s.systems {
		out = append(out, s.risks[sys.SystemID]...)
	}
	return out
}

func (g *Generator) takeSnapshot() (snapshot, error) {
	systems, err := g.reader.ListSystems()
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{
		systems:  systems,
		risks:    make(map[uuid.UUID][]model.LifecycleRiskEntry, len(systems)),
		names:    make(map[uuid.UUID]string, len(systems)),
		resultBy: make(map[uuid.UUID]model.TieringResult, len(systems)),
	}
	for _, sys := range systems {
		snap.names[sys.SystemID] = sys.Name

		result, err := g.reader.GetTiering(sys.SystemID)
		switch {
		case err == nil:
			snap.results = append(snap.results, result)
			snap.resultBy[sys.SystemID] = result
		case errors.IsNotFound(err):
			// systems registered but not yet tiered are inventoried only
		default:
			return snapshot{}, err
		}

		risks, err := g.reader.ListRisksForSystem(sys.SystemID)
		if err != nil {
			return snapshot{}, err
		}
		snap.risks[sys.SystemID] = risks
	}
	return snap, nil
}

// Run produces the full evidence package: five artifacts, the manifest, an
// optional signature, and the zip archive. Artifacts land in
// <reportsDir>/case1/<run_id>/ and the archive at
// <reportsDir>/case1/Case_01_<run_id>.zip.
func (g *Generator) Run(opts RunOptions) (Result, error) {
	runID := opts.RunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}
	if !runIDPattern.MatchString(runID) {
		return Result{}, errors.Newf(errors.ValidationFailed, "run id %q contains characters unsafe for file paths", runID)
	}

	runDir := filepath.Join(g.reportsDir, caseName, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "create run directory", err)
	}

	snap, err := g.takeSnapshot()
	if err != nil {
		return Result{}, err
	}

	g.logger.Info("generating evidence package", map[string]any{
		"run_id":  runID,
		"systems": len(snap.systems),
		"tiered":  len(snap.results),
	})

	configBytes, err := renderConfigSnapshot(g.cfg)
	if err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "render config snapshot", err)
	}

	type rendered struct {
		name string
		data []byte
	}
	artifactSet := make([]rendered, 0, 5)

	inventory, err := renderInventoryCSV(snap.systems)
	if err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "render model inventory", err)
	}
	artifactSet = append(artifactSet, rendered{ArtifactInventory, inventory})

	tiering, err := renderTieringJSON(g.cfg, snap.results)
	if err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "render risk tiering", err)
	}
	artifactSet = append(artifactSet, rendered{ArtifactTiering, tiering})

	riskMap, err := renderRiskMapJSON(snap.systems, snap.risks)
	if err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "render lifecycle risk map", err)
	}
	artifactSet = append(artifactSet, rendered{ArtifactRiskMap, riskMap})

	summary := renderSummaryMarkdown(runID, opts.Attribution, g.cfg, snap)
	artifactSet = append(artifactSet, rendered{ArtifactSummary, summary})
	artifactSet = append(artifactSet, rendered{ArtifactConfigSnapshot, configBytes})

	artifacts := make([]Artifact, 0, len(artifactSet))
	for _, a := range artifactSet {
		path := filepath.Join(runDir, a.name)
		if err := os.WriteFile(path, a.data, 0o644); err != nil {
			return Result{}, errors.Wrap(errors.EvidenceIO, fmt.Sprintf("write %s", a.name), err)
		}
		artifacts = append(artifacts, Artifact{
			Name:   a.name,
			Path:   filepath.ToSlash(filepath.Join(caseName, runID, a.name)),
			SHA256: Digest(a.data),
		})
	}

	inputsHash, err := computeInputsHash(caseName, len(snap.systems), Digest(configBytes))
	if err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "compute inputs hash", err)
	}

	manifest := Manifest{
		RunID:       runID,
		GeneratedAt: model.NowUTC(),
		TeamOrUser:  opts.Attribution,
		AppVersion:  g.cfg.AppVersion,
		InputsHash:  inputsHash,
		OutputsHash: computeOutputsHash(artifacts),
		Artifacts:   sortedByName(artifacts),
	}
	manifestBytes, err := encoding.Marshal(manifest)
	if err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "render manifest", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, ArtifactManifest), manifestBytes, 0o644); err != nil {
		return Result{}, errors.Wrap(errors.EvidenceIO, "write manifest", err)
	}

	res := Result{Manifest: manifest, RunDir: runDir}

	archiveNames := make([]string, 0, len(artifactSet)+2)
	for _, a := range artifactSet {
		archiveNames = append(archiveNames, a.name)
	}
	archiveNames = append(archiveNames, ArtifactManifest)

	if opts.Signer != nil {
		sigBytes, err := opts.Signer.Sign(manifestBytes)
		if err != nil {
			return Result{}, errors.Wrap(errors.EvidenceIO, "sign manifest", err)
		}
		sigPath := filepath.Join(runDir, ArtifactSignature)
		if err := os.WriteFile(sigPath, sigBytes, 0o644); err != nil {
			return Result{}, errors.Wrap(errors.EvidenceIO, "write manifest signature", err)
		}
		res.SignaturePath = sigPath
		archiveNames = append(archiveNames, ArtifactSignature)
	}

	zipPath := filepath.Join(g.reportsDir, caseName, fmt.Sprintf("Case_01_%s.zip", runID))
	if err := writeArchive(zipPath, runDir, archiveNames); err != nil {
		return Result{}, err
	}
	res.ArchivePath = zipPath

	g.logger.Info("evidence package complete", map[string]any{
		"run_id":       runID,
		"archive":      zipPath,
		"outputs_hash": manifest.OutputsHash,
	})
	return res, nil
}
