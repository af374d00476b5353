package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"aigov/internal/errors"
	"aigov/internal/logging"
	"aigov/internal/model"
)

// SQLite persists records in a single SQLite database under the data
// directory. Coarse mutexes per record type make read-modify-write sequences
// atomic; the database itself runs in WAL mode.
type SQLite struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string

	systemsMu sync.Mutex
	tieringMu sync.Mutex
	risksMu   sync.Mutex
}

// Open opens or creates the registry database at <dataDir>/registry.db.
func Open(dataDir string, logger *logging.Logger) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.StorageFailure, "create data directory", err)
	}

	dbPath := filepath.Join(dataDir, "registry.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.StorageFailure, "open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.Wrap(errors.StorageFailure, "set pragma", err)
		}
	}

	s := &SQLite{conn: conn, logger: logger.Named("store"), dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	s.logger.Debug("database ready", map[string]any{"path": dbPath})
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS systems (
		system_id             TEXT PRIMARY KEY,
		name                  TEXT NOT NULL,
		description           TEXT NOT NULL DEFAULT '',
		domain                TEXT NOT NULL DEFAULT '',
		ai_type               TEXT NOT NULL,
		owner_role            TEXT NOT NULL DEFAULT '',
		deployment_mode       TEXT NOT NULL,
		decision_criticality  TEXT NOT NULL,
		automation_level      TEXT NOT NULL,
		data_sensitivity      TEXT NOT NULL,
		external_dependencies TEXT NOT NULL DEFAULT '[]',
		updated_at            TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiering_results (
		system_id         TEXT PRIMARY KEY REFERENCES systems(system_id) ON DELETE CASCADE,
		risk_tier         TEXT NOT NULL,
		total_score       INTEGER NOT NULL,
		score_breakdown   TEXT NOT NULL,
		justification     TEXT NOT NULL DEFAULT '',
		required_controls TEXT NOT NULL DEFAULT '[]',
		computed_at       TEXT NOT NULL,
		scoring_version   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lifecycle_risks (
		risk_id         TEXT PRIMARY KEY,
		system_id       TEXT NOT NULL REFERENCES systems(system_id) ON DELETE CASCADE,
		lifecycle_phase TEXT NOT NULL,
		risk_vector     TEXT NOT NULL,
		risk_statement  TEXT NOT NULL,
		impact          INTEGER NOT NULL,
		likelihood      INTEGER NOT NULL,
		severity        INTEGER NOT NULL,
		mitigation      TEXT NOT NULL DEFAULT '',
		owner_role      TEXT NOT NULL DEFAULT '',
		evidence_links  TEXT NOT NULL DEFAULT '[]',
		created_at      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_risks_system ON lifecycle_risks(system_id);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return errors.Wrap(errors.StorageFailure, "initialize schema", err)
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *SQLite) withTx(fn func(*sql.Tx) error) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return errors.Wrap(errors.StorageFailure, "begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.StorageFailure, "commit transaction", err)
	}
	return nil
}

func marshalList(v []string) string {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func unmarshalList(data string) []string {
	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// --- systems ---

// PutSystem inserts or replaces a system record.
func (s *SQLite) PutSystem(m model.SystemMetadata) error {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	return s.writeSystem(m)
}

func (s *SQLite) writeSystem(m model.SystemMetadata) error {
	_, err := s.conn.Exec(`
		INSERT INTO systems (
			system_id, name, description, domain, ai_type, owner_role,
			deployment_mode, decision_criticality, automation_level,
			data_sensitivity, external_dependencies, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(system_id) DO UPDATE SET
			name=excluded.name, description=excluded.description,
			domain=excluded.domain, ai_type=excluded.ai_type,
			owner_role=excluded.owner_role, deployment_mode=excluded.deployment_mode,
			decision_criticality=excluded.decision_criticality,
			automation_level=excluded.automation_level,
			data_sensitivity=excluded.data_sensitivity,
			external_dependencies=excluded.external_dependencies,
			updated_at=excluded.updated_at
	`,
		m.SystemID.String(), m.Name, m.Description, m.Domain, string(m.AIType),
		m.OwnerRole, string(m.DeploymentMode), string(m.DecisionCriticality),
		string(m.AutomationLevel), string(m.DataSensitivity),
		marshalList(m.ExternalDependencies), m.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(errors.StorageFailure, "write system", err)
	}
	return nil
}

const systemColumns = `system_id, name, description, domain, ai_type, owner_role,
	deployment_mode, decision_criticality, automation_level, data_sensitivity,
	external_dependencies, updated_at`

func scanSystem(row interface{ Scan(...any) error }) (model.SystemMetadata, error) {
	var m model.SystemMetadata
	var id, deps string
	err := row.Scan(&id, &m.Name, &m.Description, &m.Domain, (*string)(&m.AIType),
		&m.OwnerRole, (*string)(&m.DeploymentMode), (*string)(&m.DecisionCriticality),
		(*string)(&m.AutomationLevel), (*string)(&m.DataSensitivity), &deps, &m.UpdatedAt)
	if err != nil {
		return model.SystemMetadata{}, err
	}
	m.SystemID, err = uuid.Parse(id)
	if err != nil {
		return model.SystemMetadata{}, fmt.Errorf("corrupt system_id %q: %w", id, err)
	}
	m.ExternalDependencies = unmarshalList(deps)
	return m, nil
}

// GetSystem retrieves a system by id.
func (s *SQLite) GetSystem(id uuid.UUID) (model.SystemMetadata, error) {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	return s.readSystem(id)
}

func (s *SQLite) readSystem(id uuid.UUID) (model.SystemMetadata, error) {
	row := s.conn.QueryRow(`SELECT `+systemColumns+` FROM systems WHERE system_id = ?`, id.String())
	m, err := scanSystem(row)
	if err == sql.ErrNoRows {
		return model.SystemMetadata{}, errors.Newf(errors.NotFound, "system %s not found", id)
	}
	if err != nil {
		return model.SystemMetadata{}, errors.Wrap(errors.StorageFailure, "read system", err)
	}
	return m, nil
}

// ListSystems returns all systems ordered by name, then id for stability.
func (s *SQLite) ListSystems() ([]model.SystemMetadata, error) {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()

	rows, err := s.conn.Query(`SELECT ` + systemColumns + ` FROM systems ORDER BY name, system_id`)
	if err != nil {
		return nil, errors.Wrap(errors.StorageFailure, "list systems", err)
	}
	defer rows.Close()

	var out []model.SystemMetadata
	for rows.Next() {
		m, err := scanSystem(rows)
		if err != nil {
			return nil, errors.Wrap(errors.StorageFailure, "scan system", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.StorageFailure, "list systems", err)
	}
	return out, nil
}

// UpdateSystem merges the patch under the systems lock so concurrent merges
// cannot interleave.
func (s *SQLite) UpdateSystem(id uuid.UUID, patch model.SystemPatch) (model.SystemMetadata, error) {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()

	current, err := s.readSystem(id)
	if err != nil {
		return model.SystemMetadata{}, err
	}
	next, err := current.Merge(patch)
	if err != nil {
		return model.SystemMetadata{}, err
	}
	if err := s.writeSystem(next); err != nil {
		return model.SystemMetadata{}, err
	}
	return next, nil
}

// DeleteSystem removes the system and all dependent records in one
// transaction, holding all three store locks for the multi-store cascade.
func (s *SQLite) DeleteSystem(id uuid.UUID) error {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()
	s.risksMu.Lock()
	defer s.risksMu.Unlock()

	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM lifecycle_risks WHERE system_id = ?`, id.String()); err != nil {
			return errors.Wrap(errors.StorageFailure, "delete risks", err)
		}
		if _, err := tx.Exec(`DELETE FROM tiering_results WHERE system_id = ?`, id.String()); err != nil {
			return errors.Wrap(errors.StorageFailure, "delete tiering result", err)
		}
		res, err := tx.Exec(`DELETE FROM systems WHERE system_id = ?`, id.String())
		if err != nil {
			return errors.Wrap(errors.StorageFailure, "delete system", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(errors.StorageFailure, "delete system", err)
		}
		if n == 0 {
			return errors.Newf(errors.NotFound, "system %s not found", id)
		}
		return nil
	})
}

// --- tiering results ---

// PutTiering upserts the tiering result for a system.
func (s *SQLite) PutTiering(r model.TieringResult) error {
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()
	return s.writeTiering(r)
}

func (s *SQLite) writeTiering(r model.TieringResult) error {
	breakdown, err := json.Marshal(r.ScoreBreakdown)
	if err != nil {
		return errors.Wrap(errors.StorageFailure, "encode score breakdown", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO tiering_results (
			system_id, risk_tier, total_score, score_breakdown,
			justification, required_controls, computed_at, scoring_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(system_id) DO UPDATE SET
			risk_tier=excluded.risk_tier, total_score=excluded.total_score,
			score_breakdown=excluded.score_breakdown,
			justification=excluded.justification,
			required_controls=excluded.required_controls,
			computed_at=excluded.computed_at,
			scoring_version=excluded.scoring_version
	`,
		r.SystemID.String(), string(r.RiskTier), r.TotalScore, string(breakdown),
		r.Justification, marshalList(r.RequiredControls), r.ComputedAt, r.ScoringVersion,
	)
	if err != nil {
		return errors.Wrap(errors.StorageFailure, "write tiering result", err)
	}
	return nil
}

// GetTiering retrieves the tiering result for a system.
func (s *SQLite) GetTiering(systemID uuid.UUID) (model.TieringResult, error) {
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()
	return s.readTiering(systemID)
}

func (s *SQLite) readTiering(systemID uuid.UUID) (model.TieringResult, error) {
	var r model.TieringResult
	var id, breakdown, controls string
	err := s.conn.QueryRow(`
		SELECT system_id, risk_tier, total_score, score_breakdown,
		       justification, required_controls, computed_at, scoring_version
		FROM tiering_results WHERE system_id = ?
	`, systemID.String()).Scan(&id, (*string)(&r.RiskTier), &r.TotalScore,
		&breakdown, &r.Justification, &controls, &r.ComputedAt, &r.ScoringVersion)
	if err == sql.ErrNoRows {
		return model.TieringResult{}, errors.Newf(errors.NotFound, "no tiering result for system %s", systemID)
	}
	if err != nil {
		return model.TieringResult{}, errors.Wrap(errors.StorageFailure, "read tiering result", err)
	}
	r.SystemID, err = uuid.Parse(id)
	if err != nil {
		return model.TieringResult{}, errors.Wrap(errors.StorageFailure, "parse system_id", err)
	}
	if err := json.Unmarshal([]byte(breakdown), &r.ScoreBreakdown); err != nil {
		return model.TieringResult{}, errors.Wrap(errors.StorageFailure, "decode score breakdown", err)
	}
	r.RequiredControls = unmarshalList(controls)
	return r, nil
}

// AnnotateTiering edits justification and/or required controls in place.
func (s *SQLite) AnnotateTiering(systemID uuid.UUID, justification *string, controls *[]string) (model.TieringResult, error) {
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()

	r, err := s.readTiering(systemID)
	if err != nil {
		return model.TieringResult{}, err
	}
	if justification != nil {
		r.Justification = *justification
	}
	if controls != nil {
		edited := *controls
		if edited == nil {
			edited = []string{}
		}
		r.RequiredControls = edited
	}
	if err := s.writeTiering(r); err != nil {
		return model.TieringResult{}, err
	}
	return r, nil
}

// --- lifecycle risks ---

// PutRisk inserts or replaces a risk entry.
func (s *SQLite) PutRisk(r model.LifecycleRiskEntry) error {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	return s.writeRisk(r)
}

func (s *SQLite) writeRisk(r model.LifecycleRiskEntry) error {
	_, err := s.conn.Exec(`
		INSERT INTO lifecycle_risks (
			risk_id, system_id, lifecycle_phase, risk_vector, risk_statement,
			impact, likelihood, severity, mitigation, owner_role,
			evidence_links, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(risk_id) DO UPDATE SET
			lifecycle_phase=excluded.lifecycle_phase,
			risk_vector=excluded.risk_vector,
			risk_statement=excluded.risk_statement,
			impact=excluded.impact, likelihood=excluded.likelihood,
			severity=excluded.severity, mitigation=excluded.mitigation,
			owner_role=excluded.owner_role, evidence_links=excluded.evidence_links,
			created_at=excluded.created_at
	`,
		r.RiskID.String(), r.SystemID.String(), string(r.LifecyclePhase),
		string(r.RiskVector), r.RiskStatement, r.Impact, r.Likelihood, r.Severity,
		r.Mitigation, r.OwnerRole, marshalList(r.EvidenceLinks), r.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(errors.StorageFailure, "write risk entry", err)
	}
	return nil
}

const riskColumns = `risk_id, system_id, lifecycle_phase, risk_vector, risk_statement,
	impact, likelihood, severity, mitigation, owner_role, evidence_links, created_at`

func scanRisk(row interface{ Scan(...any) error }) (model.LifecycleRiskEntry, error) {
	var r model.LifecycleRiskEntry
	var riskID, systemID, links string
	err := row.Scan(&riskID, &systemID, (*string)(&r.LifecyclePhase), (*string)(&r.RiskVector),
		&r.RiskStatement, &r.Impact, &r.Likelihood, &r.Severity, &r.Mitigation,
		&r.OwnerRole, &links, &r.CreatedAt)
	if err != nil {
		return model.LifecycleRiskEntry{}, err
	}
	if r.RiskID, err = uuid.Parse(riskID); err != nil {
		return model.LifecycleRiskEntry{}, fmt.Errorf("corrupt risk_id %q: %w", riskID, err)
	}
	if r.SystemID, err = uuid.Parse(systemID); err != nil {
		return model.LifecycleRiskEntry{}, fmt.Errorf("corrupt system_id %q: %w", systemID, err)
	}
	r.EvidenceLinks = unmarshalList(links)
	return r, nil
}

// GetRisk retrieves a risk entry by id.
func (s *SQLite) GetRisk(id uuid.UUID) (model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	return s.readRisk(id)
}

func (s *SQLite) readRisk(id uuid.UUID) (model.LifecycleRiskEntry, error) {
	row := s.conn.QueryRow(`SELECT `+riskColumns+` FROM lifecycle_risks WHERE risk_id = ?`, id.String())
	r, err := scanRisk(row)
	if err == sql.ErrNoRows {
		return model.LifecycleRiskEntry{}, errors.Newf(errors.NotFound, "risk %s not found", id)
	}
	if err != nil {
		return model.LifecycleRiskEntry{}, errors.Wrap(errors.StorageFailure, "read risk entry", err)
	}
	return r, nil
}

func (s *SQLite) queryRisks(query string, args ...any) ([]model.LifecycleRiskEntry, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.StorageFailure, "list risks", err)
	}
	defer rows.Close()

	var out []model.LifecycleRiskEntry
	for rows.Next() {
		r, err := scanRisk(rows)
		if err != nil {
			return nil, errors.Wrap(errors.StorageFailure, "scan risk entry", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.StorageFailure, "list risks", err)
	}
	return out, nil
}

// ListRisks returns every risk entry ordered by creation time, then id.
func (s *SQLite) ListRisks() ([]model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	return s.queryRisks(`SELECT ` + riskColumns + ` FROM lifecycle_risks ORDER BY created_at, risk_id`)
}

// ListRisksForSystem returns a system's risks ordered by creation time, then id.
func (s *SQLite) ListRisksForSystem(systemID uuid.UUID) ([]model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	return s.queryRisks(`SELECT `+riskColumns+` FROM lifecycle_risks WHERE system_id = ? ORDER BY created_at, risk_id`, systemID.String())
}

// UpdateRisk merges the patch under the risks lock.
func (s *SQLite) UpdateRisk(id uuid.UUID, patch model.RiskPatch) (model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()

	current, err := s.readRisk(id)
	if err != nil {
		return model.LifecycleRiskEntry{}, err
	}
	next, err := current.Merge(patch)
	if err != nil {
		return model.LifecycleRiskEntry{}, err
	}
	if err := s.writeRisk(next); err != nil {
		return model.LifecycleRiskEntry{}, err
	}
	return next, nil
}

// DeleteRisk removes one risk entry.
func (s *SQLite) DeleteRisk(id uuid.UUID) error {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()

	res, err := s.conn.Exec(`DELETE FROM lifecycle_risks WHERE risk_id = ?`, id.String())
	if err != nil {
		return errors.Wrap(errors.StorageFailure, "delete risk entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.StorageFailure, "delete risk entry", err)
	}
	if n == 0 {
		return errors.Newf(errors.NotFound, "risk %s not found", id)
	}
	return nil
}

var _ Store = (*SQLite)(nil)
