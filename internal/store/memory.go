package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"aigov/internal/errors"
	"aigov/internal/model"
)

// Memory is an in-memory Store used by tests and ephemeral runs. It honors
// the same coarse-lock contract as the SQLite store.
type Memory struct {
	systemsMu sync.Mutex
	tieringMu sync.Mutex
	risksMu   sync.Mutex

	systems map[uuid.UUID]model.SystemMetadata
	tiering map[uuid.UUID]model.TieringResult
	risks   map[uuid.UUID]model.LifecycleRiskEntry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		systems: make(map[uuid.UUID]model.SystemMetadata),
		tiering: make(map[uuid.UUID]model.TieringResult),
		risks:   make(map[uuid.UUID]model.LifecycleRiskEntry),
	}
}

// Close is a no-op for the in-memory store.
func (s *Memory) Close() error { return nil }

// PutSystem inserts or replaces a system record.
func (s *Memory) PutSystem(m model.SystemMetadata) error {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	s.systems[m.SystemID] = m
	return nil
}

// GetSystem retrieves a system by id.
func (s *Memory) GetSystem(id uuid.UUID) (model.SystemMetadata, error) {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	m, ok := s.systems[id]
	if !ok {
		return model.SystemMetadata{}, errors.Newf(errors.NotFound, "system %s not found", id)
	}
	return m, nil
}

// ListSystems returns all systems ordered by name, then id.
func (s *Memory) ListSystems() ([]model.SystemMetadata, error) {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	out := make([]model.SystemMetadata, 0, len(s.systems))
	for _, m := range s.systems {
		out = append(out, m)
	}
	sortSystemsByName(out)
	return out, nil
}

// UpdateSystem merges the patch atomically.
func (s *Memory) UpdateSystem(id uuid.UUID, patch model.SystemPatch) (model.SystemMetadata, error) {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	current, ok := s.systems[id]
	if !ok {
		return model.SystemMetadata{}, errors.Newf(errors.NotFound, "system %s not found", id)
	}
	next, err := current.Merge(patch)
	if err != nil {
		return model.SystemMetadata{}, err
	}
	s.systems[id] = next
	return next, nil
}

// DeleteSystem removes the system, its tiering result, and its risks.
func (s *Memory) DeleteSystem(id uuid.UUID) error {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()
	s.risksMu.Lock()
	defer s.risksMu.Unlock()

	if _, ok := s.systems[id]; !ok {
		return errors.Newf(errors.NotFound, "system %s not found", id)
	}
	for riskID, r := range s.risks {
		if r.SystemID == id {
			delete(s.risks, riskID)
		}
	}
	delete(s.tiering, id)
	delete(s.systems, id)
	return nil
}

// PutTiering upserts the tiering result for a system.
func (s *Memory) PutTiering(r model.TieringResult) error {
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()
	s.tiering[r.SystemID] = r
	return nil
}

// GetTiering retrieves the tiering result for a system.
func (s *Memory) GetTiering(systemID uuid.UUID) (model.TieringResult, error) {
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()
	r, ok := s.tiering[systemID]
	if !ok {
		return model.TieringResult{}, errors.Newf(errors.NotFound, "no tiering result for system %s", systemID)
	}
	return r, nil
}

// AnnotateTiering edits operator-owned fields without recomputation.
func (s *Memory) AnnotateTiering(systemID uuid.UUID, justification *string, controls *[]string) (model.TieringResult, error) {
	s.tieringMu.Lock()
	defer s.tieringMu.Unlock()
	r, ok := s.tiering[systemID]
	if !ok {
		return model.TieringResult{}, errors.Newf(errors.NotFound, "no tiering result for system %s", systemID)
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
	s.tiering[systemID] = r
	return r, nil
}

// PutRisk inserts or replaces a risk entry.
func (s *Memory) PutRisk(r model.LifecycleRiskEntry) error {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	s.risks[r.RiskID] = r
	return nil
}

// GetRisk retrieves a risk entry by id.
func (s *Memory) GetRisk(id uuid.UUID) (model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	r, ok := s.risks[id]
	if !ok {
		return model.LifecycleRiskEntry{}, errors.Newf(errors.NotFound, "risk %s not found", id)
	}
	return r, nil
}

// ListRisks returns every risk entry ordered by creation time, then id.
func (s *Memory) ListRisks() ([]model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	out := make([]model.LifecycleRiskEntry, 0, len(s.risks))
	for _, r := range s.risks {
		out = append(out, r)
	}
	sortRisks(out)
	return out, nil
}

// ListRisksForSystem returns a system's risks ordered by creation time, then id.
func (s *Memory) ListRisksForSystem(systemID uuid.UUID) ([]model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	var out []model.LifecycleRiskEntry
	for _, r := range s.risks {
		if r.SystemID == systemID {
			out = append(out, r)
		}
	}
	sortRisks(out)
	return out, nil
}

// UpdateRisk merges the patch atomically.
func (s *Memory) UpdateRisk(id uuid.UUID, patch model.RiskPatch) (model.LifecycleRiskEntry, error) {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	current, ok := s.risks[id]
	if !ok {
		return model.LifecycleRiskEntry{}, errors.Newf(errors.NotFound, "risk %s not found", id)
	}
	next, err := current.Merge(patch)
	if err != nil {
		return model.LifecycleRiskEntry{}, err
	}
	s.risks[id] = next
	return next, nil
}

// DeleteRisk removes one risk entry.
func (s *Memory) DeleteRisk(id uuid.UUID) error {
	s.risksMu.Lock()
	defer s.risksMu.Unlock()
	if _, ok := s.risks[id]; !ok {
		return errors.Newf(errors.NotFound, "risk %s not found", id)
	}
	delete(s.risks, id)
	return nil
}

func sortSystemsByName(systems []model.SystemMetadata) {
	sort.Slice(systems, func(i, j int) bool {
		if systems[i].Name != systems[j].Name {
			return systems[i].Name < systems[j].Name
		}
		return systems[i].SystemID.String() < systems[j].SystemID.String()
	})
}

func sortRisks(risks []model.LifecycleRiskEntry) {
	sort.Slice(risks, func(i, j int) bool {
		if risks[i].CreatedAt != risks[j].CreatedAt {
			return risks[i].CreatedAt < risks[j].CreatedAt
		}
		return risks[i].RiskID.String() < risks[j].RiskID.String()
	})
}

var _ Store = (*Memory)(nil)
