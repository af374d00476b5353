// Package store persists the registry's three record types. Implementations
// guarantee mutual exclusion per logical store: read-modify-write sequences
// (partial-field update merges) are atomic with respect to each other under a
// coarse per-store lock. Deleting a system cascades to its tiering result and
// lifecycle risks.
package store

import (
	"github.com/google/uuid"

	"aigov/internal/model"
)

// SystemStore is keyed by system_id.
type SystemStore interface {
	PutSystem(m model.SystemMetadata) error
	GetSystem(id uuid.UUID) (model.SystemMetadata, error)
	ListSystems() ([]model.SystemMetadata, error)
	// UpdateSystem merges the patch into the current record atomically and
	// returns the replacement. The record is re-validated as a whole.
	UpdateSystem(id uuid.UUID, patch model.SystemPatch) (model.SystemMetadata, error)
	// DeleteSystem removes the system and cascades to its tiering result and
	// all of its lifecycle risks.
	DeleteSystem(id uuid.UUID) error
}

// TieringStore is keyed one-to-one by system_id; Put has upsert semantics.
type TieringStore interface {
	PutTiering(r model.TieringResult) error
	GetTiering(systemID uuid.UUID) (model.TieringResult, error)
	// AnnotateTiering edits the operator-owned fields of a stored result
	// without recomputing the score. Nil fields are left untouched.
	AnnotateTiering(systemID uuid.UUID, justification *string, controls *[]string) (model.TieringResult, error)
}

// RiskStore is keyed by risk_id.
type RiskStore interface {
	PutRisk(r model.LifecycleRiskEntry) error
	GetRisk(id uuid.UUID) (model.LifecycleRiskEntry, error)
	ListRisks() ([]model.LifecycleRiskEntry, error)
	ListRisksForSystem(systemID uuid.UUID) ([]model.LifecycleRiskEntry, error)
	// UpdateRisk merges the patch atomically, re-deriving severity.
	UpdateRisk(id uuid.UUID, patch model.RiskPatch) (model.LifecycleRiskEntry, error)
	DeleteRisk(id uuid.UUID) error
}

// Store is the combined contract the CLI and evidence generator consume.
type Store interface {
	SystemStore
	TieringStore
	RiskStore
	Close() error
}

// Reader is the read-only subset the evidence generator needs.
type Reader interface {
	ListSystems() ([]model.SystemMetadata, error)
	GetTiering(systemID uuid.UUID) (model.TieringResult, error)
	ListRisksForSystem(systemID uuid.UUID) ([]model.LifecycleRiskEntry, error)
}
