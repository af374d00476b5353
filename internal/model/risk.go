package model

import (
	"strings"

	"github.com/google/uuid"

	"aigov/internal/errors"
)

// RiskInput is the caller-supplied field set for a new lifecycle risk entry.
// RiskID may be zero, in which case one is assigned. Severity is never part of
// the input; it is derived here.
type RiskInput struct {
	RiskID         uuid.UUID
	SystemID       uuid.UUID
	LifecyclePhase LifecyclePhase
	RiskVector     RiskVector
	RiskStatement  string
	Impact         int
	Likelihood     int
	Mitigation     string
	OwnerRole      string
	EvidenceLinks  []string
}

// NewLifecycleRisk validates the input, derives severity, and stamps created_at.
func NewLifecycleRisk(in RiskInput) (LifecycleRiskEntry, error) {
	if in.SystemID == uuid.Nil {
		return LifecycleRiskEntry{}, errors.New(errors.ValidationFailed, "risk entry requires a system_id")
	}
	if strings.TrimSpace(in.RiskStatement) == "" {
		return LifecycleRiskEntry{}, errors.New(errors.ValidationFailed, "risk_statement must not be empty")
	}
	if !in.LifecyclePhase.Valid() {
		return LifecycleRiskEntry{}, errors.Newf(errors.ValidationFailed, "invalid lifecycle_phase %q", string(in.LifecyclePhase))
	}
	if !in.RiskVector.Valid() {
		return LifecycleRiskEntry{}, errors.Newf(errors.ValidationFailed, "invalid risk_vector %q", string(in.RiskVector))
	}
	if err := validateScale("impact", in.Impact); err != nil {
		return LifecycleRiskEntry{}, err
	}
	if err := validateScale("likelihood", in.Likelihood); err != nil {
		return LifecycleRiskEntry{}, err
	}

	id := in.RiskID
	if id == uuid.Nil {
		id = uuid.New()
	}

	links := in.EvidenceLinks
	if links == nil {
		links = []string{}
	}

	return LifecycleRiskEntry{
		RiskID:         id,
		SystemID:       in.SystemID,
		LifecyclePhase: in.LifecyclePhase,
		RiskVector:     in.RiskVector,
		RiskStatement:  in.RiskStatement,
		Impact:         in.Impact,
		Likelihood:     in.Likelihood,
		Severity:       in.Impact * in.Likelihood,
		Mitigation:     in.Mitigation,
		OwnerRole:      in.OwnerRole,
		EvidenceLinks:  links,
		CreatedAt:      NowUTC(),
	}, nil
}

// RiskPatch is a partial field set for updating a risk entry. The system id
// is immutable after creation and therefore not patchable. Severity is
// recomputed from the merged impact/likelihood, never taken from the caller.
type RiskPatch struct {
	LifecyclePhase *LifecyclePhase
	RiskVector     *RiskVector
	RiskStatement  *string
	Impact         *int
	Likelihood     *int
	Mitigation     *string
	OwnerRole      *string
	EvidenceLinks  *[]string
}

// Merge applies the patch, re-validates, re-derives severity, and refreshes
// created_at as the entry's last-modified marker.
func (r LifecycleRiskEntry) Merge(p RiskPatch) (LifecycleRiskEntry, error) {
	next := r
	if p.LifecyclePhase != nil {
		next.LifecyclePhase = *p.LifecyclePhase
	}
	if p.RiskVector != nil {
		next.RiskVector = *p.RiskVector
	}
	if p.RiskStatement != nil {
		next.RiskStatement = *p.RiskStatement
	}
	if p.Impact != nil {
		next.Impact = *p.Impact
	}
	if p.Likelihood != nil {
		next.Likelihood = *p.Likelihood
	}
	if p.Mitigation != nil {
		next.Mitigation = *p.Mitigation
	}
	if p.OwnerRole != nil {
		next.OwnerRole = *p.OwnerRole
	}
	if p.EvidenceLinks != nil {
		links := *p.EvidenceLinks
		if links == nil {
			links = []string{}
		}
		next.EvidenceLinks = links
	}

	if strings.TrimSpace(next.RiskStatement) == "" {
		return LifecycleRiskEntry{}, errors.New(errors.ValidationFailed, "risk_statement must not be empty")
	}
	if !next.LifecyclePhase.Valid() {
		return LifecycleRiskEntry{}, errors.Newf(errors.ValidationFailed, "invalid lifecycle_phase %q", string(next.LifecyclePhase))
	}
	if !next.RiskVector.Valid() {
		return LifecycleRiskEntry{}, errors.Newf(errors.ValidationFailed, "invalid risk_vector %q", string(next.RiskVector))
	}
	if err := validateScale("impact", next.Impact); err != nil {
		return LifecycleRiskEntry{}, err
	}
	if err := validateScale("likelihood", next.Likelihood); err != nil {
		return LifecycleRiskEntry{}, err
	}

	next.Severity = next.Impact * next.Likelihood
	next.CreatedAt = NowUTC()
	return next, nil
}

func validateScale(field string, v int) error {
	if v < 1 || v > 5 {
		return errors.Newf(errors.ValidationFailed, "%s must be in [1,5], got %d", field, v)
	}
	return nil
}
