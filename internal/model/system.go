package model

import (
	"strings"

	"github.com/google/uuid"

	"aigov/internal/errors"
)

// SystemInput is the caller-supplied field set for registering a system.
// SystemID may be zero, in which case one is assigned.
type SystemInput struct {
	SystemID             uuid.UUID
	Name                 string
	Description          string
	Domain               string
	AIType               AIType
	OwnerRole            string
	DeploymentMode       DeploymentMode
	DecisionCriticality  DecisionCriticality
	AutomationLevel      AutomationLevel
	DataSensitivity      DataSensitivity
	ExternalDependencies []string
}

// NewSystem validates the input and builds a SystemMetadata record with a
// fresh updated_at timestamp.
func NewSystem(in SystemInput) (SystemMetadata, error) {
	if strings.TrimSpace(in.Name) == "" {
		return SystemMetadata{}, errors.New(errors.ValidationFailed, "system name must not be empty")
	}
	if err := validateClassification(in.AIType, in.DeploymentMode, in.DecisionCriticality, in.AutomationLevel, in.DataSensitivity); err != nil {
		return SystemMetadata{}, err
	}

	id := in.SystemID
	if id == uuid.Nil {
		id = uuid.New()
	}

	deps := in.ExternalDependencies
	if deps == nil {
		deps = []string{}
	}

	return SystemMetadata{
		SystemID:             id,
		Name:                 in.Name,
		Description:          in.Description,
		Domain:               in.Domain,
		AIType:               in.AIType,
		OwnerRole:            in.OwnerRole,
		DeploymentMode:       in.DeploymentMode,
		DecisionCriticality:  in.DecisionCriticality,
		AutomationLevel:      in.AutomationLevel,
		DataSensitivity:      in.DataSensitivity,
		ExternalDependencies: deps,
		UpdatedAt:            NowUTC(),
	}, nil
}

// SystemPatch is a partial field set for updating a system. Nil fields are
// left untouched; the merged record is re-validated as a whole and gets a
// fresh updated_at timestamp.
type SystemPatch struct {
	Name                 *string
	Description          *string
	Domain               *string
	AIType               *AIType
	OwnerRole            *string
	DeploymentMode       *DeploymentMode
	DecisionCriticality  *DecisionCriticality
	AutomationLevel      *AutomationLevel
	DataSensitivity      *DataSensitivity
	ExternalDependencies *[]string
}

// Merge applies the patch to the current record and returns the replacement.
// The system id is never reassigned.
func (m SystemMetadata) Merge(p SystemPatch) (SystemMetadata, error) {
	next := m
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Domain != nil {
		next.Domain = *p.Domain
	}
	if p.AIType != nil {
		next.AIType = *p.AIType
	}
	if p.OwnerRole != nil {
		next.OwnerRole = *p.OwnerRole
	}
	if p.DeploymentMode != nil {
		next.DeploymentMode = *p.DeploymentMode
	}
	if p.DecisionCriticality != nil {
		next.DecisionCriticality = *p.DecisionCriticality
	}
	if p.AutomationLevel != nil {
		next.AutomationLevel = *p.AutomationLevel
	}
	if p.DataSensitivity != nil {
		next.DataSensitivity = *p.DataSensitivity
	}
	if p.ExternalDependencies != nil {
		deps := *p.ExternalDependencies
		if deps == nil {
			deps = []string{}
		}
		next.ExternalDependencies = deps
	}

	if strings.TrimSpace(next.Name) == "" {
		return SystemMetadata{}, errors.New(errors.ValidationFailed, "system name must not be empty")
	}
	if err := validateClassification(next.AIType, next.DeploymentMode, next.DecisionCriticality, next.AutomationLevel, next.DataSensitivity); err != nil {
		return SystemMetadata{}, err
	}

	next.UpdatedAt = NowUTC()
	return next, nil
}

func validateClassification(t AIType, m DeploymentMode, c DecisionCriticality, a AutomationLevel, s DataSensitivity) error {
	if !t.Valid() {
		return errors.Newf(errors.ValidationFailed, "invalid ai_type %q", string(t))
	}
	if !m.Valid() {
		return errors.Newf(errors.ValidationFailed, "invalid deployment_mode %q", string(m))
	}
	if !c.Valid() {
		return errors.Newf(errors.ValidationFailed, "invalid decision_criticality %q", string(c))
	}
	if !a.Valid() {
		return errors.Newf(errors.ValidationFailed, "invalid automation_level %q", string(a))
	}
	if !s.Valid() {
		return errors.Newf(errors.ValidationFailed, "invalid data_sensitivity %q", string(s))
	}
	return nil
}
