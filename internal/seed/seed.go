// Package seed imports systems and their lifecycle risks in bulk from YAML or
// JSON documents. Records are validated one at a time; a bad record is
// reported and skipped without aborting the batch.
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"aigov/internal/errors"
	"aigov/internal/logging"
	"aigov/internal/model"
	"aigov/internal/scoring"
	"aigov/internal/store"
)

// Document is the top-level import file shape.
type Document struct {
	Systems []SystemRecord `json:"systems" yaml:"systems"`
}

// SystemRecord is one system with its risks inlined.
type SystemRecord struct {
	Name                 string       `json:"name" yaml:"name"`
	Description          string       `json:"description" yaml:"description"`
	Domain               string       `json:"domain" yaml:"domain"`
	AIType               string       `json:"ai_type" yaml:"ai_type"`
	OwnerRole            string       `json:"owner_role" yaml:"owner_role"`
	DeploymentMode       string       `json:"deployment_mode" yaml:"deployment_mode"`
	DecisionCriticality  string       `json:"decision_criticality" yaml:"decision_criticality"`
	AutomationLevel      string       `json:"automation_level" yaml:"automation_level"`
	DataSensitivity      string       `json:"data_sensitivity" yaml:"data_sensitivity"`
	ExternalDependencies []string     `json:"external_dependencies" yaml:"external_dependencies"`
	Risks                []RiskRecord `json:"risks" yaml:"risks"`
}

// RiskRecord is one lifecycle risk attached to its parent system record.
type RiskRecord struct {
	LifecyclePhase string   `json:"lifecycle_phase" yaml:"lifecycle_phase"`
	RiskVector     string   `json:"risk_vector" yaml:"risk_vector"`
	RiskStatement  string   `json:"risk_statement" yaml:"risk_statement"`
	Impact         int      `json:"impact" yaml:"impact"`
	Likelihood     int      `json:"likelihood" yaml:"likelihood"`
	Mitigation     string   `json:"mitigation" yaml:"mitigation"`
	OwnerRole      string   `json:"owner_role" yaml:"owner_role"`
	EvidenceLinks  []string `json:"evidence_links" yaml:"evidence_links"`
}

// RecordError ties a validation failure to the record it came from.
type RecordError struct {
	Record string
	Err    error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Record, e.Err)
}

// Report summarizes an import run.
type Report struct {
	SystemsRegistered int
	RisksAdded        int
	TiersComputed     int
	Errors            []RecordError
}

// Importer loads seed documents into a store.
type Importer struct {
	store  store.Store
	cfg    scoring.Config
	logger *logging.Logger

	// ComputeTiers runs the scoring engine for each imported system.
	ComputeTiers bool
}

// NewImporter creates an Importer. Tier computation is on by default.
func NewImporter(st store.Store, cfg scoring.Config, logger *logging.Logger) *Importer {
	return &Importer{
		store:        st,
		cfg:          cfg,
		logger:       logger.Named("seed"),
		ComputeTiers: true,
	}
}

// Parse decodes a document, dispatching on the file extension. Anything that
// is not .json is treated as YAML.
func Parse(path string, data []byte) (Document, error) {
	var doc Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, errors.Wrap(errors.ValidationFailed, "parse json seed document", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.Wrap(errors.ValidationFailed, "parse yaml seed document", err)
	}
	return doc, nil
}

// ImportFile reads and imports a seed file.
func (im *Importer) ImportFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, errors.Wrap(errors.ValidationFailed, "read seed file", err)
	}
	doc, err := Parse(path, data)
	if err != nil {
		return Report{}, err
	}
	return im.Import(doc)
}

// Import registers every valid system and its risks. Invalid records are
// collected in the report; a system that fails validation takes its risks
// with it.
func (im *Importer) Import(doc Document) (Report, error) {
	var report Report

	for i, rec := range doc.Systems {
		label := rec.Name
		if label == "" {
			label = fmt.Sprintf("systems[%d]", i)
		}

		sys, err := model.NewSystem(model.SystemInput{
			Name:                 rec.Name,
			Description:          rec.Description,
			Domain:               rec.Domain,
			AIType:               model.AIType(rec.AIType),
			OwnerRole:            rec.OwnerRole,
			DeploymentMode:       model.DeploymentMode(rec.DeploymentMode),
			DecisionCriticality:  model.DecisionCriticality(rec.DecisionCriticality),
			AutomationLevel:      model.AutomationLevel(rec.AutomationLevel),
			DataSensitivity:      model.DataSensitivity(rec.DataSensitivity),
			ExternalDependencies: rec.ExternalDependencies,
		})
		if err != nil {
			report.Errors = append(report.Errors, RecordError{Record: label, Err: err})
			continue
		}
		if err := im.store.PutSystem(sys); err != nil {
			return report, err
		}
		report.SystemsRegistered++

		if im.ComputeTiers {
			result, err := scoring.ComputeTier(sys, im.cfg)
			if err != nil {
				return report, err
			}
			if err := im.store.PutTiering(result); err != nil {
				return report, err
			}
			report.TiersComputed++
		}

		for j, rr := range rec.Risks {
			risk, err := model.NewLifecycleRisk(model.RiskInput{
				SystemID:       sys.SystemID,
				LifecyclePhase: model.LifecyclePhase(rr.LifecyclePhase),
				RiskVector:     model.RiskVector(rr.RiskVector),
				RiskStatement:  rr.RiskStatement,
				Impact:         rr.Impact,
				Likelihood:     rr.Likelihood,
				Mitigation:     rr.Mitigation,
				OwnerRole:      rr.OwnerRole,
				EvidenceLinks:  rr.EvidenceLinks,
			})
			if err != nil {
				report.Errors = append(report.Errors, RecordError{
					Record: fmt.Sprintf("%s risks[%d]", label, j),
					Err:    err,
				})
				continue
			}
			if err := im.store.PutRisk(risk); err != nil {
				return report, err
			}
			report.RisksAdded++
		}
	}

	im.logger.Info("seed import complete", map[string]any{
		"systems": report.SystemsRegistered,
		"risks":   report.RisksAdded,
		"errors":  len(report.Errors),
	})
	return report, nil
}
