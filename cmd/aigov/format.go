package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"aigov/internal/model"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// SystemListResponse is the system list command's output.
type SystemListResponse struct {
	Count   int                    `json:"count"`
	Systems []model.SystemMetadata `json:"systems"`
}

// TierListResponse is the batch tier compute output.
type TierListResponse struct {
	Count   int                   `json:"count"`
	Results []model.TieringResult `json:"results"`
}

// RiskListResponse is the risk list command's output.
type RiskListResponse struct {
	Count int                        `json:"count"`
	Risks []model.LifecycleRiskEntry `json:"risks"`
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp any, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp any) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp any) (string, error) {
	switch v := resp.(type) {
	case model.SystemMetadata:
		return formatSystemHuman(v)
	case *SystemListResponse:
		return formatSystemListHuman(v)
	case model.TieringResult:
		return formatTieringHuman(v)
	case *TierListResponse:
		return formatTierListHuman(v)
	case model.LifecycleRiskEntry:
		return formatRiskHuman(v)
	case *RiskListResponse:
		return formatRiskListHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// formatSystemHuman formats one system record in human-readable format
func formatSystemHuman(sys model.SystemMetadata) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s\n", sys.Name))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("ID: %s\n", sys.SystemID))
	if sys.Description != "" {
		b.WriteString(fmt.Sprintf("Description: %s\n", sys.Description))
	}
	b.WriteString(fmt.Sprintf("Domain: %s\n", sys.Domain))
	b.WriteString(fmt.Sprintf("AI Type: %s\n", sys.AIType))
	b.WriteString(fmt.Sprintf("Owner Role: %s\n", sys.OwnerRole))
	b.WriteString("\nClassification:\n")
	b.WriteString(fmt.Sprintf("  Deployment Mode: %s\n", sys.DeploymentMode))
	b.WriteString(fmt.Sprintf("  Decision Criticality: %s\n", sys.DecisionCriticality))
	b.WriteString(fmt.Sprintf("  Automation Level: %s\n", sys.AutomationLevel))
	b.WriteString(fmt.Sprintf("  Data Sensitivity: %s\n", sys.DataSensitivity))
	if len(sys.ExternalDependencies) > 0 {
		b.WriteString(fmt.Sprintf("\nExternal Dependencies: %s\n", strings.Join(sys.ExternalDependencies, ", ")))
	}
	b.WriteString(fmt.Sprintf("\nUpdated: %s\n", sys.UpdatedAt))

	return b.String(), nil
}

// formatSystemListHuman formats the system inventory in human-readable format
func formatSystemListHuman(resp *SystemListResponse) (string, error) {
	var b strings.Builder

	b.WriteString("AI System Inventory\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("%d system%s registered\n\n", resp.Count, plural(resp.Count)))

	for i, sys := range resp.Systems {
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, sys.Name, sys.AIType))
		b.WriteString(fmt.Sprintf("   ID: %s\n", sys.SystemID))
		b.WriteString(fmt.Sprintf("   Domain: %s, Criticality: %s, Owner: %s\n\n",
			sys.Domain, sys.DecisionCriticality, sys.OwnerRole))
	}

	return b.String(), nil
}

// formatTieringHuman formats a tiering result in human-readable format
func formatTieringHuman(result model.TieringResult) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Risk Tier: %s\n", result.RiskTier))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("System: %s\n", result.SystemID))
	b.WriteString(fmt.Sprintf("Total Score: %d\n\n", result.TotalScore))

	dims := make([]string, 0, len(result.ScoreBreakdown))
	for dim := range result.ScoreBreakdown {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	b.WriteString("Score Breakdown:\n")
	for _, dim := range dims {
		b.WriteString(fmt.Sprintf("  %s: %d\n", dim, result.ScoreBreakdown[dim]))
	}

	b.WriteString(fmt.Sprintf("\nJustification: %s\n", result.Justification))
	if len(result.RequiredControls) > 0 {
		b.WriteString("\nRequired Controls:\n")
		for _, control := range result.RequiredControls {
			b.WriteString(fmt.Sprintf("  - %s\n", control))
		}
	}
	b.WriteString(fmt.Sprintf("\nComputed: %s (scoring %s)\n", result.ComputedAt, result.ScoringVersion))

	return b.String(), nil
}

// formatTierListHuman formats a batch of tiering results in human-readable format
func formatTierListHuman(resp *TierListResponse) (string, error) {
	var b strings.Builder

	b.WriteString("Risk Tiering\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("%d system%s tiered\n\n", resp.Count, plural(resp.Count)))

	for _, result := range resp.Results {
		b.WriteString(fmt.Sprintf("  %s  %s (score: %d)\n", result.SystemID, result.RiskTier, result.TotalScore))
	}

	return b.String(), nil
}

// formatRiskHuman formats one lifecycle risk entry in human-readable format
func formatRiskHuman(risk model.LifecycleRiskEntry) (string, error) {
	var b strings.Builder

	b.WriteString("Lifecycle Risk\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("ID: %s\n", risk.RiskID))
	b.WriteString(fmt.Sprintf("System: %s\n", risk.SystemID))
	b.WriteString(fmt.Sprintf("Phase: %s, Vector: %s\n\n", risk.LifecyclePhase, risk.RiskVector))

	b.WriteString(fmt.Sprintf("Statement: %s\n", risk.RiskStatement))
	b.WriteString(fmt.Sprintf("Severity: %d (impact %d x likelihood %d)\n", risk.Severity, risk.Impact, risk.Likelihood))
	if risk.Mitigation != "" {
		b.WriteString(fmt.Sprintf("Mitigation: %s\n", risk.Mitigation))
	}
	b.WriteString(fmt.Sprintf("Owner Role: %s\n", risk.OwnerRole))
	if len(risk.EvidenceLinks) > 0 {
		b.WriteString("Evidence Links:\n")
		for _, link := range risk.EvidenceLinks {
			b.WriteString(fmt.Sprintf("  - %s\n", link))
		}
	}
	b.WriteString(fmt.Sprintf("\nCreated: %s\n", risk.CreatedAt))

	return b.String(), nil
}

// formatRiskListHuman formats the risk register in human-readable format
func formatRiskListHuman(resp *RiskListResponse) (string, error) {
	var b strings.Builder

	b.WriteString("Lifecycle Risk Register\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("%d risk%s recorded\n\n", resp.Count, plural(resp.Count)))

	for i, risk := range resp.Risks {
		b.WriteString(fmt.Sprintf("%d. [severity %2d] %s / %s\n", i+1, risk.Severity, risk.LifecyclePhase, risk.RiskVector))
		b.WriteString(fmt.Sprintf("   %s\n", risk.RiskStatement))
		b.WriteString(fmt.Sprintf("   ID: %s  System: %s\n\n", risk.RiskID, risk.SystemID))
	}

	return b.String(), nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// printResponse formats and prints, exiting on formatting errors.
func printResponse(resp any) {
	out, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(out)
}
