package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aigov/internal/model"
	"aigov/internal/register"
)

var (
	riskSystemID   string
	riskPhase      string
	riskVector     string
	riskStatement  string
	riskImpact     int
	riskLikelihood int
	riskMitigation string
	riskOwner      string
	riskLinks      []string
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Manage the lifecycle risk register",
}

var riskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a lifecycle risk entry",
	Long: `Add a lifecycle risk entry for a registered system. Severity is
derived as impact x likelihood, never supplied.

Values:
  --phase   INCEPTION, DATA, DESIGN_BUILD, VALIDATION, DEPLOYMENT,
            OPERATIONS, CHANGE_RETIRE
  --vector  FUNCTIONAL, ROBUSTNESS, SECURITY, BIAS_FAIRNESS,
            INTERPRETABILITY, OPERATIONAL, VENDOR_OPACITY, COMPLIANCE

Examples:
  aigov risk add --system-id <id> --phase OPERATIONS --vector ROBUSTNESS \
    --statement "Feature distribution shift degrades precision" \
    --impact 4 --likelihood 3 --owner-role "ML Platform"`,
	Run: runRiskAdd,
}

var riskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List risk entries, optionally for one system",
	Run:   runRiskList,
}

var riskUpdateCmd = &cobra.Command{
	Use:   "update <risk-id>",
	Short: "Update fields of a risk entry",
	Long: `Update fields of a risk entry. Only the flags given change; severity is
re-derived from the merged impact and likelihood. The owning system cannot
be changed.`,
	Args: cobra.ExactArgs(1),
	Run:  runRiskUpdate,
}

var riskDeleteCmd = &cobra.Command{
	Use:   "delete <risk-id>",
	Short: "Delete one risk entry",
	Args:  cobra.ExactArgs(1),
	Run:   runRiskDelete,
}

var riskMatrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Render the phase x vector risk matrix",
	Long: `Render the full lifecycle-phase by risk-vector matrix. Every cell is
present, including empty ones. With --system-id the matrix covers one
system, otherwise the whole register.`,
	Run: runRiskMatrix,
}

func addRiskFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&riskPhase, "phase", "", "Lifecycle phase")
	cmd.Flags().StringVar(&riskVector, "vector", "", "Risk vector")
	cmd.Flags().StringVar(&riskStatement, "statement", "", "Risk statement")
	cmd.Flags().IntVar(&riskImpact, "impact", 0, "Impact (1-5)")
	cmd.Flags().IntVar(&riskLikelihood, "likelihood", 0, "Likelihood (1-5)")
	cmd.Flags().StringVar(&riskMitigation, "mitigation", "", "Mitigation strategy")
	cmd.Flags().StringVar(&riskOwner, "owner-role", "", "Accountable role")
	cmd.Flags().StringSliceVar(&riskLinks, "evidence-link", nil, "Evidence link (repeatable)")
}

func init() {
	riskAddCmd.Flags().StringVar(&riskSystemID, "system-id", "", "Owning system id (required)")
	addRiskFieldFlags(riskAddCmd)
	addRiskFieldFlags(riskUpdateCmd)
	riskListCmd.Flags().StringVar(&riskSystemID, "system-id", "", "Filter to one system")
	riskMatrixCmd.Flags().StringVar(&riskSystemID, "system-id", "", "Restrict the matrix to one system")

	riskCmd.AddCommand(riskAddCmd)
	riskCmd.AddCommand(riskListCmd)
	riskCmd.AddCommand(riskUpdateCmd)
	riskCmd.AddCommand(riskDeleteCmd)
	riskCmd.AddCommand(riskMatrixCmd)
	rootCmd.AddCommand(riskCmd)
}

func runRiskAdd(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	if riskSystemID == "" {
		fail("adding risk", errUsage("--system-id is required"))
	}
	systemID := mustParseID(riskSystemID)

	// entries must always reference a registered system
	if _, err := st.GetSystem(systemID); err != nil {
		fail("adding risk", err)
	}

	risk, err := model.NewLifecycleRisk(model.RiskInput{
		SystemID:       systemID,
		LifecyclePhase: model.LifecyclePhase(strings.ToUpper(riskPhase)),
		RiskVector:     model.RiskVector(strings.ToUpper(riskVector)),
		RiskStatement:  riskStatement,
		Impact:         riskImpact,
		Likelihood:     riskLikelihood,
		Mitigation:     riskMitigation,
		OwnerRole:      riskOwner,
		EvidenceLinks:  riskLinks,
	})
	if err != nil {
		fail("adding risk", err)
	}
	if err := st.PutRisk(risk); err != nil {
		fail("adding risk", err)
	}

	logger.Info("risk added", map[string]any{
		"risk_id":   risk.RiskID.String(),
		"system_id": risk.SystemID.String(),
		"severity":  risk.Severity,
	})
	printResponse(risk)
}

func runRiskList(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	var (
		risks []model.LifecycleRiskEntry
		err   error
	)
	if riskSystemID != "" {
		risks, err = st.ListRisksForSystem(mustParseID(riskSystemID))
	} else {
		risks, err = st.ListRisks()
	}
	if err != nil {
		fail("listing risks", err)
	}
	printResponse(&RiskListResponse{
		Count: len(risks),
		Risks: risks,
	})
}

func runRiskUpdate(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	var patch model.RiskPatch
	if cmd.Flags().Changed("phase") {
		v := model.LifecyclePhase(strings.ToUpper(riskPhase))
		patch.LifecyclePhase = &v
	}
	if cmd.Flags().Changed("vector") {
		v := model.RiskVector(strings.ToUpper(riskVector))
		patch.RiskVector = &v
	}
	if cmd.Flags().Changed("statement") {
		patch.RiskStatement = &riskStatement
	}
	if cmd.Flags().Changed("impact") {
		patch.Impact = &riskImpact
	}
	if cmd.Flags().Changed("likelihood") {
		patch.Likelihood = &riskLikelihood
	}
	if cmd.Flags().Changed("mitigation") {
		patch.Mitigation = &riskMitigation
	}
	if cmd.Flags().Changed("owner-role") {
		patch.OwnerRole = &riskOwner
	}
	if cmd.Flags().Changed("evidence-link") {
		patch.EvidenceLinks = &riskLinks
	}

	updated, err := st.UpdateRisk(mustParseID(args[0]), patch)
	if err != nil {
		fail("updating risk", err)
	}

	logger.Info("risk updated", map[string]any{
		"risk_id":  updated.RiskID.String(),
		"severity": updated.Severity,
	})
	printResponse(updated)
}

func runRiskDelete(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	id := mustParseID(args[0])
	if err := st.DeleteRisk(id); err != nil {
		fail("deleting risk", err)
	}

	logger.Info("risk deleted", map[string]any{
		"risk_id": id.String(),
	})
	printResponse(map[string]any{"deleted": id})
}

func runRiskMatrix(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	var (
		risks []model.LifecycleRiskEntry
		err   error
	)
	if riskSystemID != "" {
		risks, err = st.ListRisksForSystem(mustParseID(riskSystemID))
	} else {
		risks, err = st.ListRisks()
	}
	if err != nil {
		fail("building matrix", err)
	}

	matrix := register.BuildMatrix(risks)

	if OutputFormat(formatFlag) == FormatHuman {
		fmt.Print(renderMatrixTable(matrix))
		return
	}

	cells := make(map[string]map[string]register.Cell, len(model.AllLifecyclePhases))
	for _, phase := range model.AllLifecyclePhases {
		row := make(map[string]register.Cell, len(model.AllRiskVectors))
		for _, vector := range model.AllRiskVectors {
			row[string(vector)] = matrix.Cell(phase, vector)
		}
		cells[string(phase)] = row
	}
	printResponse(map[string]any{
		"total_risks": len(risks),
		"matrix":      cells,
	})
}

func renderMatrixTable(matrix register.Matrix) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-16s", "phase"))
	for _, vector := range model.AllRiskVectors {
		b.WriteString(fmt.Sprintf(" %14s", string(vector)))
	}
	b.WriteString("\n")

	for _, phase := range model.AllLifecyclePhases {
		b.WriteString(fmt.Sprintf("%-16s", string(phase)))
		for _, vector := range model.AllRiskVectors {
			cell := matrix.Cell(phase, vector)
			b.WriteString(fmt.Sprintf(" %14s", fmt.Sprintf("%d/%d", cell.Count, cell.MaxSeverity)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
