package main

import (
	"github.com/spf13/cobra"

	"aigov/internal/model"
	"aigov/internal/scoring"
)

var (
	tierAll           bool
	tierJustification string
	tierControls      []string
)

var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Compute and inspect risk tiers",
}

var tierComputeCmd = &cobra.Command{
	Use:   "compute [system-id]",
	Short: "Compute the risk tier for one system or all systems",
	Long: `Compute the risk tier from the scoring configuration. Recomputing
replaces the stored result, including any operator annotations.

Examples:
  aigov tier compute 8f14e45f-ceea-4e5b-b0c3-2f2c0e9f1a3d
  aigov tier compute --all`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTierCompute,
}

var tierShowCmd = &cobra.Command{
	Use:   "show <system-id>",
	Short: "Show the stored tiering result for a system",
	Args:  cobra.ExactArgs(1),
	Run:   runTierShow,
}

var tierAnnotateCmd = &cobra.Command{
	Use:   "annotate <system-id>",
	Short: "Edit the justification or control list of a tiering result",
	Long: `Edit the operator-owned fields of a stored tiering result without
recomputing the score. A later "tier compute" replaces the annotations with
the generated defaults.`,
	Args: cobra.ExactArgs(1),
	Run:  runTierAnnotate,
}

func init() {
	tierComputeCmd.Flags().BoolVar(&tierAll, "all", false, "Compute tiers for every registered system")
	tierAnnotateCmd.Flags().StringVar(&tierJustification, "justification", "", "Replacement justification text")
	tierAnnotateCmd.Flags().StringSliceVar(&tierControls, "control", nil, "Replacement control (repeatable, replaces the whole list)")

	tierCmd.AddCommand(tierComputeCmd)
	tierCmd.AddCommand(tierShowCmd)
	tierCmd.AddCommand(tierAnnotateCmd)
	rootCmd.AddCommand(tierCmd)
}

func runTierCompute(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()
	sc := mustLoadScoring(cfg)

	if !tierAll && len(args) == 0 {
		fail("computing tier", errUsage("a system id or --all is required"))
	}

	systems := listTargets(st, args, tierAll)
	results := make([]model.TieringResult, 0, len(systems))
	for _, sys := range systems {
		result, err := scoring.ComputeTier(sys, sc)
		if err != nil {
			fail("computing tier", err)
		}
		if err := st.PutTiering(result); err != nil {
			fail("storing tiering result", err)
		}
		logger.Info("tier computed", map[string]any{
			"system_id": sys.SystemID.String(),
			"tier":      string(result.RiskTier),
			"score":     result.TotalScore,
		})
		results = append(results, result)
	}

	if tierAll {
		printResponse(&TierListResponse{
			Count:   len(results),
			Results: results,
		})
		return
	}
	printResponse(results[0])
}

func runTierShow(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	result, err := st.GetTiering(mustParseID(args[0]))
	if err != nil {
		fail("loading tiering result", err)
	}
	printResponse(result)
}

func runTierAnnotate(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	var justification *string
	var controls *[]string
	if cmd.Flags().Changed("justification") {
		justification = &tierJustification
	}
	if cmd.Flags().Changed("control") {
		controls = &tierControls
	}
	if justification == nil && controls == nil {
		fail("annotating tiering result", errUsage("nothing to change; pass --justification or --control"))
	}

	result, err := st.AnnotateTiering(mustParseID(args[0]), justification, controls)
	if err != nil {
		fail("annotating tiering result", err)
	}

	logger.Info("tiering result annotated", map[string]any{
		"system_id": result.SystemID.String(),
	})
	printResponse(result)
}
