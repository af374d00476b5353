package main

import (
	"strings"

	"github.com/spf13/cobra"

	"aigov/internal/model"
)

var (
	sysName        string
	sysDescription string
	sysDomain      string
	sysAIType      string
	sysOwner       string
	sysDeployment  string
	sysCriticality string
	sysAutomation  string
	sysSensitivity string
	sysDeps        []string
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Manage the AI system inventory",
}

var systemRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new AI system",
	Long: `Register a new AI system in the inventory.

Classification values:
  --ai-type               ML, LLM, AGENT
  --deployment-mode       INTERNAL_ONLY, BATCH, HUMAN_IN_LOOP, REAL_TIME
  --decision-criticality  LOW, MEDIUM, HIGH
  --automation-level      ADVISORY, HUMAN_APPROVAL, FULLY_AUTOMATED
  --data-sensitivity      PUBLIC, INTERNAL, CONFIDENTIAL, REGULATED_PII

Examples:
  aigov system register --name "Fraud Scorer" --domain payments \
    --ai-type ML --owner-role "Risk Engineering" \
    --deployment-mode REAL_TIME --decision-criticality HIGH \
    --automation-level FULLY_AUTOMATED --data-sensitivity REGULATED_PII \
    --dependency "openai-api"`,
	Run: runSystemRegister,
}

var systemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered AI systems",
	Run:   runSystemList,
}

var systemShowCmd = &cobra.Command{
	Use:   "show <system-id>",
	Short: "Show one AI system",
	Args:  cobra.ExactArgs(1),
	Run:   runSystemShow,
}

var systemUpdateCmd = &cobra.Command{
	Use:   "update <system-id>",
	Short: "Update fields of a registered system",
	Long: `Update fields of a registered system. Only the flags given change; the
merged record is re-validated as a whole. The tiering result is not
recomputed automatically; run "aigov tier compute" afterwards.`,
	Args: cobra.ExactArgs(1),
	Run:  runSystemUpdate,
}

var systemDeleteCmd = &cobra.Command{
	Use:   "delete <system-id>",
	Short: "Delete a system and everything attached to it",
	Long: `Delete a system. Its tiering result and all of its lifecycle risks are
removed in the same transaction, so the next evidence run carries no trace
of the system.`,
	Args: cobra.ExactArgs(1),
	Run:  runSystemDelete,
}

func addClassificationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sysName, "name", "", "System name")
	cmd.Flags().StringVar(&sysDescription, "description", "", "Short description")
	cmd.Flags().StringVar(&sysDomain, "domain", "", "Business domain")
	cmd.Flags().StringVar(&sysAIType, "ai-type", "", "AI type")
	cmd.Flags().StringVar(&sysOwner, "owner-role", "", "Accountable role")
	cmd.Flags().StringVar(&sysDeployment, "deployment-mode", "", "Deployment mode")
	cmd.Flags().StringVar(&sysCriticality, "decision-criticality", "", "Decision criticality")
	cmd.Flags().StringVar(&sysAutomation, "automation-level", "", "Automation level")
	cmd.Flags().StringVar(&sysSensitivity, "data-sensitivity", "", "Data sensitivity")
	cmd.Flags().StringSliceVar(&sysDeps, "dependency", nil, "External dependency (repeatable)")
}

func init() {
	addClassificationFlags(systemRegisterCmd)
	addClassificationFlags(systemUpdateCmd)

	systemCmd.AddCommand(systemRegisterCmd)
	systemCmd.AddCommand(systemListCmd)
	systemCmd.AddCommand(systemShowCmd)
	systemCmd.AddCommand(systemUpdateCmd)
	systemCmd.AddCommand(systemDeleteCmd)
	rootCmd.AddCommand(systemCmd)
}

func runSystemRegister(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	sys, err := model.NewSystem(model.SystemInput{
		Name:                 sysName,
		Description:          sysDescription,
		Domain:               sysDomain,
		AIType:               model.AIType(strings.ToUpper(sysAIType)),
		OwnerRole:            sysOwner,
		DeploymentMode:       model.DeploymentMode(strings.ToUpper(sysDeployment)),
		DecisionCriticality:  model.DecisionCriticality(strings.ToUpper(sysCriticality)),
		AutomationLevel:      model.AutomationLevel(strings.ToUpper(sysAutomation)),
		DataSensitivity:      model.DataSensitivity(strings.ToUpper(sysSensitivity)),
		ExternalDependencies: sysDeps,
	})
	if err != nil {
		fail("registering system", err)
	}
	if err := st.PutSystem(sys); err != nil {
		fail("registering system", err)
	}

	logger.Info("system registered", map[string]any{
		"system_id": sys.SystemID.String(),
		"name":      sys.Name,
	})
	printResponse(sys)
}

func runSystemList(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	systems, err := st.ListSystems()
	if err != nil {
		fail("listing systems", err)
	}
	printResponse(&SystemListResponse{
		Count:   len(systems),
		Systems: systems,
	})
}

func runSystemShow(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	sys, err := st.GetSystem(mustParseID(args[0]))
	if err != nil {
		fail("loading system", err)
	}
	printResponse(sys)
}

func runSystemUpdate(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	var patch model.SystemPatch
	if cmd.Flags().Changed("name") {
		patch.Name = &sysName
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &sysDescription
	}
	if cmd.Flags().Changed("domain") {
		patch.Domain = &sysDomain
	}
	if cmd.Flags().Changed("ai-type") {
		v := model.AIType(strings.ToUpper(sysAIType))
		patch.AIType = &v
	}
	if cmd.Flags().Changed("owner-role") {
		patch.OwnerRole = &sysOwner
	}
	if cmd.Flags().Changed("deployment-mode") {
		v := model.DeploymentMode(strings.ToUpper(sysDeployment))
		patch.DeploymentMode = &v
	}
	if cmd.Flags().Changed("decision-criticality") {
		v := model.DecisionCriticality(strings.ToUpper(sysCriticality))
		patch.DecisionCriticality = &v
	}
	if cmd.Flags().Changed("automation-level") {
		v := model.AutomationLevel(strings.ToUpper(sysAutomation))
		patch.AutomationLevel = &v
	}
	if cmd.Flags().Changed("data-sensitivity") {
		v := model.DataSensitivity(strings.ToUpper(sysSensitivity))
		patch.DataSensitivity = &v
	}
	if cmd.Flags().Changed("dependency") {
		patch.ExternalDependencies = &sysDeps
	}

	updated, err := st.UpdateSystem(mustParseID(args[0]), patch)
	if err != nil {
		fail("updating system", err)
	}

	logger.Info("system updated", map[string]any{
		"system_id": updated.SystemID.String(),
	})
	printResponse(updated)
}

func runSystemDelete(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	id := mustParseID(args[0])
	if err := st.DeleteSystem(id); err != nil {
		fail("deleting system", err)
	}

	logger.Info("system deleted", map[string]any{
		"system_id": id.String(),
	})
	printResponse(map[string]any{"deleted": id})
}
