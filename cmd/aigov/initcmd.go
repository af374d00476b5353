package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aigov/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration to .aigov/config.json",
	Run:   runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.Save(rootFlag); err != nil {
		fail("writing config", err)
	}
	fmt.Printf("Wrote %s/.aigov/config.json\n", rootFlag)
}
