package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file, .env, SNAKE_*
environment variables and flags have been applied.

Examples:
  snake config
  snake config > ~/.snake/config.yaml
  SNAKE_TICK_MS=60 snake config`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(_ *cobra.Command, _ []string) error {
	data, err := appCfg.YAML()
	if err != nil {
		return err
	}
	fmt.Printf("# loaded from: %s\n", appCfgSource)
	fmt.Print(string(data))
	return nil
}
