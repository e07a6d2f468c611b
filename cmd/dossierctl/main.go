// Command dossierctl is the operator tool for evidence packs: offline
// verification of issued packs and operator token management.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ctlConfig is the optional YAML config for commands that reach backends.
type ctlConfig struct {
	// RedisURL lets verify compare a pack against the latest issued
	// receipt. Empty skips the receipt check.
	RedisURL string `yaml:"redis_url"`
}

func loadConfig(path string) (ctlConfig, error) {
	var cfg ctlConfig
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "dossierctl",
		Short:         "Operator tooling for evidence packs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config")

	root.AddCommand(newVerifyCmd(&configPath))
	root.AddCommand(newRedactCmd())
	root.AddCommand(newTokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
