package cmd

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Show the resolved configuration",
		Long: `Print the configuration framedump runs with, as YAML. Values not set in
framecore.yaml (or the file passed with --config) show their defaults.`,
		Usage: "framedump [--config FILE] config",
		Run:   runConfig,
	})
}

func runConfig(env *Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("config takes no arguments, got %q", args[0])
	}
	if env.ModulePath != "" {
		fmt.Fprintf(env.Stdout, "# module: %s\n", env.ModulePath)
	}
	enc := yaml.NewEncoder(env.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(env.Config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
