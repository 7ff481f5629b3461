package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envdoctor/configs"
	"github.com/Aman-CERP/envdoctor/internal/config"
	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
)

// newConfigCmd creates the config command group.
func newConfigCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect the configuration envdoctor runs with.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/envdoctor/config.yaml)
  3. Project config (.envdoctor.yaml in the workspace root)
  4. Environment variables (ENVDOCTOR_*)`,
		Example: `  # Show effective configuration
  envdoctor config show

  # Show the built-in defaults as JSON
  envdoctor config show --source defaults --json

  # Print config file paths
  envdoctor config path

  # Start a project config from the annotated example
  envdoctor config example > .envdoctor.yaml`,
	}

	cmd.AddCommand(newConfigShowCmd(ro))
	cmd.AddCommand(newConfigPathCmd(ro))
	cmd.AddCommand(newConfigExampleCmd())

	return cmd
}

func newConfigShowCmd(ro *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, ro, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func runConfigShow(cmd *cobra.Command, ro *rootOptions, jsonOutput bool, source string) error {
	var cfg *config.Config
	switch source {
	case "merged":
		ws, err := ro.workspace()
		if err != nil {
			return err
		}
		if cfg, err = ws.Config(); err != nil {
			return err
		}
	case "defaults":
		cfg = config.NewConfig()
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, fmt.Sprintf("invalid source %q", source), nil).
			WithSuggestion("Use --source merged or --source defaults")
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	return cfg.WriteYAML(cmd.OutOrStdout())
}

func newConfigPathCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config file paths",
		Long:  `Print the user configuration path and the project configuration path for the workspace.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := ro.resolveRoot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "user:    %s\n", config.GetUserConfigPath())
			_, _ = fmt.Fprintf(out, "project: %s\n", filepath.Join(root, config.ProjectConfigFile))
			return nil
		},
	}
}

func newConfigExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an annotated project config",
		Long:  `Print an annotated .envdoctor.yaml listing every setting with its default value.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), configs.ProjectConfigExample)
			return err
		},
	}
}
