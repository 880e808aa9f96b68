package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage patterndeck configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default TOML configuration file",
		Long: `Write the default configuration as TOML. Without --path the global file
~/.config/patterndeck/config.toml is written.`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}
	initCmd.Flags().String("path", "", "Where to write the file (default: global config path)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	showCmd.Flags().String("format", "toml", "Output format: toml or yaml")

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")

	loader := config.NewFileLoader()
	if path == "" {
		path = loader.GetGlobalPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := loader.CreateDefaults(cmd.Context(), path); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	switch format {
	case "toml":
		encoder := toml.NewEncoder(out)
		encoder.Indent = "  "
		return encoder.Encode(cfg)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(cfg)
	default:
		return fmt.Errorf("unknown format %q (must be toml or yaml)", format)
	}
}
