package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "dev"

	// BuildDate is set during build
	BuildDate = "unknown"
)

// rootCmd represents the base command
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterndeck",
		Short: "Serve the Abstract Factory slide deck",
		Long: `patterndeck serves a ten-slide presentation about the Abstract Factory
design pattern as a reveal.js page. Browsers that open the page together
can follow each other's navigation.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build Date: ` + BuildDate + `
`)

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default: ./patterndeck.toml, then ~/.config/patterndeck/config.toml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")

	cmd.AddCommand(newServeCmd(), newExportCmd(), newConfigCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
