package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/parser"
	"github.com/fredcamaral/patterndeck/internal/domain/services"
	"github.com/fredcamaral/patterndeck/internal/logging"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the rendered deck as a standalone HTML page",
		Long: `Run the deck once and write the resulting HTML document, or with
--outline list the slide headings instead.

Example:
  patterndeck export --output deck.html
  patterndeck export --outline`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Bool("outline", false, "Print the slide headings instead of HTML")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New("export", cfg.Logging)

	pages, err := newPageRenderer(cfg, "")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	page := pages.NewPage()
	if err := services.NewEntrypoint(logger.With("entrypoint")).Run(ctx, page); err != nil {
		return fmt.Errorf("running deck: %w", err)
	}

	document, err := page.Render(ctx)
	if err != nil {
		return fmt.Errorf("rendering deck: %w", err)
	}

	outline, _ := cmd.Flags().GetBool("outline")
	output, _ := cmd.Flags().GetString("output")

	if outline {
		document, err = renderOutline(document)
		if err != nil {
			return err
		}
	}

	if output == "" {
		_, err := cmd.OutOrStdout().Write(document)
		return err
	}

	if err := os.WriteFile(output, document, 0o644); err != nil { // #nosec G306 - exported deck is meant to be shared
		return fmt.Errorf("writing %s: %w", output, err)
	}

	logger.Success("Wrote %d bytes to %s", len(document), output)
	return nil
}

// renderOutline lists each top-level slide as "N. heading"
func renderOutline(document []byte) ([]byte, error) {
	sections, err := parser.ParseSections(string(document))
	if err != nil {
		return nil, fmt.Errorf("reading slides: %w", err)
	}

	var buf bytes.Buffer
	for _, section := range sections {
		fmt.Fprintf(&buf, "%2d. %s\n", section.Index+1, section.Title())
	}
	return buf.Bytes(), nil
}
