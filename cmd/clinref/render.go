package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clinref/internal/citations"
	"github.com/custodia-labs/clinref/internal/core/domain"
)

func newRenderCmd() *cobra.Command {
	var (
		markdownPath  string
		citationsPath string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render markdown with citation markers to HTML",
		Long: `Runs the citation pipeline over a markdown file and prints the HTML
together with the occurrence count of every citation number. Markers without
metadata in the citations file render as placeholders.`,
		Example: `  clinref render --markdown answer.md --citations citations.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := os.ReadFile(markdownPath)
			if err != nil {
				return fmt.Errorf("read markdown: %w", err)
			}

			var cites domain.CitationMap
			if citationsPath != "" {
				data, err := os.ReadFile(citationsPath)
				if err != nil {
					return fmt.Errorf("read citations: %w", err)
				}
				if err := json.Unmarshal(data, &cites); err != nil {
					return fmt.Errorf("parse citations: %w", err)
				}
			}

			out, err := citations.NewPipeline().Render(string(markdown), cites, nil)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&markdownPath, "markdown", "", "Markdown file")
	cmd.Flags().StringVar(&citationsPath, "citations", "", "JSON file mapping citation numbers to metadata")
	_ = cmd.MarkFlagRequired("markdown")

	return cmd
}
