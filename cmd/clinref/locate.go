package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/reference"
)

type locateOutput struct {
	domain.LocateResult
	Highlighted string `json:"highlighted,omitempty"`
}

func newLocateCmd() *cobra.Command {
	var (
		sourcePath string
		startWord  string
		endWord    string
		number     string
	)

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Locate a start/end word pair in a source text",
		Long: `Runs the reference locator and prints the result as JSON.

Without --number the source file is the plain source text. With --number it
is a JSON object mapping citation numbers to source texts, and the entry for
that number is searched.`,
		Example: `  clinref locate --source extract.txt --start "Patients" --end "daily."
  clinref locate --source sources.json --number 3 --start "Offer" --end "review"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(sourcePath)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}

			text := string(data)
			if number != "" {
				var sources domain.SourceDocument
				if err := json.Unmarshal(data, &sources); err != nil {
					return fmt.Errorf("parse source document: %w", err)
				}
				var ok bool
				if text, ok = sources[number]; !ok {
					return fmt.Errorf("no source text for citation %s", number)
				}
			}

			res := reference.Locate(text, startWord, endWord)
			return writeJSON(cmd.OutOrStdout(), locateOutput{
				LocateResult: res,
				Highlighted:  reference.Highlighted(res),
			})
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "Source text file (JSON source document with --number)")
	cmd.Flags().StringVar(&startWord, "start", "", "Start word")
	cmd.Flags().StringVar(&endWord, "end", "", "End word")
	cmd.Flags().StringVar(&number, "number", "", "Citation number to select from a JSON source document")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
