package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/api"
	"github.com/jackzampolin/tagsheet/internal/document"
	"github.com/jackzampolin/tagsheet/internal/tags"
)

var (
	extractParts   bool
	extractSummary bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Extract P&ID tags from documents",
	Long: `Extract engineering tags from one or more documents and print the
catalogue.

Supported inputs: .pdf, .txt (form feed separates pages) and .json page text.
Several files are extracted as a batch on a worker pool (batch.workers).
With --parts the files are numbered parts of one drawing set and are
concatenated into a single document.

Examples:
  tagsheet extract unit-100.pdf
  tagsheet extract -o json unit-100.pdf > catalogue.json
  tagsheet extract --summary drawings/*.pdf
  tagsheet extract --parts set_part1.pdf set_part2.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := setup()
		if err != nil {
			return err
		}
		defer env.Close()

		if extractParts {
			doc, err := document.LoadParts(args)
			if err != nil {
				return err
			}
			run, err := env.runner.Extract(ctx, doc)
			if err != nil {
				return err
			}
			return outputCatalogue(run.ID, run.Catalogue)
		}

		if len(args) == 1 {
			run, err := env.runner.ExtractFile(ctx, args[0])
			if err != nil {
				return err
			}
			return outputCatalogue(run.ID, run.Catalogue)
		}

		results, err := env.runner.ExtractBatch(ctx, args)
		if err != nil {
			return err
		}

		out := make([]batchEntry, 0, len(results))
		failed := 0
		for _, res := range results {
			entry := batchEntry{Path: res.Path}
			if res.Err != nil {
				entry.Error = res.Err.Error()
				failed++
			} else {
				entry.RunID = res.Run.ID
				entry.Summary = &res.Run.Catalogue.Summary
				if !extractSummary {
					entry.Catalogue = res.Run.Catalogue
				}
			}
			out = append(out, entry)
		}
		if err := api.Output(out); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	},
}

type batchEntry struct {
	Path      string          `json:"path" yaml:"path"`
	RunID     string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Summary   *tags.Summary   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Catalogue *tags.Catalogue `json:"catalogue,omitempty" yaml:"catalogue,omitempty"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func outputCatalogue(id string, cat *tags.Catalogue) error {
	if extractSummary {
		return api.Output(map[string]any{
			"id":       id,
			"document": cat.Document,
			"summary":  cat.Summary,
		})
	}
	return api.Output(cat)
}

func init() {
	extractCmd.Flags().BoolVar(&extractParts, "parts", false, "Treat the files as numbered parts of one document")
	extractCmd.Flags().BoolVar(&extractSummary, "summary", false, "Print only document metadata and tag counts")
	rootCmd.AddCommand(extractCmd)
}
