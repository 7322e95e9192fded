package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/document"
	"github.com/jackzampolin/tagsheet/internal/pipeline"
	"github.com/jackzampolin/tagsheet/internal/tagsheet"
)

var buildOpts struct {
	project     string
	client      string
	site        string
	unit        string
	process     string
	processSite string
	processUnit string
	author      string
	out         string
	parts       bool
}

var buildCmd = &cobra.Command{
	Use:   "build <file>...",
	Short: "Extract tags and write the tag sheet workbook",
	Long: `Extract tags from a document and write the tag sheet (.xlsx).

Project details default to the project.* config keys. Without --out the
workbook is written to output.dir, or to the exports directory under the
tagsheet home, using the generated file name.

Examples:
  tagsheet build unit-100.pdf --project "Refinery Upgrade" --site HOU --unit U100
  tagsheet build unit-100.pdf --process "Crude Unit" --out crude.xlsx
  tagsheet build --parts set_part1.pdf set_part2.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) > 1 && !buildOpts.parts {
			return fmt.Errorf("build takes one document; use --parts for a multi-part drawing set")
		}

		env, err := setup()
		if err != nil {
			return err
		}
		defer env.Close()

		var doc *document.Document
		if buildOpts.parts {
			doc, err = document.LoadParts(args)
		} else {
			doc, err = document.Load(args[0])
		}
		if err != nil {
			return err
		}

		project := env.cfg.ProjectInfo()
		override(&project.Name, buildOpts.project)
		override(&project.ClientName, buildOpts.client)
		override(&project.SiteDefault, buildOpts.site)
		override(&project.UnitCodeDefault, buildOpts.unit)

		var process *tagsheet.Process
		if buildOpts.process != "" {
			process = &tagsheet.Process{
				Name:     buildOpts.process,
				Site:     buildOpts.processSite,
				UnitCode: buildOpts.processUnit,
			}
		}

		author := env.cfg.Author
		override(&author, buildOpts.author)

		out, err := env.runner.Generate(ctx, pipeline.GenerateRequest{
			Document: doc,
			Project:  project,
			Process:  process,
			Author:   author,
		})
		if err != nil {
			return err
		}

		path := buildOpts.out
		if path == "" {
			dir := env.cfg.Output.Dir
			if dir == "" {
				dir = env.home.ExportsDir()
			}
			path = filepath.Join(dir, out.Artifact.FileName)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, out.Artifact.Bytes, 0o644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}

		fmt.Printf("Wrote %s (%d tags)\n", path, out.Run.Catalogue.Summary.TotalTags)
		return nil
	},
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildOpts.project, "project", "", "Project name (default: project.name)")
	f.StringVar(&buildOpts.client, "client", "", "Client name (default: project.client_name)")
	f.StringVar(&buildOpts.site, "site", "", "Default site code (default: project.site)")
	f.StringVar(&buildOpts.unit, "unit", "", "Default unit code (default: project.unit_code)")
	f.StringVar(&buildOpts.process, "process", "", "Process name; omitted means all processes")
	f.StringVar(&buildOpts.processSite, "process-site", "", "Process site code")
	f.StringVar(&buildOpts.processUnit, "process-unit", "", "Process unit code")
	f.StringVar(&buildOpts.author, "author", "", "Added By value (default: author)")
	f.StringVar(&buildOpts.out, "out", "", "Output path for the workbook")
	f.BoolVar(&buildOpts.parts, "parts", false, "Treat the files as numbered parts of one document")
	rootCmd.AddCommand(buildCmd)
}
