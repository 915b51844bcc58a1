// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pdiddy/codebinder/internal/export"
	"github.com/pdiddy/codebinder/internal/format"
	"github.com/pdiddy/codebinder/internal/scan"
	"github.com/pdiddy/codebinder/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [folder]",
	Short: "Export a folder's files as TXT or PDF artifacts",
	Long: `Export scans the folder (default: the working directory) for allow-listed
files, runs the matching external formatter over each one, and writes the
results into pdf_output/ or txt_output/ under the working directory.

Single mode produces one combined artifact named after the source folder;
separate mode produces one artifact per input file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("mode", "", `artifact grouping: "single" or "separate"`)
	exportCmd.Flags().String("format", "", `artifact format: "pdf" or "txt"`)
	exportCmd.Flags().String("output-dir", "", "directory for artifacts (default: pdf_output/ or txt_output/)")
	exportCmd.Flags().Bool("no-recursive", false, "do not descend into subdirectories")
	exportCmd.Flags().Bool("no-format", false, "skip external formatter invocation")
	exportCmd.Flags().StringSlice("ext", nil, "override the extension allow-list")
	exportCmd.Flags().StringSlice("exclude", nil, "gitignore-style exclude patterns")
	exportCmd.Flags().Bool("manifest", false, "write manifest.yaml next to the artifacts")
	exportCmd.Flags().Bool("force", false, "overwrite existing artifacts without confirmation")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	folder := "."
	if len(args) == 1 {
		folder = args[0]
	}

	cfg := resolveConfig(cmd)
	if err := validateExportConfig(cfg.Export); err != nil {
		return err
	}

	scanner := scan.New(cfg.Scan, logger)
	files, err := scanner.Scan(folder)
	if err != nil {
		return err
	}

	var formatter export.Formatter
	if cfg.Format.Enabled {
		formatter = format.NewInvoker(cfg.Format, logger)
	}
	exporter := export.New(cfg.Export, formatter, logger)

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		ok, err := confirmOverwrite(existingArtifacts(exporter, folder, files))
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Export aborted.")
			return nil
		}
	}

	result, err := exporter.Export(folder, files, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Success: %d artifact(s) created in %s\n",
		len(result.Artifacts), exporter.OutputDir())
	return nil
}

func validateExportConfig(cfg types.ExportConfig) error {
	switch cfg.Mode {
	case "", types.ModeSingle, types.ModeSeparate:
	default:
		return fmt.Errorf("invalid mode %q: use single or separate", cfg.Mode)
	}
	switch cfg.Format {
	case "", types.FormatPDF, types.FormatTXT:
	default:
		return fmt.Errorf("invalid format %q: use pdf or txt", cfg.Format)
	}
	return nil
}

// existingArtifacts returns the planned artifact paths that already exist
// on disk.
func existingArtifacts(exporter *export.Exporter, folder string, files []scan.FileInfo) []string {
	var existing []string
	for _, p := range exporter.PlannedArtifacts(folder, files) {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	return existing
}

// confirmOverwrite asks before overwriting existing target artifacts.
// Non-interactive runs proceed without asking.
func confirmOverwrite(existing []string) (bool, error) {
	if len(existing) == 0 {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true, nil
	}

	fmt.Fprintf(os.Stderr, "%d existing artifact(s) will be overwritten, starting with %s. Overwrite? (y/n): ",
		len(existing), existing[0])
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
