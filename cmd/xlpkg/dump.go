package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/output"
)

var (
	mode          string
	sheetsDir     string
	printAreasDir string
)

func dumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [input.xlsx]",
		Short: "Export cells, shapes, charts and tables as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runDump,
	}
	addOutputFlag(cmd.Flags(), "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&mode, "mode", "standard", "Extraction mode: light, standard, verbose")
	cmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().StringVar(&printAreasDir, "print-areas-dir", "", "Directory for per-print-area output files")
	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	cfg, done, err := loadConfig()
	if err != nil {
		return err
	}
	defer done()

	opts := cfg.Extract
	if cmd.Flags().Changed("mode") || opts.Mode == "" {
		opts.Mode = xlpkg.ExtractMode(mode)
	}
	switch opts.Mode {
	case xlpkg.ExtractLight, xlpkg.ExtractStandard, xlpkg.ExtractVerbose:
	default:
		return fmt.Errorf("invalid mode: %s (must be light, standard, or verbose)", opts.Mode)
	}

	wb, err := openWorkbook(inputPath, cfg.Read)
	if err != nil {
		return err
	}
	bookName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	data, err := wb.Extract(bookName, opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	jsonData, err := output.ToJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if outputPath != "" || (sheetsDir == "" && printAreasDir == "") {
		if err := writeOutput(jsonData); err != nil {
			return err
		}
	}

	if sheetsDir != "" {
		if err := writeSheetFiles(data, sheetsDir); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}
	if printAreasDir != "" {
		if err := writePrintAreaFiles(data, printAreasDir); err != nil {
			return fmt.Errorf("failed to write print area files: %w", err)
		}
	}
	return nil
}

func writeSheetFiles(wb *models.WorkbookData, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, sheetName := range wb.SheetOrder {
		sheet := wb.Sheets[sheetName]
		jsonData, err := output.SheetToJSON(&sheet, pretty)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, sheetName+".json"), jsonData, 0644); err != nil {
			return err
		}
	}
	return nil
}

func writePrintAreaFiles(wb *models.WorkbookData, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	counts := make(map[string]int)
	for _, view := range xlpkg.PrintAreaViews(wb) {
		counts[view.SheetName]++
		jsonData, err := output.PrintAreaViewToJSON(&view, pretty)
		if err != nil {
			return err
		}
		filename := filepath.Join(dir, fmt.Sprintf("%s_area%d.json", view.SheetName, counts[view.SheetName]))
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}
	return nil
}
