package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg"
)

var (
	sheetName string
	at        int
	count     int
	cloneAs   string
)

// edit is one structural operation exposed as a subcommand.
type edit struct {
	use   string
	short string
	apply func(wb *xlpkg.Workbook, sheet string, at, count int) error
}

var edits = []edit{
	{"insert-rows", "Insert empty rows before --at", (*xlpkg.Workbook).InsertRows},
	{"remove-rows", "Remove rows starting at --at", (*xlpkg.Workbook).RemoveRows},
	{"insert-cols", "Insert empty columns before --at", (*xlpkg.Workbook).InsertColumns},
	{"remove-cols", "Remove columns starting at --at", (*xlpkg.Workbook).RemoveColumns},
}

func editCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(edits))
	for _, e := range edits {
		cmd := &cobra.Command{
			Use:   e.use + " [input.xlsx]",
			Short: e.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEdit(args[0], e)
			},
		}
		addOutputFlag(cmd.Flags(), "Output package path (default: overwrite input)")
		cmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet to edit")
		cmd.Flags().IntVar(&at, "at", 1, "1-based row or column index")
		cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of rows or columns")
		_ = cmd.MarkFlagRequired("sheet")
		cmds = append(cmds, cmd)
	}
	return cmds
}

func runEdit(inputPath string, e edit) error {
	cfg, done, err := loadConfig()
	if err != nil {
		return err
	}
	defer done()

	wb, err := openWorkbook(inputPath, cfg.Read)
	if err != nil {
		return err
	}
	if err := e.apply(wb, sheetName, at, count); err != nil {
		return fmt.Errorf("%s failed: %w", e.use, err)
	}
	return save(wb, inputPath)
}

func copyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy [input.xlsx]",
		Short: "Rewrite a package, optionally duplicating a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, done, err := loadConfig()
			if err != nil {
				return err
			}
			defer done()

			wb, err := openWorkbook(args[0], cfg.Read)
			if err != nil {
				return err
			}
			if cloneAs != "" {
				if sheetName == "" {
					return fmt.Errorf("--clone-as requires --sheet")
				}
				if _, err := wb.CloneSheet(sheetName, cloneAs); err != nil {
					return fmt.Errorf("clone failed: %w", err)
				}
			}
			return save(wb, args[0])
		},
	}
	addOutputFlag(cmd.Flags(), "Output package path (default: overwrite input)")
	cmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet to duplicate")
	cmd.Flags().StringVar(&cloneAs, "clone-as", "", "Name of the duplicated sheet")
	return cmd
}

func save(wb *xlpkg.Workbook, inputPath string) error {
	path := outputPath
	if path == "" {
		path = inputPath
	}
	if err := wb.Save(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
