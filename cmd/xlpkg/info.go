package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/output"
)

var asJSON bool

// sheetInfo summarizes one sheet of a package.
type sheetInfo struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Part      string `json:"part"`
	Size      int64  `json:"size"`
	Dimension string `json:"dimension,omitempty"`
	Cells     int    `json:"cells"`
	Comments  int    `json:"comments,omitempty"`
}

type packageInfo struct {
	Path          string      `json:"path"`
	Size          int64       `json:"size"`
	Parts         int         `json:"parts"`
	SharedStrings int         `json:"shared_strings"`
	DefinedNames  int         `json:"defined_names"`
	Sheets        []sheetInfo `json:"sheets"`
}

func infoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [input.xlsx]",
		Short: "Summarize the sheets and parts of a package",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	cfg, done, err := loadConfig()
	if err != nil {
		return err
	}
	defer done()

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("file not found: %s", inputPath)
	}
	archive, err := opc.OpenArchiveBytes(raw)
	if err != nil {
		return err
	}
	wb, err := xlpkg.ReadBytes(raw, cfg.Read)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", inputPath, err)
	}

	info := packageInfo{
		Path:          inputPath,
		Size:          int64(len(raw)),
		Parts:         len(archive.Names()),
		SharedStrings: wb.SharedStrings.Len(),
		DefinedNames:  len(wb.DefinedNames),
	}
	for _, s := range wb.Sheets() {
		si := sheetInfo{Name: s.Name, State: string(s.State), Part: s.PartPath, Size: archive.Size(s.PartPath)}
		// Lazy runs report sizes only.
		if s.IsMaterialized() {
			ws, err := wb.Worksheet(s.Name)
			if err != nil {
				return err
			}
			si.Cells = ws.CellCount()
			si.Comments = len(ws.Comments)
			if first, last, ok := ws.Dimension(); ok {
				si.Dimension = first.String() + ":" + last.String()
			}
		}
		info.Sheets = append(info.Sheets, si)
	}

	if asJSON {
		data, err := output.InfoToJSON(info, pretty)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s, %d parts, %s shared strings, %d defined names\n",
		info.Path, humanize.Bytes(uint64(info.Size)), info.Parts,
		humanize.Comma(int64(info.SharedStrings)), info.DefinedNames)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHEET\tSTATE\tPART\tSIZE\tRANGE\tCELLS")
	for _, si := range info.Sheets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			si.Name, si.State, si.Part, humanize.Bytes(uint64(si.Size)), si.Dimension, humanize.Comma(int64(si.Cells)))
	}
	return tw.Flush()
}
