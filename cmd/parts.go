package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manuel1618/mpcforces-extractor/internal/diagram"
	"github.com/manuel1618/mpcforces-extractor/internal/extract"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
	"github.com/manuel1618/mpcforces-extractor/internal/report"
)

var (
	partsTCLFile     string
	partsJSONFile    string
	partsDiagramFile string
	partsPlane       string
)

var partsCmd = &cobra.Command{
	Use:   "parts",
	Short: "List the connected parts of a model",
	Long: `Split a model into connected parts and list them. Two nodes belong to
the same part when a chain of 2D/3D elements links them; 1D elements and
rigid elements do not connect parts.

Examples:
  mpcforces parts --model model.fem
  mpcforces parts -m model.fem --tcl parts.tcl --json parts.json
  mpcforces parts -m model.fem --diagram parts.svg --plane xz`,
	Run: runParts,
}

func init() {
	rootCmd.AddCommand(partsCmd)

	addInputFlags(partsCmd, false)
	partsCmd.Flags().StringVar(&partsTCLFile, "tcl", "", "Write HyperMesh TCL commands to this file")
	partsCmd.Flags().StringVar(&partsJSONFile, "json", "", "Write the part map as JSON to this file")
	partsCmd.Flags().StringVar(&partsDiagramFile, "diagram", "", "Export a part plot to file (png, svg, pdf)")
	partsCmd.Flags().StringVar(&partsPlane, "plane", "xy", "Projection plane of the part plot (xy, xz, yz)")
}

func runParts(cmd *cobra.Command, args []string) {
	cfg, log, err := setup(cmd)
	if err != nil {
		fail("loading config", err)
	}
	defer log.Sync()

	runner := extract.NewRunner(log, nil)
	if _, err := runner.Run(context.Background(), extract.Request{ModelPath: cfg.Model, BlockSize: cfg.BlockSize}); err != nil {
		fail("reading model", err)
	}

	err = runner.View(func(m *model.Model) error {
		printParts(m)
		if partsTCLFile != "" {
			if err := writeTo(partsTCLFile, func(w io.Writer) error { return report.WriteTCL(w, m) }); err != nil {
				return err
			}
			fmt.Printf("  TCL commands written to %s\n", partsTCLFile)
		}
		if partsJSONFile != "" {
			if err := writeTo(partsJSONFile, func(w io.Writer) error { return report.WritePartMap(w, m) }); err != nil {
				return err
			}
			fmt.Printf("  Part map written to %s\n", partsJSONFile)
		}
		if partsDiagramFile != "" {
			if err := diagram.ExportPartsDiagram(m, diagram.Plane(partsPlane), partsDiagramFile); err != nil {
				return fmt.Errorf("failed to export diagram: %w", err)
			}
			fmt.Printf("  Diagram exported to %s\n", partsDiagramFile)
		}
		return nil
	})
	if err != nil {
		fail("writing parts", err)
	}
}

func printParts(m *model.Model) {
	byPart := report.PartElements(m)

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                   CONNECTED PARTS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Part\tNodes\tElements\tFirst Nodes\n")
	fmt.Fprintf(w, "  ────\t─────\t────────\t───────────\n")
	for _, p := range m.Parts() {
		head := p.NodeIDs
		if len(head) > 5 {
			head = head[:5]
		}
		fmt.Fprintf(w, "  %d\t%d\t%d\t%v\n", p.ID, len(p.NodeIDs), len(byPart[p.ID]), head)
	}
	w.Flush()
	fmt.Println()
}

func writeTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
