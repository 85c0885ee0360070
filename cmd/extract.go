package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manuel1618/mpcforces-extractor/internal/combine"
	"github.com/manuel1618/mpcforces-extractor/internal/diagram"
	"github.com/manuel1618/mpcforces-extractor/internal/extract"
	"github.com/manuel1618/mpcforces-extractor/internal/metrics"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
	"github.com/manuel1618/mpcforces-extractor/internal/report"
	"github.com/manuel1618/mpcforces-extractor/internal/rigid"
)

var (
	outputDir        string
	metricsFile      string
	extractDiagram   string
	extractPlane     string
	extractShowChart bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Sum MPC forces per part and SPC reactions per cluster",
	Long: `Read a model and its MPC/SPC force reports, split the model into
connected parts and sum the forces of every rigid element per part and
subcase. SPCs are grouped into connected clusters and their reactions summed.

The summary, HyperMesh TCL commands and a JSON part map are written to the
output directory. Load combinations are read from the config file.

Examples:
  mpcforces extract --model model.fem --mpc model.mpcf
  mpcforces extract -m model.fem --mpc model.mpcf --spc model.spcf -o out
  mpcforces extract --config extract.yaml --diagram out/parts.png`,
	Run: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	addInputFlags(extractCmd, true)
	extractCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "Output directory")
	extractCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this file (prometheus text format)")

	// Diagram options
	extractCmd.Flags().StringVar(&extractDiagram, "diagram", "", "Export a part plot to file (png, svg, pdf)")
	extractCmd.Flags().StringVar(&extractPlane, "plane", "xy", "Projection plane of the part plot (xy, xz, yz)")
	extractCmd.Flags().BoolVar(&extractShowChart, "chart", false, "Show ASCII FZ charts over the subcases")
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg, log, err := setup(cmd)
	if err != nil {
		fail("loading config", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec := metrics.New()
	runner := extract.NewRunner(log, rec)
	res, err := runner.Run(ctx, extract.Request{
		ModelPath: cfg.Model,
		MPCPath:   cfg.MPCForces,
		SPCPath:   cfg.SPCForces,
		BlockSize: cfg.BlockSize,
	})
	if cfg.MetricsFile != "" {
		if merr := rec.WriteTextfile(cfg.MetricsFile); merr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write metrics: %v\n", merr)
		}
	}
	if err != nil {
		fail("running extraction", err)
	}

	err = runner.View(func(m *model.Model) error {
		if err := combine.ValidateAll(m, cfg.Combinations); err != nil {
			return fmt.Errorf("invalid load combinations: %w", err)
		}
		info := report.Info{
			RunID:     res.RunID,
			Date:      res.Started,
			ModelPath: cfg.Model,
			MPCPath:   cfg.MPCForces,
			SPCPath:   cfg.SPCForces,
		}
		paths, err := report.Export(cfg.OutputDir, m, info, cfg.Combinations)
		if err != nil {
			return err
		}
		if extractDiagram != "" {
			if err := diagram.ExportPartsDiagram(m, diagram.Plane(extractPlane), extractDiagram); err != nil {
				return fmt.Errorf("failed to export diagram: %w", err)
			}
			paths = append(paths, extractDiagram)
		}
		printExtraction(m, res, paths)
		return nil
	})
	if err != nil {
		fail("writing results", err)
	}
}

func printExtraction(m *model.Model, res *extract.Result, paths []string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("               MPC/SPC FORCE EXTRACTION")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	fmt.Println("MODEL:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	vertices, edges := m.GraphSize()
	fmt.Fprintf(w, "  Run ID:\t%s\n", res.RunID)
	fmt.Fprintf(w, "  Nodes:\t%d\n", m.NodeCount())
	fmt.Fprintf(w, "  Elements (2D/3D):\t%d\n", len(m.Elements()))
	fmt.Fprintf(w, "  Elements (1D):\t%d\n", len(m.Elements1D()))
	fmt.Fprintf(w, "  Graph:\t%d nodes, %d edges\n", vertices, edges)
	fmt.Fprintf(w, "  Parts:\t%d\n", res.Parts)
	fmt.Fprintf(w, "  Rigid Elements:\t%d\n", len(m.MPCs()))
	fmt.Fprintf(w, "  SPC Clusters:\t%d\n", res.Clusters)
	fmt.Fprintf(w, "  Subcases:\t%d\n", res.Subcases)
	w.Flush()
	fmt.Println()

	if len(m.MPCs()) > 0 && len(m.Subcases()) > 0 {
		fmt.Println("MPC FORCES PER PART:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(w, "  MPC\tPart\tSubcase\tFX\tFY\tFZ\tMX\tMY\tMZ\t\n")
		fmt.Fprintf(w, "  ───\t────\t───────\t──\t──\t──\t──\t──\t──\t\n")
		for _, mpc := range m.MPCs() {
			for _, pid := range rigid.ActiveParts(m, mpc) {
				for _, sc := range m.Subcases() {
					v := mpc.Forces[sc.ID][pid]
					fmt.Fprintf(w, "  %d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
						mpc.ElementID, pid, sc.ID, v[0], v[1], v[2], v[3], v[4], v[5])
				}
			}
		}
		w.Flush()
		fmt.Println()
	}

	if extractShowChart && len(m.Subcases()) > 1 {
		for _, mpc := range m.MPCs() {
			for _, pid := range rigid.ActiveParts(m, mpc) {
				series := combine.PartSeries(mpc, pid)
				fmt.Println(diagram.ForceChart(m, series, model.FZ, fmt.Sprintf("MPC %d part %d", mpc.ElementID, pid)))
				fmt.Println()
			}
		}
	}

	if n := len(res.Diagnostics); n > 0 {
		fmt.Println("DIAGNOSTICS:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		counts := make(map[model.DiagnosticKind]int)
		var order []model.DiagnosticKind
		for _, d := range res.Diagnostics {
			if counts[d.Kind] == 0 {
				order = append(order, d.Kind)
			}
			counts[d.Kind]++
		}
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, k := range order {
			fmt.Fprintf(w, "  %s:\t%d\n", k, counts[k])
		}
		w.Flush()
		fmt.Println()
	}

	fmt.Println("OUTPUT:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	for _, p := range paths {
		fmt.Printf("  %s\n", filepath.Clean(p))
	}
	fmt.Printf("  took %.2f s\n", res.Elapsed.Seconds())
	fmt.Println()
}
