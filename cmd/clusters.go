package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manuel1618/mpcforces-extractor/internal/diagram"
	"github.com/manuel1618/mpcforces-extractor/internal/extract"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

var clustersShowBox bool

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Group SPCs into connected clusters and sum their reactions",
	Long: `Group the SPC-constrained nodes of a model into clusters of nodes linked
directly by element edges. A constrained node without elements forms a
cluster of its own. With an SPC force report, the reactions of every
cluster are summed per subcase.

Examples:
  mpcforces clusters --model model.fem
  mpcforces clusters -m model.fem --spc model.spcf --box`,
	Run: runClusters,
}

func init() {
	rootCmd.AddCommand(clustersCmd)

	addInputFlags(clustersCmd, true)
	clustersCmd.Flags().BoolVar(&clustersShowBox, "box", false, "Show a framed reaction table per cluster")
}

func runClusters(cmd *cobra.Command, args []string) {
	cfg, log, err := setup(cmd)
	if err != nil {
		fail("loading config", err)
	}
	defer log.Sync()

	runner := extract.NewRunner(log, nil)
	_, err = runner.Run(context.Background(), extract.Request{
		ModelPath: cfg.Model,
		SPCPath:   cfg.SPCForces,
		BlockSize: cfg.BlockSize,
	})
	if err != nil {
		fail("running extraction", err)
	}

	runner.View(func(m *model.Model) error {
		printClusters(m)
		return nil
	})
}

func printClusters(m *model.Model) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                      SPC CLUSTERS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Cluster\tSPCs\tNodes\n")
	fmt.Fprintf(w, "  ───────\t────\t─────\n")
	for _, c := range m.Clusters() {
		fmt.Fprintf(w, "  %d\t%d\t%v\n", c.ID, len(c.SPCs), c.NodeIDs())
	}
	w.Flush()
	fmt.Println()

	if len(m.Subcases()) == 0 {
		return
	}
	if clustersShowBox {
		for _, c := range m.Clusters() {
			fmt.Print(diagram.DrawForceBox(m, fmt.Sprintf("SPC Cluster %d", c.ID), c.Forces))
		}
		fmt.Println()
		return
	}

	fmt.Println("REACTIONS:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "  Cluster\tSubcase\tFX\tFY\tFZ\tMX\tMY\tMZ\t\n")
	fmt.Fprintf(w, "  ───────\t───────\t──\t──\t──\t──\t──\t──\t\n")
	for _, c := range m.Clusters() {
		for _, sc := range m.Subcases() {
			v := c.Forces[sc.ID]
			fmt.Fprintf(w, "  %d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
				c.ID, sc.ID, v[0], v[1], v[2], v[3], v[4], v[5])
		}
	}
	w.Flush()
	fmt.Println()
}
