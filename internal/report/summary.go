// Package report writes extraction results as a plain-text summary, HyperMesh
// TCL commands and a JSON part map.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/manuel1618/mpcforces-extractor/internal/combine"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
	"github.com/manuel1618/mpcforces-extractor/internal/rigid"
)

// firstSlaves is the number of slave ids listed per part to help locate it
const firstSlaves = 5

// Info describes the run a summary belongs to
type Info struct {
	RunID     string
	Date      time.Time
	ModelPath string
	MPCPath   string
	SPCPath   string
}

// WriteSummary writes the per-MPC and per-SPC-cluster force summary.
// Parts holding none of an MPC's slaves are omitted. When combos is not
// empty every block is followed by the factored values of each combination.
func WriteSummary(w io.Writer, m *model.Model, info Info, combos []combine.LoadCombination) error {
	ew := &errWriter{w: w}
	ew.printf("Summary of the MPC forces extraction\n")
	ew.printf("Date: %s\n", info.Date.Format("2006-01-02 15:04:05"))
	if info.RunID != "" {
		ew.printf("Run ID: %s\n", info.RunID)
	}
	ew.printf("Input FEM file: %s\n", info.ModelPath)
	ew.printf("Input MPC forces file: %s\n", orNone(info.MPCPath))
	ew.printf("Input SPC forces file: %s\n", orNone(info.SPCPath))
	ew.printf("\n")

	for _, mpc := range m.MPCs() {
		writeMPC(ew, m, mpc, combos)
	}
	for _, c := range m.Clusters() {
		writeCluster(ew, m, c, combos)
	}
	return ew.err
}

func writeMPC(ew *errWriter, m *model.Model, mpc *model.MPC, combos []combine.LoadCombination) {
	ew.printf("Rigid Element ID: %d\n", mpc.ElementID)
	ew.printf("  MPC Config: %s\n", mpc.Config)

	slaves := make(map[int]bool, len(mpc.SlaveIDs))
	for _, id := range mpc.SlaveIDs {
		slaves[id] = true
	}
	for _, l := range m.Loads() {
		if l.NodeID == mpc.MasterID {
			ew.printf("  %s at Master ID: %d; %s\n", l.Kind, l.SetID, components(l.Components))
		}
		if slaves[l.NodeID] {
			ew.printf("  %s at Slave ID: %d; %s\n", l.Kind, l.SetID, components(l.Components))
		}
	}
	for _, e := range m.Elements1D() {
		if e.Has(mpc.MasterID) {
			ew.printf("  1D Element ID: %d associated with the master Node\n", e.ID)
		}
	}

	ew.printf("  Master Node ID: %d\n", mpc.MasterID)
	if n, ok := m.Node(mpc.MasterID); ok {
		ew.printf("  Master Node Coords: %s\n", components(n.Coords))
	}
	ew.printf("  Slave Nodes: %d\n", len(mpc.SlaveIDs))

	partSlaves := rigid.PartSlaves(m, mpc)
	for _, pid := range rigid.ActiveParts(m, mpc) {
		ids := partSlaves[pid]
		head := ids
		if len(head) > firstSlaves {
			head = head[:firstSlaves]
		}
		ew.printf("  Part ID: %d\n", pid)
		ew.printf("    First %d Slave Nodes for Location %v\n", firstSlaves, head)
		ew.printf("    Slave Nodes: %d\n", len(ids))

		series := combine.PartSeries(mpc, pid)
		writeSeries(ew, m, series)
		writeCombinations(ew, series, combos)
	}
	ew.printf("\n")
}

func writeCluster(ew *errWriter, m *model.Model, c *model.SPCCluster, combos []combine.LoadCombination) {
	ew.printf("SPC Cluster ID: %d\n", c.ID)
	ew.printf("  SPC Nodes: %d %v\n", len(c.SPCs), c.NodeIDs())
	writeSeries(ew, m, c.Forces)
	writeCombinations(ew, c.Forces, combos)
	ew.printf("\n")
}

// writeSeries prints one row per subcase in encounter order
func writeSeries(ew *errWriter, m *model.Model, series map[int]model.Vec6) {
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "    Subcase\tTime\t%s\t\n", strings.Join(model.ComponentNames[:], "\t"))
	for _, sc := range m.Subcases() {
		v, ok := series[sc.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "    %d\t%g\t%s\t\n", sc.ID, sc.Time, row(v))
	}
	tw.Flush()
}

func writeCombinations(ew *errWriter, series map[int]model.Vec6, combos []combine.LoadCombination) {
	if len(combos) == 0 {
		return
	}
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "    Combination\t%s\t\n", strings.Join(model.ComponentNames[:], "\t"))
	for _, lc := range combos {
		fmt.Fprintf(tw, "    %s\t%s\t\n", lc.ID, row(lc.Factored(series)))
	}
	lo, hi := combine.Envelope(series, combos)
	fmt.Fprintf(tw, "    Envelope min\t%s\t\n", row(lo))
	fmt.Fprintf(tw, "    Envelope max\t%s\t\n", row(hi))
	tw.Flush()
	if v, lc, ok := combine.Governing(series, combos, model.FZ); ok {
		ew.printf("    Governing FZ: %.3f (%s: %s)\n", v, lc.ID, lc.Label())
	}
}

func row(v model.Vec6) string {
	cells := make([]string, len(v))
	for i, f := range v {
		cells[i] = strconv.FormatFloat(f, 'f', 3, 64)
	}
	return strings.Join(cells, "\t")
}

// components prints a vector rounded to three decimals, "0,0,-10"
func components(v [3]float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func orNone(path string) string {
	if path == "" {
		return "(none)"
	}
	return path
}

// errWriter keeps the first write error so callers check once
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

func (ew *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(ew, format, args...)
}
