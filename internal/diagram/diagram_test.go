package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

func plates(t *testing.T) *model.Model {
	t.Helper()
	m := model.New(nil)
	coords := map[int][3]float64{1: {0, 0, 0}, 2: {1, 0, 0}, 3: {0, 1, 0}, 4: {5, 0, 1}, 5: {6, 0, 1}, 6: {5, 1, 1}, 9: {3, 3, 3}}
	for id, c := range coords {
		m.AddNode(id, c)
	}
	for i, ids := range [][]int{{1, 2, 3}, {4, 5, 6}} {
		if _, err := m.AddElement(i+1, 1, "CTRIA3", ids); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.AddMPC(&model.MPC{ElementID: 7, Config: model.RBE3, MasterID: 9, SlaveIDs: []int{1, 4}}); err != nil {
		t.Fatal(err)
	}
	m.Decompose(true)
	return m
}

func TestExportPartsDiagram(t *testing.T) {
	m := plates(t)
	dir := t.TempDir()
	for _, name := range []string{"parts.png", "parts.svg"} {
		path := filepath.Join(dir, "nested", name)
		if err := ExportPartsDiagram(m, PlaneXZ, path); err != nil {
			t.Fatalf("ExportPartsDiagram(%s): %v", name, err)
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if err := ExportPartsDiagram(m, PlaneXY, filepath.Join(dir, "noext")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "noext.png")); err != nil {
		t.Errorf("default png not written: %v", err)
	}
	if err := ExportPartsDiagram(m, "ab", filepath.Join(dir, "x.png")); err == nil {
		t.Error("expected an error for an unknown plane")
	}
}

func TestForceChart(t *testing.T) {
	m := model.New(nil)
	if got := ForceChart(m, nil, model.FZ, "empty"); got != "" {
		t.Errorf("chart without subcases = %q", got)
	}
	for id := 1; id <= 3; id++ {
		m.EnsureSubcase(id, float64(id))
	}
	series := map[int]model.Vec6{1: {0, 0, -1}, 2: {0, 0, -4}, 3: {0, 0, -2}}
	chart := ForceChart(m, series, model.FZ, "part 1")
	if !strings.Contains(chart, "part 1 FZ") || !strings.Contains(chart, "-4.000") {
		t.Errorf("chart:\n%s", chart)
	}

	single := model.New(nil)
	single.EnsureSubcase(1, 0)
	if got := ForceChart(single, map[int]model.Vec6{1: {5}}, model.FX, "one"); got == "" {
		t.Error("single subcase produced no chart")
	}
}

func TestDrawForceBox(t *testing.T) {
	m := model.New(nil)
	m.EnsureSubcase(1, 0)
	m.EnsureSubcase(2, 1)
	box := DrawForceBox(m, "Cluster 1", map[int]model.Vec6{2: {1.5}})
	lines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("box has %d lines:\n%s", len(lines), box)
	}
	if !strings.Contains(lines[4], "1.500") || strings.Contains(box, "│ 1 ") {
		t.Errorf("box:\n%s", box)
	}
	width := len([]rune(lines[0]))
	for _, l := range lines {
		if len([]rune(l)) != width {
			t.Errorf("ragged line %q", l)
		}
	}
}
