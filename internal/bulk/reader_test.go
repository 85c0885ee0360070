package bulk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// card lays fields out in 8-character columns
func card(fields ...string) string {
	var sb strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&sb, "%-8s", f)
	}
	return sb.String()
}

func read(t *testing.T, lines ...string) *model.Model {
	t.Helper()
	m := model.New(nil)
	if _, err := NewReader(m, 8).Read(strings.NewReader(strings.Join(lines, "\n") + "\n")); err != nil {
		t.Fatalf("Read: %v", err)
	}
	return m
}

func grids(ids ...int) []string {
	var out []string
	for _, id := range ids {
		out = append(out, card("GRID", strconv.Itoa(id), "", strconv.Itoa(id)+".0", "0.0", "0.0"))
	}
	return out
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"1234567890", []string{"12345678", "90"}},
		{"123456789\n", []string{"12345678", "9"}},
		{"GRID           1        -16.889186.0    13.11648\r\n", []string{"GRID", "1", "", "-16.8891", "86.0", "13.11648"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitLine(tt.line, 8)); diff != "" {
			t.Errorf("SplitLine(%q) (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestParseFloatCompressedExponent(t *testing.T) {
	tests := []struct {
		in       string
		expanded string
	}{
		{"1.5-3", "1.5e-3"},
		{"-1.5-3", "-1.5e-3"},
		{"2.+4", "2.e+4"},
		{"-.25+1", "-.25e+1"},
		{"7.123-12", "7.123e-12"},
	}
	for _, tt := range tests {
		got, err := ParseFloat(tt.in)
		if err != nil {
			t.Fatalf("ParseFloat(%q): %v", tt.in, err)
		}
		want, err := strconv.ParseFloat(tt.expanded, 64)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ParseFloat(%q) = %v, want %v", tt.in, got, want)
		}
	}

	plain := map[string]float64{"": 0, "-16.8891": -16.8891, "1.0E+3": 1000, "2.5D-1": 0.25, "42": 42}
	for in, want := range plain {
		got, err := ParseFloat(in)
		if err != nil || got != want {
			t.Errorf("ParseFloat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseFloat("abc"); err == nil {
		t.Error("expected an error for a non-numeric field")
	}
}

func TestGrid(t *testing.T) {
	m := read(t,
		"GRID           1        -16.889186.0    13.11648",
		card("GRID", "2", "", "1.5-3", "-2.+1", ""),
	)
	n, ok := m.Node(1)
	if !ok {
		t.Fatal("node 1 missing")
	}
	if want := [3]float64{-16.8891, 86.0, 13.11648}; n.Coords != want {
		t.Errorf("node 1 coords = %v, want %v", n.Coords, want)
	}
	n2, _ := m.Node(2)
	if want := [3]float64{1.5e-3, -20, 0}; n2.Coords != want {
		t.Errorf("node 2 coords = %v, want %v", n2.Coords, want)
	}
}

func TestElementsAndContinuation(t *testing.T) {
	lines := grids(1, 2, 3, 4, 5, 6, 7, 8, 20, 21)
	lines = append(lines,
		card("CHEXA", "497", "1", "1", "2", "3", "4", "5", "6"),
		card("+", "7", "8"),
		card("CQUAD4", "10", "2", "1", "2", "3", "4", "0", "0.5"),
		card("CBAR", "30", "3", "20", "21", "0.0", "0.0", "1.0"),
	)
	m := read(t, lines...)

	hexa, ok := m.Element(497)
	if !ok {
		t.Fatal("CHEXA 497 missing")
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6, 7, 8}, hexa.NodeIDs); diff != "" {
		t.Errorf("CHEXA nodes (-want +got):\n%s", diff)
	}
	quad, _ := m.Element(10)
	if diff := cmp.Diff([]int{1, 2, 3, 4}, quad.NodeIDs); diff != "" {
		t.Errorf("CQUAD4 nodes (-want +got):\n%s", diff)
	}
	if quad.PropertyID != 2 {
		t.Errorf("CQUAD4 property = %d", quad.PropertyID)
	}

	bars := m.Elements1D()
	if len(bars) != 1 || bars[0].Node1 != 20 || bars[0].Node2 != 21 {
		t.Fatalf("1D elements = %+v", bars)
	}
	if m.InGraph(20) || m.InGraph(21) {
		t.Error("1D element contributed graph edges")
	}
	if !m.Adjacent(1, 8) {
		t.Error("continuation node 8 not connected to node 1")
	}
}

func TestRBE2(t *testing.T) {
	lines := grids(1, 2, 3, 4, 5, 6, 7, 8)
	lines = append(lines,
		card("RBE2", "1", "2", "123456", "3", "4", "5", "6", "7"),
		card("+", "8", "1.0-5"),
		"",
	)
	m := read(t, lines...)
	mpc, ok := m.MPC(1)
	if !ok {
		t.Fatal("RBE2 1 missing")
	}
	if mpc.Config != model.RBE2 || mpc.MasterID != 2 || mpc.DOFs != "123456" {
		t.Errorf("RBE2 = %+v", mpc)
	}
	if diff := cmp.Diff([]int{3, 4, 5, 6, 7, 8}, mpc.SlaveIDs); diff != "" {
		t.Errorf("slaves (-want +got):\n%s", diff)
	}
}

func TestRBE3Deweighting(t *testing.T) {
	lines := grids(1, 2, 3, 4, 5, 6, 9)
	lines = append(lines,
		card("RBE3", "5", "", "9", "123456", "1.0", "123", "1", "2"),
		card("+", "3", "0.5", "123", "4", "5", "6"),
	)
	m := read(t, lines...)
	mpc, ok := m.MPC(5)
	if !ok {
		t.Fatal("RBE3 5 missing")
	}
	if mpc.Config != model.RBE3 || mpc.MasterID != 9 || mpc.DOFs != "123456" {
		t.Errorf("RBE3 = %+v", mpc)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, mpc.SlaveIDs); diff != "" {
		t.Errorf("slaves (-want +got):\n%s", diff)
	}
}

func TestContinuationMatchesSingleLine(t *testing.T) {
	slaves := []string{"3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13"}
	base := grids(2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13)

	single := append(append([]string{}, base...),
		card(append([]string{"RBE2", "1", "2", "123"}, slaves...)...))

	for _, split := range []int{1, 3, 5, 11} {
		split := split
		t.Run(fmt.Sprintf("first line holds %d slaves", split), func(t *testing.T) {
			lines := append(append([]string{}, base...), card(append([]string{"RBE2", "1", "2", "123"}, slaves[:split]...)...))
			rest := slaves[split:]
			for len(rest) > 0 {
				n := 3
				if n > len(rest) {
					n = len(rest)
				}
				lines = append(lines, card(append([]string{"+"}, rest[:n]...)...))
				rest = rest[n:]
			}

			want, _ := read(t, single...).MPC(1)
			got, _ := read(t, lines...).MPC(1)
			if diff := cmp.Diff(want.SlaveIDs, got.SlaveIDs); diff != "" {
				t.Errorf("split record differs from single line (-single +split):\n%s", diff)
			}
		})
	}
}

func TestUnknownNodeIsFatal(t *testing.T) {
	lines := grids(1, 2)
	lines = append(lines, card("CTRIA3", "1", "1", "1", "2", "3"))
	m := model.New(nil)
	_, err := NewReader(m, 8).Read(strings.NewReader(strings.Join(lines, "\n")))
	if !errors.Is(err, model.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}

	m.Reset()
	_, err = NewReader(m, 8).Read(strings.NewReader(strings.Join(append(grids(1), card("RBE2", "1", "7", "123", "1")), "\n")))
	if !errors.Is(err, model.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode for an unknown master, got %v", err)
	}
}

func TestGridAfterReference(t *testing.T) {
	lines := []string{card("CTRIA3", "1", "1", "1", "2", "3")}
	lines = append(lines, grids(1, 2, 3)...)
	m := model.New(nil)
	_, err := NewReader(m, 8).Read(strings.NewReader(strings.Join(lines, "\n")))
	if !errors.Is(err, model.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode for an element before its grids, got %v", err)
	}
	if _, ok := m.Element(1); ok {
		t.Error("element registered despite the failed lookup")
	}
}

func TestSPCAndLoads(t *testing.T) {
	lines := grids(1, 2, 3, 4, 5, 6)
	lines = append(lines,
		card("SPC", "1", "1", "123", "0.0", "2", "3", "0.5"),
		card("SPC1", "1", "123456", "3", "THRU", "5"),
		card("FORCE", "2", "6", "0", "10.0", "0.0", "0.0", "-1.0"),
		card("MOMENT", "2", "6", "", "2.0", "1.0", "0.0", "0.0"),
	)
	m := read(t, lines...)

	var ids []int
	for _, s := range m.SPCs() {
		ids = append(ids, s.NodeID)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, ids); diff != "" {
		t.Errorf("SPC nodes (-want +got):\n%s", diff)
	}
	s2, _ := m.SPC(2)
	if diff := cmp.Diff(map[int]float64{3: 0.5}, s2.DOFs); diff != "" {
		t.Errorf("SPC 2 dofs (-want +got):\n%s", diff)
	}
	s4, _ := m.SPC(4)
	if len(s4.DOFs) != 6 || s4.SystemID != 1 {
		t.Errorf("SPC1 node 4 = %+v", s4)
	}

	loads := m.Loads()
	if len(loads) != 2 {
		t.Fatalf("loads = %+v", loads)
	}
	if loads[0].Kind != model.LoadForce || loads[0].Components != [3]float64{0, 0, -10} {
		t.Errorf("force = %+v", loads[0])
	}
	if loads[1].Kind != model.LoadMoment || loads[1].Components != [3]float64{2, 0, 0} {
		t.Errorf("moment = %+v", loads[1])
	}
}

func TestMalformedField(t *testing.T) {
	m := model.New(nil)
	_, err := NewReader(m, 8).Read(strings.NewReader(card("GRID", "x1", "", "0.0", "0.0", "0.0")))
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Column != 1 || fe.Keyword != "GRID" {
		t.Fatalf("expected a FieldError on GRID column 1, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.fem")
	lines := append(grids(1, 2, 3), card("CTRIA3", "1", "1", "1", "2", "3"))
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := model.New(nil)
	stats, err := ReadFile(path, 8, m)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if stats.Records["GRID"] != 3 || stats.Records["CTRIA3"] != 1 {
		t.Errorf("stats = %+v", stats.Records)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.fem"), 8, model.New(nil)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
