package forces

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

const header = "GRID #   X-FORCE      Y-FORCE      Z-FORCE      X-MOMENT     Y-MOMENT     Z-MOMENT"

func TestReadSingleSubcase(t *testing.T) {
	report := strings.Join([]string{
		"$SUBCASE 1",
		"$TIME 0.0",
		header,
		"--------+-----------------------------------------------------------------------------",
		"       1 -1.00000E-00  1.00000E-00  1.00000E-00  1.00000E-00",
		"       2 -1.00000E-00  1.00000E-00  1.00000E-00               1.00000E-00",
		"",
	}, "\n")

	m := model.New(nil)
	stats, err := Read(strings.NewReader(report), model.MPCForce, m)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if stats.Tables != 1 || stats.Rows != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(m.Subcases()) != 1 {
		t.Fatalf("subcases = %d, want 1", len(m.Subcases()))
	}
	sc, ok := m.Subcase(1)
	if !ok {
		t.Fatal("subcase 1 missing")
	}
	want := map[int]model.Vec6{
		1: {-1, 1, 1, 1, 0, 0},
		2: {-1, 1, 1, 0, 1, 0},
	}
	if diff := cmp.Diff(want, sc.MPCForces); diff != "" {
		t.Errorf("MPC forces (-want +got):\n%s", diff)
	}
	if len(sc.SPCForces) != 0 {
		t.Errorf("SPC forces populated by an MPC report: %v", sc.SPCForces)
	}
}

func TestReadDelimiterSetsIDWidth(t *testing.T) {
	report := strings.Join([]string{
		"$SUBCASE 4",
		"$TIME 1.5",
		header,
		"----------+------------------------------------------",
		"      1001  2.00000E+00 -3.00000E+00",
	}, "\n")

	m := model.New(nil)
	if _, err := Read(strings.NewReader(report), model.SPCForce, m); err != nil {
		t.Fatalf("Read: %v", err)
	}
	sc, _ := m.Subcase(4)
	if sc.Time != 1.5 {
		t.Errorf("time = %v", sc.Time)
	}
	if got := sc.SPCForces[1001]; got != (model.Vec6{2, -3}) {
		t.Errorf("node 1001 = %v", got)
	}
}

func TestReadEndsTableOnNonInteger(t *testing.T) {
	report := strings.Join([]string{
		"$SUBCASE 1",
		"$TIME 0.0",
		header,
		"--------+------------",
		"       1  1.00000E+00",
		"",
		"       2  2.00000E+00",
		"TOTAL     3.00000E+00",
		"       9  9.00000E+00",
		"$SUBCASE 2",
		"$TIME 1.0",
		header,
		"--------+------------",
		"       1  5.00000E+00",
	}, "\n")

	m := model.New(nil)
	stats, err := Read(strings.NewReader(report), model.MPCForce, m)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if stats.Tables != 2 || stats.Rows != 3 {
		t.Errorf("stats = %+v", stats)
	}
	one, _ := m.Subcase(1)
	if diff := cmp.Diff(map[int]model.Vec6{1: {1}, 2: {2}}, one.MPCForces); diff != "" {
		t.Errorf("subcase 1 (-want +got):\n%s", diff)
	}
	two, _ := m.Subcase(2)
	if diff := cmp.Diff(map[int]model.Vec6{1: {5}}, two.MPCForces); diff != "" {
		t.Errorf("subcase 2 (-want +got):\n%s", diff)
	}
}

func TestReadReusesSubcaseAcrossKinds(t *testing.T) {
	mpc := "$SUBCASE 3\n$TIME 2.0\n" + header + "\n--------+----\n       7  1.00000E+00\n"
	spc := "$SUBCASE 3\n$TIME 2.0\n" + header + "\n--------+----\n       8  0.00000E+00  4.00000E+00\n"

	m := model.New(nil)
	if _, err := Read(strings.NewReader(mpc), model.MPCForce, m); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(strings.NewReader(spc), model.SPCForce, m); err != nil {
		t.Fatal(err)
	}
	if len(m.Subcases()) != 1 {
		t.Fatalf("subcases = %d, want 1", len(m.Subcases()))
	}
	sc := m.Subcases()[0]
	if sc.MPCForces[7] != (model.Vec6{1}) || sc.SPCForces[8] != (model.Vec6{0, 4}) {
		t.Errorf("subcase = %+v", sc)
	}
}

func TestReadTableWithoutTime(t *testing.T) {
	report := header + "\n--------+----\n       1  1.00000E+00\n"
	m := model.New(nil)
	if _, err := Read(strings.NewReader(report), model.MPCForce, m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Subcase(0); !ok {
		t.Fatal("table without $TIME was dropped")
	}
	d := m.Diagnostics()
	if len(d) != 1 || d[0].Kind != model.DiagTableWithoutTime {
		t.Errorf("diagnostics = %v", d)
	}
}

func TestReadLaterSubcaseWithoutTime(t *testing.T) {
	report := strings.Join([]string{
		"$SUBCASE 1",
		"$TIME 0.0",
		header,
		"--------+------------",
		"       1  1.00000E+00",
		"$SUBCASE 2",
		header,
		"--------+------------",
		"       1  9.00000E+00",
	}, "\n")

	m := model.New(nil)
	if _, err := Read(strings.NewReader(report), model.MPCForce, m); err != nil {
		t.Fatalf("Read: %v", err)
	}
	one, _ := m.Subcase(1)
	if got := one.MPCForces[1]; got != (model.Vec6{1}) {
		t.Errorf("subcase 1 node 1 = %v, want [1 0 0 0 0 0]", got)
	}
	two, ok := m.Subcase(2)
	if !ok {
		t.Fatal("subcase 2 missing")
	}
	if two.Time != 0 || two.MPCForces[1] != (model.Vec6{9}) {
		t.Errorf("subcase 2 = %+v", two)
	}
	d := m.Diagnostics()
	if len(d) != 1 || d[0].Kind != model.DiagTableWithoutTime || !strings.Contains(d[0].Message, "subcase 2") {
		t.Errorf("diagnostics = %v", d)
	}
}

func TestReadDelimiterMessages(t *testing.T) {
	for _, tc := range []struct {
		name, delimiter, want string
	}{
		{"no plus", "---------------------", "no delimiter row"},
		{"plus at column 0", "+--------------------", "empty node id column"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			report := "$SUBCASE 1\n$TIME 0.0\n" + header + "\n" + tc.delimiter + "\n       1  1.00000E+00\n"
			m := model.New(nil)
			if _, err := Read(strings.NewReader(report), model.MPCForce, m); err != nil {
				t.Fatal(err)
			}
			d := m.Diagnostics()
			if len(d) != 1 || d[0].Kind != model.DiagNoDelimiter || !strings.Contains(d[0].Message, tc.want) {
				t.Errorf("diagnostics = %v", d)
			}
			sc, _ := m.Subcase(1)
			if sc.MPCForces[1] != (model.Vec6{1}) {
				t.Errorf("node 1 = %v", sc.MPCForces[1])
			}
		})
	}
}

func TestReadBadValue(t *testing.T) {
	report := "$SUBCASE 1\n$TIME 0.0\n" + header + "\n--------+----\n       1  1.0000x+00\n"
	if _, err := Read(strings.NewReader(report), model.MPCForce, model.New(nil)); err == nil {
		t.Fatal("expected an error for a malformed value")
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "none.mpcf"), model.MPCForce, model.New(nil))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
