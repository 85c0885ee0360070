// Package forces reads MPC force and SPC reaction force reports into the
// subcases of a model.Model. Both report kinds share one grammar:
//
//	$SUBCASE 1
//	$TIME 0.0
//	GRID #   X-FORCE      Y-FORCE      Z-FORCE      X-MOMENT     Y-MOMENT     Z-MOMENT
//	--------+------------------------------------------------------------------------
//	       1 -1.00000E-00  1.00000E-00  1.00000E-00  1.00000E-00
package forces

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// FieldWidth is the column width of each force or moment value
const FieldWidth = 13

// defaultIDWidth is used when a table has no "+" in its delimiter row
const defaultIDWidth = 8

// Stats summarizes one report file
type Stats struct {
	Tables int
	Rows   int
}

// ReadFile reads a report file of the given kind into m
func ReadFile(path string, kind model.ForceKind, m *model.Model) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open %s file: %w", kind, err)
	}
	defer f.Close()
	return Read(f, kind, m)
}

// Read scans a report. "$SUBCASE" sets the id of the following "$TIME"
// header, which creates the subcase or reuses an existing one with that id.
// A table under a "$SUBCASE" without its own "$TIME" goes to that id with
// time 0.
// An "X-FORCE" header starts a table: the next row is a delimiter whose "+"
// marks the end of the node id column, and every row after it holds a node
// id and up to six values. Blank rows are skipped; the first row without an
// integer node id ends the table.
func Read(r io.Reader, kind model.ForceKind, m *model.Model) (Stats, error) {
	var (
		stats     Stats
		subcaseID int
		subcase   *model.Subcase
		lines     []string
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read %s file: %w", kind, err)
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "$SUBCASE"):
			id, err := strconv.Atoi(firstToken(strings.TrimPrefix(line, "$SUBCASE")))
			if err != nil {
				return stats, fmt.Errorf("line %d: invalid subcase id: %w", i+1, err)
			}
			subcaseID = id
		case strings.HasPrefix(line, "$TIME"):
			t, err := strconv.ParseFloat(firstToken(strings.TrimPrefix(line, "$TIME")), 64)
			if err != nil {
				return stats, fmt.Errorf("line %d: invalid time: %w", i+1, err)
			}
			subcase = m.EnsureSubcase(subcaseID, t)
		case strings.Contains(line, "X-FORCE"):
			if subcase == nil || subcase.ID != subcaseID {
				m.Diagnose(model.DiagTableWithoutTime,
					fmt.Sprintf("%s table at line %d has no $TIME header, using subcase %d", kind, i+1, subcaseID),
					zap.Int("subcase", subcaseID))
				subcase = m.EnsureSubcase(subcaseID, 0)
			}
			width := defaultIDWidth
			if i+1 < len(lines) {
				switch w := strings.Index(lines[i+1], "+"); {
				case w > 0:
					width = w
				case w == 0:
					m.Diagnose(model.DiagNoDelimiter,
						fmt.Sprintf("%s table at line %d has an empty node id column, assuming a width of %d", kind, i+1, defaultIDWidth))
				default:
					m.Diagnose(model.DiagNoDelimiter,
						fmt.Sprintf("%s table at line %d has no delimiter row, assuming a node id width of %d", kind, i+1, defaultIDWidth))
				}
			}
			next, rows, err := readTable(lines, i+2, width, kind, subcase)
			if err != nil {
				return stats, err
			}
			stats.Tables++
			stats.Rows += rows
			i = next - 1
		}
	}
	return stats, nil
}

// readTable stores the rows starting at line start and returns the index of
// the line that ended the table
func readTable(lines []string, start, width int, kind model.ForceKind, subcase *model.Subcase) (int, int, error) {
	rows := 0
	i := start
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		nodeID, err := strconv.Atoi(strings.TrimSpace(column(line, 0, width)))
		if err != nil {
			break
		}
		var v model.Vec6
		for c := range v {
			s := strings.TrimSpace(column(line, width+c*FieldWidth, FieldWidth))
			if s == "" {
				continue
			}
			if v[c], err = strconv.ParseFloat(s, 64); err != nil {
				return i, rows, fmt.Errorf("line %d: node %d component %d: %w", i+1, nodeID, c+1, err)
			}
		}
		subcase.AddForce(kind, nodeID, v)
		rows++
	}
	return i, rows, nil
}

// column returns line[from:from+width], clipped to the line length
func column(line string, from, width int) string {
	if from >= len(line) {
		return ""
	}
	end := from + width
	if end > len(line) {
		end = len(line)
	}
	return line[from:end]
}

func firstToken(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
