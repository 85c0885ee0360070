package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/manuel1618/mpcforces-extractor/internal/combine"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// markBlock is the number of element ids per HyperMesh *createmark command
const markBlock = 1000

// Output file names inside the output directory
const (
	SummaryFile = "summary.txt"
	TCLFile     = "commands.tcl"
	PartMapFile = "parts.json"
)

// PartElements assigns every 2D/3D element to the part of its first node.
// Element ids are sorted per part.
func PartElements(m *model.Model) map[int][]int {
	out := make(map[int][]int)
	for _, e := range m.Elements() {
		if len(e.NodeIDs) == 0 {
			continue
		}
		pid, ok := m.PartOf(e.NodeIDs[0])
		if !ok {
			continue
		}
		out[pid] = append(out[pid], e.ID)
	}
	for _, ids := range out {
		sort.Ints(ids)
	}
	return out
}

// WriteTCL writes HyperMesh commands that move the elements of each part
// into a component named part<ID>
func WriteTCL(w io.Writer, m *model.Model) error {
	byPart := PartElements(m)
	ew := &errWriter{w: w}
	for _, p := range m.Parts() {
		ids := byPart[p.ID]
		if len(ids) == 0 {
			continue
		}
		name := fmt.Sprintf("part%d", p.ID)
		ew.printf("*createentity comps name=%s\n", name)
		for start := 0; start < len(ids); start += markBlock {
			end := min(start+markBlock, len(ids))
			ew.printf("*createmark elements 1 %s\n", joinInts(ids[start:end]))
			ew.printf("*movemark elements 1 %q\n", name)
		}
	}
	return ew.err
}

// PartEntry is one part of the JSON part map
type PartEntry struct {
	ID       int   `json:"id"`
	Nodes    []int `json:"nodes"`
	Elements []int `json:"elements"`
}

// WritePartMap writes the part id to node and element id mapping as JSON
func WritePartMap(w io.Writer, m *model.Model) error {
	byPart := PartElements(m)
	entries := make([]PartEntry, 0, len(m.Parts()))
	for _, p := range m.Parts() {
		elems := byPart[p.ID]
		if elems == nil {
			elems = []int{}
		}
		entries = append(entries, PartEntry{ID: p.ID, Nodes: p.NodeIDs, Elements: elems})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Parts []PartEntry `json:"parts"`
	}{entries})
}

// Export writes the summary, the TCL commands and the part map into dir,
// creating it if needed, and returns the written paths
func Export(dir string, m *model.Model, info Info, combos []combine.LoadCombination) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{SummaryFile, func(w io.Writer) error { return WriteSummary(w, m, info, combos) }},
		{TCLFile, func(w io.Writer) error { return WriteTCL(w, m) }},
		{PartMapFile, func(w io.Writer) error { return WritePartMap(w, m) }},
	}
	var paths []string
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, wr.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func joinInts(ids []int) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(id)
	}
	return strings.Join(s, " ")
}
