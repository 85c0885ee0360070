// Package diagram renders parts and force results as images and terminal
// charts.
package diagram

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// ForceChart plots one component of a result series against the subcases of
// m in encounter order. Subcases missing from the series plot as zero. It
// returns an empty string when m has no subcases.
func ForceChart(m *model.Model, series map[int]model.Vec6, component int, caption string) string {
	subcases := m.Subcases()
	if len(subcases) == 0 {
		return ""
	}
	data := make([]float64, len(subcases))
	for i, sc := range subcases {
		data[i] = series[sc.ID][component]
	}
	if len(data) == 1 {
		// a single point has no slope to draw
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Precision(3),
		asciigraph.Caption(fmt.Sprintf("%s %s", caption, model.ComponentNames[component])),
	)
}

// DrawForceBox draws a framed table of the six components of each subcase
func DrawForceBox(m *model.Model, title string, series map[int]model.Vec6) string {
	const cell = 11
	var sb strings.Builder
	width := 10 + 6*(cell+1)

	sb.WriteString(fmt.Sprintf("  ┌%s┐\n", strings.Repeat("─", width)))
	sb.WriteString(fmt.Sprintf("  │ %-*s│\n", width-1, title))
	sb.WriteString(fmt.Sprintf("  ├%s┤\n", strings.Repeat("─", width)))
	sb.WriteString(fmt.Sprintf("  │ %-8s", "Subcase"))
	for _, name := range model.ComponentNames {
		sb.WriteString(fmt.Sprintf(" %*s", cell, name))
	}
	sb.WriteString(" │\n")
	for _, sc := range m.Subcases() {
		v, ok := series[sc.ID]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  │ %-8d", sc.ID))
		for _, f := range v {
			sb.WriteString(fmt.Sprintf(" %*.3f", cell, f))
		}
		sb.WriteString(" │\n")
	}
	sb.WriteString(fmt.Sprintf("  └%s┘\n", strings.Repeat("─", width)))
	return sb.String()
}
