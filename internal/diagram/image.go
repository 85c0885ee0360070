package diagram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// Plane selects the two coordinates a part plot projects onto
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz"
	PlaneYZ Plane = "yz"
)

func (p Plane) axes() (int, int, error) {
	switch p {
	case PlaneXY, "":
		return 0, 1, nil
	case PlaneXZ:
		return 0, 2, nil
	case PlaneYZ:
		return 1, 2, nil
	default:
		return 0, 0, fmt.Errorf("unknown plane %q, want xy, xz or yz", string(p))
	}
}

// ExportPartsDiagram plots the nodes of every part in its own color and the
// MPC master nodes as black triangles. The format follows the file
// extension (png, svg, pdf); any other extension gets ".png" appended.
func ExportPartsDiagram(m *model.Model, plane Plane, filename string) error {
	a, b, err := plane.axes()
	if err != nil {
		return err
	}
	axisNames := "XYZ"

	p := plot.New()
	p.Title.Text = "Connected Parts"
	p.X.Label.Text = string(axisNames[a])
	p.Y.Label.Text = string(axisNames[b])
	p.Legend.Top = true

	for i, part := range m.Parts() {
		pts := make(plotter.XYs, 0, len(part.NodeIDs))
		for _, nid := range part.NodeIDs {
			n, ok := m.Node(nid)
			if !ok {
				continue
			}
			pts = append(pts, plotter.XY{X: n.Coords[a], Y: n.Coords[b]})
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(2)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("part %d", part.ID), s)
	}

	var masters plotter.XYs
	for _, mpc := range m.MPCs() {
		if n, ok := m.Node(mpc.MasterID); ok {
			masters = append(masters, plotter.XY{X: n.Coords[a], Y: n.Coords[b]})
		}
	}
	if len(masters) > 0 {
		s, err := plotter.NewScatter(masters)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = color.Black
		s.GlyphStyle.Radius = vg.Points(4)
		s.GlyphStyle.Shape = draw.TriangleGlyph{}
		p.Add(s)
		p.Legend.Add("MPC master", s)
	}

	width := 8 * vg.Inch
	height := 6 * vg.Inch

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
