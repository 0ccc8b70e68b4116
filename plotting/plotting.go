// Package plotting renders excitations and responses with gonum/plot.
package plotting

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	width  = 8 * vg.Inch
	height = 6 * vg.Inch
)

// SaveResponse writes a PNG to path with the inputs U in the upper panel and
// the outputs Y in the lower one, both against the time stamps t.
func SaveResponse(path string, t []float64, U, Y [][]float64) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no time stamps to plot", errs.ErrInvalidInput)
	}
	inputs, err := linePlot("Excitation", "u", t, U)
	if err != nil {
		return err
	}
	outputs, err := linePlot("Response", "y", t, Y)
	if err != nil {
		return err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 4 * vg.Millimeter,
	}
	canvases := plot.Align([][]*plot.Plot{{inputs}, {outputs}}, tiles, dc)
	inputs.Draw(canvases[0][0])
	outputs.Draw(canvases[1][0])

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return f.Close()
}

// linePlot returns a plot with one line per row of data, named prefix_row.
func linePlot(title, prefix string, t []float64, data [][]float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = prefix

	lines := make([]interface{}, 0, 2*len(data))
	for row, values := range data {
		pts, err := plottify(t, values)
		if err != nil {
			return nil, fmt.Errorf("%s_%d: %w", prefix, row, err)
		}
		lines = append(lines, fmt.Sprintf("%s_%d", prefix, row), pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, err
	}
	return p, nil
}

func plottify(t, values []float64) (plotter.XYs, error) {
	if len(values) != len(t) {
		return nil, fmt.Errorf("%w: %d values for %d time stamps", errs.ErrDimensionMismatch, len(values), len(t))
	}
	pts := make(plotter.XYs, len(t))
	for i := range pts {
		pts[i].X = t[i]
		pts[i].Y = values[i]
	}
	return pts, nil
}
