// Package report renders charts and persists cleaned tables and run summaries
package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"goeda/domain/core"
	"goeda/internal/analysis"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Default figure size in inches
const (
	DefaultChartWidth  = 10.0
	DefaultChartHeight = 6.0
)

// ChartSpec describes one rendered figure. File is the output path; its
// extension picks the image format.
type ChartSpec struct {
	Title  string  `yaml:"title,omitempty" json:"title,omitempty"`
	XLabel string  `yaml:"x_label,omitempty" json:"x_label,omitempty"`
	YLabel string  `yaml:"y_label,omitempty" json:"y_label,omitempty"`
	File   string  `yaml:"file,omitempty" json:"file,omitempty"`
	Width  float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height float64 `yaml:"height,omitempty" json:"height,omitempty"`
}

func (s ChartSpec) size() (vg.Length, vg.Length) {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = DefaultChartWidth
	}
	if h <= 0 {
		h = DefaultChartHeight
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

func newPlot(spec ChartSpec) *plot.Plot {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, spec ChartSpec) error {
	if spec.File == "" {
		return fmt.Errorf("chart %q has no output file", spec.Title)
	}
	if err := os.MkdirAll(filepath.Dir(spec.File), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	w, h := spec.size()
	if err := p.Save(w, h, spec.File); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", spec.File, err)
	}
	return nil
}

// rotateLongAxis tilts nominal tick labels when there are more than max of them
func rotateLongAxis(p *plot.Plot, labels, max int) {
	if labels > max {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}
}

// LineChart plots a series with markers. Numeric keys are placed on a
// numeric axis; any other keys become evenly spaced nominal ticks.
func LineChart(spec ChartSpec, s *analysis.Series) error {
	if s.Len() == 0 {
		return fmt.Errorf("line chart %q: %w", spec.Title, core.ErrInsufficientData)
	}

	p := newPlot(spec)
	pts := make(plotter.XYs, s.Len())
	numericKeys := true
	for _, k := range s.Keys {
		if !k.IsNumeric() {
			numericKeys = false
			break
		}
	}
	for i := range pts {
		pts[i].X = float64(i)
		if numericKeys {
			pts[i].X = s.Keys[i].Num
		}
		pts[i].Y = s.Values[i]
	}
	if !numericKeys {
		p.NominalX(s.Labels()...)
		rotateLongAxis(p, s.Len(), 12)
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("line chart %q: %w", spec.Title, err)
	}
	line.Color = plotutil.Color(0)
	points.Color = plotutil.Color(0)
	p.Add(line, points)

	return save(p, spec)
}

// BarChart draws one bar per key in series order
func BarChart(spec ChartSpec, s *analysis.Series) error {
	if s.Len() == 0 {
		return fmt.Errorf("bar chart %q: %w", spec.Title, core.ErrInsufficientData)
	}

	p := newPlot(spec)
	bars, err := plotter.NewBarChart(plotter.Values(s.Values), vg.Points(20))
	if err != nil {
		return fmt.Errorf("bar chart %q: %w", spec.Title, err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(s.Labels()...)
	rotateLongAxis(p, s.Len(), 12)

	return save(p, spec)
}

// GroupedBarChart draws one group per row key with a bar per hue value
func GroupedBarChart(spec ChartSpec, ct *analysis.CrossTab) error {
	if len(ct.Rows) == 0 || len(ct.Cols) == 0 {
		return fmt.Errorf("grouped bar chart %q: %w", spec.Title, core.ErrInsufficientData)
	}

	p := newPlot(spec)
	width := vg.Points(16)
	n := len(ct.Cols)
	for j, hue := range ct.ColLabels() {
		values := make(plotter.Values, len(ct.Rows))
		for i := range ct.Rows {
			values[i] = ct.Counts[i][j]
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("grouped bar chart %q: %w", spec.Title, err)
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(j)-float64(n-1)/2) * width
		p.Add(bars)
		p.Legend.Add(fmt.Sprintf("%s=%s", ct.Hue, hue), bars)
	}
	p.Legend.Top = true
	p.NominalX(ct.RowLabels()...)

	return save(p, spec)
}

// Histogram bins values into a fixed number of equal-width bins
func Histogram(spec ChartSpec, values []float64, bins int) error {
	if len(values) == 0 {
		return fmt.Errorf("histogram %q: %w", spec.Title, core.ErrInsufficientData)
	}
	if bins <= 0 {
		bins = 10
	}

	p := newPlot(spec)
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("histogram %q: %w", spec.Title, err)
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)

	return save(p, spec)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first
// label drawn at the top
type corrGrid struct {
	m *analysis.CorrelationMatrix
}

func (g corrGrid) Dims() (c, r int) { return g.m.Size(), g.m.Size() }
func (g corrGrid) Z(c, r int) float64 {
	return g.m.At(g.m.Size()-1-r, c)
}
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }
func (g corrGrid) Min() float64    { return -1 }
func (g corrGrid) Max() float64    { return 1 }

// HeatMap draws an annotated correlation matrix on a blue-red diverging palette
func HeatMap(spec ChartSpec, m *analysis.CorrelationMatrix) error {
	if m.Size() == 0 {
		return fmt.Errorf("heat map %q: %w", spec.Title, core.ErrInsufficientData)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	grid := corrGrid{m: m}
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.NaN = color.Gray{Y: 200}

	p := newPlot(spec)
	p.Add(hm)

	size := m.Size()
	annotations := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, size*size),
		Labels: make([]string, 0, size*size),
	}
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			z := grid.Z(c, r)
			label := "nan"
			if !math.IsNaN(z) {
				label = fmt.Sprintf("%.2f", z)
			}
			annotations.XYs = append(annotations.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			annotations.Labels = append(annotations.Labels, label)
		}
	}
	labels, err := plotter.NewLabels(annotations)
	if err != nil {
		return fmt.Errorf("heat map %q: %w", spec.Title, err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)

	yLabels := make([]string, size)
	for i, l := range m.Labels {
		yLabels[size-1-i] = l
	}
	p.NominalX(m.Labels...)
	p.NominalY(yLabels...)
	rotateLongAxis(p, size, 4)

	return save(p, spec)
}
