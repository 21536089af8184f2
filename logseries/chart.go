// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logseries

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	// Register the chart formats.
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/krcore/perflog/logunit"
)

// Title returns the curve title of a result directory: its last path
// element, or the part of it after the last '.' if it has one.
func Title(dir string) string {
	title := filepath.Base(filepath.Clean(dir))
	if i := strings.LastIndex(title, "."); i >= 0 {
		title = title[i+1:]
	}
	return title
}

// LogScaled reports whether the curve titled title is plotted on
// base-10 logarithmic axes. Connection benchmarks span several orders
// of magnitude.
func LogScaled(title string) bool {
	return strings.Contains(title, "connect")
}

var palette = []color.Color{
	rgb(0x268BD2), rgb(0x2AA198), rgb(0x859900), rgb(0xB58900),
	rgb(0xCB4B16), rgb(0xDC322F), rgb(0xD33682), rgb(0x6C71C4),
}

func rgb(c uint32) color.Color {
	return color.NRGBA{uint8(c >> 16), uint8(c >> 8), uint8(c), 0xFF}
}

// CurveColor returns the color of the i'th curve of a chart. The
// palette has eight colors and repeats.
func CurveColor(i int) color.Color {
	return palette[i%len(palette)]
}

// ChartOptions control chart rendering.
type ChartOptions struct {
	// Format is a gonum/plot canvas format: "png", "svg" or "pdf".
	Format string
	// Width and Height are the size of the whole figure. Zero means
	// the default size for the chart.
	Width, Height vg.Length
	// TitlePrefix is prepended to each plot title.
	TitlePrefix string
}

// ChartFormat returns the chart format implied by the extension of
// path, or "png" if it has none.
func ChartFormat(path string) string {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return "png"
}

var (
	throughputAxis = logunit.Axis{Name: "Throughput", Unit: logunit.Throughput}
	latencyAxis    = logunit.Axis{Name: "latency", Unit: logunit.Latency}
	threadAxis     = logunit.Axis{Name: "Thread Number"}
)

// SeriesChart draws ss as one figure of three stacked plots:
// throughput against latency, key against throughput and key against
// latency. Each series is one curve. Curves whose title is log-scaled
// plot the base-10 logarithm of their values.
func SeriesChart(w io.Writer, ss []*Series, opts ChartOptions) error {
	anyLog := false
	for _, s := range ss {
		anyLog = anyLog || LogScaled(s.Title)
	}
	logThpt, logLat := throughputAxis, latencyAxis
	logThpt.Log, logLat.Log = anyLog, anyLog

	thptLat := newPlot(opts.TitlePrefix+"Throughput-Latency", logThpt.Label("x"), logLat.Label("y"))
	keyThpt := newPlot(opts.TitlePrefix+"Thread-Throughput", threadAxis.Label(""), throughputAxis.Label(""))
	keyLat := newPlot(opts.TitlePrefix+"Thread-Latency", threadAxis.Label(""), logLat.Label("y"))

	for i, s := range ss {
		lg := LogScaled(s.Title)
		var keys, thpts, lats []float64
		for _, p := range s.Points() {
			keys = append(keys, float64(p.Key))
			thpts = append(thpts, p.Throughput)
			lats = append(lats, p.Latency)
		}
		clr := CurveColor(i)
		if err := addLine(thptLat, s.Title, clr, xys(thpts, lats, lg, lg)); err != nil {
			return err
		}
		if err := addLine(keyThpt, s.Title, clr, xys(keys, thpts, false, false)); err != nil {
			return err
		}
		if err := addLine(keyLat, s.Title, clr, xys(keys, lats, false, lg)); err != nil {
			return err
		}
	}

	if opts.Width == 0 {
		opts.Width = 6.4 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 3 * 3.2 * vg.Inch
	}
	return render(w, opts, []*plot.Plot{thptLat, keyThpt, keyLat})
}

// TimelineChart draws the timelines in tls as curves of throughput in
// M op/s against epoch. A dashed vertical line marks each trigger.
func TimelineChart(w io.Writer, tls []*Timeline, opts ChartOptions) error {
	const M = 1000 * 1000
	p := newPlot(opts.TitlePrefix+"Timeline", "Timeline (ms)", "Throughput (M op/s)")
	for i, tl := range tls {
		var epochs, thpts []float64
		for _, pt := range tl.Points {
			epochs = append(epochs, float64(pt.Epoch))
			thpts = append(thpts, pt.Throughput/M)
		}
		clr := CurveColor(i)
		if err := addLine(p, tl.Name, clr, xys(epochs, thpts, false, false)); err != nil {
			return err
		}
		if !tl.Triggered || len(thpts) == 0 {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, y := range thpts {
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
		x := float64(tl.TriggerEpoch)
		mark, err := plotter.NewLine(plotter.XYs{{X: x, Y: lo}, {X: x, Y: hi}})
		if err != nil {
			return err
		}
		mark.Color = clr
		mark.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(mark)
	}
	if opts.Width == 0 {
		opts.Width = 6.4 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 4.8 * vg.Inch
	}
	return render(w, opts, []*plot.Plot{p})
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

// addLine adds a curve to p. Curves with no plottable points are
// left out.
func addLine(p *plot.Plot, name string, clr color.Color, pts plotter.XYs) error {
	if len(pts) == 0 {
		return nil
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("curve %s: %w", name, err)
	}
	l.Color = clr
	l.Width = vg.Points(1)
	p.Add(l)
	p.Legend.Add(name, l)
	return nil
}

// xys pairs xs and ys, optionally taking the base-10 logarithm of
// either, and drops pairs that are not finite.
func xys(xs, ys []float64, logX, logY bool) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		x, y := xs[i], ys[i]
		if logX {
			x = math.Log10(x)
		}
		if logY {
			y = math.Log10(y)
		}
		if plotter.CheckFloats(x, y) != nil {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

// render draws plots stacked vertically on one canvas of the
// requested format and writes it to w.
func render(w io.Writer, opts ChartOptions, plots []*plot.Plot) error {
	format := opts.Format
	if format == "" {
		format = "png"
	}
	cw, err := draw.NewFormattedCanvas(opts.Width, opts.Height, format)
	if err != nil {
		return err
	}
	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Millimeter, PadY: 4 * vg.Millimeter,
		PadTop: 2 * vg.Millimeter, PadBottom: 2 * vg.Millimeter,
		PadLeft: 2 * vg.Millimeter, PadRight: 2 * vg.Millimeter,
	}
	canvases := plot.Align(rows, tiles, draw.New(cw))
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}
	if _, err := cw.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s chart: %w", format, err)
	}
	return nil
}
