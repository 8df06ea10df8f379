package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/RyanBlaney/fsprobe/estimator"
)

var (
	psdColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	bandColor = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	peakColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PlotPSD draws the PSD behind result with the search band and the detected
// peak marked. The image format follows the extension of path (png, svg, pdf...).
func PlotPSD(result *estimator.Result, path string) error {
	if result == nil || result.PSD == nil {
		return fmt.Errorf("no spectrum to plot")
	}
	psd := result.PSD

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s PSD, %d x %d samples", psd.Method, psd.Segments, psd.SegmentLength)
	p.X.Label.Text = "Frequency (cycles/sample)"
	p.Y.Label.Text = "Power density"
	p.Add(plotter.NewGrid())

	// show the band with a margin on either side
	p.X.Min = 0
	p.X.Max = math.Min(psd.SampleRate/2, 2*result.Band.High)

	pts := make(plotter.XYs, 0, len(psd.Freqs))
	maxPower := 0.0
	for i, f := range psd.Freqs {
		if f > p.X.Max {
			break
		}
		pts = append(pts, plotter.XY{X: f, Y: psd.Power[i]})
		maxPower = math.Max(maxPower, psd.Power[i])
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("psd line: %w", err)
	}
	line.Color = psdColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("PSD", line)

	for i, edge := range []float64{result.Band.Low, result.Band.High} {
		marker, err := plotter.NewLine(plotter.XYs{{X: edge, Y: 0}, {X: edge, Y: maxPower}})
		if err != nil {
			return fmt.Errorf("band marker: %w", err)
		}
		marker.Color = bandColor
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(marker)
		if i == 0 {
			p.Legend.Add("search band", marker)
		}
	}

	peak, err := plotter.NewScatter(plotter.XYs{{X: result.PeakFrequency, Y: result.PeakPower}})
	if err != nil {
		return fmt.Errorf("peak marker: %w", err)
	}
	peak.GlyphStyle.Color = peakColor
	peak.GlyphStyle.Shape = draw.CircleGlyph{}
	peak.GlyphStyle.Radius = vg.Points(4)
	p.Add(peak)
	p.Legend.Add(fmt.Sprintf("peak %.5f -> %.2f FPS", result.PeakFrequency, result.SampleRate), peak)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
