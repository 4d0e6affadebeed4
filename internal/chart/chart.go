// Package chart draws a session timing log as a deviation plot.
package chart

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	w      = 960.0
	h      = 420.0
	margin = 48.0

	// minRangeMs keeps the vertical scale readable for a log of tight hits.
	minRangeMs = 300.0
)

// Color is an RGB triple in 0..1.
type Color struct {
	R, G, B float64
}

var severityColors = map[contracts.Severity]Color{
	contracts.SeverityOk:      {0.20, 0.70, 0.30},
	contracts.SeverityWarning: {0.95, 0.60, 0.10},
	contracts.SeverityError:   {0.85, 0.15, 0.15},
	contracts.SeverityUnknown: {0.55, 0.55, 0.55},
}

func setRGBColor(dc *gg.Context, c Color) {
	dc.SetRGB(c.R, c.G, c.B)
}

// Render draws one point per entry: entry order on x, deviation in ms on y,
// colored by severity. The band around zero is the tolerance window.
func Render(entries []contracts.TimingEntry) image.Image {
	dc := gg.NewContext(int(w), int(h))
	prepareScreen(dc)

	scale := rangeMs(entries)
	tolerance := 0.0
	for _, e := range entries {
		if e.Verdict.ToleranceMs > 0 {
			tolerance = e.Verdict.ToleranceMs
			break
		}
	}
	drawToleranceBand(dc, tolerance, scale)
	drawAxes(dc, scale)
	drawPoints(dc, entries, scale)
	drawLabels(dc, entries, scale)
	return dc.Image()
}

// WritePNG renders entries and encodes the chart to out.
func WritePNG(out io.Writer, entries []contracts.TimingEntry) error {
	dc := gg.NewContextForImage(Render(entries))
	return dc.EncodePNG(out)
}

// SavePNG renders entries into a PNG file at path.
func SavePNG(path string, entries []contracts.TimingEntry) error {
	dc := gg.NewContextForImage(Render(entries))
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save timing chart %s: %w", path, err)
	}
	return nil
}

func rangeMs(entries []contracts.TimingEntry) float64 {
	r := minRangeMs
	for _, e := range entries {
		r = math.Max(r, math.Abs(e.Verdict.DeviationMs))
	}
	return r
}

// yFor maps a deviation to a pixel row; positive (late) is drawn above zero.
func yFor(dev, scale float64) float64 {
	mid := h / 2
	return mid - dev/scale*(mid-margin)
}

func xFor(i, n int) float64 {
	if n <= 1 {
		return w / 2
	}
	return margin + float64(i)*(w-2*margin)/float64(n-1)
}

func prepareScreen(dc *gg.Context) {
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

func drawToleranceBand(dc *gg.Context, tolerance, scale float64) {
	if tolerance <= 0 {
		return
	}
	top := yFor(math.Min(tolerance, scale), scale)
	bottom := yFor(-math.Min(tolerance, scale), scale)
	dc.SetRGBA(0.20, 0.70, 0.30, 0.12)
	dc.DrawRectangle(margin, top, w-2*margin, bottom-top)
	dc.Fill()
}

func drawAxes(dc *gg.Context, scale float64) {
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, yFor(0, scale), w-margin, yFor(0, scale))
	dc.Stroke()
	dc.DrawLine(margin, margin, margin, h-margin)
	dc.Stroke()

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.SetDash(4, 4)
	for _, dev := range []float64{-scale, -scale / 2, scale / 2, scale} {
		dc.DrawLine(margin, yFor(dev, scale), w-margin, yFor(dev, scale))
		dc.Stroke()
	}
	dc.SetDash()
}

func drawPoints(dc *gg.Context, entries []contracts.TimingEntry, scale float64) {
	for i, e := range entries {
		c, ok := severityColors[e.Verdict.Severity]
		if !ok {
			c = severityColors[contracts.SeverityUnknown]
		}
		x, y := xFor(i, len(entries)), yFor(e.Verdict.DeviationMs, scale)
		setRGBColor(dc, c)
		dc.DrawCircle(x, y, 4)
		dc.FillPreserve()
		setRGBColor(dc, Color{c.R * 0.6, c.G * 0.6, c.B * 0.6})
		dc.Stroke()
	}
}

func drawLabels(dc *gg.Context, entries []contracts.TimingEntry, scale float64) {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 11}))
	dc.SetRGB(0.2, 0.2, 0.2)

	for _, dev := range []float64{-scale, 0, scale} {
		dc.DrawStringAnchored(fmt.Sprintf("%+.0f ms", dev), margin-6, yFor(dev, scale), 1, 0.5)
	}
	dc.DrawStringAnchored("late", w-margin, margin-12, 1, 0.5)
	dc.DrawStringAnchored("early", w-margin, h-margin+12, 1, 0.5)

	onTime := 0
	for _, e := range entries {
		if e.Verdict.Status == contracts.OnTime {
			onTime++
		}
	}
	dc.DrawString(fmt.Sprintf("%d notes, %d on time", len(entries), onTime), margin, 24)
}
