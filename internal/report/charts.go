package report

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/seismowatch/seismo-alert/internal/analysis"
	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// Shared SVG chart geometry.
const (
	chartWidth   = 860.0
	chartHeight  = 440.0
	marginLeft   = 70.0
	marginRight  = 30.0
	marginTop    = 50.0
	marginBottom = 60.0
)

type chartPoint struct {
	X, Y  float64
	Color string
}

type chartTick struct {
	X, Y  float64
	Label string
}

// axisChart carries the frame geometry and labels common to both charts.
// Pixel positions are precomputed here because templates cannot do
// arithmetic.
type axisChart struct {
	Width, Height            float64
	Left, Right, Top, Bottom float64
	MidX, MidY               float64
	LabelX, XTickY, XLabelY  float64
	Title, XLabel, YLabel    string
	XTicks, YTicks           []chartTick
}

func newAxisChart(title, xLabel, yLabel string) axisChart {
	left := marginLeft
	right := chartWidth - marginRight
	top := marginTop
	bottom := chartHeight - marginBottom
	return axisChart{
		Width: chartWidth, Height: chartHeight,
		Left: left, Right: right, Top: top, Bottom: bottom,
		MidX: px(chartWidth / 2), MidY: px((top + bottom) / 2),
		LabelX: left - 8, XTickY: bottom + 20, XLabelY: chartHeight - 14,
		Title: title, XLabel: xLabel, YLabel: yLabel,
	}
}

// xPix maps a [0,1] fraction onto the horizontal plot range.
func (a axisChart) xPix(f float64) float64 {
	return px(a.Left + f*(a.Right-a.Left))
}

// yPix maps a [0,1] fraction onto the vertical plot range, inverted so
// larger values sit higher.
func (a axisChart) yPix(f float64) float64 {
	return px(a.Bottom - f*(a.Bottom-a.Top))
}

func px(v float64) float64 { return math.Round(v*10) / 10 }

type magnitudeTimeData struct {
	axisChart
	Points []chartPoint
}

var magnitudeTimeTemplate = template.Must(template.New("magtime").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" font-family="sans-serif" font-size="12">
<rect width="{{.Width}}" height="{{.Height}}" fill="white"/>
<text x="{{.MidX}}" y="26" text-anchor="middle" font-size="16">{{.Title}}</text>
{{range .YTicks}}<line x1="{{$.Left}}" y1="{{.Y}}" x2="{{$.Right}}" y2="{{.Y}}" stroke="#dddddd"/>
<text x="{{$.LabelX}}" y="{{.Y}}" text-anchor="end" dominant-baseline="middle">{{.Label}}</text>
{{end}}{{range .XTicks}}<text x="{{.X}}" y="{{$.XTickY}}" text-anchor="middle">{{.Label}}</text>
{{end}}<line x1="{{.Left}}" y1="{{.Bottom}}" x2="{{.Right}}" y2="{{.Bottom}}" stroke="black"/>
<line x1="{{.Left}}" y1="{{.Top}}" x2="{{.Left}}" y2="{{.Bottom}}" stroke="black"/>
{{range .Points}}<circle cx="{{.X}}" cy="{{.Y}}" r="4" fill="{{.Color}}" fill-opacity="0.6"/>
{{end}}<text x="{{.MidX}}" y="{{.XLabelY}}" text-anchor="middle">{{.XLabel}}</text>
<text x="18" y="{{.MidY}}" text-anchor="middle" transform="rotate(-90 18 {{.MidY}})">{{.YLabel}}</text>
</svg>
`))

// WriteMagnitudeTime renders a magnitude-versus-time scatter chart of the
// catalog as SVG. Markers use the same severity colors as the map.
func WriteMagnitudeTime(w io.Writer, c catalog.Catalog) error {
	if c.Len() == 0 {
		return fmt.Errorf("magnitude-time chart: empty catalog")
	}

	events := c.SortByTime(false).Events()
	minT := events[0].Time
	maxT := events[len(events)-1].Time
	if !maxT.After(minT) {
		// Degenerate time span; pad an hour each way so the single
		// column of points still lands mid-chart.
		minT = minT.Add(-time.Hour)
		maxT = maxT.Add(time.Hour)
	}

	minMag, maxMag := events[0].Magnitude, events[0].Magnitude
	for _, e := range events[1:] {
		minMag = math.Min(minMag, e.Magnitude)
		maxMag = math.Max(maxMag, e.Magnitude)
	}
	yLo, yHi := minMag-0.5, maxMag+0.5

	d := magnitudeTimeData{axisChart: newAxisChart("Earthquake Magnitude vs. Time", "Time", "Magnitude")}

	span := maxT.Sub(minT).Seconds()
	for _, e := range events {
		fx := e.Time.Sub(minT).Seconds() / span
		fy := (e.Magnitude - yLo) / (yHi - yLo)
		d.Points = append(d.Points, chartPoint{
			X:     d.xPix(fx),
			Y:     d.yPix(fy),
			Color: magnitudeColor(e.Magnitude),
		})
	}

	for m := math.Ceil(yLo); m <= yHi; m++ {
		fy := (m - yLo) / (yHi - yLo)
		d.YTicks = append(d.YTicks, chartTick{Y: d.yPix(fy), Label: fmt.Sprintf("%g", m)})
	}
	d.XTicks = []chartTick{
		{X: d.Left, Label: minT.UTC().Format("2006-01-02 15:04")},
		{X: d.Right, Label: maxT.UTC().Format("2006-01-02 15:04")},
	}

	return magnitudeTimeTemplate.Execute(w, d)
}

// WriteMagnitudeTimeFile renders the magnitude-time chart to the named
// file, creating or truncating it.
func WriteMagnitudeTimeFile(path string, c catalog.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteMagnitudeTime(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type gutenbergRichterData struct {
	axisChart
	Observed           []chartPoint
	FitPoints          string
	FitLabel           string
	ShowMc             bool
	McX                float64
	McLabel            string
	LegendY1, LegendY2 float64
}

var gutenbergRichterTemplate = template.Must(template.New("grchart").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" font-family="sans-serif" font-size="12">
<rect width="{{.Width}}" height="{{.Height}}" fill="white"/>
<text x="{{.MidX}}" y="26" text-anchor="middle" font-size="16">{{.Title}}</text>
{{range .YTicks}}<line x1="{{$.Left}}" y1="{{.Y}}" x2="{{$.Right}}" y2="{{.Y}}" stroke="#dddddd"/>
<text x="{{$.LabelX}}" y="{{.Y}}" text-anchor="end" dominant-baseline="middle">{{.Label}}</text>
{{end}}{{range .XTicks}}<text x="{{.X}}" y="{{$.XTickY}}" text-anchor="middle">{{.Label}}</text>
{{end}}<line x1="{{.Left}}" y1="{{.Bottom}}" x2="{{.Right}}" y2="{{.Bottom}}" stroke="black"/>
<line x1="{{.Left}}" y1="{{.Top}}" x2="{{.Left}}" y2="{{.Bottom}}" stroke="black"/>
<polyline points="{{.FitPoints}}" fill="none" stroke="red" stroke-width="2"/>
{{range .Observed}}<circle cx="{{.X}}" cy="{{.Y}}" r="4" fill="black"/>
{{end}}{{if .ShowMc}}<line x1="{{.McX}}" y1="{{.Top}}" x2="{{.McX}}" y2="{{.Bottom}}" stroke="blue" stroke-width="1.5" stroke-dasharray="6 4"/>
<text x="{{.Right}}" y="{{.LegendY2}}" text-anchor="end" fill="blue">{{.McLabel}}</text>
{{end}}<text x="{{.Right}}" y="{{.LegendY1}}" text-anchor="end" fill="red">{{.FitLabel}}</text>
<text x="{{.MidX}}" y="{{.XLabelY}}" text-anchor="middle">{{.XLabel}}</text>
<text x="18" y="{{.MidY}}" text-anchor="middle" transform="rotate(-90 18 {{.MidY}})">{{.YLabel}}</text>
</svg>
`))

// WriteGutenbergRichter renders the frequency-magnitude distribution as
// SVG: observed cumulative counts (N >= M) on a log axis, the fitted line
// 10^(a - b*M), and the magnitude of completeness as a dashed marker when
// it falls inside the plotted range.
func WriteGutenbergRichter(w io.Writer, c catalog.Catalog, fit analysis.GutenbergRichterResult) error {
	if c.Len() == 0 {
		return fmt.Errorf("gutenberg-richter chart: empty catalog")
	}

	mags := c.Magnitudes()
	sort.Float64s(mags)
	n := len(mags)

	xLo, xHi := mags[0], mags[n-1]
	if xHi == xLo {
		xLo -= 0.5
		xHi += 0.5
	}

	// Cumulative counts per distinct magnitude, in log10 space.
	type obs struct{ mag, logCount float64 }
	var observed []obs
	for i := 0; i < n; {
		m := mags[i]
		j := i
		for j < n && mags[j] == m {
			j++
		}
		observed = append(observed, obs{mag: m, logCount: math.Log10(float64(n - i))})
		i = j
	}

	// Fit line sampled across the magnitude range, also in log10 space.
	const samples = 100
	fitLogs := make([]float64, samples)
	for i := range fitLogs {
		m := xLo + (xHi-xLo)*float64(i)/float64(samples-1)
		fitLogs[i] = fit.AValue - fit.BValue*m
	}

	yLo, yHi := 0.0, math.Log10(float64(n))
	for _, v := range fitLogs {
		yLo = math.Min(yLo, v)
		yHi = math.Max(yHi, v)
	}
	yLo = math.Floor(yLo)
	yHi = math.Ceil(yHi)
	if yHi == yLo {
		yHi++
	}

	d := gutenbergRichterData{
		axisChart: newAxisChart("Gutenberg-Richter Distribution", "Magnitude", "Cumulative Number (N >= M)"),
		FitLabel:  fmt.Sprintf("G-R fit (a=%.2f, b=%.2f)", fit.AValue, fit.BValue),
	}
	d.LegendY1 = d.Top + 18
	d.LegendY2 = d.Top + 36

	fx := func(m float64) float64 { return d.xPix((m - xLo) / (xHi - xLo)) }
	fy := func(v float64) float64 { return d.yPix((v - yLo) / (yHi - yLo)) }

	for _, o := range observed {
		d.Observed = append(d.Observed, chartPoint{X: fx(o.mag), Y: fy(o.logCount)})
	}

	var b strings.Builder
	for i, v := range fitLogs {
		if i > 0 {
			b.WriteByte(' ')
		}
		m := xLo + (xHi-xLo)*float64(i)/float64(samples-1)
		fmt.Fprintf(&b, "%g,%g", fx(m), fy(v))
	}
	d.FitPoints = b.String()

	if fit.Mc >= xLo && fit.Mc <= xHi {
		d.ShowMc = true
		d.McX = fx(fit.Mc)
		d.McLabel = fmt.Sprintf("Mc = %.1f", fit.Mc)
	}

	for k := yLo; k <= yHi; k++ {
		d.YTicks = append(d.YTicks, chartTick{Y: fy(k), Label: fmt.Sprintf("%g", math.Pow(10, k))})
	}
	d.XTicks = []chartTick{
		{X: d.Left, Label: fmt.Sprintf("%.1f", xLo)},
		{X: d.Right, Label: fmt.Sprintf("%.1f", xHi)},
	}

	return gutenbergRichterTemplate.Execute(w, d)
}

// WriteGutenbergRichterFile renders the distribution chart to the named
// file, creating or truncating it.
func WriteGutenbergRichterFile(path string, c catalog.Catalog, fit analysis.GutenbergRichterResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteGutenbergRichter(f, c, fit); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
