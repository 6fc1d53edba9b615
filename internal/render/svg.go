// SVG timeline rendering: one row per philosopher, colored spans per action.
package render

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"philoscope/internal/event"
	"philoscope/internal/verify"
)

// actionColors is the timeline palette, one color per action.
var actionColors = map[event.Action]string{
	event.ActionForked:   "#9e9e9e",
	event.ActionEating:   "#e34f44",
	event.ActionSleeping: "#4278f5",
	event.ActionThinking: "#78b33e",
	event.ActionDied:     "#7d23eb",
}

const (
	svgWidth   = 1200.0
	marginLeft = 60.0
	marginTop  = 40.0
	rowHeight  = 34.0
	rowGap     = 10.0
	axisHeight = 30.0
)

type svgSpan struct {
	X, W  float64
	Color string
	Title string
}

type svgTick struct {
	X     float64
	Color string
	Title string
}

type svgRow struct {
	ID    int
	Y     float64
	Spans []svgSpan
	Ticks []svgTick
	Marks []svgTick // violation markers
}

type svgDoc struct {
	RunID         string
	Width, Height float64
	RowHeight     float64
	Rows          []svgRow
	AxisY         float64
	AxisLabels    []svgTick
	Verdict       string
	VerdictColor  string
}

var svgTmpl = template.Must(template.New("timeline").Funcs(template.FuncMap{
	"add": func(a, b float64) float64 { return a + b },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" font-family="monospace" font-size="11">
<rect width="100%" height="100%" fill="#ffffff"/>
<text x="10" y="20" font-size="13">philoscope run {{.RunID}} — <tspan fill="{{.VerdictColor}}">{{.Verdict}}</tspan></text>
{{- range .Rows}}
<text x="8" y="{{printf "%.1f" .Y}}" dominant-baseline="hanging">{{.ID}} --</text>
{{- $y := .Y}}
{{- range .Spans}}
<rect x="{{printf "%.1f" .X}}" y="{{printf "%.1f" $y}}" width="{{printf "%.1f" .W}}" height="{{$.RowHeight}}" fill="{{.Color}}"><title>{{.Title}}</title></rect>
{{- end}}
{{- range .Ticks}}
<line x1="{{printf "%.1f" .X}}" y1="{{printf "%.1f" $y}}" x2="{{printf "%.1f" .X}}" y2="{{printf "%.1f" (add $y $.RowHeight)}}" stroke="{{.Color}}" stroke-width="2"><title>{{.Title}}</title></line>
{{- end}}
{{- range .Marks}}
<text x="{{printf "%.1f" .X}}" y="{{printf "%.1f" $y}}" fill="{{.Color}}" font-size="14" text-anchor="middle" dominant-baseline="hanging">✗<title>{{.Title}}</title></text>
{{- end}}
{{- end}}
{{- range .AxisLabels}}
<text x="{{printf "%.1f" .X}}" y="{{printf "%.1f" $.AxisY}}" text-anchor="middle" fill="#555555">{{.Title}}</text>
{{- end}}
</svg>
`))

// WriteSVG renders the normalized timeline as an SVG document: one row per
// philosopher, a colored span per action until the next state change, gray
// ticks for fork acquisitions and markers where violations were flagged.
func WriteSVG(w io.Writer, res *verify.Result) error {
	doc := buildDoc(res)
	return svgTmpl.Execute(w, doc)
}

// WriteSVGFile renders the timeline into path.
func WriteSVGFile(path string, res *verify.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSVG(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func buildDoc(res *verify.Result) svgDoc {
	last := res.Timeline.LastTimestamp()
	if last == 0 {
		last = 1
	}
	scale := (svgWidth - marginLeft - 20) / float64(last)
	x := func(ts int64) float64 { return marginLeft + float64(ts)*scale }

	ids := res.Timeline.IDs()
	doc := svgDoc{
		RunID:        res.RunID,
		Width:        svgWidth,
		RowHeight:    rowHeight,
		Verdict:      "clean",
		VerdictColor: "#2e7d32",
	}
	if !res.Summary.Clean {
		doc.Verdict = fmt.Sprintf("unclean (%d fatal)", res.Summary.FatalCount)
		doc.VerdictColor = "#c62828"
	}

	for i, id := range ids {
		row := svgRow{ID: id, Y: marginTop + float64(i)*(rowHeight+rowGap)}
		events := res.Timeline.Events(id)
		for j, e := range events {
			switch e.Action {
			case event.ActionForked:
				row.Ticks = append(row.Ticks, svgTick{
					X:     x(e.Timestamp),
					Color: actionColors[e.Action],
					Title: fmt.Sprintf("%d ms: %s", e.Timestamp, e.Action.Phrase()),
				})
			case event.ActionDied:
				row.Ticks = append(row.Ticks, svgTick{
					X:     x(e.Timestamp),
					Color: actionColors[e.Action],
					Title: fmt.Sprintf("%d ms: died", e.Timestamp),
				})
			default:
				end := last
				for _, next := range events[j+1:] {
					if next.Action != event.ActionForked {
						end = next.Timestamp
						break
					}
				}
				row.Spans = append(row.Spans, svgSpan{
					X:     x(e.Timestamp),
					W:     maxf(float64(end-e.Timestamp)*scale, 1),
					Color: actionColors[e.Action],
					Title: fmt.Sprintf("%d - %d ms: %s", e.Timestamp, end, e.Action.Phrase()),
				})
			}
		}
		for _, v := range res.Violations.Sorted() {
			if v.PhilosopherID == id {
				row.Marks = append(row.Marks, svgTick{
					X:     x(v.Timestamp),
					Color: "#c62828",
					Title: v.String(),
				})
			}
		}
		doc.Rows = append(doc.Rows, row)
	}

	doc.AxisY = marginTop + float64(len(ids))*(rowHeight+rowGap) + 16
	doc.Height = doc.AxisY + axisHeight
	for i := 0; i <= 10; i++ {
		ts := last * int64(i) / 10
		doc.AxisLabels = append(doc.AxisLabels, svgTick{X: x(ts), Title: fmt.Sprintf("%d", ts)})
	}
	return doc
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
