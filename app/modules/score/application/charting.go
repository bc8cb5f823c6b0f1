package scoreservice

import (
	"bytes"
	"context"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

var chartPalette = []drawing.Color{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
}

// RenderProgressChart produces a PNG line chart of every team's score history
// for one ledger scope. The x axis is the snapshot index, so all lines share
// the same length by construction.
func (s *ScoreService) RenderProgressChart(ctx context.Context, gameID types.GameID, scope events.LedgerScope) ([]byte, error) {
	ledger, err := s.repo.GetLedger(ctx, nil, gameID, scope)
	if err != nil {
		return nil, err
	}

	teams := make([]types.TeamID, 0, len(ledger.Progress))
	for team := range ledger.Progress {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })

	series := make([]chart.Series, 0, len(teams))
	hasData := false
	for i, team := range teams {
		history := ledger.Progress[team]
		if len(history) < 2 {
			continue
		}
		hasData = true

		xValues := make([]float64, len(history))
		yValues := make([]float64, len(history))
		for j, point := range history {
			xValues[j] = float64(j)
			yValues[j] = float64(point.Value)
		}

		series = append(series, chart.ContinuousSeries{
			Name:    team.String(),
			XValues: xValues,
			YValues: yValues,
			Style: chart.Style{
				StrokeColor: chartPalette[i%len(chartPalette)],
				StrokeWidth: 2,
			},
		})
	}

	if !hasData {
		return renderNoDataPlaceholder()
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name: "Events",
		},
		YAxis: chart.YAxis{
			Name: "Points",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No score history yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
