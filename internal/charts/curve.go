// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
)

// curveBuckets covers mana values 0 through 6, with everything higher
// folded into the 7+ bucket.
const curveBuckets = 8

// ManaCurve tallies mainboard spell counts per mana value. Lands are
// excluded: a land's mana value of 0 is not part of the curve.
func ManaCurve(d *deck.Deck) [curveBuckets]int {
	var curve [curveBuckets]int
	for _, item := range d.Mainboard {
		if strings.Contains(strings.ToLower(item.Card.TypeLine), "land") {
			continue
		}
		bucket := int(item.Card.CMC)
		if bucket > curveBuckets-1 {
			bucket = curveBuckets - 1
		}
		if bucket < 0 {
			bucket = 0
		}
		curve[bucket] += item.Count
	}
	return curve
}

// RenderManaCurve writes an interactive mana-curve bar chart for the deck
// as a standalone HTML page.
func RenderManaCurve(w io.Writer, d *deck.Deck) error {
	curve := ManaCurve(d)

	labels := make([]string, curveBuckets)
	data := make([]opts.BarData, curveBuckets)
	total := 0
	for i, count := range curve {
		label := fmt.Sprintf("%d", i)
		if i == curveBuckets-1 {
			label = "7+"
		}
		labels[i] = label
		data[i] = opts.BarData{Value: count}
		total += count
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "900px",
			Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Mana Distribution — %s", d.Name),
			Subtitle: fmt.Sprintf("Spell count: %d", total),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Mana value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cards"}),
	)

	bar.SetXAxis(labels).AddSeries("Cards", data)

	return bar.Render(w)
}
