package portfolio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/folio/internal/models"
)

var allocationColors = []string{
	"2563eb", // blue-600
	"16a34a", // green-600
	"f59e0b", // amber-500
	"dc2626", // red-600
	"7c3aed", // violet-600
	"0891b2", // cyan-600
	"db2777", // pink-600
	"9ca3af", // gray-400
}

// RenderAllocationChart renders a PNG donut of the asset allocation.
// Returns raw PNG bytes.
func RenderAllocationChart(allocation []models.AssetAllocation) ([]byte, error) {
	values := make([]chart.Value, 0, len(allocation))
	for i, a := range allocation {
		if a.CurrentValue <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", a.AssetClass, a.AllocationPct),
			Value: a.CurrentValue,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(allocationColors[i%len(allocationColors)]),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if len(values) == 0 {
		return nil, errors.New("no holdings with a positive value to chart")
	}

	graph := chart.DonutChart{
		Title:  "Asset Allocation",
		Width:  600,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
