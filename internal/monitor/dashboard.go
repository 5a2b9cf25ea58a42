package monitor

import (
	"context"
	"fmt"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

var colors = map[string]ui.Color{
	"green":  ui.ColorGreen,
	"yellow": ui.ColorYellow,
	"red":    ui.ColorRed,
}

type dashboard struct {
	headline *widgets.Paragraph
	table    *widgets.Table
	spark    *widgets.Sparkline
	group    *widgets.SparklineGroup
	history  History
}

func newDashboard() *dashboard {
	d := &dashboard{
		headline: widgets.NewParagraph(),
		table:    widgets.NewTable(),
		spark:    widgets.NewSparkline(),
	}
	d.headline.Title = "LiveAPI bridge"
	d.table.TextStyle = ui.NewStyle(ui.ColorWhite)
	d.table.RowSeparator = false
	d.spark.Title = "connections"
	d.spark.LineColor = ui.ColorCyan
	d.group = widgets.NewSparklineGroup(d.spark)
	d.group.Title = "history (q to quit)"
	return d
}

func (d *dashboard) layout() {
	w, h := ui.TerminalDimensions()
	d.headline.SetRect(0, 0, w, 3)
	d.table.SetRect(0, 3, w, h-8)
	d.group.SetRect(0, h-8, w, h)
}

func (d *dashboard) update(s Snapshot) {
	d.headline.Text = Headline(s)
	d.headline.BorderStyle.Fg = colors[Color(s)]
	d.table.Rows = Rows(s)
	if s.ReportErr == nil {
		d.history.Push(float64(s.Report.Connections))
	}
	d.spark.Data = d.history.Points()
}

func (d *dashboard) render() {
	ui.Render(d.headline, d.table, d.group)
}

// Run draws the dashboard until ctx ends or the user quits.
func Run(ctx context.Context, p *Poller, interval time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("monitor: terminal init: %w", err)
	}
	defer ui.Close()

	d := newDashboard()
	d.layout()

	refresh := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		d.update(p.Poll(pctx))
		d.render()
	}
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	events := ui.PollEvents()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "<Resize>":
				d.layout()
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			refresh()
		}
	}
}
