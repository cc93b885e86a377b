// Package report renders an overview as an XLSX workbook with native charts.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/flight-delay-dashboard/internal/dashboard"
)

const (
	SheetOverview  = "Overview"
	SheetByHour    = "By Hour"
	SheetByAirline = "By Airline"

	// Built-in "0.00%" number format.
	percentFormat = 10

	delayRateCell = "B4"
)

// WriteOverview writes ov as a workbook with three sheets: the scalar
// metrics, delay rate by hour with a line chart, and delay rate by airline
// with a bar chart. Empty series produce header-only sheets without charts.
func WriteOverview(w io.Writer, ov dashboard.Overview) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetByHour, SheetByAirline} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	pct, err := f.NewStyle(&excelize.Style{NumFmt: percentFormat})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSummary(f, ov, pct); err != nil {
		return err
	}
	if err := writeByHour(f, ov, pct); err != nil {
		return err
	}
	if err := writeByAirline(f, ov, pct); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeSummary writes the scalar metrics. A defined delay rate is stored as a
// number with the percent style; an undefined one keeps the Percent placeholder.
func writeSummary(f *excelize.File, ov dashboard.Overview, pct int) error {
	snap := ov.Snapshot
	var rate any = snap.DelayRate.Percent()
	if v, ok := snap.DelayRate.Value(); ok {
		rate = v
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Total Flights", snap.Total},
		{"Delayed Flights", snap.Delayed},
		{"Delay Percentage", rate},
		{"Source", ov.Source},
		{"Loaded At", ov.LoadedAt.UTC().Format(time.RFC3339)},
	}
	if err := setRows(f, SheetOverview, rows); err != nil {
		return err
	}
	if snap.DelayRate.Valid() {
		if err := f.SetCellStyle(SheetOverview, delayRateCell, delayRateCell, pct); err != nil {
			return fmt.Errorf("style %s: %w", SheetOverview, err)
		}
	}
	return f.SetColWidth(SheetOverview, "A", "B", 22)
}

func writeByHour(f *excelize.File, ov dashboard.Overview, pct int) error {
	points := ov.Snapshot.ByHour
	rows := [][]any{{"Hour", "Delay Rate", "Flights"}}
	for _, p := range points {
		rows = append(rows, []any{p.Hour, p.Rate, p.Flights})
	}
	if err := setRows(f, SheetByHour, rows); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if err := f.SetCellStyle(SheetByHour, "B2", cell("B", len(points)+1), pct); err != nil {
		return fmt.Errorf("style %s: %w", SheetByHour, err)
	}
	return addChart(f, SheetByHour, excelize.Line, "Delay Rate by Departure Hour", len(points))
}

func writeByAirline(f *excelize.File, ov dashboard.Overview, pct int) error {
	points := ov.Snapshot.ByAirline
	rows := [][]any{{"Airline", "Delay Rate", "Flights"}}
	for _, p := range points {
		rows = append(rows, []any{p.Airline, p.Rate, p.Flights})
	}
	if err := setRows(f, SheetByAirline, rows); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if err := f.SetCellStyle(SheetByAirline, "B2", cell("B", len(points)+1), pct); err != nil {
		return fmt.Errorf("style %s: %w", SheetByAirline, err)
	}
	return addChart(f, SheetByAirline, excelize.Bar, "Delay Rate by Airline", len(points))
}

// addChart plots column B against column A for rows 2..n+1.
func addChart(f *excelize.File, sheet string, typ excelize.ChartType, title string, n int) error {
	last := n + 1
	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, last)
	}
	err := f.AddChart(sheet, "E2", &excelize.Chart{
		Type: typ,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: ref("A"),
			Values:     ref("B"),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
		YAxis:  excelize.ChartAxis{NumFmt: excelize.ChartNumFmt{CustomNumFmt: "0%"}},
	})
	if err != nil {
		return fmt.Errorf("add chart to %s: %w", sheet, err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cell("A", i+1), &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
