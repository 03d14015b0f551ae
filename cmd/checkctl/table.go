package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// renderCounters prints every outcome category in report order followed by the total
func renderCounters(report *entities.BatchReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Outcome", "Accounts"})

	for _, status := range entities.Statuses {
		tw.AppendRow(table.Row{string(status), report.Counters[status]})
	}
	tw.AppendFooter(table.Row{"total", report.Total()})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	return tw.Render()
}

// renderResults prints one row per account in completion order
func renderResults(report *entities.BatchReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Record", "Phone", "Outcome", "Attempts", "Detail"})

	for _, r := range report.Results {
		tw.AppendRow(table.Row{r.Path, r.Phone, string(r.Status), strconv.Itoa(r.Attempts), r.Detail})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 60},
	})

	return tw.Render()
}
