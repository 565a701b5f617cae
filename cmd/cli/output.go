package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/adapter/http/dto"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func rightAligned(cols ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		configs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
	}
	return configs
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStreams(w io.Writer, resp dto.ListStreamsResponse) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Amount"})
	total := decimal.Zero
	for _, s := range resp.Streams {
		t.AppendRow(table.Row{s.ID, truncate(s.Name, 32), money(s.Amount)})
		total = total.Add(s.Amount)
	}
	t.AppendFooter(table.Row{"", "Total", money(total)})
	t.SetColumnConfigs(rightAligned(3))
	t.Render()
}

func printAllocation(w io.Writer, a *dto.AllocationResponse) {
	t := newTable(w)
	t.SetTitle("Stream %s: %s", a.StreamID, money(a.Amount))
	t.AppendHeader(table.Row{"Bucket", "Amount"})
	for _, b := range a.Buckets {
		t.AppendRow(table.Row{b.Bucket, money(b.Value)})
	}
	t.AppendFooter(table.Row{"Unallocated", money(a.Unallocated)})
	t.SetColumnConfigs(rightAligned(2))
	t.Render()
}

func printTotals(w io.Writer, totals dto.TotalsResponse) {
	t := newTable(w)
	t.SetTitle("Income: %s", money(totals.Income))
	t.AppendHeader(table.Row{"Bucket", "Amount"})
	for _, b := range totals.Buckets {
		t.AppendRow(table.Row{b.Bucket, money(b.Value)})
	}
	t.AppendFooter(table.Row{"Unallocated", money(totals.Unallocated)})
	t.SetColumnConfigs(rightAligned(2))
	t.Render()
}

func printDistribution(w io.Writer, d dto.DistributionResponse) {
	t := newTable(w)
	t.SetTitle("Distribution for %s", d.StreamID)
	t.AppendHeader(table.Row{"Bucket", "Percent"})
	for _, p := range d.Percentages {
		t.AppendRow(table.Row{p.Bucket, p.Value.String() + "%"})
	}
	t.AppendFooter(table.Row{"Total", d.Total.String() + "%"})
	t.SetColumnConfigs(rightAligned(2))
	t.Render()
}

func printCategories(w io.Writer, categories []*dto.CategoryResponse) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Bucket", "Tracked", "Last Month", "Spent", "Goal", "Remaining"})
	for _, c := range categories {
		remaining := money(c.Remaining)
		if c.Remaining.IsNegative() {
			remaining = text.FgRed.Sprint(remaining)
		}
		tracked := ""
		if c.IsTracked {
			tracked = text.FgGreen.Sprint("yes")
		}
		t.AppendRow(table.Row{
			c.ID,
			truncate(c.Name, 28),
			c.Bucket,
			tracked,
			money(c.LastMonth),
			money(c.ThisMonthSpent),
			money(c.ThisMonthGoal),
			remaining,
		})
	}
	t.SetColumnConfigs(rightAligned(5, 6, 7, 8))
	t.Render()
}

func printWeekly(w io.Writer, resp dto.ListWeeklyResponse) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Limit", "Spent", "Days Left", "Safe Today"})
	for _, s := range resp.Categories {
		safe := money(s.SafeToSpendToday)
		if s.SafeToSpendToday.IsZero() {
			safe = text.FgRed.Sprint(safe)
		}
		t.AppendRow(table.Row{truncate(s.Name, 28), money(s.WeeklyLimit), money(s.WeeklySpent), s.DaysRemaining, safe})
	}
	t.SetColumnConfigs(rightAligned(2, 3, 4, 5))
	t.Render()
}

func printExpenses(w io.Writer, resp dto.ListExpensesResponse) {
	t := newTable(w)
	t.AppendHeader(table.Row{"When", "Category", "Amount", "Note"})
	total := decimal.Zero
	for _, e := range resp.Expenses {
		t.AppendRow(table.Row{e.Timestamp.Format(time.DateTime), e.CategoryID, money(e.Amount), truncate(e.Note, 40)})
		total = total.Add(e.Amount)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d entries", resp.Total), money(total), ""})
	t.SetColumnConfigs(rightAligned(3))
	t.Render()
}

func printConsistency(w io.Writer, report dto.ConsistencyResponse) {
	if report.Consistent {
		fmt.Fprintf(w, "Consistency check PASSED (%d categories, %d entries)\n", report.Categories, report.Entries)
		return
	}

	fmt.Fprintf(w, "Consistency check FAILED (%d of %d categories drifted)\n", len(report.Issues), report.Categories)
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Month", "Ledger Month", "Week", "Ledger Week"})
	for _, is := range report.Issues {
		t.AppendRow(table.Row{is.CategoryID, money(is.RecordedMonth), money(is.LedgerMonth), money(is.RecordedWeek), money(is.LedgerWeek)})
	}
	t.SetColumnConfigs(rightAligned(2, 3, 4, 5))
	t.Render()
}
