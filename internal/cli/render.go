package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/tax"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// Money formats v with two decimal places.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case col >= 2:
				return AmountStyle
			default:
				return TableCellStyle
			}
		})
}

// RenderResponse renders an evaluation result for a terminal: the totals box,
// one table row per query window and the performance line when present.
func RenderResponse(resp *document.Response) string {
	var b strings.Builder

	totals := fmt.Sprintf("%s %s\n%s %s",
		SubtleStyle.Render("Spent:  "), BoldStyle.Render(Money(resp.TotalTransactionAmount)),
		SubtleStyle.Render("Ceiling:"), BoldStyle.Render(Money(resp.TotalCeiling)))
	b.WriteString(RenderBox(CoinIcon+" Round-up savings", totals))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d query windows", len(resp.SavingsByDates))))
	b.WriteString("\n")

	if len(resp.SavingsByDates) == 0 {
		b.WriteString(FormatInfo("No query windows in request"))
		b.WriteString("\n")
	} else {
		t := newTable("Start", "End", "Saved", "Profit", "Tax benefit")
		for _, s := range resp.SavingsByDates {
			t.Row(s.Start, s.End, Money(s.Amount), Money(s.Profit), Money(s.TaxBenefit))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	if p := resp.Performance; p != nil {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("%s %dµs · %s · %s",
			ChartIcon, p.ExecutionTimeUs, p.Complexity, p.Engine)))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderTax renders the tax owed on income with a per-slab breakdown.
func RenderTax(income float64) string {
	t := newTable("Above", "Rate", "Taxed", "Owed")

	remaining := income
	for _, s := range tax.Slabs() {
		var taxed float64
		if remaining > s.Threshold {
			taxed = remaining - s.Threshold
			remaining = s.Threshold
		}
		t.Row(Money(s.Threshold),
			fmt.Sprintf("%.0f%%", s.Rate*100),
			Money(taxed),
			Money(taxed*s.Rate))
	}

	header := fmt.Sprintf("%s %s\n%s %s",
		SubtleStyle.Render("Income:"), BoldStyle.Render(Money(income)),
		SubtleStyle.Render("Tax:   "), BoldStyle.Render(Money(tax.Tax(income))))

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderBox("Income tax", header),
		t.String(),
	) + "\n"
}
