package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"StockCast/internal/agent"
	"StockCast/internal/model"
	"StockCast/internal/recorder"
)

const dateLayout = "2006-01-02"

// price renders a value rounded half-away-from-zero to cents.
func price(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// FormatAnswer renders a pipeline answer for the console.
func FormatAnswer(ans *agent.Answer) string {
	if !ans.IsForecast() {
		return ans.Reply
	}
	return FormatForecast(ans.Forecast)
}

// FormatForecast renders the summary header and the prediction table for a terminal.
func FormatForecast(res *model.ForecastResult) string {
	var b strings.Builder
	b.WriteString(summaryLines(res))
	b.WriteString("\n")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ticker", "date", "prediction")
	for _, row := range res.Rows {
		t.Row(row.Ticker, row.Date.Format(dateLayout), price(row.Prediction))
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func summaryLines(res *model.ForecastResult) string {
	var b strings.Builder
	s := res.Summary
	b.WriteString(fmt.Sprintf("%s | %d days from %d points (last close %s on %s)\n",
		res.Ticker, len(res.Rows), s.Points, price(s.LastClose), s.LastDate.Format(dateLayout)))
	if s.SMA20 > 0 {
		b.WriteString(fmt.Sprintf("SMA20: %s | 52w range: %s - %s | RSI14: %.0f\n",
			price(s.SMA20), price(s.Low52w), price(s.High52w), s.RSI14))
	}
	f := res.Fit
	if f.ValidationLen > 0 {
		b.WriteString(fmt.Sprintf("window %d, %d/%d steps, validation MAE %s (last-value baseline %s)\n",
			f.InputWindow, f.StepsRun, f.MaxSteps, price(f.ValidationMAE), price(f.BaselineMAE)))
	} else {
		b.WriteString(fmt.Sprintf("window %d, %d/%d steps, no validation slice\n",
			f.InputWindow, f.StepsRun, f.MaxSteps))
	}
	if o := res.Outlook; o != nil {
		b.WriteString(fmt.Sprintf("outlook: %s (score %+.2f)\n", o.Label, o.TotalScore))
		for _, w := range o.Warnings {
			b.WriteString("warning: " + w + "\n")
		}
	}
	return b.String()
}

// FormatTelegram renders an answer as Telegram HTML.
func FormatTelegram(ans *agent.Answer) string {
	if !ans.IsForecast() {
		return html.EscapeString(ans.Reply)
	}
	res := ans.Forecast
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s forecast</b> | %d days\n", html.EscapeString(res.Ticker), len(res.Rows)))
	b.WriteString(fmt.Sprintf("Last close: %s (%s)\n", price(res.Summary.LastClose), res.Summary.LastDate.Format(dateLayout)))
	if o := res.Outlook; o != nil {
		b.WriteString(fmt.Sprintf("Outlook: <b>%s</b> (%+.2f)\n", o.Label, o.TotalScore))
		for _, w := range o.Warnings {
			b.WriteString("⚠️ " + html.EscapeString(w) + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString("<pre>")
	for _, row := range res.Rows {
		b.WriteString(fmt.Sprintf("%s  %10s\n", row.Date.Format(dateLayout), price(row.Prediction)))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatError renders a failed run for Telegram.
func FormatError(prompt string, err error) string {
	return fmt.Sprintf("❌ <b>Forecast failed</b>\n%s\n\n%s",
		html.EscapeString(prompt), html.EscapeString(err.Error()))
}

// FormatHistory renders recent runs as a table.
func FormatHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "no runs recorded\n"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("time", "source", "outcome", "symbol", "days", "val MAE", "outlook", "prompt / error")
	for _, r := range runs {
		detail := r.Prompt
		if r.Error != "" {
			detail = r.Error
		}
		mae := ""
		if r.Outcome == "forecast" {
			mae = price(r.ValidationMAE)
		}
		days := ""
		if r.PredictionDays > 0 {
			days = fmt.Sprint(r.PredictionDays)
		}
		t.Row(r.StartedAt.Format("2006-01-02 15:04"), r.Source, r.Outcome, r.Symbol, days, mae, r.Outlook, truncate(detail, 60))
	}
	return t.String() + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
