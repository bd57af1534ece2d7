package notifier

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"StockAdvisor/internal/model"
)

const descriptionLimit = 200

// FormatAnalysisReport renders a full analysis result as a Telegram HTML message.
func FormatAnalysisReport(res *model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockAdvisor</b> | %s\n", res.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Budget: %.2f | Symbols: %s\n\n", res.Budget, strings.Join(res.Symbols, ", ")))

	if len(res.Info) > 0 {
		b.WriteString(formatInfo(res.Info))
		b.WriteString("\n")
	}

	b.WriteString("📈 <b>Recommendations</b>\n")
	if len(res.Recommendations) == 0 {
		b.WriteString("  none\n")
	}
	for _, r := range res.Recommendations {
		b.WriteString(fmt.Sprintf("%s <b>%s</b>: %s | O %.2f C %.2f H %.2f L %.2f | qty %d\n",
			icon(r.Recommendation), html.EscapeString(r.Symbol), r.Recommendation,
			r.Open, r.Close, r.High, r.Low, r.Quantity))
		b.WriteString(fmt.Sprintf("   <i>%s</i>\n", html.EscapeString(r.Reason)))
	}

	b.WriteString("\n🧮 <b>Summary</b>\n")
	parts := make([]string, 0, len(model.Recommendations))
	for _, label := range model.Recommendations {
		parts = append(parts, fmt.Sprintf("%s: %d", label, res.Counts[label]))
	}
	b.WriteString("  " + strings.Join(parts, " | ") + "\n")

	if len(res.Allocations) > 0 {
		b.WriteString("\n💰 <b>Quantity per stock</b>\n")
		for _, a := range res.Allocations {
			b.WriteString(fmt.Sprintf("  %s: %d\n", html.EscapeString(a.Symbol), a.Quantity))
		}
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n⚠️ <b>Warnings</b>\n")
		for _, w := range res.Warnings {
			b.WriteString("  " + html.EscapeString(w.Message) + "\n")
		}
	}
	return b.String()
}

func formatInfo(rows []model.InfoRow) string {
	var b strings.Builder
	b.WriteString("🏢 <b>Stock information</b>\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(r.Symbol)))
		b.WriteString(fmt.Sprintf("  Market Cap: %s | Current Price: %s | P/E: %s\n",
			model.FormatValue(r.MarketCap, 0), model.FormatValue(r.CurrentPrice, 2), model.FormatValue(r.PERatio, 2)))
		b.WriteString(fmt.Sprintf("  Book Value: %s | Dividend Yield (%%): %s | Face Value: %s\n",
			model.FormatValue(r.BookValue, 2), model.FormatValue(r.DividendYieldPct, 2), model.FormatValue(r.FaceValue, 2)))
		b.WriteString(fmt.Sprintf("  ROCE (%%): %s | ROE (%%): %s\n",
			model.FormatValue(r.ROCEPct, 2), model.FormatValue(r.ROEPct, 2)))
		b.WriteString("  " + html.EscapeString(truncate(r.Description, descriptionLimit)) + "\n")
	}
	return b.String()
}

// FormatFetchError reports a failed price download. Metadata gathered before the failure is kept.
func FormatFetchError(res *model.AnalysisResult, err error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("❌ <b>Price download failed</b>\n%s\n", html.EscapeString(err.Error())))
	if res != nil && len(res.Info) > 0 {
		b.WriteString("\n")
		b.WriteString(formatInfo(res.Info))
	}
	return b.String()
}

// FormatHelp lists the chat commands.
func FormatHelp(defaultBudget float64) string {
	return fmt.Sprintf("Available commands:\n"+
		"• /analyze AAPL,MSFT [budget] (default budget %.2f)\n"+
		"• /watchlist runs the configured watchlist\n"+
		"• /help", defaultBudget)
}

func icon(r model.Recommendation) string {
	switch r {
	case model.RecommendBuy:
		return "🟢"
	case model.RecommendSell:
		return "🔴"
	default:
		return "⚪"
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
