package notifier

import (
	"fmt"
	"html"
	"strings"

	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/recorder"
)

// FormatDailyReport formats the daily drawdown report into a Telegram message.
func FormatDailyReport(rep *model.DailyReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Daily Stock Report</b> | %s\n", rep.GeneratedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("📅 Period: %s\n\n", rep.Period.Display()))

	writeSentiment(&b, rep.Sentiment)

	b.WriteString(fmt.Sprintf("📉 <b>Drawdown from %s high</b>\n", rep.Period.Display()))
	if len(rep.Symbols) == 0 {
		b.WriteString("  no data available\n")
	}
	for _, s := range rep.Symbols {
		writeSymbol(&b, s)
	}

	if buys := rep.BuySignals(); len(buys) > 0 {
		names := make([]string, len(buys))
		for i, s := range buys {
			names[i] = html.EscapeString(s.Symbol)
		}
		b.WriteString(fmt.Sprintf("\n🔔 <b>Buy signals:</b> %s\n", strings.Join(names, ", ")))
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeSentiment(b *strings.Builder, s model.MarketSentiment) {
	b.WriteString("😱 <b>Fear &amp; Greed Index</b>\n")
	if !s.Available() {
		reason := s.Error
		if reason == "" {
			reason = "unknown"
		}
		b.WriteString(fmt.Sprintf("  Error: %s\n\n", html.EscapeString(reason)))
		return
	}
	b.WriteString(fmt.Sprintf("  Score: %.1f (%s)\n", *s.Score, s.Rating))
	if s.PreviousClose != nil {
		b.WriteString(fmt.Sprintf("  vs Yesterday: %+.1f\n", *s.Score-*s.PreviousClose))
	}
	if s.PreviousWeek != nil {
		b.WriteString(fmt.Sprintf("  vs Last Week: %+.1f\n", *s.Score-*s.PreviousWeek))
	}
	b.WriteString("\n")
}

func writeSymbol(b *strings.Builder, s model.SymbolReport) {
	d := s.Drawdown
	b.WriteString(fmt.Sprintf("<b>%s</b>: %+.1f%% ($%.2f / peak $%.2f)\n",
		html.EscapeString(s.Symbol), d.DrawdownPct, d.CurrentPrice, d.PeakPrice))
	b.WriteString(fmt.Sprintf("  MDD: %+.1f%%\n", s.MaxDrawdownPct))
	b.WriteString(fmt.Sprintf("  → %s\n", s.Signal.Label()))
	if t := s.Trend; t != nil {
		if t.Available() {
			b.WriteString(fmt.Sprintf("  MA%d: $%.2f (%+.1f%%, %s) %s\n",
				t.Window, *t.MAValue, *t.DiffPct, t.Position, t.Label))
		} else {
			b.WriteString(fmt.Sprintf("  MA%d: %s\n", t.Window, t.Label))
		}
	}
}

// FormatWatchlist formats the current watch-list for display.
func FormatWatchlist(wl model.Watchlist) string {
	var b strings.Builder
	b.WriteString("📋 <b>Watch-list</b>\n\n")
	if len(wl.Symbols) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, s := range wl.Symbols {
		mark := ""
		if wl.TrendEnabled(s) {
			mark = " 📈 MA"
		}
		b.WriteString(fmt.Sprintf("• %s%s\n", html.EscapeString(s), mark))
	}
	if !wl.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("\nUpdated: %s", wl.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHistory formats recorded snapshots for one symbol, newest first.
func FormatHistory(symbol string, snaps []recorder.SymbolSnapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	if len(snaps) == 0 {
		b.WriteString("no recorded reports")
		return b.String()
	}
	for _, s := range snaps {
		b.WriteString(fmt.Sprintf("%s [%s] %+.1f%% ($%.2f)",
			s.RecordedAt.Format("2006-01-02"), s.Period, s.DrawdownPct, s.CurrentPrice))
		if s.Signal != model.SignalNone.String() {
			b.WriteString(" " + s.Signal)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHelp returns the command usage text.
func FormatHelp() string {
	return strings.Join([]string{
		"🤖 <b>Drawdown Sentinel</b>",
		"",
		"/report [period] - build and send a report now",
		"/list - show the watch-list",
		"/add SYM - add a symbol",
		"/remove SYM - remove a symbol",
		"/ma SYM on|off - toggle 200-day trend analysis",
		"/history SYM - recent recorded drawdowns",
		"/help - this message",
		"",
		"Periods: " + model.PeriodList(),
	}, "\n")
}
