// Package alert fans signal events out to the configured destinations.
// Delivery is best effort: a failing destination is logged and counted,
// never retried into the evaluation path.
package alert

import (
	"fmt"
	"strings"

	"LagScalper/internal/domain/models"
)

// FormatTelegram renders a signal event as a Telegram Markdown message.
func FormatTelegram(ev *models.SignalEvent) string {
	var b strings.Builder

	header := "📉 *LAG SIGNAL*"
	if ev.Strength == models.StrengthStrong {
		header = "🚨 *STRONG LAG SIGNAL*"
	}
	fmt.Fprintf(&b, "%s `%s` %s\n\n", header, ev.Symbol, ev.Direction)
	fmt.Fprintf(&b, "*Price:* `%s`\n", formatPrice(ev.CurrentPrice))
	fmt.Fprintf(&b, "*Entry:* `%s - %s`\n", formatPrice(ev.EntryLow), formatPrice(ev.EntryHigh))
	fmt.Fprintf(&b, "*Stop:* `%s`\n", formatPrice(ev.StopLoss))
	fmt.Fprintf(&b, "*T1:* `%s`  *T2:* `%s`\n\n", formatPrice(ev.Target1), formatPrice(ev.Target2))

	m := ev.Metrics
	fmt.Fprintf(&b, "BTC 1h: `%+.2f%%`  Alt 1h: `%+.2f%%`  Spread: `%+.2f%%`\n", m.BTCChange1h, m.AltChange1h, m.Spread)
	if m.RatioRSI != nil {
		fmt.Fprintf(&b, "Ratio RSI: `%.1f`\n", *m.RatioRSI)
	}
	if m.FundingRate != nil {
		fmt.Fprintf(&b, "Funding: `%+.4f%%`\n", *m.FundingRate)
	}
	if ev.BTCStatus != "" {
		fmt.Fprintf(&b, "_%s_\n", ev.BTCStatus)
	}
	for _, w := range ev.Warnings {
		fmt.Fprintf(&b, "⚠️ %s\n", w)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatDiscord renders a signal event as plain Discord message content.
func FormatDiscord(ev *models.SignalEvent) string {
	var b strings.Builder

	header := "LAG SIGNAL"
	if ev.Strength == models.StrengthStrong {
		header = "STRONG LAG SIGNAL"
	}
	fmt.Fprintf(&b, "**%s** %s %s\n", header, ev.Symbol, ev.Direction)
	fmt.Fprintf(&b, "Price %s | Entry %s - %s | Stop %s | T1 %s | T2 %s\n",
		formatPrice(ev.CurrentPrice), formatPrice(ev.EntryLow), formatPrice(ev.EntryHigh),
		formatPrice(ev.StopLoss), formatPrice(ev.Target1), formatPrice(ev.Target2))

	m := ev.Metrics
	fmt.Fprintf(&b, "BTC 1h %+.2f%% | Alt 1h %+.2f%% | Spread %+.2f%%", m.BTCChange1h, m.AltChange1h, m.Spread)
	if m.RatioRSI != nil {
		fmt.Fprintf(&b, " | RSI %.1f", *m.RatioRSI)
	}
	if m.FundingRate != nil {
		fmt.Fprintf(&b, " | Funding %+.4f%%", *m.FundingRate)
	}
	b.WriteString("\n")
	for _, w := range ev.Warnings {
		fmt.Fprintf(&b, ":warning: %s\n", w)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatPrice keeps enough precision for sub-cent alts without drowning
// large-cap prices in decimals.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.6f", p)
	}
}
