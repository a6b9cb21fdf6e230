package notifier

import (
	"fmt"
	"math"
	"strings"

	"CryptoSentinel/internal/alert"
	"CryptoSentinel/internal/model"
)

// FormatAlertSubject builds the notification subject for a triggered rule.
func FormatAlertSubject(symbol string) string {
	return fmt.Sprintf("Price alert: %s", symbol)
}

// FormatAlertBody builds the notification body for a triggered rule.
func FormatAlertBody(symbol string, threshold, price float64) string {
	return fmt.Sprintf("%s crossed %.2f USD and is now at %.2f USD.", symbol, threshold, price)
}

// FormatAlertList formats an owner's rules for display.
func FormatAlertList(rules []alert.Rule) string {
	if len(rules) == 0 {
		return "No alerts configured. Use /watch SYMBOL PRICE to add one."
	}

	var b strings.Builder
	b.WriteString("🔔 <b>Your alerts</b>\n\n")
	for _, r := range rules {
		status := "⏳ pending"
		if r.Sent {
			status = "✅ sent"
		}
		b.WriteString(fmt.Sprintf("%s &gt; %.2f USD | %s\n  id: %s\n", r.Symbol, r.Threshold, status, r.ID))
	}
	return b.String()
}

// FormatHoldings formats a portfolio snapshot with per-asset weights.
func FormatHoldings(holdings []model.Holding, total float64) string {
	if len(holdings) == 0 {
		return "Your portfolio is empty. Use /add SYMBOL AMOUNT [PRICE] to start."
	}

	var b strings.Builder
	b.WriteString("💼 <b>Your portfolio</b>\n\n")
	for _, h := range holdings {
		weight := 0.0
		if total > 0 {
			weight = h.Value() / total
		}
		b.WriteString(fmt.Sprintf("%s: %g @ %.2f USD = %.2f USD (%.2f%%)\n",
			h.Symbol, h.Amount, h.Price, h.Value(), weight*100))
	}
	b.WriteString(fmt.Sprintf("\nTotal: %.2f USD", total))
	return b.String()
}

// FormatProjection reports projected portfolio values at the 1, 7 and 30 day
// marks. values is indexed from day 1 and must cover at least 30 days.
func FormatProjection(values []float64) string {
	if len(values) < 30 {
		return "Projection unavailable."
	}
	return fmt.Sprintf("Projected value: %.2f USD tomorrow, %.2f USD in a week, %.2f USD in a month.",
		values[0], values[6], values[29])
}

// FormatOutlookSummary renders the latest price, the moving-average overlay's
// last defined value and the forecast endpoint with its confidence bounds.
func FormatOutlookSummary(symbol string, history model.PriceSeries, sma []float64, forecastValue, lower, upper float64, hasForecast bool) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s outlook</b>\n\n", symbol))
	if len(history) > 0 {
		b.WriteString(fmt.Sprintf("Last price: %.2f USD\n", history[len(history)-1].Price))
	}
	if last, ok := lastDefined(sma); ok {
		b.WriteString(fmt.Sprintf("Moving average: %.2f USD\n", last))
	}
	if hasForecast {
		b.WriteString(fmt.Sprintf("Forecast: %.2f USD (95%% interval %.2f – %.2f)", forecastValue, lower, upper))
	} else {
		b.WriteString("Forecast unavailable for this series.")
	}
	return b.String()
}

func lastDefined(values []float64) (float64, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i], true
		}
	}
	return 0, false
}

// FormatHelp lists the available bot commands.
func FormatHelp() string {
	return strings.Join([]string{
		"Available commands:",
		"• /add SYMBOL AMOUNT [PRICE] — record a purchase (current price when omitted)",
		"• /remove SYMBOL AMOUNT — reduce or close a position",
		"• /portfolio — show holdings at current prices",
		"• /rebalance — suggest target allocation changes",
		"• /projection — project portfolio value 1/7/30 days out",
		"• /outlook SYMBOL — price history summary with forecast",
		"• /watch SYMBOL PRICE — alert when SYMBOL rises above PRICE",
		"• /alerts — list your alerts",
		"• /unwatch ID — delete one of your alerts",
	}, "\n")
}
