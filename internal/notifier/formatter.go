package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"PortfolioSentinel/internal/model"
)

// FormatCycleReport formats a completed funding cycle into a Telegram message.
func FormatCycleReport(rec *model.CycleRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("💸 <b>Funding cycle</b> | %s\n\n", rec.Time.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Equity: $%.2f | Cash: $%.2f\n", rec.Equity, rec.Cash))
	b.WriteString(fmt.Sprintf("Daily rate: $%.2f\n", rec.DailyFunding))
	b.WriteString(fmt.Sprintf("Funded today: $%.2f (%d day(s) elapsed, %d remaining)\n\n",
		rec.FundingToday, rec.DaysElapsed, rec.DaysRemaining))

	if len(rec.Orders) == 0 {
		b.WriteString("No orders placed.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📋 <b>Orders (%d):</b>\n", len(rec.Orders)))
	for _, o := range rec.Orders {
		b.WriteString(fmt.Sprintf("  %s: %d × $%.2f ($%.2f)\n", o.Symbol, o.Qty, o.LimitPrice, o.Amount))
	}
	return b.String()
}

// FormatAccountStatus formats the current account snapshot for display.
func FormatAccountStatus(acct model.AccountSnapshot) string {
	var b strings.Builder
	b.WriteString("🏦 <b>Account status</b>\n\n")
	b.WriteString(fmt.Sprintf("Equity: $%.2f\n", acct.Equity))
	b.WriteString(fmt.Sprintf("Cash: $%.2f\n", acct.Cash))
	b.WriteString(fmt.Sprintf("Invested: $%.2f\n", acct.Invested()))
	b.WriteString(fmt.Sprintf("Buying power: $%.2f\n", acct.BuyingPower))
	return b.String()
}

// FormatCheckpoint formats the persisted scheduling state for display.
func FormatCheckpoint(cp model.Checkpoint) string {
	var b strings.Builder
	b.WriteString("🗂 <b>Checkpoint</b>\n\n")
	if cp.LastFundingDate != nil {
		b.WriteString(fmt.Sprintf("Last funded: %s\n", cp.LastFundingDate.Format(time.RFC3339)))
	} else {
		b.WriteString("Last funded: never\n")
	}
	b.WriteString(fmt.Sprintf("Target ratio: %.2f\n", cp.TargetInvestmentEquityRatio))
	b.WriteString(fmt.Sprintf("Finish date: %s\n\n", cp.FinishDate.Format("2006-01-02")))

	symbols := make([]string, 0, len(cp.IdealAllocations))
	for sym := range cp.IdealAllocations {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	b.WriteString("🎯 <b>Ideal allocation:</b>\n")
	for _, sym := range symbols {
		b.WriteString(fmt.Sprintf("  %s: %.1f%%\n", sym, cp.IdealAllocations[sym]*100))
	}
	return b.String()
}
