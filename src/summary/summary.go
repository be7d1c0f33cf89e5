// Package summary renders a run's end-of-simulation state into the
// plain structures the CLI prints, adapting the teacher's response-model
// style (src/models) from HTTP payloads to a one-shot run report.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"simmarket/src/exchange"
)

// SymbolReport is one symbol's end-of-run book statistics.
type SymbolReport struct {
	Symbol     string `json:"symbol"`
	LastTrade  int64  `json:"last_trade"`
	MinSpread  int64  `json:"min_spread"`
	MaxSpread  int64  `json:"max_spread"`
	MeanSpread int64  `json:"mean_spread"`
	TradeCount int64  `json:"trade_count"`
}

// Report is the full end-of-run summary the CLI driver prints.
type Report struct {
	RunID      string            `json:"run_id"`
	CustomState map[string]string `json:"custom_state,omitempty"`
	Symbols    []SymbolReport    `json:"symbols"`
}

// NewRunID mints a fresh run identifier, used to tag the CLI's printed
// report.
func NewRunID() string { return uuid.New().String() }

// Build assembles a Report from the exchange's per-symbol books/metrics
// and whatever custom state the kernel accumulated during the run.
func Build(runID string, lastTrade map[string]int64, metrics map[string]exchange.Snapshot, customState map[string]string) Report {
	symbols := make([]string, 0, len(lastTrade))
	for symbol := range lastTrade {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	report := Report{RunID: runID, CustomState: customState}
	for _, symbol := range symbols {
		snap := metrics[symbol]
		report.Symbols = append(report.Symbols, SymbolReport{
			Symbol:     symbol,
			LastTrade:  lastTrade[symbol],
			MinSpread:  snap.MinSpread,
			MaxSpread:  snap.MaxSpread,
			MeanSpread: snap.MeanSpread,
			TradeCount: snap.TradeCount,
		})
	}
	return report
}

// String renders the report as the plain text the CLI prints to stdout.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", r.RunID)
	for _, s := range r.Symbols {
		fmt.Fprintf(&b, "  %-8s last=%-8d spread[min/mean/max]=%d/%d/%d trades=%d\n",
			s.Symbol, s.LastTrade, s.MinSpread, s.MeanSpread, s.MaxSpread, s.TradeCount)
	}
	for k, v := range r.CustomState {
		fmt.Fprintf(&b, "  %s = %s\n", k, v)
	}
	return b.String()
}
