package summary

import (
	"strings"
	"testing"

	"simmarket/src/exchange"
)

func TestNewRunIDIsUnique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	if a == "" || b == "" || a == b {
		t.Fatalf("expected two distinct non-empty run ids, got %q and %q", a, b)
	}
}

func TestBuildSortsSymbolsAndJoinsMetrics(t *testing.T) {
	lastTrade := map[string]int64{"MSFT": 300, "AAPL": 150}
	metrics := map[string]exchange.Snapshot{
		"AAPL": {MinSpread: 1, MaxSpread: 5, MeanSpread: 3, TradeCount: 10},
		"MSFT": {MinSpread: 2, MaxSpread: 6, MeanSpread: 4, TradeCount: 20},
	}

	report := Build("run-1", lastTrade, metrics, nil)

	if len(report.Symbols) != 2 {
		t.Fatalf("expected 2 symbol reports, got %d", len(report.Symbols))
	}
	if report.Symbols[0].Symbol != "AAPL" || report.Symbols[1].Symbol != "MSFT" {
		t.Fatalf("expected symbols sorted alphabetically, got %+v", report.Symbols)
	}
	if report.Symbols[0].LastTrade != 150 || report.Symbols[0].TradeCount != 10 {
		t.Fatalf("unexpected AAPL report: %+v", report.Symbols[0])
	}
}

func TestBuildWithNoSymbolsProducesEmptyReport(t *testing.T) {
	report := Build("run-2", map[string]int64{}, map[string]exchange.Snapshot{}, nil)
	if len(report.Symbols) != 0 {
		t.Fatalf("expected no symbol reports, got %d", len(report.Symbols))
	}
}

func TestStringIncludesRunIDSymbolsAndCustomState(t *testing.T) {
	report := Build("run-3", map[string]int64{"AAPL": 150}, map[string]exchange.Snapshot{
		"AAPL": {MinSpread: 1, MaxSpread: 5, MeanSpread: 3, TradeCount: 10},
	}, map[string]string{"seed": "42"})

	out := report.String()
	if !strings.Contains(out, "run run-3") {
		t.Fatalf("expected the run id header, got %q", out)
	}
	if !strings.Contains(out, "AAPL") {
		t.Fatalf("expected the AAPL line, got %q", out)
	}
	if !strings.Contains(out, "seed = 42") {
		t.Fatalf("expected the custom state line, got %q", out)
	}
}
