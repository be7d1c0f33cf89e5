package oracle

import (
	"os"
	"path/filepath"
	"testing"

	"simmarket/src/simtime"
)

func writeTempCSV(t *testing.T, rows string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fundamental.csv")
	if err := os.WriteFile(path, []byte(rows), 0644); err != nil {
		t.Fatalf("failed to write temp CSV: %v", err)
	}
	return path
}

func TestFundamentalValueInterpolatesBetweenRows(t *testing.T) {
	path := writeTempCSV(t, "0,10000\n1000,10100\n")
	o, err := NewFileOracle(map[string]string{"AAPL": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := o.FundamentalValue("AAPL", simtime.FromNanos(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10050 {
		t.Fatalf("expected the midpoint value 10050, got %d", v)
	}
}

func TestFundamentalValueClampsOutsideRange(t *testing.T) {
	path := writeTempCSV(t, "0,10000\n1000,10100\n")
	o, err := NewFileOracle(map[string]string{"AAPL": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, _ := o.FundamentalValue("AAPL", simtime.FromNanos(-500))
	if before != 10000 {
		t.Fatalf("expected clamping to the first row's value before the series starts, got %d", before)
	}

	after, _ := o.FundamentalValue("AAPL", simtime.FromNanos(5000))
	if after != 10100 {
		t.Fatalf("expected clamping to the last row's value after the series ends, got %d", after)
	}
}

func TestFundamentalValueUnknownSymbol(t *testing.T) {
	path := writeTempCSV(t, "0,10000\n")
	o, err := NewFileOracle(map[string]string{"AAPL": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := o.FundamentalValue("MSFT", simtime.FromNanos(0)); err == nil {
		t.Fatalf("expected an error for a symbol with no fundamental series")
	}
}

func TestFundamentalValueSortsUnsortedRows(t *testing.T) {
	path := writeTempCSV(t, "1000,10100\n0,10000\n500,10050\n")
	o, err := NewFileOracle(map[string]string{"AAPL": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := o.FundamentalValue("AAPL", simtime.FromNanos(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10050 {
		t.Fatalf("expected the exact row value 10050 at t=500, got %d", v)
	}
}
