package exchange

// MetricTracker accumulates running spread and trade-count statistics for
// one symbol, named but unspecified in spec.md's ExchangeAgent field list;
// SPEC_FULL defines it as ABIDES' ExchangeAgent metric-tracking equivalent.
type MetricTracker struct {
	MinSpread   int64
	MaxSpread   int64
	sumSpread   int64
	spreadCount int64
	TradeCount  int64
}

// NewMetricTracker returns a tracker with no observations yet.
func NewMetricTracker() *MetricTracker {
	return &MetricTracker{MinSpread: -1, MaxSpread: -1}
}

// ObserveSpread records one (bid, ask) snapshot, skipped if either side is
// missing (represented by a non-positive price).
func (m *MetricTracker) ObserveSpread(bidPrice, askPrice int64) {
	if bidPrice <= 0 || askPrice <= 0 {
		return
	}
	spread := askPrice - bidPrice
	if m.spreadCount == 0 || spread < m.MinSpread {
		m.MinSpread = spread
	}
	if m.spreadCount == 0 || spread > m.MaxSpread {
		m.MaxSpread = spread
	}
	m.sumSpread += spread
	m.spreadCount++
}

// ObserveTrade increments the trade counter.
func (m *MetricTracker) ObserveTrade() {
	m.TradeCount++
}

// MeanSpread returns the running mean spread, or -1 if no observations
// have been recorded yet.
func (m *MetricTracker) MeanSpread() int64 {
	if m.spreadCount == 0 {
		return -1
	}
	return m.sumSpread / m.spreadCount
}

// Snapshot is the immutable end-of-run view of a MetricTracker, surfaced
// by the CLI's summary output.
type Snapshot struct {
	MinSpread  int64
	MaxSpread  int64
	MeanSpread int64
	TradeCount int64
}

// Snapshot captures the tracker's current values.
func (m *MetricTracker) Snapshot() Snapshot {
	return Snapshot{MinSpread: m.MinSpread, MaxSpread: m.MaxSpread, MeanSpread: m.MeanSpread(), TradeCount: m.TradeCount}
}
