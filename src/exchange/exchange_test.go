package exchange

import (
	"testing"

	"github.com/rs/zerolog"

	"simmarket/src/kernel"
	"simmarket/src/message"
	"simmarket/src/orders"
	"simmarket/src/simtime"
)

// traderAgent is the minimal kernel.Agent needed to drive the exchange
// through a real kernel.Run and observe what it sends back: it requests a
// wakeup at wakeupAt, then runs onWakeup once.
type traderAgent struct {
	id       int
	typeName string
	h        *kernel.Handle
	wakeupAt simtime.Timestamp
	onWakeup func(a *traderAgent)
	received []message.Message
}

func (a *traderAgent) AgentID() int                       { return a.id }
func (a *traderAgent) TypeName() string                   { return a.typeName }
func (a *traderAgent) KernelInitialising(h *kernel.Handle) { a.h = h }
func (a *traderAgent) KernelStarting(startTime simtime.Timestamp) {
	if a.wakeupAt > 0 {
		_ = a.h.SetWakeup(a.wakeupAt)
	}
}
func (a *traderAgent) KernelStopping()    {}
func (a *traderAgent) KernelTerminating() {}
func (a *traderAgent) Wakeup(currentTime simtime.Timestamp) {
	if a.onWakeup != nil {
		a.onWakeup(a)
	}
}
func (a *traderAgent) ReceiveMessage(currentTime simtime.Timestamp, senderID int, body message.Message) {
	a.received = append(a.received, body)
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

func baseConfig() Config {
	return Config{
		Symbols:       []string{"AAPL"},
		MktOpen:       simtime.FromNanos(0),
		MktClose:      simtime.FromNanos(1_000_000),
		StreamHistory: 100,
	}
}

func TestLimitOrderAcceptedAndNotified(t *testing.T) {
	exch := New(0, baseConfig())
	trader := &traderAgent{id: 1, typeName: "Trader", wakeupAt: simtime.FromNanos(100)}
	trader.onWakeup = func(a *traderAgent) {
		order := orders.LimitOrder{
			Order:      orders.Order{OrderID: 1, AgentID: 1, Symbol: "AAPL", Quantity: 100, Side: orders.Bid, FillPrice: -1},
			LimitPrice: 100,
		}
		_ = a.h.SendMessage(0, message.NewLimitOrderMsg(a.h.Minter(), order))
	}

	k := kernel.New(testLogger())
	_, err := k.Run(kernel.RunConfig{
		Agents:                  []kernel.Agent{exch, trader},
		StartTime:               simtime.FromNanos(0),
		StopTime:                simtime.FromNanos(1000),
		DefaultComputationDelay: 1,
		DefaultLatency:          1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var accepted *message.OrderAccepted
	for _, m := range trader.received {
		if oa, ok := m.(message.OrderAccepted); ok {
			accepted = &oa
		}
	}
	if accepted == nil {
		t.Fatalf("expected an OrderAccepted notification, got %d messages: %+v", len(trader.received), trader.received)
	}
	if accepted.Order.Quantity != 100 {
		t.Fatalf("expected the full 100 shares accepted, got %d", accepted.Order.Quantity)
	}
}

func TestLimitOrderForUnknownSymbolIsDropped(t *testing.T) {
	exch := New(0, baseConfig())
	trader := &traderAgent{id: 1, typeName: "Trader", wakeupAt: simtime.FromNanos(100)}
	trader.onWakeup = func(a *traderAgent) {
		order := orders.LimitOrder{
			Order:      orders.Order{OrderID: 1, AgentID: 1, Symbol: "MSFT", Quantity: 100, Side: orders.Bid, FillPrice: -1},
			LimitPrice: 100,
		}
		_ = a.h.SendMessage(0, message.NewLimitOrderMsg(a.h.Minter(), order))
	}

	k := kernel.New(testLogger())
	_, err := k.Run(kernel.RunConfig{
		Agents:                  []kernel.Agent{exch, trader},
		StartTime:               simtime.FromNanos(0),
		StopTime:                simtime.FromNanos(1000),
		DefaultComputationDelay: 1,
		DefaultLatency:          1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trader.received) != 0 {
		t.Fatalf("expected no notifications for an unknown symbol, got %+v", trader.received)
	}
}

func TestQueryLastTradeUnknownSymbolReturnsSentinel(t *testing.T) {
	exch := New(0, baseConfig())
	trader := &traderAgent{id: 1, typeName: "Trader", wakeupAt: simtime.FromNanos(100)}
	trader.onWakeup = func(a *traderAgent) {
		_ = a.h.SendMessage(0, message.NewQueryLastTrade(a.h.Minter(), "MSFT"))
	}

	k := kernel.New(testLogger())
	_, err := k.Run(kernel.RunConfig{
		Agents:                  []kernel.Agent{exch, trader},
		StartTime:               simtime.FromNanos(0),
		StopTime:                simtime.FromNanos(1000),
		DefaultComputationDelay: 1,
		DefaultLatency:          1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp *message.QueryLastTradeResponse
	for _, m := range trader.received {
		if r, ok := m.(message.QueryLastTradeResponse); ok {
			resp = &r
		}
	}
	if resp == nil {
		t.Fatalf("expected a QueryLastTradeResponse")
	}
	if resp.LastTrade != -1 {
		t.Fatalf("expected the -1 sentinel for an unknown symbol, got %d", resp.LastTrade)
	}
}

func TestMarketClosedRejectsQueriesAfterClose(t *testing.T) {
	cfg := baseConfig()
	cfg.MktClose = simtime.FromNanos(50)
	exch := New(0, cfg)
	trader := &traderAgent{id: 1, typeName: "Trader", wakeupAt: simtime.FromNanos(100)}
	trader.onWakeup = func(a *traderAgent) {
		_ = a.h.SendMessage(0, message.NewQueryLastTrade(a.h.Minter(), "AAPL"))
	}

	k := kernel.New(testLogger())
	_, err := k.Run(kernel.RunConfig{
		Agents:                  []kernel.Agent{exch, trader},
		StartTime:               simtime.FromNanos(0),
		StopTime:                simtime.FromNanos(1000),
		DefaultComputationDelay: 1,
		DefaultLatency:          1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var closed bool
	for _, m := range trader.received {
		if m.Kind() == message.KindMarketClosed {
			closed = true
		}
	}
	if !closed {
		t.Fatalf("expected a MarketClosed notification once past mkt_close, got %+v", trader.received)
	}
}

func TestMetricTrackerSpread(t *testing.T) {
	m := NewMetricTracker()
	if m.MeanSpread() != -1 {
		t.Fatalf("expected -1 mean spread with no observations")
	}
	m.ObserveSpread(100, 105)
	m.ObserveSpread(100, 110)
	if m.MinSpread != 5 || m.MaxSpread != 10 {
		t.Fatalf("expected min/max spread 5/10, got %d/%d", m.MinSpread, m.MaxSpread)
	}
	if m.MeanSpread() != 7 {
		t.Fatalf("expected mean spread 7, got %d", m.MeanSpread())
	}
}
