package tradingagent

import (
	"testing"

	"github.com/rs/zerolog"

	"simmarket/src/kernel"
	"simmarket/src/message"
	"simmarket/src/orders"
	"simmarket/src/simtime"
)

// harnessAgent is the minimal kernel.Agent wrapper needed to drive State
// through a real kernel.Run, since CreateLimitOrder/PlaceLimitOrder/Wakeup
// all read the handle's current time or send through it.
type harnessAgent struct {
	State

	wakeupAt simtime.Timestamp
	onWakeup func(a *harnessAgent)
	fired    bool
}

func (a *harnessAgent) AgentID() int     { return a.State.ID }
func (a *harnessAgent) TypeName() string { return a.State.Type }
func (a *harnessAgent) KernelStarting(t simtime.Timestamp) {
	// State.KernelStarting already requests its own ASAP wakeup; schedule
	// the test's requested one on top of it, same as a concrete strategy
	// would schedule its own steady-state wakeup time.
	a.State.KernelStarting(t)
	if a.wakeupAt > 0 {
		_ = a.State.H.SetWakeup(a.wakeupAt)
	}
}
func (a *harnessAgent) Wakeup(currentTime simtime.Timestamp) {
	if a.fired {
		return
	}
	a.fired = true
	if a.onWakeup != nil {
		a.onWakeup(a)
	}
}

// dummyExchangeAgent records everything sent to it, standing in for the
// real exchange package so these tests stay scoped to tradingagent.
type dummyExchangeAgent struct {
	id       int
	received []message.Message
}

func (d *dummyExchangeAgent) AgentID() int                              { return d.id }
func (d *dummyExchangeAgent) TypeName() string                          { return "ExchangeAgent" }
func (d *dummyExchangeAgent) KernelInitialising(h *kernel.Handle)        {}
func (d *dummyExchangeAgent) KernelStarting(simtime.Timestamp)          {}
func (d *dummyExchangeAgent) KernelStopping()                           {}
func (d *dummyExchangeAgent) KernelTerminating()                        {}
func (d *dummyExchangeAgent) Wakeup(simtime.Timestamp)                  {}
func (d *dummyExchangeAgent) ReceiveMessage(currentTime simtime.Timestamp, senderID int, body message.Message) {
	d.received = append(d.received, body)
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

func TestFmtHoldingsPutsCashLast(t *testing.T) {
	var s State
	Init(&s, 1, "T", "Trader", 1000, false)
	s.Holdings["AAPL"] = 50

	want := "{ AAPL: 50, CASH: 1000 }"
	if got := s.FmtHoldings(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMarkToMarketValuesNonCashAtLastTrade(t *testing.T) {
	var s State
	Init(&s, 1, "T", "Trader", 1000, false)
	s.Holdings["AAPL"] = 10
	s.LastTrade["AAPL"] = 200

	if got := s.MarkToMarket(); got != 1000+10*200 {
		t.Fatalf("expected mark-to-market 3000, got %d", got)
	}
}

func TestGetKnownBidAskSentinelWhenUnknown(t *testing.T) {
	var s State
	Init(&s, 1, "T", "Trader", 1000, false)

	bid, bidVol, ask, askVol := s.GetKnownBidAsk("AAPL")
	if bid != -1 || bidVol != -1 || ask != -1 || askVol != -1 {
		t.Fatalf("expected all -1 sentinels, got (%d, %d, %d, %d)", bid, bidVol, ask, askVol)
	}
}

func TestReceiveMessageTracksMarketHoursAndClosePrice(t *testing.T) {
	var s State
	Init(&s, 1, "T", "Trader", 1000, false)
	var m message.Minter

	s.ReceiveMessage(0, 0, message.NewMarketHours(&m, simtime.FromNanos(100), simtime.FromNanos(900)))
	if s.MktOpen != simtime.FromNanos(100) || s.MktClose != simtime.FromNanos(900) {
		t.Fatalf("expected market hours to be recorded, got open=%v close=%v", s.MktOpen, s.MktClose)
	}

	s.ReceiveMessage(0, 0, message.NewMarketClosePrice(&m, map[string]int64{"AAPL": 150}))
	if !s.MktClosed {
		t.Fatalf("expected MktClosed to be set")
	}
	if s.LastTrade["AAPL"] != 150 {
		t.Fatalf("expected the close price to be recorded as last trade, got %d", s.LastTrade["AAPL"])
	}
}

func TestReceiveMessageOrderAcceptedThenExecutedUpdatesHoldings(t *testing.T) {
	var s State
	Init(&s, 1, "T", "Trader", 1000, false)
	var m message.Minter

	resting := orders.LimitOrder{
		Order:      orders.Order{OrderID: 7, AgentID: 1, Symbol: "AAPL", Quantity: 10, Side: orders.Bid, FillPrice: -1},
		LimitPrice: 100,
	}
	s.ReceiveMessage(0, 0, message.NewOrderAccepted(&m, resting))
	if _, ok := s.Orders[7]; !ok {
		t.Fatalf("expected the accepted order to be tracked")
	}

	fill := orders.Order{OrderID: 7, AgentID: 1, Symbol: "AAPL", Quantity: 10, Side: orders.Bid, FillPrice: 100}
	s.ReceiveMessage(0, 0, message.NewOrderExecuted(&m, fill))

	if _, ok := s.Orders[7]; ok {
		t.Fatalf("expected the fully filled order to be removed from tracking")
	}
	if s.Holdings["AAPL"] != 10 {
		t.Fatalf("expected 10 shares of AAPL after the fill, got %d", s.Holdings["AAPL"])
	}
	if s.Holdings[CashSymbol] != 1000-10*100 {
		t.Fatalf("expected cash to be debited by quantity*fillPrice, got %d", s.Holdings[CashSymbol])
	}
}

func TestReceiveMessagePartialFillLeavesRemainderResting(t *testing.T) {
	var s State
	Init(&s, 1, "T", "Trader", 1000, false)
	var m message.Minter

	resting := orders.LimitOrder{
		Order:      orders.Order{OrderID: 7, AgentID: 1, Symbol: "AAPL", Quantity: 10, Side: orders.Bid, FillPrice: -1},
		LimitPrice: 100,
	}
	s.ReceiveMessage(0, 0, message.NewOrderAccepted(&m, resting))

	fill := orders.Order{OrderID: 7, AgentID: 1, Symbol: "AAPL", Quantity: 4, Side: orders.Bid, FillPrice: 100}
	s.ReceiveMessage(0, 0, message.NewOrderExecuted(&m, fill))

	remaining, ok := s.Orders[7]
	if !ok {
		t.Fatalf("expected the partially filled order to remain tracked")
	}
	if remaining.Quantity != 6 {
		t.Fatalf("expected 6 shares remaining, got %d", remaining.Quantity)
	}
	if s.Holdings["AAPL"] != 4 {
		t.Fatalf("expected 4 shares filled, got %d", s.Holdings["AAPL"])
	}
}

func TestCreateLimitOrderRejectsWhenAtRiskExceedsStartingCash(t *testing.T) {
	a := &harnessAgent{wakeupAt: simtime.FromNanos(10)}
	Init(&a.State, 0, "T", "Trader", 1000, false)
	a.State.LastTrade["AAPL"] = 100

	var gotOK bool
	a.onWakeup = func(h *harnessAgent) {
		_, ok := h.State.CreateLimitOrder("AAPL", 50, orders.Bid, 100, OrderOpts{})
		gotOK = ok
	}

	k := kernel.New(testLogger())
	_, err := k.Run(kernel.RunConfig{
		Agents:    []kernel.Agent{a},
		StartTime: simtime.FromNanos(0),
		StopTime:  simtime.FromNanos(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOK {
		t.Fatalf("expected the order to be rejected for exceeding starting cash at risk")
	}
}

func TestCreateLimitOrderAcceptsWithinRiskLimit(t *testing.T) {
	a := &harnessAgent{wakeupAt: simtime.FromNanos(10)}
	Init(&a.State, 0, "T", "Trader", 1000, false)
	a.State.LastTrade["AAPL"] = 100

	var gotOK bool
	a.onWakeup = func(h *harnessAgent) {
		_, ok := h.State.CreateLimitOrder("AAPL", 5, orders.Bid, 100, OrderOpts{})
		gotOK = ok
	}

	k := kernel.New(testLogger())
	_, err := k.Run(kernel.RunConfig{
		Agents:    []kernel.Agent{a},
		StartTime: simtime.FromNanos(0),
		StopTime:  simtime.FromNanos(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotOK {
		t.Fatalf("expected an order well within starting cash to be accepted")
	}
}

func TestPlaceLimitOrderSendsToExchangeAndRemembersLocally(t *testing.T) {
	exch := &dummyExchangeAgent{id: 0}
	a := &harnessAgent{wakeupAt: simtime.FromNanos(10)}
	Init(&a.State, 1, "T", "Trader", 100000, false)
	a.onWakeup = func(h *harnessAgent) {
		h.State.PlaceLimitOrder("AAPL", 10, orders.Bid, 100, OrderOpts{IgnoreRisk: true})
	}

	k := kernel.New(testLogger())
	_, err := k.Run(kernel.RunConfig{
		Agents:    []kernel.Agent{exch, a},
		StartTime: simtime.FromNanos(0),
		StopTime:  simtime.FromNanos(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(exch.received) != 1 {
		t.Fatalf("expected exactly one message sent to the exchange, got %d", len(exch.received))
	}
	lo, ok := exch.received[0].(message.LimitOrderMsg)
	if !ok {
		t.Fatalf("expected a LimitOrderMsg, got %T", exch.received[0])
	}
	if lo.Order.Quantity != 10 || lo.Order.Symbol != "AAPL" {
		t.Fatalf("unexpected order contents: %+v", lo.Order)
	}
	if len(a.State.Orders) != 1 {
		t.Fatalf("expected the placed order to be remembered locally")
	}
}
