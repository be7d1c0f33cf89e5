// Package exchange implements the one-per-simulation agent that owns every
// symbol's order book, answers queries and subscriptions, and emits
// periodic or edge-triggered market data, per spec §4.4.
package exchange

import (
	"sort"

	"simmarket/src/kernel"
	"simmarket/src/message"
	"simmarket/src/orderbook"
	"simmarket/src/simtime"
)

// Config bundles the construction-time parameters spec §4.4 names on the
// ExchangeAgent: pipeline_delay (extra delay for order activity beyond the
// agent's computational delay), book_logging/book_log_depth/log_orders,
// and the per-book history ring size.
type Config struct {
	Symbols       []string
	MktOpen       simtime.Timestamp
	MktClose      simtime.Timestamp
	PipelineDelay int64
	StreamHistory int
	BookLogging   bool
	BookLogDepth  int
	LogOrders     bool
}

type subscription struct {
	agentID  int
	spec     message.SubscriptionSpec
	lastTS   simtime.Timestamp
	imbalanceActive bool
	imbalanceSide   string
}

// Agent is the exchange: the only simulation participant that mutates
// order books. All book access happens inside message handling, which the
// kernel runs strictly sequentially, so no book-level locking is needed
// (spec §5 shared-resource policy).
type Agent struct {
	id int
	h  *kernel.Handle

	cfg   Config
	books map[string]*orderbook.OrderBook

	metrics map[string]*MetricTracker

	subscriptions  map[string][]*subscription // keyed by symbol
	closePriceSubs map[int]bool

	lastExecCount map[string]int64
}

// New constructs an exchange agent for the given agent id and config. The
// kernel assigns id; it must equal the agent's index in the agents slice
// passed to kernel.Run.
func New(id int, cfg Config) *Agent {
	a := &Agent{
		id:             id,
		cfg:            cfg,
		books:          make(map[string]*orderbook.OrderBook, len(cfg.Symbols)),
		metrics:        make(map[string]*MetricTracker, len(cfg.Symbols)),
		subscriptions:  make(map[string][]*subscription),
		closePriceSubs: make(map[int]bool),
		lastExecCount:  make(map[string]int64, len(cfg.Symbols)),
	}
	return a
}

func (a *Agent) AgentID() int      { return a.id }
func (a *Agent) TypeName() string  { return "ExchangeAgent" }

func (a *Agent) KernelInitialising(h *kernel.Handle) {
	a.h = h
	for _, s := range a.cfg.Symbols {
		a.books[s] = orderbook.New(a, s, a.cfg.StreamHistory, a.cfg.BookLogging, a.cfg.BookLogDepth)
		a.metrics[s] = NewMetricTracker()
	}
}

func (a *Agent) KernelStarting(startTime simtime.Timestamp) {
	if err := a.h.SetWakeup(a.cfg.MktClose); err != nil {
		a.h.LogEvent("SET_WAKEUP_FAILED", err.Error())
	}
}

// Wakeup fires once, at mkt_close, to emit close prices to subscribers.
func (a *Agent) Wakeup(currentTime simtime.Timestamp) {
	if currentTime < a.cfg.MktClose || len(a.closePriceSubs) == 0 {
		return
	}
	prices := make(map[string]int64, len(a.books))
	for symbol, book := range a.books {
		prices[symbol] = book.LastTrade
	}
	subs := make([]int, 0, len(a.closePriceSubs))
	for agentID := range a.closePriceSubs {
		subs = append(subs, agentID)
	}
	sort.Ints(subs)
	for _, agentID := range subs {
		a.h.SendMessage(agentID, message.NewMarketClosePrice(a.h.Minter(), prices))
	}
}

func (a *Agent) marketClosed() bool { return a.h.CurrentTime() >= a.cfg.MktClose }

// Summary returns each traded symbol's last trade price and accumulated
// metrics, for the CLI driver's end-of-run report.
func (a *Agent) Summary() (lastTrade map[string]int64, metrics map[string]Snapshot) {
	lastTrade = make(map[string]int64, len(a.books))
	metrics = make(map[string]Snapshot, len(a.metrics))
	for symbol, book := range a.books {
		lastTrade[symbol] = book.LastTrade
	}
	for symbol, m := range a.metrics {
		metrics[symbol] = m.Snapshot()
	}
	return lastTrade, metrics
}

// ReceiveMessage dispatches on the message's concrete type, the idiomatic
// replacement for the long if/else cascade the Design Notes (spec §9)
// flag. Variants without a case are logged as UNHANDLED_MESSAGE.
func (a *Agent) ReceiveMessage(currentTime simtime.Timestamp, senderID int, body message.Message) {
	if a.marketClosed() && !isCloseExempt(body) {
		a.h.SendMessage(senderID, message.NewMarketClosed(a.h.Minter()))
		return
	}

	switch m := body.(type) {
	case message.MarketHoursRequest:
		a.h.SendMessage(senderID, message.NewMarketHours(a.h.Minter(), a.cfg.MktOpen, a.cfg.MktClose))

	case message.MarketClosePriceRequest:
		a.closePriceSubs[senderID] = true

	case message.QueryLastTrade:
		a.handleQueryLastTrade(senderID, m)

	case message.QuerySpread:
		a.handleQuerySpread(senderID, m)

	case message.QueryOrderStream:
		a.handleQueryOrderStream(senderID, m)

	case message.QueryTransactedVol:
		a.handleQueryTransactedVol(senderID, m)

	case message.MarketDataSubscriptionRequest:
		a.handleSubscriptionRequest(senderID, m)

	case message.LimitOrderMsg:
		a.handleLimitOrderMsg(senderID, m)

	case message.MarketOrderMsg:
		a.handleMarketOrderMsg(senderID, m)

	case message.CancelOrderMsg:
		a.handleCancelOrderMsg(senderID, m)

	case message.ReplaceOrderMsg:
		a.handleReplaceOrderMsg(senderID, m)

	default:
		a.h.LogEvent("UNHANDLED_MESSAGE", m.Kind().String())
	}
}

// isCloseExempt reports whether a message must still be handled after
// mkt_close: only the close-price subscription registration itself. Close
// prices are sent only from the single Wakeup at mkt_close, so a
// registration handled after that Wakeup receives no MarketClosePrice.
func isCloseExempt(body message.Message) bool {
	_, ok := body.(message.MarketClosePriceRequest)
	return ok
}

func (a *Agent) KernelStopping()   {}
func (a *Agent) KernelTerminating() {}

// --- orderbook.Owner ---

func (a *Agent) CurrentTime() simtime.Timestamp { return a.h.CurrentTime() }

func (a *Agent) SendMessage(agentID int, msg message.Message) {
	if err := a.h.SendMessage(agentID, msg); err != nil {
		a.h.LogEvent("SEND_MESSAGE_FAILED", err.Error())
	}
}

func (a *Agent) Minter() *message.Minter { return a.h.Minter() }

func (a *Agent) LogEvent(eventType, detail string) { a.h.LogEvent(eventType, detail) }
