// Package tradingagent is the shared base every trading strategy embeds: it
// tracks holdings, outstanding orders, and the exchange's open/close times,
// and implements the bookkeeping TradingAgent.cpp performs around order
// placement and end-of-run valuation. Concrete strategies (agents/noise)
// embed State and drive it from their own Wakeup/ReceiveMessage.
package tradingagent

import (
	"fmt"
	"sort"

	"simmarket/src/kernel"
	"simmarket/src/message"
	"simmarket/src/orders"
	"simmarket/src/simtime"
)

// CashSymbol is the synthetic holdings key for the agent's cash balance,
// worth one cent per unit.
const CashSymbol = "CASH"

// knownQuote is the most recent (bid, bidVol, ask, askVol) tuple recorded
// from a market-data push or query response for one symbol.
type knownQuote struct {
	bid, bidVol, ask, askVol int64
}

// State holds everything TradingAgent.cpp tracks on behalf of every
// concrete strategy. It is meant to be embedded, not used standalone.
type State struct {
	ID           int
	Name         string
	Type         string
	StartingCash int64
	LogOrders    bool

	H          *kernel.Handle
	ExchangeID int

	Holdings map[string]int64
	Orders   map[uint64]orders.LimitOrder
	IDMinter *orders.IDMinter

	LastTrade map[string]int64
	knownBid  map[string]knownQuote

	MktOpen   simtime.Timestamp
	MktClose  simtime.Timestamp
	MktClosed bool

	FirstWake bool
}

// Init prepares the embedded state. Call it from the concrete strategy's
// constructor.
func Init(s *State, id int, name, typeName string, startingCash int64, logOrders bool) {
	s.ID = id
	s.Name = name
	s.Type = typeName
	s.StartingCash = startingCash
	s.LogOrders = logOrders
	s.Holdings = map[string]int64{CashSymbol: startingCash}
	s.Orders = make(map[uint64]orders.LimitOrder)
	s.IDMinter = orders.NewIDMinter(id)
	s.LastTrade = make(map[string]int64)
	s.knownBid = make(map[string]knownQuote)
	s.MktOpen = simtime.Invalid
	s.MktClose = simtime.Invalid
	s.FirstWake = true
}

// KernelInitialising stores the handle every later call needs.
func (s *State) KernelInitialising(h *kernel.Handle) { s.H = h }

// KernelStarting locates the exchange agent, mirroring
// TradingAgent::kernelStarting's findAgentByType call, then requests an
// early wakeup the way the base Agent class does for every agent ("a
// wakeup call for the first available timestamp"), so the agent's first
// Wakeup fires its market-hours request well before any strategy-specific
// wakeup time a subclass schedules on top of it.
func (s *State) KernelStarting(startTime simtime.Timestamp) {
	s.H.LogEvent("STARTING_CASH", fmt.Sprintf("%d", s.StartingCash))
	id, ok := s.H.FindAgentByType("ExchangeAgent")
	if !ok {
		s.H.LogEvent("NO_EXCHANGE_FOUND", "")
		return
	}
	s.ExchangeID = id
	_ = s.H.SetWakeup(0)
}

// KernelTerminating is a no-op; TradingAgent.cpp has nothing to release at
// this point and every concrete strategy so far agrees.
func (s *State) KernelTerminating() {}

// KernelStopping marks to market and logs the end-of-run position, per
// TradingAgent::kernelStopping.
func (s *State) KernelStopping() {
	s.H.LogEvent("FINAL_HOLDINGS", s.FmtHoldings())
	cash := s.MarkToMarket()
	s.H.LogEvent("ENDING_CASH", fmt.Sprintf("%d", cash))
}

// Wakeup performs the bookkeeping common to every strategy's wakeup: the
// one-time first-wake holdings log and close-price subscription, and a
// standing request for market hours until they're known. It returns
// whether the caller is ready to trade (hours known, market not closed).
func (s *State) Wakeup(currentTime simtime.Timestamp) bool {
	if s.FirstWake {
		s.H.LogEvent("HOLDINGS_UPDATED", s.FmtHoldings())
		s.FirstWake = false
		s.H.SendMessage(s.ExchangeID, message.NewMarketClosePriceRequest(s.H.Minter()))
	}

	if !s.MktOpen.IsValid() || !s.MktClose.IsValid() {
		s.H.SendMessage(s.ExchangeID, message.NewMarketHoursRequest(s.H.Minter()))
	}

	return s.MktOpen.IsValid() && s.MktClose.IsValid() && !s.MktClosed
}

// ReceiveMessage records market hours and close prices as they arrive; it
// must be called from every concrete strategy's ReceiveMessage before any
// strategy-specific handling of the same message.
func (s *State) ReceiveMessage(currentTime simtime.Timestamp, senderID int, body message.Message) {
	switch m := body.(type) {
	case message.MarketHours:
		s.MktOpen = m.MktOpen
		s.MktClose = m.MktClose

	case message.MarketClosePrice:
		s.MktClosed = true
		for symbol, price := range m.ClosePrices {
			s.LastTrade[symbol] = price
		}

	case message.L1Data:
		s.knownBid[m.Symbol] = knownQuote{bid: m.BidPrice, bidVol: m.BidQty, ask: m.AskPrice, askVol: m.AskQty}

	case message.QuerySpreadResponse:
		var bidP, bidQ, askP, askQ int64 = -1, 0, -1, 0
		if len(m.Bids) > 0 {
			bidP, bidQ = m.Bids[0].Price, m.Bids[0].Qty
		}
		if len(m.Asks) > 0 {
			askP, askQ = m.Asks[0].Price, m.Asks[0].Qty
		}
		s.knownBid[m.Symbol] = knownQuote{bid: bidP, bidVol: bidQ, ask: askP, askVol: askQ}
		if m.LastTrade >= 0 {
			s.LastTrade[m.Symbol] = m.LastTrade
		}

	case message.OrderAccepted:
		s.Orders[m.Order.OrderID] = m.Order

	case message.OrderExecuted:
		s.applyFill(m.Order)

	case message.OrderCancelled:
		delete(s.Orders, m.Order.OrderID)

	case message.OrderPartialCancelled:
		s.Orders[m.NewOrder.OrderID] = m.NewOrder

	case message.OrderModified:
		s.Orders[m.NewOrder.OrderID] = m.NewOrder

	case message.OrderReplaced:
		delete(s.Orders, m.OldOrder.OrderID)
		s.Orders[m.NewOrder.OrderID] = m.NewOrder
	}
}

// applyFill updates holdings and the resting order book for one execution,
// mirroring the cash/shares leg TradingAgent never implements explicitly in
// original_source (it is left to subclasses there) but which every
// strategy needs to keep markToMarket accurate.
func (s *State) applyFill(o orders.Order) {
	resting, ok := s.Orders[o.OrderID]
	if !ok {
		return
	}
	resting.Quantity -= o.Quantity
	if resting.Quantity <= 0 {
		delete(s.Orders, o.OrderID)
	} else {
		s.Orders[o.OrderID] = resting
	}

	signedQty := o.Quantity
	if resting.Side.IsAsk() {
		signedQty = -signedQty
	}
	s.Holdings[resting.Symbol] += signedQty
	s.Holdings[CashSymbol] -= signedQty * o.FillPrice
}

// FmtHoldings renders the holdings map deterministically, CASH last, per
// TradingAgent::fmtHoldings.
func (s *State) FmtHoldings() string {
	symbols := make([]string, 0, len(s.Holdings))
	for symbol := range s.Holdings {
		if symbol != CashSymbol {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)

	out := "{ "
	for _, symbol := range symbols {
		out += fmt.Sprintf("%s: %d, ", symbol, s.Holdings[symbol])
	}
	out += fmt.Sprintf("CASH: %d }", s.Holdings[CashSymbol])
	return out
}

// GetHoldings returns the held quantity of symbol, 0 if never traded.
func (s *State) GetHoldings(symbol string) int64 { return s.Holdings[symbol] }

// MarkToMarket values every non-cash holding at its last trade price and
// returns total account value, per TradingAgent::markToMarket (use_midpoint
// is the strategy's job to apply before calling, via GetKnownBidAsk).
func (s *State) MarkToMarket() int64 {
	total := s.Holdings[CashSymbol]
	for symbol, qty := range s.Holdings {
		if symbol == CashSymbol {
			continue
		}
		total += qty * s.LastTrade[symbol]
	}
	return total
}

// GetKnownBidAsk returns the most recently recorded (bid, bidVol, ask,
// askVol) for symbol, or all -1 if nothing has been recorded yet, per the
// §7 missing-data sentinel rule.
func (s *State) GetKnownBidAsk(symbol string) (bid, bidVol, ask, askVol int64) {
	q, ok := s.knownBid[symbol]
	if !ok {
		return -1, -1, -1, -1
	}
	return q.bid, q.bidVol, q.ask, q.askVol
}

// GetCurrentSpread asks the exchange for the top depth levels of symbol.
func (s *State) GetCurrentSpread(symbol string, depth int) {
	s.H.SendMessage(s.ExchangeID, message.NewQuerySpread(s.H.Minter(), symbol, depth))
}

// CreateLimitOrder builds a LimitOrder and, unless ignoreRisk is set, drops
// it (returning ok=false) when it would increase the agent's at-risk
// capital beyond starting cash, per TradingAgent::createLimitOrder.
func (s *State) CreateLimitOrder(symbol string, quantity int64, side orders.Side, limitPrice int64, opts OrderOpts) (orders.LimitOrder, bool) {
	if quantity <= 0 {
		return orders.LimitOrder{}, false
	}

	orderID := opts.OrderID
	if orderID == 0 {
		orderID = s.IDMinter.Next()
	}

	order := orders.LimitOrder{
		Order: orders.Order{
			OrderID:   orderID,
			AgentID:   s.ID,
			Timestamp: s.H.CurrentTime(),
			Symbol:    symbol,
			Quantity:  quantity,
			Side:      side,
			FillPrice: -1,
			Tag:       opts.Tag,
		},
		LimitPrice:      limitPrice,
		IsHidden:        opts.IsHidden,
		IsPriceToComply: opts.IsPriceToComply,
		InsertByID:      opts.InsertByID,
		IsPostOnly:      opts.IsPostOnly,
	}

	if opts.IgnoreRisk {
		return order, true
	}

	signedQty := quantity
	if side.IsAsk() {
		signedQty = -signedQty
	}
	before := s.MarkToMarket() - s.Holdings[CashSymbol]

	s.Holdings[symbol] += signedQty
	after := s.MarkToMarket() - s.Holdings[CashSymbol]
	s.Holdings[symbol] -= signedQty

	if after > before && after > s.StartingCash {
		s.H.LogEvent("ORDER_REJECTED_AT_RISK", s.FmtHoldings())
		return orders.LimitOrder{}, false
	}
	return order, true
}

// OrderOpts carries CreateLimitOrder/PlaceLimitOrder's optional fields,
// replacing original_source's long default-argument parameter list.
type OrderOpts struct {
	OrderID         uint64
	IsHidden        bool
	IsPriceToComply bool
	InsertByID      bool
	IsPostOnly      bool
	IgnoreRisk      bool
	Tag             orders.OrderTag
}

// PlaceLimitOrder builds and submits a limit order to the exchange,
// remembering it locally, per TradingAgent::placeLimitOrder. The at-risk
// check applies unless opts.IgnoreRisk is set.
func (s *State) PlaceLimitOrder(symbol string, quantity int64, side orders.Side, limitPrice int64, opts OrderOpts) {
	order, ok := s.CreateLimitOrder(symbol, quantity, side, limitPrice, opts)
	if !ok {
		return
	}
	s.Orders[order.OrderID] = order
	s.H.SendMessage(s.ExchangeID, message.NewLimitOrderMsg(s.H.Minter(), order))
	if s.LogOrders {
		s.H.LogEvent("ORDER_SUBMITTED", fmt.Sprintf("%+v", order))
	}
}

// CancelOrder requests cancellation of a resting order.
func (s *State) CancelOrder(symbol string, orderID uint64) {
	s.H.SendMessage(s.ExchangeID, message.NewCancelOrderMsg(s.H.Minter(), symbol, orderID, s.ID))
}

// RequestDataSubscription registers a market-data feed with the exchange.
func (s *State) RequestDataSubscription(symbol string, spec message.SubscriptionSpec) {
	s.H.SendMessage(s.ExchangeID, message.NewMarketDataSubscriptionRequest(s.H.Minter(), symbol, false, spec))
}

// CancelDataSubscription cancels a previously requested market-data feed.
func (s *State) CancelDataSubscription(symbol string, spec message.SubscriptionSpec) {
	s.H.SendMessage(s.ExchangeID, message.NewMarketDataSubscriptionRequest(s.H.Minter(), symbol, true, spec))
}
