package exchange

import (
	"simmarket/src/message"
	"simmarket/src/orderbook"
	"simmarket/src/simtime"
)

func (a *Agent) handleQueryLastTrade(senderID int, m message.QueryLastTrade) {
	book, ok := a.books[m.Symbol]
	if !ok {
		a.h.SendMessage(senderID, message.NewQueryLastTradeResponse(a.h.Minter(), m.Symbol, a.marketClosed(), -1))
		return
	}
	a.h.SendMessage(senderID, message.NewQueryLastTradeResponse(a.h.Minter(), m.Symbol, a.marketClosed(), book.LastTrade))
}

func (a *Agent) handleQuerySpread(senderID int, m message.QuerySpread) {
	book, ok := a.books[m.Symbol]
	if !ok {
		a.h.SendMessage(senderID, message.NewQuerySpreadResponse(a.h.Minter(), m.Symbol, a.marketClosed(), m.Depth, nil, nil, -1))
		return
	}
	bids, asks := book.Depth(m.Depth)
	a.h.SendMessage(senderID, message.NewQuerySpreadResponse(a.h.Minter(), m.Symbol, a.marketClosed(), m.Depth, bids, asks, book.LastTrade))
}

func (a *Agent) handleQueryOrderStream(senderID int, m message.QueryOrderStream) {
	book, ok := a.books[m.Symbol]
	if !ok {
		a.h.SendMessage(senderID, message.NewQueryOrderStreamResponse(a.h.Minter(), m.Symbol, a.marketClosed(), m.Length, nil))
		return
	}
	events := book.History(m.Length)
	a.h.SendMessage(senderID, message.NewQueryOrderStreamResponse(a.h.Minter(), m.Symbol, a.marketClosed(), m.Length, events))
}

func (a *Agent) handleQueryTransactedVol(senderID int, m message.QueryTransactedVol) {
	book, ok := a.books[m.Symbol]
	if !ok {
		a.h.SendMessage(senderID, message.NewQueryTransactedVolResponse(a.h.Minter(), m.Symbol, a.marketClosed(), -1, -1))
		return
	}
	buyVol, sellVol := book.TransactedVolume(a.h.CurrentTime(), m.Lookback)
	a.h.SendMessage(senderID, message.NewQueryTransactedVolResponse(a.h.Minter(), m.Symbol, a.marketClosed(), buyVol, sellVol))
}

func (a *Agent) handleSubscriptionRequest(senderID int, m message.MarketDataSubscriptionRequest) {
	subs := a.subscriptions[m.Symbol]
	if m.Cancel {
		out := subs[:0]
		for _, s := range subs {
			if s.agentID != senderID || s.spec.Kind != m.Spec.Kind {
				out = append(out, s)
			}
		}
		a.subscriptions[m.Symbol] = out
		return
	}
	a.subscriptions[m.Symbol] = append(subs, &subscription{agentID: senderID, spec: m.Spec, lastTS: -1})
}

func (a *Agent) handleLimitOrderMsg(senderID int, m message.LimitOrderMsg) {
	order := m.Order
	order.AgentID = senderID
	book, ok := a.books[order.Symbol]
	if !ok {
		a.h.LogEvent("UNKNOWN_SYMBOL", order.Symbol)
		return
	}
	a.h.Delay(a.cfg.PipelineDelay)
	book.HandleLimitOrder(order, false)
	a.evaluateSubscriptions(order.Symbol)
}

func (a *Agent) handleMarketOrderMsg(senderID int, m message.MarketOrderMsg) {
	order := m.Order
	order.AgentID = senderID
	book, ok := a.books[order.Symbol]
	if !ok {
		a.h.LogEvent("UNKNOWN_SYMBOL", order.Symbol)
		return
	}
	a.h.Delay(a.cfg.PipelineDelay)
	book.HandleMarketOrder(order)
	a.evaluateSubscriptions(order.Symbol)
}

func (a *Agent) handleCancelOrderMsg(senderID int, m message.CancelOrderMsg) {
	book, ok := a.books[m.Symbol]
	if !ok {
		return
	}
	a.h.Delay(a.cfg.PipelineDelay)
	book.CancelOrder(m.OrderID, senderID)
	a.evaluateSubscriptions(m.Symbol)
}

func (a *Agent) handleReplaceOrderMsg(senderID int, m message.ReplaceOrderMsg) {
	book, ok := a.books[m.Symbol]
	if !ok {
		return
	}
	a.h.Delay(a.cfg.PipelineDelay)
	newOrder := m.NewOrder
	newOrder.AgentID = senderID
	book.ReplaceOrder(m.OldOrderID, senderID, newOrder)
	a.evaluateSubscriptions(m.Symbol)
}

// evaluateSubscriptions fires every subscription for symbol whose
// frequency has elapsed since its last emission, per SPEC_FULL's choice
// to evaluate on book mutation (spec §9 open question, resolved).
func (a *Agent) evaluateSubscriptions(symbol string) {
	book, ok := a.books[symbol]
	if !ok {
		return
	}
	now := a.h.CurrentTime()
	for _, sub := range a.subscriptions[symbol] {
		switch sub.spec.Kind {
		case message.SubL1:
			a.emitL1(symbol, book, sub, now)
		case message.SubL2:
			a.emitL2(symbol, book, sub, now)
		case message.SubL3:
			a.emitL3(symbol, book, sub, now)
		case message.SubTransactedVol:
			a.emitTransactedVol(symbol, book, sub, now)
		case message.SubBookImbalance:
			a.emitBookImbalance(symbol, book, sub, now)
		}
	}

	bidPrice, _, askPrice, _ := book.BestBidAsk()
	a.metrics[symbol].ObserveSpread(bidPrice, askPrice)

	delta := book.ExecutionCount - a.lastExecCount[symbol]
	for i := int64(0); i < delta; i++ {
		a.metrics[symbol].ObserveTrade()
	}
	a.lastExecCount[symbol] = book.ExecutionCount
}

func due(sub *subscription, now simtime.Timestamp) bool {
	return sub.lastTS < 0 || now.Nanos()-sub.lastTS.Nanos() >= sub.spec.Freq
}

func (a *Agent) emitL1(symbol string, book *orderbook.OrderBook, sub *subscription, now simtime.Timestamp) {
	if !due(sub, now) {
		return
	}
	bidPrice, bidQty, askPrice, askQty := book.BestBidAsk()
	if bidPrice == 0 {
		bidPrice, bidQty = -1, 0
	}
	if askPrice == 0 {
		askPrice, askQty = -1, 0
	}
	a.h.SendMessage(sub.agentID, message.NewL1Data(a.h.Minter(), symbol, book.LastTrade, now, bidPrice, bidQty, askPrice, askQty))
	sub.lastTS = now
}

func (a *Agent) emitL2(symbol string, book *orderbook.OrderBook, sub *subscription, now simtime.Timestamp) {
	if !due(sub, now) {
		return
	}
	bids, asks := book.Depth(sub.spec.Depth)
	a.h.SendMessage(sub.agentID, message.NewL2Data(a.h.Minter(), symbol, book.LastTrade, now, bids, asks))
	sub.lastTS = now
}

func (a *Agent) emitL3(symbol string, book *orderbook.OrderBook, sub *subscription, now simtime.Timestamp) {
	if !due(sub, now) {
		return
	}
	bids, asks := book.DepthByOrder(sub.spec.Depth)
	a.h.SendMessage(sub.agentID, message.NewL3Data(a.h.Minter(), symbol, book.LastTrade, now, bids, asks))
	sub.lastTS = now
}

func (a *Agent) emitTransactedVol(symbol string, book *orderbook.OrderBook, sub *subscription, now simtime.Timestamp) {
	if !due(sub, now) {
		return
	}
	buyVol, sellVol := book.TransactedVolume(now, sub.spec.Lookback)
	a.h.SendMessage(sub.agentID, message.NewTransactedVolData(a.h.Minter(), symbol, book.LastTrade, now, buyVol, sellVol))
	sub.lastTS = now
}

// emitBookImbalance is edge-triggered, not frequency-gated: it fires a
// START event the first time the imbalance crosses MinImbalance and a
// FINISH event the first time it recedes back below it.
func (a *Agent) emitBookImbalance(symbol string, book *orderbook.OrderBook, sub *subscription, now simtime.Timestamp) {
	imbalance, side := book.Imbalance(0)
	crossed := imbalance >= sub.spec.MinImbalance || -imbalance >= sub.spec.MinImbalance

	if crossed && !sub.imbalanceActive {
		sub.imbalanceActive = true
		sub.imbalanceSide = side
		a.h.SendMessage(sub.agentID, message.NewBookImbalanceData(a.h.Minter(), symbol, book.LastTrade, now, message.StageStart, imbalance, side))
		return
	}
	if !crossed && sub.imbalanceActive {
		sub.imbalanceActive = false
		a.h.SendMessage(sub.agentID, message.NewBookImbalanceData(a.h.Minter(), symbol, book.LastTrade, now, message.StageFinish, imbalance, sub.imbalanceSide))
	}
}
