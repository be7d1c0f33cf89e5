// Package noise implements the reference trading strategy: it wakes once
// at a configured time, waits for market hours, then places one
// random-direction limit order at the opposing best price, grounded on
// NoiseAgent.cpp's AWAITING_WAKEUP -> AWAITING_SPREAD -> place state
// machine.
package noise

import (
	"fmt"
	"math/rand"

	"simmarket/src/kernel"
	"simmarket/src/message"
	"simmarket/src/orders"
	"simmarket/src/simtime"
	"simmarket/src/tradingagent"
)

type state int

const (
	stateAwaitingWakeup state = iota
	stateAwaitingSpread
)

// Agent is a single noise trader on one symbol.
type Agent struct {
	tradingagent.State

	Symbol     string
	WakeupTime simtime.Timestamp
	rng        *rand.Rand

	size    int64
	trading bool
	st      state
}

// New constructs a noise trader for symbol, waking no earlier than
// wakeupTime, with starting cash startingCash (in cents).
func New(id int, symbol string, wakeupTime simtime.Timestamp, startingCash int64, logOrders bool, seed int64) *Agent {
	a := &Agent{
		Symbol:     symbol,
		WakeupTime: wakeupTime,
		rng:        orders.NewSubRandomSource(seed, id),
		st:         stateAwaitingWakeup,
	}
	tradingagent.Init(&a.State, id, fmt.Sprintf("NOISE_AGENT_%d", id), "NoiseAgent", startingCash, logOrders)
	a.size = int64(20 + a.rng.Intn(31))
	return a
}

func (a *Agent) AgentID() int     { return a.State.ID }
func (a *Agent) TypeName() string { return a.State.Type }

func (a *Agent) KernelInitialising(h *kernel.Handle) { a.State.KernelInitialising(h) }

func (a *Agent) KernelStarting(startTime simtime.Timestamp) {
	a.State.KernelStarting(startTime)
	if err := a.State.H.SetWakeup(a.WakeupTime); err != nil {
		a.State.H.LogEvent("SET_WAKEUP_FAILED", err.Error())
	}
}

// KernelStopping reports a final valuation surplus relative to starting
// cash, per NoiseAgent::kernelStopping.
func (a *Agent) KernelStopping() {
	a.State.KernelStopping()

	bid, _, ask, _ := a.State.GetKnownBidAsk(a.Symbol)
	var mid int64
	if bid != -1 && ask != -1 {
		mid = (bid + ask) / 2
	} else {
		mid = a.State.LastTrade[a.Symbol]
	}

	holdings := a.State.GetHoldings(a.Symbol)
	surplus := mid*holdings + a.State.Holdings[tradingagent.CashSymbol] - a.State.StartingCash
	a.State.H.LogEvent("FINAL_VALUATION", fmt.Sprintf("%d", surplus))
}

// Wakeup drives the state machine: on each call it either waits for its
// configured start time, queries the spread once trading has started, or
// (after receiving that spread) is advanced to placing an order by
// ReceiveMessage.
func (a *Agent) Wakeup(currentTime simtime.Timestamp) {
	readyHours := a.State.Wakeup(currentTime)
	if !readyHours {
		return
	}
	if !a.trading {
		a.trading = true
	}

	if a.State.MktClosed {
		return
	}

	if a.WakeupTime.After(currentTime) {
		if err := a.State.H.SetWakeup(a.WakeupTime); err != nil {
			a.State.H.LogEvent("SET_WAKEUP_FAILED", err.Error())
		}
		return
	}

	a.State.GetCurrentSpread(a.Symbol, 1)
	a.st = stateAwaitingSpread
}

// ReceiveMessage lets the base state record market hours/close prices,
// then advances past AWAITING_SPREAD once the response it was waiting for
// arrives.
func (a *Agent) ReceiveMessage(currentTime simtime.Timestamp, senderID int, body message.Message) {
	a.State.ReceiveMessage(currentTime, senderID, body)

	if a.st != stateAwaitingSpread {
		return
	}
	if _, ok := body.(message.QuerySpreadResponse); !ok {
		return
	}
	if a.State.MktClosed {
		return
	}
	a.placeOrder()
	a.st = stateAwaitingWakeup
}

// placeOrder submits one order in a random direction at the opposing best
// price, per NoiseAgent::placeOrder.
func (a *Agent) placeOrder() {
	bid, _, ask, _ := a.State.GetKnownBidAsk(a.Symbol)
	if a.size <= 0 {
		return
	}

	buy := a.rng.Intn(2) == 1
	if buy && ask != -1 {
		a.State.PlaceLimitOrder(a.Symbol, a.size, orders.Bid, ask, tradingagent.OrderOpts{IgnoreRisk: true})
	} else if !buy && bid != -1 {
		a.State.PlaceLimitOrder(a.Symbol, a.size, orders.Ask, bid, tradingagent.OrderOpts{IgnoreRisk: true})
	}
}
