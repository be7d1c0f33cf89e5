package message

import "simmarket/src/orders"

// LimitOrderMsg submits a limit order to the exchange.
type LimitOrderMsg struct {
	base
	Order orders.LimitOrder
}

func NewLimitOrderMsg(m *Minter, order orders.LimitOrder) LimitOrderMsg {
	return LimitOrderMsg{base: m.mint(), Order: order}
}
func (LimitOrderMsg) Kind() Kind { return KindLimitOrder }

// MarketOrderMsg submits a market order to the exchange.
type MarketOrderMsg struct {
	base
	Order orders.MarketOrder
}

func NewMarketOrderMsg(m *Minter, order orders.MarketOrder) MarketOrderMsg {
	return MarketOrderMsg{base: m.mint(), Order: order}
}
func (MarketOrderMsg) Kind() Kind { return KindMarketOrder }

// CancelOrderMsg requests cancellation of a resting order. This and
// ReplaceOrderMsg are the request-side counterparts SPEC_FULL.md adds for
// the OrderCancelled/OrderModified/OrderReplaced notifications spec.md
// already names but never describes a trigger for.
type CancelOrderMsg struct {
	base
	Symbol  string
	OrderID uint64
	AgentID int
}

func NewCancelOrderMsg(m *Minter, symbol string, orderID uint64, agentID int) CancelOrderMsg {
	return CancelOrderMsg{base: m.mint(), Symbol: symbol, OrderID: orderID, AgentID: agentID}
}
func (CancelOrderMsg) Kind() Kind { return KindCancelOrder }

// ReplaceOrderMsg requests atomically cancelling OldOrderID and entering
// NewOrder in its place (losing time priority), as ABIDES' replace path
// does.
type ReplaceOrderMsg struct {
	base
	Symbol     string
	OldOrderID uint64
	NewOrder   orders.LimitOrder
}

func NewReplaceOrderMsg(m *Minter, symbol string, oldOrderID uint64, newOrder orders.LimitOrder) ReplaceOrderMsg {
	return ReplaceOrderMsg{base: m.mint(), Symbol: symbol, OldOrderID: oldOrderID, NewOrder: newOrder}
}
func (ReplaceOrderMsg) Kind() Kind { return KindReplaceOrder }

// OrderAccepted notifies an agent that its limit order has entered the book.
type OrderAccepted struct {
	base
	Order orders.LimitOrder
}

func NewOrderAccepted(m *Minter, order orders.LimitOrder) OrderAccepted {
	return OrderAccepted{base: m.mint(), Order: order}
}
func (OrderAccepted) Kind() Kind { return KindOrderAccepted }

// OrderExecuted notifies an agent that (part of) one of its orders filled.
type OrderExecuted struct {
	base
	Order orders.Order
}

func NewOrderExecuted(m *Minter, order orders.Order) OrderExecuted {
	return OrderExecuted{base: m.mint(), Order: order}
}
func (OrderExecuted) Kind() Kind { return KindOrderExecuted }

// OrderCancelled notifies an agent that its resting order was removed.
type OrderCancelled struct {
	base
	Order orders.LimitOrder
}

func NewOrderCancelled(m *Minter, order orders.LimitOrder) OrderCancelled {
	return OrderCancelled{base: m.mint(), Order: order}
}
func (OrderCancelled) Kind() Kind { return KindOrderCancelled }

// OrderPartialCancelled notifies an agent that a quantity reduction left a
// nonzero remainder resting at the original price/priority.
type OrderPartialCancelled struct {
	base
	NewOrder orders.LimitOrder
}

func NewOrderPartialCancelled(m *Minter, newOrder orders.LimitOrder) OrderPartialCancelled {
	return OrderPartialCancelled{base: m.mint(), NewOrder: newOrder}
}
func (OrderPartialCancelled) Kind() Kind { return KindOrderPartialCancelled }

// OrderModified notifies an agent that a resting order's quantity was
// increased, which moved the order to the back of its queue (see
// PriceLevel.UpdateOrderQuantity).
type OrderModified struct {
	base
	NewOrder orders.LimitOrder
}

func NewOrderModified(m *Minter, newOrder orders.LimitOrder) OrderModified {
	return OrderModified{base: m.mint(), NewOrder: newOrder}
}
func (OrderModified) Kind() Kind { return KindOrderModified }

// OrderReplaced notifies an agent that its order was cancelled and replaced
// by a new one (at a new price and/or quantity, losing time priority).
type OrderReplaced struct {
	base
	OldOrder orders.LimitOrder
	NewOrder orders.LimitOrder
}

func NewOrderReplaced(m *Minter, oldOrder, newOrder orders.LimitOrder) OrderReplaced {
	return OrderReplaced{base: m.mint(), OldOrder: oldOrder, NewOrder: newOrder}
}
func (OrderReplaced) Kind() Kind { return KindOrderReplaced }
