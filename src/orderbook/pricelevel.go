package orderbook

import (
	"fmt"

	"simmarket/src/orders"
)

// OrderEntry is one resting order plus the bookkeeping metadata the engine
// needs to execute against it (currently just its price-to-comply twin, if
// any). Held by pointer inside PriceLevel queues so that mutating an
// order's quantity in place (partial fills, updateOrderQuantity) is visible
// through every reference to it, including across slice reallocations.
type OrderEntry struct {
	Order        orders.LimitOrder
	PTCHidden    bool
	PTCOtherHalf *OrderEntry
}

// PriceLevel is the FIFO queue pair (visible, then hidden) of every resting
// order at one (side, price). All member orders share Side and Price; a
// level with both queues empty must be removed from the book (enforced by
// OrderBook, not PriceLevel itself).
type PriceLevel struct {
	Price   int64
	Side    orders.Side
	Visible []*OrderEntry
	Hidden  []*OrderEntry
}

// NewPriceLevel constructs a level from at least one order; the level's
// price and side are fixed to that of the first entry.
func NewPriceLevel(entries ...*OrderEntry) (*PriceLevel, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("orderbook: at least one order must be given when initialising a PriceLevel")
	}
	pl := &PriceLevel{
		Price: entries[0].Order.LimitPrice,
		Side:  entries[0].Order.Side,
	}
	for _, e := range entries {
		pl.AddOrder(e)
	}
	return pl, nil
}

// AddOrder inserts an entry: hidden orders append to the hidden queue;
// insert_by_id orders are inserted into the visible queue so it stays
// sorted by OrderID; everything else appends to the back of visible.
func (pl *PriceLevel) AddOrder(e *OrderEntry) {
	if e.Order.IsHidden {
		pl.Hidden = append(pl.Hidden, e)
		return
	}
	if e.Order.InsertByID {
		idx := 0
		for idx < len(pl.Visible) && pl.Visible[idx].Order.OrderID <= e.Order.OrderID {
			idx++
		}
		pl.Visible = append(pl.Visible, nil)
		copy(pl.Visible[idx+1:], pl.Visible[idx:])
		pl.Visible[idx] = e
		return
	}
	pl.Visible = append(pl.Visible, e)
}

// UpdateOrderQuantity sets the live quantity of order_id to newQuantity.
// Decreasing quantity preserves time priority (mutated in place);
// increasing quantity loses priority (order moves to the back of its
// queue). Returns false if newQuantity is zero or the order isn't found.
func (pl *PriceLevel) UpdateOrderQuantity(orderID uint64, newQuantity int64) bool {
	if newQuantity == 0 {
		return false
	}
	if pl.updateIn(&pl.Visible, orderID, newQuantity) {
		return true
	}
	return pl.updateIn(&pl.Hidden, orderID, newQuantity)
}

func (pl *PriceLevel) updateIn(queue *[]*OrderEntry, orderID uint64, newQuantity int64) bool {
	q := *queue
	for i, e := range q {
		if e.Order.OrderID != orderID {
			continue
		}
		if newQuantity <= e.Order.Quantity {
			e.Order.Quantity = newQuantity
		} else {
			*queue = append(q[:i], q[i+1:]...)
			e.Order.Quantity = newQuantity
			*queue = append(*queue, e)
		}
		return true
	}
	return false
}

// RemoveOrder removes and returns the entry with the given OrderID,
// searching visible orders before hidden orders.
func (pl *PriceLevel) RemoveOrder(orderID uint64) (*OrderEntry, bool) {
	if e, ok := pl.removeFrom(&pl.Visible, orderID); ok {
		return e, true
	}
	return pl.removeFrom(&pl.Hidden, orderID)
}

func (pl *PriceLevel) removeFrom(queue *[]*OrderEntry, orderID uint64) (*OrderEntry, bool) {
	q := *queue
	for i, e := range q {
		if e.Order.OrderID == orderID {
			*queue = append(q[:i], q[i+1:]...)
			return e, true
		}
	}
	return nil, false
}

// Peek returns the next order to execute without removing it: the head of
// the visible queue, falling back to the hidden queue.
func (pl *PriceLevel) Peek() (*OrderEntry, bool) {
	if len(pl.Visible) > 0 {
		return pl.Visible[0], true
	}
	if len(pl.Hidden) > 0 {
		return pl.Hidden[0], true
	}
	return nil, false
}

// Pop removes and returns the next order to execute, visible before
// hidden.
func (pl *PriceLevel) Pop() (*OrderEntry, bool) {
	if len(pl.Visible) > 0 {
		e := pl.Visible[0]
		pl.Visible = pl.Visible[1:]
		return e, true
	}
	if len(pl.Hidden) > 0 {
		e := pl.Hidden[0]
		pl.Hidden = pl.Hidden[1:]
		return e, true
	}
	return nil, false
}

// OrderIsMatch reports whether an aggressor with the given side, price, and
// post-only flag can match against this level. The aggressor must be on
// the opposite side. This fixes the REDESIGN FLAG bug in original_source,
// where the ask branch duplicated the bid branch instead of mirroring it.
func (pl *PriceLevel) OrderIsMatch(side orders.Side, price int64, postOnly bool) bool {
	if side == pl.Side {
		panic("orderbook: attempted to compare order on wrong side of book")
	}
	blockedByPostOnly := postOnly && pl.TotalQuantity() == 0
	if blockedByPostOnly {
		return false
	}
	if side.IsBid() {
		return price >= pl.Price
	}
	return price <= pl.Price
}

// OrderHasBetterPrice reports whether a same-side order's price is
// strictly better than this level's price (higher for bids, lower for
// asks).
func (pl *PriceLevel) OrderHasBetterPrice(side orders.Side, price int64) bool {
	pl.requireSameSide(side)
	if side.IsBid() {
		return price > pl.Price
	}
	return price < pl.Price
}

// OrderHasWorsePrice is the mirror of OrderHasBetterPrice.
func (pl *PriceLevel) OrderHasWorsePrice(side orders.Side, price int64) bool {
	pl.requireSameSide(side)
	if side.IsBid() {
		return price < pl.Price
	}
	return price > pl.Price
}

// OrderHasEqualPrice reports whether a same-side order's price equals this
// level's price.
func (pl *PriceLevel) OrderHasEqualPrice(side orders.Side, price int64) bool {
	pl.requireSameSide(side)
	return price == pl.Price
}

func (pl *PriceLevel) requireSameSide(side orders.Side) {
	if side != pl.Side {
		panic("orderbook: attempted to compare order on wrong side of book")
	}
}

// TotalQuantity sums the quantity of visible orders only; hidden liquidity
// is excluded by definition.
func (pl *PriceLevel) TotalQuantity() int64 {
	var sum int64
	for _, e := range pl.Visible {
		sum += e.Order.Quantity
	}
	return sum
}

// IsEmpty reports whether both queues are empty.
func (pl *PriceLevel) IsEmpty() bool {
	return len(pl.Visible) == 0 && len(pl.Hidden) == 0
}
