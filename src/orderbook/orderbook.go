// Package orderbook implements the per-symbol limit order book: the
// price/time-priority matching engine that sits underneath an exchange
// agent. It knows nothing about the kernel's message-passing or scheduling;
// it only mutates book state and reports what happened through the Owner
// interface, so it can be driven directly from tests as well as from a
// live exchange agent.
package orderbook

import (
	"fmt"

	"github.com/google/btree"

	"simmarket/src/message"
	"simmarket/src/orders"
	"simmarket/src/simtime"
)

// bidItem and askItem order PriceLevel pointers inside the two btrees: bids
// descending by price (best bid first), asks ascending (best ask first).
// Mirrors the wrapper-item pattern the teacher's engine.PriceLevelItem /
// PriceLevelItemAscending used, generalized to our PriceLevel type.
type bidItem struct{ level *PriceLevel }

func (b bidItem) Less(than btree.Item) bool {
	return b.level.Price > than.(bidItem).level.Price
}

type askItem struct{ level *PriceLevel }

func (a askItem) Less(than btree.Item) bool {
	return a.level.Price < than.(askItem).level.Price
}

// Owner is the surface OrderBook needs from whatever embeds it (normally an
// exchange agent), kept narrow so this package never imports kernel or
// exchange and risks an import cycle.
type Owner interface {
	CurrentTime() simtime.Timestamp
	SendMessage(agentID int, msg message.Message)
	Minter() *message.Minter
	LogEvent(eventType, detail string)
}

// Transaction is one completed trade, recorded for QueryTransactedVol.
type Transaction struct {
	Time     simtime.Timestamp
	Price    int64
	Quantity int64
}

const defaultBTreeDegree = 32

// OrderBook is the matching engine for one symbol.
type OrderBook struct {
	Symbol string
	Owner  Owner

	Bids *btree.BTree
	Asks *btree.BTree

	byID map[uint64]*OrderEntry

	LastTrade      int64 // -1 until the first trade
	ExecutionCount int64

	buyTransactions  []Transaction
	sellTransactions []Transaction

	history       []message.StreamEvent
	historyLimit  int

	bookLogging  bool
	bookLogDepth int
	bookLog2     []Snapshot
}

// Snapshot is one entry of the optional full depth-history log (book_log2
// in the original), taken after every execution when bookLogging is
// enabled.
type Snapshot struct {
	Time simtime.Timestamp
	Bids []message.PriceQty
	Asks []message.PriceQty
}

// New constructs an empty order book for symbol. historyLimit bounds the
// order-stream ring buffer (0 means unbounded); bookLogging enables the
// full-depth snapshot log taken after every execution.
func New(owner Owner, symbol string, historyLimit int, bookLogging bool, bookLogDepth int) *OrderBook {
	return &OrderBook{
		Symbol:       symbol,
		Owner:        owner,
		Bids:         btree.New(defaultBTreeDegree),
		Asks:         btree.New(defaultBTreeDegree),
		byID:           make(map[uint64]*OrderEntry),
		LastTrade:      -1,
		historyLimit: historyLimit,
		bookLogging:  bookLogging,
		bookLogDepth: bookLogDepth,
	}
}

func (ob *OrderBook) sideTree(side orders.Side) *btree.BTree {
	if side.IsBid() {
		return ob.Bids
	}
	return ob.Asks
}

func (ob *OrderBook) levelAt(side orders.Side, price int64) (*PriceLevel, bool) {
	if side.IsBid() {
		item := ob.Bids.Get(bidItem{level: &PriceLevel{Price: price}})
		if item == nil {
			return nil, false
		}
		return item.(bidItem).level, true
	}
	item := ob.Asks.Get(askItem{level: &PriceLevel{Price: price}})
	if item == nil {
		return nil, false
	}
	return item.(askItem).level, true
}

func (ob *OrderBook) bestLevel(side orders.Side) (*PriceLevel, bool) {
	var top btree.Item
	if side.IsBid() {
		top = ob.Bids.Min()
	} else {
		top = ob.Asks.Min()
	}
	if top == nil {
		return nil, false
	}
	if side.IsBid() {
		return top.(bidItem).level, true
	}
	return top.(askItem).level, true
}

func (ob *OrderBook) oppositeBestLevel(side orders.Side) (*PriceLevel, bool) {
	return ob.bestLevel(side.Opposite())
}

func (ob *OrderBook) insertLevel(level *PriceLevel) {
	if level.Side.IsBid() {
		ob.Bids.ReplaceOrInsert(bidItem{level: level})
		return
	}
	ob.Asks.ReplaceOrInsert(askItem{level: level})
}

func (ob *OrderBook) deleteLevelIfEmpty(level *PriceLevel) {
	if !level.IsEmpty() {
		return
	}
	if level.Side.IsBid() {
		ob.Bids.Delete(bidItem{level: level})
		return
	}
	ob.Asks.Delete(askItem{level: level})
}

func (ob *OrderBook) enterLimitOrder(order orders.LimitOrder, ptcOtherHalf *OrderEntry, ptcHidden bool) *OrderEntry {
	entry := &OrderEntry{Order: order, PTCHidden: ptcHidden, PTCOtherHalf: ptcOtherHalf}
	ob.byID[order.OrderID] = entry
	if level, ok := ob.levelAt(order.Side, order.LimitPrice); ok {
		level.AddOrder(entry)
	} else {
		level, err := NewPriceLevel(entry)
		if err != nil {
			panic(err)
		}
		ob.insertLevel(level)
	}
	return entry
}

func (ob *OrderBook) recordHistory(ev message.StreamEvent) {
	ev.Time = ob.Owner.CurrentTime().Nanos()
	ob.history = append(ob.history, ev)
	if ob.historyLimit > 0 && len(ob.history) > ob.historyLimit {
		ob.history = ob.history[len(ob.history)-ob.historyLimit:]
	}
}

func (ob *OrderBook) recordTransaction(side orders.Side, price, qty int64) {
	t := Transaction{Time: ob.Owner.CurrentTime(), Price: price, Quantity: qty}
	if side.IsBid() {
		ob.buyTransactions = append(ob.buyTransactions, t)
	} else {
		ob.sellTransactions = append(ob.sellTransactions, t)
	}
	ob.LastTrade = price
	ob.ExecutionCount++
	if ob.bookLogging {
		ob.appendSnapshot()
	}
}

func (ob *OrderBook) appendSnapshot() {
	bids, asks := ob.Depth(ob.bookLogDepth)
	ob.bookLog2 = append(ob.bookLog2, Snapshot{Time: ob.Owner.CurrentTime(), Bids: bids, Asks: asks})
}

// aggressor is the side-agnostic view executeOrder needs of whatever order
// (limit or market) is currently trying to take liquidity.
type aggressor struct {
	OrderID   uint64
	AgentID   int
	Timestamp simtime.Timestamp
	Symbol    string
	Side      orders.Side
	Price     int64 // effective limit price for the match test
	PostOnly  bool
	Tag       orders.OrderTag
	Quantity  int64
	isLimit   bool
}

func suppressedByTag(tag orders.OrderTag) bool {
	return tag == orders.MRPreprocessAdd || tag == orders.MRPreprocessReplace
}

// executeOrder matches agg against the opposite side of the book as many
// times as price/quantity allow, mutating agg.Quantity and sending
// OrderExecuted to both the resting and aggressing agents for each fill.
// It returns the last resting order filled against, if any.
func (ob *OrderBook) executeOrder(agg *aggressor) *orders.Order {
	if suppressedByTag(agg.Tag) {
		ob.Owner.LogEvent(string(agg.Tag)+"_POST_ONLY", fmt.Sprintf("order_id=%d agent_id=%d", agg.OrderID, agg.AgentID))
		return nil
	}

	var lastFilled *orders.Order

	for agg.Quantity > 0 {
		level, ok := ob.oppositeBestLevel(agg.Side)
		if !ok {
			break
		}
		if agg.isLimit && !level.OrderIsMatch(agg.Side, agg.Price, agg.PostOnly) {
			break
		}

		entry, ok := level.Peek()
		if !ok {
			ob.deleteLevelIfEmpty(level)
			continue
		}

		fillQty := entry.Order.Quantity
		if agg.Quantity < fillQty {
			fillQty = agg.Quantity
		}
		fillPrice := entry.Order.LimitPrice

		entry.Order.Quantity -= fillQty
		agg.Quantity -= fillQty
		if entry.PTCOtherHalf != nil {
			entry.PTCOtherHalf.Order.Quantity -= fillQty
		}

		if entry.Order.Quantity <= 0 {
			level.Pop()
			ob.releasePTCTwin(entry)
			delete(ob.byID, entry.Order.OrderID)
		}
		ob.deleteLevelIfEmpty(level)

		restingFilled := entry.Order.Order
		restingFilled.Quantity = fillQty
		restingFilled.FillPrice = fillPrice
		ob.Owner.SendMessage(entry.Order.AgentID, message.NewOrderExecuted(ob.Owner.Minter(), restingFilled))

		aggFilled := orders.Order{
			OrderID: agg.OrderID, AgentID: agg.AgentID, Timestamp: agg.Timestamp,
			Symbol: agg.Symbol, Quantity: fillQty, Side: agg.Side, FillPrice: fillPrice, Tag: agg.Tag,
		}
		ob.Owner.SendMessage(agg.AgentID, message.NewOrderExecuted(ob.Owner.Minter(), aggFilled))
		lastFilled = &restingFilled

		ob.recordTransaction(agg.Side, fillPrice, fillQty)

		// original_source only records a price in the history entry for
		// price-to-comply executions; a plain execution's price is implicit
		// in the level it occurred at, so this keeps that quirk.
		histPrice := int64(-1)
		if entry.Order.IsPriceToComply {
			histPrice = fillPrice
		}
		// Recorded from the point of view of the passive order being
		// executed: an aggressing bid means the passive leg sold.
		execSide := "BUY"
		if agg.Side.IsBid() {
			execSide = "SELL"
		}
		ob.recordHistory(message.StreamEvent{
			Type: "EXEC", OrderID: entry.Order.OrderID, AgentID: entry.Order.AgentID,
			OppOrderID: agg.OrderID, OppAgentID: agg.AgentID,
			Side: execSide, Quantity: fillQty, Price: histPrice,
		})
	}

	return lastFilled
}

// releasePTCTwin removes the other leg of a price-to-comply pair once entry
// (either leg) has been fully consumed or cancelled.
func (ob *OrderBook) releasePTCTwin(entry *OrderEntry) {
	if entry.PTCOtherHalf == nil {
		return
	}
	twin := entry.PTCOtherHalf
	if level, ok := ob.levelAt(twin.Order.Side, twin.Order.LimitPrice); ok {
		level.RemoveOrder(twin.Order.OrderID)
		ob.deleteLevelIfEmpty(level)
	}
	delete(ob.byID, twin.Order.OrderID)
}

// HandleLimitOrder enters a limit order, executing it against the book
// first and resting whatever quantity remains. Price-to-comply orders are
// split into a visible leg priced one tick behind the limit price and a
// hidden twin leg at the limit price, per §4.2. quiet suppresses the
// OrderAccepted notification, used when replaying preprocessed history.
func (ob *OrderBook) HandleLimitOrder(order orders.LimitOrder, quiet bool) {
	if order.Symbol != ob.Symbol || order.Quantity <= 0 || order.LimitPrice < 0 {
		ob.Owner.LogEvent("ORDER_REJECTED", fmt.Sprintf("order_id=%d agent_id=%d", order.OrderID, order.AgentID))
		return
	}

	if suppressedByTag(order.Tag) {
		ob.Owner.LogEvent(string(order.Tag)+"_POST_ONLY", fmt.Sprintf("order_id=%d agent_id=%d", order.OrderID, order.AgentID))
		return
	}

	agg := &aggressor{
		OrderID: order.OrderID, AgentID: order.AgentID, Timestamp: order.Timestamp,
		Symbol: order.Symbol, Side: order.Side, Price: order.LimitPrice,
		PostOnly: order.IsPostOnly, Tag: order.Tag, Quantity: order.Quantity, isLimit: true,
	}
	ob.executeOrder(agg)

	if agg.Quantity <= 0 {
		ob.recordHistory(message.StreamEvent{
			Type: "FILLED", OrderID: order.OrderID, AgentID: order.AgentID,
			Side: order.Side.String(), Quantity: order.Quantity, Price: order.LimitPrice,
		})
		return
	}

	remaining := order
	remaining.Quantity = agg.Quantity

	if remaining.IsPriceToComply {
		ob.enterPriceToComply(remaining)
	} else {
		ob.enterLimitOrder(remaining, nil, false)
	}

	if quiet {
		return
	}
	ob.Owner.SendMessage(remaining.AgentID, message.NewOrderAccepted(ob.Owner.Minter(), remaining))
	ob.recordHistory(message.StreamEvent{
		Type: "ACCEPTED", OrderID: remaining.OrderID, AgentID: remaining.AgentID,
		Side: remaining.Side.String(), Quantity: remaining.Quantity, Price: remaining.LimitPrice,
	})
}

// enterPriceToComply rests a visible leg one tick behind the true limit
// price and a hidden twin leg at the true price, each referencing the
// other so a fill against the visible leg releases the hidden leg too.
func (ob *OrderBook) enterPriceToComply(order orders.LimitOrder) {
	visiblePrice := order.LimitPrice - 1
	if order.Side.IsAsk() {
		visiblePrice = order.LimitPrice + 1
	}

	visible := order
	visible.LimitPrice = visiblePrice
	visible.IsHidden = false

	hidden := order
	hidden.IsHidden = true

	hiddenEntry := ob.enterLimitOrder(hidden, nil, true)
	visibleEntry := ob.enterLimitOrder(visible, hiddenEntry, false)
	hiddenEntry.PTCOtherHalf = visibleEntry
}

// HandleMarketOrder executes a market order against as much of the opposite
// side as is available; any unfilled quantity is dropped, per §4.2 (no
// market-order resting).
func (ob *OrderBook) HandleMarketOrder(order orders.MarketOrder) {
	agg := &aggressor{
		OrderID: order.OrderID, AgentID: order.AgentID, Timestamp: order.Timestamp,
		Symbol: order.Symbol, Side: order.Side, Price: order.EffectiveLimitPrice(),
		Tag: order.Tag, Quantity: order.Quantity, isLimit: false,
	}
	ob.executeOrder(agg)
}

// CancelOrder removes a resting order by ID and notifies its owner.
// Reports false if no such order is resting.
func (ob *OrderBook) CancelOrder(orderID uint64, agentID int) bool {
	entry, ok := ob.byID[orderID]
	if !ok || entry.Order.AgentID != agentID {
		return false
	}
	level, ok := ob.levelAt(entry.Order.Side, entry.Order.LimitPrice)
	if !ok {
		return false
	}
	removed, ok := level.RemoveOrder(orderID)
	if !ok {
		return false
	}
	ob.releasePTCTwin(removed)
	ob.deleteLevelIfEmpty(level)
	delete(ob.byID, orderID)

	ob.Owner.SendMessage(agentID, message.NewOrderCancelled(ob.Owner.Minter(), removed.Order))
	ob.recordHistory(message.StreamEvent{
		Type: "CANCELLED", OrderID: orderID, AgentID: agentID,
		Side: removed.Order.Side.String(), Quantity: removed.Order.Quantity, Price: removed.Order.LimitPrice,
	})
	return true
}

// ModifyOrderQuantity changes the live quantity of a resting order.
// Decreasing quantity preserves time priority; increasing quantity sends
// the order to the back of its queue. Sends OrderPartialCancelled on a
// decrease and OrderModified on an increase, matching the notification
// split spec.md names.
func (ob *OrderBook) ModifyOrderQuantity(orderID uint64, agentID int, newQuantity int64) bool {
	entry, ok := ob.byID[orderID]
	if !ok || entry.Order.AgentID != agentID {
		return false
	}
	level, ok := ob.levelAt(entry.Order.Side, entry.Order.LimitPrice)
	if !ok {
		return false
	}
	decreasing := newQuantity <= entry.Order.Quantity
	if !level.UpdateOrderQuantity(orderID, newQuantity) {
		return false
	}

	if newQuantity <= 0 {
		ob.releasePTCTwin(entry)
		ob.deleteLevelIfEmpty(level)
		delete(ob.byID, orderID)
		return true
	}

	if decreasing {
		ob.Owner.SendMessage(agentID, message.NewOrderPartialCancelled(ob.Owner.Minter(), entry.Order))
		ob.recordHistory(message.StreamEvent{
			Type: "MODIFIED", OrderID: orderID, AgentID: agentID,
			Side: entry.Order.Side.String(), Quantity: entry.Order.Quantity, Price: entry.Order.LimitPrice,
		})
		return true
	}

	ob.Owner.SendMessage(agentID, message.NewOrderModified(ob.Owner.Minter(), entry.Order))
	ob.recordHistory(message.StreamEvent{
		Type: "MODIFIED", OrderID: orderID, AgentID: agentID,
		Side: entry.Order.Side.String(), Quantity: entry.Order.Quantity, Price: entry.Order.LimitPrice,
	})
	return true
}

// ReplaceOrder cancels oldOrderID and enters newOrder under a fresh
// OrderID, losing time priority even if the price is unchanged. Reports
// false if oldOrderID wasn't resting under agentID.
func (ob *OrderBook) ReplaceOrder(oldOrderID uint64, agentID int, newOrder orders.LimitOrder) bool {
	entry, ok := ob.byID[oldOrderID]
	if !ok || entry.Order.AgentID != agentID {
		return false
	}
	oldOrder := entry.Order
	level, ok := ob.levelAt(entry.Order.Side, entry.Order.LimitPrice)
	if ok {
		level.RemoveOrder(oldOrderID)
		ob.releasePTCTwin(entry)
		ob.deleteLevelIfEmpty(level)
	}
	delete(ob.byID, oldOrderID)

	if suppressedByTag(newOrder.Tag) {
		ob.Owner.LogEvent(string(newOrder.Tag)+"_POST_ONLY", fmt.Sprintf("order_id=%d agent_id=%d", newOrder.OrderID, newOrder.AgentID))
		return true
	}

	agg := &aggressor{
		OrderID: newOrder.OrderID, AgentID: newOrder.AgentID, Timestamp: newOrder.Timestamp,
		Symbol: newOrder.Symbol, Side: newOrder.Side, Price: newOrder.LimitPrice,
		PostOnly: newOrder.IsPostOnly, Tag: newOrder.Tag, Quantity: newOrder.Quantity, isLimit: true,
	}
	ob.executeOrder(agg)

	remaining := newOrder
	remaining.Quantity = agg.Quantity
	if remaining.Quantity > 0 {
		if remaining.IsPriceToComply {
			ob.enterPriceToComply(remaining)
		} else {
			ob.enterLimitOrder(remaining, nil, false)
		}
	}

	ob.Owner.SendMessage(agentID, message.NewOrderReplaced(ob.Owner.Minter(), oldOrder, remaining))
	ob.recordHistory(message.StreamEvent{
		Type: "REPLACED", OrderID: oldOrderID, AgentID: agentID, OppOrderID: newOrder.OrderID,
		Side: newOrder.Side.String(), Quantity: remaining.Quantity, Price: remaining.LimitPrice,
	})
	return true
}

// Depth returns up to levels price levels on each side, aggregated by
// visible quantity only (hidden liquidity never appears in L2/L3 views).
func (ob *OrderBook) Depth(levels int) (bids, asks []message.PriceQty) {
	collect := func(tree *btree.BTree, bid bool) []message.PriceQty {
		out := make([]message.PriceQty, 0)
		tree.Ascend(func(item btree.Item) bool {
			if levels > 0 && len(out) >= levels {
				return false
			}
			var level *PriceLevel
			if bid {
				level = item.(bidItem).level
			} else {
				level = item.(askItem).level
			}
			if qty := level.TotalQuantity(); qty > 0 {
				out = append(out, message.PriceQty{Price: level.Price, Qty: qty})
			}
			return true
		})
		return out
	}
	return collect(ob.Bids, true), collect(ob.Asks, false)
}

// DepthByOrder returns up to levels price levels with per-order sizes in
// time priority, for the L3 feed.
func (ob *OrderBook) DepthByOrder(levels int) (bids, asks []message.LevelOrders) {
	collect := func(tree *btree.BTree, bid bool) []message.LevelOrders {
		out := make([]message.LevelOrders, 0)
		tree.Ascend(func(item btree.Item) bool {
			if levels > 0 && len(out) >= levels {
				return false
			}
			var level *PriceLevel
			if bid {
				level = item.(bidItem).level
			} else {
				level = item.(askItem).level
			}
			sizes := make([]int64, 0, len(level.Visible))
			for _, e := range level.Visible {
				sizes = append(sizes, e.Order.Quantity)
			}
			if len(sizes) > 0 {
				out = append(out, message.LevelOrders{Price: level.Price, OrderSizes: sizes})
			}
			return true
		})
		return out
	}
	return collect(ob.Bids, true), collect(ob.Asks, false)
}

// BestBidAsk returns the best visible price and quantity on each side; a
// side with no resting visible liquidity reports price and quantity 0.
func (ob *OrderBook) BestBidAsk() (bidPrice, bidQty, askPrice, askQty int64) {
	if level, ok := ob.bestLevel(orders.Bid); ok {
		if qty := level.TotalQuantity(); qty > 0 {
			bidPrice, bidQty = level.Price, qty
		}
	}
	if level, ok := ob.bestLevel(orders.Ask); ok {
		if qty := level.TotalQuantity(); qty > 0 {
			askPrice, askQty = level.Price, qty
		}
	}
	return
}

// TransactedVolume sums buy- and sell-side trade quantity over the
// lookback window (nanoseconds) measured back from now.
func (ob *OrderBook) TransactedVolume(now simtime.Timestamp, lookback int64) (buyVol, sellVol int64) {
	cutoff := now.Nanos() - lookback
	for _, t := range ob.buyTransactions {
		if t.Time.Nanos() >= cutoff {
			buyVol += t.Quantity
		}
	}
	for _, t := range ob.sellTransactions {
		if t.Time.Nanos() >= cutoff {
			sellVol += t.Quantity
		}
	}
	return
}

// History returns the most recent n stream events (fewer if history is
// shorter), newest last.
func (ob *OrderBook) History(n int) []message.StreamEvent {
	if n <= 0 || n >= len(ob.history) {
		out := make([]message.StreamEvent, len(ob.history))
		copy(out, ob.history)
		return out
	}
	out := make([]message.StreamEvent, n)
	copy(out, ob.history[len(ob.history)-n:])
	return out
}

// Imbalance reports the visible-quantity order imbalance across the top
// `levels` price levels on each side, in [-1, 1]: positive favors bids.
func (ob *OrderBook) Imbalance(levels int) (float64, string) {
	bids, asks := ob.Depth(levels)
	var bidQty, askQty int64
	for _, b := range bids {
		bidQty += b.Qty
	}
	for _, a := range asks {
		askQty += a.Qty
	}
	total := bidQty + askQty
	if total == 0 {
		return 0, ""
	}
	imbalance := float64(bidQty-askQty) / float64(total)
	side := "BID"
	if imbalance < 0 {
		side = "ASK"
	}
	return imbalance, side
}

// PrettyPrint renders the top depth levels of the book for debug logging,
// in the teacher's "price | qty" column style.
func (ob *OrderBook) PrettyPrint(depth int) string {
	bids, asks := ob.Depth(depth)
	s := fmt.Sprintf("%s order book\n", ob.Symbol)
	s += "bids:\n"
	for _, b := range bids {
		s += fmt.Sprintf("  %d | %d\n", b.Price, b.Qty)
	}
	s += "asks:\n"
	for _, a := range asks {
		s += fmt.Sprintf("  %d | %d\n", a.Price, a.Qty)
	}
	return s
}
