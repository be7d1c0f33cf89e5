// Package orders defines the order and side vocabulary shared by the
// matching engine, the exchange agent, and trading-agent strategies.
package orders

import "math/rand"

import "simmarket/src/simtime"

// Side identifies which side of the book an order rests on or aggresses
// against.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "BID"
	}
	return "ASK"
}

// IsBid and IsAsk mirror the original engine's side predicates; kept as
// named methods rather than inline comparisons because orderIsMatch and the
// PriceLevel comparisons read better against them.
func (s Side) IsBid() bool { return s == Bid }
func (s Side) IsAsk() bool { return s == Ask }

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// OrderTag marks orders that originated from a market-replay preprocessing
// step that must never execute on entry (post-only suppression, §4.2).
type OrderTag string

const (
	NoTag               OrderTag = ""
	MRPreprocessAdd     OrderTag = "MR_preprocess_ADD"
	MRPreprocessReplace OrderTag = "MR_preprocess_REPLACE"
)

// MarketOrderPrice is the sentinel "infinite" limit price used internally
// when a MarketOrder needs to be compared against a PriceLevel's price.
// original_source used both MAX_INT and 1e10 across revisions; this unifies
// on the largest representable int64, per spec §9.
const MarketOrderPrice int64 = 1<<63 - 1

// Order carries the fields common to every order in the system.
type Order struct {
	OrderID   uint64
	AgentID   int
	Timestamp simtime.Timestamp
	Symbol    string
	Quantity  int64
	Side      Side
	FillPrice int64 // -1 when unset
	Tag       OrderTag
}

// Filled reports whether the order has no remaining quantity.
func (o Order) Filled() bool { return o.Quantity <= 0 }

// LimitOrder is an Order with a resting price and book-entry modifiers.
type LimitOrder struct {
	Order
	LimitPrice      int64
	IsHidden        bool
	IsPriceToComply bool
	InsertByID      bool
	IsPostOnly      bool
}

// Copy returns a value copy of the limit order.
func (o LimitOrder) Copy() LimitOrder { return o }

// MarketOrder is an Order with no limit price; it matches against whatever
// liquidity is available at the best price(s).
type MarketOrder struct {
	Order
}

// EffectiveLimitPrice returns the price a MarketOrder should be treated as
// carrying when compared against a PriceLevel: always matchable.
func (o MarketOrder) EffectiveLimitPrice() int64 {
	if o.Side.IsBid() {
		return MarketOrderPrice
	}
	return 0
}

// IDMinter is a strictly increasing generator of OrderIDs, owned by each
// agent that places orders. The agent's id is packed into the high bits so
// two agents minting concurrently (from the kernel's point of view, in any
// interleaving) never collide, without any cross-agent coordination: order
// IDs only need to be unique within the exchange's per-symbol books, and
// every book is keyed by this OrderID alone.
type IDMinter struct {
	agentID int
	next    uint64
}

// NewIDMinter returns a minter scoped to agentID.
func NewIDMinter(agentID int) *IDMinter {
	return &IDMinter{agentID: agentID}
}

func (m *IDMinter) Next() uint64 {
	m.next++
	return uint64(m.agentID)<<40 | m.next
}

// NewSubRandomSource returns a per-agent random source deterministically
// derived from the run seed and the agent's ID, per the concurrency model's
// RNG policy (§5): every agent gets its own stream without coordinating
// with the kernel's shared generator on every draw.
func NewSubRandomSource(seed int64, agentID int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(agentID)))
}
