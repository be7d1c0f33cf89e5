// Package message defines the tagged union of values the kernel carries
// between agents. Every variant is a distinct Go struct implementing the
// Message interface; handlers dispatch with a type switch, and each variant
// also reports one value of the Kind enumeration below.
package message

// Kind tags a Message's concrete variant, mirroring the enumerated message
// taxonomy of spec §6.
type Kind int

const (
	KindWakeup Kind = iota
	KindMarketHoursRequest
	KindMarketHours
	KindMarketClosePriceRequest
	KindMarketClosePrice
	KindMarketClosed
	KindQueryLastTrade
	KindQueryLastTradeResponse
	KindQuerySpread
	KindQuerySpreadResponse
	KindQueryOrderStream
	KindQueryOrderStreamResponse
	KindQueryTransactedVol
	KindQueryTransactedVolResponse
	KindMarketDataSubscriptionRequest
	KindL1Data
	KindL2Data
	KindL3Data
	KindTransactedVolData
	KindBookImbalanceData
	KindLimitOrder
	KindMarketOrder
	KindCancelOrder
	KindReplaceOrder
	KindOrderAccepted
	KindOrderExecuted
	KindOrderCancelled
	KindOrderPartialCancelled
	KindOrderModified
	KindOrderReplaced
)

func (k Kind) String() string {
	switch k {
	case KindWakeup:
		return "Wakeup"
	case KindMarketHoursRequest:
		return "MarketHoursRequest"
	case KindMarketHours:
		return "MarketHours"
	case KindMarketClosePriceRequest:
		return "MarketClosePriceRequest"
	case KindMarketClosePrice:
		return "MarketClosePrice"
	case KindMarketClosed:
		return "MarketClosed"
	case KindQueryLastTrade:
		return "QueryLastTrade"
	case KindQueryLastTradeResponse:
		return "QueryLastTradeResponse"
	case KindQuerySpread:
		return "QuerySpread"
	case KindQuerySpreadResponse:
		return "QuerySpreadResponse"
	case KindQueryOrderStream:
		return "QueryOrderStream"
	case KindQueryOrderStreamResponse:
		return "QueryOrderStreamResponse"
	case KindQueryTransactedVol:
		return "QueryTransactedVol"
	case KindQueryTransactedVolResponse:
		return "QueryTransactedVolResponse"
	case KindMarketDataSubscriptionRequest:
		return "MarketDataSubscriptionRequest"
	case KindL1Data:
		return "L1Data"
	case KindL2Data:
		return "L2Data"
	case KindL3Data:
		return "L3Data"
	case KindTransactedVolData:
		return "TransactedVolData"
	case KindBookImbalanceData:
		return "BookImbalanceData"
	case KindLimitOrder:
		return "LimitOrder"
	case KindMarketOrder:
		return "MarketOrder"
	case KindCancelOrder:
		return "CancelOrder"
	case KindReplaceOrder:
		return "ReplaceOrder"
	case KindOrderAccepted:
		return "OrderAccepted"
	case KindOrderExecuted:
		return "OrderExecuted"
	case KindOrderCancelled:
		return "OrderCancelled"
	case KindOrderPartialCancelled:
		return "OrderPartialCancelled"
	case KindOrderModified:
		return "OrderModified"
	case KindOrderReplaced:
		return "OrderReplaced"
	default:
		return "Unknown"
	}
}

// Message is implemented by every variant the kernel can carry. uniqID is
// stamped at construction time by a Minter and is immutable afterwards,
// since it is the deterministic tie-breaker for same-tick delivery (§4.1).
type Message interface {
	Kind() Kind
	UniqID() uint64
}

// base is embedded by every concrete message to provide UniqID() without
// repeating the field and accessor in each variant.
type base struct {
	uniqID uint64
}

func (b base) UniqID() uint64 { return b.uniqID }

// Minter mints the uniq_id carried by every message. The kernel owns the
// single instance used for an entire run; this is the Go replacement for
// the original's process-wide `Message::uniq` static counter (§9 Design
// Notes: "Global mutable state").
type Minter struct {
	next uint64
}

func (m *Minter) mint() base {
	m.next++
	return base{uniqID: m.next}
}

// Wakeup carries no payload; it is delivered to the agent that requested it.
type Wakeup struct {
	base
}

func NewWakeup(m *Minter) Wakeup { return Wakeup{base: m.mint()} }

func (Wakeup) Kind() Kind { return KindWakeup }

// OrderRef is the minimal cross-reference to an order carried in several
// response payloads that don't need the full order value.
type OrderRef struct {
	OrderID uint64
	AgentID int
}
