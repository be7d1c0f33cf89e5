package message

import "simmarket/src/simtime"

// SubscriptionKind tags which concrete subscription a
// MarketDataSubscriptionRequest describes.
type SubscriptionKind int

const (
	SubL1 SubscriptionKind = iota
	SubL2
	SubL3
	SubTransactedVol
	SubBookImbalance
)

// SubscriptionSpec is a small sum type carrying the kind-specific
// parameters for one subscription request; unused fields for a given Kind
// are zero.
type SubscriptionSpec struct {
	Kind SubscriptionKind

	// L1/L2/L3/TransactedVol: minimum nanoseconds between updates.
	Freq int64

	// L2/L3: number of price levels to report; 0 means "entire book".
	Depth int

	// TransactedVol: lookback window in nanoseconds.
	Lookback int64

	// BookImbalance: minimum imbalance ratio in [0,1] that triggers a START
	// event; a FINISH event fires when the imbalance drops back below it.
	MinImbalance float64
}

// MarketDataSubscriptionRequest creates or cancels a market-data feed.
type MarketDataSubscriptionRequest struct {
	base
	Symbol string
	Cancel bool
	Spec   SubscriptionSpec
}

func NewMarketDataSubscriptionRequest(m *Minter, symbol string, cancel bool, spec SubscriptionSpec) MarketDataSubscriptionRequest {
	return MarketDataSubscriptionRequest{base: m.mint(), Symbol: symbol, Cancel: cancel, Spec: spec}
}
func (MarketDataSubscriptionRequest) Kind() Kind { return KindMarketDataSubscriptionRequest }

// marketDataHeader is embedded by every data push message; it is not a
// Message itself.
type marketDataHeader struct {
	Symbol          string
	LastTransaction int64
	ExchangeTS       simtime.Timestamp
}

// L1Data carries the best bid/ask and their available quantity.
type L1Data struct {
	base
	marketDataHeader
	BidPrice, BidQty int64
	AskPrice, AskQty int64
}

func NewL1Data(m *Minter, symbol string, lastTxn int64, ts simtime.Timestamp, bidP, bidQ, askP, askQ int64) L1Data {
	return L1Data{
		base:              m.mint(),
		marketDataHeader:  marketDataHeader{Symbol: symbol, LastTransaction: lastTxn, ExchangeTS: ts},
		BidPrice:          bidP, BidQty: bidQ, AskPrice: askP, AskQty: askQ,
	}
}
func (L1Data) Kind() Kind { return KindL1Data }

// L2Data carries aggregated (price, quantity) pairs per level.
type L2Data struct {
	base
	marketDataHeader
	Bids []PriceQty
	Asks []PriceQty
}

func NewL2Data(m *Minter, symbol string, lastTxn int64, ts simtime.Timestamp, bids, asks []PriceQty) L2Data {
	return L2Data{
		base:             m.mint(),
		marketDataHeader: marketDataHeader{Symbol: symbol, LastTransaction: lastTxn, ExchangeTS: ts},
		Bids:             bids, Asks: asks,
	}
}
func (L2Data) Kind() Kind { return KindL2Data }

// LevelOrders is one L3 price level: the price plus the size of each
// resting order at that level, in time priority.
type LevelOrders struct {
	Price       int64
	OrderSizes  []int64
}

// L3Data carries per-order sizes at each level (no aggregation).
type L3Data struct {
	base
	marketDataHeader
	Bids []LevelOrders
	Asks []LevelOrders
}

func NewL3Data(m *Minter, symbol string, lastTxn int64, ts simtime.Timestamp, bids, asks []LevelOrders) L3Data {
	return L3Data{
		base:             m.mint(),
		marketDataHeader: marketDataHeader{Symbol: symbol, LastTransaction: lastTxn, ExchangeTS: ts},
		Bids:             bids, Asks: asks,
	}
}
func (L3Data) Kind() Kind { return KindL3Data }

// TransactedVolData carries transacted share volume over a lookback window.
type TransactedVolData struct {
	base
	marketDataHeader
	BidVolume int64
	AskVolume int64
}

func NewTransactedVolData(m *Minter, symbol string, lastTxn int64, ts simtime.Timestamp, bidVol, askVol int64) TransactedVolData {
	return TransactedVolData{
		base:             m.mint(),
		marketDataHeader: marketDataHeader{Symbol: symbol, LastTransaction: lastTxn, ExchangeTS: ts},
		BidVolume:        bidVol, AskVolume: askVol,
	}
}
func (TransactedVolData) Kind() Kind { return KindTransactedVolData }

// EventStage distinguishes the start and finish of an edge-triggered
// market-data event such as a book imbalance.
type EventStage int

const (
	StageStart EventStage = iota
	StageFinish
)

func (s EventStage) String() string {
	if s == StageStart {
		return "START"
	}
	return "FINISH"
}

// BookImbalanceData fires when the book imbalance crosses the subscribed
// threshold (START) and again when it recedes back below it (FINISH).
type BookImbalanceData struct {
	base
	marketDataHeader
	Stage     EventStage
	Imbalance float64
	Side      string
}

func NewBookImbalanceData(m *Minter, symbol string, lastTxn int64, ts simtime.Timestamp, stage EventStage, imbalance float64, side string) BookImbalanceData {
	return BookImbalanceData{
		base:             m.mint(),
		marketDataHeader: marketDataHeader{Symbol: symbol, LastTransaction: lastTxn, ExchangeTS: ts},
		Stage:            stage, Imbalance: imbalance, Side: side,
	}
}
func (BookImbalanceData) Kind() Kind { return KindBookImbalanceData }
