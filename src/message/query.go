package message

// PriceQty is a (price, aggregated quantity) pair, used by the spread
// query response and the L2 data subscription.
type PriceQty struct {
	Price int64
	Qty   int64
}

// QueryLastTrade asks for the last trade price of a symbol.
type QueryLastTrade struct {
	base
	Symbol string
}

func NewQueryLastTrade(m *Minter, symbol string) QueryLastTrade {
	return QueryLastTrade{base: m.mint(), Symbol: symbol}
}
func (QueryLastTrade) Kind() Kind { return KindQueryLastTrade }

// QueryLastTradeResponse answers a QueryLastTrade. LastTrade is -1 (§7
// missing-data rule) when no trade has occurred yet.
type QueryLastTradeResponse struct {
	base
	Symbol    string
	MktClosed bool
	LastTrade int64
}

func NewQueryLastTradeResponse(m *Minter, symbol string, mktClosed bool, lastTrade int64) QueryLastTradeResponse {
	return QueryLastTradeResponse{base: m.mint(), Symbol: symbol, MktClosed: mktClosed, LastTrade: lastTrade}
}
func (QueryLastTradeResponse) Kind() Kind { return KindQueryLastTradeResponse }

// QuerySpread asks for the best `Depth` price levels on both sides.
type QuerySpread struct {
	base
	Symbol string
	Depth  int
}

func NewQuerySpread(m *Minter, symbol string, depth int) QuerySpread {
	return QuerySpread{base: m.mint(), Symbol: symbol, Depth: depth}
}
func (QuerySpread) Kind() Kind { return KindQuerySpread }

// QuerySpreadResponse answers a QuerySpread.
type QuerySpreadResponse struct {
	base
	Symbol    string
	MktClosed bool
	Depth     int
	Bids      []PriceQty
	Asks      []PriceQty
	LastTrade int64
}

func NewQuerySpreadResponse(m *Minter, symbol string, mktClosed bool, depth int, bids, asks []PriceQty, lastTrade int64) QuerySpreadResponse {
	return QuerySpreadResponse{
		base: m.mint(), Symbol: symbol, MktClosed: mktClosed, Depth: depth,
		Bids: bids, Asks: asks, LastTrade: lastTrade,
	}
}
func (QuerySpreadResponse) Kind() Kind { return KindQuerySpreadResponse }

// QueryOrderStream asks for up to Length most recent book history events.
type QueryOrderStream struct {
	base
	Symbol string
	Length int
}

func NewQueryOrderStream(m *Minter, symbol string, length int) QueryOrderStream {
	return QueryOrderStream{base: m.mint(), Symbol: symbol, Length: length}
}
func (QueryOrderStream) Kind() Kind { return KindQueryOrderStream }

// StreamEvent is one entry of the order-book history, per the history ring
// described in spec §3 (OrderBook.history) and §3.5 of SPEC_FULL.md.
type StreamEvent struct {
	Time         int64
	Type         string // ACCEPTED, FILLED, EXEC, CANCELLED, MODIFIED, REPLACED
	OrderID      uint64
	AgentID      int
	OppOrderID   uint64
	OppAgentID   int
	Side         string
	Quantity     int64
	Price        int64 // -1 when not applicable (non-PTC executions)
}

// QueryOrderStreamResponse answers a QueryOrderStream.
type QueryOrderStreamResponse struct {
	base
	Symbol    string
	MktClosed bool
	Length    int
	Orders    []StreamEvent
}

func NewQueryOrderStreamResponse(m *Minter, symbol string, mktClosed bool, length int, events []StreamEvent) QueryOrderStreamResponse {
	return QueryOrderStreamResponse{base: m.mint(), Symbol: symbol, MktClosed: mktClosed, Length: length, Orders: events}
}
func (QueryOrderStreamResponse) Kind() Kind { return KindQueryOrderStreamResponse }

// QueryTransactedVol asks for the transacted volume over a lookback window
// (nanoseconds, measured back from the exchange's current time).
type QueryTransactedVol struct {
	base
	Symbol   string
	Lookback int64
}

func NewQueryTransactedVol(m *Minter, symbol string, lookback int64) QueryTransactedVol {
	return QueryTransactedVol{base: m.mint(), Symbol: symbol, Lookback: lookback}
}
func (QueryTransactedVol) Kind() Kind { return KindQueryTransactedVol }

// QueryTransactedVolResponse answers a QueryTransactedVol.
type QueryTransactedVolResponse struct {
	base
	Symbol    string
	MktClosed bool
	BidVolume int64
	AskVolume int64
}

func NewQueryTransactedVolResponse(m *Minter, symbol string, mktClosed bool, bidVol, askVol int64) QueryTransactedVolResponse {
	return QueryTransactedVolResponse{base: m.mint(), Symbol: symbol, MktClosed: mktClosed, BidVolume: bidVol, AskVolume: askVol}
}
func (QueryTransactedVolResponse) Kind() Kind { return KindQueryTransactedVolResponse }
