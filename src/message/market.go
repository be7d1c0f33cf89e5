package message

import "simmarket/src/simtime"

// MarketHoursRequest asks the exchange for its open/close timestamps.
type MarketHoursRequest struct{ base }

func NewMarketHoursRequest(m *Minter) MarketHoursRequest {
	return MarketHoursRequest{base: m.mint()}
}
func (MarketHoursRequest) Kind() Kind { return KindMarketHoursRequest }

// MarketHours answers a MarketHoursRequest.
type MarketHours struct {
	base
	MktOpen  simtime.Timestamp
	MktClose simtime.Timestamp
}

func NewMarketHours(m *Minter, open, close simtime.Timestamp) MarketHours {
	return MarketHours{base: m.mint(), MktOpen: open, MktClose: close}
}
func (MarketHours) Kind() Kind { return KindMarketHours }

// MarketClosePriceRequest registers the sender to receive the close price
// for every symbol the exchange trades, delivered at mkt_close.
type MarketClosePriceRequest struct{ base }

func NewMarketClosePriceRequest(m *Minter) MarketClosePriceRequest {
	return MarketClosePriceRequest{base: m.mint()}
}
func (MarketClosePriceRequest) Kind() Kind { return KindMarketClosePriceRequest }

// MarketClosePrice carries the final trade price per symbol at mkt_close.
type MarketClosePrice struct {
	base
	ClosePrices map[string]int64
}

func NewMarketClosePrice(m *Minter, prices map[string]int64) MarketClosePrice {
	return MarketClosePrice{base: m.mint(), ClosePrices: prices}
}
func (MarketClosePrice) Kind() Kind { return KindMarketClosePrice }

// MarketClosed is returned for any non-trivial request received after
// mkt_close, per §4.4.
type MarketClosed struct{ base }

func NewMarketClosed(m *Minter) MarketClosed { return MarketClosed{base: m.mint()} }
func (MarketClosed) Kind() Kind              { return KindMarketClosed }
