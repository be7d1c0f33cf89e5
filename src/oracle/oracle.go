// Package oracle defines the fundamental-value collaborator interface the
// kernel carries on behalf of trading agents, plus one reference
// implementation backed by a CSV time series.
package oracle

import "simmarket/src/simtime"

// Oracle answers what a symbol is "really" worth at a given time, for
// agents that trade against fundamentals rather than pure order flow.
type Oracle interface {
	FundamentalValue(symbol string, at simtime.Timestamp) (int64, error)
}
