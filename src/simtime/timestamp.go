// Package simtime defines the simulation's virtual clock value type.
package simtime

import (
	"fmt"
	"time"
)

// Invalid is the sentinel Timestamp used before a clock has been set.
const Invalid Timestamp = -1

// Timestamp is a signed count of nanoseconds since a fixed epoch. It is the
// only notion of "now" the kernel and agents observe; it has no relationship
// to wall-clock time.
type Timestamp int64

// FromNanos constructs a Timestamp from a raw nanosecond count.
func FromNanos(ns int64) Timestamp {
	return Timestamp(ns)
}

// IsValid reports whether the timestamp is not the Invalid sentinel.
func (t Timestamp) IsValid() bool {
	return t >= 0
}

// Nanos returns the raw nanosecond count since the epoch.
func (t Timestamp) Nanos() int64 {
	return int64(t)
}

// Add returns t advanced by a non-negative delta. Negative deltas never
// arise from the kernel or matching engine; callers that would construct one
// have a bug, so Add panics rather than silently moving the clock backward.
func (t Timestamp) Add(delta int64) Timestamp {
	if delta < 0 {
		panic(fmt.Sprintf("simtime: Add called with negative delta %d", delta))
	}
	return t + Timestamp(delta)
}

// Before reports whether t occurs strictly before other.
func (t Timestamp) Before(other Timestamp) bool { return t < other }

// After reports whether t occurs strictly after other.
func (t Timestamp) After(other Timestamp) bool { return t > other }

// Equal reports whether t and other denote the same instant.
func (t Timestamp) Equal(other Timestamp) bool { return t == other }

func (t Timestamp) String() string {
	if !t.IsValid() {
		return "invalid"
	}
	return time.Unix(0, int64(t)).UTC().Format("2006-01-02T15:04:05.000000000Z")
}
