package kernel

import (
	"simmarket/src/message"
	"simmarket/src/simtime"
)

// ScheduledMessage is one entry in the kernel's event queue: a message
// addressed to a recipient at a delivery time, ordered primarily by
// deliverAt and secondarily by the message's uniq_id so simultaneous
// events resolve in construction order (spec §3, §4.1, invariant 7).
type ScheduledMessage struct {
	DeliverAt simtime.Timestamp
	Recipient int
	Sender    int
	Body      message.Message
}

func (m ScheduledMessage) less(other ScheduledMessage) bool {
	if m.DeliverAt != other.DeliverAt {
		return m.DeliverAt < other.DeliverAt
	}
	return m.Body.UniqID() < other.Body.UniqID()
}

// eventQueue is a binary min-heap of ScheduledMessage ordered by (deliverAt,
// uniq_id), driven through container/heap the way the teacher's code
// reaches for a standard library data structure when no domain library
// covers the concern (see DESIGN.md).
type eventQueue []ScheduledMessage

func (q eventQueue) Len() int            { return len(q) }
func (q eventQueue) Less(i, j int) bool  { return q[i].less(q[j]) }
func (q eventQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(ScheduledMessage)) }
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
