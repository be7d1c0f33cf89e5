package kernel

import (
	"math/rand"

	"simmarket/src/message"
	"simmarket/src/oracle"
	"simmarket/src/simtime"
)

// Handle is the thin capability object an agent receives at
// KernelInitialising: the only channel back to the kernel, exposing
// sendMessage, setWakeup, getComputeDelay/setComputeDelay, and
// findAgentByType, per the cyclic-ownership Design Note in spec §9, plus
// accessors for the delay, clock, minter, RNG, oracle, event log and
// custom state. The
// kernel retains exclusive ownership of the agent vector; agents never
// hold a pointer to it directly.
type Handle struct {
	k       *Kernel
	agentID int
}

// AgentID returns the id of the agent this handle was issued to.
func (h *Handle) AgentID() int { return h.agentID }

// SendMessage enqueues body for recipient with no additional per-call
// delay beyond the sender's computation delay and the pairwise latency.
func (h *Handle) SendMessage(recipient int, body message.Message) error {
	return h.k.sendMessage(h.agentID, recipient, body, 0)
}

// SendMessageDelayed is SendMessage with an extra pipeline delay added on
// top of the sender's computation delay, for operations (order activity)
// that incur more than the plain computational cost.
func (h *Handle) SendMessageDelayed(recipient int, body message.Message, extraDelay int64) error {
	return h.k.sendMessage(h.agentID, recipient, body, extraDelay)
}

// SetWakeup requests a future Wakeup delivery to this agent.
// requestedTime == 0 substitutes CurrentTime()+1000ns; anything at or
// before CurrentTime() is fatal per spec §4.1.
func (h *Handle) SetWakeup(requestedTime simtime.Timestamp) error {
	return h.k.setWakeup(h.agentID, requestedTime)
}

// GetComputeDelay returns this agent's current computation delay in ns.
func (h *Handle) GetComputeDelay() int64 { return h.k.getAgentComputeDelay(h.agentID) }

// SetComputeDelay changes this agent's computation delay. A negative delay
// is fatal per spec §7.
func (h *Handle) SetComputeDelay(ns int64) error { return h.k.setAgentComputeDelay(h.agentID, ns) }

// FindAgentByType returns the id of an arbitrary agent whose TypeName
// matches typeName. Linear scan; callers should cache the result.
func (h *Handle) FindAgentByType(typeName string) (int, bool) { return h.k.findAgentByType(typeName) }

// Delay adds ns to the additional per-call delay applied to every message
// this agent sends during the current dispatch; the same amount is added
// to the agent's own clock when the dispatch ends.
func (h *Handle) Delay(ns int64) { h.k.delay(ns) }

// CurrentTime returns the kernel's virtual clock.
func (h *Handle) CurrentTime() simtime.Timestamp { return h.k.currentTime }

// Minter exposes the kernel-owned uniq_id counter so the agent can
// construct messages deterministically tagged for the tie-break rule.
func (h *Handle) Minter() *message.Minter { return h.k.Minter() }

// RNG exposes the kernel's seeded generator (§5 RNG policy); agents that
// need their own independent stream should instead use
// orders.NewSubRandomSource(seed, agentID).
func (h *Handle) RNG() *rand.Rand { return h.k.rng }

// Oracle exposes the run's fundamental-value collaborator, or nil if none
// was configured.
func (h *Handle) Oracle() oracle.Oracle { return h.k.oracle }

// LogEvent appends a structured event to the kernel's logger, tagged by
// this agent's id.
func (h *Handle) LogEvent(eventType, detail string) {
	h.k.log.Info().Int("agent_id", h.agentID).Str("event", eventType).Str("detail", detail).Msg(eventType)
}

// SetCustomState records a key/value pair in the run's summary state.
func (h *Handle) SetCustomState(key, value string) { h.k.SetCustomState(key, value) }
