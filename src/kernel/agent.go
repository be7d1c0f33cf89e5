package kernel

import (
	"simmarket/src/message"
	"simmarket/src/simtime"
)

// Agent is the capability surface every simulation participant implements.
// It replaces the deep Agent -> FinancialAgent -> TradingAgent ->
// NoiseAgent inheritance chain of original_source with a flat interface
// plus composition: concrete strategies embed a shared state record and
// implement these five methods against it.
type Agent interface {
	AgentID() int
	TypeName() string

	// KernelInitialising is called once per agent before any agent may talk
	// to another; h is the only channel back to the kernel the agent ever
	// holds, replacing a raw back-reference.
	KernelInitialising(h *Handle)
	// KernelStarting is called once all agents are initialised; agents may
	// discover each other by type from this point.
	KernelStarting(startTime simtime.Timestamp)
	Wakeup(currentTime simtime.Timestamp)
	ReceiveMessage(currentTime simtime.Timestamp, senderID int, body message.Message)
	KernelStopping()
	KernelTerminating()
}
