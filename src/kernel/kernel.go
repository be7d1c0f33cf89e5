// Package kernel implements the deterministic, discrete-event scheduler
// described in spec §4.1: a priority queue of timed messages, per-agent
// logical clocks, and the computation-delay/latency model that produces a
// single total ordering of agent observations.
package kernel

import (
	"container/heap"
	"fmt"
	"math/rand"

	"simmarket/src/message"
	"simmarket/src/oracle"
	"simmarket/src/simtime"

	"github.com/rs/zerolog"
)

// defaultWakeupDelay is substituted for setWakeup(requestedTime=0), per
// spec §9's open question: treated as a named constant rather than a
// configurable parameter, since the source never threads one through.
const defaultWakeupDelay int64 = 1000

type agentState int

const (
	stateBeforeInit agentState = iota
	stateInitialised
	stateRunning
	stateStopped
	stateTerminated
)

// RunConfig bundles the parameters of a single simulation run, mirroring
// the `run(agents, startTime, stopTime, seed, ...)` signature of spec §4.1.
type RunConfig struct {
	Agents                  []Agent
	StartTime               simtime.Timestamp
	StopTime                simtime.Timestamp
	Seed                    int64
	DefaultComputationDelay int64
	DefaultLatency          int64
	LatencyMatrix           [][]int64 // optional; overrides DefaultLatency pairwise
	Oracle                  oracle.Oracle
	NumSimulations          int
}

// Kernel owns the event queue, per-agent logical clocks, and the seeded RNG
// that drives delivery-time noise. There is exactly one Kernel per run.
type Kernel struct {
	log zerolog.Logger

	currentTime                simtime.Timestamp
	startTime                  simtime.Timestamp
	stopTime                   simtime.Timestamp
	currentAgentAdditionalDelay int64

	queue eventQueue
	rng   *rand.Rand
	minter message.Minter

	agents                 []Agent
	agentStates            []agentState
	agentCurrentTimes      []simtime.Timestamp
	agentComputationDelays []int64
	agentLatency           [][]int64

	oracle       oracle.Oracle
	customState  map[string]string
	numSimulations int
}

// New constructs a Kernel that logs through l.
func New(l zerolog.Logger) *Kernel {
	return &Kernel{log: l, customState: make(map[string]string)}
}

// Minter exposes the kernel-owned message uniq_id counter to handles.
func (k *Kernel) Minter() *message.Minter { return &k.minter }

// Run drives the full lifecycle: kernelInitialising -> kernelStarting ->
// event loop -> kernelStopping -> kernelTerminating, returning the
// accumulated custom_state map. A *KernelFatalError aborts the run early
// at the point it's detected.
func (k *Kernel) Run(cfg RunConfig) (map[string]string, error) {
	n := len(cfg.Agents)
	k.agents = cfg.Agents
	k.startTime = cfg.StartTime
	k.stopTime = cfg.StopTime
	k.rng = rand.New(rand.NewSource(cfg.Seed))
	k.oracle = cfg.Oracle
	k.numSimulations = cfg.NumSimulations

	k.agentStates = make([]agentState, n)
	k.agentCurrentTimes = make([]simtime.Timestamp, n)
	k.agentComputationDelays = make([]int64, n)
	for i := range k.agentComputationDelays {
		k.agentComputationDelays[i] = cfg.DefaultComputationDelay
	}

	k.agentLatency = cfg.LatencyMatrix
	if k.agentLatency == nil {
		k.agentLatency = make([][]int64, n)
		for i := range k.agentLatency {
			k.agentLatency[i] = make([]int64, n)
			for j := range k.agentLatency[i] {
				if i != j {
					k.agentLatency[i][j] = cfg.DefaultLatency
				}
			}
		}
	}

	for i, a := range k.agents {
		if a.AgentID() != i {
			return nil, &KernelFatalError{Reason: fmt.Sprintf("agent at index %d reports AgentID() = %d", i, a.AgentID())}
		}
	}

	k.log.Info().Int("num_agents", n).Msg("KERNEL_INITIALISING")
	for i, a := range k.agents {
		a.KernelInitialising(&Handle{k: k, agentID: i})
		k.agentStates[i] = stateInitialised
	}

	k.currentTime = cfg.StartTime
	for i := range k.agentCurrentTimes {
		k.agentCurrentTimes[i] = cfg.StartTime
	}

	k.log.Info().Str("start_time", cfg.StartTime.String()).Msg("KERNEL_STARTING")
	for i, a := range k.agents {
		a.KernelStarting(cfg.StartTime)
		k.agentStates[i] = stateRunning
	}

	if err := k.loop(); err != nil {
		return k.customState, err
	}

	k.log.Info().Msg("KERNEL_STOPPING")
	for i, a := range k.agents {
		a.KernelStopping()
		k.agentStates[i] = stateStopped
	}

	k.log.Info().Msg("KERNEL_TERMINATING")
	for i, a := range k.agents {
		a.KernelTerminating()
		k.agentStates[i] = stateTerminated
	}

	return k.customState, nil
}

// loop is the heart of §4.1's event loop: pop the minimum (deliverAt,
// uniq_id), gate delivery on the recipient's logical clock, deliver, and
// advance that clock by the agent's computation delay.
func (k *Kernel) loop() error {
	for k.queue.Len() > 0 && k.currentTime <= k.stopTime {
		sm := heap.Pop(&k.queue).(ScheduledMessage)

		k.currentTime = sm.DeliverAt
		if k.currentTime > k.stopTime {
			heap.Push(&k.queue, sm)
			break
		}
		k.currentAgentAdditionalDelay = 0

		recipient := sm.Recipient
		if recipient < 0 || recipient >= len(k.agents) {
			return &KernelFatalError{Reason: fmt.Sprintf("unknown recipient agent id %d", recipient)}
		}

		if k.agentCurrentTimes[recipient] > k.currentTime {
			sm.DeliverAt = k.agentCurrentTimes[recipient]
			heap.Push(&k.queue, sm)
			continue
		}

		k.agentCurrentTimes[recipient] = k.currentTime

		if err := k.deliver(sm); err != nil {
			return err
		}

		k.agentCurrentTimes[recipient] += simtime.Timestamp(k.agentComputationDelays[recipient] + k.currentAgentAdditionalDelay)
	}
	return nil
}

func (k *Kernel) deliver(sm ScheduledMessage) error {
	if k.agentStates[sm.Recipient] != stateRunning {
		k.log.Warn().Int("recipient", sm.Recipient).Msg("message delivered to non-running agent, dropping")
		return nil
	}
	agent := k.agents[sm.Recipient]
	switch body := sm.Body.(type) {
	case nil:
		return &KernelFatalError{Reason: "unknown message variant at dispatch"}
	case message.Wakeup:
		agent.Wakeup(k.currentTime)
	default:
		agent.ReceiveMessage(k.currentTime, sm.Sender, body)
	}
	return nil
}

// sendMessage implements spec §4.1's send pipeline: sentTime accounts for
// the sender's computation delay and any additional per-call delay;
// deliverAt adds pairwise latency plus 0-3ns of kernel-seeded noise.
func (k *Kernel) sendMessage(sender, recipient int, body message.Message, extraDelay int64) error {
	if recipient < 0 || recipient >= len(k.agents) {
		return fmt.Errorf("kernel: unknown recipient agent id %d", recipient)
	}
	sentTime := k.currentTime.Add(k.agentComputationDelays[sender] + k.currentAgentAdditionalDelay + extraDelay)
	latency := int64(0)
	if k.agentLatency != nil {
		latency = k.agentLatency[sender][recipient]
	}
	noise := int64(k.rng.Intn(4))
	deliverAt := sentTime.Add(latency + noise)

	heap.Push(&k.queue, ScheduledMessage{DeliverAt: deliverAt, Recipient: recipient, Sender: sender, Body: body})
	return nil
}

// setWakeup implements spec §4.1's setWakeup rules: a requested time of 0
// substitutes currentTime+defaultWakeupDelay; anything at or before
// currentTime is fatal.
func (k *Kernel) setWakeup(sender int, requestedTime simtime.Timestamp) error {
	if requestedTime == 0 {
		requestedTime = k.currentTime.Add(defaultWakeupDelay)
	} else if requestedTime <= k.currentTime {
		return &KernelFatalError{Reason: (&ScheduleInPastError{
			AgentID: sender, RequestedTime: requestedTime.Nanos(), CurrentTime: k.currentTime.Nanos(),
		}).Error()}
	}
	heap.Push(&k.queue, ScheduledMessage{
		DeliverAt: requestedTime, Recipient: sender, Sender: sender, Body: message.NewWakeup(&k.minter),
	})
	return nil
}

func (k *Kernel) getAgentComputeDelay(id int) int64 { return k.agentComputationDelays[id] }

func (k *Kernel) setAgentComputeDelay(id int, delay int64) error {
	if delay < 0 {
		return &KernelFatalError{Reason: fmt.Sprintf("agent %d: negative computation delay %d", id, delay)}
	}
	k.agentComputationDelays[id] = delay
	return nil
}

func (k *Kernel) findAgentByType(typeName string) (int, bool) {
	for i, a := range k.agents {
		if a.TypeName() == typeName {
			return i, true
		}
	}
	return 0, false
}

func (k *Kernel) delay(ns int64) { k.currentAgentAdditionalDelay += ns }

// SetCustomState records one key/value pair in the run's summary state,
// returned from Run on completion.
func (k *Kernel) SetCustomState(key, value string) { k.customState[key] = value }
