package countdown

import "time"

// State is the externally visible timer state.
type State string

const (
	StateRunning State = "Running"
	StatePaused  State = "Paused"
	StateIdle    State = "Idle"
)

// Channel identifies one of the timer's event streams.
type Channel string

const (
	ChannelStarted   Channel = "started"
	ChannelStopped   Channel = "stopped"
	ChannelPaused    Channel = "paused"
	ChannelResumed   Channel = "resumed"
	ChannelCompleted Channel = "completed"
	ChannelTick      Channel = "tick"
	ChannelDidLoop   Channel = "did_loop"
)

// Event represents a timer update for observers.
type Event struct {
	Channel   Channel
	Remaining time.Duration // set on tick, started and stopped events
	Loops     int           // loops completed so far; set on loop, completed and stopped events
	At        time.Time
}

// Emitter receives every event the timer produces.
type Emitter interface {
	Emit(event Event)
}

type nopEmitter struct{}

func (nopEmitter) Emit(Event) {}
