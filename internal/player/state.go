package player

import (
	"fmt"
	"sync"
)

// State identifies one mode of the playback session.
type State int

const (
	// StateIdle means no presentation session exists.
	StateIdle State = iota
	// StatePresenting means sections are being narrated.
	StatePresenting
	// StatePaused means a session exists but narration is held.
	StatePaused
	// StateChatActive means a question-and-answer exchange owns the audio.
	StateChatActive
	// StateComplete means the server delivered every section.
	StateComplete
	// StateStopped means the viewer ended the session early.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresenting:
		return "presenting"
	case StatePaused:
		return "paused"
	case StateChatActive:
		return "chat"
	case StateComplete:
		return "complete"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var allowedTransitions = map[State][]State{
	StateIdle:       {StatePresenting, StateChatActive},
	StatePresenting: {StatePaused, StateChatActive, StateComplete, StateStopped},
	StatePaused:     {StatePresenting, StateChatActive, StateStopped},
	StateChatActive: {StatePaused, StateIdle, StateStopped},
	StateComplete:   {StateIdle, StatePresenting},
	StateStopped:    {StateIdle, StatePresenting},
}

// Machine is the session state machine. Every mode change goes through
// Transition, which rejects moves the session cannot legally make, so
// impossible combinations (narrating while chatting, resuming a session
// that never started) cannot be represented.
type Machine struct {
	mu            sync.Mutex
	state         State
	sessionActive bool
}

// NewMachine returns a machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionActive reports whether a presentation session exists, paused or not.
func (m *Machine) SessionActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionActive
}

// Transition moves the machine to a new state, or returns an error naming
// the rejected move.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.canMoveLocked(to) {
		return fmt.Errorf("invalid transition %s -> %s", m.state, to)
	}
	m.applyLocked(to)
	return nil
}

// EndChat leaves StateChatActive. A session that was presenting or paused
// lands in StatePaused so the viewer resumes explicitly; otherwise the
// machine returns to StateIdle.
func (m *Machine) EndChat() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateChatActive {
		return m.state, fmt.Errorf("end chat: not in chat (state %s)", m.state)
	}
	to := StateIdle
	if m.sessionActive {
		to = StatePaused
	}
	m.applyLocked(to)
	return to, nil
}

func (m *Machine) canMoveLocked(to State) bool {
	for _, candidate := range allowedTransitions[m.state] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (m *Machine) applyLocked(to State) {
	switch to {
	case StatePresenting:
		m.sessionActive = true
	case StateIdle, StateComplete, StateStopped:
		m.sessionActive = false
	}
	m.state = to
}
