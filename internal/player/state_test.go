package player

import "testing"

func TestMachineStartsIdle(t *testing.T) {
	m := NewMachine()
	if got := m.State(); got != StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
	if m.SessionActive() {
		t.Fatal("expected no active session")
	}
}

func TestMachineAllowsPlaybackLifecycle(t *testing.T) {
	m := NewMachine()
	steps := []State{StatePresenting, StatePaused, StatePresenting, StateComplete, StateIdle}
	for _, to := range steps {
		if err := m.Transition(to); err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
	}
}

func TestMachineRejectsInvalidTransitions(t *testing.T) {
	cases := []struct {
		name string
		path []State
		to   State
	}{
		{name: "resume from idle", path: nil, to: StatePaused},
		{name: "complete from idle", path: nil, to: StateComplete},
		{name: "idle directly from presenting", path: []State{StatePresenting}, to: StateIdle},
		{name: "chat to presenting", path: []State{StatePresenting, StateChatActive}, to: StatePresenting},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine()
			for _, step := range tc.path {
				if err := m.Transition(step); err != nil {
					t.Fatalf("setup transition to %s: %v", step, err)
				}
			}
			if err := m.Transition(tc.to); err == nil {
				t.Fatalf("expected transition to %s to be rejected", tc.to)
			}
		})
	}
}

func TestEndChatPausesActiveSession(t *testing.T) {
	m := NewMachine()
	if err := m.Transition(StatePresenting); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := m.Transition(StateChatActive); err != nil {
		t.Fatalf("enter chat: %v", err)
	}

	state, err := m.EndChat()
	if err != nil {
		t.Fatalf("end chat: %v", err)
	}
	if state != StatePaused {
		t.Fatalf("expected paused after chat with live session, got %s", state)
	}
	if !m.SessionActive() {
		t.Fatal("session should survive a chat exchange")
	}
}

func TestEndChatReturnsToIdleWithoutSession(t *testing.T) {
	m := NewMachine()
	if err := m.Transition(StateChatActive); err != nil {
		t.Fatalf("enter chat: %v", err)
	}

	state, err := m.EndChat()
	if err != nil {
		t.Fatalf("end chat: %v", err)
	}
	if state != StateIdle {
		t.Fatalf("expected idle after standalone chat, got %s", state)
	}
}

func TestEndChatOutsideChatFails(t *testing.T) {
	m := NewMachine()
	if _, err := m.EndChat(); err == nil {
		t.Fatal("expected error ending chat from idle")
	}
}
