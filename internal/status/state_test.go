package status

import (
	"testing"

	"github.com/parley-im/parley/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, Listening},
		{Booting, Error},
		{Listening, Draining},
		{Listening, Error},
		{Draining, Stopped},
		{Error, Booting},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Stopped); err == nil {
		t.Error("Transition(BOOTING -> STOPPED) should fail")
	}
	if m.Current() != Booting {
		t.Errorf("state = %s, want BOOTING (should not have changed)", m.Current())
	}
}

func TestStoppedIsTerminal(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Stopped)

	for _, to := range []State{Booting, Listening, Draining, Error} {
		if err := m.Transition(to); err == nil {
			t.Errorf("Transition(STOPPED -> %s) should fail", to)
		}
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("daemon.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Listening); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != "daemon.status_changed" {
		t.Errorf("event kind = %q, want daemon.status_changed", evt.Kind)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Booting || change.To != Listening {
		t.Errorf("change = %v -> %v, want BOOTING -> LISTENING", change.From, change.To)
	}
}

// TestFullLifecycle simulates a clean run:
// BOOTING → LISTENING → DRAINING → STOPPED
func TestFullLifecycle(t *testing.T) {
	m := NewMachine(nil)

	steps := []State{Listening, Draining, Stopped}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != Stopped {
		t.Errorf("final state = %s, want STOPPED", m.Current())
	}
}

// walkTo is a helper that transitions the machine to a target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Booting:   {},
		Listening: {Listening},
		Draining:  {Listening, Draining},
		Stopped:   {Listening, Draining, Stopped},
		Error:     {Error},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
