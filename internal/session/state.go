package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/livechat/internal/bus"
)

// State is a tab's sign-in state.
type State string

const (
	Unauthenticated State = "UNAUTHENTICATED"
	Authenticated   State = "AUTHENTICATED"
)

// StateChangedKind is the bus event kind published on every transition.
const StateChangedKind = "session.state_changed"

var validTransitions = map[State][]State{
	Unauthenticated: {Authenticated},
	Authenticated:   {Unauthenticated},
}

// Machine tracks a tab's sign-in state and the user it is signed in as.
type Machine struct {
	mu      sync.RWMutex
	current State
	userID  string
	bus     *bus.Bus
}

// NewMachine creates a machine in the Unauthenticated state. b may be nil.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Unauthenticated,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// UserID returns the signed-in user, or "" when unauthenticated.
func (m *Machine) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

// SignIn moves to Authenticated as userID.
func (m *Machine) SignIn(userID string) error {
	if userID == "" {
		return fmt.Errorf("sign in: empty user id")
	}
	return m.transition(Authenticated, userID)
}

// SignOut moves to Unauthenticated.
func (m *Machine) SignOut() error {
	return m.transition(Unauthenticated, "")
}

func (m *Machine) transition(to State, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.userID = userID
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      StateChangedKind,
			Timestamp: time.Now(),
			Payload:   StateChange{From: from, To: to, UserID: userID},
		})
	}
	return nil
}

// StateChange is the payload for state change events.
type StateChange struct {
	From   State
	To     State
	UserID string
}
