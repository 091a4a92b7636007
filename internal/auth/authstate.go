package auth

import "github.com/teamspace-io/teamspace/internal/models"

// AuthState is the client-facing authorization state machine. Pages start in
// StateLoading while the credential resolves, then transition exactly once
// into one of three terminal states. The terminal decision reproduces the
// gateway's: the UI and the API never disagree about a principal's state.
type AuthState int

const (
	// StateLoading means the credential has not yet been resolved.
	StateLoading AuthState = iota

	// StateUnauthenticated means no valid credential resolved; the client
	// redirects to sign-in.
	StateUnauthenticated

	// StateNoProfile means the principal resolved but carries no
	// workspace-bound profile; the client redirects to onboarding.
	StateNoProfile

	// StateReady means both principal and a workspace-bound profile are
	// available; protected content renders.
	StateReady
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateNoProfile:
		return "no_profile"
	case StateReady:
		return "ready"
	default:
		return "loading"
	}
}

// Terminal returns true once the state machine has decided.
func (s AuthState) Terminal() bool {
	return s != StateLoading
}

// ResolveState computes the terminal state for a resolution outcome. This is
// the same decision Gateway.Authorize makes, expressed as a pure function so
// it is testable without a transport.
func ResolveState(principal *Principal, profile *models.Profile) AuthState {
	if principal == nil {
		return StateUnauthenticated
	}
	if profile == nil || !profile.Complete() {
		return StateNoProfile
	}
	return StateReady
}

// StateMachine tracks one page load's authorization state. Transitions out
// of a terminal state are ignored: a late-arriving resolution cannot flip a
// decision already acted on.
type StateMachine struct {
	state AuthState
}

// NewStateMachine creates a state machine in StateLoading.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateLoading}
}

// State returns the current state.
func (m *StateMachine) State() AuthState {
	return m.state
}

// Resolve transitions from StateLoading using the resolution outcome and
// returns the resulting state. Called in a terminal state it is a no-op.
func (m *StateMachine) Resolve(principal *Principal, profile *models.Profile) AuthState {
	if m.state.Terminal() {
		return m.state
	}
	m.state = ResolveState(principal, profile)
	return m.state
}

// RedirectTarget returns where the client should navigate for the current
// state, and whether a redirect is required at all. StateReady and
// StateLoading render in place.
func (m *StateMachine) RedirectTarget(signInURL, onboardingURL string) (string, bool) {
	switch m.state {
	case StateUnauthenticated:
		return signInURL, true
	case StateNoProfile:
		return onboardingURL, true
	default:
		return "", false
	}
}
