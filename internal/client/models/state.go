package models

// State is the session resolver's position in its state machine.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateTrustPending
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateTrustPending:
		return "trust_pending"
	default:
		return "unknown"
	}
}

// TrustDecision is the outcome of verifying a cached session with the backend.
type TrustDecision int

const (
	// TrustUnknown means no answer was obtained (network or backend failure).
	TrustUnknown TrustDecision = iota
	// TrustConfirmed means the backend validated the token.
	TrustConfirmed
	// TrustRejected means the backend explicitly invalidated the token.
	TrustRejected
)

func (d TrustDecision) String() string {
	switch d {
	case TrustConfirmed:
		return "confirmed"
	case TrustRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
