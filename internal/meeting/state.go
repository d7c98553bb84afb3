package meeting

// Phase is the lifecycle position of a meeting session.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseConnecting   Phase = "connecting"
	PhaseConnected    Phase = "connected"
	PhaseReconnecting Phase = "reconnecting"
	PhaseDisconnected Phase = "disconnected"
	PhaseFailed       Phase = "failed"
)

// ConnectionState is the session state plus a human-readable reason for
// the failure-ish phases. Exactly one state holds at any time.
type ConnectionState struct {
	Phase  Phase
	Reason string
}

func (s ConnectionState) isBusy() bool {
	return s.Phase == PhaseConnecting || s.Phase == PhaseConnected || s.Phase == PhaseReconnecting
}
