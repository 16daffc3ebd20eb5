package auth

// ConnectionState represents the state machine for a login connection at
// the handshake stage.
type ConnectionState int

const (
	StateCreated          ConnectionState = iota // client constructed, nothing sent
	StateAwaitingGG                              // Init sent, waiting for AuthGameGuard
	StateGGAcknowledged                          // GGAuth sent, handshake stage complete
)

func (s ConnectionState) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateAwaitingGG:
		return "AWAITING_GG"
	case StateGGAcknowledged:
		return "GG_ACKNOWLEDGED"
	default:
		return "UNKNOWN"
	}
}
