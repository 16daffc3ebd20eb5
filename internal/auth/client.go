package auth

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goph3rx/mmo-go/internal/constants"
	"github.com/goph3rx/mmo-go/internal/crypto"
)

// Client orchestrates the handshake for a single session. It owns the
// per-session key material, which is generated once at construction and
// never changes; only the crypt's active key rotates, inside the sender.
// All session-mutable fields live behind one mutex: one goroutine may drive
// inbound messages while another sends.
type Client struct {
	mu sync.Mutex

	sender Sender
	state  ConnectionState

	cryptKey       [constants.BlowfishKeySize]byte
	credentialsKey *crypto.RSAKeyPair
}

// NewClient generates the session key material (Blowfish traffic key and
// RSA credential keypair) and returns a client in the Created state.
func NewClient(sender Sender) (*Client, error) {
	var cryptKey [constants.BlowfishKeySize]byte
	if _, err := rand.Read(cryptKey[:]); err != nil {
		return nil, fmt.Errorf("generating traffic key: %w", err)
	}

	credentialsKey, err := crypto.GenerateRSAKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generating credentials key: %w", err)
	}

	return &Client{
		sender:         sender,
		state:          StateCreated,
		cryptKey:       cryptKey,
		credentialsKey: credentialsKey,
	}, nil
}

// Init sends the session-initialization packet carrying the credential
// modulus and the new traffic key.
func (c *Client) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := Init{
		SessionID: constants.SessionIDSentinel,
		Modulus:   c.credentialsKey.Modulus,
		CryptKey:  c.cryptKey,
	}
	if err := c.sender.Send(msg); err != nil {
		return fmt.Errorf("sending init: %w", err)
	}

	c.state = StateAwaitingGG
	return nil
}

// Handle processes one decoded client message and drives the state machine.
// A message arriving in the wrong state is logged and dropped; the
// connection stays open.
func (c *Client) Handle(msg ClientMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.(type) {
	case AuthGameGuard:
		if c.state != StateAwaitingGG {
			slog.Warn("AuthGameGuard in wrong state", "state", c.state)
			return nil
		}
		if err := c.sender.Send(GGAuth{Result: GGAuthSkip}); err != nil {
			return fmt.Errorf("sending gg auth: %w", err)
		}
		c.state = StateGGAcknowledged
		return nil

	default:
		return fmt.Errorf("unexpected client message %T", msg)
	}
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
