package crypto

import (
	"fmt"
	"sync"
)

// StaticBlowfishKey is the key hardcoded in the client for the first packet
// of a session. Every session starts with it and rotates to the session
// traffic key right after the Init packet is encrypted.
var StaticBlowfishKey = []byte{
	0x6b, 0x60, 0xcb, 0x5b,
	0x82, 0xce, 0x90, 0xb1,
	0xcc, 0x2b, 0x6c, 0x55,
	0x6c, 0x6c, 0x6c, 0x6c,
}

// Crypt holds the active Blowfish cipher for one login session. Both traffic
// directions always run under the same key: a single ECB cipher instance
// serves encryption and decryption, and rekeying swaps it atomically under
// the mutex that also guards every cipher call.
type Crypt struct {
	mu     sync.Mutex
	cipher *BlowfishCipher
}

// NewCrypt creates a Crypt keyed with the given initial key.
func NewCrypt(key []byte) (*Crypt, error) {
	c, err := NewBlowfishCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating session cipher: %w", err)
	}
	return &Crypt{cipher: c}, nil
}

// Encrypt encrypts src into dst and returns the number of bytes written.
// If newKey is non-nil the cipher is rekeyed immediately after the
// encryption, inside the same critical section: the packet being encrypted
// still uses the old key, every subsequent packet uses the new one. A
// concurrent caller can never observe the state in between.
func (c *Crypt) Encrypt(dst, src, newKey []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.cipher.Encrypt(dst, src)
	if err != nil {
		return 0, err
	}

	if newKey != nil {
		cipher, err := NewBlowfishCipher(newKey)
		if err != nil {
			return 0, fmt.Errorf("rotating session key: %w", err)
		}
		c.cipher = cipher
	}

	return n, nil
}

// Decrypt decrypts data in-place under the currently active key.
func (c *Crypt) Decrypt(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.cipher.Decrypt(data, data)
	return err
}

// UpdateKey replaces the active cipher with one keyed by key.
func (c *Crypt) UpdateKey(key []byte) error {
	cipher, err := NewBlowfishCipher(key)
	if err != nil {
		return fmt.Errorf("updating session key: %w", err)
	}

	c.mu.Lock()
	c.cipher = cipher
	c.mu.Unlock()
	return nil
}
