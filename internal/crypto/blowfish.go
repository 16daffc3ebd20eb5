package crypto

import (
	"fmt"

	"golang.org/x/crypto/blowfish"

	"github.com/goph3rx/mmo-go/internal/constants"
)

// BlowfishCipher wraps Blowfish ECB encryption/decryption for the login
// protocol. No padding: callers guarantee block-aligned input.
type BlowfishCipher struct {
	cipher *blowfish.Cipher
}

// NewBlowfishCipher creates a new Blowfish ECB cipher from the given key.
func NewBlowfishCipher(key []byte) (*BlowfishCipher, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating blowfish cipher: %w", err)
	}
	return &BlowfishCipher{cipher: c}, nil
}

// Encrypt encrypts src into dst using Blowfish ECB mode and returns the
// number of bytes written. src length must be a multiple of 8; dst may alias
// src for in-place encryption.
func (b *BlowfishCipher) Encrypt(dst, src []byte) (int, error) {
	if len(src)%constants.BlowfishBlockSize != 0 {
		return 0, fmt.Errorf("blowfish encrypt: size %d is not a multiple of %d", len(src), constants.BlowfishBlockSize)
	}
	if len(dst) < len(src) {
		return 0, fmt.Errorf("blowfish encrypt: dst size %d is less than src size %d", len(dst), len(src))
	}
	for i := 0; i < len(src); i += constants.BlowfishBlockSize {
		b.cipher.Encrypt(dst[i:i+constants.BlowfishBlockSize], src[i:i+constants.BlowfishBlockSize])
	}
	return len(src), nil
}

// Decrypt decrypts src into dst using Blowfish ECB mode and returns the
// number of bytes written. src length must be a multiple of 8; dst may alias
// src for in-place decryption.
func (b *BlowfishCipher) Decrypt(dst, src []byte) (int, error) {
	if len(src)%constants.BlowfishBlockSize != 0 {
		return 0, fmt.Errorf("blowfish decrypt: size %d is not a multiple of %d", len(src), constants.BlowfishBlockSize)
	}
	if len(dst) < len(src) {
		return 0, fmt.Errorf("blowfish decrypt: dst size %d is less than src size %d", len(dst), len(src))
	}
	for i := 0; i < len(src); i += constants.BlowfishBlockSize {
		b.cipher.Decrypt(dst[i:i+constants.BlowfishBlockSize], src[i:i+constants.BlowfishBlockSize])
	}
	return len(src), nil
}
