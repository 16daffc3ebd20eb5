package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/goph3rx/mmo-go/internal/constants"
)

// RSAKeyPair holds the RSA-1024 credential keypair for one session. Modulus
// is the raw (unscrambled) public modulus, normalized to exactly 128 bytes.
type RSAKeyPair struct {
	PrivateKey *rsa.PrivateKey
	Modulus    [constants.RSAModulusSize]byte
}

// GenerateRSAKeyPair generates an RSA-1024 keypair with exponent 65537.
// The public modulus is normalized to exactly 128 bytes: a big-int encoding
// may carry a leading zero or come up short, the client accepts neither.
func GenerateRSAKeyPair() (*RSAKeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, constants.RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}

	modBytes := privateKey.PublicKey.N.Bytes()
	if len(modBytes) == constants.RSAModulusSize+1 && modBytes[0] == 0 {
		modBytes = modBytes[1:]
	}
	if len(modBytes) > constants.RSAModulusSize {
		return nil, fmt.Errorf("generating RSA key: modulus is %d bytes", len(modBytes))
	}

	kp := &RSAKeyPair{PrivateKey: privateKey}
	copy(kp.Modulus[constants.RSAModulusSize-len(modBytes):], modBytes)
	return kp, nil
}
