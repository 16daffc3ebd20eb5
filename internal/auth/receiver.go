package auth

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goph3rx/mmo-go/internal/constants"
	"github.com/goph3rx/mmo-go/internal/crypto"
	"github.com/goph3rx/mmo-go/internal/packet"
)

// Receiver reads framed client packets from the transport and decodes them.
// It mirrors the sender: compat shim, decrypt under the shared session
// crypt, compat shim, decode.
type Receiver struct {
	r      io.Reader
	crypt  *crypto.Crypt
	buffer []byte
}

// NewReceiver creates a receiver reading from r and decrypting with crypt.
// The read buffer comes from the shared pool; call Release when the
// connection is done with the receiver.
func NewReceiver(r io.Reader, crypt *crypto.Crypt) *Receiver {
	return &Receiver{
		r:      r,
		crypt:  crypt,
		buffer: bufPool.Get(constants.PacketBufferSize),
	}
}

// Release returns the read buffer to the pool. The receiver must not be
// used afterwards.
func (rc *Receiver) Release() {
	bufPool.Put(rc.buffer)
	rc.buffer = nil
}

// Receive reads and decodes one client message.
func (rc *Receiver) Receive() (ClientMessage, error) {
	var header [constants.PacketHeaderSize]byte
	if _, err := io.ReadFull(rc.r, header[:]); err != nil {
		return nil, fmt.Errorf("reading packet header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	if totalLen <= constants.PacketHeaderSize {
		return nil, fmt.Errorf("invalid packet length: %d", totalLen)
	}

	payloadLen := totalLen - constants.PacketHeaderSize
	if payloadLen > len(rc.buffer) {
		return nil, fmt.Errorf("packet payload %d exceeds buffer size %d", payloadLen, len(rc.buffer))
	}
	if payloadLen%constants.BlowfishBlockSize != 0 {
		return nil, fmt.Errorf("packet payload %d is not block aligned", payloadLen)
	}

	payload := rc.buffer[:payloadLen]
	if _, err := io.ReadFull(rc.r, payload); err != nil {
		return nil, fmt.Errorf("reading packet payload: %w", err)
	}

	crypto.BlowfishCompat(payload)
	if err := rc.crypt.Decrypt(payload); err != nil {
		return nil, fmt.Errorf("decrypting packet: %w", err)
	}
	crypto.BlowfishCompat(payload)

	return Decode(packet.NewReader(payload))
}
