package auth

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goph3rx/mmo-go/internal/constants"
	"github.com/goph3rx/mmo-go/internal/crypto"
	"github.com/goph3rx/mmo-go/internal/packet"
)

// Transport is the byte sink a sender writes framed packets to. A
// *bufio.Writer over the connection satisfies it.
type Transport interface {
	io.Writer
	Flush() error
}

// Sender serializes one server message into a framed, encrypted packet and
// writes it to the transport.
type Sender interface {
	Send(msg ServerMessage) error
}

// ClientSender is the Sender for one client connection. Scratch buffers are
// fixed-capacity and zeroed on every send, so a failed send leaves nothing
// behind. Not safe for concurrent use; the crypt it shares with the
// receiver is.
type ClientSender struct {
	w     Transport
	crypt *crypto.Crypt

	packet []byte
	buffer []byte
}

// NewClientSender creates a sender writing to w and encrypting with crypt.
// The scratch buffers come from the shared pool; call Release when the
// connection is done with the sender.
func NewClientSender(w Transport, crypt *crypto.Crypt) *ClientSender {
	return &ClientSender{
		w:      w,
		crypt:  crypt,
		packet: bufPool.Get(constants.PacketBufferSize),
		buffer: bufPool.Get(constants.PacketBufferSize),
	}
}

// Release returns the scratch buffers to the pool. The sender must not be
// used afterwards.
func (s *ClientSender) Release() {
	bufPool.Put(s.packet)
	bufPool.Put(s.buffer)
	s.packet = nil
	s.buffer = nil
}

// pad rounds size up to the next multiple of blockSize and fails with
// ErrOverflow if the result would reach the buffer capacity.
func pad(size, blockSize int) (int, error) {
	if size%blockSize != 0 {
		size += blockSize - size%blockSize
	}
	if size >= constants.PacketBufferSize {
		return 0, fmt.Errorf("%w: padded size %d, capacity %d", ErrOverflow, size, constants.PacketBufferSize)
	}
	return size, nil
}

// Send builds and transmits one wire packet, or fails without partial
// transmission. For Init the running-key scramble is applied and the session
// key rotates right after encryption, so the Init frame itself still travels
// under the old key.
func (s *ClientSender) Send(msg ServerMessage) error {
	var newKey []byte
	if init, ok := msg.(Init); ok {
		key := init.CryptKey
		newKey = key[:]
	}

	// Reset buffers for writing
	clear(s.packet)
	clear(s.buffer)

	// Encode the message
	w := packet.NewWriter(s.packet)
	if err := Encode(w, msg); err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	size := w.Position()

	// Checksum field. Always zero at this stage, the client does not verify
	// it before the traffic key is adopted.
	size, err := pad(size, constants.PacketBlockSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(s.packet[size:], 0)
	size += constants.PacketChecksumSize

	// Additional scramble for the first packet
	if newKey != nil {
		var seed [4]byte
		if _, err := rand.Read(seed[:]); err != nil {
			return fmt.Errorf("generating scramble key: %w", err)
		}
		key := int32(binary.LittleEndian.Uint32(seed[:]))

		size, err = pad(size, constants.PacketBlockSize)
		if err != nil {
			return err
		}
		crypto.EncXORPass(s.packet, size, key)
		size += constants.PacketBlockSize
	}

	// Encryption. The compat shim runs before and after the cipher; the key
	// rotation for Init happens inside the same critical section as the
	// encrypt call.
	size, err = pad(size, constants.PacketBlockSize)
	if err != nil {
		return err
	}
	crypto.BlowfishCompat(s.packet[:size])
	size, err = pad(size, constants.BlowfishBlockSize)
	if err != nil {
		return err
	}
	size, err = s.crypt.Encrypt(s.buffer, s.packet[:size], newKey)
	if err != nil {
		return fmt.Errorf("encrypting packet: %w", err)
	}
	crypto.BlowfishCompat(s.buffer[:size])

	// Header
	var header [constants.PacketHeaderSize]byte
	hw := packet.NewWriter(header[:])
	if err := hw.WriteShort(int16(size + constants.PacketHeaderSize)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	// Send
	if _, err := s.w.Write(header[:]); err != nil {
		return fmt.Errorf("writing packet header: %w", err)
	}
	if _, err := s.w.Write(s.buffer[:size]); err != nil {
		return fmt.Errorf("writing packet body: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flushing packet: %w", err)
	}
	return nil
}
