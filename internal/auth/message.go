package auth

import (
	"fmt"

	"github.com/goph3rx/mmo-go/internal/constants"
	"github.com/goph3rx/mmo-go/internal/crypto"
	"github.com/goph3rx/mmo-go/internal/packet"
)

// Server packet opcodes
const (
	OpcodeInit   = 0x00
	OpcodeGGAuth = 0x0B
)

// Client packet opcodes
const (
	OpcodeAuthGameGuard = 0x07
)

// GGAuthResult is the result code carried by the GGAuth packet.
type GGAuthResult int32

// GGAuthSkip tells the client to skip the GameGuard challenge.
const GGAuthSkip GGAuthResult = 0x0B

// ServerMessage is a packet sent from the login server to the client.
// The set is closed: Init and GGAuth are the only messages at this stage.
type ServerMessage interface {
	isServerMessage()
}

// Init carries the per-session key material: the RSA credential modulus
// (scrambled on encode) and the Blowfish traffic key the client must switch
// to after this packet.
type Init struct {
	SessionID int32
	Modulus   [constants.RSAModulusSize]byte
	CryptKey  [constants.BlowfishKeySize]byte
}

// GGAuth answers the client's AuthGameGuard request.
type GGAuth struct {
	Result GGAuthResult
}

func (Init) isServerMessage()   {}
func (GGAuth) isServerMessage() {}

// ClientMessage is a packet received from the client.
type ClientMessage interface {
	isClientMessage()
}

// AuthGameGuard is the GameGuard challenge request. It carries no payload
// that this stage consumes; the opcode alone identifies it.
type AuthGameGuard struct{}

func (AuthGameGuard) isClientMessage() {}

// Encode writes the wire encoding of msg.
func Encode(w *packet.Writer, msg ServerMessage) error {
	switch m := msg.(type) {
	case Init:
		scrambled := crypto.ScrambleModulus(m.Modulus[:])
		if err := w.WriteByte(OpcodeInit); err != nil {
			return err
		}
		if err := w.WriteInt(m.SessionID); err != nil {
			return err
		}
		if err := w.WriteInt(constants.ProtocolRevisionInit); err != nil {
			return err
		}
		if err := w.WriteBytes(scrambled); err != nil {
			return err
		}
		if err := w.Skip(16); err != nil {
			return err
		}
		return w.WriteBytes(m.CryptKey[:])

	case GGAuth:
		if err := w.WriteByte(OpcodeGGAuth); err != nil {
			return err
		}
		if err := w.WriteInt(int32(m.Result)); err != nil {
			return err
		}
		return w.Skip(16)

	default:
		return fmt.Errorf("unknown server message %T", msg)
	}
}

// Decode reads one client message. An unrecognized opcode yields a
// MalformedPacketError carrying the offending byte.
func Decode(r *packet.Reader) (ClientMessage, error) {
	opcode, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading opcode: %w", err)
	}

	switch opcode {
	case OpcodeAuthGameGuard:
		return AuthGameGuard{}, nil
	default:
		return nil, &MalformedPacketError{Opcode: opcode}
	}
}
