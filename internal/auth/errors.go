package auth

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned when a packet, after padding, would reach the
// fixed scratch buffer capacity. The send fails before any bytes are
// written and before the crypto state is touched.
var ErrOverflow = errors.New("packet exceeds buffer capacity")

// MalformedPacketError reports an inbound packet with an opcode that is not
// recognized at this stage of the handshake.
type MalformedPacketError struct {
	Opcode byte
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("invalid packet id (0x%02x)", e.Opcode)
}
