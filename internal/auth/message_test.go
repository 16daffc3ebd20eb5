package auth

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/goph3rx/mmo-go/internal/constants"
	"github.com/goph3rx/mmo-go/internal/packet"
)

const testModulus = "9a277669023723947d0ebdccef967a24c715018df6ce66414fccd0f5bab54124" +
	"b8caac6d7f52f8bbbab7de926b4f0ac4cc84793196e44928774a57737d0e4ee0" +
	"2962952257506e898846e353fa5fee31409a1d32124fb8df53d969dd7aa22286" +
	"6fa85e106f8a07e333d8ded4b10a8300b32d5f47cc5eab14033fa2bc0950b5c9"

const testCryptKey = "0102030405060708090a0b0c0d0e0f10"

// testInitEncoded — полная wire-кодировка Init: tag, session id, версия
// протокола, скремблированный modulus, 16 зарезервированных байт, traffic key.
const testInitEncoded = "00efbeadde21c60000" +
	"768ca46255674d1df5485e9f1556e7b0928f1cbfe481de9e1c15b928c01763a2" +
	"d762f27d10d8ff58896f0046da4589c47fa926765abae23c7475f5cf745efb29" +
	"5fee3140023723947d0ebdccefccc0c6fb15018df6ce66414fccd0f5bab54124" +
	"b8caac6d7f52f8bbbab7de926b4f0ac4cc84793196e44928774a57737d0e4ee0" +
	"00000000000000000000000000000000" +
	testCryptKey

const testGGAuthEncoded = "0b0b00000000000000000000000000000000000000"

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to decode %q: %v", s, err)
	}
	return b
}

func testInitMessage(t *testing.T) Init {
	t.Helper()
	msg := Init{SessionID: -559038737}
	copy(msg.Modulus[:], mustDecode(t, testModulus))
	copy(msg.CryptKey[:], mustDecode(t, testCryptKey))
	return msg
}

func TestEncodeInit(t *testing.T) {
	buf := make([]byte, constants.PacketBufferSize)
	w := packet.NewWriter(buf)

	if err := Encode(w, testInitMessage(t)); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if w.Position() != 1+4+4+128+16+16 {
		t.Errorf("encoded size = %d, expected %d", w.Position(), 1+4+4+128+16+16)
	}
	if got := hex.EncodeToString(buf[:w.Position()]); got != testInitEncoded {
		t.Errorf("encoded init mismatch\n got: %s\nwant: %s", got, testInitEncoded)
	}
}

func TestEncodeGGAuth(t *testing.T) {
	buf := make([]byte, constants.PacketBufferSize)
	w := packet.NewWriter(buf)

	if err := Encode(w, GGAuth{Result: GGAuthSkip}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if w.Position() != 1+4+16 {
		t.Errorf("encoded size = %d, expected %d", w.Position(), 1+4+16)
	}
	if got := hex.EncodeToString(buf[:w.Position()]); got != testGGAuthEncoded {
		t.Errorf("encoded gg auth mismatch\n got: %s\nwant: %s", got, testGGAuthEncoded)
	}
}

func TestDecodeAuthGameGuard(t *testing.T) {
	data := mustDecode(t, "0725c7892400000000000000000000000000000000000000")

	msg, err := Decode(packet.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, ok := msg.(AuthGameGuard); !ok {
		t.Errorf("decoded %T, expected AuthGameGuard", msg)
	}
}

func TestDecodeInvalidOpcode(t *testing.T) {
	_, err := Decode(packet.NewReader([]byte{0xff}))
	if err == nil {
		t.Fatal("decode did not fail on an unknown opcode")
	}

	var malformed *MalformedPacketError
	if !errors.As(err, &malformed) {
		t.Fatalf("error %v is not a MalformedPacketError", err)
	}
	if malformed.Opcode != 0xff {
		t.Errorf("opcode = 0x%02x, expected 0xff", malformed.Opcode)
	}
	if malformed.Error() != "invalid packet id (0xff)" {
		t.Errorf("error message = %q", malformed.Error())
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(packet.NewReader(nil)); err == nil {
		t.Error("decode did not fail on empty data")
	}
}
