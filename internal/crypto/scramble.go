package crypto

import (
	"encoding/binary"
	"fmt"
)

// ScrambleModulus applies the 4-step XOR/swap obfuscation to the RSA modulus
// before it is placed on the wire. The unmodified client reverses the exact
// same steps, so their order is load-bearing.
// Input must be exactly 128 bytes; the result is a new slice.
func ScrambleModulus(modulus []byte) []byte {
	if len(modulus) != 128 {
		panic(fmt.Sprintf("ScrambleModulus: expected 128 bytes, got %d", len(modulus)))
	}

	scrambled := make([]byte, 128)
	copy(scrambled, modulus)

	// Step 1: swap bytes 0x00-0x03 with 0x4D-0x50
	for i := range 4 {
		scrambled[i], scrambled[0x4D+i] = scrambled[0x4D+i], scrambled[i]
	}

	// Step 2: XOR first 0x40 bytes with last 0x40 bytes
	for i := range 0x40 {
		scrambled[i] ^= scrambled[0x40+i]
	}

	// Step 3: XOR bytes 0x0D-0x10 with bytes 0x34-0x37
	for i := range 4 {
		scrambled[0x0D+i] ^= scrambled[0x34+i]
	}

	// Step 4: XOR last 0x40 bytes with first 0x40 bytes
	for i := range 0x40 {
		scrambled[0x40+i] ^= scrambled[i]
	}

	return scrambled
}

// UnscrambleModulus reverses ScrambleModulus.
// Input must be exactly 128 bytes; the result is a new slice.
func UnscrambleModulus(scrambled []byte) []byte {
	if len(scrambled) != 128 {
		panic(fmt.Sprintf("UnscrambleModulus: expected 128 bytes, got %d", len(scrambled)))
	}

	modulus := make([]byte, 128)
	copy(modulus, scrambled)

	for i := range 0x40 {
		modulus[0x40+i] ^= modulus[i]
	}
	for i := range 4 {
		modulus[0x0D+i] ^= modulus[0x34+i]
	}
	for i := range 0x40 {
		modulus[i] ^= modulus[0x40+i]
	}
	for i := range 4 {
		modulus[i], modulus[0x4D+i] = modulus[0x4D+i], modulus[i]
	}

	return modulus
}

// EncXORPass applies the running-key scramble used for the very first packet
// of a session. Each 4-byte LE block in [4, plainSize) is folded into an
// accumulating key and XORed with it; the final key value is written as a
// trailing block at offset plainSize. The first block is left untouched.
func EncXORPass(data []byte, plainSize int, key int32) {
	ecx := uint32(key)
	for i := 4; i < plainSize; i += 4 {
		edx := binary.LittleEndian.Uint32(data[i:])
		ecx += edx
		edx ^= ecx
		binary.LittleEndian.PutUint32(data[i:], edx)
	}
	binary.LittleEndian.PutUint32(data[plainSize:], ecx)
}

// DecXORPass reverses EncXORPass. plainSize is the offset of the trailing
// key block, i.e. the same value that was passed to EncXORPass.
func DecXORPass(data []byte, plainSize int) {
	ecx := binary.LittleEndian.Uint32(data[plainSize:])
	for i := plainSize - 4; i >= 4; i -= 4 {
		edx := binary.LittleEndian.Uint32(data[i:])
		edx ^= ecx
		binary.LittleEndian.PutUint32(data[i:], edx)
		ecx -= edx
	}
}

// BlowfishCompat swaps each 4-byte block to the opposite byte order
// (0↔3, 1↔2). The client feeds Blowfish little-endian words while the
// reference cipher is big-endian; applying this around every cipher call
// compensates. Self-inverse. Trailing bytes past the last full block are
// left as is.
func BlowfishCompat(data []byte) {
	for i := 0; i+4 <= len(data); i += 4 {
		data[i], data[i+3] = data[i+3], data[i]
		data[i+1], data[i+2] = data[i+2], data[i+1]
	}
}
