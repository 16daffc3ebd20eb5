package constants

// Login (auth) server protocol constants.
//
// These values come from the Chronicle: Interlude client and must match it
// bit-for-bit: the unmodified client rejects anything else.

// Protocol constants
const (
	// ProtocolRevisionInit is the protocol revision field in the Init packet
	ProtocolRevisionInit = 0x0000C621

	// SessionIDSentinel is the fixed session id sent at this stage of the handshake
	SessionIDSentinel = 0x1eadbeef
)

// RSA constants
const (
	// RSAKeyBits is the RSA key size in bits for the credential keypair
	RSAKeyBits = 1024

	// RSAModulusSize is the RSA-1024 modulus size in bytes
	RSAModulusSize = 128
)

// Blowfish constants
const (
	// BlowfishKeySize is the Blowfish key size in bytes (128-bit)
	BlowfishKeySize = 16

	// BlowfishBlockSize is the Blowfish block size in bytes (64-bit)
	BlowfishBlockSize = 8
)

// Packet structure constants
const (
	// PacketHeaderSize is the packet length header size (2 bytes, little-endian)
	PacketHeaderSize = 2

	// PacketBufferSize is the fixed capacity of the per-connection scratch
	// buffers; header + body never exceed it
	PacketBufferSize = 1024

	// PacketBlockSize is the 4-byte block used by the checksum field and the
	// running-key scramble
	PacketBlockSize = 4

	// PacketChecksumSize is the checksum field size in bytes
	PacketChecksumSize = 4
)
