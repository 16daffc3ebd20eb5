package testutil

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/goph3rx/mmo-go/internal/auth"
	"github.com/goph3rx/mmo-go/internal/constants"
	"github.com/goph3rx/mmo-go/internal/crypto"
	"github.com/goph3rx/mmo-go/internal/packet"
)

// initPlainSize — смещение trailing-блока running-key scramble в Init
// пакете: 169 байт тела, паддинг до 172, плюс 4 байта checksum.
const initPlainSize = 176

// AuthClient упрощает написание тестов для auth сервера: подключается,
// читает Init пакет, управляет шифрованием и обменом GameGuard пакетами.
type AuthClient struct {
	t        testing.TB
	conn     net.Conn
	crypt    *crypto.Crypt
	readBuf  []byte
	writeBuf []byte

	// Данные из Init пакета
	sessionID       int32
	protocolVersion int32
	rsaModulus      []byte // unscrambled modulus (128 bytes)
	cryptKey        []byte

	timeout time.Duration
}

// NewAuthClient создаёт AuthClient и подключается к auth серверу.
// Автоматически читает Init пакет и переключается на traffic key.
// Использует t.Cleanup() для автоматического закрытия соединения.
func NewAuthClient(t testing.TB, addr string) (*AuthClient, error) {
	t.Helper()

	// Retry dial: сервер может ещё не успеть начать принимать соединения
	var conn net.Conn
	var err error
	for attempt := range 10 {
		conn, err = net.DialTimeout("tcp", addr, 5*time.Second)
		if err == nil {
			break
		}
		if attempt < 9 {
			base := time.Duration(20<<min(attempt, 6)) * time.Millisecond
			jitter := time.Duration(rand.IntN(int(base/2)+1)) * time.Millisecond
			time.Sleep(base + jitter)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("dial auth server: %w", err)
	}

	client := &AuthClient{
		t:        t,
		conn:     conn,
		readBuf:  make([]byte, constants.PacketBufferSize),
		writeBuf: make([]byte, constants.PacketBufferSize),
		timeout:  5 * time.Second,
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	if err := client.ReadInitPacket(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read init packet: %w", err)
	}

	return client, nil
}

// ReadInitPacket читает Init пакет (opcode 0x00) от сервера.
// Расшифровывает его static ключом, снимает running-key scramble и
// извлекает sessionID, RSA modulus и traffic key. После этого все
// последующие пакеты идут через traffic key.
func (c *AuthClient) ReadInitPacket() error {
	c.t.Helper()

	payload, err := c.readFrame()
	if err != nil {
		return err
	}

	// Init пакет зашифрован static ключом; compat-шим применяется вокруг
	// каждого вызова шифра.
	staticCrypt, err := crypto.NewCrypt(crypto.StaticBlowfishKey)
	if err != nil {
		return fmt.Errorf("create static crypt: %w", err)
	}
	crypto.BlowfishCompat(payload)
	if err := staticCrypt.Decrypt(payload); err != nil {
		return fmt.Errorf("blowfish decrypt init: %w", err)
	}
	crypto.BlowfishCompat(payload)

	if len(payload) < initPlainSize+constants.PacketBlockSize {
		return fmt.Errorf("init packet too short: %d", len(payload))
	}
	crypto.DecXORPass(payload, initPlainSize)

	r := packet.NewReader(payload)
	opcode, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("read init opcode: %w", err)
	}
	if opcode != auth.OpcodeInit {
		return fmt.Errorf("expected Init opcode 0x00, got 0x%02X", opcode)
	}

	if c.sessionID, err = r.ReadInt(); err != nil {
		return fmt.Errorf("read session id: %w", err)
	}
	if c.protocolVersion, err = r.ReadInt(); err != nil {
		return fmt.Errorf("read protocol version: %w", err)
	}

	scrambled, err := r.ReadBytes(constants.RSAModulusSize)
	if err != nil {
		return fmt.Errorf("read modulus: %w", err)
	}
	c.rsaModulus = crypto.UnscrambleModulus(scrambled)

	if err := r.Skip(16); err != nil {
		return fmt.Errorf("skip reserved: %w", err)
	}
	if c.cryptKey, err = r.ReadBytes(constants.BlowfishKeySize); err != nil {
		return fmt.Errorf("read crypt key: %w", err)
	}

	// Сервер переключился на traffic key сразу после Init
	c.crypt, err = crypto.NewCrypt(c.cryptKey)
	if err != nil {
		return fmt.Errorf("create session crypt: %w", err)
	}
	return nil
}

// SendAuthGameGuard шифрует и отправляет запрос AuthGameGuard (opcode 0x07).
func (c *AuthClient) SendAuthGameGuard() error {
	c.t.Helper()
	return c.SendOpcode(auth.OpcodeAuthGameGuard)
}

// SendOpcode шифрует и отправляет кадр с одним opcode под traffic ключом.
func (c *AuthClient) SendOpcode(opcode byte) error {
	c.t.Helper()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	body := c.writeBuf[constants.PacketHeaderSize:]
	clear(body[:constants.BlowfishBlockSize])
	body[0] = opcode
	size := constants.BlowfishBlockSize

	crypto.BlowfishCompat(body[:size])
	if _, err := c.crypt.Encrypt(body, body[:size], nil); err != nil {
		return fmt.Errorf("encrypt packet: %w", err)
	}
	crypto.BlowfishCompat(body[:size])

	total := constants.PacketHeaderSize + size
	binary.LittleEndian.PutUint16(c.writeBuf[:constants.PacketHeaderSize], uint16(total))
	if _, err := c.conn.Write(c.writeBuf[:total]); err != nil {
		return fmt.Errorf("write packet: %w", err)
	}
	return nil
}

// ReadGGAuth читает и расшифровывает ответ GGAuth (opcode 0x0B).
// Возвращает result code.
func (c *AuthClient) ReadGGAuth() (int32, error) {
	c.t.Helper()

	payload, err := c.readFrame()
	if err != nil {
		return 0, err
	}

	crypto.BlowfishCompat(payload)
	if err := c.crypt.Decrypt(payload); err != nil {
		return 0, fmt.Errorf("decrypt gg auth: %w", err)
	}
	crypto.BlowfishCompat(payload)

	r := packet.NewReader(payload)
	opcode, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("read gg auth opcode: %w", err)
	}
	if opcode != auth.OpcodeGGAuth {
		return 0, fmt.Errorf("expected GGAuth opcode 0x0B, got 0x%02X", opcode)
	}
	result, err := r.ReadInt()
	if err != nil {
		return 0, fmt.Errorf("read gg auth result: %w", err)
	}
	return result, nil
}

// readFrame читает один кадр: 2-байтовый заголовок длины и тело.
func (c *AuthClient) readFrame() ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	var header [constants.PacketHeaderSize]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	if totalLen <= constants.PacketHeaderSize {
		return nil, fmt.Errorf("invalid packet length: %d", totalLen)
	}

	payloadLen := totalLen - constants.PacketHeaderSize
	if payloadLen > len(c.readBuf) {
		return nil, fmt.Errorf("packet too large: %d", payloadLen)
	}

	payload := c.readBuf[:payloadLen]
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

// SessionID возвращает session id из Init пакета.
func (c *AuthClient) SessionID() int32 {
	return c.sessionID
}

// ProtocolVersion возвращает версию протокола из Init пакета.
func (c *AuthClient) ProtocolVersion() int32 {
	return c.protocolVersion
}

// Modulus возвращает расшифрованный (unscrambled) RSA modulus.
func (c *AuthClient) Modulus() []byte {
	return c.rsaModulus
}

// CryptKey возвращает traffic key из Init пакета.
func (c *AuthClient) CryptKey() []byte {
	return c.cryptKey
}

// Close закрывает соединение.
func (c *AuthClient) Close() error {
	return c.conn.Close()
}
