package packet

import (
	"encoding/binary"
	"fmt"
)

// Writer предоставляет методы для записи данных пакета в фиксированный буфер.
// Использует Little-Endian byte order для всех многобайтовых значений.
type Writer struct {
	buf []byte
	pos int
}

// NewWriter создаёт новый Writer поверх буфера buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{
		buf: buf,
		pos: 0,
	}
}

// WriteByte записывает 1 байт.
func (w *Writer) WriteByte(b byte) error {
	if w.pos >= len(w.buf) {
		return fmt.Errorf("WriteByte: buffer overflow (pos=%d, len=%d)", w.pos, len(w.buf))
	}
	w.buf[w.pos] = b
	w.pos++
	return nil
}

// WriteShort записывает int16 (2 байта, LE).
func (w *Writer) WriteShort(v int16) error {
	if w.pos+2 > len(w.buf) {
		return fmt.Errorf("WriteShort: buffer overflow (pos=%d, len=%d)", w.pos, len(w.buf))
	}
	binary.LittleEndian.PutUint16(w.buf[w.pos:], uint16(v))
	w.pos += 2
	return nil
}

// WriteInt записывает int32 (4 байта, LE).
func (w *Writer) WriteInt(v int32) error {
	if w.pos+4 > len(w.buf) {
		return fmt.Errorf("WriteInt: buffer overflow (pos=%d, len=%d)", w.pos, len(w.buf))
	}
	binary.LittleEndian.PutUint32(w.buf[w.pos:], uint32(v))
	w.pos += 4
	return nil
}

// WriteBytes записывает срез байт как есть.
func (w *Writer) WriteBytes(b []byte) error {
	if w.pos+len(b) > len(w.buf) {
		return fmt.Errorf("WriteBytes: buffer overflow (pos=%d, need=%d, len=%d)", w.pos, len(b), len(w.buf))
	}
	copy(w.buf[w.pos:], b)
	w.pos += len(b)
	return nil
}

// Skip резервирует n байт, заполняя их нулями.
func (w *Writer) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("Skip: negative count %d", n)
	}
	if w.pos+n > len(w.buf) {
		return fmt.Errorf("Skip: buffer overflow (pos=%d, need=%d, len=%d)", w.pos, n, len(w.buf))
	}
	clear(w.buf[w.pos : w.pos+n])
	w.pos += n
	return nil
}

// Position возвращает текущую позицию записи (число записанных байт).
func (w *Writer) Position() int {
	return w.pos
}
