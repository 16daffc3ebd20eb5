package packet

import (
	"encoding/hex"
	"testing"
)

const testBufferSize = 1024

func TestWriteByte(t *testing.T) {
	buf := make([]byte, testBufferSize)
	w := NewWriter(buf)

	if err := w.WriteByte(0x7b); err != nil {
		t.Fatalf("WriteByte failed: %v", err)
	}

	if w.Position() != 1 {
		t.Errorf("position = %d, expected 1", w.Position())
	}
	if got := hex.EncodeToString(buf[:w.Position()]); got != "7b" {
		t.Errorf("written = %s, expected 7b", got)
	}
}

func TestWriteShort(t *testing.T) {
	buf := make([]byte, testBufferSize)
	w := NewWriter(buf)

	if err := w.WriteShort(0x105c); err != nil {
		t.Fatalf("WriteShort failed: %v", err)
	}

	if w.Position() != 2 {
		t.Errorf("position = %d, expected 2", w.Position())
	}
	if got := hex.EncodeToString(buf[:w.Position()]); got != "5c10" {
		t.Errorf("written = %s, expected 5c10", got)
	}
}

func TestWriteInt(t *testing.T) {
	buf := make([]byte, testBufferSize)
	w := NewWriter(buf)

	if err := w.WriteInt(0x105c6a7b); err != nil {
		t.Fatalf("WriteInt failed: %v", err)
	}

	if w.Position() != 4 {
		t.Errorf("position = %d, expected 4", w.Position())
	}
	if got := hex.EncodeToString(buf[:w.Position()]); got != "7b6a5c10" {
		t.Errorf("written = %s, expected 7b6a5c10", got)
	}
}

func TestWriteBytes(t *testing.T) {
	buf := make([]byte, testBufferSize)
	w := NewWriter(buf)

	if err := w.WriteBytes([]byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}

	if w.Position() != 3 {
		t.Errorf("position = %d, expected 3", w.Position())
	}
	if got := hex.EncodeToString(buf[:w.Position()]); got != "010203" {
		t.Errorf("written = %s, expected 010203", got)
	}
}

func TestWriteSkipZeroes(t *testing.T) {
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = 0xff
	}
	w := NewWriter(buf)

	if err := w.Skip(4); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}

	if w.Position() != 4 {
		t.Errorf("position = %d, expected 4", w.Position())
	}
	if got := hex.EncodeToString(buf); got != "00000000ffffffff" {
		t.Errorf("buffer = %s, expected 00000000ffffffff", got)
	}
}

func TestWriteOverflow(t *testing.T) {
	buf := make([]byte, 2)
	w := NewWriter(buf)

	if err := w.WriteInt(1); err == nil {
		t.Error("WriteInt did not fail on a full buffer")
	}
	if err := w.WriteBytes([]byte{1, 2, 3}); err == nil {
		t.Error("WriteBytes did not fail on a full buffer")
	}
	if w.Position() != 0 {
		t.Errorf("position advanced to %d on failed writes", w.Position())
	}
}
