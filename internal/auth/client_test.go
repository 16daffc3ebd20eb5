package auth

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goph3rx/mmo-go/internal/constants"
)

// mockSender записывает отправленные сообщения для проверок в unit тестах.
type mockSender struct {
	SendFunc func(msg ServerMessage) error

	sent []ServerMessage
}

func (m *mockSender) Send(msg ServerMessage) error {
	m.sent = append(m.sent, msg)
	if m.SendFunc != nil {
		return m.SendFunc(msg)
	}
	return nil
}

func TestClientInit(t *testing.T) {
	sender := &mockSender{}
	client, err := NewClient(sender)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if client.State() != StateCreated {
		t.Errorf("state = %v, expected %v", client.State(), StateCreated)
	}

	if err := client.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, expected 1", len(sender.sent))
	}
	init, ok := sender.sent[0].(Init)
	if !ok {
		t.Fatalf("sent %T, expected Init", sender.sent[0])
	}
	if init.SessionID != constants.SessionIDSentinel {
		t.Errorf("session id = 0x%08x, expected 0x%08x", init.SessionID, int32(constants.SessionIDSentinel))
	}
	var zeroModulus [constants.RSAModulusSize]byte
	if init.Modulus == zeroModulus {
		t.Error("init carries a zero modulus")
	}
	var zeroKey [constants.BlowfishKeySize]byte
	if init.CryptKey == zeroKey {
		t.Error("init carries a zero traffic key")
	}

	if client.State() != StateAwaitingGG {
		t.Errorf("state = %v, expected %v", client.State(), StateAwaitingGG)
	}
}

func TestClientInitFail(t *testing.T) {
	sender := &mockSender{
		SendFunc: func(ServerMessage) error { return errors.New("broken pipe") },
	}
	client, err := NewClient(sender)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if err := client.Init(); err == nil {
		t.Fatal("init did not fail on a broken sender")
	}
	if client.State() != StateCreated {
		t.Errorf("state = %v, expected %v", client.State(), StateCreated)
	}
}

func TestClientKeyMaterialIsPerSession(t *testing.T) {
	first := &mockSender{}
	second := &mockSender{}

	clientA, err := NewClient(first)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	clientB, err := NewClient(second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if err := clientA.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := clientB.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	initA := first.sent[0].(Init)
	initB := second.sent[0].(Init)
	if bytes.Equal(initA.CryptKey[:], initB.CryptKey[:]) {
		t.Error("two sessions share a traffic key")
	}
	if bytes.Equal(initA.Modulus[:], initB.Modulus[:]) {
		t.Error("two sessions share a credential modulus")
	}
}

func TestClientHandleAuthGameGuard(t *testing.T) {
	sender := &mockSender{}
	client, err := NewClient(sender)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := client.Handle(AuthGameGuard{}); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, expected 2", len(sender.sent))
	}
	gg, ok := sender.sent[1].(GGAuth)
	if !ok {
		t.Fatalf("sent %T, expected GGAuth", sender.sent[1])
	}
	if gg.Result != GGAuthSkip {
		t.Errorf("result = %d, expected %d", gg.Result, GGAuthSkip)
	}
	if client.State() != StateGGAcknowledged {
		t.Errorf("state = %v, expected %v", client.State(), StateGGAcknowledged)
	}
}

func TestClientHandleWrongState(t *testing.T) {
	sender := &mockSender{}
	client, err := NewClient(sender)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	// AuthGameGuard до Init — игнорируется, соединение живёт дальше
	if err := client.Handle(AuthGameGuard{}); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages, expected 0", len(sender.sent))
	}
	if client.State() != StateCreated {
		t.Errorf("state = %v, expected %v", client.State(), StateCreated)
	}
}

func TestClientHandleRepeatedAuthGameGuard(t *testing.T) {
	sender := &mockSender{}
	client, err := NewClient(sender)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := client.Handle(AuthGameGuard{}); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	// Повторный запрос после подтверждения не отправляет ничего
	if err := client.Handle(AuthGameGuard{}); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Errorf("sent %d messages, expected 2", len(sender.sent))
	}
	if client.State() != StateGGAcknowledged {
		t.Errorf("state = %v, expected %v", client.State(), StateGGAcknowledged)
	}
}

func TestClientSendFailOnGGAuth(t *testing.T) {
	fail := false
	sender := &mockSender{
		SendFunc: func(ServerMessage) error {
			if fail {
				return errors.New("broken pipe")
			}
			return nil
		},
	}
	client, err := NewClient(sender)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	fail = true
	if err := client.Handle(AuthGameGuard{}); err == nil {
		t.Fatal("handle did not fail on a broken sender")
	}
	if client.State() != StateAwaitingGG {
		t.Errorf("state = %v, expected %v", client.State(), StateAwaitingGG)
	}
}
