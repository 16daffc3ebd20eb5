package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/goph3rx/mmo-go/internal/config"
	"github.com/goph3rx/mmo-go/internal/crypto"
)

// Server accepts client connections and drives the handshake for each.
type Server struct {
	cfg config.AuthServer

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a new auth server.
func NewServer(cfg config.AuthServer) *Server {
	return &Server{cfg: cfg}
}

// Addr возвращает адрес, на котором слушает сервер.
// Возвращает nil если сервер ещё не запущен.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close закрывает listener и останавливает сервер.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run begins listening for client connections on cfg.BindAddress:cfg.Port.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve принимает готовый listener и запускает accept loop.
// Используется для тестирования с произвольным listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		slog.Info("auth server started", "address", ln.Addr())
		acceptLoop(ctx, &wg, s, ln)
	})

	wg.Wait()

	return nil
}

func acceptLoop(
	ctx context.Context,
	wg *sync.WaitGroup,
	srv *Server,
	ln net.Listener,
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				slog.Error("Failed to accept new connection", "error", err)
				continue
			}
			wg.Go(func() {
				handleConnection(ctx, srv, conn)
			})
		}
	}
}

func handleConnection(ctx context.Context, srv *Server, conn net.Conn) {
	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		slog.Error("Failed to split host port", "connection", conn.RemoteAddr(), "error", err)
		return
	}

	slog.Info("new connection", "remote", host)

	// Every session starts under the static key; the sender rotates to the
	// session traffic key while encrypting the Init packet.
	crypt, err := crypto.NewCrypt(crypto.StaticBlowfishKey)
	if err != nil {
		slog.Error("failed to create session crypt", "err", err, "remote", host)
		return
	}

	sender := NewClientSender(bufio.NewWriter(conn), crypt)
	defer sender.Release()
	receiver := NewReceiver(conn, crypt)
	defer receiver.Release()

	client, err := NewClient(sender)
	if err != nil {
		slog.Error("failed to create client", "err", err, "remote", host)
		return
	}

	if err := client.Init(); err != nil {
		slog.Error("failed to send Init packet", "err", err, "remote", host)
		return
	}
	slog.Debug("Init packet sent", "remote", host)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if ok := handlePacket(srv, client, receiver, conn, host); !ok {
				return
			}
		}
	}
}

// handlePacket reads and handles one client packet. Returns false when the
// connection should be closed.
func handlePacket(
	srv *Server,
	client *Client,
	receiver *Receiver,
	conn net.Conn,
	host string,
) bool {
	if t := srv.cfg.ReadTimeout(); t > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(t)); err != nil {
			slog.Error("failed to set read deadline", "err", err, "remote", host)
			return false
		}
	}

	msg, err := receiver.Receive()
	if err != nil {
		var malformed *MalformedPacketError
		switch {
		case errors.Is(err, io.EOF):
			slog.Info("connection closed", "remote", host)
		case errors.As(err, &malformed):
			slog.Warn("malformed packet", "opcode", fmt.Sprintf("0x%02X", malformed.Opcode), "remote", host)
		default:
			slog.Error("failed to read packet", "err", err, "remote", host)
		}
		return false
	}

	if err := client.Handle(msg); err != nil {
		slog.Error("failed to handle packet", "err", err, "remote", host)
		return false
	}
	return true
}
