package ws

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frameloop/netcode/internal/net/intake"
	"frameloop/netcode/internal/telemetry"
)

func loopback(t *testing.T, hostCfg PeerConfig) (host, client *Peer) {
	t.Helper()

	peers := make(chan *Peer, 1)
	handler := NewHandler(HandlerConfig{
		Peer:         hostCfg,
		AcceptHandle: func(handle int) bool { return handle == 1 },
		OnPeer: func(handle int, peer *Peer) {
			peers <- peer
		},
	})
	server := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(server.Close)

	url := strings.Replace(server.URL, "http", "ws", 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, ack, err := Dial(ctx, url, 1, PeerConfig{
		Intake: intake.Context{NumPlayers: 2, InputSize: 4},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if ack.NumPlayers != 2 || ack.InputSize != 4 {
		t.Fatalf("unexpected handshake parameters %+v", ack)
	}
	if ack.SessionID == "" {
		t.Fatalf("expected a session id in the joinAck")
	}

	select {
	case host = <-peers:
	case <-time.After(2 * time.Second):
		t.Fatalf("host never saw the peer")
	}
	t.Cleanup(func() {
		client.Close(1)
		host.Close(0)
	})
	return host, client
}

func TestPeerDeliversValidatedInput(t *testing.T) {
	metrics := telemetry.NewMapMetrics()
	host, client := loopback(t, PeerConfig{
		Intake: intake.Context{
			NumPlayers:   2,
			InputSize:    4,
			RemoteHandle: func(handle int) bool { return handle == 1 },
		},
		Metrics: metrics,
	})

	if err := client.SendInput(1, 3, []byte{9, 0, 0, 0}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case staged := <-host.Inbound():
		if staged.Handle != 1 || staged.Frame != 3 {
			t.Fatalf("unexpected input %+v", staged)
		}
		if !bytes.Equal(staged.Bytes, []byte{9, 0, 0, 0}) {
			t.Fatalf("unexpected payload %v", staged.Bytes)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("input never arrived")
	}
	if got := metrics.Value(MetricInputsReceived); got != 1 {
		t.Fatalf("expected 1 received input, got %d", got)
	}
}

func TestPeerRejectsInvalidInput(t *testing.T) {
	metrics := telemetry.NewMapMetrics()
	host, client := loopback(t, PeerConfig{
		Intake: intake.Context{
			NumPlayers:   2,
			InputSize:    4,
			RemoteHandle: func(handle int) bool { return handle == 1 },
		},
		Metrics: metrics,
	})

	// Wrong payload size, then a valid input to order the assertion after
	// the reject was processed.
	if err := client.SendInput(1, 0, []byte{9}); err != nil {
		t.Fatalf("send short: %v", err)
	}
	if err := client.SendInput(1, 0, []byte{9, 0, 0, 0}); err != nil {
		t.Fatalf("send valid: %v", err)
	}

	select {
	case <-host.Inbound():
	case <-time.After(2 * time.Second):
		t.Fatalf("valid input never arrived")
	}
	if got := metrics.Value(MetricInputsRejected); got != 1 {
		t.Fatalf("expected 1 rejected input, got %d", got)
	}
}

func TestPeerCloseEndsInbound(t *testing.T) {
	host, client := loopback(t, PeerConfig{
		Intake: intake.Context{NumPlayers: 2, InputSize: 4},
	})

	if err := client.Close(1); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case _, open := <-host.Inbound():
		if open {
			t.Fatalf("expected inbound channel to close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("inbound channel never closed")
	}

	if err := client.SendInput(1, 0, []byte{0, 0, 0, 0}); err == nil {
		t.Fatalf("expected send after close to fail")
	}
}

func TestDialRejectsWrongFirstMessage(t *testing.T) {
	handler := NewHandler(HandlerConfig{
		Peer:         PeerConfig{Intake: intake.Context{NumPlayers: 2, InputSize: 4}},
		AcceptHandle: func(int) bool { return false },
	})
	server := httptest.NewServer(http.HandlerFunc(handler.Handle))
	defer server.Close()

	url := strings.Replace(server.URL, "http", "ws", 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, _, err := Dial(ctx, url, 1, PeerConfig{}); err == nil {
		t.Fatalf("expected refused handshake to fail the dial")
	}
}
