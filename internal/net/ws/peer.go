// Package ws carries the peer wire protocol over websocket connections.
package ws

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"frameloop/netcode/internal/net/intake"
	"frameloop/netcode/internal/net/proto"
	"frameloop/netcode/internal/telemetry"
)

// Metric keys emitted by peer connections.
const (
	MetricInputsReceived = "ws_inputs_received"
	MetricInputsDropped  = "ws_inputs_dropped"
	MetricInputsRejected = "ws_inputs_rejected"
	MetricInputsSent     = "ws_inputs_sent"
)

const defaultInboundBuffer = 256

// ErrPeerClosed reports a send on a connection that is already gone.
var ErrPeerClosed = errors.New("ws: peer closed")

// PeerConfig carries the session parameters and telemetry seams a peer
// connection operates with.
type PeerConfig struct {
	Intake        intake.Context
	Logger        telemetry.Logger
	Metrics       telemetry.Metrics
	InboundBuffer int
}

// Peer is one established connection to a remote player. Validated inputs
// arrive on Inbound; the read pump drops rather than blocks when the
// consumer falls behind.
type Peer struct {
	conn    *websocket.Conn
	cfg     PeerConfig
	inbound chan intake.RemoteInput

	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}
}

func newPeer(conn *websocket.Conn, cfg PeerConfig) *Peer {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NopMetrics{}
	}
	buffer := cfg.InboundBuffer
	if buffer <= 0 {
		buffer = defaultInboundBuffer
	}
	p := &Peer{
		conn:    conn,
		cfg:     cfg,
		inbound: make(chan intake.RemoteInput, buffer),
		done:    make(chan struct{}),
	}
	go p.readPump()
	return p
}

// Inbound exposes the validated remote inputs read from the connection.
// The channel closes when the connection ends.
func (p *Peer) Inbound() <-chan intake.RemoteInput {
	return p.inbound
}

// Done closes when the read pump has exited.
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

// SendInput broadcasts one confirmed local input to the remote peer.
func (p *Peer) SendInput(handle int, frame int32, input []byte) error {
	return p.write(proto.Input(handle, frame, input), MetricInputsSent)
}

// SendHeartbeat sends a keepalive stamped with the local clock.
func (p *Peer) SendHeartbeat() error {
	return p.write(proto.Heartbeat(time.Now().UnixMilli()), "")
}

// Close sends an orderly bye for the given handle and tears the
// connection down.
func (p *Peer) Close(handle int) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.writeMu.Lock()
	p.conn.WriteJSON(proto.Bye(handle))
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	p.conn.WriteMessage(websocket.CloseMessage, message)
	p.writeMu.Unlock()
	return p.conn.Close()
}

func (p *Peer) write(msg proto.Message, metric string) error {
	if p.closed.Load() {
		return ErrPeerClosed
	}
	data, err := proto.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	p.writeMu.Lock()
	err = p.conn.WriteMessage(websocket.TextMessage, data)
	p.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	if metric != "" {
		p.cfg.Metrics.Add(metric, 1)
	}
	return nil
}

func (p *Peer) readPump() {
	defer func() {
		p.closed.Store(true)
		p.conn.Close()
		close(p.inbound)
		close(p.done)
	}()

	for {
		_, payload, err := p.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := proto.Decode(payload)
		if err != nil {
			p.cfg.Logger.Printf("discarding malformed peer message: %v", err)
			continue
		}

		switch msg.Type {
		case proto.TypeInput:
			staged, ok, reason := intake.StageInput(p.cfg.Intake, msg)
			if !ok {
				p.cfg.Metrics.Add(MetricInputsRejected, 1)
				p.cfg.Logger.Printf("rejected remote input: %s", reason)
				continue
			}
			select {
			case p.inbound <- staged:
				p.cfg.Metrics.Add(MetricInputsReceived, 1)
			default:
				p.cfg.Metrics.Add(MetricInputsDropped, 1)
			}
		case proto.TypeHeartbeat:
			// Keepalive only; the read deadline is the liveness signal.
		case proto.TypeBye:
			return
		default:
			p.cfg.Logger.Printf("unexpected peer message type %q", msg.Type)
		}
	}
}
