package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"frameloop/netcode/internal/net/proto"
	"frameloop/netcode/internal/telemetry"
)

// HandlerConfig carries the accept-side session parameters.
type HandlerConfig struct {
	Peer PeerConfig

	// AcceptHandle reports whether a joining handle is valid and still
	// unclaimed.
	AcceptHandle func(int) bool

	// OnPeer receives each established connection together with the
	// handle it joined as.
	OnPeer func(handle int, peer *Peer)

	Logger telemetry.Logger
}

// Handler upgrades HTTP requests into peer connections and runs the join
// handshake.
type Handler struct {
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket accept handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	return &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle implements the join handshake: the peer's first message must be a
// join carrying a free handle, answered with a joinAck.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Printf("upgrade failed: %v", err)
		return
	}

	_, payload, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return
	}
	msg, err := proto.Decode(payload)
	if err != nil || msg.Type != proto.TypeJoin {
		h.refuse(conn, "expected join")
		return
	}
	if h.cfg.AcceptHandle != nil && !h.cfg.AcceptHandle(msg.Handle) {
		h.refuse(conn, "handle unavailable")
		return
	}

	ack := proto.JoinAck(proto.NewSessionID(), msg.Handle, h.cfg.Peer.Intake.NumPlayers, h.cfg.Peer.Intake.InputSize)
	data, err := proto.Encode(ack)
	if err != nil {
		conn.Close()
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		conn.Close()
		return
	}

	peer := newPeer(conn, h.cfg.Peer)
	if h.cfg.OnPeer != nil {
		h.cfg.OnPeer(msg.Handle, peer)
	}
}

func (h *Handler) refuse(conn *websocket.Conn, reason string) {
	message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	conn.WriteMessage(websocket.CloseMessage, message)
	conn.Close()
}
