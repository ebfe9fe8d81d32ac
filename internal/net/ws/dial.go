package ws

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"frameloop/netcode/internal/net/proto"
)

// Dial connects to a remote host, joins as the given handle, and returns
// the established peer together with the host's handshake response.
func Dial(ctx context.Context, url string, handle int, cfg PeerConfig) (*Peer, proto.Message, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, proto.Message{}, fmt.Errorf("dial %q: %w", url, err)
	}

	join, err := proto.Encode(proto.Join(handle))
	if err != nil {
		conn.Close()
		return nil, proto.Message{}, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		conn.Close()
		return nil, proto.Message{}, fmt.Errorf("send join: %w", err)
	}

	_, payload, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, proto.Message{}, fmt.Errorf("await joinAck: %w", err)
	}
	ack, err := proto.Decode(payload)
	if err != nil {
		conn.Close()
		return nil, proto.Message{}, fmt.Errorf("decode joinAck: %w", err)
	}
	if ack.Type != proto.TypeJoinAck {
		conn.Close()
		return nil, proto.Message{}, fmt.Errorf("expected joinAck, got %q", ack.Type)
	}
	if ack.Handle != handle {
		conn.Close()
		return nil, proto.Message{}, fmt.Errorf("host assigned handle %d, requested %d", ack.Handle, handle)
	}

	return newPeer(conn, cfg), ack, nil
}
