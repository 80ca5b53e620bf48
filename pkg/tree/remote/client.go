package remote

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/silk/pkg/protocol"
)

// Client is the receiving end of a session. It keeps a Mirror up to date,
// acknowledges every frame it applies, and asks for a resync when a frame
// cannot be applied.
type Client struct {
	conn      Conn
	mirror    *Mirror
	sessionID string
	resyncs   int
}

// Dial performs the client side of the handshake on conn. A non-empty
// sessionID asks to resume that session.
func Dial(conn Conn, sessionID string) (*Client, error) {
	c := &Client{conn: conn, mirror: NewMirror()}
	ch := &protocol.ClientHello{Version: protocol.CurrentVersion, SessionID: sessionID}
	if err := c.send(protocol.FrameHello, protocol.EncodeClientHello(ch)); err != nil {
		return nil, err
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if f.Type != protocol.FrameHello {
		return nil, fmt.Errorf("%w: expected hello, got %s", ErrHandshake, f.Type)
	}
	sh, err := protocol.DecodeServerHello(f.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if sh.Status != protocol.HelloOK {
		return nil, fmt.Errorf("%w: server answered %s", ErrHandshake, sh.Status)
	}
	c.sessionID = sh.SessionID
	return c, nil
}

// SessionID returns the id the server assigned.
func (c *Client) SessionID() string { return c.sessionID }

// Mirror returns the mirrored tree.
func (c *Client) Mirror() *Mirror { return c.mirror }

// Resyncs returns how many resyncs the client has requested.
func (c *Client) Resyncs() int { return c.resyncs }

// Receive reads and handles one frame and returns it. A fatal error
// message from the server is returned as a *protocol.ErrorMessage.
func (c *Client) Receive() (*protocol.Frame, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, err
	}

	switch f.Type {
	case protocol.FramePatches:
		if err := c.mirror.HandleFrame(f); err != nil {
			if errors.Is(err, ErrSequenceGap) || errors.Is(err, ErrUnknownNode) || errors.Is(err, ErrInvalidPatch) {
				c.resyncs++
				return f, c.send(protocol.FrameControl, protocol.EncodeControl(&protocol.Control{Type: protocol.ControlResync}))
			}
			return f, err
		}
		return f, c.send(protocol.FrameAck, protocol.EncodeAck(&protocol.Ack{LastSeq: c.mirror.LastSeq()}))

	case protocol.FrameError:
		em, err := protocol.DecodeErrorMessage(f.Payload)
		if err != nil {
			return f, err
		}
		if em.Fatal {
			return f, em
		}
	}
	return f, nil
}

// Ping sends a ping carrying the current time.
func (c *Client) Ping() error {
	ping := &protocol.Control{Type: protocol.ControlPing, Timestamp: uint64(time.Now().UnixMilli())}
	return c.send(protocol.FrameControl, protocol.EncodeControl(ping))
}

// Close tells the server the client is leaving and closes the connection.
func (c *Client) Close() error {
	err := c.send(protocol.FrameControl, protocol.EncodeControl(&protocol.Control{Type: protocol.ControlClose}))
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Client) send(ft protocol.FrameType, payload []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, protocol.NewFrame(ft, payload).Encode())
}
