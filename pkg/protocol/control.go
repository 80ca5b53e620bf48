package protocol

import "fmt"

// ControlType identifies the type of control message.
type ControlType uint8

const (
	ControlPing ControlType = 0x01
	ControlPong ControlType = 0x02

	// ControlResync asks the server for a snapshot of the whole tree.
	ControlResync ControlType = 0x10

	ControlClose ControlType = 0x20
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlResync:
		return "Resync"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Control is a control message. Timestamp is set on Ping and echoed on
// Pong, in Unix milliseconds.
type Control struct {
	Type      ControlType
	Timestamp uint64
}

// EncodeControl encodes a control payload.
func EncodeControl(c *Control) []byte {
	e := NewEncoder()
	e.WriteByte(byte(c.Type))
	if c.Type == ControlPing || c.Type == ControlPong {
		e.WriteUvarint(c.Timestamp)
	}
	return e.Bytes()
}

// DecodeControl decodes a control payload.
func DecodeControl(data []byte) (*Control, error) {
	d := NewDecoder(data)
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c := &Control{Type: ControlType(t)}
	switch c.Type {
	case ControlPing, ControlPong:
		if c.Timestamp, err = d.ReadUvarint(); err != nil {
			return nil, err
		}
	case ControlResync, ControlClose:
	default:
		return nil, fmt.Errorf("protocol: unknown control type %#x", t)
	}
	return c, d.done()
}
