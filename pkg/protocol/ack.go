package protocol

// Ack is sent by the client after applying a patches frame. The server
// uses it to detect lagging clients.
type Ack struct {
	LastSeq uint64
}

// EncodeAck encodes an Ack payload.
func EncodeAck(ack *Ack) []byte {
	e := NewEncoder()
	e.WriteUvarint(ack.LastSeq)
	return e.Bytes()
}

// DecodeAck decodes an Ack payload.
func DecodeAck(data []byte) (*Ack, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return &Ack{LastSeq: seq}, d.done()
}
