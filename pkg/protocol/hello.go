package protocol

// HelloStatus is the server's answer to a ClientHello.
type HelloStatus uint8

const (
	HelloOK              HelloStatus = 0x00
	HelloVersionMismatch HelloStatus = 0x01
	HelloSessionExpired  HelloStatus = 0x02
	HelloServerBusy      HelloStatus = 0x03
)

// String returns the string representation of the status.
func (hs HelloStatus) String() string {
	switch hs {
	case HelloOK:
		return "OK"
	case HelloVersionMismatch:
		return "VersionMismatch"
	case HelloSessionExpired:
		return "SessionExpired"
	case HelloServerBusy:
		return "ServerBusy"
	default:
		return "Unknown"
	}
}

// Version is a protocol version. Peers with different major versions
// cannot talk to each other.
type Version struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the version spoken by this package.
var CurrentVersion = Version{Major: 1, Minor: 0}

// Compatible reports whether a peer speaking v can talk to this package.
func (v Version) Compatible() bool {
	return v.Major == CurrentVersion.Major
}

// ClientHello is the first frame a client sends.
type ClientHello struct {
	Version Version

	// SessionID resumes an existing session. Empty starts a new one.
	SessionID string

	// LastSeq is the last patch sequence the client applied.
	LastSeq uint64
}

// ServerHello answers a ClientHello. When Status is HelloOK, the next
// patches frame has sequence NextSeq.
type ServerHello struct {
	Status    HelloStatus
	SessionID string
	NextSeq   uint64
}

// EncodeClientHello encodes a ClientHello payload.
func EncodeClientHello(ch *ClientHello) []byte {
	e := NewEncoder()
	e.WriteByte(ch.Version.Major)
	e.WriteByte(ch.Version.Minor)
	e.WriteString(ch.SessionID)
	e.WriteUvarint(ch.LastSeq)
	return e.Bytes()
}

// DecodeClientHello decodes a ClientHello payload.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	d := NewDecoder(data)
	ch := &ClientHello{}
	var err error
	if ch.Version.Major, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if ch.Version.Minor, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if ch.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ch.LastSeq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return ch, d.done()
}

// EncodeServerHello encodes a ServerHello payload.
func EncodeServerHello(sh *ServerHello) []byte {
	e := NewEncoder()
	e.WriteByte(byte(sh.Status))
	e.WriteString(sh.SessionID)
	e.WriteUvarint(sh.NextSeq)
	return e.Bytes()
}

// DecodeServerHello decodes a ServerHello payload.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)
	sh := &ServerHello{}
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	sh.Status = HelloStatus(status)
	if sh.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if sh.NextSeq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return sh, d.done()
}
