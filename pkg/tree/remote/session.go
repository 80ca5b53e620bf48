package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/silk/pkg/protocol"
)

// Session errors.
var (
	ErrSessionClosed = errors.New("remote: session closed")
	ErrQueueFull     = errors.New("remote: task queue full")
	ErrHandshake     = errors.New("remote: handshake failed")
)

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session serves one client. Submitted tasks and paints run on the
// goroutine that calls Run; nothing else touches the backend.
type Session struct {
	id      string
	conn    Conn
	backend *Backend

	logger       *slog.Logger
	metrics      *Metrics
	interval     time.Duration
	writeTimeout time.Duration
	queueSize    int

	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once

	acked uint64
}

// Accept performs the server side of the handshake on conn: it reads a
// ClientHello and answers with a ServerHello. Every accepted session gets
// a fresh id; the first frame Run sends is a snapshot, so a resuming
// client needs nothing else.
func Accept(conn Conn, backend *Backend, opts ...SessionOption) (*Session, error) {
	s := &Session{
		id:           uuid.NewString(),
		conn:         conn,
		backend:      backend,
		interval:     DefaultPaintInterval,
		writeTimeout: DefaultWriteTimeout,
		queueSize:    DefaultQueueSize,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session", s.id)
	s.tasks = make(chan func(), s.queueSize)

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
	ch, err := protocol.DecodeClientHello(f.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	sh := &protocol.ServerHello{Status: protocol.HelloOK, SessionID: s.id, NextSeq: backend.NextSeq()}
	if !ch.Version.Compatible() {
		sh.Status = protocol.HelloVersionMismatch
	}
	if err := s.send(protocol.FrameHello, 0, protocol.EncodeServerHello(sh)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if sh.Status != protocol.HelloOK {
		conn.Close()
		return nil, fmt.Errorf("%w: client version %d.%d", ErrHandshake, ch.Version.Major, ch.Version.Minor)
	}

	s.logger.Info("session accepted", "resume", ch.SessionID, "client_seq", ch.LastSeq)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Backend returns the session's backend. Only use it from submitted tasks.
func (s *Session) Backend() *Backend { return s.backend }

// Submit queues fn to run on the session goroutine. It does not block.
func (s *Session) Submit(fn func()) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.tasks <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run sends the initial snapshot, then runs tasks and paints until ctx is
// done, the client closes the connection, or a write fails. A normal close
// by the client returns nil.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()
	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
		defer s.metrics.ActiveSessions.Dec()
	}

	incoming := make(chan *protocol.Frame)
	readErr := make(chan error, 1)
	go s.readLoop(incoming, readErr)

	if err := s.sendPatches(s.backend.SnapshotFrame(), protocol.FlagSnapshot); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			return err

		case f := <-incoming:
			if err := s.handleFrame(f); err != nil {
				if errors.Is(err, ErrSessionClosed) {
					return nil
				}
				return err
			}

		case fn := <-s.tasks:
			s.runTask(fn)

		case <-ticker.C:
			if err := s.paint(); err != nil {
				return err
			}
		}
	}
}

// Close stops the session and closes the connection. It is safe to call
// more than once and from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *Session) readLoop(incoming chan<- *protocol.Frame, readErr chan<- error) {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			} else {
				select {
				case <-s.done:
					err = nil
				default:
					s.logger.Error("read error", "error", err)
				}
			}
			readErr <- err
			return
		}

		f, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			continue
		}
		select {
		case incoming <- f:
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleFrame(f *protocol.Frame) error {
	if s.metrics != nil {
		s.metrics.FramesReceived.WithLabelValues(f.Type.String()).Inc()
	}
	switch f.Type {
	case protocol.FrameControl:
		c, err := protocol.DecodeControl(f.Payload)
		if err != nil {
			s.logger.Error("control decode error", "error", err)
			return s.sendError(protocol.ErrInvalidFrame, err.Error())
		}
		switch c.Type {
		case protocol.ControlPing:
			pong := &protocol.Control{Type: protocol.ControlPong, Timestamp: c.Timestamp}
			return s.send(protocol.FrameControl, 0, protocol.EncodeControl(pong))
		case protocol.ControlResync:
			s.logger.Info("resync requested", "acked", s.acked)
			return s.sendPatches(s.backend.SnapshotFrame(), protocol.FlagSnapshot)
		case protocol.ControlClose:
			s.logger.Info("client closing")
			return ErrSessionClosed
		}

	case protocol.FrameAck:
		ack, err := protocol.DecodeAck(f.Payload)
		if err != nil {
			s.logger.Error("ack decode error", "error", err)
			return s.sendError(protocol.ErrInvalidFrame, err.Error())
		}
		s.acked = ack.LastSeq
		if s.metrics != nil && ack.LastSeq < s.backend.NextSeq() {
			s.metrics.AckLag.Observe(float64(s.backend.NextSeq() - 1 - ack.LastSeq))
		}

	default:
		s.logger.Warn("unexpected frame type", "type", f.Type)
		return s.sendError(protocol.ErrInvalidFrame, "unexpected "+f.Type.String()+" frame")
	}
	return nil
}

// runTask runs fn, recovering from a panic so one bad task does not end
// the session.
func (s *Session) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if s.metrics != nil {
				s.metrics.TaskPanics.Inc()
			}
			s.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// paint runs the scheduled paint callbacks and sends what they recorded.
func (s *Session) paint() error {
	ran := s.backend.Paint()
	pf := s.backend.TakeFrame()
	if pf == nil {
		return nil
	}
	s.logger.Debug("paint", "callbacks", ran, "patches", len(pf.Patches), "seq", pf.Seq)
	return s.sendPatches(pf, 0)
}

func (s *Session) sendPatches(pf *protocol.PatchesFrame, flags protocol.FrameFlags) error {
	if err := s.send(protocol.FramePatches, flags, protocol.EncodePatches(pf)); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.PatchesSent.Add(float64(len(pf.Patches)))
	}
	return nil
}

func (s *Session) sendError(code protocol.ErrorCode, message string) error {
	em := &protocol.ErrorMessage{Code: code, Message: message}
	return s.send(protocol.FrameError, 0, protocol.EncodeErrorMessage(em))
}

func (s *Session) send(ft protocol.FrameType, flags protocol.FrameFlags, payload []byte) error {
	if len(payload) > protocol.MaxPayloadSize {
		return protocol.ErrFrameTooLarge
	}
	data := (&protocol.Frame{Type: ft, Flags: flags, Payload: payload}).Encode()
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Error("write error", "error", err, "type", ft)
		return err
	}
	if s.metrics != nil {
		s.metrics.FramesSent.WithLabelValues(ft.String()).Inc()
		s.metrics.BytesSent.Add(float64(len(data)))
	}
	return nil
}
