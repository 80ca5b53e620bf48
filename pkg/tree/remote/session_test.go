package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/silk/pkg/dom"
	"github.com/vango-dev/silk/pkg/protocol"
	"github.com/vango-dev/silk/pkg/reactive"
	"github.com/vango-dev/silk/pkg/render"
)

type testServer struct {
	url      string
	metrics  *Metrics
	sessions chan *Session
	results  chan error
}

// newTestServer serves one session per connection. Run's result is
// reported on results.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		metrics:  NewMetrics(MetricsConfig{Registry: prometheus.NewRegistry()}),
		sessions: make(chan *Session, 1),
		results:  make(chan error, 1),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s, err := Accept(conn, NewBackend(),
			WithLogger(logger),
			WithMetrics(ts.metrics),
			WithPaintInterval(time.Millisecond))
		if err != nil {
			ts.results <- err
			return
		}
		ts.sessions <- s
		ts.results <- s.Run(context.Background())
	}))
	t.Cleanup(srv.Close)
	ts.url = "ws" + strings.TrimPrefix(srv.URL, "http")
	return ts
}

func (ts *testServer) dial(t *testing.T) (*Client, *Session) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	c, err := Dial(conn, "")
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	select {
	case s := <-ts.sessions:
		return c, s
	case <-time.After(5 * time.Second):
		t.Fatal("session was not accepted")
		return nil, nil
	}
}

func (ts *testServer) result(t *testing.T) error {
	t.Helper()
	select {
	case err := <-ts.results:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}

// waitFor receives frames until the mirror's only root renders as want.
func waitFor(t *testing.T, c *Client, want string) {
	t.Helper()
	for {
		roots := c.Mirror().Roots()
		if len(roots) == 1 && roots[0].String() == want {
			return
		}
		if _, err := c.Receive(); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
	}
}

func TestSessionStreamsUpdates(t *testing.T) {
	ts := newTestServer(t)
	c, s := ts.dial(t)
	if c.SessionID() != s.ID() || c.SessionID() == "" {
		t.Fatalf("session ids %q and %q", c.SessionID(), s.ID())
	}

	var count *reactive.Signal[int]
	err := s.Submit(func() {
		rt := dom.NewRuntime(s.Backend(), render.New(s.Backend()))
		count = reactive.NewSignal(0)
		rt.Element("p").Attr("class", "count").TextSignal(reactive.Map(count, strconv.Itoa))
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, c, `<p class="count">0</p>`)

	s.Submit(func() { count.Write().Set(5) })
	waitFor(t, c, `<p class="count">5</p>`)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ts.result(t); err != nil {
		t.Errorf("Run = %v", err)
	}
	if err := s.Submit(func() {}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Submit after close = %v", err)
	}

	if got := testutil.ToFloat64(ts.metrics.FramesSent.WithLabelValues("Patches")); got < 3 {
		t.Errorf("patch frames sent = %v, want at least 3", got)
	}
	if got := testutil.ToFloat64(ts.metrics.ActiveSessions); got != 0 {
		t.Errorf("active sessions = %v", got)
	}
}

func TestSessionPingAndResync(t *testing.T) {
	ts := newTestServer(t)
	c, s := ts.dial(t)
	s.Submit(func() {
		rt := dom.NewRuntime(s.Backend(), render.New(s.Backend()))
		rt.Element("div").Text("hi")
	})
	waitFor(t, c, "<div>hi</div>")

	if err := c.Ping(); err != nil {
		t.Fatal(err)
	}
	for {
		f, err := c.Receive()
		if err != nil {
			t.Fatal(err)
		}
		if f.Type == protocol.FrameControl {
			ctl, err := protocol.DecodeControl(f.Payload)
			if err != nil || ctl.Type != protocol.ControlPong || ctl.Timestamp == 0 {
				t.Fatalf("control = %+v, %v", ctl, err)
			}
			break
		}
	}

	resync := protocol.EncodeControl(&protocol.Control{Type: protocol.ControlResync})
	if err := c.send(protocol.FrameControl, resync); err != nil {
		t.Fatal(err)
	}
	for {
		f, err := c.Receive()
		if err != nil {
			t.Fatal(err)
		}
		if f.Type == protocol.FramePatches && f.Flags.Has(protocol.FlagSnapshot) {
			break
		}
	}
	waitFor(t, c, "<div>hi</div>")
	c.Close()
	ts.result(t)
}

func TestSessionTaskPanicIsRecovered(t *testing.T) {
	ts := newTestServer(t)
	c, s := ts.dial(t)
	s.Submit(func() { panic("boom") })
	s.Submit(func() {
		s.Backend().CreateText("still alive")
	})
	waitFor(t, c, "still alive")
	c.Close()
	ts.result(t)

	if got := testutil.ToFloat64(ts.metrics.TaskPanics); got != 1 {
		t.Errorf("task panics = %v", got)
	}
}

func TestSessionRejectsIncompatibleVersion(t *testing.T) {
	ts := newTestServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	hello := &protocol.ClientHello{Version: protocol.Version{Major: protocol.CurrentVersion.Major + 1}}
	if err := conn.WriteMessage(websocket.BinaryMessage, protocol.NewFrame(protocol.FrameHello, protocol.EncodeClientHello(hello)).Encode()); err != nil {
		t.Fatal(err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		t.Fatal(err)
	}
	sh, err := protocol.DecodeServerHello(f.Payload)
	if err != nil || sh.Status != protocol.HelloVersionMismatch {
		t.Fatalf("server hello = %+v, %v", sh, err)
	}
	if err := ts.result(t); !errors.Is(err, ErrHandshake) {
		t.Errorf("Accept = %v, want ErrHandshake", err)
	}
}

func TestSessionQueueFull(t *testing.T) {
	s := &Session{tasks: make(chan func(), 1), done: make(chan struct{})}
	if err := s.Submit(func() {}); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("err = %v, want ErrQueueFull", err)
	}
}
