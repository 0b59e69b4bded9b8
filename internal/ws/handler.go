// Package ws bridges a browser chat client to its conversational session.
// The browser owns speech recognition and audio output; this handler maps
// its events (finalized transcripts, typed text, call and capture toggles,
// proposal decisions, playback acks) onto session operations and streams
// session output (messages, MP3 clips, proposal batches, call state, the
// check-in countdown) back over the same connection.
package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/pranavmanoj1/productivityai/internal/call"
	"github.com/pranavmanoj1/productivityai/internal/types"
)

// clientEvent is a message from the browser. Types: "hello", "start-call",
// "end-call", "start-listening", "stop-listening", "transcript",
// "no-speech", "text", "approve-tasks", "discard-tasks", "audio-done".
type clientEvent struct {
	Type string `json:"type"`
	// hello
	Token           string `json:"token,omitempty"`
	SpeechSupported bool   `json:"speech_supported,omitempty"`
	// transcript / text
	Text string `json:"text,omitempty"`
}

// serverEvent is a message to the browser. Types: "message", "audio",
// "proposed-tasks", "call-state", "check-in", "error".
type serverEvent struct {
	Type      string         `json:"type"`
	Message   *types.Message `json:"message,omitempty"`
	Audio     string         `json:"audio,omitempty"`
	Tasks     []types.Task   `json:"tasks,omitempty"`
	Active    bool           `json:"active,omitempty"`
	Listening bool           `json:"listening,omitempty"`
	Duration  int            `json:"duration,omitempty"`
	Seconds   int            `json:"seconds,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Backend is everything a session needs from the assistant API.
type Backend interface {
	call.Exchanger
	call.Confirmer
	call.Synthesizer
}

// Handler upgrades /ws/call connections and runs one session per socket.
type Handler struct {
	backend  Backend
	clock    call.Clock
	upgrader websocket.Upgrader
}

func NewHandler(backend Backend) *Handler {
	return &Handler{
		backend: backend,
		clock:   call.SystemClock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 65536,
			CheckOrigin: func(r *http.Request) bool {
				// The bearer token is the actual access control; origin is not.
				return true
			},
		},
	}
}

// Serve handles one WebSocket connection for its whole lifetime.
func (h *Handler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return nil
	}
	defer conn.Close()

	peer := &peerConn{conn: conn, ack: make(chan struct{}, 1), closed: make(chan struct{})}
	defer peer.close()

	hello, err := readHello(conn)
	if err != nil {
		peer.send(serverEvent{Type: "error", Error: err.Error()})
		return nil
	}
	token := hello.Token

	sess := call.NewSession(
		h.backend, h.backend, h.backend,
		peer,
		func() string { return token },
		hello.SpeechSupported,
		h.clock,
		call.Events{
			OnMessage: func(m types.Message) {
				peer.send(serverEvent{Type: "message", Message: &m})
			},
			OnProposedTasks: func(tasks []types.Task) {
				peer.send(serverEvent{Type: "proposed-tasks", Tasks: tasks})
			},
			OnCallState: func(active, listening bool, duration int) {
				peer.send(serverEvent{Type: "call-state", Active: active, Listening: listening, Duration: duration})
			},
			OnCheckIn: func(seconds int) {
				peer.send(serverEvent{Type: "check-in", Seconds: seconds})
			},
		},
	)
	defer sess.Close()

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return nil
		}
		var ev clientEvent
		if json.Unmarshal(data, &ev) != nil {
			continue
		}
		h.dispatch(sess, peer, ev)
	}
}

// dispatch applies one client event. Network-bound operations run off the
// read loop so a slow backend never blocks incoming events.
func (h *Handler) dispatch(sess *call.Session, peer *peerConn, ev clientEvent) {
	switch ev.Type {
	case "start-call":
		sess.StartCall()
	case "end-call":
		sess.EndCall()
	case "start-listening":
		_ = sess.StartListening()
	case "stop-listening":
		sess.StopListening()
	case "transcript":
		go sess.DeliverTranscript(ev.Text)
	case "no-speech":
		sess.DeliverNoSpeech()
	case "text":
		go sess.HandleUserInput(context.Background(), ev.Text)
	case "approve-tasks":
		go func() {
			if err := sess.ApproveTasks(context.Background()); err != nil {
				log.Printf("ws: approve tasks: %v", err)
			}
		}()
	case "discard-tasks":
		if err := sess.DiscardTasks(); err != nil {
			log.Printf("ws: discard tasks: %v", err)
		}
	case "audio-done":
		peer.ackPlayback()
	}
}

func readHello(conn *websocket.Conn) (*clientEvent, error) {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var ev clientEvent
	if jerr := json.Unmarshal(data, &ev); jerr != nil || ev.Type != "hello" {
		return nil, errBadHello
	}
	return &ev, nil
}

var errBadHello = jsonError("expected hello event first")

type jsonError string

func (e jsonError) Error() string { return string(e) }

// peerConn serializes writes and carries the playback ack signal. gorilla
// connections allow one concurrent writer, so every send goes through mu.
type peerConn struct {
	conn *websocket.Conn

	mu     sync.Mutex
	ack    chan struct{}
	closed chan struct{}
	once   sync.Once
}

func (p *peerConn) send(ev serverEvent) {
	p.mu.Lock()
	err := p.conn.WriteJSON(ev)
	p.mu.Unlock()
	if err != nil {
		log.Printf("ws: write failed: %v", err)
	}
}

func (p *peerConn) close() { p.once.Do(func() { close(p.closed) }) }

func (p *peerConn) ackPlayback() {
	select {
	case p.ack <- struct{}{}:
	default:
	}
}

// Play implements call.Player: the clip goes out as a base64 audio event
// and Play blocks until the browser acks completion. A lost ack resolves
// via the timeout so the playback queue cannot wedge on one clip.
func (p *peerConn) Play(ctx context.Context, audio []byte) error {
	// Drain any stale ack from a previous clip.
	select {
	case <-p.ack:
	default:
	}
	p.send(serverEvent{Type: "audio", Audio: base64.StdEncoding.EncodeToString(audio)})

	timer := time.NewTimer(2 * time.Minute)
	defer timer.Stop()
	select {
	case <-p.ack:
		return nil
	case <-p.closed:
		return jsonError("connection closed during playback")
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return jsonError("playback ack timeout")
	}
}
