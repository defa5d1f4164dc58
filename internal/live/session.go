// Package live bridges a browser WebSocket to the Gemini Live audio API:
// inbound microphone frames stream up as 16 kHz PCM, model speech streams
// back down as 24 kHz PCM with back-to-back playback offsets, and one
// recognized tool call hands control to the deck forge.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/forge"
)

// State is the lifecycle state of a voice session.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
)

// Forger generates a deck when the session's tool call fires.
type Forger interface {
	GenerateDeck(ctx context.Context, prompt string, format deck.Format) (*forge.DeckResult, error)
}

// clientMessage is a JSON frame from the browser.
type clientMessage struct {
	Type string `json:"type"` // "audio" or "stop"
	Data string `json:"data,omitempty"`
}

// serverMessage is a JSON frame to the browser.
type serverMessage struct {
	Type    string            `json:"type"` // "state", "audio", "forge", "error"
	State   State             `json:"state,omitempty"`
	Data    string            `json:"data,omitempty"`
	Start   float64           `json:"start,omitempty"` // playback offset, seconds
	Deck    *forge.DeckResult `json:"deck,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Session owns one voice conversation: the browser socket, the upstream
// model session, and the playback clock. All three are released together
// on every exit path.
type Session struct {
	ws     *websocket.Conn
	dial   Dialer
	forger Forger
	format deck.Format
	log    *zap.Logger

	mu       sync.Mutex
	state    State
	up       Upstream
	started  time.Time
	clock    playbackClock
	teardown sync.Once

	writeMu sync.Mutex
}

// NewSession creates a session over an already-upgraded WebSocket.
func NewSession(ws *websocket.Conn, dial Dialer, forger Forger, format deck.Format, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		ws:     ws,
		dial:   dial,
		forger: forger,
		format: format,
		log:    log,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run drives the session until it closes. It always leaves the session in
// StateClosed with the socket and the upstream session released.
func (s *Session) Run(ctx context.Context) {
	defer s.close()

	s.setState(StateConnecting)

	up, err := s.dial(ctx, s.format)
	if err != nil {
		// Connecting never transitions to open on a dial failure.
		s.log.Warn("live session dial failed", zap.Error(err))
		s.send(serverMessage{Type: "error", Message: "voice session unavailable"})
		return
	}

	s.mu.Lock()
	s.up = up
	s.state = StateOpen
	s.started = time.Now()
	s.mu.Unlock()
	s.send(serverMessage{Type: "state", State: StateOpen})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{}, 2)
	go func() {
		s.pumpClient(ctx, up)
		done <- struct{}{}
	}()
	go func() {
		s.pumpUpstream(ctx, up)
		done <- struct{}{}
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// pumpClient forwards browser audio frames upstream until stop, error, or
// socket close.
func (s *Session) pumpClient(ctx context.Context, up Upstream) {
	for {
		if ctx.Err() != nil {
			return
		}

		_, payload, err := s.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "audio":
			data, err := DecodeFrame(msg.Data)
			if err != nil {
				continue
			}
			if err := up.SendAudio(data); err != nil {
				s.log.Debug("upstream audio send failed", zap.Error(err))
				return
			}
		case "stop":
			return
		}
	}
}

// pumpUpstream forwards model audio to the browser and dispatches the
// forgeDeck tool call.
func (s *Session) pumpUpstream(ctx context.Context, up Upstream) {
	for {
		if ctx.Err() != nil {
			return
		}

		event, err := up.Receive()
		if err != nil {
			// Remote close or remote error both end the session.
			return
		}

		if len(event.Audio) > 0 {
			duration := PCMDuration(len(event.Audio), OutputSampleRate)
			start := s.clock.Schedule(time.Since(s.started), duration)
			s.send(serverMessage{
				Type:  "audio",
				Data:  EncodeFrame(event.Audio),
				Start: start.Seconds(),
			})
		}

		if event.Tool != nil {
			s.handleToolCall(ctx, up, event.Tool)
			return
		}
	}
}

// handleToolCall acknowledges the forgeDeck call, tears the voice session
// down, and hands the theme and format to the forge. The generated deck is
// delivered over the still-open socket before it closes.
func (s *Session) handleToolCall(ctx context.Context, up Upstream, call *ToolCall) {
	s.log.Info("forge tool call received",
		zap.String("theme", call.Theme), zap.String("format", call.Format))

	if err := up.SendToolAck(call.ID, call.Name); err != nil {
		s.log.Debug("tool ack failed", zap.Error(err))
	}
	s.closeUpstream()

	format := deck.Format(call.Format)
	if !format.Valid() {
		format = s.format
	}

	result, err := s.forger.GenerateDeck(ctx, call.Theme, format)
	if err != nil {
		s.log.Warn("voice-triggered forge failed", zap.Error(err))
		s.send(serverMessage{Type: "error", Message: "a rift in the Blind Eternities occurred"})
		return
	}

	s.send(serverMessage{Type: "forge", Deck: result})
}

func (s *Session) send(msg serverMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_ = s.ws.WriteMessage(websocket.TextMessage, payload)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// closeUpstream releases the model session, tolerating close errors.
func (s *Session) closeUpstream() {
	s.mu.Lock()
	up := s.up
	s.up = nil
	s.mu.Unlock()

	if up != nil {
		if err := up.Close(); err != nil {
			s.log.Debug("upstream close failed", zap.Error(err))
		}
	}
}

// close releases every owned resource. It is reachable from all exit paths
// and safe to call more than once.
func (s *Session) close() {
	s.teardown.Do(func() {
		s.closeUpstream()
		s.send(serverMessage{Type: "state", State: StateClosed})
		if err := s.ws.Close(); err != nil {
			s.log.Debug("socket close failed", zap.Error(err))
		}
		s.setState(StateClosed)
	})
}
