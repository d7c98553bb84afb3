// Package mediabridge implements the meeting transport over a websocket
// session to the media service's client gateway. It carries room
// bookkeeping, publication control and the reliable data channel; media
// itself flows in the engine behind the gateway.
package mediabridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/uydev/Hermes/internal/meeting"
)

const (
	writeDeadline = 5 * time.Second
	sendBuffer    = 32
)

var (
	ErrNotConnected = errors.New("transport not connected")
	ErrBackpressure = errors.New("backpressure")
)

// envelope is the wire frame in both directions.
type envelope struct {
	Type string `json:"type"`

	Self        string                     `json:"self,omitempty"`
	Participant *meeting.RemoteParticipant `json:"participant,omitempty"`
	SID         string                     `json:"sid,omitempty"`
	Track       *meeting.RemoteTrack       `json:"track,omitempty"`
	Local       *meeting.LocalTrack        `json:"local,omitempty"`
	Source      meeting.TrackSource        `json:"source,omitempty"`
	Severity    string                     `json:"severity,omitempty"`
	Reason      string                     `json:"reason,omitempty"`
	Sender      string                     `json:"sender,omitempty"`
	Topic       string                     `json:"topic,omitempty"`
	Payload     []byte                     `json:"payload,omitempty"`
}

// Transport is a reconnectable MediaTransport. The event channel lives
// for the transport's lifetime, across reconnects.
type Transport struct {
	events chan meeting.Event

	evMu         sync.RWMutex
	eventsClosed bool

	mu           sync.Mutex
	conn         *websocket.Conn
	send         chan []byte
	cancel       context.CancelFunc
	localSID     string
	participants map[string]*meeting.RemoteParticipant
	order        []string
}

func New() *Transport {
	return &Transport{
		events: make(chan meeting.Event, 64),
	}
}

func (t *Transport) Events() <-chan meeting.Event { return t.events }

// Connect dials the gateway, authenticating with the media token.
func (t *Transport) Connect(ctx context.Context, url, token string) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("dial media gateway: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	if t.conn != nil {
		_ = t.conn.Close()
	}
	t.conn = conn
	t.send = make(chan []byte, sendBuffer)
	t.cancel = cancel
	t.participants = make(map[string]*meeting.RemoteParticipant)
	t.order = nil
	send := t.send
	t.mu.Unlock()

	go t.writePump(runCtx, conn, send)
	go t.readPump(runCtx, conn)

	log.Info().Str("module", "mediabridge").Str("url", url).Msg("connected")
	return nil
}

func (t *Transport) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	cancel := t.cancel
	t.conn = nil
	t.cancel = nil
	t.localSID = ""
	t.participants = nil
	t.order = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (t *Transport) trySend(env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	t.mu.Lock()
	send := t.send
	connected := t.conn != nil
	t.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	select {
	case send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (t *Transport) Publish(_ context.Context, track meeting.LocalTrack) error {
	return t.trySend(envelope{Type: "publish", Local: &track})
}

func (t *Transport) Unpublish(_ context.Context, source meeting.TrackSource) error {
	return t.trySend(envelope{Type: "unpublish", Source: source})
}

func (t *Transport) SendData(_ context.Context, payload []byte, topic string) error {
	return t.trySend(envelope{Type: "data", Topic: topic, Payload: payload})
}

// Snapshot copies the current room view in join order.
func (t *Transport) Snapshot() meeting.RoomSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := meeting.RoomSnapshot{LocalSID: t.localSID}
	for _, sid := range t.order {
		p := t.participants[sid]
		cp := *p
		cp.Tracks = append([]meeting.RemoteTrack(nil), p.Tracks...)
		snap.Participants = append(snap.Participants, cp)
	}
	return snap
}

func (t *Transport) writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-send:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				log.Error().Err(err).Str("module", "mediabridge").Msg("writePump set deadline")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "mediabridge").Msg("writePump write error")
				return
			}
		}
	}
}

func (t *Transport) readPump(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Str("module", "mediabridge").Msg("readPump closed")
				t.emit(meeting.Event{
					Type:     meeting.EventConnectionState,
					Severity: meeting.SeverityDisconnected,
					Reason:   err.Error(),
				})
			}
			return
		}
		t.handleFrame(data)
	}
}

func (t *Transport) handleFrame(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "mediabridge").Msg("bad frame")
		return
	}

	switch env.Type {
	case "connected":
		t.mu.Lock()
		t.localSID = env.Self
		t.mu.Unlock()

	case "participant_joined":
		if env.Participant == nil {
			return
		}
		t.mu.Lock()
		if _, ok := t.participants[env.Participant.SID]; !ok {
			t.order = append(t.order, env.Participant.SID)
		}
		t.participants[env.Participant.SID] = env.Participant
		t.mu.Unlock()
		t.emit(meeting.Event{Type: meeting.EventParticipantJoined, Participant: *env.Participant})

	case "participant_left":
		t.mu.Lock()
		p, ok := t.participants[env.SID]
		if ok {
			delete(t.participants, env.SID)
			for i, sid := range t.order {
				if sid == env.SID {
					t.order = append(t.order[:i], t.order[i+1:]...)
					break
				}
			}
		}
		t.mu.Unlock()
		if ok {
			t.emit(meeting.Event{Type: meeting.EventParticipantLeft, Participant: *p})
		}

	case "track_subscribed":
		if env.Track == nil {
			return
		}
		t.mu.Lock()
		if p, ok := t.participants[env.SID]; ok {
			replaced := false
			for i, tr := range p.Tracks {
				if tr.SID == env.Track.SID {
					p.Tracks[i] = *env.Track
					replaced = true
					break
				}
			}
			if !replaced {
				p.Tracks = append(p.Tracks, *env.Track)
			}
		}
		t.mu.Unlock()
		t.emit(meeting.Event{Type: meeting.EventTrackSubscribed, Track: *env.Track})

	case "track_unsubscribed":
		if env.Track == nil {
			return
		}
		t.mu.Lock()
		if p, ok := t.participants[env.SID]; ok {
			for i, tr := range p.Tracks {
				if tr.SID == env.Track.SID {
					p.Tracks = append(p.Tracks[:i], p.Tracks[i+1:]...)
					break
				}
			}
		}
		t.mu.Unlock()
		t.emit(meeting.Event{Type: meeting.EventTrackUnsubscribed, Track: *env.Track})

	case "data":
		t.emit(meeting.Event{
			Type:    meeting.EventDataReceived,
			Payload: env.Payload,
			Topic:   env.Topic,
			Sender:  env.Sender,
		})

	case "state":
		t.emit(meeting.Event{
			Type:     meeting.EventConnectionState,
			Severity: meeting.ConnectionSeverity(env.Severity),
			Reason:   env.Reason,
		})

	default:
		log.Warn().Str("module", "mediabridge").Str("type", env.Type).Msg("unknown frame")
	}
}

// emit delivers an event without blocking the read pump; a full buffer
// drops the event rather than stall the transport.
func (t *Transport) emit(ev meeting.Event) {
	t.evMu.RLock()
	defer t.evMu.RUnlock()
	if t.eventsClosed {
		return
	}
	select {
	case t.events <- ev:
	default:
		log.Warn().Str("module", "mediabridge").Str("type", string(ev.Type)).Msg("event dropped")
	}
}

// Close ends the event stream. The transport is unusable afterwards.
func (t *Transport) Close() {
	_ = t.Disconnect()
	t.evMu.Lock()
	defer t.evMu.Unlock()
	if !t.eventsClosed {
		t.eventsClosed = true
		close(t.events)
	}
}
