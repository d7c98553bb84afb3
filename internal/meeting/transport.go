// Package meeting drives the client side of a call: the session state
// machine, the participant roster, and text chat, all on top of an
// abstract media transport.
package meeting

import "context"

type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// TrackSource is where a track's media comes from, as reported by the
// transport. Unknown covers tracks the transport could not classify.
type TrackSource string

const (
	SourceCamera      TrackSource = "camera"
	SourceMicrophone  TrackSource = "microphone"
	SourceScreenShare TrackSource = "screen_share"
	SourceUnknown     TrackSource = "unknown"
)

// RemoteTrack is one published track of a remote participant.
type RemoteTrack struct {
	SID        string
	Kind       TrackKind
	Source     TrackSource
	Subscribed bool
	Muted      bool
}

type RemoteParticipant struct {
	SID         string
	Identity    string
	DisplayName string
	IsSpeaking  bool
	Tracks      []RemoteTrack
}

// RoomSnapshot is the transport's current view of the room. Participants
// keep their join order; the roster builder relies on it for tie breaks.
type RoomSnapshot struct {
	LocalSID     string
	Participants []RemoteParticipant
}

// CaptureOptions describe a local capture. The zero value means
// "transport default" (used for camera and microphone).
type CaptureOptions struct {
	Width        int
	Height       int
	FPS          int
	ShowCursor   bool
	CaptureAudio bool
}

// ScreenCaptureProfile is the fixed profile for screen shares.
var ScreenCaptureProfile = CaptureOptions{
	Width:      1920,
	Height:     1080,
	FPS:        15,
	ShowCursor: true,
}

// LocalTrack is a local publication request.
type LocalTrack struct {
	Source TrackSource
	// ScreenSourceID selects the display or window for screen shares.
	ScreenSourceID string
	Capture        CaptureOptions
}

type EventType string

const (
	EventConnectionState   EventType = "connection_state"
	EventParticipantJoined EventType = "participant_joined"
	EventParticipantLeft   EventType = "participant_left"
	EventTrackSubscribed   EventType = "track_subscribed"
	EventTrackUnsubscribed EventType = "track_unsubscribed"
	EventDataReceived      EventType = "data_received"
)

// ConnectionSeverity is the transport's own classification of a
// connection-state change. It is passed through, never reinterpreted.
type ConnectionSeverity string

const (
	SeverityNone         ConnectionSeverity = ""
	SeverityReconnecting ConnectionSeverity = "reconnecting"
	SeverityDisconnected ConnectionSeverity = "disconnected"
)

// Event is one entry of the transport's ordered event stream.
// Fields beyond Type are populated per event kind.
type Event struct {
	Type EventType

	// connection_state
	Severity ConnectionSeverity
	Reason   string

	// participant_joined / participant_left
	Participant RemoteParticipant

	// track_subscribed / track_unsubscribed
	Track RemoteTrack

	// data_received
	Payload []byte
	Topic   string
	Sender  string
}

// MediaTransport is the external real-time media service, reduced to the
// operations the session controller needs. The media engine behind it is
// not this package's concern.
type MediaTransport interface {
	Connect(ctx context.Context, url, token string) error
	Disconnect() error
	Publish(ctx context.Context, track LocalTrack) error
	Unpublish(ctx context.Context, source TrackSource) error
	SendData(ctx context.Context, payload []byte, topic string) error

	// Events delivers all transport events in order. The channel is owned
	// by the transport and stays open for its lifetime.
	Events() <-chan Event

	Snapshot() RoomSnapshot
}
