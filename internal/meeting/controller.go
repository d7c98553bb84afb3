package meeting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/uydev/Hermes/internal/domain"
)

// GrantSource re-issues a room grant for recovery. Grants are single use;
// every reconnect mints a fresh one.
type GrantSource interface {
	IssueGrant(ctx context.Context) (domain.RoomGrant, error)
}

// ScreenSource selects the display or window to share.
type ScreenSource struct {
	ID    string
	Title string
}

// Snapshot is an immutable view of the session, broadcast to observers.
// No observer ever sees a partially updated one.
type Snapshot struct {
	State           ConnectionState
	Tiles           []ParticipantTile
	Chat            []ChatMessage
	IsMicEnabled    bool
	IsCameraEnabled bool
	IsScreenSharing bool
}

// Controller owns the meeting session: connection lifecycle, local media
// toggles, roster rebuilds and chat routing. It is single-owner; all
// transport events are serialized through one event loop so rebuilds
// never race each other or overlap a disconnect.
type Controller struct {
	transport   MediaTransport
	permissions PermissionProber
	grants      GrantSource

	chat *ChatChannel

	mu            sync.Mutex
	state         ConnectionState
	localIdentity string
	localName     string
	micEnabled    bool
	cameraEnabled bool
	screenSharing bool
	tiles         []ParticipantTile
	observers     []chan Snapshot

	// shareMu serializes screen share publication; a second share never
	// starts while one is pending.
	shareMu sync.Mutex

	recovering atomic.Bool
	loopDone   chan struct{}
}

// NewController starts the event loop immediately; it runs until the
// transport closes its event channel.
func NewController(transport MediaTransport, permissions PermissionProber, grants GrantSource) *Controller {
	c := &Controller{
		transport:     transport,
		permissions:   permissions,
		grants:        grants,
		chat:          NewChatChannel(transport),
		state:         ConnectionState{Phase: PhaseIdle},
		micEnabled:    true,
		cameraEnabled: true,
		loopDone:      make(chan struct{}),
	}
	go c.eventLoop()
	return c
}

// Watch registers an observer. Slow observers miss snapshots rather than
// block the session.
func (c *Controller) Watch() <-chan Snapshot {
	ch := make(chan Snapshot, 8)
	c.mu.Lock()
	c.observers = append(c.observers, ch)
	c.mu.Unlock()
	return ch
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Chat() *ChatChannel { return c.chat }

func (c *Controller) snapshotLocked() Snapshot {
	tiles := make([]ParticipantTile, len(c.tiles))
	copy(tiles, c.tiles)
	return Snapshot{
		State:           c.state,
		Tiles:           tiles,
		Chat:            c.chat.Messages(),
		IsMicEnabled:    c.micEnabled,
		IsCameraEnabled: c.cameraEnabled,
		IsScreenSharing: c.screenSharing,
	}
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.observers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) rebuildLocked() {
	c.tiles = BuildRoster(LocalMediaState{
		Identity:        c.localIdentity,
		DisplayName:     c.localName,
		IsMicEnabled:    c.micEnabled,
		IsCameraEnabled: c.cameraEnabled,
		IsScreenSharing: c.screenSharing,
	}, c.transport.Snapshot())
}

func (c *Controller) fail(reason string) {
	c.mu.Lock()
	c.state = ConnectionState{Phase: PhaseFailed, Reason: reason}
	c.publishLocked()
	c.mu.Unlock()
	log.Warn().Str("module", "meeting").Str("reason", reason).Msg("session failed")
}

func connectFailureReason(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("connect cancelled: %v", err)
	}
	return err.Error()
}

// Connect opens the transport with the grant and publishes local media.
// Single-flight: while a connect is in progress or the session is live,
// further calls are dropped, not queued.
func (c *Controller) Connect(ctx context.Context, grant domain.RoomGrant) {
	c.mu.Lock()
	if c.state.isBusy() {
		c.mu.Unlock()
		return
	}
	c.state = ConnectionState{Phase: PhaseConnecting}
	c.localIdentity = grant.Identity
	c.localName = grant.DisplayName
	c.publishLocked()
	c.mu.Unlock()

	c.chat.SetLocalSender(grant.DisplayName)

	// Camera first, then microphone. Either denial aborts the attempt
	// before any transport resource exists.
	ok, err := c.permissions.RequestCamera(ctx)
	if err != nil {
		c.fail(connectFailureReason(err))
		return
	}
	if !ok {
		c.fail("camera permission denied")
		return
	}
	ok, err = c.permissions.RequestMicrophone(ctx)
	if err != nil {
		c.fail(connectFailureReason(err))
		return
	}
	if !ok {
		c.fail("microphone permission denied")
		return
	}

	if err := c.transport.Connect(ctx, grant.MediaURL, grant.MediaToken); err != nil {
		c.fail(connectFailureReason(err))
		return
	}

	if err := c.transport.Publish(ctx, LocalTrack{Source: SourceCamera}); err != nil {
		_ = c.transport.Disconnect()
		c.fail(connectFailureReason(err))
		return
	}
	if err := c.transport.Publish(ctx, LocalTrack{Source: SourceMicrophone}); err != nil {
		_ = c.transport.Disconnect()
		c.fail(connectFailureReason(err))
		return
	}

	c.mu.Lock()
	// Disconnect may have reset the session while the attempt was in
	// flight; its reset wins, so tear the fresh connection back down.
	if c.state.Phase != PhaseConnecting {
		c.mu.Unlock()
		go func(t MediaTransport) {
			_ = t.Disconnect()
		}(c.transport)
		return
	}
	c.micEnabled = true
	c.cameraEnabled = true
	c.screenSharing = false
	c.state = ConnectionState{Phase: PhaseConnected}
	c.rebuildLocked()
	c.publishLocked()
	c.mu.Unlock()

	log.Info().Str("module", "meeting").Str("room", grant.Room).Str("identity", grant.Identity).Msg("connected")
}

// Disconnect is valid from any state. Local state resets synchronously;
// transport teardown is fire-and-forget.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	go func(t MediaTransport) {
		_ = t.Disconnect()
	}(c.transport)

	c.micEnabled = true
	c.cameraEnabled = true
	c.screenSharing = false
	c.tiles = nil
	c.chat.Reset()
	c.state = ConnectionState{Phase: PhaseIdle}
	c.publishLocked()
}

// Recover re-issues a grant and reconnects. Only meaningful from Failed
// or Disconnected; concurrent calls are dropped while one is in flight.
func (c *Controller) Recover(ctx context.Context) {
	if c.grants == nil {
		return
	}
	if !c.recovering.CompareAndSwap(false, true) {
		return
	}
	defer c.recovering.Store(false)

	c.mu.Lock()
	phase := c.state.Phase
	c.mu.Unlock()
	if phase != PhaseFailed && phase != PhaseDisconnected {
		return
	}

	grant, err := c.grants.IssueGrant(ctx)
	if err != nil {
		c.fail(fmt.Sprintf("recover: %v", err))
		return
	}
	c.Connect(ctx, grant)
}

// ToggleMic flips the mic flag and publishes or unpublishes the
// microphone track. Failures mark the session Failed but leave the
// transport connection up.
func (c *Controller) ToggleMic(ctx context.Context) {
	c.mu.Lock()
	if c.state.Phase != PhaseConnected {
		c.mu.Unlock()
		return
	}
	enable := !c.micEnabled
	c.mu.Unlock()

	var err error
	if enable {
		err = c.transport.Publish(ctx, LocalTrack{Source: SourceMicrophone})
	} else {
		err = c.transport.Unpublish(ctx, SourceMicrophone)
	}
	if err != nil {
		c.fail(fmt.Sprintf("microphone toggle: %v", err))
		return
	}

	c.mu.Lock()
	c.micEnabled = enable
	c.rebuildLocked()
	c.publishLocked()
	c.mu.Unlock()
}

// ToggleCamera mirrors ToggleMic for the camera track.
func (c *Controller) ToggleCamera(ctx context.Context) {
	c.mu.Lock()
	if c.state.Phase != PhaseConnected {
		c.mu.Unlock()
		return
	}
	enable := !c.cameraEnabled
	c.mu.Unlock()

	var err error
	if enable {
		err = c.transport.Publish(ctx, LocalTrack{Source: SourceCamera})
	} else {
		err = c.transport.Unpublish(ctx, SourceCamera)
	}
	if err != nil {
		c.fail(fmt.Sprintf("camera toggle: %v", err))
		return
	}

	c.mu.Lock()
	c.cameraEnabled = enable
	c.rebuildLocked()
	c.publishLocked()
	c.mu.Unlock()
}

// StartScreenShare replaces any previous share before publishing the new
// one; there are never two simultaneous screen share publications.
func (c *Controller) StartScreenShare(ctx context.Context, source ScreenSource) {
	c.shareMu.Lock()
	defer c.shareMu.Unlock()

	c.mu.Lock()
	if c.state.Phase != PhaseConnected {
		c.mu.Unlock()
		return
	}
	wasSharing := c.screenSharing
	c.mu.Unlock()

	if wasSharing {
		_ = c.transport.Unpublish(ctx, SourceScreenShare)
	}

	err := c.transport.Publish(ctx, LocalTrack{
		Source:         SourceScreenShare,
		ScreenSourceID: source.ID,
		Capture:        ScreenCaptureProfile,
	})
	if err != nil {
		c.mu.Lock()
		c.screenSharing = false
		c.mu.Unlock()
		c.fail(fmt.Sprintf("screen share: %v", err))
		return
	}

	c.mu.Lock()
	c.screenSharing = true
	c.rebuildLocked()
	c.publishLocked()
	c.mu.Unlock()
}

func (c *Controller) StopScreenShare(ctx context.Context) {
	c.shareMu.Lock()
	defer c.shareMu.Unlock()

	c.mu.Lock()
	if !c.screenSharing {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.transport.Unpublish(ctx, SourceScreenShare); err != nil {
		c.fail(fmt.Sprintf("screen share stop: %v", err))
		return
	}

	c.mu.Lock()
	c.screenSharing = false
	c.rebuildLocked()
	c.publishLocked()
	c.mu.Unlock()
}

// SendChat routes text through the chat channel; a transport send
// failure marks the session Failed without dropping the connection.
func (c *Controller) SendChat(ctx context.Context, text string) {
	if err := c.chat.Send(ctx, text); err != nil {
		c.fail(fmt.Sprintf("chat send: %v", err))
		return
	}
	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()
}

// Done closes once the transport ends its event stream.
func (c *Controller) Done() <-chan struct{} { return c.loopDone }

func (c *Controller) eventLoop() {
	defer close(c.loopDone)
	for ev := range c.transport.Events() {
		c.handleEvent(ev)
	}
}

func (c *Controller) handleEvent(ev Event) {
	switch ev.Type {
	case EventConnectionState:
		c.mu.Lock()
		switch ev.Severity {
		case SeverityReconnecting:
			c.state = ConnectionState{Phase: PhaseReconnecting, Reason: ev.Reason}
		case SeverityDisconnected:
			c.state = ConnectionState{Phase: PhaseDisconnected, Reason: ev.Reason}
		}
		c.rebuildLocked()
		c.publishLocked()
		c.mu.Unlock()

	case EventParticipantJoined:
		name := fallback(ev.Participant.DisplayName, ev.Participant.Identity, ev.Participant.SID)
		c.chat.AppendSystem(name + " joined")
		c.mu.Lock()
		c.rebuildLocked()
		c.publishLocked()
		c.mu.Unlock()

	case EventParticipantLeft:
		name := fallback(ev.Participant.DisplayName, ev.Participant.Identity, ev.Participant.SID)
		c.chat.AppendSystem(name + " left")
		c.mu.Lock()
		c.rebuildLocked()
		c.publishLocked()
		c.mu.Unlock()

	case EventTrackSubscribed, EventTrackUnsubscribed:
		c.mu.Lock()
		c.rebuildLocked()
		c.publishLocked()
		c.mu.Unlock()

	case EventDataReceived:
		c.chat.Receive(ev.Payload, ev.Topic, ev.Sender)
		c.mu.Lock()
		c.publishLocked()
		c.mu.Unlock()
	}
}
