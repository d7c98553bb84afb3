package meeting

import "sort"

type TileKind string

const (
	TileCamera      TileKind = "camera"
	TileScreenShare TileKind = "screen_share"
)

// ParticipantTile is one presentable video surface. IDs are derived from
// the participant session id plus the kind, so they stay stable across
// rebuilds for the same logical track.
type ParticipantTile struct {
	ID              string
	Identity        string
	DisplayName     string
	IsLocal         bool
	Kind            TileKind
	TrackSID        string
	IsSpeaking      bool
	IsMicEnabled    bool
	IsCameraEnabled bool
}

// LocalMediaState feeds the local participant's tiles.
type LocalMediaState struct {
	Identity        string
	DisplayName     string
	IsMicEnabled    bool
	IsCameraEnabled bool
	IsScreenSharing bool
}

func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "unknown"
}

// cameraTrack picks the remote's camera track: the first subscribed video
// track sourced from the camera, else a lone unknown-sourced one.
func cameraTrack(p RemoteParticipant) (RemoteTrack, bool) {
	var unknowns []RemoteTrack
	for _, t := range p.Tracks {
		if t.Kind != TrackVideo || !t.Subscribed {
			continue
		}
		if t.Source == SourceCamera {
			return t, true
		}
		if t.Source == SourceUnknown {
			unknowns = append(unknowns, t)
		}
	}
	if len(unknowns) == 1 {
		return unknowns[0], true
	}
	return RemoteTrack{}, false
}

func screenTrack(p RemoteParticipant) (RemoteTrack, bool) {
	for _, t := range p.Tracks {
		if t.Kind == TrackVideo && t.Subscribed && t.Source == SourceScreenShare {
			return t, true
		}
	}
	return RemoteTrack{}, false
}

func micTrack(p RemoteParticipant) (RemoteTrack, bool) {
	for _, t := range p.Tracks {
		if t.Kind == TrackAudio {
			return t, true
		}
	}
	return RemoteTrack{}, false
}

// BuildRoster turns a transport snapshot into the ordered tile list:
// local camera, local screen share while sharing, then remote tiles
// sorted by display name with input order breaking ties.
func BuildRoster(local LocalMediaState, snap RoomSnapshot) []ParticipantTile {
	tiles := []ParticipantTile{{
		ID:              "local:camera",
		Identity:        local.Identity,
		DisplayName:     local.DisplayName,
		IsLocal:         true,
		Kind:            TileCamera,
		IsMicEnabled:    local.IsMicEnabled,
		IsCameraEnabled: local.IsCameraEnabled,
	}}
	if local.IsScreenSharing {
		tiles = append(tiles, ParticipantTile{
			ID:              "local:screen_share",
			Identity:        local.Identity,
			DisplayName:     local.DisplayName,
			IsLocal:         true,
			Kind:            TileScreenShare,
			IsMicEnabled:    local.IsMicEnabled,
			IsCameraEnabled: local.IsCameraEnabled,
		})
	}

	remote := make([]ParticipantTile, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		identity := fallback(p.Identity, p.SID)
		name := fallback(p.DisplayName, p.Identity, p.SID)

		micEnabled := false
		if mic, ok := micTrack(p); ok {
			micEnabled = !mic.Muted
		}

		cam, camOK := cameraTrack(p)
		tile := ParticipantTile{
			ID:              p.SID + ":camera",
			Identity:        identity,
			DisplayName:     name,
			Kind:            TileCamera,
			IsSpeaking:      p.IsSpeaking,
			IsMicEnabled:    micEnabled,
			IsCameraEnabled: camOK && !cam.Muted,
		}
		if camOK {
			tile.TrackSID = cam.SID
		}
		remote = append(remote, tile)

		if share, ok := screenTrack(p); ok {
			remote = append(remote, ParticipantTile{
				ID:              p.SID + ":screen_share",
				Identity:        identity,
				DisplayName:     name,
				Kind:            TileScreenShare,
				TrackSID:        share.SID,
				IsSpeaking:      p.IsSpeaking,
				IsMicEnabled:    micEnabled,
				IsCameraEnabled: camOK && !cam.Muted,
			})
		}
	}

	sort.SliceStable(remote, func(i, j int) bool {
		return remote[i].DisplayName < remote[j].DisplayName
	})

	return append(tiles, remote...)
}
