// Command meet is a headless meeting client: it requests a guest
// credential, exchanges it for a room grant, and joins the meeting,
// logging roster and chat activity.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/uydev/Hermes/internal/adapters/mediabridge"
	"github.com/uydev/Hermes/internal/backend"
	"github.com/uydev/Hermes/internal/meeting"
	"github.com/uydev/Hermes/internal/secrets"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	fs := pflag.NewFlagSet("meet", pflag.ContinueOnError)
	var (
		backendURL = fs.StringP("backend-url", "b", "http://localhost:3001", "Hermes backend base URL")
		name       = fs.StringP("name", "n", "", "display name")
		room       = fs.StringP("room", "r", "", "room code")
		role       = fs.String("role", "", "desired role (host or participant)")
		stateDir   = fs.String("state-dir", "", "directory for persisted session state")
		logLevel   = fs.StringP("log-level", "l", "info", "log level")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}
	if *name == "" || *room == "" {
		logger.Fatal().Msg("--name and --room are required")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store secrets.Store = secrets.NewMemoryStore()
	if *stateDir != "" {
		fileStore, err := secrets.NewFileStore(*stateDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open state dir")
		}
		store = fileStore
	}
	sessions := meeting.NewSessionStore(store)

	client := backend.NewClient(*backendURL)
	session, err := client.GuestAuth(ctx, *name, *room, *role)
	if err != nil {
		logger.Fatal().Err(err).Msg("guest auth failed")
	}
	sessions.SetSession(session)
	logger.Info().Str("identity", session.Identity).Str("room", session.Room).Str("role", string(session.Role)).Msg("guest credential issued")

	grant, err := client.RoomsJoin(ctx, session.Token, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("room join failed")
	}

	transport := mediabridge.New()
	ctrl := meeting.NewController(transport, meeting.GrantAll{}, &backend.RejoinSource{
		Client: client,
		Token:  session.Token,
		Room:   grant.Room,
	})

	updates := ctrl.Watch()
	go func() {
		seenChat := 0
		for snap := range updates {
			logger.Info().
				Str("state", string(snap.State.Phase)).
				Int("tiles", len(snap.Tiles)).
				Bool("mic", snap.IsMicEnabled).
				Bool("camera", snap.IsCameraEnabled).
				Msg("session update")
			for ; seenChat < len(snap.Chat); seenChat++ {
				m := snap.Chat[seenChat]
				logger.Info().Str("sender", m.Sender).Str("kind", string(m.Kind)).Msg(m.Text)
			}
		}
	}()

	ctrl.Connect(ctx, grant)
	if state := ctrl.State(); state.Phase == meeting.PhaseFailed {
		logger.Fatal().Str("reason", state.Reason).Msg("connect failed")
	}

	<-ctx.Done()
	ctrl.Disconnect()
	transport.Close()
	<-ctrl.Done()
	logger.Info().Msg("left meeting")
}
