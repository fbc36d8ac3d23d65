package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Zloer/internal/adapters/rtc"
	"github.com/dkeye/Zloer/internal/client/media"
	"github.com/dkeye/Zloer/internal/client/orch"
	"github.com/dkeye/Zloer/internal/client/signal"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/dkeye/Zloer/internal/ui"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var joinCmd = &cobra.Command{
	Use:     "join ROOM",
	Aliases: []string{"j"},
	Short:   "Join a room as a headless participant",
	Long: `Join a room and stay connected until interrupted, kicked or refused.

Examples:
  zloer join ABC12 --nickname bot
  zloer join ABC12 --ice stun:stun.l.google.com:19302 --status 10s
  ZLOER_TOKEN=... zloer join ABC12 -s https://voice.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJoin(cmd.Context(), args[0])
	},
}

func runJoin(ctx context.Context, rawRoom string) error {
	roomID, err := domain.ParseRoomID(rawRoom)
	if err != nil {
		return err
	}
	nickname, err := domain.NormalizeNickname(v.GetString("nickname"))
	if err != nil {
		return err
	}
	timezone := domain.NormalizeTimezone(v.GetString("timezone"))

	wsURL, err := signalURL(v.GetString("server"), v.GetString("token"))
	if err != nil {
		return err
	}

	api, err := rtc.NewAPI(rtc.APIOptions{
		UDPPortMin: uint16(v.GetUint("udp_port_min")),
		UDPPortMax: uint16(v.GetUint("udp_port_max")),
	})
	if err != nil {
		return err
	}
	source, err := media.NewSource("audio", "zloer-"+nickname)
	if err != nil {
		return fmt.Errorf("create audio source: %w", err)
	}
	source.SetMuted(v.GetBool("muted"))
	sink := media.NewSink()

	client := signal.NewClient(signal.Options{URL: wsURL})

	g, gctx := errgroup.WithContext(ctx)
	o := orch.New(orch.Options{
		RoomID:   roomID,
		Nickname: nickname,
		Timezone: timezone,
		Tracks:   []webrtc.TrackLocal{source.Track},
		Dial:     rtc.NewDialer(api, rtc.DefaultWebRTCConfig(v.GetStringSlice("ice")...)),
		Signal:   client,
		Hooks:    joinHooks(gctx, source, sink),
	})

	ui.PrintEvent(ui.IconRoom, "Joining %s as %s", ui.BoldStyle.Render(string(roomID)), nickname)

	g.Go(func() error { return client.Run(gctx) })
	g.Go(func() error { return o.Run(gctx, client.Events()) })
	g.Go(func() error {
		source.Run(gctx)
		return nil
	})
	if every := v.GetDuration("status"); every > 0 {
		g.Go(func() error {
			statusLoop(gctx, every, o, sink)
			return nil
		})
	}

	err = g.Wait()
	var rejected *orch.JoinRejectedError
	switch {
	case err == nil:
		ui.PrintSuccess("Left the room")
		return nil
	case errors.Is(err, orch.ErrKicked):
		return err
	case errors.As(err, &rejected):
		return fmt.Errorf("cannot join %s: %s", roomID, rejected.Message)
	default:
		return err
	}
}

// joinHooks prints room notifications and wires remote tracks to the sink.
func joinHooks(ctx context.Context, source *media.Source, sink *media.Sink) orch.Hooks {
	return orch.Hooks{
		OnRoomInfo: func(p protocol.RoomInfo) {
			role := "member"
			if p.IsHost {
				role = "host"
			}
			ui.PrintSuccessf("In room %s as %s, %d member(s)", p.RoomID, role, len(p.Members))
		},
		OnPeerJoined: func(p protocol.UserJoined) {
			ui.PrintEvent(ui.IconPeer, "%s joined (%s)", p.Nickname, p.Timezone)
		},
		OnPeerLeft: func(p protocol.UserLeft) {
			sink.Detach(domain.PeerID(p.PeerID))
			ui.PrintEvent(ui.IconPeer, "%s left", p.Nickname)
		},
		OnPeerFailed: func(peer domain.PeerID, reason error) {
			sink.Detach(peer)
			ui.PrintWarningf("Connection to %s lost: %v", peer, reason)
		},
		OnNewHost: func(p protocol.NewHost) {
			ui.PrintEvent(ui.IconHost, "%s is now the host", p.HostNickname)
		},
		OnRoomStatus: func(p protocol.RoomStatus) {
			state := "unlocked"
			if p.Locked {
				state = "locked"
			}
			ui.PrintEvent(ui.IconLock, "%s %s the room", p.HostNickname, state)
		},
		OnMuteAll: func(p protocol.HostNotice) {
			source.SetMuted(true)
			ui.PrintEvent(ui.IconMute, "%s muted everyone", p.HostNickname)
		},
		OnNudge: func(p protocol.HostNotice) {
			ui.PrintEvent(ui.IconNudge, "%s nudged everyone", p.HostNickname)
		},
		OnChat: func(p protocol.ChatOut) {
			ui.PrintEvent(ui.IconChat, "%s %s: %s", ui.MutedStyle.Render(p.Timestamp.Local().Format("15:04")), p.Nickname, p.Message)
		},
		OnError: func(p protocol.Error) {
			ui.PrintWarning(p.Message)
		},
		OnKicked: func(p protocol.Kicked) {
			ui.PrintWarningf("Kicked by %s: %s", p.HostNickname, p.Reason)
		},
		OnRemoteTrack: func(peer domain.PeerID, track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
			sink.Attach(ctx, peer, track.Kind().String(), media.TrackReader{Track: track})
		},
	}
}

func statusLoop(ctx context.Context, every time.Duration, o *orch.Orchestrator, sink *media.Sink) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			peers, err := o.Peers(ctx)
			if err != nil {
				log.Debug().Err(err).Str("module", "cmd.zloer").Msg("peer status")
				continue
			}
			stats := sink.Stats()
			rows := make([]ui.PeerRow, 0, len(peers))
			for _, p := range peers {
				st := stats[p.ID]
				rows = append(rows, ui.PeerRow{
					ID:       string(p.ID),
					Role:     p.Role.String(),
					Status:   p.Status.String(),
					Packets:  st.Packets,
					LastSeen: st.LastSeen,
				})
			}
			fmt.Println(ui.PeersView(rows, time.Now()))
		}
	}
}

func init() {
	f := joinCmd.Flags()
	f.StringP("nickname", "n", "zloer-bot", "Display name in the room")
	f.StringP("timezone", "z", "", "IANA timezone shown to others (default UTC)")
	f.StringSlice("ice", nil, "ICE server URLs (default Google STUN)")
	f.StringP("token", "t", "", "Join token when the server requires one")
	f.Bool("muted", false, "Start with the audio source muted")
	f.Duration("status", 0, "Print a peer table at this interval")
	f.Uint("udp-port-min", 0, "Lowest local UDP port for ICE")
	f.Uint("udp-port-max", 0, "Highest local UDP port for ICE")
	bindFlags(joinCmd, map[string]string{
		"nickname":     "nickname",
		"timezone":     "timezone",
		"ice":          "ice",
		"token":        "token",
		"muted":        "muted",
		"status":       "status",
		"udp_port_min": "udp-port-min",
		"udp_port_max": "udp-port-max",
	})
}
