package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dkeye/Zloer/internal/core"
	"github.com/dkeye/Zloer/internal/ui"
	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List active rooms on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listing, err := fetchRooms(cmd.Context(), http.DefaultClient, v.GetString("server"))
		if err != nil {
			return err
		}
		rows := make([]ui.RoomRow, 0, len(listing.Rooms))
		for _, r := range listing.Rooms {
			rows = append(rows, ui.RoomRow{ID: string(r.ID), Members: r.MemberCount, Locked: r.Locked})
		}
		fmt.Println(ui.TitleStyle.Render(fmt.Sprintf("%s Rooms on %s", ui.IconRoom, v.GetString("server"))))
		fmt.Println(ui.RoomsView(rows, listing.MaxParticipants))
		return nil
	},
}

type roomListing struct {
	MaxParticipants int             `json:"maxParticipants"`
	Rooms           []core.RoomInfo `json:"rooms"`
}

func fetchRooms(ctx context.Context, hc *http.Client, server string) (*roomListing, error) {
	endpoint, err := roomsURL(server)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list rooms: server answered %s", resp.Status)
	}
	var out roomListing
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("list rooms: decode: %w", err)
	}
	return &out, nil
}
