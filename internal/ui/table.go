package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type RoomRow struct {
	ID      string
	Members int
	Locked  bool
}

// RoomsView renders the server room listing.
func RoomsView(rows []RoomRow, maxParticipants int) string {
	if len(rows) == 0 {
		return MutedStyle.Render("No active rooms")
	}
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		state := "open"
		if r.Locked {
			state = IconLock + " locked"
		} else if maxParticipants > 0 && r.Members >= maxParticipants {
			state = "full"
		}
		data = append(data, []string{
			r.ID,
			fmt.Sprintf("%d/%d", r.Members, maxParticipants),
			state,
		})
	}
	return render([]string{"Room", "Members", "State"}, data)
}

type PeerRow struct {
	ID       string
	Role     string
	Status   string
	Packets  uint64
	LastSeen time.Time
}

// PeersView renders the negotiation state of every remote peer.
func PeersView(rows []PeerRow, now time.Time) string {
	if len(rows) == 0 {
		return MutedStyle.Render("Alone in the room")
	}
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		seen := "-"
		if !r.LastSeen.IsZero() {
			seen = now.Sub(r.LastSeen).Truncate(time.Second).String() + " ago"
		}
		data = append(data, []string{r.ID, r.Role, r.Status, strconv.FormatUint(r.Packets, 10), seen})
	}
	return render([]string{"Peer", "Role", "Status", "Packets", "Last packet"}, data)
}

func render(headers []string, rows [][]string) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})
	return tbl.Render()
}
