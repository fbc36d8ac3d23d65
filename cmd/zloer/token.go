package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Zloer/internal/auth"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a join token for a server started with JOIN_SECRET",
	Long: `Issue an HS256 join token. Without --room the token admits to any room.

Examples:
  ZLOER_JOIN_SECRET=s3cret zloer token --room ABC12 --ttl 2h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := v.GetString("join_secret")
		if secret == "" {
			return errors.New("join secret is required (--secret or ZLOER_JOIN_SECRET)")
		}
		room := v.GetString("room")
		if room != "" {
			id, err := domain.ParseRoomID(room)
			if err != nil {
				return err
			}
			room = string(id)
		}
		subject := v.GetString("subject")
		if subject == "" {
			subject = uuid.NewString()
		}
		raw, err := auth.Issue(secret, subject, room, v.GetDuration("ttl"))
		if err != nil {
			return err
		}
		fmt.Println(raw)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.String("secret", "", "Shared join secret")
	f.String("room", "", "Restrict the token to one room")
	f.String("subject", "", "Token subject (default random)")
	f.Duration("ttl", time.Hour, "Token lifetime")
	bindFlags(tokenCmd, map[string]string{
		"join_secret": "secret",
		"room":        "room",
		"subject":     "subject",
		"ttl":         "ttl",
	})
}
