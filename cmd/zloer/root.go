package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dkeye/Zloer/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// v holds flag values overridable by ZLOER_* environment variables.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "zloer",
	Short: "Headless participant for Zloer voice rooms",
	Long: `zloer joins a Zloer room as a regular participant: it negotiates a
WebRTC connection with every other member, sends a silent Opus track and
counts what it receives. It also lists rooms and issues join tokens.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(v.GetString("log_level"))
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}

func initLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	return nil
}

func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func init() {
	v.SetEnvPrefix("ZLOER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.StringP("server", "s", "http://localhost:3000", "Signaling server base URL")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	for key, flag := range map[string]string{"server": "server", "log_level": "log-level"} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(joinCmd, roomsCmd, tokenCmd)
}
