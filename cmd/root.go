package cmd

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/cmd/relay"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "relayany-bot",
	Short:        "relayany-bot",
	SilenceUsage: true,
	RunE:         Run,
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.AddCommand(VersionCmd)
	rootCmd.AddCommand(upgradeCmd)
	relay.Register(rootCmd)
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.FromContext(ctx).Fatal("Command failed", "error", err)
	}
}
