package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/krau/RelayAny-Bot/pkg/consts"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Print the version number of relayany-bot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("relayany-bot version: %s %s/%s\nBuildTime: %s, Commit: %s\n",
			consts.Version, runtime.GOOS, runtime.GOARCH, consts.BuildTime, consts.GitCommit)
	},
}

var upgradeCmd = &cobra.Command{
	Use:     "upgrade",
	Aliases: []string{"up"},
	Short:   "Upgrade relayany-bot to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := semver.Parse(consts.Version)
		if err != nil {
			return fmt.Errorf("current version %q is not a release build: %w", consts.Version, err)
		}
		latest, err := selfupdate.UpdateSelf(v, consts.GitRepo)
		if err != nil {
			return fmt.Errorf("binary update failed: %w", err)
		}
		if latest.Version.Equals(v) {
			fmt.Println("Current binary is the latest version", consts.Version)
			return nil
		}
		fmt.Println("Successfully updated to version", latest.Version)
		fmt.Println("Release note:\n", latest.ReleaseNotes)
		return nil
	},
}
