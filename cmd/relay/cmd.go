package relay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/client/tgcap"
	"github.com/krau/RelayAny-Bot/client/user"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/utils/fsutil"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/enums/tier"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "relay one message through the userbot",
	RunE:  Relay,
}

func Register(root *cobra.Command) {
	relayCmd.Flags().StringP("config", "c", "", "config file path")
	relayCmd.Flags().StringP("link", "l", "", "message or story link to relay")
	relayCmd.MarkFlagRequired("link")
	relayCmd.Flags().StringP("to", "t", "", "target chat: <chat>[/<topic>] or @username, default is Saved Messages")
	relayCmd.Flags().Bool("no-progress", false, "disable progress bar")
	root.AddCommand(relayCmd)
}

func Relay(cmd *cobra.Command, args []string) error {
	rawLink, err := cmd.Flags().GetString("link")
	if err != nil {
		return err
	}
	rawTarget, err := cmd.Flags().GetString("to")
	if err != nil {
		return err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := log.FromContext(ctx)
	if err := config.Init(ctx, config.GetConfigFile(cmd)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.C()
	i18n.Init(cfg.Lang)

	link, err := tgutil.ParseMessageLink(rawLink)
	if err != nil {
		return err
	}

	client, err := user.Login(ctx)
	if err != nil {
		return err
	}
	defer client.Stop()
	tc := user.Capability(client)

	target, err := parseTarget(ctx, tc, rawTarget)
	if err != nil {
		return err
	}
	chatID, err := tc.ResolveChat(ctx, link)
	if err != nil {
		return err
	}
	var item media.Item
	if link.IsStory() {
		item, err = tc.FetchStory(ctx, chatID, link.StoryID)
	} else {
		item, err = tc.FetchMessage(ctx, chatID, link.MessageID)
	}
	if err != nil {
		return err
	}
	if item.Inner != nil {
		item = *item.Inner
	}
	logger.Info("Relaying...", "link", link, "kind", item.Kind, "to", target)

	switch {
	case item.Kind.Textual():
		_, err = tc.SendText(ctx, target, item.Text)
		return err
	case item.Kind.Light():
		_, err = tc.SendRemote(ctx, target, item, item.Text)
		return err
	case !item.HasFile():
		return fmt.Errorf("%w: message has nothing to relay", relayerr.ErrNotFound)
	}

	var ui *RelayProgress
	if !noProgress {
		ui = NewRelayProgress(ctx, item.Name)
		ui.Start()
	}
	if err := transfer(ctx, tc, item, target, ui); err != nil {
		if ui != nil {
			ui.SetError(err)
			ui.Wait()
		}
		return err
	}
	if ui != nil {
		ui.Done()
		ui.Wait()
	}
	logger.Info("Relay completed")
	return nil
}

func transfer(ctx context.Context, tc *tgcap.Client, item media.Item, target tfile.Target, ui *RelayProgress) error {
	dir := config.C().Temp.BasePath
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	local := filepath.Join(dir, xid.New().String()+"_"+fsutil.NormalizePathname(item.Name))
	defer os.Remove(local)

	if err := tc.Download(ctx, item, local, ui.Stage(stageDownload)); err != nil {
		return err
	}
	out, cleanup, err := upload.Prepare(ctx, local, item.Kind, item.Text, "")
	if err != nil {
		return err
	}
	defer cleanup()
	out.Name = item.Name

	limits := upload.Limits{SizeLimit: config.C().Relay.SizeLimit, PartSize: config.C().Relay.PartSize}
	executor := upload.NewExecutor(tc, upload.WithLimits(limits))
	strategy := upload.Select(out.Size, tier.Standard, false, executor.Limits())
	_, err = executor.Execute(ctx, strategy, upload.Job{
		Target:   target,
		File:     out,
		Progress: ui.Stage(stageUpload),
	})
	return err
}

func parseTarget(ctx context.Context, tc *tgcap.Client, raw string) (tfile.Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		self := tc.Self()
		if self == nil {
			return tfile.Target{}, errors.New("userbot has no account info")
		}
		return tfile.Target{ChatID: self.ID}, nil
	}
	if username, ok := strings.CutPrefix(raw, "@"); ok {
		chatID, err := tc.ResolveChat(ctx, tgutil.MessageLink{Username: username})
		if err != nil {
			return tfile.Target{}, err
		}
		return tfile.Target{ChatID: chatID}, nil
	}
	return tfile.ParseTarget(raw)
}
