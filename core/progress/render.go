package progress

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
)

func (a Action) label() string {
	if a == Uploading {
		return i18n.T(i18nk.BotMsgProgressUploading)
	}
	return i18n.T(i18nk.BotMsgProgressDownloading)
}

func formatETA(d time.Duration) string {
	if d < 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

// Render formats s as the text of a progress message.
func Render(s Snapshot) string {
	return i18n.T(i18nk.BotMsgProgressBody, map[string]any{
		"Action":  s.Action.label(),
		"Name":    s.Name,
		"Percent": strconv.Itoa(s.Percent),
		"Done":    humanize.IBytes(uint64(max(s.Done, 0))),
		"Total":   humanize.IBytes(uint64(max(s.Total, 0))),
		"Speed":   humanize.IBytes(uint64(max(s.Speed, 0))),
		"ETA":     formatETA(s.ETA),
	})
}

// MessageEmitter renders every snapshot and hands it to edit. Edit errors
// are logged and dropped.
func MessageEmitter(edit func(ctx context.Context, text string) error) Emitter {
	return func(ctx context.Context, s Snapshot) {
		if err := edit(ctx, Render(s)); err != nil {
			log.FromContext(ctx).Debug("Failed to edit progress message", "error", err)
		}
	}
}
