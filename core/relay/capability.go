// Package relay moves one referenced message or story to the user's target
// chat.
package relay

import (
	"context"

	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

// Source reads content. Implementations return errors wrapping the
// relayerr sentinels when the platform refuses.
type Source interface {
	// ResolveChat returns the marked chat id the link points into.
	ResolveChat(ctx context.Context, link tgutil.MessageLink) (int64, error)
	FetchMessage(ctx context.Context, chatID int64, msgID int) (media.Item, error)
	FetchStory(ctx context.Context, chatID int64, storyID int) (media.Item, error)
	Download(ctx context.Context, item media.Item, dest string, progress upload.ProgressFunc) error
}

// Sender delivers content and manages interstitial messages.
type Sender interface {
	upload.Uploader
	SendText(ctx context.Context, to tfile.Target, text string) (tfile.Sent, error)
	// SendRemote re-sends the media of item by reference, without a local copy.
	SendRemote(ctx context.Context, to tfile.Target, item media.Item, caption string) (tfile.Sent, error)
	Forward(ctx context.Context, to tfile.Target, fromChatID int64, msgIDs ...int) error
	EditMessage(ctx context.Context, chatID int64, msgID int, text string) error
	DeleteMessages(ctx context.Context, chatID int64, msgIDs ...int) error
}

// Capability is the worker account: it can both read and send.
type Capability interface {
	Source
	Sender
}

// SourceFunc picks the reader for a user, typically a client logged in with
// the user's own session. ok is false to fall back to the worker account.
type SourceFunc func(ctx context.Context, userID int64) (src Source, ok bool)

// Archiver copies a delivered file to the configured storages. It must not
// fail the transfer.
type Archiver interface {
	Archive(ctx context.Context, userID int64, localPath string)
}
