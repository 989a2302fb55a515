package relay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/common/utils/fsutil"
	"github.com/krau/RelayAny-Bot/core/prefs"
	"github.com/krau/RelayAny-Bot/core/progress"
	"github.com/krau/RelayAny-Bot/core/transform"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
	"github.com/rs/xid"
)

type state int

const (
	stateResolving state = iota
	stateFetching
	stateClassifying
	stateShortCircuit
	stateDownloading
	stateTransforming
	stateUploading
	stateDone
)

var stateNames = [...]string{
	stateResolving:    "resolving",
	stateFetching:     "fetching",
	stateClassifying:  "classifying",
	stateShortCircuit: "short_circuit",
	stateDownloading:  "downloading",
	stateTransforming: "transforming",
	stateUploading:    "uploading",
	stateDone:         "done",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// transfer is the private state of one Relay call.
type transfer struct {
	id    string
	e     *Engine
	req   Request
	state state

	src    Source
	chatID int64
	item   media.Item
	prefs  prefs.Preferences
	target tfile.Target

	dir        string
	path       string
	caption    string
	progressID int

	once sync.Once
}

func newTransfer(e *Engine, req Request) *transfer {
	return &transfer{
		id:         xid.New().String(),
		e:          e,
		req:        req,
		progressID: req.NoticeID,
	}
}

func (t *transfer) run(ctx context.Context) error {
	if err := t.resolve(ctx); err != nil {
		return err
	}
	if err := t.fetch(ctx); err != nil {
		return err
	}
	done, err := t.classify(ctx)
	if err != nil || done {
		return err
	}
	if err := t.download(ctx); err != nil {
		return err
	}
	if err := t.transform(ctx); err != nil {
		return err
	}
	if err := t.upload(ctx); err != nil {
		return err
	}
	t.state = stateDone
	return nil
}

func (t *transfer) resolve(ctx context.Context) error {
	t.state = stateResolving
	link := t.req.Source()
	t.src = t.e.sourceFor(ctx, t.req.UserID)
	chatID, err := t.src.ResolveChat(ctx, link)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", link, err)
	}
	t.chatID = chatID
	protected, err := t.e.prefs.IsProtected(ctx, chatID)
	if err != nil {
		return err
	}
	if protected {
		return fmt.Errorf("%w: chat %d", relayerr.ErrProtectedSource, chatID)
	}
	return nil
}

func (t *transfer) fetch(ctx context.Context) error {
	t.state = stateFetching
	link := t.req.Source()
	var (
		item media.Item
		err  error
	)
	if link.IsStory() {
		item, err = t.src.FetchStory(ctx, t.chatID, link.StoryID)
	} else {
		item, err = t.src.FetchMessage(ctx, t.chatID, link.MessageID)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", link, err)
	}
	if item.Kind == media.Unknown {
		return fmt.Errorf("%w: %s has no relayable content", relayerr.ErrNotFound, link)
	}
	t.item = item
	log.FromContext(ctx).Debug("Fetched", "kind", item.Kind, "name", item.Name, "size", item.Size)
	return nil
}

// classify loads the user's preferences and relays textual and light
// content directly. done is true when nothing is left to download.
func (t *transfer) classify(ctx context.Context) (done bool, err error) {
	t.state = stateClassifying
	p, err := t.e.prefs.Get(ctx, t.req.UserID)
	if err != nil {
		return false, err
	}
	t.prefs = p
	t.target = p.TargetOr(t.req.ChatID)

	switch {
	case t.item.Kind.Textual():
		t.state = stateShortCircuit
		if _, err := t.e.worker.SendText(ctx, t.target, t.item.Text); err != nil {
			return true, fmt.Errorf("failed to relay text: %w", err)
		}
		t.e.sink.Text(ctx, t.item.Text)
		return true, nil
	case t.item.Kind.Light() && t.fetchedByWorker():
		t.state = stateShortCircuit
		caption, _ := transform.FormatCaption(t.item.Text, p.Rules())
		sent, err := t.e.worker.SendRemote(ctx, t.target, t.item, transform.MarkupToHTML(caption))
		if err != nil {
			return true, fmt.Errorf("failed to resend %s: %w", t.item.Kind, err)
		}
		t.e.sink.Mirror(ctx, sent)
		return true, nil
	}
	return false, nil
}

// fetchedByWorker reports whether the worker account read the item. File
// references are per account, so only then can it resend by reference.
func (t *transfer) fetchedByWorker() bool {
	return t.src == Source(t.e.worker)
}

func (t *transfer) download(ctx context.Context) error {
	t.state = stateDownloading
	t.dir = t.e.transferDir(t.id)
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	name := fsutil.NormalizePathname(t.item.Name)
	if name == "" {
		name = media.DefaultDocumentName
	}
	t.path = filepath.Join(t.dir, name)

	t.ensureProgressMessage(ctx)
	tracker := progress.New(progress.Downloading, name, t.emitter(), progress.WithInterval(t.e.progressInterval))
	if err := t.src.Download(ctx, t.item, t.path, tracker.Func(ctx)); err != nil {
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	if filepath.Ext(name) == "" {
		if ext := fsutil.DetectFileExt(t.path); ext != "" {
			if err := os.Rename(t.path, t.path+ext); err != nil {
				return fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
			}
			t.path += ext
		}
	}
	log.FromContext(ctx).Info("Downloaded", "path", t.path)
	return nil
}

func (t *transfer) transform(ctx context.Context) error {
	t.state = stateTransforming
	rules := t.prefs.Rules()
	path, err := transform.RenameFile(t.path, rules)
	if err != nil {
		return err
	}
	t.path = path
	caption, _ := transform.FormatCaption(t.item.Text, rules)
	t.caption = transform.MarkupToHTML(caption)
	return nil
}

func (t *transfer) upload(ctx context.Context) error {
	t.state = stateUploading
	ex := t.e.executor
	kind := outgoingKind(t.item, t.path)
	out, removeThumb, err := upload.Prepare(ctx, t.path, kind, t.caption, t.prefs.ThumbnailPath)
	defer removeThumb()
	if err != nil {
		return err
	}

	strategy := upload.Direct
	if kind != media.Photo {
		strategy = upload.Select(out.Size, t.prefs.Tier, ex.PrivilegedConfigured(), ex.Limits())
	}
	log.FromContext(ctx).Info("Uploading", "file", out.Name, "size", out.Size, "strategy", strategy)

	tracker := progress.New(progress.Uploading, out.Name, t.emitter(), progress.WithInterval(t.e.progressInterval))
	_, err = ex.Execute(ctx, strategy, upload.Job{
		Target:   t.target,
		File:     out,
		Progress: tracker.Func(ctx),
		Notice:   t.splitNotice,
	})
	if err != nil {
		return err
	}
	if strategy != upload.Split && t.e.archiver != nil {
		t.e.archiver.Archive(ctx, t.req.UserID, t.path)
	}
	return nil
}

// outgoingKind decides how the file is sent. Only a source photo is sent
// as a photo, image files of other kinds go out as documents. Voice notes
// and round videos keep their kind.
func outgoingKind(item media.Item, path string) media.Kind {
	kind := item.Kind
	if kind == media.Story && item.Inner != nil {
		kind = item.Inner.Kind
	}
	switch kind {
	case media.Photo, media.Voice, media.VideoNote:
		return kind
	}
	if ek := media.ExtKind(path); ek != media.Photo {
		return ek
	}
	return media.Document
}

func (t *transfer) userChat() tfile.Target {
	return tfile.Target{ChatID: t.req.ChatID}
}

func (t *transfer) ensureProgressMessage(ctx context.Context) {
	if t.progressID != 0 {
		return
	}
	sent, err := t.e.worker.SendText(ctx, t.userChat(), i18n.T(i18nk.BotMsgRelayInfoProcessing))
	if err != nil {
		log.FromContext(ctx).Debug("Failed to send progress message", "error", err)
		return
	}
	t.progressID = sent.MessageID
}

func (t *transfer) emitter() progress.Emitter {
	return progress.MessageEmitter(func(ctx context.Context, text string) error {
		if t.progressID == 0 {
			return nil
		}
		return t.e.worker.EditMessage(ctx, t.req.ChatID, t.progressID, text)
	})
}

func (t *transfer) splitNotice(ctx context.Context) func() {
	text := i18n.T(i18nk.BotMsgRelayInfoSplitting, map[string]any{
		"Limit": humanize.IBytes(uint64(t.e.executor.Limits().SizeLimit)),
	})
	sent, err := t.e.worker.SendText(ctx, t.userChat(), text)
	if err != nil {
		log.FromContext(ctx).Debug("Failed to send splitting notice", "error", err)
		return func() {}
	}
	return func() {
		if err := t.e.worker.DeleteMessages(context.WithoutCancel(ctx), t.req.ChatID, sent.MessageID); err != nil {
			log.FromContext(ctx).Debug("Failed to delete splitting notice", "error", err)
		}
	}
}

// cleanup removes the temp directory and the progress message. It runs
// once whatever state the transfer stopped in.
func (t *transfer) cleanup(ctx context.Context) {
	t.once.Do(func() {
		logger := log.FromContext(ctx)
		ctx := context.WithoutCancel(ctx)
		if t.dir != "" {
			if err := os.RemoveAll(t.dir); err != nil {
				logger.Warn("Failed to remove transfer directory", "dir", t.dir, "error", err)
			}
		}
		if t.progressID != 0 {
			if err := t.e.worker.DeleteMessages(ctx, t.req.ChatID, t.progressID); err != nil {
				logger.Debug("Failed to delete progress message", "error", err)
			}
		}
		runtime.GC()
		logger.Debug("Transfer cleaned up", "state", t.state)
	})
}
