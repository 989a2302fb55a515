package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/common/utils/strutil"
	"github.com/krau/RelayAny-Bot/core/prefs"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

var replacementRegexp = regexp.MustCompile(`^'(.+)' '(.+)'$`)

// Store is the subset of the preference store the prompts write to.
type Store interface {
	SetTarget(ctx context.Context, userID int64, target tfile.Target) error
	SetRenameTag(ctx context.Context, userID int64, tag string) error
	SetCaption(ctx context.Context, userID int64, caption string) error
	AddReplacement(ctx context.Context, userID int64, old, repl string) error
	AddDeleteWords(ctx context.Context, userID int64, words []string) ([]string, error)
	SaveSession(ctx context.Context, userID int64, session string) (time.Time, error)
	SaveThumbnail(ctx context.Context, userID int64, fetch prefs.FetchFunc) (string, error)
}

// ChatResolver turns "@username" input into a chat id.
type ChatResolver func(ctx context.Context, username string) (int64, error)

// Input is one incoming message. Photo is nil unless the message carries a
// photo, in which case it downloads the image to the given path.
type Input struct {
	Text  string
	Photo prefs.FetchFunc
}

// Result is the reply for a consumed input. Handled is false when the user
// had no live prompt, and the message should be treated normally. Expired
// marks a prompt that timed out before this input; Key then holds the
// expiry notice.
type Result struct {
	Handled bool
	Expired bool
	Prompt  Prompt
	Key     i18nk.Key
	Data    map[string]any
}

type Handler struct {
	sessions *Manager
	store    Store
	resolve  ChatResolver
}

func NewHandler(sessions *Manager, store Store, resolve ChatResolver) *Handler {
	return &Handler{sessions: sessions, store: store, resolve: resolve}
}

func (h *Handler) Sessions() *Manager {
	return h.sessions
}

// Handle interprets in for the user's pending prompt. The prompt is
// cleared whatever the outcome.
func (h *Handler) Handle(ctx context.Context, userID int64, in Input) (Result, error) {
	p, expired := h.sessions.Take(userID)
	if expired {
		return Result{Expired: true, Key: i18nk.BotMsgCommonErrorPromptExpired}, nil
	}
	if p == None {
		return Result{}, nil
	}
	logger := log.FromContext(ctx).WithPrefix(fmt.Sprintf("session[%d]", userID))
	res, err := h.handle(ctx, userID, p, in)
	res.Handled = true
	res.Prompt = p
	if err != nil {
		logger.Warn("Prompt input rejected", "prompt", p, "err", err)
	}
	return res, err
}

func (h *Handler) handle(ctx context.Context, userID int64, p Prompt, in Input) (Result, error) {
	text := strings.TrimSpace(in.Text)
	switch p {
	case AwaitingTargetChat:
		target, err := h.parseTarget(ctx, text)
		if err != nil {
			return reply(i18nk.BotMsgPromptErrorTargetInvalid, "Input", text), err
		}
		if err := h.store.SetTarget(ctx, userID, target); err != nil {
			return saveFailed(err)
		}
		return reply(i18nk.BotMsgPromptInfoTargetSet, "Target", target.String()), nil
	case AwaitingRenameTag:
		if text == "" {
			return emptyInput()
		}
		if err := h.store.SetRenameTag(ctx, userID, text); err != nil {
			return saveFailed(err)
		}
		return reply(i18nk.BotMsgPromptInfoRenameSet, "Tag", text), nil
	case AwaitingCaption:
		if text == "" {
			return emptyInput()
		}
		if err := h.store.SetCaption(ctx, userID, in.Text); err != nil {
			return saveFailed(err)
		}
		return reply(i18nk.BotMsgPromptInfoCaptionSet), nil
	case AwaitingReplacementRule:
		old, repl, err := ParseReplacement(text)
		if err != nil {
			return reply(i18nk.BotMsgPromptErrorReplaceInvalid), err
		}
		if err := h.store.AddReplacement(ctx, userID, old, repl); err != nil {
			if errors.Is(err, prefs.ErrReplaceConflict) {
				return reply(i18nk.BotMsgPromptErrorReplaceConflict, "Word", old), err
			}
			return saveFailed(err)
		}
		return reply(i18nk.BotMsgPromptInfoReplaceSet, "Old", old, "New", repl), nil
	case AwaitingDeleteWords:
		words := strutil.SplitWords(text)
		if len(words) == 0 {
			return emptyInput()
		}
		all, err := h.store.AddDeleteWords(ctx, userID, words)
		if err != nil {
			return saveFailed(err)
		}
		return reply(i18nk.BotMsgPromptInfoDeleteSet, "Words", strings.Join(all, " ")), nil
	case AwaitingCredentialString:
		if text == "" {
			return emptyInput()
		}
		expiresAt, err := h.store.SaveSession(ctx, userID, text)
		if err != nil {
			return saveFailed(err)
		}
		return reply(i18nk.BotMsgPromptInfoCredentialSaved, "ExpiresAt", expiresAt.Format(time.DateTime)), nil
	case AwaitingThumbnailPhoto:
		if in.Photo == nil {
			return reply(i18nk.BotMsgPromptErrorNotPhoto), fmt.Errorf("%w: thumbnail input is not a photo", relayerr.ErrValidation)
		}
		if _, err := h.store.SaveThumbnail(ctx, userID, in.Photo); err != nil {
			return saveFailed(err)
		}
		return reply(i18nk.BotMsgPromptInfoThumbSet), nil
	}
	return Result{}, fmt.Errorf("unknown prompt %d", p)
}

func (h *Handler) parseTarget(ctx context.Context, text string) (tfile.Target, error) {
	if strings.HasPrefix(text, "@") && h.resolve != nil {
		name, topic, hasTopic := strings.Cut(text, "/")
		chatID, err := h.resolve(ctx, strings.TrimPrefix(name, "@"))
		if err != nil {
			return tfile.Target{}, fmt.Errorf("%w: %w", relayerr.ErrValidation, err)
		}
		text = fmt.Sprint(chatID)
		if hasTopic {
			text += "/" + topic
		}
	}
	t, err := tfile.ParseTarget(text)
	if err != nil {
		return tfile.Target{}, fmt.Errorf("%w: %w", relayerr.ErrValidation, err)
	}
	return t, nil
}

// ParseReplacement parses the 'OLD' 'NEW' rule grammar.
func ParseReplacement(s string) (old, repl string, err error) {
	m := replacementRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", fmt.Errorf("%w: replacement must be 'OLD' 'NEW'", relayerr.ErrValidation)
	}
	return m[1], m[2], nil
}

func reply(key i18nk.Key, kv ...any) Result {
	r := Result{Key: key}
	if len(kv) > 0 {
		r.Data = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			r.Data[kv[i].(string)] = kv[i+1]
		}
	}
	return r
}

func emptyInput() (Result, error) {
	return reply(i18nk.BotMsgPromptErrorEmptyInput), fmt.Errorf("%w: empty input", relayerr.ErrValidation)
}

func saveFailed(err error) (Result, error) {
	return reply(i18nk.BotMsgPromptErrorSaveFailed, "Error", err.Error()), err
}
