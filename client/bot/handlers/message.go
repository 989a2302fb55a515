package handlers

import (
	"context"
	"fmt"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/core/session"
	"github.com/krau/RelayAny-Bot/pkg/media"
)

// answerPrompt feeds in to the user's pending prompt. handled is false
// when there was none or it had expired; an expired prompt is reported and
// the message is then processed as usual.
func answerPrompt(ctx *ext.Context, update *ext.Update, in session.Input) (handled bool) {
	userID := update.GetUserChat().GetID()
	res, err := deps.Prompts.Handle(ctx, userID, in)
	if res.Expired {
		reply(ctx, update, res.Key, res.Data)
	}
	if !res.Handled {
		return false
	}
	if err != nil {
		log.FromContext(ctx).Debug("Prompt answered with error", "user", userID, "prompt", res.Prompt, "error", err)
	}
	if res.Key != "" {
		reply(ctx, update, res.Key, res.Data)
	}
	return true
}

func handleTextMessage(ctx *ext.Context, update *ext.Update) error {
	text := update.EffectiveMessage.Text
	if answerPrompt(ctx, update, session.Input{Text: text}) {
		return dispatcher.EndGroups
	}
	links := findLinks(text)
	if len(links) == 0 {
		reply(ctx, update, i18nk.BotMsgCommonErrorInvalidLink)
		return dispatcher.EndGroups
	}
	return handleLinks(ctx, update, links)
}

// handleMediaMessage only matters while a thumbnail prompt is pending. A
// caption with links is relayed like text.
func handleMediaMessage(ctx *ext.Context, update *ext.Update) error {
	msg := update.EffectiveMessage
	in := session.Input{Text: msg.Text}
	if _, ok := msg.Media.(*tg.MessageMediaPhoto); ok {
		item := media.Classify(msg.Message)
		in.Photo = func(fctx context.Context, path string) error {
			if item.Kind != media.Photo {
				return fmt.Errorf("message %d has no photo", msg.ID)
			}
			return deps.Worker.Download(fctx, item, path, nil)
		}
	}
	if answerPrompt(ctx, update, in) {
		return dispatcher.EndGroups
	}
	if links := findLinks(msg.Text); len(links) > 0 {
		return handleLinks(ctx, update, links)
	}
	return dispatcher.EndGroups
}
