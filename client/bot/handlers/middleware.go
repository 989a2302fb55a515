package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/config"
)

func checkPermission(ctx *ext.Context, update *ext.Update) error {
	userID := update.GetUserChat().GetID()
	if !config.C().IsAllowed(userID) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorNotAllowed)), nil)
		return dispatcher.EndGroups
	}
	return dispatcher.ContinueGroups
}

func ownerOnly(next func(*ext.Context, *ext.Update) error) func(*ext.Context, *ext.Update) error {
	return func(ctx *ext.Context, update *ext.Update) error {
		if !config.C().IsOwner(update.GetUserChat().GetID()) {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorOwnerOnly)), nil)
			return dispatcher.EndGroups
		}
		return next(ctx, update)
	}
}

// callbackAllowed answers the query with an alert when the user is not on
// the allowlist.
func callbackAllowed(ctx *ext.Context, update *ext.Update) bool {
	if config.C().IsAllowed(update.CallbackQuery.GetUserID()) {
		return true
	}
	ctx.AnswerCallback(alertAnswer(update.CallbackQuery.GetQueryID(), i18n.T(i18nk.BotMsgCommonErrorNotAllowed)))
	return false
}

func alertAnswer(queryID int64, text string) *tg.MessagesSetBotCallbackAnswerRequest {
	return &tg.MessagesSetBotCallbackAnswerRequest{
		QueryID:   queryID,
		Alert:     true,
		Message:   text,
		CacheTime: 5,
	}
}

func reply(ctx *ext.Context, update *ext.Update, key i18nk.Key, data ...map[string]any) {
	ctx.Reply(update, ext.ReplyTextString(i18n.T(key, data...)), nil)
}

func editText(ctx *ext.Context, chatID int64, msgID int, text string, markup ...tg.ReplyMarkupClass) {
	req := &tg.MessagesEditMessageRequest{ID: msgID, Message: text}
	if len(markup) > 0 {
		req.ReplyMarkup = markup[0]
	}
	if _, err := ctx.EditMessage(chatID, req); err != nil {
		log.FromContext(ctx).Debug("Failed to edit message", "msg", msgID, "error", err)
	}
}
