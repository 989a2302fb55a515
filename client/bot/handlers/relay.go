package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/relay"
)

// handleLinks queues one relay per message link in the text. Each gets a
// notice that later turns into its progress message.
func handleLinks(ctx *ext.Context, update *ext.Update, links []tgutil.MessageLink) error {
	logger := log.FromContext(ctx)
	userID := update.GetUserChat().GetID()
	chatID := update.EffectiveChat().GetID()
	for _, link := range links {
		notice, err := ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgRelayInfoProcessing)), nil)
		noticeID := 0
		if err != nil {
			logger.Warn("Failed to send relay notice", "error", err)
		} else {
			noticeID = notice.ID
		}
		id, err := deps.Core.Enqueue(deps.Ctx, relay.Request{
			UserID:   userID,
			ChatID:   chatID,
			Link:     link,
			NoticeID: noticeID,
		})
		if err != nil {
			logger.Error("Failed to queue relay", "link", link, "error", err)
			reply(ctx, update, i18nk.BotMsgCommonErrorQueueFailed, map[string]any{"Error": err.Error()})
			continue
		}
		logger.Info("Relay queued", "id", id, "user", userID, "link", link)
		if noticeID != 0 {
			editText(ctx, chatID, noticeID, i18n.T(i18nk.BotMsgCommonInfoQueued, map[string]any{"ID": id}))
		}
	}
	return dispatcher.EndGroups
}

func handleBatchCmd(ctx *ext.Context, update *ext.Update) error {
	link, count, err := parseBatchArgs(commandArgs(update.EffectiveMessage.Text), deps.BatchMax)
	if err != nil {
		reply(ctx, update, i18nk.BotMsgBatchUsage, map[string]any{"Max": deps.BatchMax})
		return dispatcher.EndGroups
	}
	userID := update.GetUserChat().GetID()
	chatID := update.EffectiveChat().GetID()
	queued := 0
	for i := range count {
		_, err := deps.Core.Enqueue(deps.Ctx, relay.Request{
			UserID: userID,
			ChatID: chatID,
			Link:   link,
			Offset: i,
		})
		if err != nil {
			log.FromContext(ctx).Error("Failed to queue batch relay", "offset", i, "error", err)
			reply(ctx, update, i18nk.BotMsgCommonErrorQueueFailed, map[string]any{"Error": err.Error()})
			break
		}
		queued++
	}
	if queued > 0 {
		reply(ctx, update, i18nk.BotMsgBatchInfoQueued, map[string]any{"Count": queued})
	}
	return dispatcher.EndGroups
}

func handleCancelCmd(ctx *ext.Context, update *ext.Update) error {
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) != 1 {
		reply(ctx, update, i18nk.BotMsgCancelUsage)
		return dispatcher.EndGroups
	}
	id := args[0]
	if err := deps.Core.Cancel(id); err != nil {
		reply(ctx, update, i18nk.BotMsgCancelErrorFailed, map[string]any{"ID": id, "Error": err.Error()})
		return dispatcher.EndGroups
	}
	reply(ctx, update, i18nk.BotMsgCancelInfoDone, map[string]any{"ID": id})
	return dispatcher.EndGroups
}
