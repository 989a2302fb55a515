package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/validator"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
)

// lockTarget accepts a chat id, a username or a message link.
func lockTarget(ctx *ext.Context, arg string) (int64, error) {
	if validator.IsIntStr(arg) {
		return strconv.ParseInt(arg, 10, 64)
	}
	link, err := tgutil.ParseMessageLink(arg)
	if err != nil {
		link = tgutil.MessageLink{Username: strings.TrimPrefix(arg, "@")}
	}
	return deps.Worker.ResolveChat(ctx, link)
}

func handleLockCmd(ctx *ext.Context, update *ext.Update) error {
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) != 1 {
		reply(ctx, update, i18nk.BotMsgLockUsage)
		return dispatcher.EndGroups
	}
	chatID, err := lockTarget(ctx, args[0])
	if err != nil || chatID == 0 {
		log.FromContext(ctx).Debug("Invalid lock target", "arg", args[0], "error", err)
		reply(ctx, update, i18nk.BotMsgLockUsage)
		return dispatcher.EndGroups
	}
	if err := deps.Prefs.AddProtected(ctx, chatID); err != nil {
		log.FromContext(ctx).Error("Failed to protect chat", "chat", chatID, "error", err)
		reply(ctx, update, i18nk.BotMsgCommonErrorInternal)
		return dispatcher.EndGroups
	}
	reply(ctx, update, i18nk.BotMsgLockInfoLocked, map[string]any{"ChatID": chatID})
	return dispatcher.EndGroups
}

func handleAddPremiumCmd(ctx *ext.Context, update *ext.Update) error {
	userID, d, err := parsePremiumArgs(commandArgs(update.EffectiveMessage.Text))
	if err != nil {
		reply(ctx, update, i18nk.BotMsgPremiumAddUsage)
		return dispatcher.EndGroups
	}
	expiresAt, err := deps.Prefs.GrantPremium(ctx, userID, d)
	if err != nil {
		log.FromContext(ctx).Error("Failed to grant premium", "user", userID, "error", err)
		reply(ctx, update, i18nk.BotMsgCommonErrorInternal)
		return dispatcher.EndGroups
	}
	reply(ctx, update, i18nk.BotMsgPremiumInfoAdded, map[string]any{
		"UserID":    userID,
		"ExpiresAt": expiresAt.Format(time.DateTime),
	})
	return dispatcher.EndGroups
}

func handleRemPremiumCmd(ctx *ext.Context, update *ext.Update) error {
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) != 1 {
		reply(ctx, update, i18nk.BotMsgPremiumRemoveUsage)
		return dispatcher.EndGroups
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		reply(ctx, update, i18nk.BotMsgPremiumRemoveUsage)
		return dispatcher.EndGroups
	}
	if err := deps.Prefs.RevokePremium(ctx, userID); err != nil {
		log.FromContext(ctx).Error("Failed to revoke premium", "user", userID, "error", err)
		reply(ctx, update, i18nk.BotMsgCommonErrorInternal)
		return dispatcher.EndGroups
	}
	reply(ctx, update, i18nk.BotMsgPremiumInfoRemoved, map[string]any{"UserID": userID})
	return dispatcher.EndGroups
}
