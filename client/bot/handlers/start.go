package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
)

// handleStartCmd drops any prompt the user left open, then shows the help.
func handleStartCmd(ctx *ext.Context, update *ext.Update) error {
	deps.Prompts.Sessions().Clear(update.GetUserChat().GetID())
	return handleHelpCmd(ctx, update)
}

func handleHelpCmd(ctx *ext.Context, update *ext.Update) error {
	reply(ctx, update, i18nk.BotMsgStartHelpText, map[string]any{"Version": deps.Version})
	return dispatcher.EndGroups
}
