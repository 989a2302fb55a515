package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/pkg/tcbdata"
)

type DescCommandHandler struct {
	Cmd     string
	Desc    i18nk.Key
	handler func(ctx *ext.Context, u *ext.Update) error
}

var CommandHandlers = []DescCommandHandler{
	{"start", i18nk.BotMsgCmdStart, handleStartCmd},
	{"help", i18nk.BotMsgCmdHelp, handleHelpCmd},
	{"settings", i18nk.BotMsgCmdSettings, handleSettingsCmd},
	{"batch", i18nk.BotMsgCmdBatch, handleBatchCmd},
	{"cancel", i18nk.BotMsgCmdCancel, handleCancelCmd},
	{"lock", i18nk.BotMsgCmdLock, ownerOnly(handleLockCmd)},
	{"addpremium", i18nk.BotMsgCmdAddPremium, ownerOnly(handleAddPremiumCmd)},
	{"rempremium", i18nk.BotMsgCmdRemPremium, ownerOnly(handleRemPremiumCmd)},
}

func Register(disp dispatcher.Dispatcher, d *Deps) {
	deps = d
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChannel), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChat), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewMessage(filters.Message.All, checkPermission))
	for _, info := range CommandHandlers {
		disp.AddHandler(handlers.NewCommand(info.Cmd, info.handler))
	}
	disp.AddHandler(handlers.NewCallbackQuery(filters.CallbackQuery.Prefix(tcbdata.TypeSettings), handleSettingsCallback))
	disp.AddHandler(handlers.NewCallbackQuery(filters.CallbackQuery.Prefix(tcbdata.TypeTier), handleTierCallback))
	disp.AddHandler(handlers.NewMessage(filters.Message.Media, handleMediaMessage))
	disp.AddHandler(handlers.NewMessage(filters.Message.Text, handleTextMessage))
}
