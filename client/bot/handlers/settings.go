package handlers

import (
	"errors"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/krau/RelayAny-Bot/core/prefs"
	"github.com/krau/RelayAny-Bot/core/session"
	"github.com/krau/RelayAny-Bot/pkg/enums/tier"
	"github.com/krau/RelayAny-Bot/pkg/tcbdata"
)

type promptAction struct {
	prompt session.Prompt
	text   i18nk.Key
}

var promptActions = map[string]promptAction{
	tcbdata.ActionSetChat:  {session.AwaitingTargetChat, i18nk.BotMsgPromptTargetChat},
	tcbdata.ActionRename:   {session.AwaitingRenameTag, i18nk.BotMsgPromptRenameTag},
	tcbdata.ActionCaption:  {session.AwaitingCaption, i18nk.BotMsgPromptCaption},
	tcbdata.ActionReplace:  {session.AwaitingReplacementRule, i18nk.BotMsgPromptReplacement},
	tcbdata.ActionDelete:   {session.AwaitingDeleteWords, i18nk.BotMsgPromptDeleteWords},
	tcbdata.ActionLogin:    {session.AwaitingCredentialString, i18nk.BotMsgPromptCredential},
	tcbdata.ActionSetThumb: {session.AwaitingThumbnailPhoto, i18nk.BotMsgPromptThumbnail},
}

func button(key i18nk.Key, action string) tg.KeyboardButtonClass {
	return &tg.KeyboardButtonCallback{
		Text: i18n.T(key),
		Data: tcbdata.Encode(tcbdata.TypeSettings, action),
	}
}

func settingsMarkup() *tg.ReplyInlineMarkup {
	row := func(buttons ...tg.KeyboardButtonClass) tg.KeyboardButtonRow {
		return tg.KeyboardButtonRow{Buttons: buttons}
	}
	return &tg.ReplyInlineMarkup{Rows: []tg.KeyboardButtonRow{
		row(button(i18nk.BotMsgSettingsBtnSetChat, tcbdata.ActionSetChat), button(i18nk.BotMsgSettingsBtnSetRename, tcbdata.ActionRename)),
		row(button(i18nk.BotMsgSettingsBtnSetCaption, tcbdata.ActionCaption), button(i18nk.BotMsgSettingsBtnSetReplace, tcbdata.ActionReplace)),
		row(button(i18nk.BotMsgSettingsBtnSetDelete, tcbdata.ActionDelete), button(i18nk.BotMsgSettingsBtnReset, tcbdata.ActionReset)),
		row(button(i18nk.BotMsgSettingsBtnLogin, tcbdata.ActionLogin), button(i18nk.BotMsgSettingsBtnLogout, tcbdata.ActionLogout)),
		row(button(i18nk.BotMsgSettingsBtnSetThumb, tcbdata.ActionSetThumb), button(i18nk.BotMsgSettingsBtnRemoveThumb, tcbdata.ActionRemoveThumb)),
		row(button(i18nk.BotMsgSettingsBtnUploadMethod, tcbdata.ActionUploadMethod)),
	}}
}

func tierMarkup() *tg.ReplyInlineMarkup {
	rows := make([]tg.KeyboardButtonRow, 0, len(tier.Values()))
	for _, t := range tier.Values() {
		rows = append(rows, tg.KeyboardButtonRow{Buttons: []tg.KeyboardButtonClass{
			&tg.KeyboardButtonCallback{
				Text: tier.GetDisplay(t, config.C().Lang),
				Data: tcbdata.Encode(tcbdata.TypeTier, t.String()),
			},
		}})
	}
	return &tg.ReplyInlineMarkup{Rows: rows}
}

func settingsText(p prefs.Preferences, hasSession bool) string {
	notSet := i18n.T(i18nk.BotMsgSettingsNotSet)
	target := notSet
	if !p.Target.IsZero() {
		target = p.Target.String()
	}
	tag := p.RenameTag
	if tag == "" {
		tag = notSet
	}
	sess := notSet
	if hasSession {
		sess = "✓"
	}
	return i18n.T(i18nk.BotMsgSettingsTitle, map[string]any{
		"Target":  target,
		"Tag":     tag,
		"Tier":    tier.GetDisplay(p.Tier, config.C().Lang),
		"Session": sess,
	})
}

func handleSettingsCmd(ctx *ext.Context, update *ext.Update) error {
	userID := update.GetUserChat().GetID()
	p, err := deps.Prefs.Get(ctx, userID)
	if err != nil {
		log.FromContext(ctx).Error("Failed to load preferences", "user", userID, "error", err)
		reply(ctx, update, i18nk.BotMsgCommonErrorInternal)
		return dispatcher.EndGroups
	}
	_, hasSession, err := deps.Prefs.Session(ctx, userID)
	if err != nil {
		log.FromContext(ctx).Warn("Failed to load session", "user", userID, "error", err)
	}
	ctx.Reply(update, ext.ReplyTextString(settingsText(p, hasSession)), &ext.ReplyOpts{Markup: settingsMarkup()})
	return dispatcher.EndGroups
}

func handleSettingsCallback(ctx *ext.Context, update *ext.Update) error {
	if !callbackAllowed(ctx, update) {
		return dispatcher.EndGroups
	}
	logger := log.FromContext(ctx)
	query := update.CallbackQuery
	userID := query.GetUserID()
	msgID := query.GetMsgID()
	_, args, ok := tcbdata.Decode(query.Data)
	if !ok || len(args) != 1 {
		ctx.AnswerCallback(alertAnswer(query.GetQueryID(), i18n.T(i18nk.BotMsgSettingsErrorInvalidCallback)))
		return dispatcher.EndGroups
	}
	action := args[0]

	if pa, ok := promptActions[action]; ok {
		deps.Prompts.Sessions().Begin(userID, pa.prompt)
		editText(ctx, userID, msgID, i18n.T(pa.text))
		return dispatcher.EndGroups
	}

	switch action {
	case tcbdata.ActionReset:
		if err := deps.Prefs.Reset(ctx, userID); err != nil {
			logger.Error("Failed to reset preferences", "user", userID, "error", err)
			editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgCommonErrorInternal))
			return dispatcher.EndGroups
		}
		deps.Prompts.Sessions().Clear(userID)
		editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgSettingsInfoReset))
	case tcbdata.ActionLogout:
		removed, err := deps.Prefs.RemoveSession(ctx, userID)
		if err != nil {
			logger.Error("Failed to remove session", "user", userID, "error", err)
			editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgCommonErrorInternal))
			return dispatcher.EndGroups
		}
		if deps.Pool != nil {
			deps.Pool.Drop(userID)
		}
		if !removed {
			editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgSettingsErrorNoSession))
			return dispatcher.EndGroups
		}
		editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgSettingsInfoLoggedOut))
	case tcbdata.ActionRemoveThumb:
		if _, err := deps.Prefs.RemoveThumbnail(ctx, userID); err != nil {
			logger.Error("Failed to remove thumbnail", "user", userID, "error", err)
			editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgCommonErrorInternal))
			return dispatcher.EndGroups
		}
		editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgSettingsInfoThumbRemoved))
	case tcbdata.ActionUploadMethod:
		p, err := deps.Prefs.Get(ctx, userID)
		if err != nil {
			logger.Error("Failed to load preferences", "user", userID, "error", err)
			editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgCommonErrorInternal))
			return dispatcher.EndGroups
		}
		editText(ctx, userID, msgID, i18n.T(i18nk.BotMsgSettingsUploadMethodTitle, map[string]any{
			"Current": tier.GetDisplay(p.Tier, config.C().Lang),
		}), tierMarkup())
	default:
		ctx.AnswerCallback(alertAnswer(query.GetQueryID(), i18n.T(i18nk.BotMsgSettingsErrorInvalidCallback)))
	}
	return dispatcher.EndGroups
}

func handleTierCallback(ctx *ext.Context, update *ext.Update) error {
	if !callbackAllowed(ctx, update) {
		return dispatcher.EndGroups
	}
	query := update.CallbackQuery
	userID := query.GetUserID()
	_, args, ok := tcbdata.Decode(query.Data)
	if !ok || len(args) != 1 {
		ctx.AnswerCallback(alertAnswer(query.GetQueryID(), i18n.T(i18nk.BotMsgSettingsErrorInvalidCallback)))
		return dispatcher.EndGroups
	}
	t, err := tier.Parse(args[0])
	if err != nil {
		ctx.AnswerCallback(alertAnswer(query.GetQueryID(), i18n.T(i18nk.BotMsgSettingsErrorInvalidCallback)))
		return dispatcher.EndGroups
	}
	if err := deps.Prefs.SetTier(ctx, userID, t); err != nil {
		if errors.Is(err, prefs.ErrNotEligible) {
			ctx.AnswerCallback(alertAnswer(query.GetQueryID(), i18n.T(i18nk.BotMsgSettingsErrorTierNotEligible)))
			return dispatcher.EndGroups
		}
		log.FromContext(ctx).Error("Failed to set tier", "user", userID, "error", err)
		ctx.AnswerCallback(alertAnswer(query.GetQueryID(), i18n.T(i18nk.BotMsgCommonErrorInternal)))
		return dispatcher.EndGroups
	}
	editText(ctx, userID, query.GetMsgID(), i18n.T(i18nk.BotMsgSettingsInfoTierSet, map[string]any{
		"Tier": tier.GetDisplay(t, config.C().Lang),
	}))
	return dispatcher.EndGroups
}
