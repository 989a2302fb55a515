package i18nk

type Key string

// Process lifecycle
const (
	Initing               Key = "initing"
	Exiting               Key = "exiting"
	CleaningCache         Key = "cleaning_cache"
	InvalidCacheDir       Key = "invalid_cache_dir"
	GetWorkdirFailed      Key = "get_workdir_failed"
	GetCacheAbsPathFailed Key = "get_cache_abs_path_failed"
)

// Common replies
const (
	BotMsgStartHelpText            Key = "bot.msg.start.help_text"
	BotMsgCommonErrorNotAllowed    Key = "bot.msg.common.error.not_allowed"
	BotMsgCommonErrorOwnerOnly     Key = "bot.msg.common.error.owner_only"
	BotMsgCommonErrorInternal      Key = "bot.msg.common.error.internal"
	BotMsgCommonInfoQueued         Key = "bot.msg.common.info.queued"
	BotMsgCommonErrorQueueFailed   Key = "bot.msg.common.error.queue_failed"
	BotMsgCommonErrorInvalidLink   Key = "bot.msg.common.error.invalid_link"
	BotMsgCommonErrorPromptExpired Key = "bot.msg.common.error.prompt_expired"
)

// Command descriptions
const (
	BotMsgCmdStart      Key = "bot.msg.cmd.start"
	BotMsgCmdHelp       Key = "bot.msg.cmd.help"
	BotMsgCmdSettings   Key = "bot.msg.cmd.settings"
	BotMsgCmdBatch      Key = "bot.msg.cmd.batch"
	BotMsgCmdCancel     Key = "bot.msg.cmd.cancel"
	BotMsgCmdLock       Key = "bot.msg.cmd.lock"
	BotMsgCmdAddPremium Key = "bot.msg.cmd.addpremium"
	BotMsgCmdRemPremium Key = "bot.msg.cmd.rempremium"
)

// Relay notices
const (
	BotMsgRelayInfoProcessing             Key = "bot.msg.relay.info.processing"
	BotMsgRelayInfoSplitting              Key = "bot.msg.relay.info.splitting"
	BotMsgRelayErrorProtectedSource       Key = "bot.msg.relay.error.protected_source"
	BotMsgRelayErrorAccessDenied          Key = "bot.msg.relay.error.access_denied"
	BotMsgRelayErrorRateLimited           Key = "bot.msg.relay.error.rate_limited"
	BotMsgRelayErrorCapabilityUnavailable Key = "bot.msg.relay.error.capability_unavailable"
	BotMsgRelayErrorValidation            Key = "bot.msg.relay.error.validation"
	BotMsgRelayLogFailure                 Key = "bot.msg.relay.log.failure"
)

// Progress
const (
	BotMsgProgressDownloading Key = "bot.msg.progress.downloading"
	BotMsgProgressUploading   Key = "bot.msg.progress.uploading"
	BotMsgProgressBody        Key = "bot.msg.progress.body"
)

// Settings panel
const (
	BotMsgSettingsTitle                Key = "bot.msg.settings.title"
	BotMsgSettingsBtnSetChat           Key = "bot.msg.settings.btn.set_chat"
	BotMsgSettingsBtnSetRename         Key = "bot.msg.settings.btn.set_rename"
	BotMsgSettingsBtnSetCaption        Key = "bot.msg.settings.btn.set_caption"
	BotMsgSettingsBtnSetReplace        Key = "bot.msg.settings.btn.set_replace"
	BotMsgSettingsBtnSetDelete         Key = "bot.msg.settings.btn.set_delete"
	BotMsgSettingsBtnReset             Key = "bot.msg.settings.btn.reset"
	BotMsgSettingsBtnLogin             Key = "bot.msg.settings.btn.login"
	BotMsgSettingsBtnLogout            Key = "bot.msg.settings.btn.logout"
	BotMsgSettingsBtnSetThumb          Key = "bot.msg.settings.btn.set_thumb"
	BotMsgSettingsBtnRemoveThumb       Key = "bot.msg.settings.btn.remove_thumb"
	BotMsgSettingsBtnUploadMethod      Key = "bot.msg.settings.btn.upload_method"
	BotMsgSettingsUploadMethodTitle    Key = "bot.msg.settings.upload_method_title"
	BotMsgSettingsInfoReset            Key = "bot.msg.settings.info.reset"
	BotMsgSettingsInfoTierSet          Key = "bot.msg.settings.info.tier_set"
	BotMsgSettingsErrorTierNotEligible Key = "bot.msg.settings.error.tier_not_eligible"
	BotMsgSettingsInfoThumbRemoved     Key = "bot.msg.settings.info.thumb_removed"
	BotMsgSettingsInfoLoggedOut        Key = "bot.msg.settings.info.logged_out"
	BotMsgSettingsErrorNoSession       Key = "bot.msg.settings.error.no_session"
	BotMsgSettingsErrorInvalidCallback Key = "bot.msg.settings.error.invalid_callback"
	BotMsgSettingsNotSet               Key = "bot.msg.settings.not_set"
)

// Prompts and their outcomes
const (
	BotMsgPromptTargetChat           Key = "bot.msg.prompt.target_chat"
	BotMsgPromptRenameTag            Key = "bot.msg.prompt.rename_tag"
	BotMsgPromptCaption              Key = "bot.msg.prompt.caption"
	BotMsgPromptReplacement          Key = "bot.msg.prompt.replacement"
	BotMsgPromptDeleteWords          Key = "bot.msg.prompt.delete_words"
	BotMsgPromptCredential           Key = "bot.msg.prompt.credential"
	BotMsgPromptThumbnail            Key = "bot.msg.prompt.thumbnail"
	BotMsgPromptInfoTargetSet        Key = "bot.msg.prompt.info.target_set"
	BotMsgPromptInfoRenameSet        Key = "bot.msg.prompt.info.rename_set"
	BotMsgPromptInfoCaptionSet       Key = "bot.msg.prompt.info.caption_set"
	BotMsgPromptInfoReplaceSet       Key = "bot.msg.prompt.info.replace_set"
	BotMsgPromptInfoDeleteSet        Key = "bot.msg.prompt.info.delete_set"
	BotMsgPromptInfoCredentialSaved  Key = "bot.msg.prompt.info.credential_saved"
	BotMsgPromptInfoThumbSet         Key = "bot.msg.prompt.info.thumb_set"
	BotMsgPromptErrorTargetInvalid   Key = "bot.msg.prompt.error.target_invalid"
	BotMsgPromptErrorReplaceInvalid  Key = "bot.msg.prompt.error.replace_invalid"
	BotMsgPromptErrorReplaceConflict Key = "bot.msg.prompt.error.replace_conflict"
	BotMsgPromptErrorEmptyInput      Key = "bot.msg.prompt.error.empty_input"
	BotMsgPromptErrorNotPhoto        Key = "bot.msg.prompt.error.not_photo"
	BotMsgPromptErrorSaveFailed      Key = "bot.msg.prompt.error.save_failed"
)

// Batch and operator commands
const (
	BotMsgBatchUsage         Key = "bot.msg.batch.usage"
	BotMsgBatchInfoQueued    Key = "bot.msg.batch.info.queued"
	BotMsgLockUsage          Key = "bot.msg.lock.usage"
	BotMsgLockInfoLocked     Key = "bot.msg.lock.info.locked"
	BotMsgPremiumAddUsage    Key = "bot.msg.premium.add_usage"
	BotMsgPremiumRemoveUsage Key = "bot.msg.premium.remove_usage"
	BotMsgPremiumInfoAdded   Key = "bot.msg.premium.info.added"
	BotMsgPremiumInfoRemoved Key = "bot.msg.premium.info.removed"
	BotMsgCancelUsage        Key = "bot.msg.cancel.usage"
	BotMsgCancelInfoDone     Key = "bot.msg.cancel.info.done"
	BotMsgCancelErrorFailed  Key = "bot.msg.cancel.error.failed"
)
