package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("config", "c", "", "config file path")
	flags.StringP("lang", "l", "", "language (e.g., zh-Hans, en)")
	flags.IntP("workers", "w", 0, "number of relay workers")
	flags.Int("threads", 0, "number of transfer threads per file")
	flags.String("proxy", "", "proxy URL (http, https, socks5, socks5h)")

	flags.String("telegram-token", "", "telegram bot token")
	flags.Int("telegram-app-id", 0, "telegram app id")
	flags.String("telegram-app-hash", "", "telegram app hash")
	flags.Int("telegram-rpc-retry", 0, "telegram rpc retry times")
	flags.Int64("telegram-log-chat", 0, "chat that mirrors every relayed item")
	flags.Bool("telegram-userbot-enable", false, "enable userbot")
	flags.String("telegram-userbot-session", "", "userbot session path")
	flags.Bool("telegram-highcap-enable", false, "enable the high-capacity uploader")
	flags.String("telegram-highcap-session-string", "", "session string of the high-capacity account")
	flags.Bool("telegram-proxy-enable", false, "enable telegram proxy")
	flags.String("telegram-proxy-url", "", "telegram proxy URL")

	flags.String("db-path", "", "database path")
	flags.String("db-session", "", "session database path")

	flags.String("temp-base-path", "", "temp directory base path")

	flags.Int64("relay-size-limit", 0, "largest file a regular account can upload, in bytes")
	flags.Int64("relay-part-size", 0, "size of each part when splitting, in bytes")

	bindFlags(cmd)
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	bind := func(key, flag string) {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	bind("lang", "lang")
	bind("workers", "workers")
	bind("threads", "threads")
	bind("proxy", "proxy")

	bind("telegram.token", "telegram-token")
	bind("telegram.app_id", "telegram-app-id")
	bind("telegram.app_hash", "telegram-app-hash")
	bind("telegram.rpc_retry", "telegram-rpc-retry")
	bind("telegram.log_chat", "telegram-log-chat")
	bind("telegram.userbot.enable", "telegram-userbot-enable")
	bind("telegram.userbot.session", "telegram-userbot-session")
	bind("telegram.highcap.enable", "telegram-highcap-enable")
	bind("telegram.highcap.session_string", "telegram-highcap-session-string")
	bind("telegram.proxy.enable", "telegram-proxy-enable")
	bind("telegram.proxy.url", "telegram-proxy-url")

	bind("db.path", "db-path")
	bind("db.session", "db-session")
	bind("temp.base_path", "temp-base-path")

	bind("relay.size_limit", "relay-size-limit")
	bind("relay.part_size", "relay-part-size")
}

func GetConfigFile(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	return configFile
}
