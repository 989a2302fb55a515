package config

type telegramConfig struct {
	Token      string        `toml:"token" mapstructure:"token"`
	AppID      int           `toml:"app_id" mapstructure:"app_id" json:"app_id"`
	AppHash    string        `toml:"app_hash" mapstructure:"app_hash" json:"app_hash"`
	Proxy      tgProxyConfig `toml:"proxy" mapstructure:"proxy"`
	RpcRetry   int           `toml:"rpc_retry" mapstructure:"rpc_retry" json:"rpc_retry"`
	FloodRetry uint          `toml:"flood_retry" mapstructure:"flood_retry" json:"flood_retry"`
	// LogChat receives a mirror of every relayed item and operator error reports.
	LogChat int64         `toml:"log_chat" mapstructure:"log_chat" json:"log_chat"`
	Userbot userbotConfig `toml:"userbot" mapstructure:"userbot" json:"userbot"`
	HighCap highCapConfig `toml:"highcap" mapstructure:"highcap" json:"highcap"`
}

type userbotConfig struct {
	Enable  bool   `toml:"enable" mapstructure:"enable"`
	Session string `toml:"session" mapstructure:"session"`
}

// highCapConfig configures a premium account that can upload above the
// regular size limit.
type highCapConfig struct {
	Enable        bool   `toml:"enable" mapstructure:"enable"`
	SessionString string `toml:"session_string" mapstructure:"session_string" json:"session_string"`
	// SessionType is one of telethon, pyrogram, gotgproto.
	SessionType string `toml:"session_type" mapstructure:"session_type" json:"session_type"`
}

type tgProxyConfig struct {
	Enable bool   `toml:"enable" mapstructure:"enable"`
	URL    string `toml:"url" mapstructure:"url"`
}
