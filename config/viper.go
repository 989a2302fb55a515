package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/krau/RelayAny-Bot/config/storage"
	"github.com/krau/RelayAny-Bot/pkg/consts/tglimit"
	"github.com/spf13/viper"
)

type Config struct {
	Lang    string  `toml:"lang" mapstructure:"lang" json:"lang"`
	Workers int     `toml:"workers" mapstructure:"workers"`
	Threads int     `toml:"threads" mapstructure:"threads" json:"threads"`
	Proxy   string  `toml:"proxy" mapstructure:"proxy" json:"proxy"`
	Owners  []int64 `toml:"owners" mapstructure:"owners" json:"owners"`
	// Users is the allowlist. Empty means everyone may use the bot.
	Users []int64 `toml:"users" mapstructure:"users" json:"users"`

	Log      logConfig               `toml:"log" mapstructure:"log"`
	Temp     tempConfig              `toml:"temp" mapstructure:"temp"`
	Cache    cacheConfig             `toml:"cache" mapstructure:"cache"`
	DB       dbConfig                `toml:"db" mapstructure:"db"`
	Telegram telegramConfig          `toml:"telegram" mapstructure:"telegram"`
	Relay    relayConfig             `toml:"relay" mapstructure:"relay"`
	API      apiConfig               `toml:"api" mapstructure:"api" json:"api"`
	Storages []storage.StorageConfig `toml:"-" mapstructure:"-" json:"storages"`
}

type logConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

type tempConfig struct {
	BasePath string `toml:"base_path" mapstructure:"base_path" json:"base_path"`
}

type cacheConfig struct {
	TTL         int64 `toml:"ttl" mapstructure:"ttl" json:"ttl"`
	NumCounters int64 `toml:"num_counters" mapstructure:"num_counters" json:"num_counters"`
	MaxCost     int64 `toml:"max_cost" mapstructure:"max_cost" json:"max_cost"`
}

type dbConfig struct {
	Path    string `toml:"path" mapstructure:"path"`
	Session string `toml:"session" mapstructure:"session"`
	// CredentialTTL is how long a submitted session string is kept, in seconds.
	CredentialTTL int64 `toml:"credential_ttl" mapstructure:"credential_ttl" json:"credential_ttl"`
	// When RedisAddr is set, preferences and credentials live in Redis
	// instead of SQLite.
	RedisAddr     string `toml:"redis_addr" mapstructure:"redis_addr" json:"redis_addr"`
	RedisUser     string `toml:"redis_user" mapstructure:"redis_user" json:"redis_user"`
	RedisPassword string `toml:"redis_password" mapstructure:"redis_password" json:"redis_password"`
	RedisDB       int    `toml:"redis_db" mapstructure:"redis_db" json:"redis_db"`
}

type apiConfig struct {
	Enable     bool     `toml:"enable" mapstructure:"enable" json:"enable"`
	Port       int      `toml:"port" mapstructure:"port" json:"port"`
	Token      string   `toml:"token" mapstructure:"token" json:"token"`
	TrustedIPs []string `toml:"trusted_ips" mapstructure:"trusted_ips" json:"trusted_ips"`
}

var cfg = &Config{}

func C() *Config {
	return cfg
}

func Init(ctx context.Context, configFile ...string) error {
	if len(configFile) > 0 && configFile[0] != "" {
		viper.SetConfigFile(configFile[0])
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/relayany/")
		viper.SetConfigType("toml")
	}
	viper.SetEnvPrefix("RELAYANY")
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	setDefaults()

	if len(configFile) == 0 || configFile[0] == "" {
		if err := viper.SafeWriteConfigAs("config.toml"); err != nil {
			if _, ok := err.(viper.ConfigFileAlreadyExistsError); !ok {
				return fmt.Errorf("error saving default config: %w", err)
			}
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("error unmarshalling config file: %w", err)
	}

	storagesConfig, err := storage.LoadStorageConfigs(viper.GetViper())
	if err != nil {
		return fmt.Errorf("error loading storage configs: %w", err)
	}
	loaded.Storages = storagesConfig

	if err := loaded.validate(); err != nil {
		return err
	}
	cfg = loaded

	logger := log.FromContext(ctx)
	for _, st := range cfg.Storages {
		logger.Debug("Loaded archive storage", "name", st.GetName(), "type", st.GetType())
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("lang", "en")
	viper.SetDefault("workers", 3)
	viper.SetDefault("threads", 4)

	viper.SetDefault("log.level", "INFO")

	viper.SetDefault("temp.base_path", "cache/")

	viper.SetDefault("cache.ttl", 86400)
	viper.SetDefault("cache.num_counters", 1e5)
	viper.SetDefault("cache.max_cost", 1e6)

	viper.SetDefault("db.path", "data/relayany.db")
	viper.SetDefault("db.session", "data/session.db")
	viper.SetDefault("db.credential_ttl", 86400*30)

	viper.SetDefault("telegram.app_id", 1025907)
	viper.SetDefault("telegram.app_hash", "452b0359b988148995f22ff0f4229750")
	viper.SetDefault("telegram.rpc_retry", 5)
	viper.SetDefault("telegram.flood_retry", 5)
	viper.SetDefault("telegram.userbot.session", "data/usersession.db")
	viper.SetDefault("telegram.highcap.session_type", "telethon")

	viper.SetDefault("relay.size_limit", tglimit.SizeLimit)
	viper.SetDefault("relay.part_size", tglimit.PartSize)
	viper.SetDefault("relay.rename_tag", "[relay]")
	viper.SetDefault("relay.prompt_ttl", 300)
	viper.SetDefault("relay.progress_interval", 5)
	viper.SetDefault("relay.batch_max", 100)
	viper.SetDefault("relay.thumb_dir", "data/thumbs")

	viper.SetDefault("api.port", 8080)
}

func (c *Config) validate() error {
	if c.Workers < 1 || c.Threads < 1 {
		return fmt.Errorf("workers and threads must be greater than 0, got workers=%d, threads=%d", c.Workers, c.Threads)
	}
	if c.Relay.PartSize <= 0 || c.Relay.PartSize >= c.Relay.SizeLimit {
		return fmt.Errorf("relay.part_size must be in (0, relay.size_limit), got part_size=%d, size_limit=%d",
			c.Relay.PartSize, c.Relay.SizeLimit)
	}
	if c.Telegram.HighCap.Enable && c.Telegram.HighCap.SessionString == "" {
		return fmt.Errorf("telegram.highcap.session_string is required when highcap is enabled")
	}
	if c.API.Enable && c.API.Token == "" {
		return fmt.Errorf("api.token is required when the api is enabled")
	}
	names := make(map[string]struct{})
	for _, st := range c.Storages {
		if _, ok := names[st.GetName()]; ok {
			return fmt.Errorf("duplicate storage name: %s", st.GetName())
		}
		names[st.GetName()] = struct{}{}
	}
	return nil
}

func (c *Config) IsOwner(userID int64) bool {
	return slice.Contain(c.Owners, userID)
}

// IsAllowed reports whether userID may use the bot. Owners are always allowed.
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.Users) == 0 {
		return true
	}
	return c.IsOwner(userID) || slice.Contain(c.Users, userID)
}

func Set(key string, value any) {
	viper.Set(key, value)
}
