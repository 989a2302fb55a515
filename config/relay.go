package config

import "time"

type relayConfig struct {
	SizeLimit int64  `toml:"size_limit" mapstructure:"size_limit" json:"size_limit"`
	PartSize  int64  `toml:"part_size" mapstructure:"part_size" json:"part_size"`
	RenameTag string `toml:"rename_tag" mapstructure:"rename_tag" json:"rename_tag"`
	// PromptTTL is in seconds.
	PromptTTL int64 `toml:"prompt_ttl" mapstructure:"prompt_ttl" json:"prompt_ttl"`
	// ProgressInterval is the minimum gap between progress edits, in seconds.
	ProgressInterval int64  `toml:"progress_interval" mapstructure:"progress_interval" json:"progress_interval"`
	BatchMax         int    `toml:"batch_max" mapstructure:"batch_max" json:"batch_max"`
	ThumbDir         string `toml:"thumb_dir" mapstructure:"thumb_dir" json:"thumb_dir"`
}

func (r relayConfig) PromptTimeout() time.Duration {
	return time.Duration(r.PromptTTL) * time.Second
}

func (r relayConfig) ProgressEvery() time.Duration {
	return time.Duration(r.ProgressInterval) * time.Second
}
