package config

// Config is the top-level concierge configuration, corresponding to
// .concierge.yml.
type Config struct {
	Model         string `yaml:"model" koanf:"model"`
	BaseURL       string `yaml:"base_url" koanf:"base_url"`
	DBPath        string `yaml:"db_path" koanf:"db_path"`
	Port          int    `yaml:"port" koanf:"port"`
	RemoteSyncURL string `yaml:"remote_sync_url" koanf:"remote_sync_url"`
	SessionID     string `yaml:"session_id" koanf:"session_id"`
	SpeechHost    bool   `yaml:"speech_host" koanf:"speech_host"`

	// PendingTTLSeconds bounds how long a confirmation or correction
	// sub-dialogue stays open before the next utterance is treated as a
	// fresh command. 0 uses the built-in default.
	PendingTTLSeconds int `yaml:"pending_ttl_seconds" koanf:"pending_ttl_seconds"`
}
