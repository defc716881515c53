package config

// DefaultConfigFile is where Load looks unless told otherwise.
const DefaultConfigFile = ".concierge.yml"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:     "gpt-4o-mini",
		DBPath:    "concierge.db",
		Port:      8790,
		SessionID: "default",
	}
}
