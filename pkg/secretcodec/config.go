package secretcodec

import (
	"github.com/shoplane/authcore/pkg/config"
)

type Config struct {
	EncryptionKey string `env:"AUTHCORE_ENCRYPTION_KEY,required"` // Base64-encoded 32-byte AES key
}

// LoadConfig parses the codec configuration from environment variables.
// The result is cached for the lifetime of the process.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.EncryptionKey == "" {
		return Config{}, ErrKeyNotSet
	}
	return cfg, nil
}
