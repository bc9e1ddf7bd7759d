package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the daemon's ~/.parley/config.toml.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
	AdminAddr  string `toml:"admin_addr"`
	LogFile    string `toml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:7610",
		AdminAddr:  "127.0.0.1:7611",
	}
}

// Load reads config from the given path and fills unset fields with
// defaults. Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	def := Default()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = def.AdminAddr
	}
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
