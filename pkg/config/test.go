package config

import "os"

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.JWTSecret = "test-secret"
	cfg.MediaDir = os.TempDir()
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
}
