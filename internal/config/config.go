package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultConfigDir = ".mcpwarden"
	DefaultStoreDir  = "store"
	DefaultPacksDir  = "packs"
	DefaultLogFile   = "audit.jsonl"

	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config resolves the per-profile directory layout. All paths are
// overridable by the caller; empty strings select the defaults under
// ~/.mcpwarden.
type Config struct {
	ConfigDir   string
	StorageRoot string
	PacksDir    string
	LogPath     string
	Backend     string
	Window      int
}

// Load resolves a profile. storageRoot, packsDir, and logPath override
// the defaults when non-empty; backend must be "file" or "badger".
func Load(storageRoot, packsDir, logPath, backend string, window int) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	configDir := filepath.Join(homeDir, DefaultConfigDir)
	if err := ensureDir(configDir); err != nil {
		return nil, err
	}

	if backend == "" {
		backend = BackendFile
	}
	if backend != BackendFile && backend != BackendBadger {
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", backend, BackendFile, BackendBadger)
	}

	cfg := &Config{
		ConfigDir: configDir,
		Backend:   backend,
		Window:    window,
	}

	if storageRoot != "" {
		cfg.StorageRoot = storageRoot
	} else {
		cfg.StorageRoot = filepath.Join(configDir, DefaultStoreDir)
	}
	if packsDir != "" {
		cfg.PacksDir = packsDir
	} else {
		cfg.PacksDir = filepath.Join(configDir, DefaultPacksDir)
	}
	if logPath != "" {
		cfg.LogPath = logPath
	} else {
		cfg.LogPath = filepath.Join(configDir, DefaultLogFile)
	}

	return cfg, nil
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0o700)
	}
	return nil
}
