package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const DefaultAttachmentMaxBytes int64 = 25 * 1024 * 1024 // 25MB

type GlobalConfig struct {
	// Dir is the store directory. Empty means ~/.weekboard/data.
	Dir string `json:"dir,omitempty"`

	// WebAddr is the default bind address for `weekboard web`.
	WebAddr string `json:"webAddr,omitempty"`

	// MaxAttachmentMB caps a single attached file. Zero uses the default.
	MaxAttachmentMB int64 `json:"maxAttachmentMB,omitempty"`

	// Format is the default CLI output format (json|yaml).
	Format string `json:"format,omitempty"`
}

// MaxAttachmentBytes returns the configured per-file cap in bytes.
func (c *GlobalConfig) MaxAttachmentBytes() int64 {
	if c == nil || c.MaxAttachmentMB <= 0 {
		return DefaultAttachmentMaxBytes
	}
	return c.MaxAttachmentMB * 1024 * 1024
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.weekboard).
	if v := strings.TrimSpace(os.Getenv("WEEKBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".weekboard"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous config around; a failed backup never blocks the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = WriteFileAtomic(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return WriteFileAtomic(dir, "config.json.*.tmp", path, b, 0o600)
}
