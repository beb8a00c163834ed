package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config holds application configuration
type Config struct {
	Hotkey              HotkeyConfig `json:"hotkey"`
	ModelPath           string       `json:"model_path"`
	Language            string       `json:"language"` // "auto" for automatic detection, or specific language code
	AudioDeviceID       int          `json:"audio_device_id"`
	MaxRecordTime       int          `json:"max_record_time"`       // seconds
	EnhanceTimeout      int          `json:"enhance_timeout"`       // seconds
	SelectionCopyWait   int          `json:"selection_copy_wait"`   // milliseconds
	SelectionPasteWait  int          `json:"selection_paste_wait"`  // milliseconds
	mu                  sync.RWMutex
}

// HotkeyConfig holds hotkey configuration
type HotkeyConfig struct {
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
	Cmd   bool   `json:"cmd"`
	Key   string `json:"key"` // e.g., "Space"
}

// IsValidModelExtension checks if the file has a valid Whisper model extension
// Supports both .bin (current official format) and .gguf (future format)
func IsValidModelExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".bin" || ext == ".gguf"
}

// GetRecommendedModelName returns the recommended model filename
func GetRecommendedModelName() string {
	return "ggml-small.en.bin"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Cmd:   true,
			Shift: true,
			Key:   "Space",
		},
		ModelPath:          "", // Empty by default - resolved against the models directory
		Language:           "en",
		AudioDeviceID:      -1, // -1 means use system default device
		MaxRecordTime:      60,
		EnhanceTimeout:     30,
		SelectionCopyWait:  300,
		SelectionPasteWait: 500,
	}
}

// Load loads configuration from the specified path
func Load(path string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill in fields older config files may not have
	if config.Hotkey.Key == "" {
		config.Hotkey.Key = "Space"
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.MaxRecordTime == 0 {
		config.MaxRecordTime = 60
	}
	if config.EnhanceTimeout == 0 {
		config.EnhanceTimeout = 30
	}
	if config.SelectionCopyWait == 0 {
		config.SelectionCopyWait = 300
	}
	if config.SelectionPasteWait == 0 {
		config.SelectionPasteWait = 500
	}

	return &config, nil
}

// Save saves configuration to the specified path
func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, "Library", "Application Support", "EzVoiceEdit", "config.json")
}

// ExpandPath expands ~ to home directory in file paths
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// GetModelPath returns the expanded model path
func (c *Config) GetModelPath() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ExpandPath(c.ModelPath)
}

// ValidateModelPath validates the model file path
func (c *Config) ValidateModelPath() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ModelPath == "" {
		return fmt.Errorf("model path is not set")
	}

	expandedPath, err := ExpandPath(c.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to expand model path: %w", err)
	}

	info, err := os.Stat(expandedPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", expandedPath)
	}
	if err != nil {
		return fmt.Errorf("failed to check model file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("model path is a directory, not a file: %s", expandedPath)
	}

	if !IsValidModelExtension(expandedPath) {
		return fmt.Errorf("model file must have .bin or .gguf extension: %s", expandedPath)
	}

	return nil
}

// Validate validates all configuration fields
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Allow any non-empty value - Whisper.cpp supports 100+ languages,
	// "auto" enables automatic language detection
	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if c.MaxRecordTime <= 0 || c.MaxRecordTime > 300 {
		return fmt.Errorf("invalid max_record_time: %d (must be between 1 and 300 seconds)", c.MaxRecordTime)
	}

	if c.EnhanceTimeout <= 0 || c.EnhanceTimeout > 120 {
		return fmt.Errorf("invalid enhance_timeout: %d (must be between 1 and 120 seconds)", c.EnhanceTimeout)
	}

	if c.SelectionCopyWait <= 0 || c.SelectionCopyWait > 5000 {
		return fmt.Errorf("invalid selection_copy_wait: %d (must be between 1 and 5000 milliseconds)", c.SelectionCopyWait)
	}

	if c.SelectionPasteWait <= 0 || c.SelectionPasteWait > 5000 {
		return fmt.Errorf("invalid selection_paste_wait: %d (must be between 1 and 5000 milliseconds)", c.SelectionPasteWait)
	}

	// Model path validation is optional (can be empty for first run)
	// Use ValidateModelPath() separately when model path is required

	return nil
}
