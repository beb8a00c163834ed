package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("Expected default config to be created")
	}

	if config.Hotkey.Cmd != true {
		t.Error("Expected Cmd to be true")
	}

	if config.Hotkey.Shift != true {
		t.Error("Expected Shift to be true")
	}

	if config.Hotkey.Key != "Space" {
		t.Errorf("Expected Key to be 'Space', got '%s'", config.Hotkey.Key)
	}

	if config.Language != "en" {
		t.Errorf("Expected Language 'en', got '%s'", config.Language)
	}

	if config.AudioDeviceID != -1 {
		t.Errorf("Expected AudioDeviceID -1, got %d", config.AudioDeviceID)
	}

	if config.MaxRecordTime != 60 {
		t.Errorf("Expected MaxRecordTime 60, got %d", config.MaxRecordTime)
	}

	if config.EnhanceTimeout != 30 {
		t.Errorf("Expected EnhanceTimeout 30, got %d", config.EnhanceTimeout)
	}

	if config.SelectionCopyWait != 300 {
		t.Errorf("Expected SelectionCopyWait 300, got %d", config.SelectionCopyWait)
	}

	if config.SelectionPasteWait != 500 {
		t.Errorf("Expected SelectionPasteWait 500, got %d", config.SelectionPasteWait)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	config := DefaultConfig()
	config.Language = "ja"
	config.EnhanceTimeout = 45

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Language != "ja" {
		t.Errorf("Expected Language 'ja', got '%s'", loaded.Language)
	}

	if loaded.EnhanceTimeout != 45 {
		t.Errorf("Expected EnhanceTimeout 45, got %d", loaded.EnhanceTimeout)
	}
}

func TestLoadNonexistent(t *testing.T) {
	// Load from nonexistent path should return default config
	config, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error when loading nonexistent file, got: %v", err)
	}

	if config == nil {
		t.Fatal("Expected default config to be returned")
	}

	defaultConfig := DefaultConfig()
	if config.Language != defaultConfig.Language {
		t.Errorf("Expected Language '%s', got '%s'", defaultConfig.Language, config.Language)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	// A config file written by an older version lacks the newer fields
	partial := `{"hotkey": {"cmd": true, "key": "Space"}, "model_path": "~/models/ggml-small.en.bin"}`
	if err := os.WriteFile(configPath, []byte(partial), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Language != "en" {
		t.Errorf("Expected Language 'en', got '%s'", loaded.Language)
	}

	if loaded.MaxRecordTime != 60 {
		t.Errorf("Expected MaxRecordTime 60, got %d", loaded.MaxRecordTime)
	}

	if loaded.EnhanceTimeout != 30 {
		t.Errorf("Expected EnhanceTimeout 30, got %d", loaded.EnhanceTimeout)
	}

	if loaded.SelectionCopyWait != 300 || loaded.SelectionPasteWait != 500 {
		t.Errorf("Expected selection waits 300/500, got %d/%d", loaded.SelectionCopyWait, loaded.SelectionPasteWait)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty language", func(c *Config) { c.Language = "" }, true},
		{"auto language", func(c *Config) { c.Language = "auto" }, false},
		{"zero record time", func(c *Config) { c.MaxRecordTime = 0 }, true},
		{"excessive record time", func(c *Config) { c.MaxRecordTime = 600 }, true},
		{"zero enhance timeout", func(c *Config) { c.EnhanceTimeout = 0 }, true},
		{"negative copy wait", func(c *Config) { c.SelectionCopyWait = -1 }, true},
		{"excessive paste wait", func(c *Config) { c.SelectionPasteWait = 6000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidModelExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"model.bin", true},
		{"model.gguf", true},
		{"MODEL.BIN", true},
		{"model.txt", false},
		{"model", false},
		{"/path/to/ggml-small.en.bin", true},
	}

	for _, tt := range tests {
		if got := IsValidModelExtension(tt.path); got != tt.want {
			t.Errorf("IsValidModelExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Cannot get home directory: %v", err)
	}

	expanded, err := ExpandPath("~/models/test.bin")
	if err != nil {
		t.Fatalf("Failed to expand path: %v", err)
	}

	want := filepath.Join(homeDir, "models", "test.bin")
	if expanded != want {
		t.Errorf("Expected '%s', got '%s'", want, expanded)
	}

	// Empty path stays empty
	expanded, err = ExpandPath("")
	if err != nil {
		t.Fatalf("Unexpected error for empty path: %v", err)
	}
	if expanded != "" {
		t.Errorf("Expected empty string, got '%s'", expanded)
	}
}

func TestValidateModelPath(t *testing.T) {
	config := DefaultConfig()

	// Empty model path is an error
	if err := config.ValidateModelPath(); err == nil {
		t.Error("Expected error for empty model path")
	}

	// Nonexistent file is an error
	config.ModelPath = "/nonexistent/model.bin"
	if err := config.ValidateModelPath(); err == nil {
		t.Error("Expected error for nonexistent model file")
	}

	// Valid file passes
	tmpDir := t.TempDir()
	modelPath := filepath.Join(tmpDir, "model.bin")
	if err := os.WriteFile(modelPath, []byte("dummy"), 0644); err != nil {
		t.Fatalf("Failed to create model file: %v", err)
	}
	config.ModelPath = modelPath
	if err := config.ValidateModelPath(); err != nil {
		t.Errorf("Unexpected error for valid model file: %v", err)
	}

	// Wrong extension is an error
	badPath := filepath.Join(tmpDir, "model.txt")
	if err := os.WriteFile(badPath, []byte("dummy"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	config.ModelPath = badPath
	if err := config.ValidateModelPath(); err == nil {
		t.Error("Expected error for wrong extension")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("Expected non-empty config path")
	}

	expectedDir := filepath.Join("Library", "Application Support", "EzVoiceEdit")
	if !strings.Contains(path, expectedDir) {
		t.Errorf("Expected path to contain '%s', got '%s'", expectedDir, path)
	}

	if !strings.Contains(path, "config.json") {
		t.Errorf("Expected path to contain 'config.json', got '%s'", path)
	}
}
