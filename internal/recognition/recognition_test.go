package recognition

import (
	"math"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Language != "en" {
		t.Errorf("Expected default language 'en', got '%s'", config.Language)
	}
}

func TestNewWhisperRecognizer(t *testing.T) {
	config := DefaultConfig()
	recognizer := NewWhisperRecognizer(config)

	if recognizer == nil {
		t.Fatal("Expected recognizer to be created")
	}

	if recognizer.language != "en" {
		t.Errorf("Expected language 'en', got '%s'", recognizer.language)
	}

	if recognizer.IsReady() {
		t.Error("Recognizer should not be ready before LoadModel")
	}
}

func TestGetDefaultModelPath(t *testing.T) {
	modelPath := GetDefaultModelPath()

	if modelPath == "" {
		t.Error("Expected non-empty model path")
	}

	if !filepath.IsAbs(modelPath) {
		t.Error("Expected absolute path")
	}
}

func TestLoadModel_NonExistentFile(t *testing.T) {
	config := DefaultConfig()
	recognizer := NewWhisperRecognizer(config)
	defer recognizer.Close()

	err := recognizer.LoadModel("/nonexistent/path/model.bin")
	if err == nil {
		t.Error("Expected error for non-existent model file, got nil")
	}
}

func TestTranscribe_ModelNotLoaded(t *testing.T) {
	config := DefaultConfig()
	recognizer := NewWhisperRecognizer(config)
	defer recognizer.Close()

	// Transcribe without loading model should fail
	audioData := make([]byte, 1000)
	_, err := recognizer.Transcribe(audioData, 16000)
	if err == nil {
		t.Error("Expected error when model not loaded, got nil")
	}
}

func TestClose_WithoutModel(t *testing.T) {
	config := DefaultConfig()
	recognizer := NewWhisperRecognizer(config)

	err := recognizer.Close()
	if err != nil {
		t.Errorf("Expected nil error when closing without model, got: %v", err)
	}
}

func TestPCMToFloat32(t *testing.T) {
	tests := []struct {
		name     string
		pcm      []byte
		expected []float32
	}{
		{
			name:     "empty input",
			pcm:      nil,
			expected: nil,
		},
		{
			name:     "single odd byte is dropped",
			pcm:      []byte{0x01},
			expected: nil,
		},
		{
			name:     "zero sample",
			pcm:      []byte{0x00, 0x00},
			expected: []float32{0},
		},
		{
			name:     "max positive",
			pcm:      []byte{0xFF, 0x7F},
			expected: []float32{32767.0 / 32768.0},
		},
		{
			name:     "min negative",
			pcm:      []byte{0x00, 0x80},
			expected: []float32{-1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pcmToFloat32(tt.pcm)

			if len(result) != len(tt.expected) {
				t.Fatalf("Expected %d samples, got %d", len(tt.expected), len(result))
			}

			for i := range result {
				if math.Abs(float64(result[i]-tt.expected[i])) > 1e-6 {
					t.Errorf("Sample %d: expected %f, got %f", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

// Note: Integration tests with actual model files should be in a separate test suite
// as they require downloading large model files
