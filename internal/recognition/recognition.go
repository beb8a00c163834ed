package recognition

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Recognizer is the interface for speech recognition
type Recognizer interface {
	LoadModel(modelPath string) error
	IsReady() bool
	Transcribe(audioData []byte, sampleRate int) ([]string, error)
	Close() error
}

// Config holds recognition configuration
type Config struct {
	Language string // Default: "en"
}

// DefaultConfig returns the default recognition configuration
func DefaultConfig() Config {
	return Config{
		Language: "en",
	}
}

// WhisperRecognizer implements Recognizer using the whisper.cpp Go bindings.
// The model is loaded once (typically in a background goroutine at startup)
// and shared across transcriptions; each Transcribe call creates a fresh
// whisper context because contexts are not thread-safe.
type WhisperRecognizer struct {
	mu       sync.Mutex
	model    whisperlib.Model
	language string
}

// NewWhisperRecognizer creates a new Whisper recognizer
func NewWhisperRecognizer(config Config) *WhisperRecognizer {
	return &WhisperRecognizer{
		language: config.Language,
	}
}

// LoadModel loads a Whisper model from the specified path
func (r *WhisperRecognizer) LoadModel(modelPath string) error {
	// Check if model file exists
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}

	model, err := whisperlib.New(modelPath)
	if err != nil {
		return fmt.Errorf("failed to load model from %s: %w", modelPath, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Close old model if exists
	if r.model != nil {
		r.model.Close()
	}
	r.model = model

	return nil
}

// IsReady reports whether a model has been loaded and transcription is possible
func (r *WhisperRecognizer) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model != nil
}

// Transcribe performs speech recognition on the given 16-bit PCM audio data
// and returns the recognized text segments in order. Segment texts are
// returned exactly as the engine produced them; callers concatenate without
// further normalization. Empty or near-silent input yields an empty slice,
// not an error.
func (r *WhisperRecognizer) Transcribe(audioData []byte, sampleRate int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	samples := pcmToFloat32(audioData)
	if len(samples) == 0 {
		return nil, nil
	}

	// Each inference gets its own context; the model itself is shareable
	wctx, err := r.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper context: %w", err)
	}

	if err := wctx.SetLanguage(r.language); err != nil {
		return nil, fmt.Errorf("failed to set language %q: %w", r.language, err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper inference failed: %w", err)
	}

	var segments []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read segment: %w", err)
		}
		segments = append(segments, segment.Text)
	}

	return segments, nil
}

// Close releases the model
func (r *WhisperRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model != nil {
		if err := r.model.Close(); err != nil {
			return fmt.Errorf("failed to close model: %w", err)
		}
		r.model = nil
	}

	return nil
}

// pcmToFloat32 converts 16-bit little-endian signed PCM to float32 samples
// in the range [-1.0, 1.0], the format whisper.cpp expects.
func pcmToFloat32(audioData []byte) []float32 {
	numSamples := len(audioData) / 2
	if numSamples == 0 {
		return nil
	}

	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample := int16(audioData[i*2]) | (int16(audioData[i*2+1]) << 8)
		samples[i] = float32(sample) / 32768.0
	}

	return samples
}

// GetDefaultModelPath returns the default path for Whisper models
func GetDefaultModelPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homeDir, "Library", "Application Support", "EzVoiceEdit", "models")
}

// FindModel searches for a model file in the default model directory
func FindModel(modelName string) (string, error) {
	modelDir := GetDefaultModelPath()

	// Check if the model directory exists
	if _, err := os.Stat(modelDir); os.IsNotExist(err) {
		return "", fmt.Errorf("model directory not found: %s", modelDir)
	}

	// Look for the model file
	modelPath := filepath.Join(modelDir, modelName)
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return "", fmt.Errorf("model file not found: %s", modelPath)
	}

	return modelPath, nil
}
