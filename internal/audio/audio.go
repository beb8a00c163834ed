package audio

import "errors"

// ErrDeviceUnavailable indicates the microphone could not be opened.
// Start transitions that hit this must abort cleanly and surface the
// error to the user instead of crashing the process.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// Device represents an audio input device
type Device struct {
	ID        int
	Name      string
	IsDefault bool
}

// Config holds audio configuration
type Config struct {
	DeviceID   int
	SampleRate int
	Channels   int
	ChunkSize  int // samples per blocking read
}

// DefaultConfig returns the default audio configuration
// Sample rate: 16kHz (Whisper recommended)
// Channels: 1 (mono)
// Chunk size: 1024 samples (64ms at 16kHz, bounds the stop latency to one chunk)
func DefaultConfig() Config {
	return Config{
		DeviceID:   -1, // -1 means use default device
		SampleRate: 16000,
		Channels:   1,
		ChunkSize:  1024,
	}
}

// Capture is a live microphone capture handle. The owner runs a read
// loop that blocks on the device one chunk at a time and decides when
// to Stop.
type Capture interface {
	// ReadChunk blocks until one chunk of 16-bit PCM samples is available
	ReadChunk() ([]int16, error)

	// Stop halts the stream and releases the device
	Stop() error
}

// AudioDriver is the interface for audio input
// This abstraction allows for future replacement of PortAudio with other libraries (e.g., miniaudio)
type AudioDriver interface {
	// ListDevices returns a list of available audio input devices
	ListDevices() ([]Device, error)

	// Initialize initializes the audio driver with the given configuration
	Initialize(config Config) error

	// StartCapture opens the input stream and begins capturing.
	// Returns ErrDeviceUnavailable (wrapped) if the device cannot be opened.
	StartCapture() (Capture, error)

	// Close releases all resources
	Close() error
}
