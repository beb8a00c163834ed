package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDriver implements AudioDriver using PortAudio
type PortAudioDriver struct {
	config      Config
	mu          sync.Mutex
	capturing   bool
	initialized bool
}

// NewPortAudioDriver creates a new PortAudio driver
func NewPortAudioDriver() (*PortAudioDriver, error) {
	// Initialize PortAudio
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &PortAudioDriver{}, nil
}

// ListDevices returns a list of available audio input devices
func (d *PortAudioDriver) ListDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	defaultInput, err := portaudio.DefaultInputDevice()
	if err != nil {
		// If we can't get the default device, continue without marking any as default
		defaultInput = nil
	}

	var result []Device
	for i, dev := range devices {
		// Only include devices with input channels
		if dev.MaxInputChannels > 0 {
			isDefault := false
			if defaultInput != nil && dev.Name == defaultInput.Name {
				isDefault = true
			}

			result = append(result, Device{
				ID:        i,
				Name:      dev.Name,
				IsDefault: isDefault,
			})
		}
	}

	return result, nil
}

// Initialize initializes the audio driver with the given configuration
func (d *PortAudioDriver) Initialize(config Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capturing {
		return fmt.Errorf("cannot initialize while capturing")
	}

	if config.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size: %d", config.ChunkSize)
	}

	d.config = config
	d.initialized = true

	return nil
}

// inputDevice resolves the configured device ID to a PortAudio device
func (d *PortAudioDriver) inputDevice() (*portaudio.DeviceInfo, error) {
	if d.config.DeviceID == -1 {
		// Use default input device
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if d.config.DeviceID < 0 || d.config.DeviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", d.config.DeviceID)
	}

	device := devices[d.config.DeviceID]
	if device.MaxInputChannels <= 0 {
		return nil, fmt.Errorf("selected device '%s' (ID: %d) has no input channels (output-only device)",
			device.Name, d.config.DeviceID)
	}

	return device, nil
}

// StartCapture opens the input stream in blocking-read mode and starts it.
// Any failure to open or start the device is reported as ErrDeviceUnavailable
// so the caller can abort the start transition cleanly.
func (d *PortAudioDriver) StartCapture() (Capture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, fmt.Errorf("driver not initialized")
	}

	if d.capturing {
		return nil, fmt.Errorf("already capturing")
	}

	device, err := d.inputDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	streamParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: d.config.Channels,
			Latency:  device.DefaultHighInputLatency,
		},
		SampleRate:      float64(d.config.SampleRate),
		FramesPerBuffer: d.config.ChunkSize,
	}

	// Blocking-read stream: no callback, the capture loop pulls chunks
	buf := make([]int16, d.config.ChunkSize*d.config.Channels)
	stream, err := portaudio.OpenStream(streamParams, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open stream: %v", ErrDeviceUnavailable, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("%w: failed to start stream: %v", ErrDeviceUnavailable, err)
	}

	d.capturing = true

	return &portAudioCapture{
		driver: d,
		stream: stream,
		buf:    buf,
	}, nil
}

// Close releases all resources
func (d *PortAudioDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initialized = false

	// Terminate PortAudio
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}

	return nil
}

// portAudioCapture implements Capture for a running PortAudio stream
type portAudioCapture struct {
	driver *PortAudioDriver
	stream *portaudio.Stream
	buf    []int16
	mu     sync.Mutex
	closed bool
}

// ReadChunk blocks until the device fills one chunk of samples.
// The returned slice is a copy; the internal buffer is reused.
func (c *portAudioCapture) ReadChunk() ([]int16, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("capture already stopped")
	}
	stream := c.stream
	c.mu.Unlock()

	if err := stream.Read(); err != nil {
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	chunk := make([]int16, len(c.buf))
	copy(chunk, c.buf)
	return chunk, nil
}

// Stop halts the stream and releases the device
func (c *portAudioCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var stopErr error
	if err := c.stream.Stop(); err != nil {
		stopErr = fmt.Errorf("failed to stop stream: %w", err)
	}
	if err := c.stream.Close(); err != nil && stopErr == nil {
		stopErr = fmt.Errorf("failed to close stream: %w", err)
	}

	c.driver.mu.Lock()
	c.driver.capturing = false
	c.driver.mu.Unlock()

	return stopErr
}
