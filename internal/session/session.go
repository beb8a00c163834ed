package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yok-tottii/EzVoiceEdit/internal/audio"
)

// State represents the current session lifecycle state
type State int

const (
	// Idle means no session is active
	Idle State = iota
	// Recording means audio is being captured
	Recording
	// Transcribing means captured audio is being recognized
	Transcribing
	// Enhancing means selected text is being rewritten by the model
	Enhancing
	// Inserting means the transcript is being typed at the cursor
	Inserting
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Recording:
		return "Recording"
	case Transcribing:
		return "Transcribing"
	case Enhancing:
		return "Enhancing"
	case Inserting:
		return "Inserting"
	default:
		return "Unknown"
	}
}

// ErrModelNotReady indicates the transcription model has not finished
// loading; start transitions are rejected until it has.
var ErrModelNotReady = errors.New("transcription model not ready")

// ErrBusy indicates an edge arrived while a session occupies the slot
// (recording or processing); the edge is ignored.
var ErrBusy = errors.New("session already in progress")

// Recognizer converts a finished audio buffer into ordered text segments
type Recognizer interface {
	IsReady() bool
	Transcribe(audioData []byte, sampleRate int) ([]string, error)
}

// SelectionBridge reads and replaces the OS-level text selection
type SelectionBridge interface {
	GetSelection() (string, error)
	ReplaceSelection(text string) error
}

// Enhancer rewrites selected text according to a voice instruction
type Enhancer interface {
	IsAvailable() bool
	Enhance(ctx context.Context, instruction, selectedText string) (string, error)
}

// Typer injects text as synthetic keystrokes at the cursor
type Typer interface {
	TypeText(text string) error
}

// StatusFunc receives the new state and a human-readable status line at
// every transition. It may be invoked while the controller's lock is
// held, so it must not call back into the Controller.
type StatusFunc func(state State, status string)

// Config holds session controller configuration
type Config struct {
	Audio       audio.Config
	MaxDuration time.Duration // auto-stop for a forgotten hotkey
}

// DefaultConfig returns the default session controller configuration
func DefaultConfig() Config {
	return Config{
		Audio:       audio.DefaultConfig(),
		MaxDuration: 60 * time.Second,
	}
}

// session is one press-hold-release cycle: the frame buffer accumulated
// by the capture goroutine plus its start time. It exists from the start
// edge until processing returns the controller to Idle.
type session struct {
	frames     [][]byte
	startedAt  time.Time
	captureErr error
}

// Controller owns the session lifecycle
// (Idle → Recording → Transcribing → (Enhancing | Inserting) → Idle)
// and coordinates the capture goroutine, the recognizer, the selection
// bridge, the enhancer, and the typer. All state transitions happen
// through ToggleEdge, the auto-stop timer, or the processing goroutine.
type Controller struct {
	mu    sync.Mutex
	state State
	armed bool // set when a release edge started the session; cleared on the stopping edge
	sess  *session

	driver     audio.AudioDriver
	recognizer Recognizer
	bridge     SelectionBridge
	enhancer   Enhancer
	typer      Typer
	status     StatusFunc

	config Config

	stopCapture chan struct{} // closed to tell the capture goroutine to exit
	captureDone chan struct{} // closed by the capture goroutine when it has released the device
	stopTimer   *time.Timer

	processWG sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new session controller
func New(driver audio.AudioDriver, recognizer Recognizer, bridge SelectionBridge, enhancer Enhancer, typer Typer, status StatusFunc, config Config) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	if status == nil {
		status = func(State, string) {}
	}

	return &Controller{
		state:      Idle,
		driver:     driver,
		recognizer: recognizer,
		bridge:     bridge,
		enhancer:   enhancer,
		typer:      typer,
		status:     status,
		config:     config,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// GetState returns the current lifecycle state
func (c *Controller) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ToggleEdge handles one hotkey-release edge: it starts a session when
// idle and stops the active recording otherwise. Edges that arrive while
// a session is transcribing, enhancing, or inserting are ignored; the
// session occupies the slot until it returns to Idle.
func (c *Controller) ToggleEdge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle:
		return c.startLocked()
	case Recording:
		if !c.armed {
			// Release without a matching start edge; nothing to stop
			return nil
		}
		return c.stopLocked()
	default:
		return fmt.Errorf("%w (state: %s)", ErrBusy, c.state)
	}
}

// startLocked performs the Idle → Recording transition. Caller holds mu.
func (c *Controller) startLocked() error {
	if c.armed {
		// A start edge was already consumed for this cycle
		return nil
	}

	if !c.recognizer.IsReady() {
		c.status(Idle, "Waiting for model to load")
		return ErrModelNotReady
	}

	capture, err := c.driver.StartCapture()
	if err != nil {
		c.status(Idle, "Microphone unavailable")
		return fmt.Errorf("failed to start capture: %w", err)
	}

	c.sess = &session{startedAt: time.Now()}
	c.armed = true
	c.state = Recording
	c.stopCapture = make(chan struct{})
	c.captureDone = make(chan struct{})

	go c.captureLoop(capture, c.sess, c.stopCapture, c.captureDone)

	// Auto-stop so a forgotten hotkey doesn't record forever
	if c.config.MaxDuration > 0 {
		c.stopTimer = time.AfterFunc(c.config.MaxDuration, c.autoStop)
	}

	c.status(Recording, "Recording...")
	return nil
}

// stopLocked performs the Recording → Transcribing transition: it signals
// the capture goroutine, waits for it to release the device (so the frame
// buffer is complete and no longer appended to), then hands the buffer to
// the processing goroutine. Caller holds mu.
func (c *Controller) stopLocked() error {
	c.armed = false
	c.state = Transcribing

	if c.stopTimer != nil {
		c.stopTimer.Stop()
		c.stopTimer = nil
	}

	close(c.stopCapture)
	<-c.captureDone

	sess := c.sess
	c.sess = nil

	c.status(Transcribing, "Transcribing...")

	c.processWG.Add(1)
	go c.process(sess)

	return nil
}

// autoStop fires when the max recording duration elapses
func (c *Controller) autoStop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Recording {
		return
	}
	c.stopLocked()
}

// captureLoop runs on its own goroutine for the lifetime of one
// recording. It blocks on the device one chunk at a time, appends the
// chunk to the session's frame buffer, and re-checks the stop signal
// after every read, bounding the stop latency to one chunk duration.
func (c *Controller) captureLoop(capture audio.Capture, sess *session, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer capture.Stop()

	for {
		chunk, err := capture.ReadChunk()
		if err != nil {
			sess.captureErr = err
			return
		}

		sess.frames = append(sess.frames, samplesToBytes(chunk))

		select {
		case <-stop:
			return
		default:
		}
	}
}

// process runs the post-recording pipeline on its own goroutine so the
// hotkey listener stays responsive: transcription, then either selection
// enhancement or plain keystroke insertion, then back to Idle.
func (c *Controller) process(sess *session) {
	defer c.processWG.Done()

	outcome := func(status string) {
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		c.status(Idle, status)
	}

	if sess.captureErr != nil {
		outcome("Recording error")
		return
	}

	pcm := joinFrames(sess.frames)
	if len(pcm) == 0 {
		outcome("No speech detected")
		return
	}

	segments, err := c.recognizer.Transcribe(pcm, c.config.Audio.SampleRate)
	if err != nil {
		outcome("Transcription error")
		return
	}

	// Concatenate segments in engine order with no separator normalization
	var text string
	for _, segment := range segments {
		text += segment
	}

	if text == "" {
		outcome("No speech detected")
		return
	}

	// Non-empty selection plus an available enhancer routes the transcript
	// as a voice instruction; anything else types the raw transcript.
	selected, selErr := c.bridge.GetSelection()
	if selErr == nil && selected != "" && c.enhancer.IsAvailable() {
		c.setState(Enhancing, "Enhancing text with AI...")

		enhanced, err := c.enhancer.Enhance(c.ctx, text, selected)
		if err == nil {
			if err := c.bridge.ReplaceSelection(enhanced); err == nil {
				outcome("Enhanced: " + truncate(enhanced, 30))
				return
			}
		}
		// Enhancement or replacement failed: never drop the transcript,
		// fall back to typing it at the cursor.
		c.insert(text, outcome, "Transcribed (fallback): ")
		return
	}

	c.insert(text, outcome, "Transcribed: ")
}

// insert types the raw transcript at the cursor
func (c *Controller) insert(text string, outcome func(string), prefix string) {
	c.setState(Inserting, "Inserting text...")

	if err := c.typer.TypeText(text); err != nil {
		outcome("Failed to insert text")
		return
	}

	outcome(prefix + truncate(text, 30))
}

// setState publishes an intermediate state transition
func (c *Controller) setState(state State, status string) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.status(state, status)
}

// Shutdown stops any active capture and waits for the processing
// pipeline to finish, but no longer than the grace period. It reports
// whether shutdown completed within the grace window; callers are
// expected to force-exit when it did not.
func (c *Controller) Shutdown(grace time.Duration) bool {
	c.cancel()

	c.mu.Lock()
	if c.state == Recording {
		c.stopLocked()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.processWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(grace):
		return false
	}
}

// samplesToBytes converts int16 samples to little-endian PCM bytes
func samplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, sample := range samples {
		data[i*2] = byte(sample)
		data[i*2+1] = byte(sample >> 8)
	}
	return data
}

// joinFrames flattens the ordered frame buffers into one PCM buffer
func joinFrames(frames [][]byte) []byte {
	var total int
	for _, frame := range frames {
		total += len(frame)
	}

	data := make([]byte, 0, total)
	for _, frame := range frames {
		data = append(data, frame...)
	}
	return data
}

// truncate shortens a string for status display
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
