package hotkey

import (
	"fmt"
	"strings"
	"sync"

	"golang.design/x/hotkey"

	"github.com/yok-tottii/EzVoiceEdit/internal/config"
)

// EventType represents the type of hotkey event
type EventType int

const (
	// Pressed indicates the hotkey was pressed
	Pressed EventType = iota
	// Released indicates the hotkey was released
	Released
)

// Event represents a hotkey event. Consumers act on Released: the
// release edge toggles the session, the press edge is informational.
type Event struct {
	Type EventType
}

// Config holds hotkey configuration
type Config struct {
	Modifiers []hotkey.Modifier
	Key       hotkey.Key
}

// FromConfig converts the application-level hotkey settings into a
// registrable combination
func FromConfig(hc config.HotkeyConfig) (Config, error) {
	var mods []hotkey.Modifier
	if hc.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if hc.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	if hc.Alt {
		mods = append(mods, hotkey.ModOption)
	}
	if hc.Cmd {
		mods = append(mods, hotkey.ModCmd)
	}

	if len(mods) == 0 {
		return Config{}, fmt.Errorf("hotkey requires at least one modifier")
	}

	key, err := ParseKey(hc.Key)
	if err != nil {
		return Config{}, err
	}

	return Config{Modifiers: mods, Key: key}, nil
}

// ParseKey converts a key name from the config file to a hotkey.Key
func ParseKey(name string) (hotkey.Key, error) {
	switch strings.ToLower(name) {
	case "space":
		return hotkey.KeySpace, nil
	case "escape", "esc":
		return hotkey.KeyEscape, nil
	case "return", "enter":
		return hotkey.KeyReturn, nil
	case "tab":
		return hotkey.KeyTab, nil
	case "delete":
		return hotkey.KeyDelete, nil
	}

	if len(name) == 1 {
		c := strings.ToUpper(name)[0]
		if c >= 'A' && c <= 'Z' {
			return hotkey.KeyA + hotkey.Key(c-'A'), nil
		}
		if c >= '0' && c <= '9' {
			return hotkey.Key0 + hotkey.Key(c-'0'), nil
		}
	}

	return 0, fmt.Errorf("unsupported hotkey key: %q", name)
}

// Manager manages global hotkey registration and events
type Manager struct {
	hk        *hotkey.Hotkey
	config    Config
	eventChan chan Event
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// New creates a new hotkey manager with default configuration
// Default: Cmd+Shift+Space
func New() *Manager {
	return &Manager{
		config: Config{
			Modifiers: []hotkey.Modifier{hotkey.ModCmd, hotkey.ModShift},
			Key:       hotkey.KeySpace,
		},
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
	}
}

// Register registers the hotkey with the system
func (m *Manager) Register(config Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hotkey is already running, call Close() first")
	}

	m.config = config

	// Recreate channels (they may have been closed by a previous Close())
	m.stopChan = make(chan struct{})
	m.eventChan = make(chan Event, 10)

	hk := hotkey.New(m.config.Modifiers, m.config.Key)

	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey: %w", err)
	}

	m.hk = hk
	m.running = true

	m.wg.Add(1)
	go m.listen()

	return nil
}

// RegisterDefault registers the default hotkey (Cmd+Shift+Space)
func (m *Manager) RegisterDefault() error {
	return m.Register(m.config)
}

// listen forwards raw key transitions to the event channel. Both edges
// are delivered so consumers can log presses while acting on releases.
func (m *Manager) listen() {
	defer m.wg.Done()

	for {
		select {
		case <-m.hk.Keydown():
			m.eventChan <- Event{Type: Pressed}

		case <-m.hk.Keyup():
			m.eventChan <- Event{Type: Released}

		case <-m.stopChan:
			return
		}
	}
}

// Events returns the event channel for receiving hotkey events
func (m *Manager) Events() <-chan Event {
	return m.eventChan
}

// Close unregisters the hotkey and stops listening
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	var unregisterErr error

	// Signal the listener to stop
	close(m.stopChan)

	// Wait for the listener goroutine to finish
	m.wg.Wait()

	// Continue past unregister failures so cleanup always completes
	if m.hk != nil {
		if err := m.hk.Unregister(); err != nil {
			unregisterErr = fmt.Errorf("failed to unregister hotkey: %w", err)
		}
	}

	// Close event channel to notify consumers of shutdown
	if m.eventChan != nil {
		close(m.eventChan)
		m.eventChan = nil
	}

	// Clearing the flag even on error allows the next Register()
	m.running = false

	return unregisterErr
}

// IsRunning returns whether the hotkey is currently registered and running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// GetConfig returns a copy of the current hotkey configuration
func (m *Manager) GetConfig() Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	configCopy := m.config
	if m.config.Modifiers != nil {
		configCopy.Modifiers = make([]hotkey.Modifier, len(m.config.Modifiers))
		copy(configCopy.Modifiers, m.config.Modifiers)
	}

	return configCopy
}
