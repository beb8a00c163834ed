package selection

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>

int get_pasteboard_change_count() {
    return (int)[[NSPasteboard generalPasteboard] changeCount];
}
*/
import "C"
import (
	"errors"
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// ErrNoSelection indicates there is no text currently selected in the
// frontmost application (or the selection could not be read).
var ErrNoSelection = errors.New("no text selected")

// Bridge reads and replaces the OS-level text selection through the
// pasteboard: a synthetic Cmd+C captures the selection, a synthetic
// Cmd+V replaces it, and the previous clipboard content is restored
// afterwards using the pasteboard change count to detect interference.
type Bridge struct {
	copyTimeout      time.Duration
	restoreTimeout   time.Duration
	savedChangeCount int
	savedContent     string
}

// Config holds selection bridge configuration
type Config struct {
	CopyTimeout    time.Duration // How long to wait for Cmd+C to land on the pasteboard (default: 300ms)
	RestoreTimeout time.Duration // How long to wait before restoring the clipboard (default: 500ms)
}

// DefaultConfig returns the default selection bridge configuration
func DefaultConfig() Config {
	return Config{
		CopyTimeout:    300 * time.Millisecond,
		RestoreTimeout: 500 * time.Millisecond,
	}
}

// NewBridge creates a new selection bridge
func NewBridge(config Config) *Bridge {
	return &Bridge{
		copyTimeout:    config.CopyTimeout,
		restoreTimeout: config.RestoreTimeout,
	}
}

// GetChangeCount returns the current pasteboard change count
func GetChangeCount() int {
	return int(C.get_pasteboard_change_count())
}

// saveClipboard saves the current clipboard state
func (b *Bridge) saveClipboard() error {
	b.savedChangeCount = GetChangeCount()
	content, err := robotgo.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read clipboard: %w", err)
	}
	b.savedContent = content
	return nil
}

// restoreClipboard restores the saved clipboard content unless the user
// modified the pasteboard in the meantime (change count advanced by more
// than our own operation).
func (b *Bridge) restoreClipboard(ownChanges int) {
	if GetChangeCount() == b.savedChangeCount+ownChanges {
		robotgo.WriteAll(b.savedContent)
	}
}

// GetSelection returns the currently selected text in the frontmost
// application. Returns ErrNoSelection when nothing is selected. The
// clipboard is restored to its previous content before returning.
func (b *Bridge) GetSelection() (string, error) {
	if err := b.saveClipboard(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSelection, err)
	}

	// Copy the selection. If nothing is selected most applications don't
	// touch the pasteboard, so the change count stays put.
	robotgo.KeyTap("c", "cmd")

	copied := false
	deadline := time.Now().Add(b.copyTimeout)
	for time.Now().Before(deadline) {
		if GetChangeCount() > b.savedChangeCount {
			copied = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if !copied {
		return "", ErrNoSelection
	}

	content, err := robotgo.ReadAll()
	if err != nil {
		b.restoreClipboard(1)
		return "", fmt.Errorf("%w: failed to read copied selection: %v", ErrNoSelection, err)
	}

	b.restoreClipboard(1)

	if content == "" {
		return "", ErrNoSelection
	}

	return content, nil
}

// ReplaceSelection replaces the currently selected text with the given
// text by pasting over it, then restores the previous clipboard content.
func (b *Bridge) ReplaceSelection(text string) error {
	if err := b.saveClipboard(); err != nil {
		return fmt.Errorf("failed to save clipboard: %w", err)
	}

	robotgo.WriteAll(text)

	// Wait a bit for clipboard to update
	time.Sleep(10 * time.Millisecond)

	// Send Cmd+V to paste over the selection
	robotgo.KeyTap("v", "cmd")

	// Wait for the paste to complete before restoring
	time.Sleep(b.restoreTimeout)

	// Own changes: our WriteAll above is one pasteboard change
	b.restoreClipboard(1)

	return nil
}
