package typing

import (
	"os"
	"testing"
)

func TestNewTyper(t *testing.T) {
	typer := NewTyper()
	if typer == nil {
		t.Fatal("Expected typer to be created")
	}
}

func TestTypeTextEmpty(t *testing.T) {
	typer := NewTyper()

	// Empty input is a no-op and must not reach the keystroke layer
	if err := typer.TypeText(""); err != nil {
		t.Errorf("TypeText(\"\") returned error: %v", err)
	}
}

func TestTypeText(t *testing.T) {
	// Typing emits real keystrokes into the focused application, so
	// only run when explicitly requested
	if os.Getenv("EZVOICEEDIT_TYPING_TEST") == "" {
		t.Skip("Skipping keystroke test (set EZVOICEEDIT_TYPING_TEST=1 to run)")
	}

	typer := NewTyper()
	if err := typer.TypeText("test"); err != nil {
		t.Errorf("TypeText returned error: %v", err)
	}
}
