package typing

import "github.com/go-vgo/robotgo"

// Typer injects text at the current cursor position as synthetic
// keystrokes. Unlike paste-based insertion this never touches the
// pasteboard, so the user's clipboard is left intact.
type Typer struct{}

// NewTyper creates a new keystroke typer
func NewTyper() *Typer {
	return &Typer{}
}

// TypeText types the given text at the current cursor position
func (t *Typer) TypeText(text string) error {
	if text == "" {
		return nil
	}

	robotgo.TypeStr(text)
	return nil
}
