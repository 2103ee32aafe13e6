package main

import (
	"fmt"
	"io"

	"golang.org/x/term"
)

// keyboard waits for a key on the terminal. A terminal has no mouse, so a
// mouseclick is any key as well.
type keyboard struct {
	f fdReader
}

// fdReader is an input with a file descriptor, such as os.Stdin.
type fdReader interface {
	io.Reader
	Fd() uintptr
}

func newKeyboard(f fdReader) *keyboard {
	return &keyboard{f: f}
}

func (k *keyboard) WaitKeypress() error {
	fd := int(k.f.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)
	}
	buf := make([]byte, 1)
	if _, err := k.f.Read(buf); err != nil {
		return fmt.Errorf("waiting for a key: %w", err)
	}
	return nil
}

func (k *keyboard) WaitMouseclick() error {
	return k.WaitKeypress()
}
