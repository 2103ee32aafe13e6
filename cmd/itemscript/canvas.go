package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"nickandperla.net/itemscript/pkg/itemscript"
)

// textCanvas prints each frame as one line per element.
type textCanvas struct {
	w     io.Writer
	frame []string
}

func newTextCanvas(w io.Writer) *textCanvas {
	return &textCanvas{w: w}
}

func (c *textCanvas) Clear() error {
	c.frame = c.frame[:0]
	return nil
}

func (c *textCanvas) Draw(e *itemscript.Element) error {
	props := e.Properties()
	var sb strings.Builder
	sb.WriteString(e.Kind())
	for _, name := range slices.Sorted(maps.Keys(props)) {
		fmt.Fprintf(&sb, " %s=%s", name, props[name])
	}
	c.frame = append(c.frame, sb.String())
	return nil
}

func (c *textCanvas) Show() error {
	for _, line := range c.frame {
		if _, err := fmt.Fprintln(c.w, line); err != nil {
			return err
		}
	}
	return nil
}
