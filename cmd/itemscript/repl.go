package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"nickandperla.net/itemscript/internal/item"
	"nickandperla.net/itemscript/internal/scanner"
	"nickandperla.net/itemscript/pkg/itemscript"
)

var errUnknownCommand = errors.New("unknown command (try 'help')")

const helpText = `Commands:
  set <name> <value>   bind an experiment variable
  unset <name>         remove an experiment variable
  get <name>           print a variable
  eval <text>          interpolate text
  match <condition>    evaluate a condition
  item [<name>]        evaluate in an item (no name: the experiment)
  items                list the items
  vars                 list the experiment variables
  run [<item>...]      prepare and run items (no names: all)
  load <file>          load a script file
  script               print the loaded script
  help                 show this text`

func printBanner() {
	fmt.Println("itemscript REPL (Ctrl+D to exit)")
	fmt.Println()
	fmt.Println(helpText)
	fmt.Println()
}

// session is the state of one REPL.
type session struct {
	runtime *itemscript.Runtime
	item    string // Context item; empty for the experiment
}

// exec runs one command line and returns the text to print.
func (s *session) exec(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "set":
		st, err := item.ParseLine(line)
		if err != nil {
			return "", err
		}
		s.runtime.Set(st.Name, st.Words[2])
		return "", nil

	case "unset":
		if rest == "" {
			return "", fmt.Errorf("usage: unset <name>")
		}
		s.runtime.Unset(rest)
		return "", nil

	case "get":
		if rest == "" {
			return "", fmt.Errorf("usage: get <name>")
		}
		return s.runtime.Get(rest)

	case "eval":
		return s.runtime.Eval(s.item, rest)

	case "match":
		ok, err := s.runtime.Match(s.item, rest)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(ok), nil

	case "item":
		if rest != "" && !s.hasItem(rest) {
			return "", fmt.Errorf("unknown item '%s'", rest)
		}
		s.item = rest
		return "", nil

	case "items":
		var lines []string
		for _, it := range s.runtime.Items() {
			lines = append(lines, fmt.Sprintf("%s (%s)", it.Name(), it.Type()))
		}
		return strings.Join(lines, "\n"), nil

	case "vars":
		return strings.Join(s.runtime.Variables(), "\n"), nil

	case "run":
		names, err := scanner.Split(rest)
		if err != nil {
			return "", err
		}
		return "", s.runtime.Run(ctx, names...)

	case "load":
		if rest == "" {
			return "", fmt.Errorf("usage: load <file>")
		}
		return "", s.runtime.LoadFile(rest)

	case "script":
		return strings.TrimRight(s.runtime.Script(), "\n"), nil

	case "help":
		return helpText, nil
	}
	return "", errUnknownCommand
}

func (s *session) hasItem(name string) bool {
	for _, it := range s.runtime.Items() {
		if it.Name() == name {
			return true
		}
	}
	return false
}

func (s *session) prompt(continued bool) string {
	if continued {
		return "... "
	}
	if s.item != "" {
		return s.item + "> "
	}
	return ">>> "
}

func runREPL(runtime *itemscript.Runtime) {
	printBanner()

	// Check if stdin is a terminal
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Not a TTY, fall back to basic mode
		runBasicREPL(runtime, os.Stdin, os.Stdout, ">>> ")
		return
	}

	runRawREPL(runtime)
}

// runBasicREPL handles non-TTY input (piped input). An empty prompt
// suppresses prompts. It reports whether every command succeeded.
func runBasicREPL(runtime *itemscript.Runtime, in io.Reader, out io.Writer, prompt string) bool {
	s := &session{runtime: runtime}
	ctx := context.Background()
	reader := bufio.NewReader(in)
	var multiline strings.Builder
	inMultiline := false
	ok := true

	for {
		if prompt != "" {
			fmt.Fprint(out, s.prompt(inMultiline))
		}

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if prompt != "" {
				fmt.Fprintln(out)
			}
			return ok
		}

		line = strings.TrimRight(line, "\r\n")

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			inMultiline = true
			continue
		}

		var input string
		if inMultiline {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			inMultiline = false
		} else {
			input = line
		}

		if strings.TrimSpace(input) == "" || strings.HasPrefix(strings.TrimSpace(input), "#") {
			continue
		}

		result, err := s.exec(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			ok = false
			continue
		}

		if result != "" {
			fmt.Fprintln(out, result)
		}
	}
}

// runRawREPL handles TTY input with line editing and history
func runRawREPL(runtime *itemscript.Runtime) {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set raw mode: %v\n", err)
		runBasicREPL(runtime, os.Stdin, os.Stdout, ">>> ")
		return
	}
	defer term.Restore(fd, oldState)

	s := &session{runtime: runtime}
	var history []string
	var multiline strings.Builder
	inMultiline := false

	for {
		prompt := s.prompt(inMultiline)
		fmt.Print(prompt)

		line, eof := readLineRaw(fd, prompt, history)
		if eof {
			fmt.Print("\r\n")
			return
		}
		if strings.TrimSpace(line) != "" {
			history = append(history, line)
		}

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			inMultiline = true
			continue
		}

		var input string
		if inMultiline {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			inMultiline = false
		} else {
			input = line
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		// Canvas output and waits need a cooked terminal.
		term.Restore(fd, oldState)
		result, err := s.exec(context.Background(), input)
		term.MakeRaw(fd)

		if err != nil {
			fmt.Printf("Error: %v\r\n", err)
			continue
		}

		if result != "" {
			// Replace newlines with \r\n for raw mode display
			result = strings.ReplaceAll(result, "\n", "\r\n")
			fmt.Print(result + "\r\n")
		}
	}
}

// readLineRaw reads a line in raw mode with cursor movement and history.
// Returns the line and whether EOF was encountered
func readLineRaw(fd int, prompt string, history []string) (string, bool) {
	var line []rune
	cursor := 0 // Position in line (for arrow key navigation)
	recalled := len(history)
	buf := make([]byte, 1)

	// Helper to redraw line from cursor position
	redrawFromCursor := func() {
		// Clear from cursor to end of line
		fmt.Print("\x1b[K")
		// Print remaining characters
		for i := cursor; i < len(line); i++ {
			fmt.Print(string(line[i]))
		}
		// Move cursor back to position
		if cursor < len(line) {
			fmt.Printf("\x1b[%dD", len(line)-cursor)
		}
	}

	// Helper to replace the whole line, leaving the cursor at the end
	replaceLine := func(s string) {
		line = []rune(s)
		cursor = len(line)
		fmt.Print("\r\x1b[K" + prompt + s)
	}

	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return string(line), true
		}

		b := buf[0]

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			// Delete character at cursor (like Delete key)
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Print("^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter (CR or LF)
			fmt.Print("\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace (DEL or BS)
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Print("\b") // Move cursor back
				redrawFromCursor()
			}

		case 0x1b: // ESC - arrow key sequence
			seq := make([]byte, 2)
			if n, err := os.Stdin.Read(seq[:1]); err != nil || n == 0 || seq[0] != '[' {
				continue
			}
			if n, err := os.Stdin.Read(seq[1:]); err != nil || n == 0 {
				continue
			}

			switch seq[1] {
			case 'A': // Up arrow
				if recalled > 0 {
					recalled--
					replaceLine(history[recalled])
				}
			case 'B': // Down arrow
				if recalled < len(history)-1 {
					recalled++
					replaceLine(history[recalled])
				} else if recalled < len(history) {
					recalled = len(history)
					replaceLine("")
				}
			case 'C': // Right arrow
				if cursor < len(line) {
					cursor++
					fmt.Print("\x1b[C")
				}
			case 'D': // Left arrow
				if cursor > 0 {
					cursor--
					fmt.Print("\x1b[D")
				}
			case '3': // Delete key: ESC [ 3 ~
				delBuf := make([]byte, 1)
				os.Stdin.Read(delBuf)
				if delBuf[0] == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A - beginning of line
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E - end of line
			if cursor < len(line) {
				fmt.Printf("\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K - kill to end of line
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Print("\x1b[K")
			}

		case 0x15: // Ctrl+U - kill to beginning of line
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			var r rune
			if b >= 0x20 && b < 0x7f {
				// Printable ASCII character
				r = rune(b)
			} else if b >= 0x80 {
				// UTF-8 multi-byte sequence - read remaining bytes
				utfBuf := []byte{b}
				numBytes := 0
				if b&0xE0 == 0xC0 {
					numBytes = 1
				} else if b&0xF0 == 0xE0 {
					numBytes = 2
				} else if b&0xF8 == 0xF0 {
					numBytes = 3
				}
				for i := 0; i < numBytes; i++ {
					n, err := os.Stdin.Read(buf)
					if err != nil || n == 0 {
						break
					}
					utfBuf = append(utfBuf, buf[0])
				}
				r = []rune(string(utfBuf))[0]
			} else {
				continue
			}

			newLine := make([]rune, 0, len(line)+1)
			newLine = append(newLine, line[:cursor]...)
			newLine = append(newLine, r)
			newLine = append(newLine, line[cursor:]...)
			line = newLine
			cursor++
			fmt.Print(string(r))
			if cursor < len(line) {
				redrawFromCursor()
			}
		}
	}
}
