// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner splits item script text into classified lines and
// tokenizes lines with shell-style quoting.
package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"

	"nickandperla.net/itemscript/internal/token"
)

// Scanner reads script text line by line.
type Scanner struct {
	reader *bufio.Reader
	peeked *Line
	line   int // Number of lines read so far
	done   bool
}

// Line is a single line of script text.
type Line struct {
	Token   token.Token // BLANK, COMMENT, TEXT or EOF
	Text    string      // Raw line without the trailing newline
	Comment string      // Text after the comment marker, for COMMENT lines
	Number  int         // 1-based line number
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{reader: bufio.NewReader(r)}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string) *Scanner {
	return New(strings.NewReader(s))
}

// Line returns the number of lines read so far.
func (s *Scanner) Line() int {
	return s.line
}

// Peek returns the next line without consuming it.
func (s *Scanner) Peek() (*Line, error) {
	if s.peeked != nil {
		return s.peeked, nil
	}
	l, err := s.Next()
	if err != nil {
		return nil, err
	}
	s.peeked = l
	return l, nil
}

// Next returns the next line of the input. At the end of the input it
// returns a line with token EOF.
func (s *Scanner) Next() (*Line, error) {
	if s.peeked != nil {
		l := s.peeked
		s.peeked = nil
		return l, nil
	}
	if s.done {
		return &Line{Token: token.EOF, Number: s.line}, nil
	}

	text, err := s.reader.ReadString('\n')
	if err == io.EOF {
		s.done = true
		// A trailing newline does not start another line.
		if text == "" && s.line > 0 {
			return &Line{Token: token.EOF, Number: s.line}, nil
		}
	} else if err != nil {
		return nil, err
	}
	s.line++
	return Classify(strings.TrimRight(text, "\r\n"), s.line), nil
}

// Classify determines the kind of a single line.
func Classify(text string, number int) *Line {
	l := &Line{Token: token.TEXT, Text: text, Number: number}
	trimmed := strings.TrimLeft(text, " \t")
	switch {
	case strings.TrimSpace(trimmed) == "":
		l.Token = token.BLANK
	case strings.HasPrefix(trimmed, token.CommentSlash):
		l.Token = token.COMMENT
		l.Comment = trimmed[len(token.CommentSlash):]
	case strings.HasPrefix(trimmed, token.CommentHash):
		l.Token = token.COMMENT
		l.Comment = trimmed[len(token.CommentHash):]
	}
	return l
}

// Keyword returns the statement keyword the line starts with, or TEXT.
// It does not tokenize quotes, so it never fails.
func (l *Line) Keyword() token.Token {
	if l.Token != token.TEXT {
		return l.Token
	}
	fields := strings.Fields(l.Text)
	if len(fields) == 0 {
		return token.BLANK
	}
	return token.Lookup(fields[0])
}

// Words tokenizes the line with shell-style quoting.
func (l *Line) Words() ([]string, error) {
	return Split(l.Text)
}

// Split tokenizes text the way a POSIX shell splits words: whitespace
// separates words, quotes group them and backslashes escape. Unbalanced
// quotes are an error.
func Split(text string) ([]string, error) {
	words, err := shellquote.Split(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("tokenizing %q: %w", text, err)
	}
	return words, nil
}
