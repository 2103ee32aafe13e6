package scanner

import (
	"testing"

	"nickandperla.net/itemscript/internal/token"
)

func TestScanLines(t *testing.T) {
	s := NewFromString("# hello\n// world\n\nset x 5\r\ndraw line 0 0 1 1\n")

	want := []struct {
		tok     token.Token
		keyword token.Token
		comment string
	}{
		{token.COMMENT, token.COMMENT, " hello"},
		{token.COMMENT, token.COMMENT, " world"},
		{token.BLANK, token.BLANK, ""},
		{token.TEXT, token.SET, ""},
		{token.TEXT, token.DRAW, ""},
	}

	for i, w := range want {
		l, err := s.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.Token != w.tok {
			t.Errorf("line %d: expected token %s, got %s", i+1, w.tok, l.Token)
		}
		if l.Keyword() != w.keyword {
			t.Errorf("line %d: expected keyword %s, got %s", i+1, w.keyword, l.Keyword())
		}
		if l.Comment != w.comment {
			t.Errorf("line %d: expected comment '%s', got '%s'", i+1, w.comment, l.Comment)
		}
		if l.Number != i+1 {
			t.Errorf("line %d: expected number %d, got %d", i+1, i+1, l.Number)
		}
	}

	l, err := s.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Token != token.EOF {
		t.Errorf("expected EOF, got %s", l.Token)
	}
}

func TestScanNoTrailingNewline(t *testing.T) {
	s := NewFromString("set a 1")
	l, _ := s.Next()
	if l.Text != "set a 1" {
		t.Errorf("expected 'set a 1', got '%s'", l.Text)
	}
	if l, _ = s.Next(); l.Token != token.EOF {
		t.Errorf("expected EOF, got %s", l.Token)
	}
}

func TestScanEmptyInput(t *testing.T) {
	s := NewFromString("")
	l, err := s.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Token != token.BLANK {
		t.Errorf("expected a single blank line, got %s", l.Token)
	}
	if l, _ = s.Next(); l.Token != token.EOF {
		t.Errorf("expected EOF, got %s", l.Token)
	}
}

func TestPeek(t *testing.T) {
	s := NewFromString("a\nb\n")
	p, _ := s.Peek()
	n, _ := s.Next()
	if p != n || n.Text != "a" {
		t.Errorf("expected peeked line to be returned by Next, got '%s'", n.Text)
	}
	n, _ = s.Next()
	if n.Text != "b" {
		t.Errorf("expected 'b', got '%s'", n.Text)
	}
}

func TestIndentedComment(t *testing.T) {
	l := Classify("\t# note", 1)
	if l.Token != token.COMMENT || l.Comment != " note" {
		t.Errorf("expected comment ' note', got %s '%s'", l.Token, l.Comment)
	}
}

func TestSplit(t *testing.T) {
	words, err := Split(`set greeting "hello world"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 3 || words[2] != "hello world" {
		t.Errorf("expected 3 words ending in 'hello world', got %q", words)
	}

	words, err = Split(`draw textline 0 0 text='it is' x="a \"b\""`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 6 || words[4] != "text=it is" || words[5] != `x=a "b"` {
		t.Errorf("unexpected words: %q", words)
	}

	if _, err := Split(`set x "unterminated`); err == nil {
		t.Error("expected error for unbalanced quote")
	}
}
