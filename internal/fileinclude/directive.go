package fileinclude

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// directive is one parsed include call; start and end delimit it in the
// scanned content.
type directive struct {
	start, end int
	name       string
	target     string
	markdown   bool
	vars       map[string]any
}

// next finds the first include directive in content.
func (p *Processor) next(content []byte) (directive, bool, error) {
	prefix := []byte(p.prefix + directiveInclude)
	offset := 0
	for {
		i := bytes.Index(content[offset:], prefix)
		if i < 0 {
			return directive{}, false, nil
		}
		start := offset + i
		pos := start + len(prefix)

		name := directiveInclude
		if bytes.HasPrefix(content[pos:], []byte("_once")) {
			name = directiveIncludeOnce
			pos += len("_once")
		}
		pos = skipSpace(content, pos)
		if pos >= len(content) || content[pos] != '(' {
			offset = start + len(prefix)
			continue
		}

		closeAt, err := matchParen(content, pos)
		if err != nil {
			return directive{}, false, err
		}
		d, err := parseArgs(string(content[pos+1 : closeAt]))
		if err != nil {
			return directive{}, false, err
		}
		d.start = start
		d.end = closeAt + 1
		d.name = name
		return d, true, nil
	}
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return i
}

// matchParen returns the index of the parenthesis closing the one at open,
// ignoring parentheses inside quoted strings.
func matchParen(b []byte, open int) (int, error) {
	depth := 0
	var quote byte
	for i := open; i < len(b); i++ {
		c := b[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unterminated directive")
}

// parseArgs parses "'path'", "'path', {json}" or "markdown('path')".
func parseArgs(args string) (directive, error) {
	var d directive
	args = strings.TrimSpace(args)

	if rest, ok := strings.CutPrefix(args, "markdown"); ok {
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
			return d, fmt.Errorf("malformed markdown include %q", args)
		}
		target, tail, err := quoted(strings.TrimSpace(rest[1 : len(rest)-1]))
		if err != nil {
			return d, err
		}
		if strings.TrimSpace(tail) != "" {
			return d, fmt.Errorf("unexpected arguments after markdown path in %q", args)
		}
		d.target = target
		d.markdown = true
		return d, nil
	}

	target, tail, err := quoted(args)
	if err != nil {
		return d, err
	}
	d.target = target

	tail = strings.TrimSpace(tail)
	if tail == "" {
		return d, nil
	}
	tail, ok := strings.CutPrefix(tail, ",")
	if !ok {
		return d, fmt.Errorf("expected ',' after include path in %q", args)
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(tail)), &d.vars); err != nil {
		return d, fmt.Errorf("include context is not a JSON object: %w", err)
	}
	return d, nil
}

// quoted splits a leading single or double quoted string from s.
func quoted(s string) (value, rest string, err error) {
	if s == "" || (s[0] != '\'' && s[0] != '"') {
		return "", "", fmt.Errorf("expected quoted path in %q", s)
	}
	q := s[0]
	end := strings.IndexByte(s[1:], q)
	if end < 0 {
		return "", "", fmt.Errorf("unterminated path in %q", s)
	}
	return s[1 : end+1], s[end+2:], nil
}
