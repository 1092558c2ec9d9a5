package discovery

import (
	"bytes"
	"fmt"
)

// span is a half-open byte range [start, end) of the source
type span struct {
	start, end int
}

// masked is a PHP source with everything that is not code blanked out.
// Comment bodies, string-literal bodies and inline HTML are replaced by
// spaces; newlines and quote characters are kept so byte offsets and line
// numbers stay aligned with the unmasked source.
type masked struct {
	src  []byte
	code []byte
	docs []span // /** ... */ blocks, in source order
}

// mask lexes src just far enough to separate code from comments and strings
func mask(src []byte) (*masked, error) {
	m := &masked{src: src, code: make([]byte, len(src))}
	copy(m.code, src)

	open := bytes.Index(src, []byte("<?php"))
	if open < 0 {
		open = bytes.Index(src, []byte("<?="))
	}
	if open < 0 {
		return nil, fmt.Errorf("missing <?php open tag")
	}

	blank := func(from, to int) {
		for k := from; k < to && k < len(m.code); k++ {
			if m.code[k] != '\n' {
				m.code[k] = ' '
			}
		}
	}

	// Inline HTML before the first open tag is not code.
	blank(0, open)
	i := open + 2
	n := len(src)

	for i < n {
		c := src[i]
		switch {
		case c == '?' && i+1 < n && src[i+1] == '>':
			// Close tag: everything up to the next open tag is inline HTML.
			next := bytes.Index(src[i+2:], []byte("<?php"))
			if next < 0 {
				blank(i+2, n)
				return m, nil
			}
			blank(i+2, i+2+next)
			i = i + 2 + next + len("<?php")

		case c == '/' && i+1 < n && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment at line %d", lineAt(src, i))
			}
			end = i + 2 + end + 2
			if i+2 < n && src[i+2] == '*' && end-i > 4 {
				m.docs = append(m.docs, span{i, end})
			}
			blank(i, end)
			i = end

		case c == '/' && i+1 < n && src[i+1] == '/', c == '#' && !(i+1 < n && src[i+1] == '['):
			end := i
			for end < n && src[end] != '\n' {
				if src[end] == '?' && end+1 < n && src[end+1] == '>' {
					break
				}
				end++
			}
			blank(i, end)
			i = end

		case c == '\'' || c == '"' || c == '`':
			end, err := skipQuoted(src, i)
			if err != nil {
				return nil, err
			}
			blank(i+1, end-1)
			i = end

		case c == '<' && bytes.HasPrefix(src[i:], []byte("<<<")):
			end, err := skipHeredoc(src, i)
			if err != nil {
				return nil, err
			}
			blank(i, end)
			i = end

		default:
			i++
		}
	}
	return m, nil
}

// skipQuoted returns the offset just past the closing quote of the literal starting at i
func skipQuoted(src []byte, i int) (int, error) {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated string literal at line %d", lineAt(src, i))
}

// skipHeredoc returns the offset just past the closing identifier of a heredoc or nowdoc
func skipHeredoc(src []byte, i int) (int, error) {
	j := i + 3
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	quoted := j < len(src) && (src[j] == '\'' || src[j] == '"')
	if quoted {
		j++
	}
	start := j
	for j < len(src) && isIdentByte(src[j]) {
		j++
	}
	label := src[start:j]
	if len(label) == 0 {
		// Not a heredoc; "<<<" cannot appear otherwise, so treat it as code.
		return i + 3, nil
	}
	nl := bytes.IndexByte(src[j:], '\n')
	if nl < 0 {
		return 0, fmt.Errorf("unterminated heredoc at line %d", lineAt(src, i))
	}
	pos := j + nl + 1
	for pos < len(src) {
		lineEnd := bytes.IndexByte(src[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(src) - pos
		}
		line := bytes.TrimLeft(src[pos:pos+lineEnd], " \t")
		if bytes.HasPrefix(line, label) && (len(line) == len(label) || !isIdentByte(line[len(label)])) {
			indent := lineEnd - len(line)
			return pos + indent + len(label), nil
		}
		pos += lineEnd + 1
	}
	return 0, fmt.Errorf("unterminated heredoc at line %d", lineAt(src, i))
}

func isIdentByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9') || b >= 0x80
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// lineAt returns the 1-based line number of offset
func lineAt(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.Count(src[:offset], []byte("\n")) + 1
}

// matchBrace returns the offset of the brace closing the one at open
func (m *masked) matchBrace(open int) (int, bool) {
	depth := 0
	for k := open; k < len(m.code); k++ {
		switch m.code[k] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return k, true
			}
		}
	}
	return 0, false
}

// checkBalance verifies that braces, brackets and parentheses are balanced
func (m *masked) checkBalance() error {
	var stack []int
	pairs := map[byte]byte{'}': '{', ']': '[', ')': '('}
	for k, c := range m.code {
		switch c {
		case '{', '[', '(':
			stack = append(stack, k)
		case '}', ']', ')':
			if len(stack) == 0 || m.code[stack[len(stack)-1]] != pairs[c] {
				return fmt.Errorf("unexpected %q at line %d", c, lineAt(m.src, k))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q opened at line %d", m.code[stack[len(stack)-1]], lineAt(m.src, stack[len(stack)-1]))
	}
	return nil
}
