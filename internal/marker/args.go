package marker

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalidArgs is returned for argument blocks outside the supported
// object literal subset.
var ErrInvalidArgs = errors.New("marker: invalid argument block")

const maxArgsDepth = 32

var numberPattern = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?$`)

// ParseArgs reads an argument block: `{...}`, `({...})`, `([...])` or `()`.
// Keys may be bare or quoted; values are strings, numbers, booleans, null,
// objects and arrays. Numbers decode to float64.
func ParseArgs(src string) (any, error) {
	p := &argParser{src: src}
	p.space()

	paren := p.eat('(')
	p.space()

	var (
		value any
		err   error
	)
	switch {
	case paren && p.peek() == ')':
	case p.peek() == '{':
		value, err = p.object(0)
	case paren && p.peek() == '[':
		value, err = p.array(0)
	default:
		err = p.fail("expected object")
	}
	if err != nil {
		return nil, err
	}

	p.space()
	if paren && !p.eat(')') {
		return nil, p.fail("expected )")
	}
	p.space()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected trailing input")
	}
	return value, nil
}

type argParser struct {
	src string
	pos int
}

func (p *argParser) fail(msg string) error {
	return fmt.Errorf("%w: %s at offset %d", ErrInvalidArgs, msg, p.pos)
}

func (p *argParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *argParser) eat(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *argParser) space() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *argParser) value(depth int) (any, error) {
	if depth > maxArgsDepth {
		return nil, p.fail("nesting too deep")
	}
	switch c := p.peek(); c {
	case '{':
		return p.object(depth + 1)
	case '[':
		return p.array(depth + 1)
	case '"', '\'':
		return p.str()
	case 0:
		return nil, p.fail("unexpected end")
	default:
		return p.literal()
	}
}

func (p *argParser) object(depth int) (map[string]any, error) {
	if !p.eat('{') {
		return nil, p.fail("expected {")
	}
	out := map[string]any{}
	for {
		p.space()
		if p.eat('}') {
			return out, nil
		}
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		p.space()
		if !p.eat(':') {
			return nil, p.fail("expected :")
		}
		p.space()
		val, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		out[key] = val
		p.space()
		if p.eat(',') {
			continue
		}
		if p.eat('}') {
			return out, nil
		}
		return nil, p.fail("expected , or }")
	}
}

func (p *argParser) array(depth int) ([]any, error) {
	if !p.eat('[') {
		return nil, p.fail("expected [")
	}
	out := []any{}
	for {
		p.space()
		if p.eat(']') {
			return out, nil
		}
		val, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		p.space()
		if p.eat(',') {
			continue
		}
		if p.eat(']') {
			return out, nil
		}
		return nil, p.fail("expected , or ]")
	}
}

func (p *argParser) key() (string, error) {
	if c := p.peek(); c == '"' || c == '\'' {
		return p.str()
	}
	start := p.pos
	for p.pos < len(p.src) && isKeyByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return "", p.fail("expected key")
	}
	return p.src[start:p.pos], nil
}

func isKeyByte(c byte) bool {
	return c == '_' || c == '$' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *argParser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.fail("unterminated escape")
			}
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", p.fail("unterminated string")
}

func (p *argParser) escape(b *strings.Builder) error {
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'u':
		if p.pos+4 > len(p.src) {
			return p.fail("short unicode escape")
		}
		code, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
		if err != nil {
			return p.fail("invalid unicode escape")
		}
		b.WriteRune(rune(code))
		p.pos += 4
	default:
		b.WriteByte(c)
	}
	return nil
}

func (p *argParser) literal() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(",}]): \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
	token := p.src[start:p.pos]
	switch token {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	if numberPattern.MatchString(token) {
		n, err := strconv.ParseFloat(token, 64)
		if err == nil {
			return n, nil
		}
	}
	p.pos = start
	return nil, p.fail(fmt.Sprintf("unsupported value %q", token))
}
