package scoring

import (
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// Params is an ordered query parameter list with URLSearchParams semantics:
// insertion order is kept, Set replaces the first occurrence in place and drops
// later duplicates, and Encode uses application/x-www-form-urlencoded rules.
type Params struct {
	list []param
}

type param struct {
	key   string
	value string
}

// ParseParams parses a query string. A leading '?' is ignored and empty
// segments (such as the one produced by the "?&" prefix) are skipped.
// Malformed percent escapes are kept literally instead of failing.
func ParseParams(query string) *Params {
	query = strings.TrimPrefix(query, "?")
	p := &Params{}
	for _, seg := range strings.Split(query, "&") {
		if seg == "" {
			continue
		}
		key, value, _ := strings.Cut(seg, "=")
		p.list = append(p.list, param{key: formDecode(key), value: formDecode(value)})
	}
	return p
}

// Get returns the first value stored for key.
func (p *Params) Get(key string) (string, bool) {
	for _, kv := range p.list {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

// Set stores value under key.
func (p *Params) Set(key, value string) {
	idx := -1
	out := p.list[:0]
	for _, kv := range p.list {
		if kv.key == key {
			if idx >= 0 {
				continue
			}
			idx = len(out)
			kv.value = value
		}
		out = append(out, kv)
	}
	p.list = out
	if idx < 0 {
		p.list = append(p.list, param{key: key, value: value})
	}
}

// Len reports the number of stored pairs.
func (p *Params) Len() int {
	return len(p.list)
}

// Encode serializes the list in order.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, kv := range p.list {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(formEscape(kv.key))
		b.WriteByte('=')
		b.WriteString(formEscape(kv.value))
	}
	return b.String()
}

// EscapeComponent percent-encodes s the way browsers' encodeURIComponent does.
func EscapeComponent(s string) string {
	return escape(s, func(c byte) bool {
		switch c {
		case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
			return true
		}
		return isAlnum(c)
	}, false)
}

func formEscape(s string) string {
	return escape(s, func(c byte) bool {
		switch c {
		case '*', '-', '.', '_':
			return true
		}
		return isAlnum(c)
	}, true)
}

func escape(s string, keep func(byte) bool, spaceAsPlus bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case keep(c):
			b.WriteByte(c)
		case c == ' ' && spaceAsPlus:
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

func formDecode(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			buf = append(buf, ' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		default:
			buf = append(buf, c)
		}
	}
	if !utf8.Valid(buf) {
		return strings.ToValidUTF8(string(buf), "\uFFFD")
	}
	return string(buf)
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// queryPart extracts the query portion of a URL, a "?"-prefixed query, or a bare query.
// Only a '?' with no '=' or '&' before it ends a URL prefix; a bare query may
// carry a raw '?' inside a value, e.g. ref=https://partner/?src=mail.
func queryPart(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	i := strings.IndexByte(raw, '?')
	if i < 0 || strings.ContainsAny(raw[:i], "=&") {
		return raw
	}
	return raw[i+1:]
}
