package collector

import (
	"fmt"
	"strings"
)

const maxIdentLen = 64

// StyleSource identifies a reference corpus: a channel handle and an
// optional keyword that every sampled post must contain.
type StyleSource struct {
	Channel string
	Keyword string
}

// String renders the source back in its canonical "@channel#keyword" form.
func (s StyleSource) String() string {
	if s.Keyword == "" {
		return "@" + s.Channel
	}
	return "@" + s.Channel + "#" + s.Keyword
}

// ParseStyleSource parses
//
//	source  = handle [ ws "#" ws keyword ]
//	handle  = "@" ident | "t.me/" ident | "https://t.me/" ident
//	ident   = letter { letter | digit | "_" }
//
// The keyword is everything after "#", trimmed, and must not be empty.
func ParseStyleSource(input string) (StyleSource, error) {
	p := sourceParser{in: strings.TrimSpace(input)}

	if !p.handle() {
		return StyleSource{}, invalidFormat(input, "expected @channel or t.me/channel")
	}
	channel, ok := p.ident()
	if !ok {
		return StyleSource{}, invalidFormat(input, "channel name must start with a letter and contain only letters, digits and _")
	}

	p.skipSpace()
	if p.done() {
		return StyleSource{Channel: channel}, nil
	}
	if !p.consume("#") {
		return StyleSource{}, invalidFormat(input, fmt.Sprintf("unexpected %q after channel name", p.rest()))
	}
	keyword := strings.TrimSpace(p.rest())
	if keyword == "" {
		return StyleSource{}, invalidFormat(input, "keyword after # is empty")
	}
	return StyleSource{Channel: channel, Keyword: keyword}, nil
}

type sourceParser struct {
	in  string
	pos int
}

func (p *sourceParser) done() bool   { return p.pos >= len(p.in) }
func (p *sourceParser) rest() string { return p.in[p.pos:] }

func (p *sourceParser) consume(prefix string) bool {
	if strings.HasPrefix(p.in[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *sourceParser) handle() bool {
	for _, prefix := range []string{"@", "https://t.me/", "http://t.me/", "t.me/"} {
		if p.consume(prefix) {
			return true
		}
	}
	return false
}

func (p *sourceParser) ident() (string, bool) {
	start := p.pos
	for p.pos < len(p.in) && p.pos-start < maxIdentLen+1 {
		c := p.in[p.pos]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if p.pos == start && !isLetter {
			return "", false
		}
		if !isLetter && !isDigit && c != '_' {
			break
		}
		p.pos++
	}
	n := p.pos - start
	if n == 0 || n > maxIdentLen {
		return "", false
	}
	return p.in[start:p.pos], true
}

func (p *sourceParser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t') {
		p.pos++
	}
}
