package engine

import (
	"fmt"
	"strings"
)

// Token kinds for the restricted construction-call language. The language is
// a small expression grammar (literals, member access, calls, arrow functions,
// object/array literals) — just enough to express createElement trees.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokTemplate
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
	// template literals carry their parts separately
	parts []templatePart
}

// templatePart is either literal text or an embedded ${...} expression source.
type templatePart struct {
	text    string
	exprSrc string
	isExpr  bool
}

var multiPuncts = []string{"===", "!==", "=>", "==", "!=", "&&", "||", "<=", ">="}

type lexer struct {
	src  string
	pos  int
	toks []token
}

// lex tokenizes src. Comments (// and /* */) are skipped so AI output with
// stray commentary still lexes.
func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment at position %d", l.pos)
			}
			l.pos += 2 + end + 2
		case c == '\'' || c == '"':
			if err := l.lexString(c); err != nil {
				return nil, err
			}
		case c == '`':
			if err := l.lexTemplate(); err != nil {
				return nil, err
			}
		case c >= '0' && c <= '9':
			l.lexNumber()
		case isIdentStart(c):
			l.lexIdent()
		default:
			if err := l.lexPunct(); err != nil {
				return nil, err
			}
		}
	}
	l.toks = append(l.toks, token{kind: tokEOF, pos: len(src)})
	return l.toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) lexIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	l.toks = append(l.toks, token{kind: tokIdent, text: l.src[start:l.pos], pos: start})
}

func (l *lexer) lexNumber() {
	start := l.pos
	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '.' && !seenDot && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
			seenDot = true
			l.pos++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		l.pos++
	}
	l.toks = append(l.toks, token{kind: tokNumber, text: l.src[start:l.pos], pos: start})
}

func (l *lexer) lexString(quote byte) error {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			sb.WriteByte(unescape(l.src[l.pos+1]))
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			l.toks = append(l.toks, token{kind: tokString, text: sb.String(), pos: start})
			return nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return fmt.Errorf("unterminated string at position %d", start)
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// lexTemplate scans a backtick template literal into text/expression parts.
// Embedded ${...} sources are re-parsed later by the parser.
func (l *lexer) lexTemplate() error {
	start := l.pos
	l.pos++ // backtick
	var parts []templatePart
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			sb.WriteByte(unescape(l.src[l.pos+1]))
			l.pos += 2
			continue
		}
		if c == '$' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '{' {
			if sb.Len() > 0 {
				parts = append(parts, templatePart{text: sb.String()})
				sb.Reset()
			}
			exprStart := l.pos + 2
			depth := 1
			i := exprStart
			for i < len(l.src) && depth > 0 {
				switch l.src[i] {
				case '{':
					depth++
				case '}':
					depth--
				}
				i++
			}
			if depth != 0 {
				return fmt.Errorf("unterminated ${ in template literal at position %d", l.pos)
			}
			parts = append(parts, templatePart{exprSrc: l.src[exprStart : i-1], isExpr: true})
			l.pos = i
			continue
		}
		if c == '`' {
			if sb.Len() > 0 {
				parts = append(parts, templatePart{text: sb.String()})
			}
			l.pos++
			l.toks = append(l.toks, token{kind: tokTemplate, pos: start, parts: parts})
			return nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return fmt.Errorf("unterminated template literal at position %d", start)
}

func (l *lexer) lexPunct() error {
	for _, p := range multiPuncts {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.toks = append(l.toks, token{kind: tokPunct, text: p, pos: l.pos})
			l.pos += len(p)
			return nil
		}
	}
	c := l.src[l.pos]
	switch c {
	case '(', ')', '{', '}', '[', ']', ',', '.', ':', ';', '?', '!', '+', '-', '*', '/', '<', '>', '=':
		l.toks = append(l.toks, token{kind: tokPunct, text: string(c), pos: l.pos})
		l.pos++
		return nil
	}
	return fmt.Errorf("unexpected character %q at position %d", string(c), l.pos)
}
