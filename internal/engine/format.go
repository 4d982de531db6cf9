package engine

import "strings"

// Format re-lays template source for the code editor: leading return, single
// spacing, and long call/object bodies broken one argument per line. It is
// cosmetic only and never on the safety path; anything unexpected returns the
// input unchanged. The executor treats formatted and unformatted code
// identically.
func Format(code string) (out string) {
	defer func() {
		if recover() != nil {
			out = code
		}
	}()
	src := strings.TrimSpace(code)
	if src == "" {
		return code
	}
	src = collapseSpace(src)
	if !hasReturnKeyword(src) {
		src = "return " + src
	}
	return relayout(src)
}

// breakThresholdChars and breakThresholdArgs decide when a bracketed region
// is split onto multiple lines.
const (
	breakThresholdChars = 60
	breakThresholdArgs  = 3
)

const indentUnit = "  "

func hasReturnKeyword(src string) bool {
	if !strings.HasPrefix(src, "return") {
		return false
	}
	return len(src) == len("return") || !isIdentPart(src[len("return")])
}

// collapseSpace squeezes runs of whitespace outside string literals into a
// single space. String contents are copied verbatim so formatting can never
// alter rendered text.
func collapseSpace(src string) string {
	var sb strings.Builder
	var quote byte
	pendingSpace := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				i++
				sb.WriteByte(src[i])
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' || c == '`' {
			if pendingSpace {
				sb.WriteByte(' ')
				pendingSpace = false
			}
			quote = c
			sb.WriteByte(c)
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// relayout walks the collapsed source and breaks wide bracket regions.
func relayout(src string) string {
	shadow := blankStrings(src)
	broken := make([]bool, 0, 8)
	depth := 0
	var sb strings.Builder
	writeIndent := func() {
		sb.WriteByte('\n')
		for i := 0; i < depth; i++ {
			sb.WriteString(indentUnit)
		}
	}
	for i := 0; i < len(src); i++ {
		c := src[i]
		if shadow[i] != c && !(c == '\'' || c == '"' || c == '`') {
			// string literal interior
			sb.WriteByte(c)
			continue
		}
		switch c {
		case '(', '{', '[':
			sb.WriteByte(c)
			b := shouldBreak(src, shadow, i)
			broken = append(broken, b)
			depth++
			if b {
				writeIndent()
				// skip a space right after the opener
				if i+1 < len(src) && src[i+1] == ' ' {
					i++
				}
			}
		case ')', '}', ']':
			depth--
			if len(broken) > 0 && broken[len(broken)-1] {
				writeIndent()
			}
			if len(broken) > 0 {
				broken = broken[:len(broken)-1]
			}
			sb.WriteByte(c)
		case ',':
			sb.WriteByte(c)
			if len(broken) > 0 && broken[len(broken)-1] {
				writeIndent()
				if i+1 < len(src) && src[i+1] == ' ' {
					i++
				}
			} else if i+1 < len(src) && src[i+1] != ' ' {
				sb.WriteByte(' ')
			}
		case ';':
			sb.WriteByte(c)
			if i+1 < len(src) {
				writeIndent()
				if src[i+1] == ' ' {
					i++
				}
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// shouldBreak decides whether the bracket region opening at open is wide
// enough to split across lines.
func shouldBreak(src, shadow string, open int) bool {
	depth := 0
	args := 1
	for j := open; j < len(shadow); j++ {
		switch shadow[j] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth == 0 {
				if j-open > breakThresholdChars {
					return true
				}
				return src[open] == '(' && args > breakThresholdArgs
			}
		case ',':
			if depth == 1 {
				args++
			}
		}
	}
	return false
}
