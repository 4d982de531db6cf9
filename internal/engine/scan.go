package engine

import "strings"

// Text-level scanning helpers shared by the validator and the repair pass.
// These operate on raw source text because the input may be syntactically
// unusual AI output that the parser would reject outright.

// blankStrings returns a same-length shadow of src with string and template
// literal contents replaced by spaces and comments blanked entirely, so
// bracket matching and word searches ignore quoted and commented text. An
// apostrophe inside a comment must not open a phantom string literal.
func blankStrings(src string) string {
	out := []byte(src)
	i := 0
	for i < len(out) {
		c := out[i]
		if c == '/' && i+1 < len(out) && out[i+1] == '/' {
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
			continue
		}
		if c == '/' && i+1 < len(out) && out[i+1] == '*' {
			out[i], out[i+1] = ' ', ' '
			i += 2
			for i < len(out) {
				if out[i] == '*' && i+1 < len(out) && out[i+1] == '/' {
					out[i], out[i+1] = ' ', ' '
					i += 2
					break
				}
				out[i] = ' '
				i++
			}
			continue
		}
		if c == '\'' || c == '"' || c == '`' {
			quote := c
			i++
			for i < len(out) {
				if out[i] == '\\' && i+1 < len(out) {
					out[i] = ' '
					out[i+1] = ' '
					i += 2
					continue
				}
				if out[i] == quote {
					break
				}
				out[i] = ' '
				i++
			}
			if i < len(out) {
				i++ // closing quote
			}
			continue
		}
		i++
	}
	return string(out)
}

// matchParen returns the index of the ')' matching the '(' at open, or -1.
// shadow must be a string-blanked copy so quoted parens do not count.
func matchParen(shadow string, open int) int {
	depth := 0
	for i := open; i < len(shadow); i++ {
		switch shadow[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// span is a half-open region of source text delimited by the parens of a
// .map( invocation: [open] is the '(' index, [close] the matching ')'.
type span struct{ open, close int }

// mapSpans finds every .map( argument region in src, including nested ones.
func mapSpans(src string) []span {
	shadow := blankStrings(src)
	var spans []span
	from := 0
	for {
		i := strings.Index(shadow[from:], ".map(")
		if i < 0 {
			break
		}
		open := from + i + len(".map")
		if close := matchParen(shadow, open); close > 0 {
			spans = append(spans, span{open: open, close: close})
		}
		from = open + 1
	}
	return spans
}

// topLevelMapSpans keeps only spans not contained in another found span.
func topLevelMapSpans(src string) []span {
	all := mapSpans(src)
	var top []span
	for i, s := range all {
		nested := false
		for j, outer := range all {
			if i != j && s.open > outer.open && s.close < outer.close {
				nested = true
				break
			}
		}
		if !nested {
			top = append(top, s)
		}
	}
	return top
}

// blankMapSpans replaces every .map( argument region with spaces, leaving
// everything outside iteration contexts intact.
func blankMapSpans(src string) string {
	out := []byte(src)
	for _, s := range mapSpans(src) {
		for i := s.open + 1; i < s.close; i++ {
			out[i] = ' '
		}
	}
	return string(out)
}

// splitTopArgs returns the top-level argument regions of a call argument
// list, as offsets into content. content is the text between the call parens.
func splitTopArgs(content string) [][2]int {
	shadow := blankStrings(content)
	var args [][2]int
	depth := 0
	start := 0
	for i := 0; i < len(shadow); i++ {
		switch shadow[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, [2]int{start, i})
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(content[start:]) != "" || len(args) > 0 {
		args = append(args, [2]int{start, len(content)})
	}
	return args
}
