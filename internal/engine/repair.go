package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Key repair rewrites iteration calls so every rendered list item carries a
// stable identity key. The pass is text-level (the input may be syntactically
// unusual AI output), deterministic, and idempotent: a span that already
// carries a key in any common notation is left untouched.

var arrowParamsRe = regexp.MustCompile(`^(\s*)(?:\(\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*(?:,\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*)?\)|([A-Za-z_$][A-Za-z0-9_$]*))\s*=>\s*`)

// Repair injects a key property into every .map( iteration whose region lacks
// one. Identity prefers the item's stable id and degrades to the loop index:
// String(<item>.id || <idx>).
func Repair(code string) string {
	spans := topLevelMapSpans(code)
	// back-to-front so earlier offsets stay valid after splicing
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		content := code[s.open+1 : s.close]
		code = code[:s.open+1] + repairMapContent(content) + code[s.close:]
	}
	return code
}

// repairMapContent handles one iteration region: key injection for this span,
// then a recursive pass over any maps nested inside it.
func repairMapContent(content string) string {
	if !keyNotationRe.MatchString(content) {
		content = injectKey(content)
	}
	return Repair(content)
}

// injectKey guarantees an index parameter on the arrow function and writes a
// key property into the first createElement call whose props argument is
// empty, absent, or null.
func injectKey(content string) string {
	itemVar, indexVar := "item", ""
	body := content
	prefix := ""
	if m := arrowParamsRe.FindStringSubmatch(content); m != nil {
		lead := m[1]
		if m[2] != "" {
			itemVar = m[2]
			indexVar = m[3]
		} else {
			itemVar = m[4]
		}
		if indexVar == "" {
			indexVar = "idx"
		}
		prefix = fmt.Sprintf("%s(%s, %s) => ", lead, itemVar, indexVar)
		body = content[len(m[0]):]
	} else {
		// unparseable parameter list: fall back to generic names; idx is
		// defined by the preamble so the fallback still evaluates
		indexVar = "idx"
		prefix = ""
		body = content
	}
	keyExpr := fmt.Sprintf("String(%s.id || %s)", itemVar, indexVar)
	return prefix + injectKeyIntoBody(body, keyExpr)
}

func injectKeyIntoBody(body, keyExpr string) string {
	shadow := blankStrings(body)
	from := 0
	var fallbackOpen = -1 // first call with a non-empty props object
	for {
		i := strings.Index(shadow[from:], CreateMarker+"(")
		if i < 0 {
			break
		}
		open := from + i + len(CreateMarker)
		from = open + 1
		closeIdx := matchParen(shadow, open)
		if closeIdx < 0 {
			continue
		}
		callContent := body[open+1 : closeIdx]
		args := splitTopArgs(callContent)
		if len(args) == 1 {
			// absent props: createElement('div') -> add a props object
			insert := open + 1 + args[0][1]
			return body[:insert] + ", { key: " + keyExpr + " }" + body[insert:]
		}
		if len(args) >= 2 {
			propsText := callContent[args[1][0]:args[1][1]]
			trimmed := strings.TrimSpace(propsText)
			if trimmed == "null" || trimmed == "undefined" || trimmed == "{}" {
				start := open + 1 + args[1][0]
				end := open + 1 + args[1][1]
				return body[:start] + " { key: " + keyExpr + " }" + body[end:]
			}
			if strings.HasPrefix(trimmed, "{") && fallbackOpen < 0 {
				fallbackOpen = open + 1 + args[1][0] + strings.Index(propsText, "{")
			}
		}
	}
	// no call had empty props: settle for the first props object found
	if fallbackOpen >= 0 {
		return body[:fallbackOpen+1] + " key: " + keyExpr + "," + body[fallbackOpen+1:]
	}
	return body
}
