package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// CreateMarker is the construction primitive every template must invoke.
const CreateMarker = "React.createElement"

// Result reports whether template source is safe to execute and, if not, a
// message the author can act on.
type Result struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

// collectionProps are the plural data bindings that must be iterated, never
// rendered directly.
var collectionProps = []string{"workExperience", "education", "skills", "projects"}

var (
	freeIndexRe   = regexp.MustCompile(`(^|[^A-Za-z0-9_$.])(idx|index)([^A-Za-z0-9_$]|$)`)
	keyNotationRe = regexp.MustCompile(`(^|[^A-Za-z0-9_$.])key\s*[:=]|['"]key['"]\s*:`)
)

// Validate inspects template source before any execution attempt. Checks run
// in order and short-circuit on the first failure; execution must never be
// attempted on an invalid result.
func Validate(code string) Result {
	if strings.TrimSpace(code) == "" {
		return Result{Error: "Template code is empty"}
	}
	if !strings.Contains(code, CreateMarker) {
		return Result{Error: fmt.Sprintf("Template must call %s at least once", CreateMarker)}
	}
	if name := directCollectionRender(code); name != "" {
		return Result{Error: fmt.Sprintf("%s cannot be rendered directly; iterate it with %s.map(...) instead", name, name)}
	}
	// blank out iteration argument regions, then look for loop counters that
	// survived: those reference an index outside any iteration scope
	remainder := blankStrings(blankMapSpans(code))
	if freeIndexRe.MatchString(remainder) {
		return Result{Error: "index/idx used outside of an iteration context"}
	}
	if _, err := Parse(code); err != nil {
		return Result{Error: "Syntax error: " + err.Error()}
	}
	return Result{IsValid: true}
}

// directCollectionRender reports the first collection binding used as a bare
// value (not followed by a member access such as .map or .length, nor guarding
// a conditional), which would render the raw list instead of iterating it.
func directCollectionRender(code string) string {
	shadow := blankStrings(code)
	for _, name := range collectionProps {
		from := 0
		for {
			i := strings.Index(shadow[from:], name)
			if i < 0 {
				break
			}
			at := from + i
			from = at + len(name)
			if at > 0 && (isIdentPart(shadow[at-1]) || shadow[at-1] == '.') {
				continue
			}
			end := at + len(name)
			if end < len(shadow) && isIdentPart(shadow[end]) {
				continue
			}
			j := end
			for j < len(shadow) && (shadow[j] == ' ' || shadow[j] == '\t' || shadow[j] == '\n' || shadow[j] == '\r') {
				j++
			}
			if j < len(shadow) && shadow[j] == '.' {
				continue // member access, fine
			}
			// truthiness guards (skills && ..., skills ? ... : ...) read the
			// list without rendering it
			if j < len(shadow) && shadow[j] == '?' {
				continue
			}
			if j+1 < len(shadow) && shadow[j] == '&' && shadow[j+1] == '&' {
				continue
			}
			return name
		}
	}
	return ""
}

// MissingKeyWarnings reports iteration regions that carry no key property.
// Non-blocking: the repair pass is expected to have fixed these at save time,
// and render-time validation stays lenient toward non-standard key styles.
func MissingKeyWarnings(code string) []string {
	var warnings []string
	for _, s := range mapSpans(code) {
		content := code[s.open+1 : s.close]
		if !keyNotationRe.MatchString(content) {
			warnings = append(warnings, fmt.Sprintf("iteration at offset %d has no key property", s.open))
		}
	}
	return warnings
}
