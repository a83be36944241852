package runtime

import (
	"fmt"
	"regexp"
)

// Interpolator expands {{name}} placeholders in text against the session's
// variable map. Implementations must be side-effect free and idempotent:
// interpolating already-resolved text is a no-op.
type Interpolator func(text string, vars map[string]any) string

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Interpolate is the default Interpolator. Tokens whose variable is absent
// are left unresolved in the output, so a misauthored flow degrades to
// visible placeholders instead of silently dropping text.
func Interpolate(text string, vars map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(token string) string {
		name := placeholderRe.FindStringSubmatch(token)[1]
		value, ok := vars[name]
		if !ok {
			return token
		}
		return fmt.Sprintf("%v", value)
	})
}
