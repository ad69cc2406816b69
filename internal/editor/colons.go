package editor

import "regexp"

// A function signature without its trailing colon.
const signatureBase = `(?:async[ \t]+)?def[ \t]+[A-Za-z_]\w*[ \t]*\([^)]*\)[ \t]*(?:->[ \t]*[^:\n]+?)?`

var (
	// Signature followed directly by end of line.
	missingColonEOL = regexp.MustCompile(`(?m)^([ \t]*` + signatureBase + `)[ \t]*$`)
	// Signature followed by an inline body or comment; the replacement
	// keeps the original spacing between signature and rest.
	// The body group excludes '-' and '>' so a return annotation is never
	// mistaken for an inline body.
	missingColonInline = regexp.MustCompile(`(?m)^([ \t]*` + signatureBase + `)([ \t]+)([^:\s>-].*)$`)
)

// FixFunctionColons inserts the colon missing after def / async def
// signatures, in both newline and inline-body forms. Snippets that need no
// repair come back unchanged.
func FixFunctionColons(snippet string) string {
	fixed := missingColonEOL.ReplaceAllString(snippet, "$1:")
	fixed = missingColonInline.ReplaceAllString(fixed, "$1:$2$3")
	return fixed
}
