package manpage

import (
	"strings"
)

var textEscaper = strings.NewReplacer(
	`\`, `\e`,
	`-`, `\-`,
	`'`, `\(aq`,
	"`", `\(ga`,
	`"`, `\(dq`,
)

// escapeText protects s from groff interpretation. Lines starting with a
// period would be read as requests and get a zero-width prefix.
func escapeText(s string) string {
	return protectLines(textEscaper.Replace(s))
}

// protectLines prefixes every line that would start a request or a
// no-break control line with \&.
func protectLines(s string) string {
	if !strings.ContainsAny(s, ".'") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, ".") || strings.HasPrefix(line, "'") {
			lines[i] = `\&` + line
		}
	}
	return strings.Join(lines, "\n")
}

// quoteArg formats a request argument. Quotes inside the value are
// escaped so the argument is not split.
func quoteArg(s string) string {
	return `"` + escapeText(s) + `"`
}
