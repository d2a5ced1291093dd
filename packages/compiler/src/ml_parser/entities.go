package ml_parser

import (
	"unicode/utf8"

	"golang.org/x/net/html"

	"gtc-go/packages/compiler/src/core"
)

// decodeCharRef resolves the body of a character reference (the text between
// '&' and ';'). It accepts `#NNN`, `#xHEX` and named references.
func decodeCharRef(entity string) (string, bool) {
	if !isCharRefShape(entity) {
		return "", false
	}
	raw := "&" + entity + ";"
	decoded := html.UnescapeString(raw)
	// UnescapeString falls back to legacy prefixes ("&ampx;" -> "&x;"); a real
	// match always yields one or two code points.
	if decoded == raw || utf8.RuneCountInString(decoded) > 2 {
		return "", false
	}
	return decoded, true
}

func isCharRefShape(entity string) bool {
	if entity == "" {
		return false
	}
	if entity[0] == '#' {
		body := entity[1:]
		if body != "" && (body[0] == 'x' || body[0] == 'X') {
			body = body[1:]
			if body == "" {
				return false
			}
			for _, r := range body {
				if !core.IsAsciiHexDigit(r) {
					return false
				}
			}
			return true
		}
		if body == "" {
			return false
		}
		for _, r := range body {
			if !core.IsDigit(r) {
				return false
			}
		}
		return true
	}
	if !core.IsAsciiLetter(rune(entity[0])) {
		return false
	}
	for _, r := range entity {
		if !core.IsAsciiLetter(r) && !core.IsDigit(r) {
			return false
		}
	}
	return true
}
