// Package lenientjson decodes JSON out of language-model replies that may be
// wrapped in prose or markdown fences, carry trailing commas, bare keys, raw
// control characters, or be truncated mid-object.
package lenientjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Parse decodes text into v, applying progressively more aggressive cleanup
// between attempts: strict parse, fence/prose stripping, comma and control
// character repair, bare-key quoting, truncation repair. Returns the last
// decode error when every rung fails.
func Parse(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	cleaned := Clean(text)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired := quoteBareKeys(cleaned)
	return json.Unmarshal([]byte(repaired), v)
}

// Clean extracts the most plausible JSON value from text: fences and
// surrounding prose are stripped, the first balanced object or array span is
// isolated, trailing commas and control characters are fixed, and unclosed
// brackets are closed.
func Clean(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Isolate the outermost object or array span, dropping any prose around it.
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")
	start, closer := objStart, "}"
	if start == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}
	if start >= 0 {
		if end := strings.LastIndex(text, closer); end > start {
			text = text[start : end+1]
		} else {
			text = text[start:]
		}
	}

	text = strings.TrimSpace(text)
	text = stripControlChars(text)
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = repairTruncated(text)
	return text
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// bareKeyRe matches unquoted object keys like `{isMenu: true}`.
var bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

func quoteBareKeys(text string) string {
	return bareKeyRe.ReplaceAllString(text, `$1"$2":`)
}

// stripControlChars removes raw control characters that json.Unmarshal
// rejects inside strings, keeping newlines and tabs as spaces.
func stripControlChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune(' ')
		case r < 0x20:
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// repairTruncated closes any unclosed brackets or braces, trimming a
// dangling comma before each close. String-aware so brackets inside values
// are ignored.
func repairTruncated(text string) string {
	if text == "" {
		return text
	}

	var stack []byte
	inString := false
	escape := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escape {
			escape = false
			continue
		}
		if c == '\\' && inString {
			escape = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		text += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		text = strings.TrimRight(text, " \t\n\r,")
		text += string(stack[i])
	}
	return text
}
