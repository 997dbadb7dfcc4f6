package llm

import "strings"

// CleanJSONBlock removes markdown code fences and surrounding chatter from a
// response that is expected to hold a single JSON object or array.
func CleanJSONBlock(text string) string {
	text, fenced := stripFences(text)
	if fenced {
		return text
	}
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	return cut(text, start)
}

// ExtractJSON is CleanJSONBlock for a known root: open is '{' or '['. The
// document starts at the first open that is not nested in an earlier bracket,
// so closed brackets in a preamble are skipped and a root of the wrong kind is
// not unwrapped.
func ExtractJSON(text string, open byte) string {
	text, _ = stripFences(text)
	depth := 0
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == open && depth == 0:
			return cut(text, i)
		case c == '{' || c == '[':
			depth++
		case (c == '}' || c == ']') && depth > 0:
			depth--
		}
	}
	return text
}

func stripFences(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text, false
	}
	text = strings.TrimPrefix(text, "```")
	// Skip a language identifier on the first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text), true
}

// cut returns text from start to the last matching closer.
func cut(text string, start int) string {
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return text
	}
	return text[start : end+1]
}
