package transcript

import "strings"

const fence = "```"

// RecoverPayload extracts the JSON array embedded in a model response.
//
// Code fences are unwrapped first. The array is then sliced from the first
// '[' to the last ']'. A response cut off before its closing bracket is
// repaired by slicing to the last '}' and appending ']'. When nothing
// array-like remains the result is empty.
//
// The truncation repair is best effort: a '}' inside a text value can be
// mistaken for the end of a record.
func RecoverPayload(raw string) string {
	text := UnwrapFence(raw)

	start := strings.IndexByte(text, '[')
	if start < 0 {
		return ""
	}
	if end := strings.LastIndexByte(text, ']'); end > start {
		return text[start : end+1]
	}
	if brace := strings.LastIndexByte(text, '}'); brace > start {
		return text[start:brace+1] + "]"
	}
	return ""
}

// UnwrapFence returns the body of the first fenced block, skipping an
// optional language tag. Without a closing fence the untrimmed input is
// returned unchanged.
func UnwrapFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	open := strings.Index(trimmed, fence)
	if open < 0 {
		return trimmed
	}
	body := trimmed[open+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isFenceTag(body[:nl]) {
		body = body[nl+1:]
	}
	end := strings.Index(body, fence)
	if end < 0 {
		return raw
	}
	return strings.TrimSpace(body[:end])
}

func isFenceTag(line string) bool {
	for _, r := range strings.TrimSpace(line) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '+':
		default:
			return false
		}
	}
	return true
}
