package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// CVExtractor turns an uploaded CV file into plain text for the
// profile parser. Implementations are format specific.
type CVExtractor interface {
	// Extract returns the text content of the file, or an error when
	// the format cannot be read.
	Extract(filename string, data []byte) (string, error)
}

// PlainTextExtractor handles .txt and .md uploads, which is the common
// case for pasted CVs. Binary formats are rejected with a clear
// message instead of garbage text.
type PlainTextExtractor struct{}

var _ CVExtractor = PlainTextExtractor{}

func (PlainTextExtractor) Extract(filename string, data []byte) (string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".txt"), strings.HasSuffix(lower, ".md"), !strings.Contains(lower, "."):
	default:
		return "", fmt.Errorf("tools: unsupported CV format %q, upload plain text", filename)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("tools: %q is not valid UTF-8 text", filename)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("tools: %q is empty", filename)
	}
	return text, nil
}
