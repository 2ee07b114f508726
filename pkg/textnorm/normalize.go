// Package textnorm strips incidental markup from assistant responses. The
// model is instructed to answer in plain text, but completions occasionally
// arrive with markdown anyway; normalization is applied identically
// regardless of which surface displays the text.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe     = regexp.MustCompile(`\*(.*?)\*`)
	codeRe       = regexp.MustCompile("`([^`]+)`")
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	blockquoteRe = regexp.MustCompile(`(?m)^\s*>\s?`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
)

// Assistant normalizes one assistant-authored message for display: bold,
// italic and inline-code wrappers are unwrapped, heading and blockquote
// markers removed, and bullet markers normalized to "- ".
func Assistant(value string) string {
	value = boldRe.ReplaceAllString(value, "$1")
	value = italicRe.ReplaceAllString(value, "$1")
	value = codeRe.ReplaceAllString(value, "$1")
	value = headingRe.ReplaceAllString(value, "")
	value = blockquoteRe.ReplaceAllString(value, "")
	value = bulletRe.ReplaceAllString(value, "- ")
	return strings.TrimSpace(value)
}
