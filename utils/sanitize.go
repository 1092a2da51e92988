package utils

import "github.com/microcosm-cc/bluemonday"

var (
	// Post bodies keep the safe user-generated-content subset of HTML.
	richPolicy = bluemonday.UGCPolicy()
	// Comments are plain text; every tag goes.
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize returns input with unsafe markup removed, keeping the UGC
// subset (links, emphasis, lists).
func Sanitize(input string) string {
	return richPolicy.Sanitize(input)
}

// SanitizePlain strips all markup from input, leaving text content only.
func SanitizePlain(input string) string {
	return plainPolicy.Sanitize(input)
}
