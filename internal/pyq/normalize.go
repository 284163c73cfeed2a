package pyq

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// Normalize prepares text for search matching: Unicode case folding followed
// by NFKC normalization, so "Ω" matches "ω" and fullwidth or composed forms
// match their plain equivalents. Applied to both stored bodies and incoming
// query text.
func Normalize(s string) string {
	return norm.NFKC.String(foldCaser.String(strings.TrimSpace(s)))
}

// matchText reports whether the normalized body contains the normalized query.
func matchText(bodyNorm, queryNorm string) bool {
	if queryNorm == "" {
		return true
	}
	return strings.Contains(bodyNorm, queryNorm)
}
