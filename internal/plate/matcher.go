// Package plate recognizes strings that look like vehicle license plates.
//
// Matching is a strict grammar, not a fuzzy score. Input is normalized by
// removing spaces and upper-casing, then tested against three formats in
// order:
//
//  1. 6-8 alphanumerics            (ABC1234, 7XYZ123)
//  2. 1-3 letters then 3-4 digits  (AB1234, X123)
//  3. 3 digits then 3 letters      (123ABC)
package plate

import (
	"regexp"
	"strings"
)

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z0-9]{6,8}$`),
	regexp.MustCompile(`^[A-Z]{1,3}[0-9]{3,4}$`),
	regexp.MustCompile(`^[0-9]{3}[A-Z]{3}$`),
}

// Normalize strips every space character and upper-cases the result.
func Normalize(text string) string {
	return strings.ToUpper(strings.ReplaceAll(text, " ", ""))
}

// IsLicensePlateLike reports whether text matches one of the plate formats
// after normalization.
func IsLicensePlateLike(text string) bool {
	normalized := Normalize(text)
	for _, p := range patterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}
