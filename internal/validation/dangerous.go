// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package validation

import (
	"regexp"
)

// DangerousPatterns match markup that is able to execute code in a browser. They are checked
// case-insensitively against the raw, unsanitized input.
var DangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*script\b`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)vbscript\s*:`),
	regexp.MustCompile(`(?i)<[^>]*[\s/"']on[a-z]+\s*=`),
	regexp.MustCompile(`(?i)data\s*:\s*text/html`),
	regexp.MustCompile(`(?i)expression\s*\(`),
}

// ContainsDangerousContent reports whether s matches any of the DangerousPatterns.
func ContainsDangerousContent(s string) bool {
	for _, pattern := range DangerousPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}
