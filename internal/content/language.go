// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package content

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is the base language every document is expected to exist in.
const DefaultLanguage = "en"

// NormalizeLanguage reduces a language tag to its lowercase primary subtag ("en-US" becomes "en").
// The subtag is kept as written, it is only checked to be a known language base. Empty input or
// input that does not yield a known base returns fallback.
func NormalizeLanguage(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	primary, _, _ := strings.Cut(strings.ReplaceAll(value, "_", "-"), "-")
	if !isSubtag(primary) {
		return fallback
	}
	if _, err := language.ParseBase(primary); err != nil {
		return fallback
	}
	return primary
}

func isSubtag(s string) bool {
	if len(s) < 2 || len(s) > 8 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
