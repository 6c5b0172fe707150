// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrContentUnavailable = errors.New("content unavailable")
	ErrUnknownDocument    = errors.New("unknown content document")
	ErrInvalidDocument    = errors.New("document is not valid JSON")
)

// TierFailure records why one tier of the fallback chain could not deliver a document.
type TierFailure struct {
	Tier     string
	Language string
	Err      error
}

// UnavailableError is returned when the requested language, the default language and the
// static defaults all failed to provide a document.
type UnavailableError struct {
	Key      Key
	Failures []TierFailure
}

func (e *UnavailableError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		reasons = append(reasons, fmt.Sprintf("%s (%s): %s", failure.Tier, failure.Language, failure.Err))
	}
	if len(reasons) == 0 {
		return fmt.Sprintf("%s: %s", ErrContentUnavailable, e.Key)
	}
	return fmt.Sprintf("%s: %s: %s", ErrContentUnavailable, e.Key, strings.Join(reasons, "; "))
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrContentUnavailable
}
