package llm

import (
	"errors"
	"fmt"
)

// LLMStatusError is a non-success answer from the upstream provider. The proxy
// forwards Status and Body to its caller untouched.
type LLMStatusError struct {
	Status int
	Body   string
}

func (e *LLMStatusError) Error() string {
	return fmt.Sprintf("upstream responded with status %d: %s", e.Status, e.Body)
}

func AsStatusError(err error) (*LLMStatusError, bool) {
	var statusErr *LLMStatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
