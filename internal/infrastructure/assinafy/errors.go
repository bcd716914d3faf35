package assinafy

import (
	"errors"
	"fmt"
)

// Kind classifies a failed provider operation so orchestration code can
// apply one retry/skip policy per class instead of inspecting messages.
type Kind int

const (
	// KindNetwork covers connection and timeout failures. Transient;
	// retried on the next reconciliation cycle.
	KindNetwork Kind = iota
	// KindProvider covers non-2xx responses from the provider.
	KindProvider
	// KindNotFound covers local precondition failures (missing file),
	// detected before any network call. Not retried.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindProvider:
		return "provider"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error is a classified provider-call failure.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProvider:
		return fmt.Sprintf("assinafy: %s: status=%d body=%s", e.Op, e.Status, e.Body)
	case KindNotFound:
		return fmt.Sprintf("assinafy: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("assinafy: %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsNetwork reports whether err is a classified network failure.
func IsNetwork(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNetwork
}

// IsProvider reports whether err is a classified provider (non-2xx) failure.
func IsProvider(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindProvider
}

// IsNotFound reports whether err is a local precondition failure.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}
