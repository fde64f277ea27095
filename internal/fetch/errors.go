package fetch

import "fmt"

// Kind classifies a failed fetch.
type Kind int

const (
	// KindNotFound means the remote reported the resource missing.
	KindNotFound Kind = iota + 1
	// KindTransport covers connection failures and unexpected statuses.
	KindTransport
	// KindDecode means the payload is not UTF-8 text.
	KindDecode
	// KindTooLarge means the payload exceeded the configured limit.
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindTooLarge:
		return "too large"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error reports a failed fetch.
type Error struct {
	Kind    Kind
	Locator string
	Status  int // HTTP status, when one was received
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s: not found", e.Locator)
	case KindDecode:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Locator, e.Err)
		}
		return fmt.Sprintf("%s: payload is not UTF-8 text", e.Locator)
	case KindTooLarge:
		return fmt.Sprintf("%s: %v", e.Locator, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned HTTP %d", e.Locator, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Locator, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
