// Package hostclient is the typed, paginated, rate-limit-aware client for
// the remote host's REST and GraphQL surfaces (spec §4.2). It wraps
// google/go-github for REST and shurcooL/githubv4 for GraphQL (Projects V2
// has no REST equivalent), grounded on the retrieved
// ossf-scorecard githubrepo client, the one example in the pack that wires
// the same pair for the same purpose.
package hostclient

import "fmt"

// Kind enumerates the failure taxonomy every operation fails with (§4.2).
// The Sync Coordinator decides which kinds are fatal per surface.
type Kind int

const (
	// KindUnauthorized means the credential was rejected outright.
	KindUnauthorized Kind = iota
	// KindNotFound means the host reported the resource does not exist.
	KindNotFound
	// KindRateLimited means the request was throttled; RetryAfter carries
	// how long the caller should wait before retrying.
	KindRateLimited
	// KindTransport means a connection-level failure (DNS, TLS, timeout)
	// occurred with no usable HTTP response.
	KindTransport
	// KindHostError means the host returned an unexpected status/body that
	// doesn't map to one of the other kinds.
	KindHostError
	// KindParse means a response body could not be decoded into the
	// expected shape.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindTransport:
		return "transport"
	case KindHostError:
		return "host_error"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every hostclient operation returns on
// failure. Status is set whenever the host returned an HTTP response; Body
// is not populated by classify.
type Error struct {
	Kind       Kind
	Status     int
	Body       string
	RetryAfter int // seconds; only meaningful for KindRateLimited
	Op         string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRateLimited:
		return fmt.Sprintf("%s: rate limited, retry after %ds", e.Op, e.RetryAfter)
	case KindHostError:
		return fmt.Sprintf("%s: host error (status %d): %s", e.Op, e.Status, e.Body)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err carries the given Kind, following wrapped errors.
func Is(err error, kind Kind) bool {
	var he *Error
	if ok := asError(err, &he); !ok {
		return false
	}
	return he.Kind == kind
}

func asError(err error, target **Error) bool {
	for err != nil {
		if he, ok := err.(*Error); ok {
			*target = he
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
