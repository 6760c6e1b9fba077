package pstryk

import "fmt"

const bodyExcerptLimit = 200

// PreconditionError means a required credential or token was missing before an
// operation that needs it. Never retried.
type PreconditionError struct {
	Op      string
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("pstryk: %s requires %s", e.Op, e.Missing)
}

// NetworkError wraps a transport-level failure (DNS, connection refused,
// timeout). Not retried by the client; the caller may retry the whole cycle.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("pstryk: network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError means a response was readable but did not match the API
// contract: unexpected status on an auth exchange or missing expected fields.
type ProtocolError struct {
	Op     string
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("pstryk: protocol error during %s: %s", e.Op, e.Detail)
}

// RequestError is a non-success HTTP status on an API call, carrying the
// status and a truncated body excerpt for diagnostics.
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("pstryk: GET %s failed: HTTP %d - %s", e.URL, e.StatusCode, e.Body)
}

// AuthError signals that credentials are no longer usable: login rejection or
// a second 401 after a refresh-and-retry. The caller should re-collect
// credentials rather than retry.
type AuthError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pstryk: auth error during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pstryk: auth error during %s: HTTP %d - %s", e.Op, e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// DecodeError means a token string could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pstryk: token decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func excerpt(body []byte) string {
	if len(body) > bodyExcerptLimit {
		return string(body[:bodyExcerptLimit])
	}
	return string(body)
}
