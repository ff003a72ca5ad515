package chathub

import "errors"

// Authorization denials.
var (
	ErrForbidden     = errors.New("not a participant of this match")
	ErrMatchInactive = errors.New("match is no longer active")
	ErrNotFound      = errors.New("not found")
	ErrNotJoined     = errors.New("not joined to this match")
)

// Validation failures.
var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrContentTooLong = errors.New("message content is too long")
	ErrEmptyMessage   = errors.New("message has no content or attachment")
	ErrUnknownEvent   = errors.New("unknown event")
)

var (
	ErrRateLimited   = errors.New("too many events")
	ErrShuttingDown  = errors.New("hub is shutting down")
	ErrNotRegistered = errors.New("connection is not registered")
)

// Error codes carried in error events.
const (
	CodeForbidden      = "forbidden"
	CodeMatchInactive  = "match_inactive"
	CodeNotFound       = "not_found"
	CodeInvalidPayload = "invalid_payload"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal"
)

// ErrorCode classifies err for the wire. Anything unrecognised is treated as
// a persistence or internal failure.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotJoined):
		return CodeForbidden
	case errors.Is(err, ErrMatchInactive):
		return CodeMatchInactive
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrContentTooLong),
		errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrUnknownEvent):
		return CodeInvalidPayload
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// IsDenial reports whether err is an expected client-side rejection rather
// than a server failure.
func IsDenial(err error) bool {
	return ErrorCode(err) != CodeInternal
}
