package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidJoinCode ErrCode = "INVALID_JOIN_CODE"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"

	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrUpstreamRejected    ErrCode = "UPSTREAM_REJECTED"
	ErrUpstreamUnavailable ErrCode = "UPSTREAM_UNAVAILABLE"

	// ─── PDF proxy ─────────────────────────────────────────────────────
	ErrURLRequired    ErrCode = "URL_REQUIRED"
	ErrHostNotAllowed ErrCode = "HOST_NOT_ALLOWED"
	ErrProxyFailed    ErrCode = "PROXY_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns the parent-facing message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Some details are missing or look wrong. Please check and try again."
	case ErrInvalidJoinCode:
		return "Please use the 6-letter/number code from your class link."
	case ErrInvalidPayload:
		return "The request could not be read."

	case ErrTokenRequired:
		return "Please open the dashboard from the link we sent you."

	case ErrUpstreamRejected:
		return "That didn't work. Please check your link and try again."
	case ErrUpstreamUnavailable:
		return "We could not reach the class server right now. Please try again in a moment."

	case ErrURLRequired:
		return "A document URL is required."
	case ErrHostNotAllowed:
		return "This document cannot be opened here."
	case ErrProxyFailed:
		return "We could not load this document. Please try again."

	case ErrRateLimitExceeded:
		return "Too many attempts. Please wait a minute and try again."

	case ErrInternal:
		return "Something went wrong on our side."
	default:
		return "Something unexpected happened."
	}
}
