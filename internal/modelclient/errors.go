package modelclient

import "strings"

// ErrorClass categorizes a completion error by substring match, grounded
// directly on the teacher's classifyProviderError
// (internal/agent/failover.go): the same category set and pattern lists,
// reused unchanged since error-string classification is the same problem
// for any completion provider.
type ErrorClass string

const (
	ErrorTimeout          ErrorClass = "timeout"
	ErrorRateLimit        ErrorClass = "rate_limit"
	ErrorAuth             ErrorClass = "auth"
	ErrorBilling          ErrorClass = "billing"
	ErrorModelUnavailable ErrorClass = "model_unavailable"
	ErrorServer           ErrorClass = "server_error"
	ErrorInvalidRequest   ErrorClass = "invalid_request"
	ErrorUnknown          ErrorClass = "unknown"
)

// Classify determines an ErrorClass from err's message.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorUnknown
	}
	s := strings.ToLower(err.Error())

	switch {
	case containsAny(s, "timeout", "deadline exceeded", "context deadline"):
		return ErrorTimeout
	case containsAny(s, "rate limit", "rate_limit", "too many requests", "429"):
		return ErrorRateLimit
	case containsAny(s, "unauthorized", "invalid api key", "authentication", "401", "403"):
		return ErrorAuth
	case containsAny(s, "billing", "payment", "quota", "402"):
		return ErrorBilling
	case containsAny(s, "model not found", "does not exist", "unavailable"):
		return ErrorModelUnavailable
	case containsAny(s, "internal server", "server error", "500", "502", "503", "504"):
		return ErrorServer
	case containsAny(s, "invalid", "bad request", "400"):
		return ErrorInvalidRequest
	default:
		return ErrorUnknown
	}
}

// Retryable reports whether a completion should be retried against the same
// endpoint before failing over.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ErrorRateLimit, ErrorTimeout, ErrorServer:
		return true
	default:
		return false
	}
}

// ShouldFailover reports whether a completion error warrants trying a
// different endpoint rather than retrying the same one.
func (c ErrorClass) ShouldFailover() bool {
	switch c {
	case ErrorBilling, ErrorAuth, ErrorModelUnavailable, ErrorRateLimit, ErrorServer:
		return true
	default:
		return false
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
