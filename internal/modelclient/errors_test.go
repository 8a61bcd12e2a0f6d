package modelclient

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorClass
	}{
		{errors.New("context deadline exceeded"), ErrorTimeout},
		{errors.New("429 Too Many Requests"), ErrorRateLimit},
		{errors.New("401 Unauthorized: invalid api key"), ErrorAuth},
		{errors.New("quota exceeded"), ErrorBilling},
		{errors.New("model not found: gpt-5"), ErrorModelUnavailable},
		{errors.New("502 Bad Gateway: internal server error"), ErrorServer},
		{errors.New("400 bad request: invalid json"), ErrorInvalidRequest},
		{errors.New("totally unexpected"), ErrorUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestRetryableAndFailover(t *testing.T) {
	if !ErrorRateLimit.Retryable() {
		t.Error("rate limit should be retryable")
	}
	if !ErrorRateLimit.ShouldFailover() {
		t.Error("rate limit should also trigger failover")
	}
	if ErrorInvalidRequest.Retryable() {
		t.Error("invalid request should not be retryable")
	}
	if ErrorInvalidRequest.ShouldFailover() {
		t.Error("invalid request should not trigger failover")
	}
}
