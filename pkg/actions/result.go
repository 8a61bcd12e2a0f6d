package actions

import "time"

// Metadata carries the bookkeeping fields attached to every ActionResult,
// independent of whether the action itself succeeded.
type Metadata struct {
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	URL       string        `json:"url,omitempty"`
	Title     string        `json:"title,omitempty"`
}

// Result is what the Controller returns after dispatching one Action. Only
// one of ExtractedContent/Screenshot is normally populated, matching which
// action produced the result.
type Result struct {
	Success            bool     `json:"success"`
	Message            string   `json:"message,omitempty"`
	Error              string   `json:"error,omitempty"`
	ExtractedContent   string   `json:"extracted_content,omitempty"`
	Screenshot         []byte   `json:"screenshot,omitempty"`
	NavigationDetected bool     `json:"navigation_detected,omitempty"`
	Metadata           Metadata `json:"metadata"`
}

// Ok builds a successful Result, stamping Metadata.Timestamp from start and
// Metadata.Duration from elapsed time since start.
func Ok(message string, start time.Time) Result {
	return Result{
		Success: true,
		Message: message,
		Metadata: Metadata{
			Duration:  time.Since(start),
			Timestamp: start,
		},
	}
}

// Fail builds a failed Result carrying err's message.
func Fail(err error, start time.Time) Result {
	return Result{
		Success: false,
		Error:   err.Error(),
		Metadata: Metadata{
			Duration:  time.Since(start),
			Timestamp: start,
		},
	}
}
