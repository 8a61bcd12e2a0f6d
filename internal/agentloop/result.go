package agentloop

import "time"

// RunMetadata is the `metadata` object in the History output, per spec.md
// section 6.
type RunMetadata struct {
	AgentID         string  `json:"agent_id"`
	SessionID       string  `json:"session_id"`
	SuccessRate     float64 `json:"success_rate"`
	ErrorCount      int     `json:"error_count"`
	ScreenshotCount int     `json:"screenshot_count"`
	FinalURL        string  `json:"final_url"`
}

// Result is the History output `run()` returns, per spec.md section 6:
// `{task, steps, completed, success, totalDuration, startTime, endTime,
// metadata}`. Stable field names, JSON-serializable.
type Result struct {
	Task          string        `json:"task"`
	Steps         []Step        `json:"steps"`
	Completed     bool          `json:"completed"`
	Success       bool          `json:"success"`
	TotalDuration time.Duration `json:"total_duration"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time,omitempty"`
	Metadata      RunMetadata   `json:"metadata"`
}

// buildResult assembles the History output from the final loop state.
func buildResult(task string, steps []Step, completed, success bool, meta RunMetadata, start, end time.Time) Result {
	errorCount := 0
	screenshotCount := 0
	finalURL := ""
	for _, step := range steps {
		if !step.Result.Success {
			errorCount++
		}
		if len(step.Result.Screenshot) > 0 {
			screenshotCount++
		}
		if step.DOMState != nil && step.DOMState.URL != "" {
			finalURL = step.DOMState.URL
		}
	}

	successRate := 1.0
	if len(steps) > 0 {
		successRate = float64(len(steps)-errorCount) / float64(len(steps))
	}

	meta.SuccessRate = successRate
	meta.ErrorCount = errorCount
	meta.ScreenshotCount = screenshotCount
	if meta.FinalURL == "" {
		meta.FinalURL = finalURL
	}

	return Result{
		Task:          task,
		Steps:         steps,
		Completed:     completed,
		Success:       success,
		TotalDuration: end.Sub(start),
		StartTime:     start,
		EndTime:       end,
		Metadata:      meta,
	}
}
