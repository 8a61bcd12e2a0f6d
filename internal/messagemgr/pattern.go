package messagemgr

import (
	"fmt"
	"sort"
	"time"

	"github.com/wrenlab/pilot/pkg/agentstep"
)

// PatternReport is advisory-only text surfaced to the model: it never
// gates or alters Controller dispatch, only informs the next decision.
type PatternReport struct {
	MostRepeatedAction string
	RepeatCount        int
	FailureRate        float64
	AverageStepTime    time.Duration
	TopErrors          []string
}

// AnalyzePatterns scans steps for repeated actions, failure rate, average
// inter-step duration, and the most common recurring error strings.
func AnalyzePatterns(steps []agentstep.Step) PatternReport {
	var report PatternReport
	if len(steps) == 0 {
		return report
	}

	actionCounts := make(map[string]int)
	errorCounts := make(map[string]int)
	failures := 0

	var first, last time.Time
	for i, step := range steps {
		key := fmt.Sprintf("%s:%d", step.Action.Type, step.Action.Index)
		actionCounts[key]++

		if !step.Result.Success {
			failures++
			if step.Result.Error != "" {
				errorCounts[step.Result.Error]++
			}
		}

		if i == 0 {
			first = step.Timestamp
		}
		last = step.Timestamp
	}

	for action, count := range actionCounts {
		if count > report.RepeatCount {
			report.RepeatCount = count
			report.MostRepeatedAction = action
		}
	}

	report.FailureRate = float64(failures) / float64(len(steps))

	if len(steps) > 1 && last.After(first) {
		report.AverageStepTime = last.Sub(first) / time.Duration(len(steps)-1)
	}

	report.TopErrors = topN(errorCounts, 3)

	return report
}

func topN(counts map[string]int, n int) []string {
	type entry struct {
		text  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for text, count := range counts {
		entries = append(entries, entry{text, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].text < entries[j].text
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.text
	}
	return out
}

// Render formats the report as advisory prompt text, or empty string if
// there is nothing noteworthy to report.
func (r PatternReport) Render() string {
	if r.RepeatCount < 3 && r.FailureRate == 0 && len(r.TopErrors) == 0 {
		return ""
	}
	s := fmt.Sprintf("<pattern_notice>\nfailure_rate: %.2f\naverage_step_time: %s\n", r.FailureRate, r.AverageStepTime)
	if r.RepeatCount >= 3 {
		s += fmt.Sprintf("repeated_action: %s (%dx)\n", r.MostRepeatedAction, r.RepeatCount)
	}
	for _, e := range r.TopErrors {
		s += fmt.Sprintf("recurring_error: %s\n", e)
	}
	s += "</pattern_notice>"
	return s
}
