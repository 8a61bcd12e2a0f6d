package modelmanager

import (
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/wrenlab/pilot/pkg/endpoint"
)

// Strategy names the five endpoint selection strategies spec.md section 4.4
// requires.
type Strategy string

const (
	StrategyPriority     Strategy = "priority"
	StrategyRoundRobin   Strategy = "round_robin"
	StrategyLoadBalance  Strategy = "load_balance"
	StrategyFailover     Strategy = "failover"
	StrategyRandom       Strategy = "random"
)

// order returns candidates's endpoints ranked by Strategy, given counter for
// round-robin state and stats for load_balance's averageResponseTime/weight
// ranking. Every strategy returns ALL enabled endpoints (not just one) so
// the caller can fail over down the list per spec.md section 4.4's
// "retry/fallback across providers" requirement - the strategy only
// decides relative order, not how many are tried.
func order(strategy Strategy, candidates []*endpoint.Endpoint, counter *uint64, stats map[string]endpoint.Stats) []*endpoint.Endpoint {
	enabled := make([]*endpoint.Endpoint, 0, len(candidates))
	for _, e := range candidates {
		if e.Enabled {
			enabled = append(enabled, e)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	out := make([]*endpoint.Endpoint, len(enabled))
	copy(out, enabled)

	switch strategy {
	case StrategyPriority, StrategyFailover:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })

	case StrategyRoundRobin:
		n := atomic.AddUint64(counter, 1) - 1
		offset := int(n % uint64(len(out)))
		out = append(out[offset:], out[:offset]...)

	case StrategyLoadBalance:
		sort.SliceStable(out, func(i, j int) bool {
			si, sj := loadScore(out[i], stats), loadScore(out[j], stats)
			if si != sj {
				return si < sj
			}
			return out[i].Priority < out[j].Priority
		})

	case StrategyRandom:
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	}

	return out
}

// loadScore ranks ep for the load_balance strategy: minimize
// averageResponseTime/weight, per spec.md section 4.4. An endpoint with no
// recorded calls yet scores 0, so it is tried before any endpoint with a
// measured response time.
func loadScore(ep *endpoint.Endpoint, stats map[string]endpoint.Stats) float64 {
	weight := ep.Weight
	if weight <= 0 {
		weight = 1
	}
	return float64(stats[ep.ID].AverageResponseTime) / float64(weight)
}
