// Package ranker is TemporalRanker: a pure, stateless mapping from a
// thought's scope and age to a multiplicative decay factor, grounded on
// coreason_archive.temporal.TemporalRanker from original_source.
// Per-scope decay rates are fixed so that short-lived personal memory
// decays faster than institutional memory: λ_USER > λ_PROJECT >
// λ_DEPARTMENT > λ_CLIENT.
package ranker

import (
	"math"
	"time"

	"github.com/kittclouds/cortex/internal/vectorstore"
)

// Decay rates are expressed per second so DecayFactor can work directly
// with time.Duration without an intermediate unit conversion. The hourly
// figures documented here are 0.15, 0.05, 0.01, and 0.001 respectively —
// calibrated so that at 10 hours elapsed a USER thought with base score 1.0
// is outranked by a CLIENT thought with base score 0.8.
const (
	lambdaUserPerSecond       = 0.15 / 3600.0
	lambdaProjectPerSecond    = 0.05 / 3600.0
	lambdaDepartmentPerSecond = 0.01 / 3600.0
	lambdaClientPerSecond     = 0.001 / 3600.0
)

func lambdaFor(scope vectorstore.Scope) float64 {
	switch scope {
	case vectorstore.ScopeUser:
		return lambdaUserPerSecond
	case vectorstore.ScopeProject:
		return lambdaProjectPerSecond
	case vectorstore.ScopeDepartment:
		return lambdaDepartmentPerSecond
	case vectorstore.ScopeClient:
		return lambdaClientPerSecond
	default:
		return lambdaProjectPerSecond
	}
}

// DecayFactor returns exp(-λ_scope * elapsed) in (0, 1], where elapsed is
// the number of seconds between createdAt and now, clamped to zero for
// future timestamps. Naive timestamps are interpreted as UTC.
func DecayFactor(scope vectorstore.Scope, createdAt, now time.Time) float64 {
	elapsed := now.UTC().Sub(createdAt.UTC()).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return math.Exp(-lambdaFor(scope) * elapsed)
}

// AdjustScore multiplies score by DecayFactor; negative scores shrink
// toward zero rather than growing in magnitude.
func AdjustScore(score float64, scope vectorstore.Scope, createdAt, now time.Time) float64 {
	return score * DecayFactor(scope, createdAt, now)
}
