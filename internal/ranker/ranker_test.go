package ranker

import (
	"testing"
	"time"

	"github.com/kittclouds/cortex/internal/vectorstore"
)

func TestDecayFactorAtZeroElapsedIsOne(t *testing.T) {
	now := time.Now()
	if got := DecayFactor(vectorstore.ScopeUser, now, now); got != 1.0 {
		t.Fatalf("expected decay factor 1.0 at zero elapsed, got %v", got)
	}
}

func TestDecayFactorFutureTimestampClampsToOne(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	if got := DecayFactor(vectorstore.ScopeUser, future, now); got != 1.0 {
		t.Fatalf("expected decay factor 1.0 for future timestamp, got %v", got)
	}
}

func TestDecayMonotonicity(t *testing.T) {
	now := time.Now()
	t1 := now.Add(-1 * time.Hour)
	t2 := now.Add(-2 * time.Hour)

	for _, scope := range []vectorstore.Scope{
		vectorstore.ScopeUser, vectorstore.ScopeProject,
		vectorstore.ScopeDepartment, vectorstore.ScopeClient,
	} {
		d1 := DecayFactor(scope, t1, now)
		d2 := DecayFactor(scope, t2, now)
		if d2 > d1 {
			t.Errorf("%v: expected decay(t2) <= decay(t1), got d1=%v d2=%v", scope, d1, d2)
		}
	}
}

func TestScopeDecayOrdering(t *testing.T) {
	now := time.Now()
	created := now.Add(-5 * time.Hour)

	user := DecayFactor(vectorstore.ScopeUser, created, now)
	project := DecayFactor(vectorstore.ScopeProject, created, now)
	dept := DecayFactor(vectorstore.ScopeDepartment, created, now)
	client := DecayFactor(vectorstore.ScopeClient, created, now)

	if !(user < project && project < dept && dept < client) {
		t.Fatalf("expected user < project < department < client, got user=%v project=%v dept=%v client=%v",
			user, project, dept, client)
	}
}

func TestCalibrationTenHourCrossover(t *testing.T) {
	now := time.Now()
	created := now.Add(-10 * time.Hour)

	userScore := AdjustScore(1.0, vectorstore.ScopeUser, created, now)
	clientScore := AdjustScore(0.8, vectorstore.ScopeClient, created, now)

	if clientScore <= userScore {
		t.Fatalf("expected CLIENT(0.8) to outrank USER(1.0) at 10h, got client=%v user=%v", clientScore, userScore)
	}
}

func TestAdjustScoreNegativeShrinksTowardZero(t *testing.T) {
	now := time.Now()
	created := now.Add(-100 * time.Hour)
	got := AdjustScore(-0.5, vectorstore.ScopeUser, created, now)
	if got <= -0.5 || got > 0 {
		t.Fatalf("expected negative score to shrink toward zero, got %v", got)
	}
}
