package memoryarchive

import (
	"context"
	"testing"
)

type fixedEmbedder struct{ vector []float64 }

func (f fixedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return append([]float64(nil), f.vector...), nil
}

func TestPublicFacadeRoundTrip(t *testing.T) {
	a, err := New(Config{Embedder: fixedEmbedder{vector: []float64{1, 0, 0}}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer Close(context.Background(), a)

	_, err = a.AddThought(context.Background(), AddThoughtInput{
		PromptText: "hello", FinalResponse: "world",
		Scope: ScopeUser, ScopeID: "u1", UserID: "u1",
	})
	if err != nil {
		t.Fatalf("AddThought: %v", err)
	}

	result, err := a.SmartLookup(context.Background(), "hello", UserContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("SmartLookup: %v", err)
	}
	if result.Strategy != ExactHit {
		t.Fatalf("expected EXACT_HIT, got %s", result.Strategy)
	}

	rm := NewRelocationManager(a)
	deleted, err := rm.OnDeptTransfer("u1", "nonexistent-dept", "other-dept")
	if err != nil {
		t.Fatalf("OnDeptTransfer: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no contamination, got %d deleted", deleted)
	}
}
