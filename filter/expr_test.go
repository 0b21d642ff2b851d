package filter

import (
	"context"
	"testing"

	"matekit/core"
	"matekit/pkg/utils"
)

func TestExprFilter(t *testing.T) {
	c := cand("a", "b")
	c.Score = 0.3
	c.Features = map[string]float64{"age_gap": 18}
	c.PutLabel("recall_source", utils.Label{Value: "tags", Source: "recall"})

	rctx := &core.RecommendContext{
		UserID: "a",
		User:   &core.User{ID: "a", Age: 30, City: "delhi"},
	}

	tests := []struct {
		name string
		rule string
		want bool
	}{
		{"age gap hit", `candidate.features.age_gap > 15.0`, true},
		{"age gap miss", `candidate.features.age_gap > 20.0`, false},
		{"label and score", `label.recall_source == "tags" && candidate.score < 0.5`, true},
		{"user context", `user.city == "delhi" && candidate.score < 0.1`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Expr{Rules: []string{tt.rule}}
			got, err := f.ShouldFilter(context.Background(), rctx, c)
			if err != nil {
				t.Fatalf("ShouldFilter: %v", err)
			}
			if got != tt.want {
				t.Errorf("rule %q: got %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestExprFilterAnyRuleHits(t *testing.T) {
	c := cand("a", "b")
	c.Score = 0.9
	rctx := &core.RecommendContext{UserID: "a"}

	f := &Expr{Rules: []string{
		`candidate.score < 0.1`, // miss
		`candidate.score > 0.5`, // hit
	}}
	got, err := f.ShouldFilter(context.Background(), rctx, c)
	if err != nil {
		t.Fatalf("ShouldFilter: %v", err)
	}
	if !got {
		t.Error("any hitting rule must filter")
	}
}

func TestExprFilterInvalidRuleSkipped(t *testing.T) {
	c := cand("a", "b")
	rctx := &core.RecommendContext{UserID: "a"}

	f := &Expr{Rules: []string{`this is (not valid`}}
	got, err := f.ShouldFilter(context.Background(), rctx, c)
	if err != nil {
		t.Fatalf("ShouldFilter: %v", err)
	}
	if got {
		t.Error("invalid rule must be skipped, not filter")
	}
}

func TestExprFilterNoRules(t *testing.T) {
	f := &Expr{}
	got, err := f.ShouldFilter(context.Background(), &core.RecommendContext{}, cand("a", "b"))
	if err != nil {
		t.Fatalf("ShouldFilter: %v", err)
	}
	if got {
		t.Error("no rules must not filter")
	}
}
