package rank

import (
	"context"
	"testing"

	"matekit/core"
	"matekit/model"
)

func cand(id string, features map[string]float64) *core.Candidate {
	c := core.NewCandidate("u1", id)
	c.Features = features
	return c
}

func TestRankOrdering(t *testing.T) {
	m := &model.Additive{Weights: map[string]float64{"similarity": 1}}
	n := &Node{Model: m}

	candidates := []*core.Candidate{
		cand("a", map[string]float64{"similarity": 0.2}),
		cand("b", map[string]float64{"similarity": 0.9}),
		cand("c", map[string]float64{"similarity": 0.5}),
	}

	out, err := n.Process(context.Background(), nil, candidates)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if out[i].CandidateID != id {
			t.Errorf("position %d: got %s, want %s", i, out[i].CandidateID, id)
		}
	}
	if out[0].Score != 0.9 {
		t.Errorf("top score = %v, want 0.9", out[0].Score)
	}
}

func TestRankTieBreak(t *testing.T) {
	m := &model.Additive{Weights: map[string]float64{"similarity": 1}}
	n := &Node{Model: m}

	candidates := []*core.Candidate{
		cand("z", map[string]float64{"similarity": 0.5}),
		cand("a", map[string]float64{"similarity": 0.5}),
		cand("m", map[string]float64{"similarity": 0.5}),
	}

	out, err := n.Process(context.Background(), nil, candidates)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	wantOrder := []string{"a", "m", "z"}
	for i, id := range wantOrder {
		if out[i].CandidateID != id {
			t.Errorf("position %d: got %s, want %s (tie must break by id)", i, out[i].CandidateID, id)
		}
	}
}

func TestRankNilModelPassthrough(t *testing.T) {
	n := &Node{}
	candidates := []*core.Candidate{cand("a", nil)}
	out, err := n.Process(context.Background(), nil, candidates)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].CandidateID != "a" {
		t.Errorf("nil model must pass candidates through unchanged")
	}
}
