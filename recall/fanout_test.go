package recall

import (
	"context"
	"errors"
	"testing"

	"matekit/core"
)

type stubSource struct {
	name  string
	cands []*core.Candidate
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Candidate, error) {
	return s.cands, s.err
}

func scoredCand(id string, score float64) *core.Candidate {
	c := core.NewCandidate("u1", id)
	c.Score = score
	return c
}

func TestFanoutMergeDedup(t *testing.T) {
	a := &stubSource{name: "a", cands: []*core.Candidate{
		scoredCand("x", 0.9),
		scoredCand("y", 0.5),
	}}
	b := &stubSource{name: "b", cands: []*core.Candidate{
		scoredCand("y", 0.7), // 与 a 重复，取高分
		scoredCand("z", 0.3),
	}}

	n := &Fanout{Sources: []Source{a, b}, Dedup: true}
	out, err := n.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(out) != 3 {
		t.Fatalf("got %d candidates, want 3 after dedup", len(out))
	}
	wantOrder := []string{"x", "y", "z"}
	for i, id := range wantOrder {
		if out[i].CandidateID != id {
			t.Errorf("position %d: got %s, want %s", i, out[i].CandidateID, id)
		}
	}
	if out[1].Score != 0.7 {
		t.Errorf("deduped y score = %v, want max 0.7", out[1].Score)
	}
}

func TestFanoutNotFoundPropagates(t *testing.T) {
	bad := &stubSource{name: "bad", err: core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound, "no user")}
	n := &Fanout{Sources: []Source{bad}}

	_, err := n.Process(context.Background(), &core.RecommendContext{UserID: "ghost"}, nil)
	if !core.IsNotFound(err) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestFanoutSourceErrorSwallowed(t *testing.T) {
	ok := &stubSource{name: "ok", cands: []*core.Candidate{scoredCand("x", 0.9)}}
	bad := &stubSource{name: "bad", err: errors.New("backend down")}

	n := &Fanout{Sources: []Source{ok, bad}}
	out, err := n.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].CandidateID != "x" {
		t.Errorf("healthy source results must survive a failing source: %+v", out)
	}
}

func TestFanoutDeterministicOrder(t *testing.T) {
	src := &stubSource{name: "s", cands: []*core.Candidate{
		scoredCand("c", 0.5),
		scoredCand("a", 0.5),
		scoredCand("b", 0.5),
	}}
	n := &Fanout{Sources: []Source{src}, Dedup: true}

	out, err := n.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	wantOrder := []string{"a", "b", "c"}
	for i, id := range wantOrder {
		if out[i].CandidateID != id {
			t.Errorf("position %d: got %s, want %s (ties break by id)", i, out[i].CandidateID, id)
		}
	}
}
