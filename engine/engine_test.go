package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"matekit/config"
	"matekit/core"
	"matekit/dataset"
)

const testCSV = `user_id,age,gender,gender_interest,min_age_pref,max_age_pref,city,city_interest,tags,social_energy,humor_style,risk_taking,birth_date,e_a,e_b,e_c
u1,30,male,female,25,35,delhi,,"hiking,jazz",introvert,wholesome,low,1994-03-10,0.9,0.1,0.2
u2,28,female,male,25,40,mumbai,,"jazz,cricket",extrovert,dark,high,1996-07-01,0.8,0.2,0.1
u3,27,female,male,20,35,delhi,,"hiking,art",ambivert,wholesome,high,1997-01-15,0.2,0.9,0.3
u4,45,female,male,30,50,chennai,,cricket,extrovert,dark,low,1979-11-20,0.5,0.5,0.5
u5,29,male,female,25,35,delhi,,"jazz,art",introvert,dark,low,1995-06-06,0.85,0.15,0.25
`

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	data, err := dataset.ReadCSV(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	eng, err := New(data, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func TestRecommendForUser(t *testing.T) {
	eng := newTestEngine(t, nil)

	out, err := eng.RecommendForUser(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("no recommendations")
	}

	for _, c := range out {
		// 自己不出现在结果里
		if c.CandidateID == "u1" {
			t.Error("self in recommendations")
		}
		// u1 只要 25-35 的女性：u4 (45) 被年龄过滤，u5 (male) 被性别过滤
		if c.CandidateID == "u4" || c.CandidateID == "u5" {
			t.Errorf("candidate %s must be filtered out", c.CandidateID)
		}
	}

	// 分数降序
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Errorf("results not sorted at %d", i)
		}
	}
}

func TestRecommendForUserTopN(t *testing.T) {
	eng := newTestEngine(t, nil)

	out, err := eng.RecommendForUser(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("got %d, want 1", len(out))
	}
}

// 配置的 top_n 只是缺省值：请求传入更大的 topn 时按请求值返回
func TestRecommendForUserTopNAboveConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TopN = 1
	cfg.Filters.Gender = false
	cfg.Filters.Age = false
	eng := newTestEngine(t, cfg)

	out, err := eng.RecommendForUser(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	// 关掉过滤后 u1 有 4 个候选，请求 3 个就要拿到 3 个
	if len(out) != 3 {
		t.Errorf("got %d, want 3", len(out))
	}

	// topn <= 0 仍退回配置值
	out, err = eng.RecommendForUser(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("default topn: got %d, want 1", len(out))
	}
}

func TestRecommendForUserUnknown(t *testing.T) {
	eng := newTestEngine(t, nil)

	_, err := eng.RecommendForUser(context.Background(), "ghost", 0)
	if !core.IsNotFound(err) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

// 同一 (dataset, config) 下重复调用结果逐项一致
func TestRecommendIdempotent(t *testing.T) {
	eng := newTestEngine(t, nil)
	ctx := context.Background()

	first, err := eng.RecommendForUser(ctx, "u2", 0)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := eng.RecommendForUser(ctx, "u2", 0)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d results, want %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i].CandidateID != first[i].CandidateID || again[i].Score != first[i].Score {
				t.Errorf("run %d: position %d diverged: %s/%v vs %s/%v", run, i,
					again[i].CandidateID, again[i].Score, first[i].CandidateID, first[i].Score)
			}
		}
	}
}

func TestReciprocalNarrowsResults(t *testing.T) {
	oneway := newTestEngine(t, nil)

	cfg := config.Default()
	cfg.Filters.Reciprocal = true
	mutual := newTestEngine(t, cfg)

	ctx := context.Background()
	for _, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		one, err := oneway.RecommendForUser(ctx, id, 0)
		if err != nil {
			t.Fatalf("one-way %s: %v", id, err)
		}
		mut, err := mutual.RecommendForUser(ctx, id, 0)
		if err != nil {
			t.Fatalf("reciprocal %s: %v", id, err)
		}

		oneIDs := make(map[string]bool, len(one))
		for _, c := range one {
			oneIDs[c.CandidateID] = true
		}
		for _, c := range mut {
			if !oneIDs[c.CandidateID] {
				t.Errorf("user %s: %s passed reciprocal but not one-way", id, c.CandidateID)
			}
		}
	}
}

func TestAgePenaltyLowersCloseAgeGapLess(t *testing.T) {
	// 只开年龄惩罚时，年龄差单调压低分数
	cfg := config.Default()
	cfg.Weights = config.Weights{AgePenalty: 0.05}
	cfg.Filters.Age = false
	cfg.Filters.Gender = false
	eng := newTestEngine(t, cfg)

	out, err := eng.RecommendForUser(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(out) < 2 {
		t.Fatalf("got %d results", len(out))
	}
	for i := 1; i < len(out); i++ {
		prev := out[i-1].Feature("age_gap")
		cur := out[i].Feature("age_gap")
		if cur < prev {
			t.Errorf("position %d: age_gap %v < %v despite pure penalty ranking", i, cur, prev)
		}
	}
}

func TestRecommendAll(t *testing.T) {
	eng := newTestEngine(t, nil)

	results, err := eng.RecommendAll(context.Background())
	if err != nil {
		t.Fatalf("RecommendAll: %v", err)
	}
	if len(results) != eng.Data.Len() {
		t.Fatalf("got %d results, want %d", len(results), eng.Data.Len())
	}

	// 结果按数据集行序
	for i, r := range results {
		if r.UserID != eng.Data.Users[i].ID {
			t.Errorf("position %d: user %s, want %s", i, r.UserID, eng.Data.Users[i].ID)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	eng := newTestEngine(t, nil)
	results, err := eng.RecommendAll(context.Background())
	if err != nil {
		t.Fatalf("RecommendAll: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, results); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	wantHeader := "user_id,match_id,score,similarity,overlap,age_gap,complementarity,vedic_lite,vedic_confidence"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}

	rows := 0
	for _, r := range results {
		rows += len(r.Matches)
	}
	if len(lines)-1 != rows {
		t.Errorf("got %d data lines, want %d", len(lines)-1, rows)
	}
}

func TestNewEmptyDataset(t *testing.T) {
	_, err := New(nil, nil)
	if !core.IsInvalidInput(err) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}
