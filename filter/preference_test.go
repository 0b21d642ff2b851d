package filter

import (
	"context"
	"testing"

	"matekit/core"
	"matekit/dataset"
)

func newTestDataset(t *testing.T, users []*core.User) *dataset.Dataset {
	t.Helper()
	schema, err := dataset.ResolveSchema([]string{
		"user_id", "age", "gender", "gender_interest", "min_age_pref", "max_age_pref",
		"city", "city_interest", "tags", "social_energy", "humor_style", "risk_taking",
		"e_a",
	})
	if err != nil {
		t.Fatalf("ResolveSchema: %v", err)
	}
	for _, u := range users {
		if u.Embedding == nil {
			u.Embedding = []float64{0}
		}
	}
	return dataset.New(schema, users)
}

func cand(userID, candID string) *core.Candidate {
	return core.NewCandidate(userID, candID)
}

func TestPreferenceGenderAndAge(t *testing.T) {
	// a 想要 25-35 的女性；b 符合；c 性别不符；d 年龄越界
	users := []*core.User{
		{ID: "a", Age: 30, Gender: "male", GenderInterest: []string{"female"}, MinAgePref: 25, MaxAgePref: 35},
		{ID: "b", Age: 28, Gender: "female"},
		{ID: "c", Age: 28, Gender: "male"},
		{ID: "d", Age: 40, Gender: "female"},
	}
	data := newTestDataset(t, users)
	f := &Preference{Data: data, Flags: DefaultFlags()}
	rctx := &core.RecommendContext{UserID: "a", User: users[0]}

	tests := []struct {
		cand string
		want bool // want filtered
	}{
		{"b", false},
		{"c", true},
		{"d", true},
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(context.Background(), rctx, cand("a", tt.cand))
		if err != nil {
			t.Fatalf("ShouldFilter(%s): %v", tt.cand, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%s) = %v, want %v", tt.cand, got, tt.want)
		}
	}
}

func TestPreferenceAnyGender(t *testing.T) {
	users := []*core.User{
		{ID: "a", Age: 30, GenderInterest: []string{"any"}},
		{ID: "b", Age: 28, Gender: "female"},
		{ID: "c", Age: 28, Gender: "male"},
	}
	data := newTestDataset(t, users)
	f := &Preference{Data: data, Flags: DefaultFlags()}
	rctx := &core.RecommendContext{UserID: "a", User: users[0]}

	for _, id := range []string{"b", "c"} {
		got, err := f.ShouldFilter(context.Background(), rctx, cand("a", id))
		if err != nil {
			t.Fatalf("ShouldFilter(%s): %v", id, err)
		}
		if got {
			t.Errorf("candidate %s filtered despite 'any' gender interest", id)
		}
	}
}

func TestPreferenceEmptyCityInterest(t *testing.T) {
	// city 开关打开，但 city_interest 为空：不构成约束
	users := []*core.User{
		{ID: "a", Age: 30, City: "delhi"},
		{ID: "b", Age: 30, City: "mumbai"},
	}
	data := newTestDataset(t, users)
	flags := DefaultFlags()
	flags.RespectCityPreference = true
	f := &Preference{Data: data, Flags: flags}
	rctx := &core.RecommendContext{UserID: "a", User: users[0]}

	got, err := f.ShouldFilter(context.Background(), rctx, cand("a", "b"))
	if err != nil {
		t.Fatalf("ShouldFilter: %v", err)
	}
	if got {
		t.Error("empty city_interest must not constrain")
	}
}

func TestPreferenceCityInterest(t *testing.T) {
	users := []*core.User{
		{ID: "a", Age: 30, CityInterest: []string{"delhi", "mumbai"}},
		{ID: "b", Age: 30, City: "mumbai"},
		{ID: "c", Age: 30, City: "chennai"},
	}
	data := newTestDataset(t, users)
	flags := DefaultFlags()
	flags.RespectCityPreference = true
	f := &Preference{Data: data, Flags: flags}
	rctx := &core.RecommendContext{UserID: "a", User: users[0]}

	if got, _ := f.ShouldFilter(context.Background(), rctx, cand("a", "b")); got {
		t.Error("b is in city_interest, must pass")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, cand("a", "c")); !got {
		t.Error("c is outside city_interest, must be filtered")
	}
}

func TestPreferenceReciprocal(t *testing.T) {
	// a 接受 b 的性别，但 b 不接受 a 的：单向通过、双向失败
	users := []*core.User{
		{ID: "a", Age: 30, Gender: "male", GenderInterest: []string{"female"}},
		{ID: "b", Age: 30, Gender: "female", GenderInterest: []string{"female"}},
	}
	data := newTestDataset(t, users)
	rctx := &core.RecommendContext{UserID: "a", User: users[0]}

	oneway := &Preference{Data: data, Flags: DefaultFlags()}
	if got, _ := oneway.ShouldFilter(context.Background(), rctx, cand("a", "b")); got {
		t.Error("one-way: b must pass")
	}

	flags := DefaultFlags()
	flags.Reciprocal = true
	mutual := &Preference{Data: data, Flags: flags}
	if got, _ := mutual.ShouldFilter(context.Background(), rctx, cand("a", "b")); !got {
		t.Error("reciprocal: b must be filtered (b does not accept a)")
	}
}

// 双向过滤的结果永远是单向的子集
func TestReciprocalSubset(t *testing.T) {
	users := []*core.User{
		{ID: "a", Age: 30, Gender: "male", GenderInterest: []string{"female"}, MinAgePref: 20, MaxAgePref: 40},
		{ID: "b", Age: 25, Gender: "female", GenderInterest: []string{"male"}, MinAgePref: 28, MaxAgePref: 35},
		{ID: "c", Age: 35, Gender: "female", GenderInterest: []string{"female"}},
		{ID: "d", Age: 22, Gender: "female"},
		{ID: "e", Age: 50, Gender: "female"},
	}
	data := newTestDataset(t, users)
	rctx := &core.RecommendContext{UserID: "a", User: users[0]}

	oneway := &Preference{Data: data, Flags: DefaultFlags()}
	flags := DefaultFlags()
	flags.Reciprocal = true
	mutual := &Preference{Data: data, Flags: flags}

	for _, id := range []string{"b", "c", "d", "e"} {
		oneFiltered, _ := oneway.ShouldFilter(context.Background(), rctx, cand("a", id))
		mutFiltered, _ := mutual.ShouldFilter(context.Background(), rctx, cand("a", id))
		if !oneFiltered && mutFiltered {
			continue // 双向可以更严格
		}
		if oneFiltered && !mutFiltered {
			t.Errorf("candidate %s: passed reciprocal but failed one-way", id)
		}
	}
}

func TestPreferenceUnknownCandidate(t *testing.T) {
	users := []*core.User{{ID: "a", Age: 30}}
	data := newTestDataset(t, users)
	f := &Preference{Data: data, Flags: DefaultFlags()}
	rctx := &core.RecommendContext{UserID: "a", User: users[0]}

	got, err := f.ShouldFilter(context.Background(), rctx, cand("a", "ghost"))
	if err != nil {
		t.Fatalf("ShouldFilter: %v", err)
	}
	if !got {
		t.Error("candidate missing from dataset must be filtered")
	}
}
