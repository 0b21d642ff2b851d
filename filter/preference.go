package filter

import (
	"context"

	"matekit/core"
	"matekit/dataset"
)

// Flags 控制偏好过滤的各项硬约束开关，逐项独立。
type Flags struct {
	RespectGenderInterest bool // 候选性别须在用户 gender_interest 内（默认开）
	RespectAgeRange       bool // 候选年龄须在 [min_age_pref, max_age_pref] 内（默认开）
	RespectCityPreference bool // 候选城市须在用户 city_interest 内；空集不约束（默认关）
	Reciprocal            bool // 双向都满足全部生效项才可通过（默认关）
}

// DefaultFlags 返回约定的缺省开关组合。
func DefaultFlags() Flags {
	return Flags{
		RespectGenderInterest: true,
		RespectAgeRange:       true,
		RespectCityPreference: false,
		Reciprocal:            false,
	}
}

// Preference 是偏好硬过滤器：按 Flags 检查 (user, candidate) 配对的可纳性。
//
// Reciprocal 开启时要求两个方向独立通过全部生效检查——不是单向结果的对称
// AND：gender/age/city 每一项都按开关在 user→candidate 与 candidate→user
// 两个方向各查一遍。
type Preference struct {
	Data  *dataset.Dataset
	Flags Flags
}

func (f *Preference) Name() string {
	return "filter.preference"
}

func (f *Preference) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	cand *core.Candidate,
) (bool, error) {
	if cand == nil {
		return true, nil
	}
	if f.Data == nil || rctx == nil || rctx.User == nil {
		return false, nil
	}

	c, ok := f.Data.User(cand.CandidateID)
	if !ok {
		// 数据集里不存在的候选直接丢弃
		return true, nil
	}
	u := rctx.User

	if !f.admits(u, c) {
		return true, nil
	}
	if f.Flags.Reciprocal && !f.admits(c, u) {
		return true, nil
	}
	return false, nil
}

// admits 是单方向可纳性检查：a 的偏好是否接受 b。
func (f *Preference) admits(a, b *core.User) bool {
	if f.Flags.RespectGenderInterest && !a.AcceptsGender(b.Gender) {
		return false
	}
	if f.Flags.RespectAgeRange && !a.AcceptsAge(b.Age) {
		return false
	}
	if f.Flags.RespectCityPreference && !a.AcceptsCity(b.City) {
		return false
	}
	return true
}
