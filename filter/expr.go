package filter

import (
	"context"

	"matekit/core"
	"matekit/pkg/dsl"
)

// Expr 是规则表达式过滤器：用 CEL 表达式描述运营侧的附加硬约束，
// 表达式求值为 true 时候选被过滤掉。
//
// 示例：
//   - `candidate.features.age_gap > 15.0`           → 剔除年龄差过大的配对
//   - `label.recall_source == "tags" && candidate.score < 0.2`
//   - `user.city == "delhi" && candidate.features.similarity < 0.1`
type Expr struct {
	// Rules 规则列表，任意一条命中即过滤
	Rules []string
}

func (f *Expr) Name() string {
	return "filter.expr"
}

func (f *Expr) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	cand *core.Candidate,
) (bool, error) {
	if cand == nil || len(f.Rules) == 0 {
		return false, nil
	}

	eval := dsl.NewEval(cand, rctx)
	for _, rule := range f.Rules {
		hit, err := eval.Evaluate(rule)
		if err != nil {
			// 规则本身非法：跳过该条规则，不误杀候选
			continue
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
