package rerank

import (
	"context"

	"matekit/core"
	"matekit/pipeline"
	"matekit/pkg/conv"
)

// TopN 是 Top-N 截断节点，在排序之后截取前 N 个候选，
// 保证每个用户的输出规模上限。
//
// N 是配置的缺省值；单次请求可通过 rctx.Params["topn"] 覆盖
// （覆盖值可大可小，配置值只是缺省，不是上限）。
type TopN struct {
	// N 要保留的候选数量
	// 如果 N <= 0 或 N >= len(candidates)，则不截断
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopN) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	limit := n.N
	if rctx != nil {
		if v, ok := rctx.Params["topn"]; ok {
			if req, ok := conv.ToInt(v); ok && req > 0 {
				limit = req
			}
		}
	}
	if limit <= 0 {
		return candidates, nil
	}
	if len(candidates) <= limit {
		return candidates, nil
	}
	return candidates[:limit], nil
}
