package pipeline

import (
	"context"

	"matekit/core"
)

// Pipeline 是 matekit 的核心抽象：把单个用户的推荐逻辑拆成可组合的 Node 链
// （recall → filter → assemble → rank → rerank）。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	cur := candidates
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
