package rank

import (
	"context"
	"sort"

	"matekit/core"
	"matekit/model"
	"matekit/pipeline"
	"matekit/pkg/utils"
)

// Node 是排序 Node：用 RankModel 对每个候选的特征向量打分，并按分数
// 降序排列（不限定模型类型，Additive 只是默认实现之一）。
//
// - 写入 labels：rank_model
// - 更新 Candidate.Score；同分按候选 id 升序，保证跨运行可复现
type Node struct {
	Model model.RankModel
}

func (n *Node) Name() string        { return "rank.model" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Node) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Model == nil || len(candidates) == 0 {
		return candidates, nil
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}
		score, err := n.Model.Predict(c.Features)
		if err != nil {
			return nil, err
		}
		c.Score = score
		c.PutLabel("rank_model", utils.Label{Value: n.Model.Name(), Source: "rank"})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i] == nil {
			return false
		}
		if candidates[j] == nil {
			return true
		}
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CandidateID < candidates[j].CandidateID
	})
	return candidates, nil
}
