package recall

import (
	"context"
	"sort"

	"matekit/core"
	"matekit/dataset"
	"matekit/pkg/utils"
)

// Tags 是基于标签重叠（Jaccard）的辅助召回源。
//
// 用于补召：embedding 相似度低但兴趣标签高度重合的候选也值得进入重排。
// 任一侧标签集为空时 Jaccard 为 0，该候选不会入选。
type Tags struct {
	Data *dataset.Dataset

	// TopK 召回数量，<=0 时取默认 50
	TopK int
}

func (r *Tags) Name() string { return "recall.tags" }

func (r *Tags) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Candidate, error) {
	if r.Data == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	u, ok := r.Data.User(rctx.UserID)
	if !ok {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
			"recall: user "+rctx.UserID+" not found")
	}
	if len(u.Tags) == 0 {
		return nil, nil // 无标签用户：空候选，不是错误
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 50
	}

	type scored struct {
		id      string
		jaccard float64
	}
	var results []scored
	for _, c := range r.Data.Users {
		if c.ID == u.ID {
			continue
		}
		j := Jaccard(u.Tags, c.Tags)
		if j > 0 {
			results = append(results, scored{id: c.ID, jaccard: j})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].jaccard != results[j].jaccard {
			return results[i].jaccard > results[j].jaccard
		}
		return results[i].id < results[j].id
	})
	if len(results) > topK {
		results = results[:topK]
	}

	out := make([]*core.Candidate, 0, len(results))
	for _, s := range results {
		c := core.NewCandidate(rctx.UserID, s.id)
		c.Score = s.jaccard
		c.PutLabel("recall_source", utils.Label{Value: "tags", Source: "recall"})
		out = append(out, c)
	}
	return out, nil
}

// Jaccard 计算两个标签集的交并比，取值 [0,1]；任一侧为空返回 0。
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
