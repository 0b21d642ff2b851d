package recall

import (
	"context"
	"sort"

	"matekit/core"
	"matekit/dataset"
	"matekit/embedding"
	"matekit/pkg/utils"
)

// FeatureSimilarity 是召回阶段写入的余弦相似度特征 key。
// 排序阶段直接复用该值，不重新计算，避免两阶段漂移。
const FeatureSimilarity = "similarity"

// Embedding 是标准化 embedding 余弦召回源：对查询用户与全体其他用户
// 做一次精确（暴力）余弦 Top-K。
//
// 契约：
//   - 查询用户永远不出现在自己的候选集中
//   - 返回不超过 TopK 个候选，按相似度降序，同分按候选 id 升序（确定性）
//   - 零向量的相似度为 0，不产生 NaN
//
// 目标规模下每次查询对种群线性扫描即可，无需近似索引。
type Embedding struct {
	Data *dataset.Dataset

	// Matrix 是标准化后的矩阵，行与 Data.Users 对齐。
	// 必须每次运行只拟合一次（embedding.Fit + Standardize），所有查询复用。
	Matrix [][]float64

	// TopK 召回数量（recall_k），<=0 时取默认 100
	TopK int
}

func (r *Embedding) Name() string { return "recall.emb" }

func (r *Embedding) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Candidate, error) {
	if r.Data == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	idx, ok := r.Data.Index(rctx.UserID)
	if !ok {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
			"recall: user "+rctx.UserID+" not found")
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 100
	}

	type scored struct {
		id  string
		sim float64
	}
	results := make([]scored, 0, len(r.Matrix))
	qv := r.Matrix[idx]
	for j, cv := range r.Matrix {
		if j == idx {
			continue // 排除自身
		}
		results = append(results, scored{
			id:  r.Data.Users[j].ID,
			sim: embedding.Cosine(qv, cv),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].sim != results[j].sim {
			return results[i].sim > results[j].sim
		}
		return results[i].id < results[j].id
	})
	if len(results) > topK {
		results = results[:topK]
	}

	out := make([]*core.Candidate, 0, len(results))
	for _, s := range results {
		c := core.NewCandidate(rctx.UserID, s.id)
		c.Score = s.sim
		c.Features[FeatureSimilarity] = s.sim
		c.PutLabel("recall_source", utils.Label{Value: "emb", Source: "recall"})
		out = append(out, c)
	}
	return out, nil
}
