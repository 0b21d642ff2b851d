// Package feature 为存活候选装配固定的特征向量：
// similarity（复用召回值）、overlap、age_gap、complementarity、vedic-lite。
package feature

import (
	"context"

	"matekit/core"
	"matekit/dataset"
	"matekit/pipeline"
	"matekit/recall"
)

// 装配出的特征 key。排序器按这些名字取值，缺失一律视为 0。
const (
	FeatureOverlap         = "overlap"
	FeatureAgeGap          = "age_gap"
	FeatureComplementarity = "complementarity"
	FeatureVedicLite       = "vedic_lite"
	FeatureVedicConfidence = "vedic_confidence"
)

// AssemblerNode 是特征装配 Node：对每个存活的 (user, candidate) 配对计算
// 固定特征向量。
//
// similarity 直接复用召回阶段写入的余弦值，不重新计算（避免两阶段漂移）；
// 未经 embedding 召回的候选（如纯标签召回）该特征缺失，按 0 处理。
// 所有特征对缺失数据都降级为中性值，不抛错、不产生 NaN。
type AssemblerNode struct {
	Data *dataset.Dataset
	Mix  Mix
}

func (n *AssemblerNode) Name() string {
	return "feature.assembler"
}

func (n *AssemblerNode) Kind() pipeline.Kind {
	return pipeline.KindAssemble
}

func (n *AssemblerNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Data == nil || rctx == nil || rctx.User == nil || len(candidates) == 0 {
		return candidates, nil
	}
	u := rctx.User

	out := make([]*core.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand == nil {
			continue
		}
		c, ok := n.Data.User(cand.CandidateID)
		if !ok {
			continue
		}

		// similarity 已由召回写入；这里只保证 key 存在
		cand.Features[recall.FeatureSimilarity] = cand.Feature(recall.FeatureSimilarity)

		cand.Features[FeatureOverlap] = recall.Jaccard(u.Tags, c.Tags)

		gap := u.Age - c.Age
		if gap < 0 {
			gap = -gap
		}
		cand.Features[FeatureAgeGap] = float64(gap)

		comp, sub := Complementarity(u, c, n.Mix)
		cand.Features[FeatureComplementarity] = comp
		for k, v := range sub {
			cand.Features[k] = v
		}

		vscore, vconf := VedicPair(u, c)
		cand.Features[FeatureVedicLite] = vscore
		cand.Features[FeatureVedicConfidence] = vconf

		out = append(out, cand)
	}
	return out, nil
}
