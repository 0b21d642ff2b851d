package core

import "matekit/pkg/utils"

// Candidate 是推荐链路中的统一承载结构：一个 (user, candidate) 配对的
// 特征、分数、元信息与标签。Labels 用于解释与策略驱动；Score 用于排序决策。
//
// 生命周期：只在单次 Pipeline 运行内存活，跨用户不共享，最终仅 Top-N 被输出。
type Candidate struct {
	UserID      string
	CandidateID string
	Score       float64
	Features    map[string]float64
	Meta        map[string]any
	Labels      map[string]utils.Label
}

func NewCandidate(userID, candidateID string) *Candidate {
	return &Candidate{
		UserID:      userID,
		CandidateID: candidateID,
		Score:       0,
		Features:    make(map[string]float64),
		Meta:        make(map[string]any),
		Labels:      make(map[string]utils.Label),
	}
}

// Feature 读取特征值，缺失返回 0（中性值，不视为错误）。
func (c *Candidate) Feature(key string) float64 {
	if c.Features == nil {
		return 0
	}
	return c.Features[key]
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}
