// Package matekit 是一个两段式交友推荐工具包（Mate Recommender Kit）。
//
// 设计要点：
// - 两段式：廉价召回（标准化 embedding 余弦 Top-K）先收窄候选域，
//   重排序（多信号特征 + 可配置加权打分）再产出最终 Top-N
// - Pipeline-first: 单用户推荐逻辑通过 Node 串联（Recall → Filter → Assemble → Rank → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 排序器以 model.RankModel 为唯一契约，未来可替换为模型服务实现
package matekit

import "matekit/pipeline"

// 轻量 facade：便于用户直接 import "matekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall   = pipeline.KindRecall
	KindFilter   = pipeline.KindFilter
	KindAssemble = pipeline.KindAssemble
	KindRank     = pipeline.KindRank
	KindReRank   = pipeline.KindReRank
)
