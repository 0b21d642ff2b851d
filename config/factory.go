package config

import (
	"context"
	"time"

	"matekit/core"
	"matekit/dataset"
	"matekit/feature"
	"matekit/filter"
	"matekit/model"
	"matekit/pipeline"
	"matekit/pkg/conv"
	"matekit/rank"
	"matekit/recall"
	"matekit/rerank"
)

// DefaultFactory 返回注册了全部内置 Node 的工厂，供声明式 Pipeline 配置
// （pipeline.LoadFromYAML + BuildPipeline）使用。
//
// 召回/过滤/装配类 Node 依赖数据集与标准化矩阵，工厂以闭包方式携带它们；
// 矩阵必须是同一次运行拟合出的那份（不在 builder 内重新拟合）。
func DefaultFactory(data *dataset.Dataset, matrix [][]float64) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("recall.embedding", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &recallNode{source: &recall.Embedding{
			Data:   data,
			Matrix: matrix,
			TopK:   conv.ConfigGetInt(cfg, "top_k", 100),
		}}, nil
	})

	factory.Register("recall.tags", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &recallNode{source: &recall.Tags{
			Data: data,
			TopK: conv.ConfigGetInt(cfg, "top_k", 50),
		}}, nil
	})

	factory.Register("recall.fanout", func(cfg map[string]interface{}) (pipeline.Node, error) {
		sources := []recall.Source{
			&recall.Embedding{Data: data, Matrix: matrix, TopK: conv.ConfigGetInt(cfg, "top_k", 100)},
		}
		if conv.ConfigGet(cfg, "with_tags", false) {
			sources = append(sources, &recall.Tags{Data: data, TopK: conv.ConfigGetInt(cfg, "tags_top_k", 50)})
		}
		timeoutMS := conv.ConfigGetInt(cfg, "timeout_ms", 0)
		return &recall.Fanout{
			Sources:       sources,
			Dedup:         true,
			Timeout:       time.Duration(timeoutMS) * time.Millisecond,
			MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
			MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", "first"),
		}, nil
	})

	factory.Register("filter.preference", func(cfg map[string]interface{}) (pipeline.Node, error) {
		flags := filter.Flags{
			RespectGenderInterest: conv.ConfigGet(cfg, "gender", true),
			RespectAgeRange:       conv.ConfigGet(cfg, "age", true),
			RespectCityPreference: conv.ConfigGet(cfg, "city", false),
			Reciprocal:            conv.ConfigGet(cfg, "reciprocal", false),
		}
		return &filter.Node{Filters: []filter.Filter{
			&filter.Preference{Data: data, Flags: flags},
		}}, nil
	})

	factory.Register("filter.expr", func(cfg map[string]interface{}) (pipeline.Node, error) {
		rules := conv.SliceAnyToString(cfg["rules"])
		return &filter.Node{Filters: []filter.Filter{
			&filter.Expr{Rules: rules},
		}}, nil
	})

	factory.Register("feature.assemble", func(cfg map[string]interface{}) (pipeline.Node, error) {
		mix := feature.Mix{
			Energy: conv.ConfigGetFloat64(cfg, "energy", feature.DefaultMix().Energy),
			Humor:  conv.ConfigGetFloat64(cfg, "humor", feature.DefaultMix().Humor),
			Risk:   conv.ConfigGetFloat64(cfg, "risk", feature.DefaultMix().Risk),
		}
		return &feature.AssemblerNode{Data: data, Mix: mix}, nil
	})

	factory.Register("rank.additive", func(cfg map[string]interface{}) (pipeline.Node, error) {
		weights := conv.MapToFloat64(conv.ConfigGet[map[string]interface{}](cfg, "weights", nil))
		m := &model.Additive{
			Bias:               conv.ConfigGetFloat64(cfg, "bias", 0),
			Weights:            weights,
			VedicMinConf:       conv.ConfigGetFloat64(cfg, "vedic_min_conf", 0.30),
			VedicLowConfShrink: conv.ConfigGetFloat64(cfg, "vedic_low_conf_shrink", 0.5),
		}
		return &rank.Node{Model: m}, nil
	})

	factory.Register("rerank.topn", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.TopN{N: conv.ConfigGetInt(cfg, "n", 10)}, nil
	})

	return factory
}

// recallNode 把单个 Source 适配成 Pipeline Node（Fanout 之外的直连用法）。
type recallNode struct {
	source recall.Source
}

func (n *recallNode) Name() string        { return n.source.Name() }
func (n *recallNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *recallNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	out, err := n.source.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	return append(candidates, out...), nil
}
