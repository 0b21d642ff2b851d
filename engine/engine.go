// Package engine 负责编排：装载配置与数据集、拟合标准化统计量、
// 组装召回→过滤→装配→排序→截断的 Pipeline，并提供单用户与全量两种入口。
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"matekit/config"
	"matekit/core"
	"matekit/dataset"
	"matekit/embedding"
	"matekit/feature"
	"matekit/filter"
	"matekit/model"
	"matekit/pipeline"
	"matekit/rank"
	"matekit/recall"
	"matekit/rerank"
)

// Engine 持有一次运行期内不变的状态：数据集、配置、
// 拟合好的标准化矩阵、组好的 Pipeline。
//
// 标准化统计量在构造时对整个种群拟合一次，所有查询共用；
// 同一 (dataset, config) 下任意次调用产出逐字节一致的结果。
type Engine struct {
	Data   *dataset.Dataset
	Config *config.Config

	matrix [][]float64
	pipe   *pipeline.Pipeline
	store  core.Store
}

// Option 配置 Engine 的可选依赖。
type Option func(*Engine)

// WithStore 注入外部存储，启用已划掉候选过滤（config.Dismissed.Enabled
// 时由 New 检查）。
func WithStore(s core.Store) Option {
	return func(e *Engine) { e.store = s }
}

// New 构造 Engine：校验配置、拟合标准化、组装 Pipeline。
// 配置或数据集非法属于种群级错误，直接失败。
func New(data *dataset.Dataset, cfg *config.Config, opts ...Option) (*Engine, error) {
	if data == nil || data.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: empty dataset")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{Data: data, Config: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.Dismissed.Enabled && e.store == nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"engine: dismissed filter enabled but no store provided")
	}

	// 标准化：对整个种群拟合一次，之后只读
	stats := embedding.Fit(data.Matrix())
	e.matrix = embedding.Standardize(data.Matrix(), stats)

	e.pipe = e.buildPipeline()

	slog.Info("engine ready",
		"users", data.Len(),
		"dim", data.Schema.Dim(),
		"recall_k", cfg.RecallK,
		"topn", cfg.TopN,
	)
	return e, nil
}

func (e *Engine) buildPipeline() *pipeline.Pipeline {
	cfg := e.Config

	recallNode := &recall.Fanout{
		Sources: []recall.Source{
			&recall.Embedding{Data: e.Data, Matrix: e.matrix, TopK: cfg.RecallK},
		},
		Dedup:         true,
		MergeStrategy: "first",
	}

	filters := []filter.Filter{
		&filter.Preference{Data: e.Data, Flags: cfg.FilterFlags()},
	}
	if cfg.Dismissed.Enabled && e.store != nil {
		filters = append(filters, &filter.Dismissed{
			Store:     e.store,
			KeyPrefix: cfg.Dismissed.KeyPrefix,
		})
	}
	if len(cfg.ExprRules) > 0 {
		filters = append(filters, &filter.Expr{Rules: cfg.ExprRules})
	}

	ranker := &model.Additive{
		Weights:            cfg.RankWeights(),
		VedicMinConf:       cfg.Vedic.MinConf,
		VedicLowConfShrink: cfg.Vedic.LowConfShrink,
	}

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			recallNode,
			&filter.Node{Filters: filters},
			&feature.AssemblerNode{Data: e.Data, Mix: cfg.CompMix},
			&rank.Node{Model: ranker},
			&rerank.TopN{N: cfg.TopN},
		},
	}
}

// RecommendForUser 为单个用户产出 Top-N 推荐。
// topn <= 0 时使用配置值。未知用户返回 NOT_FOUND（用户级错误）。
func (e *Engine) RecommendForUser(ctx context.Context, userID string, topn int) ([]*core.Candidate, error) {
	u, ok := e.Data.User(userID)
	if !ok {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
			fmt.Sprintf("engine: user %s not found", userID))
	}

	rctx := &core.RecommendContext{
		UserID: userID,
		User:   u,
	}
	if topn > 0 {
		rctx.Params = map[string]any{"topn": topn}
	}

	return e.pipe.Run(ctx, rctx, nil)
}

// Result 是批处理中单个用户的推荐结果。
type Result struct {
	UserID  string
	Matches []*core.Candidate
}

// RecommendAll 对数据集内全部用户并行产出推荐。
//
// 逐用户隔离错误：单个用户失败只记日志并跳过，不中止整批。
// 结果按数据集行序返回，与并发调度顺序无关。
func (e *Engine) RecommendAll(ctx context.Context) ([]Result, error) {
	results := make([]Result, e.Data.Len())
	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, u := range e.Data.Users {
		i, u := i, u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches, err := e.RecommendForUser(gctx, u.ID, 0)
			if err != nil {
				slog.Warn("recommend failed, skipping user", "user_id", u.ID, "err", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = Result{UserID: u.ID, Matches: matches}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 被跳过的用户留下零值 Result，压缩掉
	out := results[:0]
	for _, r := range results {
		if r.UserID != "" {
			out = append(out, r)
		}
	}

	slog.Info("batch recommend done", "users", len(out), "failed", failed)
	return out, nil
}

// TopMatches 把推荐结果转为 "id:score" 明细，便于打印/调试。
func TopMatches(cands []*core.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, fmt.Sprintf("%s:%.4f", c.CandidateID, c.Score))
	}
	return out
}
