package recall

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"matekit/core"
	"matekit/pipeline"
	"matekit/pkg/utils"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并合并结果。
// 支持超时、限流、优先级合并策略。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy string        // 合并策略：first / union / priority（优先级按 Sources 顺序）
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	var (
		mu    sync.Mutex
		all   []*core.Candidate
		eg, _ = errgroup.WithContext(ctx)
	)

	sem := make(chan struct{}, n.MaxConcurrent)
	if n.MaxConcurrent <= 0 {
		close(sem) // 无限制时直接关闭，避免阻塞
	}

	for i, src := range n.Sources {
		s := src
		priority := i // 索引越小优先级越高

		eg.Go(func() error {
			if n.MaxConcurrent > 0 {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			cands, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// NOT_FOUND 是用户级错误，需要整体上报；其余召回源错误不中断
				if core.IsNotFound(err) {
					return err
				}
				return nil
			}

			for _, c := range cands {
				c.PutLabel("recall_priority", utils.Label{Value: string(rune('0' + priority)), Source: "recall"})
			}

			mu.Lock()
			all = append(all, cands...)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var merged []*core.Candidate
	switch n.MergeStrategy {
	case "priority":
		merged = n.mergeByPriority(all)
	case "union":
		merged = all
	default: // "first" 或默认
		merged = n.mergeFirst(all)
	}

	// 并发收集后排序定序，保证跨运行确定性
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].CandidateID < merged[j].CandidateID
	})
	return merged, nil
}

// mergeFirst 按候选 ID 去重，保留分数更高的（默认策略）。
func (n *Fanout) mergeFirst(all []*core.Candidate) []*core.Candidate {
	if !n.Dedup {
		return all
	}
	seen := make(map[string]*core.Candidate, len(all))
	out := make([]*core.Candidate, 0, len(all))
	for _, c := range all {
		if c == nil {
			continue
		}
		if old, ok := seen[c.CandidateID]; ok {
			// 合并 labels 与特征，分数取高者
			for k, v := range c.Labels {
				old.PutLabel(k, v)
			}
			for k, v := range c.Features {
				if _, exists := old.Features[k]; !exists {
					old.Features[k] = v
				}
			}
			if c.Score > old.Score {
				old.Score = c.Score
			}
			continue
		}
		seen[c.CandidateID] = c
		out = append(out, c)
	}
	return out
}

// mergeByPriority 按优先级合并：相同候选保留优先级更高的（索引更小）。
func (n *Fanout) mergeByPriority(all []*core.Candidate) []*core.Candidate {
	if !n.Dedup {
		return all
	}
	seen := make(map[string]*core.Candidate, len(all))
	for _, c := range all {
		if c == nil {
			continue
		}
		old, exists := seen[c.CandidateID]
		if !exists {
			seen[c.CandidateID] = c
			continue
		}
		if labelPriority(c) < labelPriority(old) {
			seen[c.CandidateID] = c
		} else {
			for k, v := range c.Labels {
				old.PutLabel(k, v)
			}
		}
	}
	out := make([]*core.Candidate, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	return out
}

func labelPriority(c *core.Candidate) int {
	if lbl, ok := c.Labels["recall_priority"]; ok && len(lbl.Value) > 0 {
		return int(lbl.Value[0] - '0')
	}
	return 999
}
