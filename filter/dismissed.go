package filter

import (
	"context"
	"encoding/json"

	"matekit/core"
)

// Dismissed 是已划掉候选过滤器：过滤掉用户明确划掉（dismiss）过的候选，
// 避免反复推荐同一个人。
//
// 存储格式：key 为 {KeyPrefix}:{UserID}，value 为候选 id 的 JSON 数组。
type Dismissed struct {
	// Store 用于读取用户的已划掉列表（Redis / 内存）
	Store core.Store

	// KeyPrefix 是 Store 中的 key 前缀，默认 "user:dismissed"
	KeyPrefix string
}

func (f *Dismissed) Name() string {
	return "filter.dismissed"
}

func (f *Dismissed) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	cand *core.Candidate,
) (bool, error) {
	if cand == nil || rctx == nil || rctx.UserID == "" || f.Store == nil {
		return false, nil
	}

	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "user:dismissed"
	}

	data, err := f.Store.Get(ctx, keyPrefix+":"+rctx.UserID)
	if err != nil {
		// key 不存在或存储不可用：不过滤，推荐可用性优先
		return false, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return false, nil
	}
	for _, id := range ids {
		if cand.CandidateID == id {
			return true, nil
		}
	}
	return false, nil
}
