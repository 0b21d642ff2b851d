package featurestore

import (
	"context"
	"log/slog"

	"matekit/dataset"
)

// Enrich 用在线特征覆盖数据集的 embedding 维度。
//
// 特征短名（去掉 feature view 前缀）须与数据集 Schema 的 embedding 列名
// 一致才会被写入；其余特征忽略。某用户在线侧缺失时保持文件值不变。
//
// 须在标准化拟合之前调用：覆盖发生在原始值层面，统计量随之重算。
func Enrich(ctx context.Context, client Client, data *dataset.Dataset, refs []string) error {
	if client == nil || data == nil || len(refs) == 0 {
		return nil
	}

	ids := make([]string, 0, data.Len())
	for _, u := range data.Users {
		ids = append(ids, u.ID)
	}

	features, err := client.OnlineFeatures(ctx, refs, ids)
	if err != nil {
		return err
	}

	updated := 0
	for _, u := range data.Users {
		values, ok := features[u.ID]
		if !ok || len(values) == 0 {
			continue
		}
		touched := false
		for name, v := range values {
			dim, ok := data.Schema.DimIndex(name)
			if !ok {
				continue
			}
			u.Embedding[dim] = v
			touched = true
		}
		if touched {
			updated++
		}
	}

	slog.Info("feature store enrich done",
		"backend", client.Name(),
		"refs", len(refs),
		"users_updated", updated,
	)
	return nil
}
