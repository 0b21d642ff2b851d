// Package featurestore 接入在线特征库（Feast），把线上实时特征合并进
// 数据集的用户 embedding，使批处理用的问卷向量可以被更新鲜的信号覆盖。
package featurestore

import "context"

// Client 是在线特征库的领域接口。
//
// 只保留本系统实际用到的在线读路径；历史特征/物化等离线能力
// 属于训练侧，不在这里建模。
type Client interface {
	// Name 返回后端名称（用于日志）
	Name() string

	// OnlineFeatures 按用户批量读取在线特征。
	//
	// refs 是特征引用列表（如 "user_traits:e_openness"），userIDs 是实体 id。
	// 返回 userID -> (特征短名 -> 值)；缺失的特征不出现在 map 中。
	OnlineFeatures(ctx context.Context, refs []string, userIDs []string) (map[string]map[string]float64, error)

	// Close 释放连接
	Close() error
}
