package model

// RankModel 是排序阶段的最小抽象：输入特征，输出一个可比较的分数。
//
// 这是未来学习型排序器的替换缝：加权线性实现（Additive）与任何模型服务
// 实现都只需满足此契约，其余组件一概不感知具体打分方式。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}
