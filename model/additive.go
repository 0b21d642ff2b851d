package model

import (
	"encoding/json"
	"os"
)

// Additive 实现固定的加权线性打分：score = Σ weight_k · feature_k。
//
// 权重外部供给（配置），可以为零或负数：age_gap 的惩罚方向由配置里
// 的负权重表达，不在此硬编码。打分器无内部状态，是 (features, weights)
// 的纯函数。
//
// 特例：vedic_lite 的权重按置信度收缩——vedic_confidence 低于 VedicMinConf
// 时有效权重乘以 VedicLowConfShrink（置信度不足的信号降权而不是丢弃）。
type Additive struct {
	Bias    float64            // 偏置项
	Weights map[string]float64 // 特征权重，key 对应装配出的特征名

	// VedicMinConf 置信度阈值，低于它时收缩 vedic_lite 权重
	VedicMinConf float64
	// VedicLowConfShrink 低置信度时的权重收缩系数
	VedicLowConfShrink float64
}

// LoadAdditive 从 JSON 文件加载权重（与配置内联权重等价的另一种供给方式）。
func LoadAdditive(path string) (*Additive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Bias               float64            `json:"bias"`
		Weights            map[string]float64 `json:"weights"`
		VedicMinConf       float64            `json:"vedic_min_conf"`
		VedicLowConfShrink float64            `json:"vedic_low_conf_shrink"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Additive{
		Bias:               raw.Bias,
		Weights:            raw.Weights,
		VedicMinConf:       raw.VedicMinConf,
		VedicLowConfShrink: raw.VedicLowConfShrink,
	}, nil
}

func (m *Additive) Name() string { return "additive" }

func (m *Additive) Predict(features map[string]float64) (float64, error) {
	score := m.Bias
	for k, w := range m.Weights {
		if k == "vedic_lite" && features["vedic_confidence"] < m.VedicMinConf {
			w *= m.VedicLowConfShrink
		}
		score += w * features[k]
	}
	return score, nil
}
