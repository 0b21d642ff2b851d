package feature

import (
	"strconv"
	"strings"

	"matekit/core"
)

// Mix 是互补性三轴的组合权重（配置项，不是隐藏启发式）。
type Mix struct {
	Energy float64 `yaml:"energy" json:"energy"`
	Humor  float64 `yaml:"humor" json:"humor"`
	Risk   float64 `yaml:"risk" json:"risk"`
}

// DefaultMix 返回约定的缺省轴权重。
func DefaultMix() Mix {
	return Mix{Energy: 0.34, Humor: 0.33, Risk: 0.33}
}

// Complementarity 计算互补性总分与各轴子分。
//
// 组合函数（确定性）：
//   - 每轴把双方问卷值映射到 [0,1] 位置（introvert 0 / ambivert 0.5 / extrovert 1 等；
//     数字输入按 [0,1] 截断）
//   - 轴子分 = |posU − posC|，随双方向相反极点分叉单调上升，恰在两个极点时为 1
//   - 任一侧缺失/无法识别的轴贡献 0（中性），且不参与 Mix 归一化
//   - 总分 = Σ w_i·sub_i / Σ w_i（仅已知轴），恒落在 [0,1]
//
// 缺失特质数据永远不会抛错或传播 NaN。
func Complementarity(u, c *core.User, mix Mix) (total float64, sub map[string]float64) {
	sub = map[string]float64{
		"comp_energy": 0,
		"comp_humor":  0,
		"comp_risk":   0,
	}
	if u == nil || c == nil {
		return 0, sub
	}

	type axis struct {
		key      string
		weight   float64
		position func(string) (float64, bool)
		uv, cv   string
	}
	axes := []axis{
		{"comp_energy", mix.Energy, energyPosition, u.Energy, c.Energy},
		{"comp_humor", mix.Humor, humorPosition, u.Humor, c.Humor},
		{"comp_risk", mix.Risk, riskPosition, u.Risk, c.Risk},
	}

	var weighted, mass float64
	for _, a := range axes {
		pu, okU := a.position(a.uv)
		pc, okC := a.position(a.cv)
		if !okU || !okC || a.weight <= 0 {
			continue
		}
		d := pu - pc
		if d < 0 {
			d = -d
		}
		sub[a.key] = d
		weighted += a.weight * d
		mass += a.weight
	}
	if mass == 0 {
		return 0, sub
	}
	return weighted / mass, sub
}

// energyPosition 把社交能量问卷值映射到 [0,1]：introvert 0, extrovert 1。
func energyPosition(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return clamp01(f), true
	}
	switch v {
	case "introvert", "low":
		return 0, true
	case "extrovert", "extravert", "high":
		return 1, true
	}
	// ambivert / medium / neutral 以及其它变体
	return 0.5, true
}

// humorPosition 把幽默风格映射到 [0,1]：wholesome 0, dark 1。
func humorPosition(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return clamp01(f), true
	}
	for _, tok := range []string{"dark", "edgy", "sarcastic"} {
		if strings.Contains(v, tok) {
			return 1, true
		}
	}
	for _, tok := range []string{"wholesome", "clean", "light"} {
		if strings.Contains(v, tok) {
			return 0, true
		}
	}
	return 0.5, true
}

// riskPosition 把风险偏好映射到 [0,1]：low 0, high 1。
func riskPosition(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return clamp01(f), true
	}
	switch v {
	case "low", "cautious":
		return 0, true
	case "high", "bold", "adventurous":
		return 1, true
	}
	return 0.5, true
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
