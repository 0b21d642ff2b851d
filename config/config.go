// Package config 提供应用级配置：召回规模、排序权重、过滤开关等
// 全部算法参数的单一来源。支持 YAML 与 JSON（按扩展名识别）。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"matekit/core"
	"matekit/feature"
	"matekit/filter"
	"matekit/recall"
)

// Weights 是加法排序器的特征权重。
//
// AgePenalty 为正数语义（配置写 0.01 表示每岁年龄差扣 0.01 分），
// 内部换算为 age_gap 的负权重；写负数则年龄差变成加分项，方向由配置决定。
type Weights struct {
	Similarity      float64 `yaml:"similarity" json:"similarity"`
	Overlap         float64 `yaml:"overlap" json:"overlap"`
	Complementarity float64 `yaml:"complementarity" json:"complementarity"`
	VedicLite       float64 `yaml:"vedic_lite" json:"vedic_lite"`
	AgePenalty      float64 `yaml:"age_penalty" json:"age_penalty"`
}

// Vedic 控制 vedic-lite 信号的置信度收缩。
type Vedic struct {
	MinConf       float64 `yaml:"min_conf" json:"min_conf"`
	LowConfShrink float64 `yaml:"low_conf_shrink" json:"low_conf_shrink"`
}

// Filters 是偏好过滤的开关组。
type Filters struct {
	Gender     bool `yaml:"gender" json:"gender"`
	Age        bool `yaml:"age" json:"age"`
	City       bool `yaml:"city" json:"city"`
	Reciprocal bool `yaml:"reciprocal" json:"reciprocal"`
}

// Dismissed 配置已划掉候选过滤（需要外部存储）。
type Dismissed struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

// FeatureStore 配置在线特征库（Feast）接入，可选。
type FeatureStore struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Project string `yaml:"project" json:"project"`
}

// Config 是完整的应用配置。零值字段在 Load 时以缺省值补齐。
type Config struct {
	RecallK      int          `yaml:"recall_k" json:"recall_k"`
	TopN         int          `yaml:"topn" json:"topn"`
	Weights      Weights      `yaml:"weights" json:"weights"`
	CompMix      feature.Mix  `yaml:"comp_mix" json:"comp_mix"`
	Vedic        Vedic        `yaml:"vedic" json:"vedic"`
	Filters      Filters      `yaml:"filters" json:"filters"`
	Dismissed    Dismissed    `yaml:"dismissed" json:"dismissed"`
	FeatureStore FeatureStore `yaml:"feature_store" json:"feature_store"`

	// ExprRules 是运营侧的 CEL 过滤规则，任意命中即剔除候选
	ExprRules []string `yaml:"expr_rules" json:"expr_rules"`
}

// Default 返回约定的缺省配置。
func Default() *Config {
	return &Config{
		RecallK: 100,
		TopN:    10,
		Weights: Weights{
			Similarity:      0.30,
			Overlap:         0.20,
			Complementarity: 0.20,
			VedicLite:       0.30,
			AgePenalty:      0,
		},
		CompMix: feature.DefaultMix(),
		Vedic: Vedic{
			MinConf:       0.30,
			LowConfShrink: 0.5,
		},
		Filters: Filters{
			Gender:     true,
			Age:        true,
			City:       false,
			Reciprocal: false,
		},
		Dismissed: Dismissed{
			KeyPrefix: "user:dismissed",
		},
	}
}

// Load 从文件加载配置，按扩展名识别格式（.yaml/.yml/.json），
// 未出现的字段保持缺省值。path 为空时直接返回缺省配置。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("read config %s: %v", path, err))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeNotSupported,
			fmt.Sprintf("unsupported config format: %s", filepath.Ext(path)))
	}
	if err != nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("parse config %s: %v", path, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 做启动期校验：配置非法属于种群级错误，应当直接中止。
func (c *Config) Validate() error {
	if c.RecallK <= 0 {
		return invalid("recall_k must be > 0")
	}
	if c.TopN <= 0 {
		return invalid("topn must be > 0")
	}
	if c.CompMix.Energy < 0 || c.CompMix.Humor < 0 || c.CompMix.Risk < 0 {
		return invalid("comp_mix weights must be >= 0")
	}
	if c.CompMix.Energy+c.CompMix.Humor+c.CompMix.Risk <= 0 {
		return invalid("comp_mix weights must not all be zero")
	}
	if c.Vedic.MinConf < 0 || c.Vedic.MinConf > 1 {
		return invalid("vedic.min_conf must be in [0,1]")
	}
	if c.Vedic.LowConfShrink < 0 || c.Vedic.LowConfShrink > 1 {
		return invalid("vedic.low_conf_shrink must be in [0,1]")
	}
	if c.Dismissed.Enabled && c.Dismissed.RedisAddr == "" {
		return invalid("dismissed.enabled requires dismissed.redis_addr")
	}
	if c.FeatureStore.Enabled && c.FeatureStore.Addr == "" {
		return invalid("feature_store.enabled requires feature_store.addr")
	}
	return nil
}

// FilterFlags 把配置开关换算成过滤器的 Flags。
func (c *Config) FilterFlags() filter.Flags {
	return filter.Flags{
		RespectGenderInterest: c.Filters.Gender,
		RespectAgeRange:       c.Filters.Age,
		RespectCityPreference: c.Filters.City,
		Reciprocal:            c.Filters.Reciprocal,
	}
}

// RankWeights 把配置权重换算成排序器的特征权重表。
// age_penalty 在这里取负：配置表达“每岁扣多少分”，排序器只做 Σ w·f。
func (c *Config) RankWeights() map[string]float64 {
	return map[string]float64{
		recall.FeatureSimilarity:       c.Weights.Similarity,
		feature.FeatureOverlap:         c.Weights.Overlap,
		feature.FeatureComplementarity: c.Weights.Complementarity,
		feature.FeatureVedicLite:       c.Weights.VedicLite,
		feature.FeatureAgeGap:          -c.Weights.AgePenalty,
	}
}

func invalid(msg string) error {
	return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: "+msg)
}
