package dataset

import (
	"sort"
	"strings"

	"matekit/core"
)

// 必需列。embedding 列（t_*/e_*）按前缀约定发现，不在固定列表内。
var requiredColumns = []string{
	"user_id",
	"age",
	"gender",
	"gender_interest",
	"min_age_pref",
	"max_age_pref",
	"city",
	"city_interest",
	"tags",
	"social_energy",
	"humor_style",
	"risk_taking",
}

// Schema 是加载时一次性解析出的数据集模式：embedding 维度名的固定有序列表。
//
// 列集可以随数据演进（按 t_*/e_* 前缀发现），但解析只发生一次；
// 后续所有组件基于该有序模式操作，不再检视原始列名。
type Schema struct {
	// EmbeddingColumns 按字典序排列，保证跨运行一致
	EmbeddingColumns []string

	// 列名 -> 维度下标
	index map[string]int
}

// ResolveSchema 从表头解析 Schema：校验必需列，发现 t_*/e_* embedding 列。
// 无 embedding 列或缺必需列时返回数据集级错误（致命）。
func ResolveSchema(columns []string) (*Schema, error) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[strings.TrimSpace(c)] = true
	}
	for _, req := range requiredColumns {
		if !present[req] {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				"dataset: missing required column "+req)
		}
	}

	emb := make([]string, 0, len(columns))
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if strings.HasPrefix(c, "t_") || strings.HasPrefix(c, "e_") {
			emb = append(emb, c)
		}
	}
	if len(emb) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"dataset: no embedding columns found (expected t_* or e_* columns)")
	}
	sort.Strings(emb)

	idx := make(map[string]int, len(emb))
	for i, c := range emb {
		idx[c] = i
	}
	return &Schema{EmbeddingColumns: emb, index: idx}, nil
}

// Dim 返回 embedding 维度数。
func (s *Schema) Dim() int { return len(s.EmbeddingColumns) }

// DimIndex 返回列名对应的维度下标。
func (s *Schema) DimIndex(column string) (int, bool) {
	i, ok := s.index[column]
	return i, ok
}
