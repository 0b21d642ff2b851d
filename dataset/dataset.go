// Package dataset 负责数据集的一次性加载与模式解析。
//
// 加载完成后 Dataset 全程只读：批处理与服务进程内可无锁并发共享。
package dataset

import (
	"strconv"
	"strings"

	"matekit/core"
)

// Dataset 是只读的用户全集：行序固定、id 可索引、embedding 矩阵按模式对齐。
type Dataset struct {
	Schema *Schema
	Users  []*core.User

	byID map[string]int
}

// New 由已解析的用户列表构建 Dataset（行序保留）。
func New(schema *Schema, users []*core.User) *Dataset {
	byID := make(map[string]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}
	return &Dataset{Schema: schema, Users: users, byID: byID}
}

func (d *Dataset) Len() int { return len(d.Users) }

// User 按 id 查找用户。
func (d *Dataset) User(id string) (*core.User, bool) {
	i, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return d.Users[i], true
}

// Index 返回用户的行下标。
func (d *Dataset) Index(id string) (int, bool) {
	i, ok := d.byID[id]
	return i, ok
}

// Matrix 返回 N×D 原始 embedding 矩阵（行 i 即 Users[i].Embedding，共享底层存储）。
func (d *Dataset) Matrix() [][]float64 {
	m := make([][]float64, len(d.Users))
	for i, u := range d.Users {
		m[i] = u.Embedding
	}
	return m
}

// parseRow 将一行字符串记录解析为 User。header 与 rec 一一对应。
// 字段级脏数据（非数字年龄、空 embedding 单元）降级为零值，不中断加载。
func parseRow(header []string, rec []string, schema *Schema) *core.User {
	row := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(rec) {
			row[strings.TrimSpace(col)] = strings.TrimSpace(rec[i])
		}
	}

	u := &core.User{
		ID:             row["user_id"],
		Name:           row["name"],
		Age:            atoi(row["age"]),
		Gender:         normalize(row["gender"]),
		GenderInterest: splitList(row["gender_interest"]),
		MinAgePref:     atoi(row["min_age_pref"]),
		MaxAgePref:     atoi(row["max_age_pref"]),
		City:           normalize(row["city"]),
		CityInterest:   splitCityInterest(row["city_interest"]),
		Tags:           tagSet(row["tags"]),
		Energy:         normalize(row["social_energy"]),
		Humor:          normalize(row["humor_style"]),
		Risk:           normalize(row["risk_taking"]),
		BirthDate:      normalize(row["birth_date"]),
		BirthTime:      normalize(row["birth_time"]),
		BirthCity:      normalize(row["birth_city"]),
	}

	u.Embedding = make([]float64, schema.Dim())
	for i, col := range schema.EmbeddingColumns {
		if v, err := strconv.ParseFloat(row[col], 64); err == nil {
			u.Embedding[i] = v
		}
	}
	return u
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// splitList 按逗号切分为小写 token 列表，空串得到 nil。
func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = normalize(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// splitCityInterest 同 splitList，但 "any" 等价于不限，整体置空。
func splitCityInterest(s string) []string {
	toks := splitList(s)
	for _, tok := range toks {
		if tok == "any" {
			return nil
		}
	}
	return toks
}

func tagSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range splitList(s) {
		set[tok] = struct{}{}
	}
	return set
}
