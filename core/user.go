package core

// User 是数据集中的一行：不可变的用户画像记录。
//
// 数据集加载后全程只读，所有组件（召回/过滤/特征/排序）可以无锁并发共享。
// 文本字段在加载时统一小写、去空格，后续比较不再做归一化。
type User struct {
	ID   string
	Name string
	Age  int

	// 硬过滤偏好
	Gender         string
	GenderInterest []string // 小写 token；空或包含 "any" 表示不限
	MinAgePref     int      // 0 表示无下限
	MaxAgePref     int      // 0 表示无上限
	City           string
	CityInterest   []string // 空表示不限

	// 兴趣标签（小写），用于 overlap 特征与标签召回
	Tags map[string]struct{}

	// 互补性三轴的原始问卷值（introvert/extrovert、dark/wholesome、low/high 等）
	Energy string
	Humor  string
	Risk   string

	// Vedic-lite 评分所需，可缺省
	BirthDate string // YYYY-MM-DD
	BirthTime string
	BirthCity string

	// Embedding 按 dataset.Schema 解析出的列顺序排列，维度全体用户一致
	Embedding []float64
}

// HasTag 判断用户是否带有某个标签（入参应已是小写形式）。
func (u *User) HasTag(tag string) bool {
	if u.Tags == nil {
		return false
	}
	_, ok := u.Tags[tag]
	return ok
}

// WantsAnyGender 判断用户的性别偏好是否为不限。
func (u *User) WantsAnyGender() bool {
	if len(u.GenderInterest) == 0 {
		return true
	}
	for _, g := range u.GenderInterest {
		if g == "any" {
			return true
		}
	}
	return false
}

// AcceptsGender 判断候选人性别是否满足本用户的偏好。
func (u *User) AcceptsGender(gender string) bool {
	if u.WantsAnyGender() {
		return true
	}
	for _, g := range u.GenderInterest {
		if g == gender {
			return true
		}
	}
	return false
}

// AcceptsAge 判断候选人年龄是否落在 [MinAgePref, MaxAgePref] 闭区间内。
// 0 边界视为开区间一侧。
func (u *User) AcceptsAge(age int) bool {
	if u.MinAgePref > 0 && age < u.MinAgePref {
		return false
	}
	if u.MaxAgePref > 0 && age > u.MaxAgePref {
		return false
	}
	return true
}

// AcceptsCity 判断候选人城市是否满足偏好。CityInterest 为空表示不限。
func (u *User) AcceptsCity(city string) bool {
	if len(u.CityInterest) == 0 {
		return true
	}
	for _, c := range u.CityInterest {
		if c == city {
			return true
		}
	}
	return false
}
