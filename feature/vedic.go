package feature

import (
	"fmt"
	"math"
	"strings"
	"time"

	"matekit/core"
)

// Vedic-lite：离线、确定性的印度历兼容度近似（无外部 API）。
// 是一个适合 MVP 评分的简化占位实现：排序器按置信度对其降权
// （见 model.Additive），缺失生日时分数与置信度均为 0。

// vedicCity 是出生城市的近似地理信息。
type vedicCity struct {
	lat, lon, tz float64
}

var vedicCities = map[string]vedicCity{
	"delhi":     {28.6139, 77.2090, 5.5},
	"new delhi": {28.6139, 77.2090, 5.5},
	"mumbai":    {19.0760, 72.8777, 5.5},
	"bengaluru": {12.9716, 77.5946, 5.5},
	"bangalore": {12.9716, 77.5946, 5.5},
	"chennai":   {13.0827, 80.2707, 5.5},
	"kolkata":   {22.5726, 88.3639, 5.5},
	"hyderabad": {17.3850, 78.4867, 5.5},
}

func geocodeCity(name string) vedicCity {
	if c, ok := vedicCities[strings.TrimSpace(strings.ToLower(name))]; ok {
		return c
	}
	return vedicCities["delhi"]
}

// Panchanga 是由出生日期推出的近似印度历位置。
type Panchanga struct {
	Tithi      string
	Paksha     string
	Nakshatra  string
	Yoga       string
	Confidence float64 // [0,1]
}

// PanchangaFromDate 按 day-of-year 做确定性映射，并给出置信度启发值
// （纬度带与临近分点时降权）。日期格式 YYYY-MM-DD。
func PanchangaFromDate(date string, lat, lon, tz float64) (*Panchanga, error) {
	_ = lon
	_ = tz
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}
	doy := d.YearDay()

	latFactor := math.Max(0.6, 1.0-math.Abs(lat)/180.0)
	equinoxBand := 1.0 - (math.Abs(float64(doy%182)-91.0)/91.0)*0.2
	conf := clamp01(0.6*latFactor*equinoxBand + 0.2)

	return &Panchanga{
		Tithi:      fmt.Sprintf("Tithi_%d", (doy*3)%30+1),
		Paksha:     []string{"Shukla", "Krishna"}[(doy/15)%2],
		Nakshatra:  fmt.Sprintf("Nakshatra_%d", doy%27+1),
		Yoga:       fmt.Sprintf("Yoga_%d", (doy*2)%27+1),
		Confidence: conf,
	}, nil
}

// VedicLiteScore 基于环形 day-of-year 距离的简化兼容度，取值 [0,1]。
// 核函数在 Δ=0（近同）与 Δ=182.5（近对）各有一个峰。
// 任一日期非法返回 0。
func VedicLiteScore(dobUser, dobCand string) float64 {
	du, err := time.Parse("2006-01-02", dobUser)
	if err != nil {
		return 0
	}
	dc, err := time.Parse("2006-01-02", dobCand)
	if err != nil {
		return 0
	}

	diff := math.Abs(float64(du.YearDay() - dc.YearDay()))
	diff = math.Min(diff, 365-diff)

	same := 1.0 - diff/91.25
	opp := 1.0 - math.Abs(diff-182.5)/91.25
	score := 0.6*math.Max(same, 0) + 0.4*math.Max(opp, 0)
	return clamp01(score)
}

// VedicPair 计算一对用户的 vedic-lite 分数与置信度。
// 双方都有合法生日才评分；birth_time 存在时每侧置信度 +0.15；
// 配对置信度取两侧较小者。
func VedicPair(u, c *core.User) (score, confidence float64) {
	if u == nil || c == nil || len(u.BirthDate) != 10 || len(c.BirthDate) != 10 {
		return 0, 0
	}
	// 置信度只依赖生日的可解析性，与分数高低无关
	score = VedicLiteScore(u.BirthDate, c.BirthDate)

	uc := geocodeCity(u.BirthCity)
	cc := geocodeCity(c.BirthCity)
	up, err := PanchangaFromDate(u.BirthDate, uc.lat, uc.lon, uc.tz)
	if err != nil {
		return 0, 0
	}
	cp, err := PanchangaFromDate(c.BirthDate, cc.lat, cc.lon, cc.tz)
	if err != nil {
		return 0, 0
	}

	uConf := up.Confidence
	cConf := cp.Confidence
	if strings.TrimSpace(u.BirthTime) != "" {
		uConf = math.Min(1, uConf+0.15)
	}
	if strings.TrimSpace(c.BirthTime) != "" {
		cConf = math.Min(1, cConf+0.15)
	}
	return score, clamp01(math.Min(uConf, cConf))
}
