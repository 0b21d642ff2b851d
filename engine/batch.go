package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"matekit/feature"
	"matekit/recall"
)

// batchColumns 是批处理输出的固定列序。
var batchColumns = []string{
	"user_id",
	"match_id",
	"score",
	"similarity",
	"overlap",
	"age_gap",
	"complementarity",
	"vedic_lite",
	"vedic_confidence",
}

// WriteCSV 把批处理结果写成 CSV：每行一条 (user, match) 配对，
// 带最终分与各特征明细。行序 = 数据集行序 × 名次序，可复现。
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(batchColumns); err != nil {
		return err
	}

	for _, r := range results {
		for _, m := range r.Matches {
			rec := []string{
				r.UserID,
				m.CandidateID,
				formatFloat(m.Score),
				formatFloat(m.Feature(recall.FeatureSimilarity)),
				formatFloat(m.Feature(feature.FeatureOverlap)),
				formatFloat(m.Feature(feature.FeatureAgeGap)),
				formatFloat(m.Feature(feature.FeatureComplementarity)),
				formatFloat(m.Feature(feature.FeatureVedicLite)),
				formatFloat(m.Feature(feature.FeatureVedicConfidence)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile 是 WriteCSV 的文件落盘版本。
func WriteCSVFile(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, results); err != nil {
		return err
	}
	return f.Sync()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
