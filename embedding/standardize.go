// Package embedding 提供种群级标准化与向量相似度的纯函数实现。
//
// 标准化是显式两阶段契约：Fit 对全量数据集计算一次统计量（不可变），
// Transform 是 (原始向量, 统计量) -> 标准化向量 的纯函数。统计量对象被
// 显式传给所有使用方，不存在隐藏的共享可变状态。
package embedding

import "math"

// zeroVarianceEps 以下的标准差按零方差处理：该维度对所有用户输出 0，
// 不做除法，不产生 NaN/Inf。
const zeroVarianceEps = 1e-12

// Stats 是对全量种群一次性拟合出的每维统计量。不可变，可并发共享。
type Stats struct {
	Mean []float64
	Std  []float64
}

// Fit 对 N×D 原始矩阵逐维计算均值与标准差（总体标准差，分母 N）。
// 每次运行只应调用一次，之后所有相似度计算复用同一份统计量。
func Fit(matrix [][]float64) *Stats {
	if len(matrix) == 0 {
		return &Stats{}
	}
	n := float64(len(matrix))
	dim := len(matrix[0])

	mean := make([]float64, dim)
	for _, row := range matrix {
		for d := 0; d < dim && d < len(row); d++ {
			mean[d] += row[d]
		}
	}
	for d := range mean {
		mean[d] /= n
	}

	std := make([]float64, dim)
	for _, row := range matrix {
		for d := 0; d < dim && d < len(row); d++ {
			diff := row[d] - mean[d]
			std[d] += diff * diff
		}
	}
	for d := range std {
		std[d] = math.Sqrt(std[d] / n)
	}

	return &Stats{Mean: mean, Std: std}
}

// Dim 返回统计量覆盖的维度数。
func (s *Stats) Dim() int { return len(s.Mean) }

// Transform 返回标准化后的新向量：(x - μ) / σ；零方差维度恒为 0。
func (s *Stats) Transform(vec []float64) []float64 {
	out := make([]float64, len(s.Mean))
	for d := range s.Mean {
		if d >= len(vec) {
			break
		}
		if s.Std[d] < zeroVarianceEps {
			out[d] = 0
			continue
		}
		out[d] = (vec[d] - s.Mean[d]) / s.Std[d]
	}
	return out
}

// Standardize 对整个矩阵做标准化，返回同形状新矩阵。
func Standardize(matrix [][]float64, stats *Stats) [][]float64 {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		out[i] = stats.Transform(row)
	}
	return out
}
