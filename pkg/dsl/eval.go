package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"matekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("user", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是规则 DSL 解释器，使用 CEL (Common Expression Language) 实现。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：candidate.features.similarity > 0.7
//   - 标签：label.recall_source == "emb"
//   - 查询用户：user.age >= 30 && user.city == "delhi"
//   - 逻辑组合：candidate.features.age_gap < 10.0 && candidate.score > 0.5
//
// 注意：访问不存在的 key 会报错；用 label.key != null 检查存在性。
type Eval struct {
	cand *core.Candidate
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(cand *core.Candidate, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		cand: cand,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行 DSL 表达式，返回布尔结果。空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	if e.cand != nil {
		for k, v := range e.cand.Labels {
			labels[k] = map[string]interface{}{
				"value":  v.Value,
				"source": v.Source,
			}
			// label.recall_source 直接取 value，兼容简写
			labelAccessor[k] = v.Value
		}
	}

	cand := map[string]interface{}{}
	if e.cand != nil {
		cand = map[string]interface{}{
			"user_id":      e.cand.UserID,
			"candidate_id": e.cand.CandidateID,
			"score":        e.cand.Score,
			"features":     e.cand.Features,
			"meta":         e.cand.Meta,
			"labels":       labels,
		}
	}

	user := map[string]interface{}{}
	if e.rctx != nil && e.rctx.User != nil {
		u := e.rctx.User
		user = map[string]interface{}{
			"id":     u.ID,
			"age":    u.Age,
			"gender": u.Gender,
			"city":   u.City,
		}
	}

	return map[string]interface{}{
		"candidate": cand,
		"label":     labelAccessor,
		"user":      user,
	}
}
