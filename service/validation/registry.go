/*
 * @module service/validation/registry
 * @description 本地规则求值器注册表，按 validator 名称分派规则到对应的求值函数
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 注册求值器 -> 按规则 validator 查找 -> 执行求值 -> 返回单条结果
 * @rules 未知 validator 跳过并记录日志，绝不崩溃；求值器对预期异常返回结构化结果而非错误
 * @dependencies datacheck-service/service/models, log/slog
 * @refs orchestrator.go, min_value.go, structural_lint.go, row_count.go
 */

package validation

import (
	"log/slog"

	"datacheck-service/service/models"
)

// 本地求值器的 validator 名称
const (
	ValidatorMinValue       = "MIN_VALUE"
	ValidatorStructuralLint = "STRUCTURAL_LINT_ERROR_COUNT"
	ValidatorCSVRowCount    = "CSV_ROW_COUNT"

	// 外部工具的旧版 lint 计数规则，已由 STRUCTURAL_LINT_ERROR_COUNT 替代
	ValidatorLegacyLintCount = "LINT_ERROR_COUNT"
)

// EvaluatorContext 求值器的输入快照。求值器只读，不修改任何字段
type EvaluatorContext struct {
	// StatsSummaryPath 统计摘要 CSV 路径，可能为空或指向不存在的文件
	StatsSummaryPath string
	// LintReport 已加载的 lint 报告，可能为 nil
	LintReport *models.LintReport
	// SourceCSVPath 原始导入 CSV 路径，供行数类规则使用
	SourceCSVPath string
}

// EvaluatorFunc 单条规则的求值函数：(快照, 规则) -> 一条结果
type EvaluatorFunc func(ctx *EvaluatorContext, rule *models.RuleDefinition) models.ValidationResult

// Registry 求值器注册表
type Registry struct {
	evaluators map[string]EvaluatorFunc
}

// NewRegistry 创建带默认求值器的注册表。
// 豁免关键字等可变配置通过构造参数注入，不使用包级可变状态
func NewRegistry(negativeAllowedKeywords []string) *Registry {
	r := &Registry{evaluators: make(map[string]EvaluatorFunc)}
	r.Register(ValidatorMinValue, MinValueEvaluator(negativeAllowedKeywords))
	r.Register(ValidatorStructuralLint, StructuralLintEvaluator())
	r.Register(ValidatorCSVRowCount, CSVRowCountEvaluator())
	return r
}

// Register 注册求值器，同名覆盖
func (r *Registry) Register(validator string, fn EvaluatorFunc) {
	r.evaluators[validator] = fn
}

// Knows 判断 validator 是否有本地求值器
func (r *Registry) Knows(validator string) bool {
	_, ok := r.evaluators[validator]
	return ok
}

// Evaluate 按规则的 validator 分派求值。未知 validator 返回 (零值, false)
// 并记录日志，调用方跳过该规则
func (r *Registry) Evaluate(ctx *EvaluatorContext, rule *models.RuleDefinition) (models.ValidationResult, bool) {
	fn, ok := r.evaluators[rule.Validator]
	if !ok {
		slog.Warn("未知的本地求值器，跳过规则",
			"validator", rule.Validator,
			"rule_id", rule.RuleID)
		return models.ValidationResult{}, false
	}
	return fn(ctx, rule), true
}
