/*
 * @module service/validation/structural_lint
 * @description 结构性 lint 错误计数规则求值器，统计 lint 报告 LEVEL_ERROR 级别计数器之和，
 *              排除解析诊断类计数器（外部查找失败不代表结构问题，绝不单独阻断）
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 报告快照 -> 计数器筛选求和 -> 阈值比较 -> 返回结果
 * @rules 本规则守卫结构正确性，二元判定：超过阈值 FAILED，否则 PASSED，无 WARNING 中间态
 * @dependencies datacheck-service/service/models, github.com/spf13/cast
 * @refs registry.go
 */

package validation

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"datacheck-service/service/models"
)

// ResolutionDiagnosticPrefix 解析诊断类计数器前缀。
// 该前缀的计数器表示外部引用查找失败，排除在结构错误统计之外
const ResolutionDiagnosticPrefix = "Existence_FailedDcCall_"

// ComputeStructuralLintCount 统计 LEVEL_ERROR 计数器之和，排除解析诊断前缀。
// 报告为 nil 或无 LEVEL_ERROR 桶时返回 0
func ComputeStructuralLintCount(report *models.LintReport) int64 {
	if report == nil {
		return 0
	}
	level, ok := report.LevelSummary[models.LevelError]
	if !ok {
		return 0
	}
	var total int64
	for key, value := range level.Counters {
		if strings.HasPrefix(key, ResolutionDiagnosticPrefix) {
			continue
		}
		n, err := cast.ToInt64E(value.String())
		if err != nil {
			continue
		}
		total += n
	}
	return total
}

// StructuralLintEvaluator 构造结构性 lint 计数求值器
func StructuralLintEvaluator() EvaluatorFunc {
	return func(ctx *EvaluatorContext, rule *models.RuleDefinition) models.ValidationResult {
		params := rule.Params
		if params == nil {
			params = map[string]interface{}{}
		}

		threshold := int64(0)
		if raw, ok := params["threshold"]; ok {
			if t, err := cast.ToInt64E(raw); err == nil {
				threshold = t
			}
		}

		lintErrorCount := ComputeStructuralLintCount(ctx.LintReport)

		if lintErrorCount > threshold {
			return models.ValidationResult{
				ValidationName: rule.RuleID,
				Status:         models.StatusFailed,
				Message: fmt.Sprintf(
					"Found %d structural schema/MCF lint errors (non-resolution), which exceeds the threshold of %d.",
					lintErrorCount, threshold),
				Details:          map[string]interface{}{"lint_error_count": lintErrorCount},
				ValidationParams: params,
			}
		}
		return models.ValidationResult{
			ValidationName:   rule.RuleID,
			Status:           models.StatusPassed,
			Message:          "",
			Details:          map[string]interface{}{"lint_error_count": lintErrorCount},
			ValidationParams: params,
		}
	}
}
