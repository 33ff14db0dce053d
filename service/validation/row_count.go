/*
 * @module service/validation/row_count
 * @description CSV 行数规则求值器，限制样本导入的数据行数不超过阈值
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow CSV 行数统计 -> 阈值比较 -> 返回结果
 * @rules 文件缺失计为 0 行（无数据不是失败）；超过阈值为 FAILED
 * @dependencies datacheck-service/service/csvcheck, github.com/spf13/cast
 * @refs registry.go, service/csvcheck/quality.go
 */

package validation

import (
	"fmt"

	"github.com/spf13/cast"

	"datacheck-service/service/csvcheck"
	"datacheck-service/service/models"
)

// DefaultRowCountThreshold 样本导入默认行数上限
const DefaultRowCountThreshold = 1000

// CSVRowCountEvaluator 构造 CSV 行数求值器
func CSVRowCountEvaluator() EvaluatorFunc {
	return func(ctx *EvaluatorContext, rule *models.RuleDefinition) models.ValidationResult {
		params := rule.Params
		if params == nil {
			params = map[string]interface{}{}
		}

		threshold := DefaultRowCountThreshold
		if raw, ok := params["threshold"]; ok {
			if t, err := cast.ToIntE(raw); err == nil {
				threshold = t
			}
		}

		n, err := csvcheck.CountDataRows(ctx.SourceCSVPath)
		if err != nil {
			return models.ValidationResult{
				ValidationName:   rule.RuleID,
				Status:           models.StatusDataError,
				Message:          fmt.Sprintf("Failed to read input CSV: %v.", err),
				Details:          map[string]interface{}{},
				ValidationParams: params,
			}
		}
		details := map[string]interface{}{
			"row_count": n,
			"threshold": threshold,
		}
		resultParams := map[string]interface{}{"threshold": threshold}
		for k, v := range params {
			resultParams[k] = v
		}

		if n > threshold {
			return models.ValidationResult{
				ValidationName: rule.RuleID,
				Status:         models.StatusFailed,
				Message: fmt.Sprintf(
					"Input CSV has %d data rows, which exceeds the sample limit of %d.", n, threshold),
				Details:          details,
				ValidationParams: resultParams,
			}
		}
		return models.ValidationResult{
			ValidationName:   rule.RuleID,
			Status:           models.StatusPassed,
			Message:          "",
			Details:          details,
			ValidationParams: resultParams,
		}
	}
}
