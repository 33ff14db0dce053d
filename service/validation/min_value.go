/*
 * @module service/validation/min_value
 * @description 最小值校验规则求值器，检查统计摘要中各 StatVar 的最小值不低于配置下限，
 *              对允许负值的序列（增量、增长率等）按关键字豁免
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 参数校验 -> 摘要加载 -> 逐行豁免/解析/比较 -> 汇总结果
 * @rules
 *   - 缺少 minimum 参数返回 CONFIG_ERROR，缺少 MinValue 列返回 DATA_ERROR
 *   - 摘要文件缺失视为"无可检查数据"，返回 PASSED 零计数
 *   - 存在失败行时状态为 WARNING（本求值器自身从不产生 FAILED）
 * @dependencies datacheck-service/service/models, datacheck-service/service/utils, github.com/spf13/cast
 * @refs registry.go, service/extractor/rule_samples.go
 */

package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"

	"datacheck-service/service/models"
	"datacheck-service/service/utils"
)

// DefaultNegativeAllowedKeywords 默认豁免关键字（有序集合，大小写敏感的子串匹配）。
// StatVar 名称包含任一关键字时跳过最小值检查，允许该序列取负值。
// 不要升级为正则或模糊匹配：匹配语义变化会改变被豁免的实体集合
var DefaultNegativeAllowedKeywords = []string{
	"Incremental",
	"GrowthRate",
	"Net",
	"Change",
}

// MinValueEvaluator 构造最小值校验求值器，豁免关键字由调用方注入
func MinValueEvaluator(negativeAllowedKeywords []string) EvaluatorFunc {
	keywords := negativeAllowedKeywords
	if keywords == nil {
		keywords = DefaultNegativeAllowedKeywords
	}

	return func(ctx *EvaluatorContext, rule *models.RuleDefinition) models.ValidationResult {
		params := rule.Params
		if params == nil {
			params = map[string]interface{}{}
		}

		rawMin, hasMin := params["minimum"]
		if !hasMin {
			return models.ValidationResult{
				ValidationName:   rule.RuleID,
				Status:           models.StatusConfigError,
				Message:          "Configuration error: 'minimum' key not specified.",
				Details:          map[string]interface{}{},
				ValidationParams: params,
			}
		}
		minimum, err := cast.ToFloat64E(rawMin)
		if err != nil {
			minimum = 0
		}

		if ctx.StatsSummaryPath == "" || !fileExists(ctx.StatsSummaryPath) {
			return models.ValidationResult{
				ValidationName: rule.RuleID,
				Status:         models.StatusPassed,
				Message:        "",
				Details: map[string]interface{}{
					"rows_processed": 0,
					"rows_succeeded": 0,
					"rows_failed":    0,
				},
				ValidationParams: params,
			}
		}

		header, rows, err := utils.ReadCSVTable(ctx.StatsSummaryPath)
		if err != nil {
			return models.ValidationResult{
				ValidationName:   rule.RuleID,
				Status:           models.StatusDataError,
				Message:          fmt.Sprintf("Failed to read stats summary: %v.", err),
				Details:          map[string]interface{}{},
				ValidationParams: params,
			}
		}
		if !containsColumn(header, "MinValue") {
			return models.ValidationResult{
				ValidationName:   rule.RuleID,
				Status:           models.StatusDataError,
				Message:          "Input data is missing required column: 'MinValue'.",
				Details:          map[string]interface{}{},
				ValidationParams: params,
			}
		}

		rowsProcessed := 0
		rowsFailed := 0
		failedRows := []map[string]interface{}{}

		for _, row := range rows {
			statVar, ok := row["StatVar"]
			if !ok {
				statVar = "Unknown"
			}
			if matchesAnyKeyword(statVar, keywords) {
				continue
			}
			rowsProcessed++

			minValue, ok := utils.ParseCellFloat(row["MinValue"])
			if !ok {
				// 无法解析的单元格静默跳过，不计入失败
				continue
			}
			if minValue < minimum {
				rowsFailed++
				failedRows = append(failedRows, map[string]interface{}{
					"stat_var":         statVar,
					"actual_min_value": minValue,
					"minimum":          minimum,
				})
			}
		}

		rowsSucceeded := rowsProcessed - rowsFailed

		if rowsFailed > 0 {
			return models.ValidationResult{
				ValidationName: rule.RuleID,
				Status:         models.StatusWarning,
				Message: fmt.Sprintf("%d out of %d StatVars failed the minimum value check.",
					rowsFailed, rowsProcessed),
				Details: map[string]interface{}{
					"failed_rows":    failedRows,
					"rows_processed": rowsProcessed,
					"rows_succeeded": rowsSucceeded,
					"rows_failed":    rowsFailed,
				},
				ValidationParams: params,
			}
		}

		return models.ValidationResult{
			ValidationName: rule.RuleID,
			Status:         models.StatusPassed,
			Message:        "",
			Details: map[string]interface{}{
				"rows_processed": rowsProcessed,
				"rows_succeeded": rowsSucceeded,
				"rows_failed":    rowsFailed,
			},
			ValidationParams: params,
		}
	}
}

func matchesAnyKeyword(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func containsColumn(header []string, name string) bool {
	for _, col := range header {
		if col == name {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
