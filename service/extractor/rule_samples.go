/*
 * @module service/extractor/rule_samples
 * @description 规则失败样本提取器：从校验结果数组中按规则族展开违规实体样本，
 *              并用源 CSV 回填位置、日期和行号定位信息
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 结果数组 -> 按规则族展开样本 -> CSV 单次读取回填 -> 单位一致性按变量展开
 * @rules
 *   - 仅 FAILED 结果产生样本；富化只补充定位信息，不改变样本语义字段
 *   - 每次富化调用最多读取一次 CSV；每个样本命中首个合格行即停止
 *   - 新增规则族时在此处补充对应的展开分支，否则落入通用兜底样本
 * @dependencies datacheck-service/service/models, datacheck-service/service/utils
 * @refs fluctuation.go, service/validation/persist.go, service/review/summary.go
 */

package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"datacheck-service/service/models"
	"datacheck-service/service/utils"
)

// 已知规则族的规则 ID
const (
	RuleMinValue           = "check_min_value"
	RuleUnitConsistency    = "check_unit_consistency"
	RuleScalingConsistency = "check_scaling_factor_consistency"
	RuleStructuralLint     = "check_structural_lint_error_count"
)

// valuePlaceholder 缺失取值的展示占位符
const valuePlaceholder = "—"

// CSV 列名候选集，按约定优先级排列
var (
	statVarColumns = []string{"variableMeasured", "StatVar", "stat_var", "Variable"}
	placeColumns   = []string{"observationAbout", "observation_about", "place", "Place"}
	dateColumns    = []string{"observationDate", "observation_date", "date", "Date"}
	valueColumns   = []string{"value", "Value"}
)

// ExtractRuleFailureSamples 从校验结果数组提取按规则族展开的失败样本
func ExtractRuleFailureSamples(results []models.ValidationResult) []models.RuleFailureSample {
	var samples []models.RuleFailureSample
	for i := range results {
		result := &results[i]
		if result.Status != models.StatusFailed {
			continue
		}
		switch result.ValidationName {
		case RuleMinValue:
			samples = append(samples, minValueSamples(result)...)
		case RuleUnitConsistency:
			samples = append(samples, unitConsistencySample(result))
		case RuleScalingConsistency:
			samples = append(samples, scalingConsistencySamples(result)...)
		case RuleStructuralLint:
			samples = append(samples, models.RuleFailureSample{
				Rule:     result.ValidationName,
				Expected: "0 structural lint errors",
				Message:  result.Message,
			})
		default:
			samples = append(samples, models.RuleFailureSample{
				Rule:    result.ValidationName,
				Message: result.Message,
			})
		}
	}
	return samples
}

// minValueSamples 最小值规则按 details.failed_rows 展开，一行一个样本
func minValueSamples(result *models.ValidationResult) []models.RuleFailureSample {
	expected := ">= 0"
	if minimum, ok := result.ValidationParams["minimum"]; ok && minimum != nil {
		expected = fmt.Sprintf(">= %v", minimum)
	}
	var samples []models.RuleFailureSample
	for _, row := range asRowMaps(result.Details["failed_rows"]) {
		statVar := firstRowString(row, "stat_var", "StatVar")
		value := row["actual_min_value"]
		if value == nil {
			value = row["value"]
		}
		if value == nil {
			value = valuePlaceholder
		}
		samples = append(samples, models.RuleFailureSample{
			StatVar:  statVar,
			Value:    value,
			Rule:     result.ValidationName,
			Expected: expected,
			Message:  result.Message,
		})
	}
	return samples
}

// unitConsistencySample 单位一致性产出单个聚合样本，富化阶段可能按变量展开
func unitConsistencySample(result *models.ValidationResult) models.RuleFailureSample {
	var unitsSeen string
	for _, key := range []string{"units", "unit_values", "units_seen"} {
		if raw, ok := result.Details[key]; ok && raw != nil {
			unitsSeen = utils.Stringify(raw)
			break
		}
	}
	return models.RuleFailureSample{
		Value:    formatUnitDisplay(unitsSeen),
		Rule:     result.ValidationName,
		Expected: "consistent units (one unit per StatVar)",
		Message:  result.Message,
	}
}

func scalingConsistencySamples(result *models.ValidationResult) []models.RuleFailureSample {
	expected := "consistent scaling factor"
	if condition, ok := result.ValidationParams["condition"].(string); ok && condition != "" {
		// SQL 形式的条件对阅读者没有意义，重写为人话
		if strings.Contains(condition, "ScalingFactors = (SELECT ScalingFactors FROM stats LIMIT 1)") {
			expected = "one scaling factor per StatVar (all rows same)"
		} else {
			expected = condition
		}
	}
	var samples []models.RuleFailureSample
	for _, row := range asRowMaps(result.Details["failing_rows"]) {
		statVar := firstRowString(row, "StatVar", "stat_var")
		var value interface{} = valuePlaceholder
		if raw := firstRowValue(row, "ScalingFactors", "scaling_factors"); raw != nil {
			value = utils.Stringify(raw)
		}
		samples = append(samples, models.RuleFailureSample{
			StatVar:  statVar,
			Value:    value,
			Rule:     result.ValidationName,
			Expected: expected,
			Message:  result.Message,
		})
	}
	return samples
}

// EnrichRuleFailureSamples 用源 CSV 和统计摘要回填样本定位信息并做按变量展开。
// csvPath 或摘要缺失时跳过对应步骤；返回可能被展开替换过的样本切片
func EnrichRuleFailureSamples(
	samples []models.RuleFailureSample,
	csvPath string,
	statsSummaryPath string,
	results []models.ValidationResult,
) []models.RuleFailureSample {
	if csvPath != "" {
		if _, rows, err := utils.ReadCSVTable(csvPath); err == nil && len(rows) > 0 {
			enrichFromCSV(samples, filepath.Base(csvPath), rows, results)
		}
	}
	return expandUnitConsistency(samples, statsSummaryPath)
}

func enrichFromCSV(
	samples []models.RuleFailureSample,
	csvBasename string,
	rows []map[string]string,
	results []models.ValidationResult,
) {
	minThreshold := minValueThreshold(results)
	for i := range samples {
		sample := &samples[i]
		if sample.StatVar == "" {
			continue
		}
		switch sample.Rule {
		case RuleMinValue:
			for rowIdx, row := range rows {
				if !statVarMatches(firstColumn(row, statVarColumns), sample.StatVar) {
					continue
				}
				value, ok := utils.ParseCellFloat(firstColumn(row, valueColumns))
				if !ok || value >= minThreshold {
					continue
				}
				fillLocation(sample, row, csvBasename, rowIdx)
				break
			}
		case RuleScalingConsistency:
			for rowIdx, row := range rows {
				if !statVarMatches(firstColumn(row, statVarColumns), sample.StatVar) {
					continue
				}
				fillLocation(sample, row, csvBasename, rowIdx)
				break
			}
		}
	}
}

// fillLocation 行号从 2 起算：1-based 且跳过表头行
func fillLocation(sample *models.RuleFailureSample, row map[string]string, csvBasename string, rowIdx int) {
	sample.Location = firstColumn(row, placeColumns)
	sample.Date = firstColumn(row, dateColumns)
	sample.SourceRow = fmt.Sprintf("%s:%d", csvBasename, rowIdx+2)
}

// minValueThreshold 取首个失败的最小值规则声明的阈值，缺省为 0
func minValueThreshold(results []models.ValidationResult) float64 {
	for i := range results {
		result := &results[i]
		if result.Status != models.StatusFailed || result.ValidationName != RuleMinValue {
			continue
		}
		if threshold, ok := utils.ParseCellFloat(result.ValidationParams["minimum"]); ok {
			return threshold
		}
	}
	return 0
}

// expandUnitConsistency 当统计摘要提供按变量的单位表时，把单个聚合单位样本
// 替换为每个变量一条的展开样本
func expandUnitConsistency(samples []models.RuleFailureSample, statsSummaryPath string) []models.RuleFailureSample {
	expanded := make([]models.RuleFailureSample, 0, len(samples))
	var statVarUnits []statVarUnit
	loaded := false
	for i := range samples {
		sample := samples[i]
		if sample.Rule != RuleUnitConsistency {
			expanded = append(expanded, sample)
			continue
		}
		if !loaded {
			statVarUnits = loadSummaryStatVarUnits(statsSummaryPath)
			loaded = true
		}
		if len(statVarUnits) == 0 {
			expanded = append(expanded, sample)
			continue
		}
		expected := sample.Expected
		if expected == "" {
			expected = "consistent units (one unit per StatVar)"
		}
		for _, entry := range statVarUnits {
			expanded = append(expanded, models.RuleFailureSample{
				StatVar:  entry.statVar,
				Value:    formatUnitDisplay(entry.unit),
				Rule:     sample.Rule,
				Expected: expected,
				Message:  sample.Message,
			})
		}
	}
	return expanded
}

type statVarUnit struct {
	statVar string
	unit    string
}

// loadSummaryStatVarUnits 从统计摘要读取 (变量, 单位) 表。
// 摘要缺失或没有单位列时返回空表
func loadSummaryStatVarUnits(path string) []statVarUnit {
	if path == "" {
		return nil
	}
	header, rows, err := utils.ReadCSVTable(path)
	if err != nil || len(rows) == 0 {
		return nil
	}
	statVarColumn := pickColumn(header, "StatVar", "stat_var")
	unitColumn := pickColumn(header, "Units", "units")
	if statVarColumn == "" || unitColumn == "" {
		return nil
	}
	var out []statVarUnit
	for _, row := range rows {
		statVar := strings.TrimSpace(row[statVarColumn])
		if statVar == "" {
			continue
		}
		unit := strings.TrimSpace(row[unitColumn])
		if unit == "" {
			unit = valuePlaceholder
		}
		out = append(out, statVarUnit{statVar: statVar, unit: unit})
	}
	return out
}

// formatUnitDisplay 把原始单位表示转为展示字符串：空值、占位符和空括号
// 渲染为字面的 "(missing)"，括号列表拆开后逗号连接
func formatUnitDisplay(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == valuePlaceholder || s == "[]" {
		return "(missing)"
	}
	if strings.HasPrefix(s, "[") {
		inner := strings.TrimSpace(strings.TrimSuffix(s[1:], "]"))
		var parts []string
		for _, part := range strings.Split(inner, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			return "(missing)"
		}
		return strings.Join(parts, ", ")
	}
	return s
}

// statVarMatches 兼容带前缀的标识写法（dcid:Count_X、prefix/Count_X）
func statVarMatches(csvValue, statVar string) bool {
	csvValue = strings.TrimSpace(csvValue)
	statVar = strings.TrimSpace(statVar)
	if csvValue == "" || statVar == "" {
		return false
	}
	return csvValue == statVar ||
		strings.HasSuffix(csvValue, ":"+statVar) ||
		strings.HasSuffix(csvValue, "/"+statVar)
}

// asRowMaps 兼容原生切片和 JSON 解码后的 []interface{} 两种形态
func asRowMaps(raw interface{}) []map[string]interface{} {
	switch rows := raw.(type) {
	case []map[string]interface{}:
		return rows
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(rows))
		for _, item := range rows {
			if row, ok := item.(map[string]interface{}); ok {
				out = append(out, row)
			}
		}
		return out
	default:
		return nil
	}
}

func firstRowValue(row map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if value, ok := row[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func firstRowString(row map[string]interface{}, keys ...string) string {
	if value := firstRowValue(row, keys...); value != nil {
		return utils.Stringify(value)
	}
	return ""
}

func firstColumn(row map[string]string, candidates []string) string {
	for _, name := range candidates {
		if value, ok := row[name]; ok {
			if value = strings.TrimSpace(value); value != "" {
				return value
			}
		}
	}
	return ""
}

func pickColumn(header []string, candidates ...string) string {
	for _, candidate := range candidates {
		for _, name := range header {
			if name == candidate {
				return candidate
			}
		}
	}
	return ""
}
