/*
 * @module service/extractor/rule_samples_test
 * @description 规则失败样本提取与富化测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 构造结果数组/CSV -> 提取富化 -> 样本验证
 * @rules 覆盖各规则族展开、CSV 回填定位和单位展开
 * @dependencies testing, github.com/stretchr/testify
 * @refs rule_samples.go
 */

package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacheck-service/service/models"
)

func failedResult(name string, details, params map[string]interface{}) models.ValidationResult {
	return models.ValidationResult{
		ValidationName:   name,
		Status:           models.StatusFailed,
		Message:          name + " failed",
		Details:          details,
		ValidationParams: params,
	}
}

// TestExtractMinValueSamples 最小值失败按 failed_rows 一行一样本展开
func TestExtractMinValueSamples(t *testing.T) {
	results := []models.ValidationResult{
		failedResult(RuleMinValue,
			map[string]interface{}{
				"failed_rows": []interface{}{
					map[string]interface{}{"stat_var": "Count_Person", "actual_min_value": float64(-5)},
					map[string]interface{}{"stat_var": "Count_Household", "actual_min_value": float64(-1)},
				},
			},
			map[string]interface{}{"minimum": float64(0)}),
	}

	samples := ExtractRuleFailureSamples(results)
	require.Len(t, samples, 2)
	assert.Equal(t, "Count_Person", samples[0].StatVar)
	assert.Equal(t, float64(-5), samples[0].Value)
	assert.Equal(t, ">= 0", samples[0].Expected)
	assert.Equal(t, RuleMinValue, samples[0].Rule)
}

// TestExtractSkipsNonFailed 非 FAILED 结果不产生样本
func TestExtractSkipsNonFailed(t *testing.T) {
	results := []models.ValidationResult{
		{ValidationName: RuleMinValue, Status: models.StatusWarning},
		{ValidationName: RuleUnitConsistency, Status: models.StatusPassed},
	}
	assert.Empty(t, ExtractRuleFailureSamples(results))
}

// TestExtractUnitConsistencySample 单位不一致产出单个聚合样本，空值渲染为 (missing)
func TestExtractUnitConsistencySample(t *testing.T) {
	tests := []struct {
		name      string
		units     interface{}
		wantValue string
	}{
		{"空列表", "[]", "(missing)"},
		{"占位符", "—", "(missing)"},
		{"括号列表", "[USD, EUR]", "USD, EUR"},
		{"普通字符串", "USD", "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []models.ValidationResult{
				failedResult(RuleUnitConsistency,
					map[string]interface{}{"units": tt.units}, nil),
			}
			samples := ExtractRuleFailureSamples(results)
			require.Len(t, samples, 1)
			assert.Equal(t, tt.wantValue, samples[0].Value)
			assert.Equal(t, "consistent units (one unit per StatVar)", samples[0].Expected)
		})
	}
}

// TestExtractScalingSamples 缩放因子失败按 failing_rows 展开并重写 SQL 式期望
func TestExtractScalingSamples(t *testing.T) {
	results := []models.ValidationResult{
		failedResult(RuleScalingConsistency,
			map[string]interface{}{
				"failing_rows": []interface{}{
					map[string]interface{}{"StatVar": "Count_Person", "ScalingFactors": "[100, 1000]"},
				},
			},
			map[string]interface{}{
				"condition": "ScalingFactors = (SELECT ScalingFactors FROM stats LIMIT 1)",
			}),
	}
	samples := ExtractRuleFailureSamples(results)
	require.Len(t, samples, 1)
	assert.Equal(t, "one scaling factor per StatVar (all rows same)", samples[0].Expected)
	assert.Equal(t, "[100, 1000]", samples[0].Value)
}

// TestExtractStructuralLintAndFallback 结构性 lint 单样本，未知规则走兜底
func TestExtractStructuralLintAndFallback(t *testing.T) {
	results := []models.ValidationResult{
		failedResult(RuleStructuralLint, nil, nil),
		failedResult("check_mystery_rule", nil, nil),
	}
	samples := ExtractRuleFailureSamples(results)
	require.Len(t, samples, 2)
	assert.Equal(t, "0 structural lint errors", samples[0].Expected)
	assert.Equal(t, "check_mystery_rule", samples[1].Rule)
	assert.Empty(t, samples[1].Expected)
}

// TestEnrichMinValueFromCSV 最小值样本回填位置、日期与来源行
func TestEnrichMinValueFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	csvContent := "variableMeasured,observationAbout,observationDate,value\n" +
		"dcid:Count_Person,country/CHN,2020,100\n" +
		"dcid:Count_Person,country/USA,2021,-5\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvContent), 0o644))

	results := []models.ValidationResult{
		failedResult(RuleMinValue,
			map[string]interface{}{
				"failed_rows": []interface{}{
					map[string]interface{}{"stat_var": "Count_Person", "actual_min_value": float64(-5)},
				},
			},
			map[string]interface{}{"minimum": float64(0)}),
	}
	samples := ExtractRuleFailureSamples(results)
	enriched := EnrichRuleFailureSamples(samples, csvPath, "", results)

	require.Len(t, enriched, 1)
	// 第一行值为 100 不低于阈值，命中的是第二行（文件第 3 行）
	assert.Equal(t, "country/USA", enriched[0].Location)
	assert.Equal(t, "2021", enriched[0].Date)
	assert.Equal(t, "data.csv:3", enriched[0].SourceRow)
}

// TestEnrichStatVarPrefixMatching 带前缀的标识可匹配（dcid: 与 / 前缀）
func TestEnrichStatVarPrefixMatching(t *testing.T) {
	tests := []struct {
		name   string
		csvVal string
		want   bool
	}{
		{"完全相等", "Count_Person", true},
		{"冒号前缀", "dcid:Count_Person", true},
		{"斜杠前缀", "sv/Count_Person", true},
		{"不匹配", "Count_Household", false},
		{"后缀部分重叠", "XCount_Person", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statVarMatches(tt.csvVal, "Count_Person"))
		})
	}
}

// TestEnrichExpandsUnitConsistency 有摘要单位表时单位样本按变量展开
func TestEnrichExpandsUnitConsistency(t *testing.T) {
	dir := t.TempDir()
	summaryPath := filepath.Join(dir, "summary_report.csv")
	summaryContent := "StatVar,MinValue,Units\nCount_Person,0,USD\nCount_Household,0,\n"
	require.NoError(t, os.WriteFile(summaryPath, []byte(summaryContent), 0o644))

	results := []models.ValidationResult{
		failedResult(RuleUnitConsistency, map[string]interface{}{"units": "[USD, ]"}, nil),
	}
	samples := ExtractRuleFailureSamples(results)
	enriched := EnrichRuleFailureSamples(samples, "", summaryPath, results)

	require.Len(t, enriched, 2)
	assert.Equal(t, "Count_Person", enriched[0].StatVar)
	assert.Equal(t, "USD", enriched[0].Value)
	assert.Equal(t, "Count_Household", enriched[1].StatVar)
	assert.Equal(t, "(missing)", enriched[1].Value)
}

// TestEnrichWithoutArtifactsKeepsSamples 没有 CSV 和摘要时样本原样返回
func TestEnrichWithoutArtifactsKeepsSamples(t *testing.T) {
	results := []models.ValidationResult{
		failedResult(RuleUnitConsistency, map[string]interface{}{"units": "USD"}, nil),
	}
	samples := ExtractRuleFailureSamples(results)
	enriched := EnrichRuleFailureSamples(samples, "", "", results)
	assert.Equal(t, samples, enriched)
}
