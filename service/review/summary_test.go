/*
 * @module service/review/summary_test
 * @description 评审汇总服务测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 产物目录搭建 -> 汇总组装 -> 视图验证
 * @rules 覆盖总体结论、计数、顾问问题不影响结论和 Markdown 渲染
 * @dependencies testing, github.com/stretchr/testify
 * @refs summary.go
 */

package review

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// TestBuildSummaryPassWithWarnings 无阻断有警告时结论为 PASS 附警告数
func TestBuildSummaryPassWithWarnings(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "validation_output.json", `[
		{"validation_name": "check_a", "status": "PASSED", "message": ""},
		{"validation_name": "check_b", "status": "WARNING", "message": "w"},
		{"validation_name": "check_c", "status": "WARNING", "message": "w"}
	]`)

	summary, err := BuildSummary(dir)
	require.NoError(t, err)
	assert.Equal(t, OverallPass, summary.Overall)
	assert.Equal(t, "PASS (with 2 warnings)", summary.OverallDetail)
	assert.Equal(t, 1, summary.Counts.Passed)
	assert.Equal(t, 2, summary.Counts.Warning)
	assert.False(t, summary.HasBlockers())
}

// TestBuildSummaryFailOnBlockers 存在 FAILED 时结论为 FAIL
func TestBuildSummaryFailOnBlockers(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "validation_output.json", `[
		{"validation_name": "check_a", "status": "FAILED", "message": "boom"}
	]`)

	summary, err := BuildSummary(dir)
	require.NoError(t, err)
	assert.Equal(t, OverallFail, summary.Overall)
	assert.True(t, summary.HasBlockers())
}

// TestBuildSummaryUnknownStatusCounted 未识别状态计入 other 桶，不阻断
func TestBuildSummaryUnknownStatusCounted(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "validation_output.json", `[
		{"validation_name": "check_a", "status": "PASSED", "message": ""},
		{"validation_name": "check_b", "status": "SKIPPED", "message": "未来版本的状态"}
	]`)

	summary, err := BuildSummary(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Counts.Passed)
	assert.Equal(t, 1, summary.Counts.Other)
	assert.Equal(t, 2, summary.Counts.Total)
	assert.Equal(t, OverallPass, summary.Overall)
	assert.Contains(t, summary.RenderMarkdown(), "| OTHER | 1 |")
}

// TestBuildSummaryAdvisoryNeverBlocks 顾问问题只展示，不改变结论
func TestBuildSummaryAdvisoryNeverBlocks(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "validation_output.json", `[
		{"validation_name": "check_a", "status": "PASSED", "message": ""}
	]`)
	writeArtifact(t, dir, "schema_review.json", `{"issues": [
		{"severity": "error", "type": "naming", "message": "schema 命名问题"}
	]}`)

	summary, err := BuildSummary(dir)
	require.NoError(t, err)
	assert.Equal(t, OverallPass, summary.Overall)
	require.Len(t, summary.AdvisoryIssues, 1)
}

// TestBuildSummaryWithLintReport 报告存在时重算波动样本和失败样本
func TestBuildSummaryWithLintReport(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "validation_output.json", `[
		{"validation_name": "check_min_value", "status": "FAILED", "message": "m",
		 "details": {"failed_rows": [{"stat_var": "Count_Person", "actual_min_value": -5}]},
		 "validation_params": {"minimum": 0}}
	]`)
	writeArtifact(t, dir, "report.json", `{
		"statsCheckSummary": [{
			"placeDcid": "country/CHN",
			"statVarDcid": "Count_Person",
			"validationCounters": [{
				"counterKey": "StatsCheck_MaxPercentFluctuationGreaterThan500",
				"percentDifference": 600,
				"problemPoints": [
					{"date": "2020", "values": [{"value": 10}]},
					{"date": "2021", "values": [{"value": 70}]}
				]
			}]
		}]
	}`)

	summary, err := BuildSummary(dir)
	require.NoError(t, err)
	require.Len(t, summary.FluctuationSamples, 1)
	assert.Equal(t, "Count_Person", summary.FluctuationSamples[0].StatVar)
	require.Len(t, summary.RuleSamples, 1)
	assert.Equal(t, ">= 0", summary.RuleSamples[0].Expected)
}

// TestBuildSummaryMissingOutput 校验输出缺失是错误
func TestBuildSummaryMissingOutput(t *testing.T) {
	_, err := BuildSummary(t.TempDir())
	assert.Error(t, err)
}

// TestRenderMarkdown Markdown 渲染包含结论和样本段落
func TestRenderMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "validation_output.json", `[
		{"validation_name": "check_a", "status": "FAILED", "message": "boom"}
	]`)
	summary, err := BuildSummary(dir)
	require.NoError(t, err)

	md := summary.RenderMarkdown()
	assert.Contains(t, md, "**总体结论**: FAIL")
	assert.Contains(t, md, "| FAILED | 1 |")
	assert.Contains(t, md, "`check_a`")
}
