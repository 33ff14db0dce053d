/*
 * @module service/csvcheck/counters_test
 * @description 计数器一致性检查测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 构造摘要与报告 -> 一致性检查 -> 结果验证
 * @rules 覆盖一致、不一致、缺列失败、缺计数器跳过和前置检查
 * @dependencies testing, github.com/stretchr/testify
 * @refs counters.go, preflight.go
 */

package csvcheck

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacheck-service/service/models"
)

func reportWithInfoCounters(counters map[string]json.Number) *models.LintReport {
	return &models.LintReport{
		LevelSummary: map[string]models.LevelCounters{
			models.LevelInfo: {Counters: counters},
		},
	}
}

func writeStatsSummary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "summary_report.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestCheckCountersMatch 摘要观测数求和与报告节点成功数比较
func TestCheckCountersMatch(t *testing.T) {
	t.Run("一致", func(t *testing.T) {
		summary := writeStatsSummary(t, "StatVar,NumObservations\nCount_Person,70\nCount_Household,50\n")
		result := CheckCountersMatch(summary, reportWithInfoCounters(map[string]json.Number{
			CounterNumNodeSuccess: "120",
		}))
		assert.True(t, result.Matched)
		assert.False(t, result.Skipped)
		assert.Equal(t, int64(120), result.ObservationsSum)
		assert.Equal(t, "Match: 120 observations", result.Message)
	})
	t.Run("不一致", func(t *testing.T) {
		summary := writeStatsSummary(t, "StatVar,NumObservations\nCount_Person,120\n")
		result := CheckCountersMatch(summary, reportWithInfoCounters(map[string]json.Number{
			CounterNumNodeSuccess: "100",
		}))
		assert.False(t, result.Matched)
		assert.Equal(t, int64(120), result.ObservationsSum)
		assert.Equal(t, int64(100), result.NodeSuccesses)
		assert.Contains(t, result.Message, "NumObservations sum (120) != NumNodeSuccesses (100)")
	})
	t.Run("摘要缺NumObservations列是失败", func(t *testing.T) {
		summary := writeStatsSummary(t, "StatVar,MinValue\nCount_Person,5\n")
		result := CheckCountersMatch(summary, reportWithInfoCounters(map[string]json.Number{
			CounterNumNodeSuccess: "100",
		}))
		assert.False(t, result.Matched)
		assert.False(t, result.Skipped)
		assert.Equal(t, "Stats missing NumObservations column", result.Message)
	})
	t.Run("摘要不可读是失败", func(t *testing.T) {
		result := CheckCountersMatch(filepath.Join(t.TempDir(), "missing.csv"),
			reportWithInfoCounters(map[string]json.Number{CounterNumNodeSuccess: "100"}))
		assert.False(t, result.Matched)
		assert.Contains(t, result.Message, "Failed to read stats")
	})
	t.Run("报告缺NumNodeSuccesses跳过并视为一致", func(t *testing.T) {
		summary := writeStatsSummary(t, "StatVar,NumObservations\nCount_Person,120\n")
		result := CheckCountersMatch(summary, reportWithInfoCounters(map[string]json.Number{
			"NumRowSuccesses": "120",
		}))
		assert.True(t, result.Matched)
		assert.True(t, result.Skipped)
	})
	t.Run("报告缺失是失败", func(t *testing.T) {
		summary := writeStatsSummary(t, "StatVar,NumObservations\nCount_Person,120\n")
		result := CheckCountersMatch(summary, nil)
		assert.False(t, result.Matched)
		assert.Contains(t, result.Message, "Failed to read report")
	})
	t.Run("计数器不可解析是失败", func(t *testing.T) {
		summary := writeStatsSummary(t, "StatVar,NumObservations\nCount_Person,120\n")
		result := CheckCountersMatch(summary, reportWithInfoCounters(map[string]json.Number{
			CounterNumNodeSuccess: "abc",
		}))
		assert.False(t, result.Matched)
		assert.Contains(t, result.Message, "Invalid NumNodeSuccesses")
	})
	t.Run("不可解析的单元格不计入求和", func(t *testing.T) {
		summary := writeStatsSummary(t, "StatVar,NumObservations\nCount_Person,100\nCount_Household,n/a\n")
		result := CheckCountersMatch(summary, reportWithInfoCounters(map[string]json.Number{
			CounterNumNodeSuccess: "100",
		}))
		assert.True(t, result.Matched)
		assert.Equal(t, int64(100), result.ObservationsSum)
	})
}

// TestPreflight 导入输入文件前置检查
func TestPreflight(t *testing.T) {
	dir := t.TempDir()
	tmcf := filepath.Join(dir, "import.tmcf")
	csvFile := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(tmcf, []byte("Node: E\n"), 0o644))
	require.NoError(t, os.WriteFile(csvFile, []byte("a,b\n"), 0o644))

	t.Run("齐备无问题", func(t *testing.T) {
		problems := Preflight(PreflightInputs{TMCFPath: tmcf, CSVPath: csvFile})
		assert.Empty(t, problems)
	})
	t.Run("必需文件缺路径", func(t *testing.T) {
		problems := Preflight(PreflightInputs{TMCFPath: tmcf})
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], "CSV")
	})
	t.Run("扩展名错配与文件缺失同时报告", func(t *testing.T) {
		problems := Preflight(PreflightInputs{
			TMCFPath: tmcf,
			CSVPath:  csvFile,
			MCFPath:  filepath.Join(dir, "schema.txt"),
		})
		require.Len(t, problems, 2)
	})
	t.Run("可选MCF为空跳过", func(t *testing.T) {
		problems := Preflight(PreflightInputs{TMCFPath: tmcf, CSVPath: csvFile, MCFPath: ""})
		assert.Empty(t, problems)
	})
}
