/*
 * @module service/csvcheck/quality_test
 * @description CSV 质量体检测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow CSV 写盘 -> 体检 -> 问题清单验证
 * @rules 覆盖重复列、空列、重复行首报和非数值抽样
 * @dependencies testing, github.com/stretchr/testify
 * @refs quality.go
 */

package csvcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacheck-service/service/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func issuesOfType(issues []models.AdvisoryIssue, issueType string) []models.AdvisoryIssue {
	var out []models.AdvisoryIssue
	for _, issue := range issues {
		if issue.Type == issueType {
			out = append(out, issue)
		}
	}
	return out
}

// TestQualityCleanCSV 干净的 CSV 零问题
func TestQualityCleanCSV(t *testing.T) {
	path := writeCSV(t, "StatVar,Value\nCount_Person,100\nCount_Household,50\n")
	issues, err := ValidateCSVQuality(path)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// TestQualityDuplicateColumns 重复列名每个重复名报告一次
func TestQualityDuplicateColumns(t *testing.T) {
	path := writeCSV(t, "StatVar,Value,Value\nCount_Person,1,2\n")
	issues, err := ValidateCSVQuality(path)
	require.NoError(t, err)

	dups := issuesOfType(issues, IssueDuplicateColumn)
	require.Len(t, dups, 1)
	assert.Equal(t, "Value", dups[0].Column)
}

// TestQualityEmptyColumn 全空列报告为信息级问题
func TestQualityEmptyColumn(t *testing.T) {
	path := writeCSV(t, "StatVar,Value,Unit\nCount_Person,1,\nCount_Household,2,  \n")
	issues, err := ValidateCSVQuality(path)
	require.NoError(t, err)

	empty := issuesOfType(issues, IssueEmptyColumn)
	require.Len(t, empty, 1)
	assert.Equal(t, "Unit", empty[0].Column)
	assert.Equal(t, models.SeverityInfo, empty[0].Severity)
}

// TestQualityDuplicateRows 重复行只报首次重复的位置
func TestQualityDuplicateRows(t *testing.T) {
	path := writeCSV(t, "StatVar,Value\nA,1\nA,1\nA,1\nB,2\n")
	issues, err := ValidateCSVQuality(path)
	require.NoError(t, err)

	dups := issuesOfType(issues, IssueDuplicateRow)
	require.Len(t, dups, 1)
	assert.Contains(t, dups[0].Message, "第 3 行与第 2 行")
}

// TestQualityNonNumericValues 非数值取值汇总计数并最多抽样 5 行
func TestQualityNonNumericValues(t *testing.T) {
	var b strings.Builder
	b.WriteString("StatVar,Value\n")
	for i := 0; i < 7; i++ {
		b.WriteString("Count_Person,abc\n")
	}
	b.WriteString("Count_Household,42\n")
	path := writeCSV(t, b.String())

	issues, err := ValidateCSVQuality(path)
	require.NoError(t, err)
	nonNumeric := issuesOfType(issues, IssueNonNumericValue)
	require.Len(t, nonNumeric, 1)
	assert.Contains(t, nonNumeric[0].Message, "7 个非数值取值")
	// 最多 5 条示例
	assert.Equal(t, 5, strings.Count(nonNumeric[0].Message, "第 "))
}

// TestQualityMissingFile 文件缺失返回错误
func TestQualityMissingFile(t *testing.T) {
	_, err := ValidateCSVQuality(filepath.Join(t.TempDir(), "不存在.csv"))
	assert.Error(t, err)
}

// TestCountDataRows 非空数据行数统计，缺失文件计 0
func TestCountDataRows(t *testing.T) {
	t.Run("含空行", func(t *testing.T) {
		path := writeCSV(t, "StatVar,Value\nA,1\n\nB,2\n\n")
		n, err := CountDataRows(path)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
	t.Run("仅表头", func(t *testing.T) {
		path := writeCSV(t, "StatVar,Value\n")
		n, err := CountDataRows(path)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
	t.Run("文件缺失", func(t *testing.T) {
		n, err := CountDataRows(filepath.Join(t.TempDir(), "不存在.csv"))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}
