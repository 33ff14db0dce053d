/*
 * @module service/csvcheck/quality
 * @description 源 CSV 质量体检：重复列、全空列、重复数据行以及数值列的非数值取值巡检，
 *              产出仅供评审参考的顾问级问题清单
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow CSV 读取 -> 按列/按行体检 -> 组装顾问问题列表
 * @rules
 *   - 质量问题一律为顾问级，不参与阻断判定
 *   - 重复行只上报首次重复出现的位置，避免大面积重复时刷屏
 *   - 非数值取值最多抽样 5 行，同时报告总数
 * @dependencies datacheck-service/service/models, datacheck-service/service/utils
 * @refs preflight.go, service/review/summary.go
 */

package csvcheck

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"datacheck-service/service/models"
	"datacheck-service/service/utils"
)

// 质量问题类型
const (
	IssueDuplicateColumn = "duplicate_column"
	IssueEmptyColumn     = "empty_column"
	IssueDuplicateRow    = "duplicate_row"
	IssueNonNumericValue = "non_numeric_value"
)

const nonNumericSampleLimit = 5

// ValueColumnName 统计值所在列名
const ValueColumnName = "Value"

// ValidateCSVQuality 对源 CSV 做质量体检，返回顾问级问题清单。
// 文件缺失或不可解析时返回错误，由调用方决定是否降级
func ValidateCSVQuality(path string) ([]models.AdvisoryIssue, error) {
	header, rows, err := utils.ReadCSVTable(path)
	if err != nil {
		return nil, fmt.Errorf("读取CSV文件失败: %w", err)
	}

	var issues []models.AdvisoryIssue
	issues = append(issues, checkDuplicateColumns(header)...)
	issues = append(issues, checkEmptyColumns(header, rows)...)
	issues = append(issues, checkDuplicateRows(header, rows)...)
	issues = append(issues, checkNonNumericValues(header, rows)...)
	return issues, nil
}

func checkDuplicateColumns(header []string) []models.AdvisoryIssue {
	var issues []models.AdvisoryIssue
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			issues = append(issues, models.AdvisoryIssue{
				Severity: models.SeverityWarning,
				Type:     IssueDuplicateColumn,
				Column:   name,
				Message:  fmt.Sprintf("列名 %q 在表头中出现多次", name),
			})
			continue
		}
		seen[name] = true
	}
	return issues
}

func checkEmptyColumns(header []string, rows []map[string]string) []models.AdvisoryIssue {
	if len(rows) == 0 {
		return nil
	}
	var issues []models.AdvisoryIssue
	for _, name := range header {
		empty := true
		for _, row := range rows {
			if strings.TrimSpace(row[name]) != "" {
				empty = false
				break
			}
		}
		if empty {
			issues = append(issues, models.AdvisoryIssue{
				Severity: models.SeverityInfo,
				Type:     IssueEmptyColumn,
				Column:   name,
				Message:  fmt.Sprintf("列 %q 所有数据行均为空", name),
			})
		}
	}
	return issues
}

// checkDuplicateRows 对完整行做重复检测，仅上报每组重复的首次重复位置。
// 行号从 2 起算（1 为表头行）
func checkDuplicateRows(header []string, rows []map[string]string) []models.AdvisoryIssue {
	var issues []models.AdvisoryIssue
	seen := make(map[string]int, len(rows))
	reported := make(map[string]bool)
	for i, row := range rows {
		parts := make([]string, 0, len(header))
		for _, name := range header {
			parts = append(parts, row[name])
		}
		key := strings.Join(parts, "\x1f")
		if firstLine, ok := seen[key]; ok {
			if !reported[key] {
				issues = append(issues, models.AdvisoryIssue{
					Severity: models.SeverityWarning,
					Type:     IssueDuplicateRow,
					Message:  fmt.Sprintf("第 %d 行与第 %d 行内容完全重复", i+2, firstLine),
				})
				reported[key] = true
			}
			continue
		}
		seen[key] = i + 2
	}
	return issues
}

func checkNonNumericValues(header []string, rows []map[string]string) []models.AdvisoryIssue {
	hasValueColumn := false
	for _, name := range header {
		if name == ValueColumnName {
			hasValueColumn = true
			break
		}
	}
	if !hasValueColumn {
		return nil
	}

	var sampleLines []string
	total := 0
	for i, row := range rows {
		raw := strings.TrimSpace(row[ValueColumnName])
		if raw == "" {
			continue
		}
		if _, ok := utils.ParseCellFloat(raw); ok {
			continue
		}
		total++
		if len(sampleLines) < nonNumericSampleLimit {
			sampleLines = append(sampleLines, fmt.Sprintf("第 %d 行: %q", i+2, raw))
		}
	}
	if total == 0 {
		return nil
	}
	return []models.AdvisoryIssue{{
		Severity: models.SeverityWarning,
		Type:     IssueNonNumericValue,
		Column:   ValueColumnName,
		Message: fmt.Sprintf("列 %q 存在 %d 个非数值取值，示例: %s",
			ValueColumnName, total, strings.Join(sampleLines, "; ")),
	}}
}

// CountDataRows 统计 CSV 的非空数据行数（不含表头行）。
// 文件缺失按 0 行处理，便于调用方做缺省通过
func CountDataRows(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("打开CSV文件失败: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	count := 0
	sawHeader := false
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		if !sawHeader {
			sawHeader = true
			continue
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("扫描CSV文件失败: %w", err)
	}
	return count, nil
}
