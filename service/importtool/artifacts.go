/*
 * @module service/importtool/artifacts
 * @description 外部工具产物装载：lint 报告、校验输出等文件的定位与解析。
 *              上游数据缺失不构成校验失败，统一按"无可检查内容"处理
 * @architecture 分层架构 - 外部集成层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 产物目录 -> 常规文件名定位 -> JSON 解析
 * @rules
 *   - lint 报告缺失返回 (nil, nil)，调用方按空报告求值
 *   - 源 CSV 从报告 commandArgs.inputFiles 回溯，只认磁盘上真实存在的文件
 * @dependencies datacheck-service/service/models
 * @refs runner.go, service/review/summary.go
 */

package importtool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datacheck-service/service/models"
)

// 产物目录下的约定文件名
const (
	LintReportFileName       = "report.json"
	ValidationOutputFileName = "validation_output.json"
	StatsSummaryFileName     = "summary_report.csv"
	SchemaReviewFileName     = "schema_review.json"
)

// LoadLintReport 加载外部工具的 lint 报告。
// 文件不存在返回 (nil, nil)；存在但解析失败才返回错误
func LoadLintReport(path string) (*models.LintReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取lint报告失败: %w", err)
	}
	var report models.LintReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("解析lint报告失败: %w", err)
	}
	return &report, nil
}

// FindSourceCSV 从 lint 报告的命令参数回溯原始源 CSV 路径。
// 找不到或文件已不在磁盘上时返回空串
func FindSourceCSV(report *models.LintReport) string {
	if report == nil {
		return ""
	}
	for _, input := range report.CommandArgs.InputFiles {
		if !strings.HasSuffix(strings.ToLower(input), ".csv") {
			continue
		}
		if info, err := os.Stat(input); err == nil && info.Mode().IsRegular() {
			return input
		}
	}
	return ""
}

// LoadSchemaReview 加载可选的 AI 评审产物，形状为开放的顾问问题列表。
// 缺失或解析失败都返回空列表，顾问层永远不阻断
func LoadSchemaReview(path string) []models.AdvisoryIssue {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc struct {
		Issues []models.AdvisoryIssue `json:"issues"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil && len(doc.Issues) > 0 {
		return doc.Issues
	}
	var issues []models.AdvisoryIssue
	if err := json.Unmarshal(raw, &issues); err == nil {
		return issues
	}
	return nil
}

// ArtifactPaths 产物目录内各约定文件的绝对路径
type ArtifactPaths struct {
	LintReport       string
	ValidationOutput string
	StatsSummary     string
	SchemaReview     string
}

// ResolveArtifacts 按约定文件名展开产物目录
func ResolveArtifacts(outputDir string) ArtifactPaths {
	return ArtifactPaths{
		LintReport:       filepath.Join(outputDir, LintReportFileName),
		ValidationOutput: filepath.Join(outputDir, ValidationOutputFileName),
		StatsSummary:     filepath.Join(outputDir, StatsSummaryFileName),
		SchemaReview:     filepath.Join(outputDir, SchemaReviewFileName),
	}
}
