/*
 * @module service/review/summary
 * @description 评审汇总服务：从一次运行的产物目录组装人读评审视图，
 *              包含总体结论、状态计数、波动样本、规则失败样本和顾问问题
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 产物目录 -> 结果/报告装载 -> 样本重算 -> 汇总视图组装 -> Markdown 渲染
 * @rules
 *   - 总体结论只看 FAILED：有阻断为 FAIL，否则 PASS（附警告数）
 *   - 顾问问题仅展示，任何情况下不改变总体结论
 *   - 派生样本每次组装时重算，不读任何缓存
 * @dependencies datacheck-service/service/{models,validation,extractor,importtool}
 * @refs service/extractor/fluctuation.go, service/extractor/rule_samples.go
 */

package review

import (
	"fmt"
	"strings"

	"datacheck-service/service/extractor"
	"datacheck-service/service/importtool"
	"datacheck-service/service/models"
	"datacheck-service/service/validation"
)

// 总体结论取值
const (
	OverallPass = "PASS"
	OverallFail = "FAIL"
)

// StatusCounts 按状态的结果计数
type StatusCounts struct {
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	Warning     int `json:"warning"`
	ConfigError int `json:"config_error"`
	DataError   int `json:"data_error"`
	Other       int `json:"other"`
	Total       int `json:"total"`
}

// ReviewSummary 一次运行的完整评审视图
type ReviewSummary struct {
	Overall            string                     `json:"overall"`
	OverallDetail      string                     `json:"overall_detail"`
	Counts             StatusCounts               `json:"counts"`
	Results            []models.ValidationResult  `json:"results"`
	FluctuationSamples []models.FluctuationSample `json:"fluctuation_samples"`
	RuleSamples        []models.RuleFailureSample `json:"rule_samples"`
	AdvisoryIssues     []models.AdvisoryIssue     `json:"advisory_issues"`
	SourceCSV          string                     `json:"source_csv,omitempty"`
}

// BuildSummary 从产物目录组装评审视图。
// 校验输出缺失或不可解析时返回错误，其余产物缺失按空内容降级
func BuildSummary(outputDir string) (*ReviewSummary, error) {
	paths := importtool.ResolveArtifacts(outputDir)

	results, err := validation.LoadResults(paths.ValidationOutput)
	if err != nil {
		return nil, fmt.Errorf("加载校验输出失败: %w", err)
	}

	report, err := importtool.LoadLintReport(paths.LintReport)
	if err != nil {
		// 报告存在但坏掉时评审视图仍能出，只是没有波动样本
		report = nil
	}

	summary := &ReviewSummary{
		Results:            results,
		Counts:             countStatuses(results),
		FluctuationSamples: extractor.ExtractFluctuationSamples(report),
		AdvisoryIssues:     importtool.LoadSchemaReview(paths.SchemaReview),
		SourceCSV:          importtool.FindSourceCSV(report),
	}

	ruleSamples := extractor.ExtractRuleFailureSamples(results)
	summary.RuleSamples = extractor.EnrichRuleFailureSamples(
		ruleSamples, summary.SourceCSV, paths.StatsSummary, results)

	summary.Overall, summary.OverallDetail = overallVerdict(summary.Counts)
	return summary, nil
}

func countStatuses(results []models.ValidationResult) StatusCounts {
	counts := StatusCounts{Total: len(results)}
	for i := range results {
		switch results[i].Status {
		case models.StatusPassed:
			counts.Passed++
		case models.StatusFailed:
			counts.Failed++
		case models.StatusWarning:
			counts.Warning++
		case models.StatusConfigError:
			counts.ConfigError++
		case models.StatusDataError:
			counts.DataError++
		default:
			// 未识别的状态照常计数，避免 Total 与各桶之和对不上
			counts.Other++
		}
	}
	return counts
}

// overallVerdict 阻断判定只认 FAILED；警告数附在通过结论里提示评审者
func overallVerdict(counts StatusCounts) (overall, detail string) {
	if counts.Failed > 0 {
		return OverallFail, fmt.Sprintf("%d 条规则阻断", counts.Failed)
	}
	if counts.Warning > 0 {
		return OverallPass, fmt.Sprintf("PASS (with %d warnings)", counts.Warning)
	}
	return OverallPass, OverallPass
}

// RenderMarkdown 把评审视图渲染为 Markdown 文本，供导出和通知正文使用
func (s *ReviewSummary) RenderMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 数据导入校验评审\n\n")
	fmt.Fprintf(&b, "**总体结论**: %s", s.Overall)
	if s.OverallDetail != "" && s.OverallDetail != s.Overall {
		fmt.Fprintf(&b, " — %s", s.OverallDetail)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "| 状态 | 数量 |\n|---|---|\n")
	fmt.Fprintf(&b, "| PASSED | %d |\n", s.Counts.Passed)
	fmt.Fprintf(&b, "| FAILED | %d |\n", s.Counts.Failed)
	fmt.Fprintf(&b, "| WARNING | %d |\n", s.Counts.Warning)
	fmt.Fprintf(&b, "| CONFIG_ERROR | %d |\n", s.Counts.ConfigError)
	fmt.Fprintf(&b, "| DATA_ERROR | %d |\n", s.Counts.DataError)
	if s.Counts.Other > 0 {
		fmt.Fprintf(&b, "| OTHER | %d |\n", s.Counts.Other)
	}
	b.WriteString("\n")

	if len(s.Results) > 0 {
		b.WriteString("## 规则结果\n\n")
		for i := range s.Results {
			r := &s.Results[i]
			fmt.Fprintf(&b, "- `%s` [%s] %s\n", r.ValidationName, r.Status, r.Message)
		}
		b.WriteString("\n")
	}

	if len(s.RuleSamples) > 0 {
		b.WriteString("## 失败样本\n\n")
		fmt.Fprintf(&b, "| 规则 | 统计变量 | 取值 | 期望 | 来源行 |\n|---|---|---|---|---|\n")
		for i := range s.RuleSamples {
			sample := &s.RuleSamples[i]
			fmt.Fprintf(&b, "| %s | %s | %v | %s | %s |\n",
				sample.Rule, sample.StatVar, sample.Value, sample.Expected, sample.SourceRow)
		}
		b.WriteString("\n")
	}

	if len(s.FluctuationSamples) > 0 {
		b.WriteString("## 波动异常样本\n\n")
		for i := range s.FluctuationSamples {
			sample := &s.FluctuationSamples[i]
			fmt.Fprintf(&b, "- `%s` @ %s (%s)", sample.StatVar, sample.Location, sample.CounterKey)
			if signals := sample.TechnicalSignals; signals != nil && signals.PercentChange != nil {
				fmt.Fprintf(&b, " 变化 %.2f%%", *signals.PercentChange)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(s.AdvisoryIssues) > 0 {
		b.WriteString("## 顾问建议（不影响结论）\n\n")
		for i := range s.AdvisoryIssues {
			issue := &s.AdvisoryIssues[i]
			fmt.Fprintf(&b, "- [%s] %s: %s\n", issue.Severity, issue.Type, issue.Message)
		}
	}
	return b.String()
}

// HasBlockers 评审视图维度的阻断判定
func (s *ReviewSummary) HasBlockers() bool {
	return s.Counts.Failed > 0
}
