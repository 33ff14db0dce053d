/*
 * @module service/validation/orchestrator
 * @description 校验编排器：按求值器家族拆分规则集，分别交外部导入工具和本地求值器执行，
 *              合并结果并一次性持久化产物
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 配置加载 -> 规则分桶 -> 外部工具执行 -> 本地求值 -> 合并 -> 原子持久化
 * @rules
 *   - 外部工具结果数少于提交规则数视为部分失败信号，即使已运行规则全部通过也返回非零
 *   - 合并顺序仅保证外部结果在前、本地结果在后，不保证配置声明顺序
 *   - 单条规则的意外失败不得吞掉其他规则的结果
 * @dependencies datacheck-service/service/models, datacheck-service/service/importtool
 * @refs registry.go, persist.go, service/importtool/runner.go
 */

package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"datacheck-service/service/models"
)

// 编排器退出状态
const (
	ExitOK     = 0 // 外部工具完整运行（当需要时）且无 FAILED 结果
	ExitFailed = 1 // 存在 FAILED 结果或外部工具部分输出
	ExitUsage  = 2 // 配置缺失或外部工具环境未配置
)

// ExternalInputs 传递给外部导入工具的输入句柄
type ExternalInputs struct {
	StatsSummaryPath string
	LintReportPath   string
	// DifferOutput 为 nil 表示未提供该参数；空串表示显式提供空值
	DifferOutput *string
}

// ExternalRunner 外部导入/lint 工具的抽象。实现为阻塞调用，
// 必须等待工具完成后才返回（核心契约内不可取消；取消属于进程管理层）
type ExternalRunner interface {
	Run(ctx context.Context, config *models.RuleConfig, inputs ExternalInputs) ([]models.ValidationResult, error)
}

// LintReportLoader lint 报告加载函数，文件缺失时返回 (nil, nil)
type LintReportLoader func(path string) (*models.LintReport, error)

// RunInputs 一次编排运行的全部环境输入
type RunInputs struct {
	OutputPath       string
	StatsSummaryPath string
	LintReportPath   string
	SourceCSVPath    string
	DifferOutput     *string
}

// RunOutcome 编排运行结果
type RunOutcome struct {
	Results       []models.ValidationResult
	ExitStatus    int
	PartialOutput bool
	Duration      time.Duration
}

// Orchestrator 校验编排器
type Orchestrator struct {
	registry   *Registry
	external   ExternalRunner
	loadReport LintReportLoader
}

// NewOrchestrator 创建编排器。external 可为 nil（此时存在外部规则即报错）
func NewOrchestrator(registry *Registry, external ExternalRunner, loadReport LintReportLoader) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		external:   external,
		loadReport: loadReport,
	}
}

// splitRules 将启用规则拆分为外部桶和本地桶。
// 被本系统替代的外部规则（LINT_ERROR_COUNT）既不进外部桶也不进本地桶
func (o *Orchestrator) splitRules(config *models.RuleConfig) (external, local []models.RuleDefinition) {
	for _, rule := range config.Rules {
		if !rule.IsEnabled() {
			continue
		}
		if o.registry.Knows(rule.Validator) {
			local = append(local, rule)
			continue
		}
		if rule.Validator == ValidatorLegacyLintCount {
			// 旧版规则被本地结构性 lint 计数替代，不再提交外部工具
			continue
		}
		external = append(external, rule)
	}
	return external, local
}

// Run 执行一次完整的校验编排并持久化产物（恰好一次，原子替换）。
// 返回合并结果与退出状态；仅真正意外的 I/O 错误通过 error 返回
func (o *Orchestrator) Run(ctx context.Context, config *models.RuleConfig, inputs RunInputs) (*RunOutcome, error) {
	startTime := time.Now()
	externalRules, localRules := o.splitRules(config)

	var merged []models.ValidationResult
	partial := false

	if len(externalRules) > 0 {
		if o.external == nil {
			return nil, fmt.Errorf("存在外部工具规则但未配置外部运行器")
		}
		externalConfig := &models.RuleConfig{
			SchemaVersion: config.SchemaVersion,
			Rules:         externalRules,
		}
		externalResults, err := o.external.Run(ctx, externalConfig, ExternalInputs{
			StatsSummaryPath: inputs.StatsSummaryPath,
			LintReportPath:   inputs.LintReportPath,
			DifferOutput:     inputs.DifferOutput,
		})
		if err != nil {
			// 外部工具彻底失败按零结果处理，由部分输出信号兜底
			slog.Error("外部导入工具执行失败", "error", err)
			externalResults = nil
		}
		if len(externalResults) < len(externalRules) {
			slog.Warn("外部工具产出结果数少于提交规则数，部分检查可能未运行",
				"submitted", len(externalRules),
				"returned", len(externalResults))
			partial = true
		}
		merged = append(merged, externalResults...)
	}

	if len(localRules) > 0 {
		var lintReport *models.LintReport
		if o.loadReport != nil && inputs.LintReportPath != "" {
			report, err := o.loadReport(inputs.LintReportPath)
			if err != nil {
				slog.Warn("加载lint报告失败，本地规则按空报告求值",
					"path", inputs.LintReportPath,
					"error", err)
			} else {
				lintReport = report
			}
		}
		evalCtx := &EvaluatorContext{
			StatsSummaryPath: inputs.StatsSummaryPath,
			LintReport:       lintReport,
			SourceCSVPath:    inputs.SourceCSVPath,
		}
		for i := range localRules {
			result, ok := o.registry.Evaluate(evalCtx, &localRules[i])
			if ok {
				merged = append(merged, result)
			}
		}
	}

	if err := WriteResultsAtomic(inputs.OutputPath, merged); err != nil {
		return nil, err
	}

	anyFailed := false
	for i := range merged {
		if merged[i].IsBlocker() {
			anyFailed = true
			break
		}
	}

	exitStatus := ExitOK
	if partial || anyFailed {
		exitStatus = ExitFailed
	}

	return &RunOutcome{
		Results:       merged,
		ExitStatus:    exitStatus,
		PartialOutput: partial,
		Duration:      time.Since(startTime),
	}, nil
}
