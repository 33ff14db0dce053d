/*
 * @module service/importtool/runner
 * @description 外部导入/lint 工具运行器：在 DATA_REPO 工作树内以子进程方式调用
 *              上游校验框架，临时配置/临时输出落盘后宽容读回结果
 * @architecture 分层架构 - 外部集成层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 临时过滤配置写盘 -> 子进程阻塞执行 -> 输出读回 -> 临时文件清理
 * @rules
 *   - 工具退出码非零不视为致命：仍尝试读回已写出的结果，部分输出由编排器判定
 *   - 输出文件缺失、为空或非 JSON 数组一律按空结果处理
 *   - differ 输出参数显式区分"未提供"与"提供空值"
 * @dependencies datacheck-service/service/models, datacheck-service/service/validation
 * @refs artifacts.go, service/validation/orchestrator.go
 */

package importtool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"datacheck-service/service/models"
	"datacheck-service/service/validation"
)

// 运行环境变量
const (
	EnvDataRepo = "DATA_REPO"
	EnvPython   = "PYTHON"
)

const defaultSchemaVersion = "1.0"

// ToolRunner 以子进程方式调用上游导入校验框架。
// 实现 validation.ExternalRunner
type ToolRunner struct {
	DataRepo string // 上游框架工作树，子进程工作目录
	Python   string // 解释器可执行文件
}

// NewToolRunnerFromEnv 从环境变量构建运行器。
// DATA_REPO 缺失或不是目录时返回错误（调用方映射为用法错误退出码）
func NewToolRunnerFromEnv() (*ToolRunner, error) {
	dataRepo := os.Getenv(EnvDataRepo)
	if dataRepo == "" {
		return nil, fmt.Errorf("环境变量 %s 未设置，无法定位外部工具工作树", EnvDataRepo)
	}
	info, err := os.Stat(dataRepo)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("环境变量 %s 未指向有效目录: %s", EnvDataRepo, dataRepo)
	}
	python := os.Getenv(EnvPython)
	if python == "" {
		python = "python3"
	}
	return &ToolRunner{DataRepo: dataRepo, Python: python}, nil
}

// Run 执行一次外部工具调用并返回其产出的结果列表。
// 阻塞等待子进程结束；读回失败按空结果返回而非报错
func (r *ToolRunner) Run(
	ctx context.Context,
	config *models.RuleConfig,
	inputs validation.ExternalInputs,
) ([]models.ValidationResult, error) {
	configPath, err := writeTempConfig(config)
	if err != nil {
		return nil, err
	}
	defer os.Remove(configPath)

	outputFile, err := os.CreateTemp("", "tool_output_*.json")
	if err != nil {
		return nil, fmt.Errorf("创建临时输出文件失败: %w", err)
	}
	outputPath := outputFile.Name()
	outputFile.Close()
	defer os.Remove(outputPath)

	args := []string{
		"-m", "tools.import_validation.runner",
		"--validation_config", configPath,
		"--validation_output", outputPath,
	}
	if isRegularFile(inputs.StatsSummaryPath) {
		args = append(args, "--stats_summary", inputs.StatsSummaryPath)
	}
	if isRegularFile(inputs.LintReportPath) {
		args = append(args, "--lint_report", inputs.LintReportPath)
	}
	if inputs.DifferOutput != nil {
		args = append(args, "--differ_output", *inputs.DifferOutput)
	}

	cmd := exec.CommandContext(ctx, r.Python, args...)
	cmd.Dir = r.DataRepo
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// 退出码非零仍可能有部分结果落盘，交给读回和部分输出判定兜底
		slog.Error("外部工具退出异常",
			"error", err,
			"stderr", strings.TrimSpace(stderr.String()))
	}

	return readBackResults(outputPath), nil
}

// writeTempConfig 把过滤后的规则配置写入临时文件，schema_version 缺省为 1.0
func writeTempConfig(config *models.RuleConfig) (string, error) {
	schemaVersion := config.SchemaVersion
	if schemaVersion == "" {
		schemaVersion = defaultSchemaVersion
	}
	payload, err := json.Marshal(map[string]interface{}{
		"schema_version": schemaVersion,
		"rules":          config.Rules,
	})
	if err != nil {
		return "", fmt.Errorf("序列化工具配置失败: %w", err)
	}
	file, err := os.CreateTemp("", "tool_config_*.json")
	if err != nil {
		return "", fmt.Errorf("创建临时配置文件失败: %w", err)
	}
	if _, err := file.Write(payload); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("写入临时配置文件失败: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("关闭临时配置文件失败: %w", err)
	}
	return file.Name(), nil
}

// readBackResults 宽容读回工具输出：缺失、空文件、非法 JSON 都按空结果处理
func readBackResults(path string) []models.ValidationResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	var results []models.ValidationResult
	if err := json.Unmarshal(raw, &results); err != nil {
		slog.Warn("外部工具输出不是合法的结果数组，按空结果处理", "path", path, "error", err)
		return nil
	}
	return results
}

func isRegularFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
