/*
 * @module service/validation/orchestrator_test
 * @description 校验编排器测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 构造假外部运行器 -> 编排执行 -> 产物与退出状态验证
 * @rules 覆盖规则分桶、部分输出判定、结果合并顺序和退出状态
 * @dependencies testing, github.com/stretchr/testify
 * @refs orchestrator.go
 */

package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacheck-service/service/models"
)

// fakeExternalRunner 记录提交的规则并返回预置结果
type fakeExternalRunner struct {
	results        []models.ValidationResult
	err            error
	submittedRules []models.RuleDefinition
}

func (f *fakeExternalRunner) Run(
	_ context.Context,
	config *models.RuleConfig,
	_ ExternalInputs,
) ([]models.ValidationResult, error) {
	f.submittedRules = config.Rules
	return f.results, f.err
}

func boolPtr(b bool) *bool { return &b }

func orchestratorInputs(t *testing.T) RunInputs {
	t.Helper()
	return RunInputs{OutputPath: filepath.Join(t.TempDir(), "validation_output.json")}
}

// TestSplitRules 规则分桶：本地求值器优先，旧版规则排除，其余交外部工具
func TestSplitRules(t *testing.T) {
	o := NewOrchestrator(NewRegistry(nil), nil, nil)
	config := &models.RuleConfig{Rules: []models.RuleDefinition{
		{RuleID: "r1", Validator: ValidatorMinValue},
		{RuleID: "r2", Validator: ValidatorStructuralLint},
		{RuleID: "r3", Validator: ValidatorLegacyLintCount},
		{RuleID: "r4", Validator: "MAX_DATE_LATEST"},
		{RuleID: "r5", Validator: "DELETED_COUNT", Enabled: boolPtr(false)},
	}}

	external, local := o.splitRules(config)
	require.Len(t, external, 1)
	assert.Equal(t, "r4", external[0].RuleID)
	require.Len(t, local, 2)
	assert.Equal(t, "r1", local[0].RuleID)
	assert.Equal(t, "r2", local[1].RuleID)
}

// TestOrchestratorMergeOrder 外部结果在前、本地结果在后，产物一次写出
func TestOrchestratorMergeOrder(t *testing.T) {
	external := &fakeExternalRunner{results: []models.ValidationResult{
		{ValidationName: "check_max_date", Status: models.StatusPassed},
	}}
	o := NewOrchestrator(NewRegistry(nil), external, nil)
	config := &models.RuleConfig{Rules: []models.RuleDefinition{
		{RuleID: "check_structural_lint_error_count", Validator: ValidatorStructuralLint,
			Params: map[string]interface{}{"threshold": 0}},
		{RuleID: "check_max_date", Validator: "MAX_DATE_LATEST"},
	}}
	inputs := orchestratorInputs(t)

	outcome, err := o.Run(context.Background(), config, inputs)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 2)
	assert.Equal(t, "check_max_date", outcome.Results[0].ValidationName)
	assert.Equal(t, "check_structural_lint_error_count", outcome.Results[1].ValidationName)
	assert.Equal(t, ExitOK, outcome.ExitStatus)

	// 产物文件已落盘且可回读
	persisted, err := LoadResults(inputs.OutputPath)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}

// TestOrchestratorPartialOutput 外部结果数少于规则数时即使全部通过也非零退出
func TestOrchestratorPartialOutput(t *testing.T) {
	external := &fakeExternalRunner{results: []models.ValidationResult{
		{ValidationName: "check_a", Status: models.StatusPassed},
	}}
	o := NewOrchestrator(NewRegistry(nil), external, nil)
	config := &models.RuleConfig{Rules: []models.RuleDefinition{
		{RuleID: "check_a", Validator: "MAX_DATE_LATEST"},
		{RuleID: "check_b", Validator: "DELETED_COUNT"},
	}}

	outcome, err := o.Run(context.Background(), config, orchestratorInputs(t))
	require.NoError(t, err)
	assert.True(t, outcome.PartialOutput)
	assert.Equal(t, ExitFailed, outcome.ExitStatus)
	assert.Len(t, external.submittedRules, 2)
}

// TestOrchestratorFailedBlocks 任一 FAILED 结果导致非零退出
func TestOrchestratorFailedBlocks(t *testing.T) {
	external := &fakeExternalRunner{results: []models.ValidationResult{
		{ValidationName: "check_a", Status: models.StatusPassed},
		{ValidationName: "check_b", Status: models.StatusFailed},
	}}
	o := NewOrchestrator(NewRegistry(nil), external, nil)
	config := &models.RuleConfig{Rules: []models.RuleDefinition{
		{RuleID: "check_a", Validator: "MAX_DATE_LATEST"},
		{RuleID: "check_b", Validator: "DELETED_COUNT"},
	}}

	outcome, err := o.Run(context.Background(), config, orchestratorInputs(t))
	require.NoError(t, err)
	assert.False(t, outcome.PartialOutput)
	assert.Equal(t, ExitFailed, outcome.ExitStatus)
}

// TestOrchestratorWarningDoesNotBlock 仅 WARNING/CONFIG_ERROR/DATA_ERROR 不阻断
func TestOrchestratorWarningDoesNotBlock(t *testing.T) {
	external := &fakeExternalRunner{results: []models.ValidationResult{
		{ValidationName: "check_a", Status: models.StatusWarning},
		{ValidationName: "check_b", Status: models.StatusConfigError},
		{ValidationName: "check_c", Status: models.StatusDataError},
	}}
	o := NewOrchestrator(NewRegistry(nil), external, nil)
	config := &models.RuleConfig{Rules: []models.RuleDefinition{
		{RuleID: "check_a", Validator: "MAX_DATE_LATEST"},
		{RuleID: "check_b", Validator: "DELETED_COUNT"},
		{RuleID: "check_c", Validator: "MODIFIED_COUNT"},
	}}

	outcome, err := o.Run(context.Background(), config, orchestratorInputs(t))
	require.NoError(t, err)
	assert.Equal(t, ExitOK, outcome.ExitStatus)
}

// TestOrchestratorExternalFailureKeepsLocalResults 外部工具崩溃不吞掉本地结果
func TestOrchestratorExternalFailureKeepsLocalResults(t *testing.T) {
	external := &fakeExternalRunner{err: assert.AnError}
	o := NewOrchestrator(NewRegistry(nil), external, nil)
	config := &models.RuleConfig{Rules: []models.RuleDefinition{
		{RuleID: "check_ext", Validator: "MAX_DATE_LATEST"},
		{RuleID: "check_structural_lint_error_count", Validator: ValidatorStructuralLint,
			Params: map[string]interface{}{"threshold": 0}},
	}}

	outcome, err := o.Run(context.Background(), config, orchestratorInputs(t))
	require.NoError(t, err)
	assert.True(t, outcome.PartialOutput)
	assert.Equal(t, ExitFailed, outcome.ExitStatus)
	// 本地规则结果仍在产物中
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, "check_structural_lint_error_count", outcome.Results[0].ValidationName)
}

// TestOrchestratorNoExternalRunner 存在外部规则但未配置运行器时报错
func TestOrchestratorNoExternalRunner(t *testing.T) {
	o := NewOrchestrator(NewRegistry(nil), nil, nil)
	config := &models.RuleConfig{Rules: []models.RuleDefinition{
		{RuleID: "check_a", Validator: "MAX_DATE_LATEST"},
	}}

	_, err := o.Run(context.Background(), config, orchestratorInputs(t))
	assert.Error(t, err)
}

// TestOrchestratorEmptyConfig 空规则集也写出空产物并正常退出
func TestOrchestratorEmptyConfig(t *testing.T) {
	o := NewOrchestrator(NewRegistry(nil), nil, nil)
	inputs := orchestratorInputs(t)

	outcome, err := o.Run(context.Background(), &models.RuleConfig{}, inputs)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, outcome.ExitStatus)

	data, err := os.ReadFile(inputs.OutputPath)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
