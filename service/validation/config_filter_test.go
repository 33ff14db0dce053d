/*
 * @module service/validation/config_filter_test
 * @description 规则配置过滤测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 测试用例 -> 过滤调用 -> 子集验证
 * @rules 覆盖包含/排除互斥、未知ID报错和空结果报错
 * @dependencies testing, github.com/stretchr/testify
 * @refs config_filter.go
 */

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacheck-service/service/models"
)

func filterTestConfig() *models.RuleConfig {
	return &models.RuleConfig{
		SchemaVersion: "1.0",
		Rules: []models.RuleDefinition{
			{RuleID: "check_min_value", Validator: ValidatorMinValue},
			{RuleID: "check_max_date", Validator: "MAX_DATE_LATEST"},
			{RuleID: "check_structural_lint_error_count", Validator: ValidatorStructuralLint},
		},
	}
}

// TestFilterConfigInclude 包含列表只保留命中的规则
func TestFilterConfigInclude(t *testing.T) {
	filtered, err := FilterConfig(filterTestConfig(), []string{"check_min_value"}, nil)
	require.NoError(t, err)
	require.Len(t, filtered.Rules, 1)
	assert.Equal(t, "check_min_value", filtered.Rules[0].RuleID)
	assert.Equal(t, "1.0", filtered.SchemaVersion)
}

// TestFilterConfigExclude 排除列表剔除命中的规则
func TestFilterConfigExclude(t *testing.T) {
	filtered, err := FilterConfig(filterTestConfig(), nil, []string{"check_max_date"})
	require.NoError(t, err)
	require.Len(t, filtered.Rules, 2)
	assert.Equal(t, "check_min_value", filtered.Rules[0].RuleID)
	assert.Equal(t, "check_structural_lint_error_count", filtered.Rules[1].RuleID)
}

// TestFilterConfigMutuallyExclusive 包含与排除不可同时提供、也不可都不提供
func TestFilterConfigMutuallyExclusive(t *testing.T) {
	_, err := FilterConfig(filterTestConfig(), []string{"a"}, []string{"b"})
	assert.Error(t, err)

	_, err = FilterConfig(filterTestConfig(), nil, nil)
	assert.Error(t, err)
}

// TestFilterConfigUnknownInclude 未知包含ID报错并列出有效ID
func TestFilterConfigUnknownInclude(t *testing.T) {
	_, err := FilterConfig(filterTestConfig(), []string{"check_不存在"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_不存在")
	assert.Contains(t, err.Error(), "check_min_value")
}

// TestFilterConfigEmptyResult 过滤后零规则报错
func TestFilterConfigEmptyResult(t *testing.T) {
	_, err := FilterConfig(filterTestConfig(), nil,
		[]string{"check_min_value", "check_max_date", "check_structural_lint_error_count"})
	assert.Error(t, err)
}
