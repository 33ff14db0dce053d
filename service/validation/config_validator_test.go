/*
 * @module service/validation/config_validator_test
 * @description 规则配置结构校验测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 构造配置文档 -> 形状校验 -> 错误列表验证
 * @rules 覆盖必需键、未知键、ID命名与唯一性、scope 枚举
 * @dependencies testing, github.com/stretchr/testify
 * @refs config_validator.go
 */

package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shapeOf(t *testing.T, raw string) interface{} {
	t.Helper()
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

const validConfigJSON = `{
  "schema_version": "1.0",
  "rules": [
    {
      "rule_id": "check_min_value",
      "description": "最小值检查",
      "validator": "MIN_VALUE",
      "scope": {"data_source": "stats"},
      "params": {"minimum": 0}
    }
  ]
}`

// TestValidateConfigShapeValid 合法配置零错误
func TestValidateConfigShapeValid(t *testing.T) {
	errors := ValidateConfigShape(shapeOf(t, validConfigJSON), "config.json")
	assert.Empty(t, errors)
}

// TestValidateConfigShapeErrors 各类形状问题逐一报告
func TestValidateConfigShapeErrors(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		wantMessage string
	}{
		{
			name:        "缺少rules键",
			config:      `{"schema_version": "1.0"}`,
			wantMessage: "missing required key 'rules'",
		},
		{
			name:        "未知顶层键",
			config:      `{"rules": [], "extra": 1}`,
			wantMessage: "unknown top-level key 'extra'",
		},
		{
			name: "规则缺少params",
			config: `{"rules": [{"rule_id": "check_a", "description": "d",
				"validator": "V", "scope": {}}]}`,
			wantMessage: "missing required key 'params'",
		},
		{
			name: "规则ID非snake_case",
			config: `{"rules": [{"rule_id": "CheckA", "description": "d",
				"validator": "V", "scope": {}, "params": {}}]}`,
			wantMessage: "rule_id should be snake_case",
		},
		{
			name: "重复规则ID",
			config: `{"rules": [
				{"rule_id": "check_a", "description": "d", "validator": "V", "scope": {}, "params": {}},
				{"rule_id": "check_a", "description": "d", "validator": "V", "scope": {}, "params": {}}]}`,
			wantMessage: `duplicate rule_id "check_a"`,
		},
		{
			name: "非法data_source",
			config: `{"rules": [{"rule_id": "check_a", "description": "d",
				"validator": "V", "scope": {"data_source": "magic"}, "params": {}}]}`,
			wantMessage: "scope.data_source must be one of",
		},
		{
			name: "未知规则键",
			config: `{"rules": [{"rule_id": "check_a", "description": "d",
				"validator": "V", "scope": {}, "params": {}, "severity": "high"}]}`,
			wantMessage: "unknown rule key 'severity'",
		},
		{
			name: "enabled非布尔",
			config: `{"rules": [{"rule_id": "check_a", "description": "d",
				"validator": "V", "scope": {}, "params": {}, "enabled": "yes"}]}`,
			wantMessage: "enabled must be a boolean",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateConfigShape(shapeOf(t, tt.config), "config.json")
			require.NotEmpty(t, errors)
			found := false
			for _, e := range errors {
				if strings.Contains(e, tt.wantMessage) {
					found = true
					break
				}
			}
			assert.True(t, found, "期望错误消息包含 %q，实际: %v", tt.wantMessage, errors)
		})
	}
}

// TestValidateConfigShapeRootNotObject 根节点必须是对象
func TestValidateConfigShapeRootNotObject(t *testing.T) {
	errors := ValidateConfigShape(shapeOf(t, `[1, 2]`), "config.json")
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "root must be a JSON object")
}
