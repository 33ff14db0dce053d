/*
 * @module service/validation/config_validator
 * @description 规则配置结构校验：对照契约模板检查配置文件形状，
 *              包括必需键、未知键、规则ID命名与唯一性、scope 枚举等
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 原始 JSON 解析 -> 顶层键检查 -> 逐规则检查 -> 错误列表
 * @rules 规则ID唯一性在配置校验期强制；运行期重复属未定义行为
 * @dependencies encoding/json, regexp
 * @refs config_filter.go, cmd/datacheck
 */

package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"datacheck-service/service/models"
)

var (
	requiredTopLevelKeys = []string{"rules"}
	optionalTopLevelKeys = []string{"schema_version"}
	requiredRuleKeys     = []string{"rule_id", "description", "validator", "scope", "params"}
	optionalRuleKeys     = []string{"enabled"} // enabled: false 不删规则即可停用

	// snake_case，字母开头
	ruleIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// ValidateConfigFile 从文件读取配置并做结构校验，返回错误消息列表（空即有效）
func ValidateConfigFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return ValidateConfigShape(doc, path), nil
}

// ValidateConfigShape 校验配置文档的结构形状，path 仅用于错误消息前缀
func ValidateConfigShape(doc interface{}, path string) []string {
	var errors []string

	config, ok := doc.(map[string]interface{})
	if !ok {
		return []string{fmt.Sprintf("%s: root must be a JSON object", path)}
	}

	for _, key := range requiredTopLevelKeys {
		if _, exists := config[key]; !exists {
			errors = append(errors, fmt.Sprintf("%s: missing required key '%s'", path, key))
		} else if _, isList := config[key].([]interface{}); !isList {
			errors = append(errors, fmt.Sprintf("%s: '%s' must be an array", path, key))
		}
	}
	for key := range config {
		if !containsString(requiredTopLevelKeys, key) && !containsString(optionalTopLevelKeys, key) {
			errors = append(errors, fmt.Sprintf("%s: unknown top-level key '%s'", path, key))
		}
	}
	if sv, exists := config["schema_version"]; exists {
		if _, isStr := sv.(string); !isStr {
			errors = append(errors, fmt.Sprintf("%s: schema_version must be a string", path))
		}
	}

	rules, ok := config["rules"].([]interface{})
	if !ok {
		return errors
	}

	seenRuleIDs := make(map[string]bool)
	for i, raw := range rules {
		rule, ok := raw.(map[string]interface{})
		if !ok {
			errors = append(errors, fmt.Sprintf("%s: rules[%d] must be an object", path, i))
			continue
		}
		prefix := fmt.Sprintf("%s: rules[%d]", path, i)
		for _, rk := range requiredRuleKeys {
			if _, exists := rule[rk]; !exists {
				errors = append(errors, fmt.Sprintf("%s: missing required key '%s'", prefix, rk))
			}
		}
		for rk, rv := range rule {
			switch rk {
			case "rule_id":
				id, isStr := rv.(string)
				if !isStr || strings.TrimSpace(id) == "" {
					errors = append(errors, fmt.Sprintf("%s: rule_id must be a non-empty string", prefix))
				} else if !ruleIDPattern.MatchString(id) {
					errors = append(errors, fmt.Sprintf("%s: rule_id should be snake_case (e.g. check_min_value)", prefix))
				} else if seenRuleIDs[id] {
					errors = append(errors, fmt.Sprintf("%s: duplicate rule_id %q (rule_id must be unique)", prefix, id))
				} else {
					seenRuleIDs[id] = true
				}
			case "description":
				if _, isStr := rv.(string); !isStr {
					errors = append(errors, fmt.Sprintf("%s: description must be a string", prefix))
				}
			case "validator":
				if v, isStr := rv.(string); !isStr || strings.TrimSpace(v) == "" {
					errors = append(errors, fmt.Sprintf("%s: validator must be a non-empty string", prefix))
				}
			case "scope":
				scope, isMap := rv.(map[string]interface{})
				if !isMap {
					errors = append(errors, fmt.Sprintf("%s: scope must be an object", prefix))
				} else if ds, exists := scope["data_source"]; exists {
					dsStr, _ := ds.(string)
					if !containsString(models.ValidDataSources, dsStr) {
						errors = append(errors, fmt.Sprintf("%s: scope.data_source must be one of %v",
							prefix, models.ValidDataSources))
					}
				}
			case "params":
				if _, isMap := rv.(map[string]interface{}); !isMap {
					errors = append(errors, fmt.Sprintf("%s: params must be an object", prefix))
				}
			case "enabled":
				if _, isBool := rv.(bool); !isBool {
					errors = append(errors, fmt.Sprintf("%s: enabled must be a boolean", prefix))
				}
			default:
				errors = append(errors, fmt.Sprintf("%s: unknown rule key '%s'", prefix, rk))
			}
		}
	}

	return errors
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
