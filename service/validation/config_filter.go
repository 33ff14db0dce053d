/*
 * @module service/validation/config_filter
 * @description 规则配置过滤：按规则ID包含/排除列表生成子集配置
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 配置加载 -> ID 集合校验 -> 过滤 -> 子集配置
 * @rules 包含与排除互斥；未知包含ID报错；过滤后为空报错
 * @dependencies datacheck-service/service/models
 * @refs config_validator.go, cmd/datacheck
 */

package validation

import (
	"fmt"
	"sort"
	"strings"

	"datacheck-service/service/models"
)

// FilterConfig 按规则ID过滤配置。include 与 exclude 必须恰好提供一个；
// include 中的未知ID和过滤后零规则都是错误
func FilterConfig(config *models.RuleConfig, include, exclude []string) (*models.RuleConfig, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return nil, fmt.Errorf("包含与排除列表只能二选一")
	}
	if len(include) == 0 && len(exclude) == 0 {
		return nil, fmt.Errorf("必须提供包含或排除规则ID列表")
	}

	allIDs := make(map[string]bool)
	for _, rule := range config.Rules {
		if rule.RuleID != "" {
			allIDs[rule.RuleID] = true
		}
	}

	var filtered []models.RuleDefinition
	if len(include) > 0 {
		includeSet := toIDSet(include)
		var unknown []string
		for id := range includeSet {
			if !allIDs[id] {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			valid := sortedKeys(allIDs)
			return nil, fmt.Errorf("未知的规则ID: %s（有效ID: %s）",
				strings.Join(unknown, ", "), strings.Join(valid, ", "))
		}
		for _, rule := range config.Rules {
			if includeSet[rule.RuleID] {
				filtered = append(filtered, rule)
			}
		}
	} else {
		excludeSet := toIDSet(exclude)
		for _, rule := range config.Rules {
			if !excludeSet[rule.RuleID] {
				filtered = append(filtered, rule)
			}
		}
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("过滤后没有剩余规则")
	}

	return &models.RuleConfig{
		SchemaVersion: config.SchemaVersion,
		Rules:         filtered,
	}, nil
}

func toIDSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = true
		}
	}
	return set
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
