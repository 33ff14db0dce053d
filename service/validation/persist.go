/*
 * @module service/validation/persist
 * @description 校验结果产物的持久化与加载：一次性原子写入 JSON 数组，读取时容忍开放结构
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 结果数组 -> 不可序列化值兜底转字符串 -> 临时文件写入 -> 原子替换
 * @rules 整读整写，不做部分/流式写入；中途崩溃不得留下半转换的结果集
 * @dependencies encoding/json, os, path/filepath
 * @refs orchestrator.go, warn_only.go
 */

package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"datacheck-service/service/models"
)

// WriteResultsAtomic 将结果数组一次性写入产物文件（两空格缩进），
// 先写临时文件再原子替换
func WriteResultsAtomic(path string, results []models.ValidationResult) error {
	raw := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		raw = append(raw, map[string]interface{}{
			"validation_name":   r.ValidationName,
			"status":            r.Status,
			"message":           r.Message,
			"details":           sanitizeJSONValue(r.Details),
			"validation_params": sanitizeJSONValue(r.ValidationParams),
		})
	}
	return writeJSONAtomic(path, raw)
}

// writeJSONAtomic 原子写入任意 JSON 文档
func writeJSONAtomic(path string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化校验结果失败: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".validation_output_*.json")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("替换输出文件失败: %w", err)
	}
	return nil
}

// sanitizeJSONValue 递归处理 details/params 中的值：
// 无法 JSON 序列化的值兜底转为其字符串表示，而不是报错
func sanitizeJSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = sanitizeJSONValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			out = append(out, sanitizeJSONValue(item))
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			out = append(out, sanitizeJSONValue(item))
		}
		return out
	default:
		if _, err := json.Marshal(val); err != nil {
			return fmt.Sprintf("%v", val)
		}
		return val
	}
}

// LoadResults 从产物文件读取结果数组
func LoadResults(path string) ([]models.ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取校验产物失败: %w", err)
	}
	var results []models.ValidationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("解析校验产物失败: %w", err)
	}
	return results, nil
}

// LoadRuleConfig 从文件加载规则配置
func LoadRuleConfig(path string) (*models.RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取规则配置失败: %w", err)
	}
	var config models.RuleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析规则配置失败: %w", err)
	}
	return &config, nil
}
