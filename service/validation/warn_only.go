/*
 * @module service/validation/warn_only
 * @description 校验结果后处理：按数据集级 warn_only 配置将 FAILED 降级为 WARNING，
 *              并提供覆盖后的阻断判定
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 整读产物 -> 内存中降级 -> 有转换才整写回 -> 阻断判定
 * @rules
 *   - 只允许 FAILED -> WARNING 单向转换，绝不反向
 *   - 规则名匹配不区分大小写并去除首尾空白
 *   - 产物不可读或格式异常时按"存在阻断"处理（fail-closed）
 * @dependencies encoding/json, datacheck-service/service/models
 * @refs persist.go, service/review/summary.go
 */

package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"datacheck-service/service/models"
)

// LoadWarnOnlyConfig 加载数据集级 warn_only 配置（数据集名 -> 规则ID列表）
func LoadWarnOnlyConfig(path string) (models.WarnOnlyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取warn_only配置失败: %w", err)
	}
	var config models.WarnOnlyConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析warn_only配置失败: %w", err)
	}
	return config, nil
}

// ApplyWarnOnly 对产物文件应用 warn_only 覆盖：命中数据集允许列表的 FAILED
// 结果就地改写为 WARNING。仅在发生转换时才写回（避免无意义重写）。
// 返回转换条数；产物或配置不可读时返回错误，调用方按阻断处理
func ApplyWarnOnly(outputPath string, warnOnly models.WarnOnlyConfig, dataset string) (int, error) {
	// 以开放结构操作，保留结果中未建模的字段
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return 0, fmt.Errorf("读取校验产物失败: %w", err)
	}
	var results []map[string]interface{}
	if err := json.Unmarshal(data, &results); err != nil {
		return 0, fmt.Errorf("解析校验产物失败: %w", err)
	}

	allowed := make(map[string]bool)
	for _, id := range warnOnly[dataset] {
		key := strings.ToLower(strings.TrimSpace(id))
		if key != "" {
			allowed[key] = true
		}
	}
	if len(allowed) == 0 {
		return 0, nil
	}

	converted := 0
	for _, r := range results {
		status, _ := r["status"].(string)
		if status != models.StatusFailed {
			continue
		}
		name, _ := r["validation_name"].(string)
		if allowed[strings.ToLower(strings.TrimSpace(name))] {
			r["status"] = models.StatusWarning
			converted++
		}
	}

	if converted > 0 {
		if err := writeJSONAtomic(outputPath, results); err != nil {
			return 0, err
		}
		slog.Info("warn_only覆盖已应用",
			"dataset", dataset,
			"converted", converted)
	}
	return converted, nil
}

// HasBlockers 判断产物中是否残留 FAILED 结果。必须在 ApplyWarnOnly 之后调用，
// 这是"本次运行是否阻断入库"的权威判定。
// 产物不可读、非 JSON 或非数组时按存在阻断处理
func HasBlockers(outputPath string) bool {
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return true
	}
	var results []map[string]interface{}
	if err := json.Unmarshal(data, &results); err != nil {
		return true
	}
	for _, r := range results {
		if status, _ := r["status"].(string); status == models.StatusFailed {
			return true
		}
	}
	return false
}
