/*
 * @module service/models/validation_models
 * @description 校验核心模型定义，包含校验结果、规则定义、规则配置和运行记录等核心数据结构
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 规则配置加载 -> 规则执行 -> 校验结果合并 -> 结果持久化
 * @rules 每条启用规则每次运行恰好产生一条 ValidationResult；只有 FAILED 状态阻断入库
 * @dependencies gorm.io/gorm
 * @refs service/validation, service/extractor
 */

package models

import (
	"time"
)

// 校验结果状态枚举。状态集合是封闭的，但未知字符串必须原样保留，
// 下游按"其他"处理，不得丢弃。
const (
	StatusPassed      = "PASSED"
	StatusFailed      = "FAILED"
	StatusWarning     = "WARNING"
	StatusConfigError = "CONFIG_ERROR"
	StatusDataError   = "DATA_ERROR"
)

// ValidationResult 单条规则的校验结果，是整个流水线的原子单元
type ValidationResult struct {
	ValidationName   string                 `json:"validation_name"`
	Status           string                 `json:"status"`
	Message          string                 `json:"message"`
	Details          map[string]interface{} `json:"details"`
	ValidationParams map[string]interface{} `json:"validation_params"`
}

// IsBlocker 判断结果是否阻断入库。只有 FAILED 阻断；
// WARNING/CONFIG_ERROR/DATA_ERROR 当前约定不阻断
func (r *ValidationResult) IsBlocker() bool {
	return r.Status == StatusFailed
}

// RuleDefinition 配置期的规则定义
type RuleDefinition struct {
	RuleID      string                 `json:"rule_id"`
	Description string                 `json:"description"`
	Validator   string                 `json:"validator"`
	Scope       map[string]interface{} `json:"scope"`
	Params      map[string]interface{} `json:"params"`
	// Enabled 默认 true；序列化时缺省为 nil 表示启用
	Enabled *bool `json:"enabled,omitempty"`
}

// IsEnabled 规则是否启用（缺省视为启用）
func (r *RuleDefinition) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// RuleConfig 规则配置文件的顶层结构
type RuleConfig struct {
	SchemaVersion string           `json:"schema_version,omitempty"`
	Rules         []RuleDefinition `json:"rules"`
}

// WarnOnlyConfig 数据集级 warn_only 配置：数据集名 -> 规则ID列表。
// 命中的 FAILED 结果在后处理阶段降级为 WARNING
type WarnOnlyConfig map[string][]string

// scope.data_source 的合法取值
var ValidDataSources = []string{"stats", "lint", "differ"}

// ValidationRun 一次校验运行的持久化记录（补充能力，文件产物仍是权威结果）
type ValidationRun struct {
	ID             string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Dataset        string        `json:"dataset" gorm:"type:varchar(255);index;not null"`
	Overall        string        `json:"overall" gorm:"type:varchar(64)"`
	BlockerCount   int           `json:"blocker_count"`
	WarningCount   int           `json:"warning_count"`
	PassedCount    int           `json:"passed_count"`
	ConvertedCount int           `json:"converted_count"`
	Results        JSONBArray    `json:"results" gorm:"type:jsonb"`
	ExitCode       int           `json:"exit_code"`
	Duration       time.Duration `json:"duration"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	CreatedBy      string        `json:"created_by" gorm:"type:varchar(100);default:system"`
}

// TableName 指定表名
func (ValidationRun) TableName() string {
	return "validation_runs"
}

// ScheduledValidation 周期性重校验任务的持久化配置
type ScheduledValidation struct {
	ID             string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Dataset        string     `json:"dataset" gorm:"type:varchar(255);uniqueIndex;not null"`
	CronExpression string     `json:"cron_expression" gorm:"type:varchar(100);not null"`
	ConfigPath     string     `json:"config_path" gorm:"type:varchar(512);not null"`
	OutputDir      string     `json:"output_dir" gorm:"type:varchar(512);not null"`
	// IsEnabled 不带列默认值：带默认值时 gorm 在 Create 阶段会丢弃零值 false，
	// 新建即禁用的任务会被写成启用
	IsEnabled bool `json:"is_enabled"`
	LastRunAt      *time.Time `json:"last_run_at"`
	LastRunStatus  string     `json:"last_run_status" gorm:"type:varchar(64)"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (ScheduledValidation) TableName() string {
	return "scheduled_validations"
}
