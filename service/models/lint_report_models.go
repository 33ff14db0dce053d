/*
 * @module service/models/lint_report_models
 * @description 外部导入工具产物模型定义，包含 lint 报告、统计检查条目、问题点和派生分析样本
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 报告加载 -> 计数器筛选 -> 问题点归一化 -> 技术信号派生
 * @rules 派生样本（波动样本、规则失败样本）按需重算，不作为权威结果持久化
 * @dependencies encoding/json
 * @refs service/extractor, service/importtool
 */

package models

import "encoding/json"

// lint 报告的级别键
const (
	LevelInfo    = "LEVEL_INFO"
	LevelWarning = "LEVEL_WARNING"
	LevelError   = "LEVEL_ERROR"
	LevelFatal   = "LEVEL_FATAL"
)

// LintReport 外部导入工具输出的 report.json 顶层结构
type LintReport struct {
	LevelSummary      map[string]LevelCounters `json:"levelSummary"`
	StatsCheckSummary []StatsCheckEntry        `json:"statsCheckSummary"`
	CommandArgs       CommandArgs              `json:"commandArgs"`
}

// LevelCounters 某一级别下的计数器集合。计数值可能是数字或数字字符串，
// 用 json.Number 兼容两种写法
type LevelCounters struct {
	Counters map[string]json.Number `json:"counters"`
}

// CommandArgs 外部工具记录的命令参数，inputFiles 用于回溯源 CSV
type CommandArgs struct {
	InputFiles []string `json:"inputFiles"`
}

// StatsCheckEntry 按 (地点, 统计变量) 维度的统计检查条目
type StatsCheckEntry struct {
	PlaceDcid          string              `json:"placeDcid"`
	ObservationAbout   string              `json:"observationAbout"`
	StatVarDcid        string              `json:"statVarDcid"`
	ObservationPeriod  string              `json:"observationPeriod"`
	ValidationCounters []ValidationCounter `json:"validationCounters"`
}

// Place 返回条目的地点标识，placeDcid 优先
func (e *StatsCheckEntry) Place() string {
	if e.PlaceDcid != "" {
		return e.PlaceDcid
	}
	return e.ObservationAbout
}

// ValidationCounter 条目内的单个校验计数器及其问题点
type ValidationCounter struct {
	CounterKey        string         `json:"counterKey"`
	PercentDifference json.Number    `json:"percentDifference"`
	ProblemPoints     []ProblemPoint `json:"problemPoints"`
}

// ProblemPoint 时间序列中的单个问题点。值结构可能嵌套一层
// （values[0].value 本身又是 {value: ...}），解析时需容忍
type ProblemPoint struct {
	Date          string       `json:"date"`
	Values        []PointValue `json:"values"`
	ScalingFactor interface{}  `json:"scalingFactor,omitempty"`
	Unit          interface{}  `json:"unit,omitempty"`
}

// PointValue 问题点内的取值条目
type PointValue struct {
	Value         interface{}     `json:"value"`
	ScalingFactor interface{}     `json:"scalingFactor,omitempty"`
	Unit          interface{}     `json:"unit,omitempty"`
	Locations     []PointLocation `json:"locations,omitempty"`
}

// PointLocation 取值在源文件中的位置
type PointLocation struct {
	File       string `json:"file"`
	LineNumber int64  `json:"lineNumber"`
}

// NormalizedPoint 归一化后的问题点，用于展示和技术信号计算
type NormalizedPoint struct {
	Date          string          `json:"date"`
	Value         interface{}     `json:"value"`
	ScalingFactor string          `json:"scalingFactor,omitempty"`
	Unit          string          `json:"unit,omitempty"`
	Locations     []PointLocation `json:"locations,omitempty"`

	// 空值与缺失需要区分：scalingFactor/unit 缺失时比较结果应为"不可比"
	HasScaling bool `json:"-"`
	HasUnit    bool `json:"-"`
}

// TechnicalSignals 关于最后两个时序点转换的确定性技术信号。
// 指针字段为 nil 表示"无法计算"，与 false/0 含义不同
type TechnicalSignals struct {
	PreviousValue              *float64 `json:"previous_value"`
	CurrentValue               *float64 `json:"current_value"`
	PercentChange              *float64 `json:"percent_change"`
	PreviousNearZero           bool     `json:"previous_near_zero"`
	FirstValidAfterPlaceholder bool     `json:"first_valid_after_placeholder"`
	MissingIntermediatePeriods *bool    `json:"missing_intermediate_periods"`
	ScalingChanged             *bool    `json:"scaling_changed"`
	UnitChanged                *bool    `json:"unit_changed"`
}

// FluctuationSample 单个 (地点, 统计变量, 计数器) 的波动异常样本。
// 每次渲染时从报告重算，幂等且无副作用
type FluctuationSample struct {
	StatVar           string            `json:"statVar"`
	Location          string            `json:"location"`
	ObservationPeriod string            `json:"observationPeriod"`
	CounterKey        string            `json:"counterKey"`
	ProblemPoints     []NormalizedPoint `json:"problemPoints"`
	PercentDifference *float64          `json:"percentDifference"`
	TechnicalSignals  *TechnicalSignals `json:"technical_signals"`
}

// RuleFailureSample 某条失败规则的单个违规实体样本，形状按规则族展开
type RuleFailureSample struct {
	StatVar   string      `json:"statVar,omitempty"`
	Location  string      `json:"location,omitempty"`
	Date      string      `json:"date,omitempty"`
	Value     interface{} `json:"value"`
	Rule      string      `json:"rule"`
	Expected  string      `json:"expected"`
	SourceRow string      `json:"sourceRow,omitempty"`
	Message   string      `json:"message"`
}

// 顾问问题严重级别
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// AdvisoryIssue AI 顾问层输出的建议条目。仅供展示，
// 永远不影响校验通过/失败判定和退出码
type AdvisoryIssue struct {
	Severity string `json:"severity"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Column   string `json:"column,omitempty"`
}
