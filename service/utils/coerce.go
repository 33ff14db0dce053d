/**
 * @module coerce
 * @description 数值与日期强制转换工具模块，负责单元格数值解析、部分日期解析、观测周期换算等功能
 * @architecture 工具函数模式，提供无状态转换方法集合
 * @stateFlow 无状态转换：输入 -> 转换逻辑 -> 输出
 * @rules
 *   - 转换失败返回 (零值, false)，不抛出错误
 *   - 布尔值不视为数值
 *   - 日期仅按 YYYY / YYYY-MM / YYYY-MM-DD 前缀解析
 * @dependencies
 *   - github.com/spf13/cast: 宽松类型转换
 *   - time: 时间处理
 *   - regexp: 周期表达式解析
 * @refs
 *   - service/extractor/*: 波动样本提取
 *   - service/validation/*: 规则求值
 */

package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ParseCellFloat 将单元格取值宽松转换为浮点数。
// 支持数字、数字字符串（容忍千分位逗号和空白）；布尔值和空串不视为数值
func ParseCellFloat(value interface{}) (float64, bool) {
	if value == nil {
		return 0, false
	}
	if _, isBool := value.(bool); isBool {
		return 0, false
	}
	if s, isStr := value.(string); isStr {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			return 0, false
		}
		value = s
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Stringify 将任意 JSON 解码值转为展示字符串。
// 整数值的浮点表示去掉无意义的小数尾巴（1000.0 -> "1000"）
func Stringify(value interface{}) string {
	if f, isFloat := value.(float64); isFloat {
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return cast.ToString(value)
}

// 部分日期格式，按精度从高到低尝试
var partialDateFormats = []struct {
	layout string
	length int
}{
	{"2006-01-02", 10},
	{"2006-01", 7},
	{"2006", 4},
}

// ParsePartialDate 解析部分日期字符串（YYYY、YYYY-MM 或 YYYY-MM-DD）。
// 超出格式长度的尾部字符被忽略
func ParsePartialDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, f := range partialDateFormats {
		if len(s) >= f.length {
			if t, err := time.Parse(f.layout, s[:f.length]); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ISO 8601 时长记法：P1Y、P2M、P7D 及其组合
var observationPeriodPattern = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?`)

// ObservationPeriodDays 将 ISO 8601 风格的观测周期换算为近似天数
// （年 365 天、月 30 天、日 1 天，逐段累加）。无法解析或为零时返回 (0, false)
func ObservationPeriodDays(period string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(period))
	if s == "" {
		return 0, false
	}
	m := observationPeriodPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	days := 0
	if m[1] != "" {
		days += cast.ToInt(m[1]) * 365
	}
	if m[2] != "" {
		days += cast.ToInt(m[2]) * 30
	}
	if m[3] != "" {
		days += cast.ToInt(m[3])
	}
	if days <= 0 {
		return 0, false
	}
	return days, true
}
