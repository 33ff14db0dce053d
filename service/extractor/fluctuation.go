/*
 * @module service/extractor/fluctuation
 * @description 波动信号提取器：从外部工具 lint 报告的 statsCheckSummary 中提取大幅波动
 *              计数器对应的问题点序列，归一化后派生确定性技术信号
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 报告快照 -> 计数器过滤 -> 问题点归一化排序 -> 末两点技术信号计算
 * @rules
 *   - 纯函数：同一报告输入无论调用多少次产出完全一致，不修改输入
 *   - 指针信号字段 nil 表示"无法计算"，与 false 严格区分
 *   - 基线接近零（|previous| < 1e-9）时百分比变化为 nil，不是无穷也不是零
 * @dependencies datacheck-service/service/models, datacheck-service/service/utils
 * @refs rule_samples.go, service/models/lint_report_models.go
 */

package extractor

import (
	"math"
	"sort"

	"datacheck-service/service/models"
	"datacheck-service/service/utils"
)

// 大幅波动计数器键集合
var fluctuationCounterKeys = map[string]bool{
	"StatsCheck_MaxPercentFluctuationGreaterThan500": true,
	"StatsCheck_MaxPercentFluctuationGreaterThan100": true,
}

// zeroBaseline 百分比变化的零基线判定阈值
const zeroBaseline = 1e-9

// ExtractFluctuationSamples 从 lint 报告提取波动异常样本。
// 报告为 nil 或无统计检查条目时返回空切片
func ExtractFluctuationSamples(report *models.LintReport) []models.FluctuationSample {
	if report == nil {
		return nil
	}
	var samples []models.FluctuationSample
	for i := range report.StatsCheckSummary {
		entry := &report.StatsCheckSummary[i]
		for j := range entry.ValidationCounters {
			counter := &entry.ValidationCounters[j]
			if !fluctuationCounterKeys[counter.CounterKey] {
				continue
			}
			if len(counter.ProblemPoints) == 0 {
				continue
			}
			// 问题点全部缺日期时仍产出样本：点列表为空，信号无法计算
			points := normalizePoints(counter.ProblemPoints)

			var signals *models.TechnicalSignals
			if len(points) >= 2 {
				signals = computeTechnicalSignals(
					&points[len(points)-2],
					&points[len(points)-1],
					entry.ObservationPeriod,
					points,
				)
			}

			samples = append(samples, models.FluctuationSample{
				StatVar:           entry.StatVarDcid,
				Location:          entry.Place(),
				ObservationPeriod: entry.ObservationPeriod,
				CounterKey:        counter.CounterKey,
				ProblemPoints:     points,
				PercentDifference: percentDifference(counter),
				TechnicalSignals:  signals,
			})
		}
	}
	return samples
}

// normalizePoints 剔除无日期的问题点，按原始日期字符串升序排序并归一化取值结构
func normalizePoints(raw []models.ProblemPoint) []models.NormalizedPoint {
	points := make([]models.NormalizedPoint, 0, len(raw))
	for i := range raw {
		if raw[i].Date == "" {
			continue
		}
		point := models.NormalizedPoint{
			Date:  raw[i].Date,
			Value: pointValue(&raw[i]),
		}
		if scale, ok := pointScaling(&raw[i]); ok {
			point.ScalingFactor = scale
			point.HasScaling = true
		}
		if unit, ok := pointUnit(&raw[i]); ok {
			point.Unit = unit
			point.HasUnit = true
		}
		point.Locations = pointLocations(&raw[i])
		points = append(points, point)
	}
	sort.SliceStable(points, func(a, b int) bool {
		return points[a].Date < points[b].Date
	})
	return points
}

// pointValue 提取问题点取值，容忍值结构多嵌套一层（values[0].value.value）
func pointValue(pt *models.ProblemPoint) interface{} {
	if len(pt.Values) == 0 {
		return nil
	}
	value := pt.Values[0].Value
	if nested, ok := value.(map[string]interface{}); ok {
		value = nested["value"]
	}
	return value
}

func pointScaling(pt *models.ProblemPoint) (string, bool) {
	if len(pt.Values) > 0 && pt.Values[0].ScalingFactor != nil {
		return utils.Stringify(pt.Values[0].ScalingFactor), true
	}
	if pt.ScalingFactor != nil {
		return utils.Stringify(pt.ScalingFactor), true
	}
	return "", false
}

func pointUnit(pt *models.ProblemPoint) (string, bool) {
	if len(pt.Values) > 0 && pt.Values[0].Unit != nil {
		return utils.Stringify(pt.Values[0].Unit), true
	}
	if pt.Unit != nil {
		return utils.Stringify(pt.Unit), true
	}
	return "", false
}

func pointLocations(pt *models.ProblemPoint) []models.PointLocation {
	if len(pt.Values) == 0 {
		return nil
	}
	if len(pt.Values[0].Locations) == 0 {
		return nil
	}
	locations := make([]models.PointLocation, len(pt.Values[0].Locations))
	copy(locations, pt.Values[0].Locations)
	return locations
}

func percentDifference(counter *models.ValidationCounter) *float64 {
	if counter.PercentDifference == "" {
		return nil
	}
	value, err := counter.PercentDifference.Float64()
	if err != nil {
		return nil
	}
	return &value
}

// computeTechnicalSignals 基于末两个归一化点计算确定性技术信号。
// allPoints 用于在未声明观测周期时推断典型间隔
func computeTechnicalSignals(
	previous, current *models.NormalizedPoint,
	observationPeriod string,
	allPoints []models.NormalizedPoint,
) *models.TechnicalSignals {
	signals := &models.TechnicalSignals{}

	prevNum, prevOK := utils.ParseCellFloat(previous.Value)
	currNum, currOK := utils.ParseCellFloat(current.Value)
	if prevOK {
		signals.PreviousValue = &prevNum
	}
	if currOK {
		signals.CurrentValue = &currNum
	}

	if prevOK && currOK && math.Abs(prevNum) >= zeroBaseline {
		change := (currNum - prevNum) / math.Abs(prevNum) * 100.0
		signals.PercentChange = &change
	}

	signals.PreviousNearZero = prevOK && math.Abs(prevNum) < 1
	signals.FirstValidAfterPlaceholder = prevOK && currOK && prevNum <= 0 && currNum > 0

	if previous.HasScaling && current.HasScaling {
		changed := previous.ScalingFactor != current.ScalingFactor
		signals.ScalingChanged = &changed
	}
	if previous.HasUnit && current.HasUnit {
		changed := previous.Unit != current.Unit
		signals.UnitChanged = &changed
	}

	prevDate, prevDateOK := utils.ParsePartialDate(previous.Date)
	currDate, currDateOK := utils.ParsePartialDate(current.Date)
	if prevDateOK && currDateOK {
		gapDays := int64(currDate.Sub(prevDate).Hours() / 24)
		if periodDays, ok := utils.ObservationPeriodDays(observationPeriod); ok {
			// 周期每包含一个整年，缺口允许多出一个闰日
			allowed := int64(periodDays) + int64(periodDays/365)
			missing := gapDays > allowed
			signals.MissingIntermediatePeriods = &missing
		} else if len(allPoints) >= 3 {
			if typical, ok := typicalGapDays(allPoints); ok {
				missing := gapDays > typical
				signals.MissingIntermediatePeriods = &missing
			}
		}
	}

	return signals
}

// typicalGapDays 取全部相邻点间隔的均值作为典型间隔，下限 1 天
func typicalGapDays(points []models.NormalizedPoint) (int64, bool) {
	var total, count int64
	for i := 1; i < len(points); i++ {
		a, aOK := utils.ParsePartialDate(points[i-1].Date)
		b, bOK := utils.ParsePartialDate(points[i].Date)
		if !aOK || !bOK {
			continue
		}
		total += int64(b.Sub(a).Hours() / 24)
		count++
	}
	if count == 0 {
		return 0, false
	}
	typical := total / count
	if typical < 1 {
		typical = 1
	}
	return typical, true
}
