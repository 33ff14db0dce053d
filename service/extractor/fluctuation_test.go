/*
 * @module service/extractor/fluctuation_test
 * @description 波动信号提取器测试文件
 * @architecture 测试层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 构造报告 -> 提取样本 -> 信号验证
 * @rules 覆盖零基线、符号幅度、近零独立性、缺失周期检测和提取幂等性
 * @dependencies testing, github.com/stretchr/testify
 * @refs fluctuation.go
 */

package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacheck-service/service/models"
)

const fluctuationCounter = "StatsCheck_MaxPercentFluctuationGreaterThan100"

func problemPoint(date string, value interface{}) models.ProblemPoint {
	return models.ProblemPoint{
		Date:   date,
		Values: []models.PointValue{{Value: value}},
	}
}

func reportWithPoints(period string, points ...models.ProblemPoint) *models.LintReport {
	return &models.LintReport{
		StatsCheckSummary: []models.StatsCheckEntry{
			{
				PlaceDcid:         "country/CHN",
				StatVarDcid:       "Count_Person",
				ObservationPeriod: period,
				ValidationCounters: []models.ValidationCounter{
					{CounterKey: fluctuationCounter, PercentDifference: "150.5", ProblemPoints: points},
				},
			},
		},
	}
}

func extractSingle(t *testing.T, report *models.LintReport) *models.FluctuationSample {
	t.Helper()
	samples := ExtractFluctuationSamples(report)
	require.Len(t, samples, 1)
	return &samples[0]
}

// TestPercentChangeNullAtZeroBaseline 零基线时百分比变化为 nil，不是无穷
func TestPercentChangeNullAtZeroBaseline(t *testing.T) {
	report := reportWithPoints("",
		problemPoint("2020", float64(0)),
		problemPoint("2021", float64(50)))
	sample := extractSingle(t, report)

	require.NotNil(t, sample.TechnicalSignals)
	assert.Nil(t, sample.TechnicalSignals.PercentChange)
	assert.True(t, sample.TechnicalSignals.PreviousNearZero)
	assert.True(t, sample.TechnicalSignals.FirstValidAfterPlaceholder)
}

// TestPercentChangeSignAndMagnitude 百分比变化的符号与幅度
func TestPercentChangeSignAndMagnitude(t *testing.T) {
	t.Run("上涨50%", func(t *testing.T) {
		report := reportWithPoints("",
			problemPoint("2020", float64(100)),
			problemPoint("2021", float64(150)))
		sample := extractSingle(t, report)
		require.NotNil(t, sample.TechnicalSignals.PercentChange)
		assert.InDelta(t, 50.0, *sample.TechnicalSignals.PercentChange, 1e-9)
	})
	t.Run("下跌75%", func(t *testing.T) {
		report := reportWithPoints("",
			problemPoint("2020", float64(100)),
			problemPoint("2021", float64(25)))
		sample := extractSingle(t, report)
		require.NotNil(t, sample.TechnicalSignals.PercentChange)
		assert.InDelta(t, -75.0, *sample.TechnicalSignals.PercentChange, 1e-9)
	})
}

// TestNearZeroIndependentOfPercentChange 近零信号与百分比可空性独立判定
func TestNearZeroIndependentOfPercentChange(t *testing.T) {
	report := reportWithPoints("",
		problemPoint("2020", float64(0.5)),
		problemPoint("2021", float64(10)))
	sample := extractSingle(t, report)

	signals := sample.TechnicalSignals
	require.NotNil(t, signals)
	assert.True(t, signals.PreviousNearZero)
	require.NotNil(t, signals.PercentChange)
	assert.InDelta(t, 1900.0, *signals.PercentChange, 1e-9)
}

// TestMissingPeriodViaDeclaredPeriod 声明观测周期时按周期天数检测缺口
func TestMissingPeriodViaDeclaredPeriod(t *testing.T) {
	t.Run("两年缺口超过P1Y", func(t *testing.T) {
		report := reportWithPoints("P1Y",
			problemPoint("2020-01-01", float64(10)),
			problemPoint("2022-01-01", float64(20)))
		sample := extractSingle(t, report)
		require.NotNil(t, sample.TechnicalSignals.MissingIntermediatePeriods)
		assert.True(t, *sample.TechnicalSignals.MissingIntermediatePeriods)
	})
	t.Run("一年缺口不超过P1Y", func(t *testing.T) {
		report := reportWithPoints("P1Y",
			problemPoint("2020-01-01", float64(10)),
			problemPoint("2021-01-01", float64(20)))
		sample := extractSingle(t, report)
		require.NotNil(t, sample.TechnicalSignals.MissingIntermediatePeriods)
		assert.False(t, *sample.TechnicalSignals.MissingIntermediatePeriods)
	})
	t.Run("含闰年的两年缺口不超过P2Y", func(t *testing.T) {
		report := reportWithPoints("P2Y",
			problemPoint("2020-01-01", float64(10)),
			problemPoint("2022-01-01", float64(20)))
		sample := extractSingle(t, report)
		require.NotNil(t, sample.TechnicalSignals.MissingIntermediatePeriods)
		assert.False(t, *sample.TechnicalSignals.MissingIntermediatePeriods)
	})
	t.Run("无周期且仅两点时为nil", func(t *testing.T) {
		report := reportWithPoints("",
			problemPoint("2020", float64(10)),
			problemPoint("2022", float64(20)))
		sample := extractSingle(t, report)
		assert.Nil(t, sample.TechnicalSignals.MissingIntermediatePeriods)
	})
	t.Run("无周期三点以上按典型间隔推断", func(t *testing.T) {
		report := reportWithPoints("",
			problemPoint("2018-01-01", float64(1)),
			problemPoint("2019-01-01", float64(2)),
			problemPoint("2022-01-01", float64(3)))
		sample := extractSingle(t, report)
		require.NotNil(t, sample.TechnicalSignals.MissingIntermediatePeriods)
		assert.True(t, *sample.TechnicalSignals.MissingIntermediatePeriods)
	})
}

// TestExtractIdempotent 重复提取产出一致且不修改输入报告
func TestExtractIdempotent(t *testing.T) {
	report := reportWithPoints("P1Y",
		problemPoint("2021", float64(5)),
		problemPoint("2020", float64(100)))

	first := ExtractFluctuationSamples(report)
	second := ExtractFluctuationSamples(report)
	assert.Equal(t, first, second)

	// 输入报告的问题点顺序未被排序副作用打乱
	assert.Equal(t, "2021", report.StatsCheckSummary[0].ValidationCounters[0].ProblemPoints[0].Date)
}

// TestExtractNormalization 无日期点剔除、按日期排序、嵌套值拆包
func TestExtractNormalization(t *testing.T) {
	nested := models.ProblemPoint{
		Date: "2021",
		Values: []models.PointValue{{
			Value: map[string]interface{}{"value": float64(42)},
		}},
	}
	report := reportWithPoints("",
		problemPoint("", float64(99)), // 无日期，剔除
		nested,
		problemPoint("2020", float64(10)))
	sample := extractSingle(t, report)

	require.Len(t, sample.ProblemPoints, 2)
	assert.Equal(t, "2020", sample.ProblemPoints[0].Date)
	assert.Equal(t, "2021", sample.ProblemPoints[1].Date)
	assert.Equal(t, float64(42), sample.ProblemPoints[1].Value)
	require.NotNil(t, sample.PercentDifference)
	assert.InDelta(t, 150.5, *sample.PercentDifference, 1e-9)
}

// TestExtractScalingUnitSignals 缩放/单位变化三态：变、没变、不可比
func TestExtractScalingUnitSignals(t *testing.T) {
	withMeta := func(date string, value float64, scale, unit interface{}) models.ProblemPoint {
		return models.ProblemPoint{
			Date:   date,
			Values: []models.PointValue{{Value: value, ScalingFactor: scale, Unit: unit}},
		}
	}

	t.Run("缩放因子改变", func(t *testing.T) {
		report := reportWithPoints("",
			withMeta("2020", 10, float64(100), "USD"),
			withMeta("2021", 20, float64(1000), "USD"))
		sample := extractSingle(t, report)
		require.NotNil(t, sample.TechnicalSignals.ScalingChanged)
		assert.True(t, *sample.TechnicalSignals.ScalingChanged)
		require.NotNil(t, sample.TechnicalSignals.UnitChanged)
		assert.False(t, *sample.TechnicalSignals.UnitChanged)
	})
	t.Run("缺失一侧时不可比", func(t *testing.T) {
		report := reportWithPoints("",
			withMeta("2020", 10, nil, nil),
			withMeta("2021", 20, float64(1000), "USD"))
		sample := extractSingle(t, report)
		assert.Nil(t, sample.TechnicalSignals.ScalingChanged)
		assert.Nil(t, sample.TechnicalSignals.UnitChanged)
	})
}

// TestExtractIgnoresOtherCounters 非波动计数器不产生样本
func TestExtractIgnoresOtherCounters(t *testing.T) {
	report := &models.LintReport{
		StatsCheckSummary: []models.StatsCheckEntry{
			{
				StatVarDcid: "Count_Person",
				ValidationCounters: []models.ValidationCounter{
					{CounterKey: "StatsCheck_Inconsistent_Values", ProblemPoints: []models.ProblemPoint{
						problemPoint("2020", float64(1)),
					}},
				},
			},
		},
	}
	assert.Empty(t, ExtractFluctuationSamples(report))
	assert.Empty(t, ExtractFluctuationSamples(nil))
}

// TestExtractDatelessPoints 问题点全部缺日期时仍产出样本，只是点列表为空
func TestExtractDatelessPoints(t *testing.T) {
	t.Run("全部缺日期仍产出样本", func(t *testing.T) {
		report := reportWithPoints("P1Y",
			problemPoint("", float64(10)),
			problemPoint("", float64(70)))
		sample := extractSingle(t, report)

		assert.Empty(t, sample.ProblemPoints)
		assert.Nil(t, sample.TechnicalSignals)
		assert.Equal(t, "Count_Person", sample.StatVar)
	})

	t.Run("没有问题点则不产出样本", func(t *testing.T) {
		report := reportWithPoints("P1Y")
		assert.Empty(t, ExtractFluctuationSamples(report))
	})
}
