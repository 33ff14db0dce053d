/*
 * @module service/scheduler/validation_scheduler
 * @description 周期性重校验调度器：按 cron 表达式对已登记的数据集重跑校验流水线，
 *              通过分布式锁保证多实例部署时同一数据集不被并发重校验
 * @architecture 分层架构 - 任务调度层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 启动加载启用任务 -> cron 触发 -> 抢锁 -> 执行流水线 -> 回写执行状态
 * @rules
 *   - 单条任务加载失败只记日志，不影响其他任务注册
 *   - 抢锁失败视为其他实例正在执行，静默跳过本轮
 * @dependencies github.com/robfig/cron/v3, datacheck-service/service/{pipeline,database,distributed_lock}
 * @refs service/pipeline/pipeline.go, service/database/run_store.go
 */

package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"datacheck-service/service/database"
	"datacheck-service/service/distributed_lock"
	"datacheck-service/service/importtool"
	"datacheck-service/service/models"
	"datacheck-service/service/pipeline"
	"datacheck-service/service/validation"
)

// 单次周期校验的锁保护时长与续期间隔
const (
	runLockTTL      = 10 * time.Minute
	refreshInterval = 2 * time.Minute
)

// ValidationScheduler 周期性重校验调度器
type ValidationScheduler struct {
	cron          *cron.Cron
	pipeline      *pipeline.Service
	scheduleStore *database.ScheduleStore
	lockExecutor  *distributed_lock.RunLockExecutor // 可为 nil：单实例部署不需要锁
	entries       map[string]cron.EntryID           // dataset -> cron 条目
	mutex         sync.Mutex
	isRunning     bool
}

// NewValidationScheduler 创建调度器。lockExecutor 允许为 nil
func NewValidationScheduler(pipelineService *pipeline.Service, scheduleStore *database.ScheduleStore, lockExecutor *distributed_lock.RunLockExecutor) *ValidationScheduler {
	return &ValidationScheduler{
		cron:          cron.New(cron.WithSeconds()),
		pipeline:      pipelineService,
		scheduleStore: scheduleStore,
		lockExecutor:  lockExecutor,
		entries:       make(map[string]cron.EntryID),
	}
}

// Start 加载启用的周期任务并启动调度
func (s *ValidationScheduler) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.isRunning {
		return nil
	}

	if err := s.loadSchedules(); err != nil {
		return err
	}
	s.cron.Start()
	s.isRunning = true
	slog.Info("周期校验调度器已启动", "schedules", len(s.entries))
	return nil
}

// Stop 停止调度，等待在途任务完成
func (s *ValidationScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	slog.Info("周期校验调度器已停止")
}

// Reload 重新加载全部周期任务（任务配置变更后调用）
func (s *ValidationScheduler) Reload() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = make(map[string]cron.EntryID)
	return s.loadSchedules()
}

func (s *ValidationScheduler) loadSchedules() error {
	schedules, err := s.scheduleStore.ListEnabled()
	if err != nil {
		return err
	}
	for i := range schedules {
		if err := s.register(&schedules[i]); err != nil {
			slog.Error("注册周期校验任务失败", "dataset", schedules[i].Dataset,
				"cron", schedules[i].CronExpression, "error", err)
		}
	}
	return nil
}

func (s *ValidationScheduler) register(schedule *models.ScheduledValidation) error {
	dataset := schedule.Dataset
	id, err := s.cron.AddFunc(schedule.CronExpression, func() {
		s.runScheduled(dataset)
	})
	if err != nil {
		return err
	}
	s.entries[dataset] = id
	slog.Info("周期校验任务已注册", "dataset", dataset, "cron", schedule.CronExpression)
	return nil
}

// runScheduled 执行一次周期校验。抢不到锁说明其他实例在跑，跳过本轮
func (s *ValidationScheduler) runScheduled(dataset string) {
	ctx := context.Background()
	execute := func() error {
		return s.executeOnce(ctx, dataset)
	}
	var err error
	if s.lockExecutor != nil {
		err = s.lockExecutor.ExecuteWithLockAndRefresh(ctx, dataset, runLockTTL, refreshInterval, execute)
	} else {
		err = execute()
	}
	if err != nil {
		slog.Error("周期校验执行失败", "dataset", dataset, "error", err)
	}
}

func (s *ValidationScheduler) executeOnce(ctx context.Context, dataset string) error {
	schedule, err := s.scheduleStore.GetByDataset(dataset)
	if err != nil {
		return err
	}
	if !schedule.IsEnabled {
		slog.Info("周期校验任务已禁用，跳过", "dataset", dataset)
		return nil
	}

	startedAt := time.Now()
	artifacts := importtool.ResolveArtifacts(schedule.OutputDir)
	result, err := s.pipeline.Execute(ctx, pipeline.Request{
		Dataset:          dataset,
		ConfigPath:       schedule.ConfigPath,
		OutputPath:       artifacts.ValidationOutput,
		StatsSummaryPath: artifacts.StatsSummary,
		LintReportPath:   artifacts.LintReport,
		SourceCSVPath:    sourceCSVFor(artifacts.LintReport),
	})

	status := "PASS"
	if err != nil {
		status = "ERROR"
	} else if result.ExitStatus != validation.ExitOK {
		status = "FAIL"
	}
	if markErr := s.scheduleStore.MarkRun(dataset, status, startedAt); markErr != nil {
		slog.Error("回写周期任务执行状态失败", "dataset", dataset, "error", markErr)
	}
	if err != nil {
		return err
	}
	slog.Info("周期校验执行完成", "dataset", dataset, "status", status,
		"blockers", result.HasBlockers, "duration", result.Outcome.Duration)
	return nil
}

// sourceCSVFor 从 lint 报告里找回源 CSV 路径，找不到时退化为空（相关规则会自行报缺失）
func sourceCSVFor(lintReportPath string) string {
	report, err := importtool.LoadLintReport(lintReportPath)
	if err != nil || report == nil {
		return ""
	}
	return importtool.FindSourceCSV(report)
}
