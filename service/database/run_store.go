/*
 * @module service/database/run_store
 * @description 校验运行历史与调度配置的数据访问层。产物文件是结果的权威来源，
 *              这里只保存运行台账和周期任务配置
 * @architecture 数据访问层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 运行结束 -> 台账落库；调度器启动 -> 加载启用的周期任务
 * @rules 运行记录只增不改；调度配置按数据集唯一
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs migrate.go, service/scheduler/validation_scheduler.go
 */

package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"datacheck-service/service/models"
)

// RunStore 运行历史存取
type RunStore struct {
	db *gorm.DB
}

// NewRunStore 创建运行历史存取器
func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// SaveRun 落库一条运行记录，ID 缺省时自动生成
func (s *RunStore) SaveRun(run *models.ValidationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("保存运行记录失败: %w", err)
	}
	return nil
}

// GetRun 按ID查询运行记录
func (s *RunStore) GetRun(id string) (*models.ValidationRun, error) {
	var run models.ValidationRun
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return &run, nil
}

// ListRuns 按数据集倒序分页查询运行记录。dataset 为空查全部
func (s *RunStore) ListRuns(dataset string, limit, offset int) ([]models.ValidationRun, int64, error) {
	query := s.db.Model(&models.ValidationRun{})
	if dataset != "" {
		query = query.Where("dataset = ?", dataset)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计运行记录失败: %w", err)
	}

	var runs []models.ValidationRun
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&runs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return runs, total, nil
}

// ScheduleStore 周期校验配置存取
type ScheduleStore struct {
	db *gorm.DB
}

// NewScheduleStore 创建调度配置存取器
func NewScheduleStore(db *gorm.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Upsert 按数据集创建或更新周期任务配置
func (s *ScheduleStore) Upsert(schedule *models.ScheduledValidation) error {
	var existing models.ScheduledValidation
	err := s.db.First(&existing, "dataset = ?", schedule.Dataset).Error
	if err == gorm.ErrRecordNotFound {
		if schedule.ID == "" {
			schedule.ID = uuid.New().String()
		}
		if err := s.db.Create(schedule).Error; err != nil {
			return fmt.Errorf("创建调度配置失败: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("查询调度配置失败: %w", err)
	}

	schedule.ID = existing.ID
	if err := s.db.Model(&existing).Updates(map[string]interface{}{
		"cron_expression": schedule.CronExpression,
		"config_path":     schedule.ConfigPath,
		"output_dir":      schedule.OutputDir,
		"is_enabled":      schedule.IsEnabled,
	}).Error; err != nil {
		return fmt.Errorf("更新调度配置失败: %w", err)
	}
	return nil
}

// ListEnabled 查询全部启用的周期任务
func (s *ScheduleStore) ListEnabled() ([]models.ScheduledValidation, error) {
	var schedules []models.ScheduledValidation
	if err := s.db.Where("is_enabled = ?", true).Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("查询调度配置失败: %w", err)
	}
	return schedules, nil
}

// MarkRun 记录一次周期任务的执行时间与结果
func (s *ScheduleStore) MarkRun(dataset, status string, at time.Time) error {
	err := s.db.Model(&models.ScheduledValidation{}).
		Where("dataset = ?", dataset).
		Updates(map[string]interface{}{
			"last_run_at":     at,
			"last_run_status": status,
		}).Error
	if err != nil {
		return fmt.Errorf("更新调度执行状态失败: %w", err)
	}
	return nil
}

// GetByDataset 按数据集查询周期任务配置
func (s *ScheduleStore) GetByDataset(dataset string) (*models.ScheduledValidation, error) {
	var schedule models.ScheduledValidation
	if err := s.db.First(&schedule, "dataset = ?", dataset).Error; err != nil {
		return nil, fmt.Errorf("查询调度配置失败: %w", err)
	}
	return &schedule, nil
}

// ListAll 查询全部周期任务（含禁用），供管理接口展示
func (s *ScheduleStore) ListAll() ([]models.ScheduledValidation, error) {
	var schedules []models.ScheduledValidation
	if err := s.db.Order("dataset ASC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("查询调度配置失败: %w", err)
	}
	return schedules, nil
}

// Delete 按数据集删除周期任务配置
func (s *ScheduleStore) Delete(dataset string) error {
	if err := s.db.Where("dataset = ?", dataset).Delete(&models.ScheduledValidation{}).Error; err != nil {
		return fmt.Errorf("删除调度配置失败: %w", err)
	}
	return nil
}
