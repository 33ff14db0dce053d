/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新校验运行记录相关表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致；文件产物仍是权威结果，表仅存运行历史
 * @dependencies datacheck-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"log"

	"gorm.io/gorm"

	"datacheck-service/service/models"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	err := db.AutoMigrate(
		&models.ValidationRun{},
		&models.ScheduledValidation{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}
