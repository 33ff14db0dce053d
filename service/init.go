/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、存储器和流水线服务的组装，
 *              以及分布式锁、事件通知和周期调度器等可选能力的启用
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 服务启动时执行初始化流程：数据库 -> 迁移 -> 存储器 -> 流水线 -> 调度器
 * @rules
 *   - 数据库是可选依赖：连接失败时降级为纯文件模式，不阻止服务启动
 *   - Redis 锁与 Kafka 通知同为可选能力，未配置时对应全局变量为 nil
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite
 * @refs service/pipeline, service/scheduler
 */

package service

import (
	"fmt"
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"datacheck-service/service/database"
	"datacheck-service/service/distributed_lock"
	"datacheck-service/service/notifier"
	"datacheck-service/service/pipeline"
	"datacheck-service/service/scheduler"
)

var (
	DB                  *gorm.DB
	GlobalRunStore      *database.RunStore
	GlobalScheduleStore *database.ScheduleStore
	GlobalPipeline      *pipeline.Service
	GlobalScheduler     *scheduler.ValidationScheduler
	GlobalNotifier      *notifier.KafkaNotifier
	GlobalLockExecutor  *distributed_lock.RunLockExecutor
)

// Init 组装全部服务。CLI 子命令按需调用，HTTP 服务启动时必须调用
func Init() error {
	initDatabase()
	if DB != nil {
		if err := database.AutoMigrate(DB); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
		GlobalRunStore = database.NewRunStore(DB)
		GlobalScheduleStore = database.NewScheduleStore(DB)
	}

	initNotifier()
	initLock()

	orchestrator, err := pipeline.BuildDefaultOrchestrator(false)
	if err != nil {
		return err
	}
	GlobalPipeline = pipeline.NewService(orchestrator, GlobalRunStore, GlobalNotifier)

	if GlobalScheduleStore != nil {
		GlobalScheduler = scheduler.NewValidationScheduler(GlobalPipeline, GlobalScheduleStore, GlobalLockExecutor)
		if err := GlobalScheduler.Start(); err != nil {
			slog.Error("启动周期校验调度器失败", "error", err)
		}
	}

	slog.Info("服务初始化完成", "database", DB != nil,
		"notifier", GlobalNotifier != nil, "lock", GlobalLockExecutor != nil)
	return nil
}

// Shutdown 停止后台组件，释放外部连接
func Shutdown() {
	if GlobalScheduler != nil {
		GlobalScheduler.Stop()
	}
	if GlobalNotifier != nil {
		if err := GlobalNotifier.Close(); err != nil {
			slog.Error("关闭事件通知器失败", "error", err)
		}
	}
}

// initDatabase 初始化数据库连接。优先 DATABASE_URL/DB_HOST 指向的 PostgreSQL，
// 否则落到本地 SQLite；两者都失败时 DB 保持 nil，运行台账能力不可用
func initDatabase() {
	if dsn := postgresDSN(); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			slog.Error("PostgreSQL 连接失败，降级为纯文件模式", "error", err)
			return
		}
		DB = db
		slog.Info("数据库连接成功", "driver", "postgres")
		return
	}

	path := getEnvWithDefault("DB_SQLITE_PATH", "datacheck.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		slog.Error("SQLite 打开失败，降级为纯文件模式", "path", path, "error", err)
		return
	}
	DB = db
	slog.Info("数据库连接成功", "driver", "sqlite", "path", path)
}

// postgresDSN 返回 PostgreSQL 连接串，未配置时返回空串
func postgresDSN() string {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL
	}
	if os.Getenv("DB_HOST") == "" {
		return ""
	}
	host := os.Getenv("DB_HOST")
	port := getEnvWithDefault("DB_PORT", "5432")
	user := getEnvWithDefault("DB_USER", "postgres")
	password := getEnvWithDefault("DB_PASSWORD", "")
	dbname := getEnvWithDefault("DB_NAME", "datacheck")
	sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
	schema := getEnvWithDefault("DB_SCHEMA", "public")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
		host, port, user, password, dbname, sslmode, schema)
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// initNotifier 初始化 Kafka 通知器，未配置 KAFKA_BROKERS 时跳过
func initNotifier() {
	n, err := notifier.NewKafkaNotifierFromEnv()
	if err != nil {
		slog.Error("初始化事件通知器失败", "error", err)
		return
	}
	GlobalNotifier = n
}

// initLock 初始化 Redis 分布式锁，未配置 REDIS_HOST 时跳过
func initLock() {
	if os.Getenv("REDIS_HOST") == "" {
		return
	}
	lock, err := distributed_lock.NewRedisLock()
	if err != nil {
		slog.Error("初始化分布式锁失败", "error", err)
		return
	}
	GlobalLockExecutor = distributed_lock.NewRunLockExecutor(lock)
}
