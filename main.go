package main

import (
	"log"
	"os"
	"strconv"

	"datacheck-service/api"
	_ "datacheck-service/docs"
	"datacheck-service/logger"
	"datacheck-service/service"
)

var (
	PORT         = 80
	BASE_CONTEXT = ""
)

func init() {
	if val := os.Getenv("LISTEN_PORT"); val != "" {
		PORT, _ = strconv.Atoi(val)
	}

	if val := os.Getenv("BASE_CONTEXT"); val != "" {
		BASE_CONTEXT = val
	}
}

// @title 数据导入校验服务 API
// @version 1.0
// @description 表格统计数据导入校验后台服务，提供规则校验、评审摘要、warn_only 管理和周期重校验功能
// @BasePath /swagger/datacheck-service
func main() {
	logger.InitLogger()

	if err := service.Init(); err != nil {
		log.Fatalf("服务初始化失败: %v", err)
	}
	defer service.Shutdown()

	if err := api.Serve(PORT, BASE_CONTEXT); err != nil {
		log.Fatalf("error: %v", err)
	}
}
