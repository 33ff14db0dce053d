/*
 * @module cmd/datacheck/main
 * @description 校验服务命令行入口，提供本地执行校验、配置管理和质量检查的操作工具
 * @architecture 命令行工具 - cobra 子命令结构
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 参数解析 -> 子命令执行 -> 按结论退出
 * @rules 退出码约定：0 全部通过，1 存在阻断或输出不完整，2 用法/环境错误
 * @dependencies github.com/spf13/cobra
 * @refs service/pipeline, service/validation
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datacheck-service/logger"
	"datacheck-service/service/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "datacheck",
	Short: "表格统计数据导入校验工具",
	Long:  "对统计数据导入产物执行规则校验、warn_only 降级和质量顾问检查，也可作为HTTP服务运行。",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(
		newRunCmd(),
		newApplyWarnOnlyCmd(),
		newValidateConfigCmd(),
		newFilterConfigCmd(),
		newCSVQualityCmd(),
		newRowCountCmd(),
		newCountersMatchCmd(),
		newPreflightCmd(),
		newServeCmd(),
	)
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(pipeline.ExitStatusForError(err))
}
