/*
 * @module cmd/datacheck/serve
 * @description serve 子命令：以HTTP服务形式运行校验能力
 * @architecture 命令行工具 - cobra 子命令结构
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 服务初始化 -> 路由挂载 -> 阻塞监听
 * @rules 服务初始化失败是启动错误；数据库等可选依赖缺失不阻止启动
 * @dependencies api, service
 * @refs main.go
 */

package main

import (
	"github.com/spf13/cobra"

	"datacheck-service/api"
	"datacheck-service/service"

	_ "datacheck-service/docs"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		baseContext string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "以HTTP服务形式运行",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := service.Init(); err != nil {
				return err
			}
			defer service.Shutdown()
			return api.Serve(port, baseContext)
		},
	}

	cmd.Flags().IntVar(&port, "port", 80, "监听端口")
	cmd.Flags().StringVar(&baseContext, "base-context", "", "路由前缀（可选）")
	return cmd
}
