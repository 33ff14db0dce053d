/*
 * @module api/server
 * @description HTTP服务启动封装，组装路由、指标和Swagger文档后以dapr服务形式监听
 * @architecture RESTful API架构
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 服务初始化 -> 路由挂载 -> 监听请求
 * @rules BASE_CONTEXT非空时所有路由挂载在该前缀下
 * @dependencies github.com/dapr/go-sdk, github.com/prometheus/client_golang
 * @refs main.go, cmd/datacheck
 */

package api

import (
	"net/http"
	"strconv"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Serve 启动HTTP服务并阻塞直到退出。baseContext 非空时路由挂载在该前缀下
func Serve(port int, baseContext string) error {
	mux := chi.NewRouter()

	if baseContext != "" {
		mux.Route(baseContext, func(r chi.Router) {
			subMux := r.(*chi.Mux)
			InitRoute(subMux)
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger*", httpSwagger.WrapHandler)
		})
	} else {
		InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger*", httpSwagger.WrapHandler)
	}

	s := daprd.NewServiceWithMux(":"+strconv.Itoa(port), mux)
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
