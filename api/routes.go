/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"datacheck-service/api/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 校验运行管理
	r.Route("/validation", func(r chi.Router) {
		validationController := controllers.NewValidationController()

		// 触发与台账
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", validationController.CreateRun)
			r.Get("/", validationController.ListRuns)
			r.Get("/{id}", validationController.GetRun)
		})

		// warn_only 后处理
		r.Post("/warn-only/apply", validationController.ApplyWarnOnly)

		// 规则配置检查
		r.Post("/config/validate", validationController.ValidateConfig)

		// CSV 质量顾问
		r.Post("/csv-quality", validationController.CheckCSVQuality)

		// 周期任务管理
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", validationController.UpsertSchedule)
			r.Get("/", validationController.ListSchedules)
			r.Delete("/{dataset}", validationController.DeleteSchedule)
		})
	})

	// 评审摘要
	r.Route("/review", func(r chi.Router) {
		reviewController := controllers.NewReviewController()
		r.Get("/summary", reviewController.GetSummary)
		r.Get("/markdown", reviewController.GetMarkdown)
	})
}
