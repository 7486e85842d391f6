package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"skillsync-go/internal/api/handler"
	"skillsync-go/internal/config"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(
	h *server.Hertz,
	cfg *config.Config,
	resumeHandler *handler.ResumeHandler,
	jobHandler *handler.JobHandler,
	compareHandler *handler.CompareHandler,
) {
	// 健康检查不做认证
	h.GET("/ping", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"message": "pong"})
	})

	api := h.Group("/api/v1")

	// 配置了 API Key 时对 v1 组启用 Bearer 认证
	if cfg.Server.APIKey != "" {
		expectedKey := cfg.Server.APIKey
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == expectedKey, nil
			}),
		))
	}

	api.POST("/resumes/upload", resumeHandler.HandleResumeUpload)
	api.POST("/resumes/parse", resumeHandler.HandleResumeParse)
	api.GET("/resumes/:id/download", resumeHandler.HandleResumeDownload)
	api.POST("/jobs/parse", jobHandler.HandleJobParse)
	api.GET("/compare/:id", compareHandler.HandleCompare)
}
