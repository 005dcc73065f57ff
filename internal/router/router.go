package router

import (
	"storyframe-ai/internal/auth"
	"storyframe-ai/internal/handler"
	"storyframe-ai/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, svc *service.Service) {
	hdl := handler.NewHandler(svc)

	api := r.Group("/api")
	{
		api.GET("/health", hdl.Health)
		api.POST("/auth/register", hdl.Register)
		api.POST("/auth/login", hdl.Login)
	}

	authed := api.Group("", auth.Middleware())
	{
		authed.POST("/auth/refresh", hdl.RefreshToken)
		authed.POST("/auth/logout", hdl.Logout)
		authed.GET("/auth/me", hdl.CurrentUser)

		authed.POST("/project", hdl.CreateProject)
		authed.GET("/project", hdl.ListProjects)
		authed.GET("/project/recent", hdl.ListRecentProjects)
		authed.GET("/project/:projectId", hdl.GetProject)
		authed.PUT("/project/:projectId", hdl.UpdateProject)
		authed.DELETE("/project/:projectId", hdl.DeleteProject)

		authed.POST("/script/generate", hdl.GenerateScript)
		authed.GET("/script/models", hdl.ListScriptModels)
		authed.GET("/script/styles", hdl.ListScriptStyles)
		authed.GET("/script/:scriptId", hdl.GetScript)
		authed.PUT("/script/:scriptId", hdl.UpdateScript)
		authed.POST("/script/:scriptId/optimize", hdl.OptimizeScript)

		authed.POST("/keyframe/generate", hdl.GenerateKeyframes)
		authed.GET("/keyframe/models", hdl.ListImageModels)
		authed.GET("/keyframe/script/:scriptId", hdl.ListKeyframes)
		authed.POST("/keyframe/:keyframeId/regenerate", hdl.RegenerateKeyframe)
		authed.PUT("/keyframe/:keyframeId/prompt", hdl.UpdateKeyframePrompt)
		authed.POST("/keyframe/:keyframeId/upload", hdl.UploadKeyframeImage)

		authed.POST("/video/generate", hdl.GenerateVideos)
		authed.GET("/video/models", hdl.ListVideoModels)
		authed.GET("/video/script/:scriptId", hdl.ListVideoSegments)
		authed.POST("/video/:segmentId/regenerate", hdl.RegenerateVideoSegment)
		authed.POST("/video/export", hdl.ExportVideos)

		authed.POST("/file", hdl.UploadFile)
		authed.GET("/file", hdl.ListFiles)
		authed.DELETE("/file/:fileId", hdl.DeleteFile)
	}
}
