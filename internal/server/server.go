package server

import (
	"fmt"

	"storyframe-ai/config"
	"storyframe-ai/internal/router"
	"storyframe-ai/internal/service"
	"storyframe-ai/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartBackend runs the HTTP API until the listener fails.
func StartBackend(svc *service.Service) error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.SetupRouter(engine, svc)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("后端服务启动", zap.String("addr", addr))
	return engine.Run(addr)
}
