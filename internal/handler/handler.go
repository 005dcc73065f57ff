package handler

import (
	"context"
	"strconv"
	"time"

	"storyframe-ai/internal/response"
	"storyframe-ai/internal/service"
	"storyframe-ai/internal/storage"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) Handler {
	if svc == nil {
		svc = service.NewService()
	}
	return Handler{Service: svc}
}

// pathId parses a positive int64 path parameter.
func pathId(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return 0, false
	}
	return id, true
}

// Health 健康检查：数据库与对象存储连通性
func (h Handler) Health(c *gin.Context) {
	status := gin.H{
		"status":   "ok",
		"database": "ok",
		"storage":  "ok",
	}

	if storage.DB == nil {
		status["status"] = "degraded"
		status["database"] = "unavailable"
	} else if db, err := storage.DB.DB(); err != nil || db.Ping() != nil {
		status["status"] = "degraded"
		status["database"] = "unavailable"
	}

	if h.Service.OssHealth != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.Service.OssHealth(ctx); err != nil {
			status["status"] = "degraded"
			status["storage"] = "unavailable"
		}
	}

	response.Success(c, status)
}
