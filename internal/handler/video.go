package handler

import (
	"storyframe-ai/internal/auth"
	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/response"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handler) GenerateVideos(c *gin.Context) {
	var req dto.GenerateVideosReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("GenerateVideos ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	log.GetLogger().Info("GenerateVideos received request",
		zap.Int64("script_id", req.ScriptId),
		zap.String("model", req.Model))

	data, err := h.Service.GenerateVideos(auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ListVideoSegments(c *gin.Context) {
	scriptId, ok := pathId(c, "scriptId")
	if !ok {
		return
	}

	data, err := h.Service.ListVideoSegments(scriptId, auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) RegenerateVideoSegment(c *gin.Context) {
	segmentId, ok := pathId(c, "segmentId")
	if !ok {
		return
	}

	data, err := h.Service.RegenerateVideoSegment(segmentId, auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ExportVideos(c *gin.Context) {
	var req dto.ExportVideosReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	log.GetLogger().Info("ExportVideos received request", zap.Int64("script_id", req.ScriptId))

	data, err := h.Service.ExportVideos(c.Request.Context(), auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ListVideoModels(c *gin.Context) {
	response.Success(c, h.Service.VideoModels())
}
