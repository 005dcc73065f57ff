package handler

import (
	"io"

	"storyframe-ai/internal/auth"
	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/response"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handler) GenerateKeyframes(c *gin.Context) {
	var req dto.GenerateKeyframesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("GenerateKeyframes ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	log.GetLogger().Info("GenerateKeyframes received request",
		zap.Int64("script_id", req.ScriptId),
		zap.String("model", req.Model))

	data, err := h.Service.GenerateKeyframes(auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ListKeyframes(c *gin.Context) {
	scriptId, ok := pathId(c, "scriptId")
	if !ok {
		return
	}

	data, err := h.Service.ListKeyframes(scriptId, auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) RegenerateKeyframe(c *gin.Context) {
	keyframeId, ok := pathId(c, "keyframeId")
	if !ok {
		return
	}

	data, err := h.Service.RegenerateKeyframe(keyframeId, auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) UpdateKeyframePrompt(c *gin.Context) {
	keyframeId, ok := pathId(c, "keyframeId")
	if !ok {
		return
	}
	var req dto.UpdateKeyframeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.UpdateKeyframePrompt(keyframeId, auth.UserId(c), req.Prompt)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// UploadKeyframeImage 接收用户自备图片，直接作为该关键帧的成品
func (h Handler) UploadKeyframeImage(c *gin.Context) {
	keyframeId, ok := pathId(c, "keyframeId")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "未能获取文件 File is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.ErrorResponse(c, apperrors.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "文件读取失败 Read file failed", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "文件读取失败 Read file failed", err))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	keyframe, err := h.Service.UploadKeyframeImage(c.Request.Context(), keyframeId, auth.UserId(c),
		data, fileHeader.Filename, contentType)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, keyframe)
}

func (h Handler) ListImageModels(c *gin.Context) {
	response.Success(c, h.Service.ImageModels())
}
