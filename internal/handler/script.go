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

func (h Handler) GenerateScript(c *gin.Context) {
	var req dto.GenerateScriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("GenerateScript ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	log.GetLogger().Info("GenerateScript received request",
		zap.Int64("project_id", req.ProjectId),
		zap.String("model", req.Model))

	data, err := h.Service.GenerateScript(c.Request.Context(), auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetScript(c *gin.Context) {
	scriptId, ok := pathId(c, "scriptId")
	if !ok {
		return
	}

	data, err := h.Service.GetScript(scriptId, auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) UpdateScript(c *gin.Context) {
	scriptId, ok := pathId(c, "scriptId")
	if !ok {
		return
	}
	var req dto.UpdateScriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.UpdateScript(scriptId, auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) OptimizeScript(c *gin.Context) {
	scriptId, ok := pathId(c, "scriptId")
	if !ok {
		return
	}
	var req dto.OptimizeScriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.OptimizeScript(c.Request.Context(), scriptId, auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ListScriptModels(c *gin.Context) {
	response.Success(c, h.Service.ScriptModels())
}

func (h Handler) ListScriptStyles(c *gin.Context) {
	response.Success(c, h.Service.ScriptStyles())
}
