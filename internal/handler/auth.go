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

func (h Handler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("Register ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.Register(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.Login(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) RefreshToken(c *gin.Context) {
	data, err := h.Service.RefreshToken(auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// Logout is stateless. Tokens expire on their own; clients drop theirs.
func (h Handler) Logout(c *gin.Context) {
	response.Success(c, nil)
}

func (h Handler) CurrentUser(c *gin.Context) {
	data, err := h.Service.CurrentUser(auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}
