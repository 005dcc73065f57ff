package handler

import (
	"io"
	"strconv"

	"storyframe-ai/internal/auth"
	"storyframe-ai/internal/response"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/gin-gonic/gin"
)

// 单文件上传上限 50MB
const maxUploadSize = 50 << 20

// UploadFile 通用文件上传（对象存储）
func (h Handler) UploadFile(c *gin.Context) {
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
	res, err := h.Service.UploadFile(c.Request.Context(), auth.UserId(c), data, fileHeader.Filename, contentType)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, res)
}

func (h Handler) ListFiles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	data, err := h.Service.ListFiles(auth.UserId(c), limit)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) DeleteFile(c *gin.Context) {
	fileId, ok := pathId(c, "fileId")
	if !ok {
		return
	}

	if err := h.Service.DeleteFile(c.Request.Context(), fileId, auth.UserId(c)); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}
