package handler

import (
	"strconv"

	"storyframe-ai/internal/auth"
	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/response"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/gin-gonic/gin"
)

func (h Handler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.CreateProject(auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetProject(c *gin.Context) {
	projectId, ok := pathId(c, "projectId")
	if !ok {
		return
	}

	data, err := h.Service.GetProject(projectId, auth.UserId(c))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ListProjects(c *gin.Context) {
	var req dto.ListProjectsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.ListProjects(auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ListRecentProjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	data, err := h.Service.ListRecentProjects(auth.UserId(c), limit)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) UpdateProject(c *gin.Context) {
	projectId, ok := pathId(c, "projectId")
	if !ok {
		return
	}
	var req dto.UpdateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.UpdateProject(projectId, auth.UserId(c), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) DeleteProject(c *gin.Context) {
	projectId, ok := pathId(c, "projectId")
	if !ok {
		return
	}

	if err := h.Service.DeleteProject(projectId, auth.UserId(c)); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}
