package service

import (
	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CreateProject 创建项目，初始状态为草稿
func (s *Service) CreateProject(userId int64, req dto.CreateProjectReq) (*types.Project, error) {
	project := &types.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      types.ProjectStatusDraft,
		UserId:      userId,
	}
	if err := storage.CreateProject(project); err != nil {
		log.GetLogger().Error("创建项目失败", zap.Int64("user_id", userId), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDBError, "创建项目失败 Create project failed", err)
	}
	return project, nil
}

// GetProject 查询项目，归属校验由 userId 条件完成
func (s *Service) GetProject(projectId, userId int64) (*types.Project, error) {
	project, err := storage.GetProject(projectId, userId)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询项目失败 Query project failed", err)
	}
	return project, nil
}

// ListProjects 分页查询当前用户的项目
func (s *Service) ListProjects(userId int64, req dto.ListProjectsReq) (*dto.ListProjectsResData, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	projects, total, err := storage.ListProjects(userId, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询项目列表失败 List projects failed", err)
	}
	return &dto.ListProjectsResData{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Projects: projects,
	}, nil
}

// ListRecentProjects 最近更新的项目，用于工作台
func (s *Service) ListRecentProjects(userId int64, limit int) ([]types.Project, error) {
	if limit < 1 || limit > maxPageSize {
		limit = 5
	}
	projects, err := storage.ListRecentProjects(userId, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询最近项目失败 List recent projects failed", err)
	}
	return projects, nil
}

// UpdateProject 更新项目，零值字段保持不变
func (s *Service) UpdateProject(projectId, userId int64, req dto.UpdateProjectReq) (*types.Project, error) {
	project, err := s.GetProject(projectId, userId)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Status != "" {
		project.Status = types.ProjectStatus(req.Status)
	}
	if req.ImageModel != "" {
		if _, ok := s.imageModel(req.ImageModel); !ok {
			return nil, apperrors.ErrModelNotFound
		}
		project.ImageModel = req.ImageModel
	}
	if req.AspectRatio != "" {
		project.AspectRatio = req.AspectRatio
	}
	if req.Quality != "" {
		project.Quality = req.Quality
	}

	if err := storage.SaveProject(project); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "更新项目失败 Update project failed", err)
	}
	return project, nil
}

// DeleteProject 删除项目及其级联的脚本、关键帧、视频片段
func (s *Service) DeleteProject(projectId, userId int64) error {
	if _, err := s.GetProject(projectId, userId); err != nil {
		return err
	}
	if err := storage.DeleteProject(projectId, userId); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "删除项目失败 Delete project failed", err)
	}
	log.GetLogger().Info("项目已删除", zap.Int64("project_id", projectId), zap.Int64("user_id", userId))
	return nil
}
